package models

// Currency is a currency the books can be kept in.
// Exactly one row is expected to carry IsDefault; the bootstrap seed guarantees it, the schema does not.
type Currency struct {
	Code      string `gorm:"column:code;primaryKey" json:"code"`
	Name      string `gorm:"column:name"            json:"name"`
	Symbol    string `gorm:"column:symbol"          json:"symbol"`
	IsDefault bool   `gorm:"column:is_default"      json:"isDefault"`
}

// TableName implements gorm's tabler.
func (Currency) TableName() string {
	return "currencies"
}
