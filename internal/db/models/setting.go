// Package models contains database model definitions.
package models

// Setting is one row of the key/value company metadata table.
type Setting struct {
	Key   string `gorm:"column:key;primaryKey" json:"key"`
	Value string `gorm:"column:value"          json:"value"`
}

// TableName implements gorm's tabler.
func (Setting) TableName() string {
	return "settings"
}

// Well known setting keys written by the bootstrap.
const (
	SettingCompanyName    = "company_name"
	SettingCompanyAddress = "company_address"
	SettingCompanyPhone   = "company_phone"
	SettingCompanyEmail   = "company_email"
	SettingFiscalYear     = "fiscal_year"
)
