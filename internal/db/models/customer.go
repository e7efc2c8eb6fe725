package models

import (
	"time"
)

// BalanceType tells on which side a customer's opening balance sits.
type BalanceType string

const (
	// BalanceCredit is money owed to the customer.
	BalanceCredit BalanceType = "credit"
	// BalanceDebit is money the customer owes.
	BalanceDebit BalanceType = "debit"
)

// Customer represents a customer account.
type Customer struct {
	ID             uint64      `gorm:"column:id;primaryKey"   json:"id"`
	Name           string      `gorm:"column:name"            json:"name"`
	Address        string      `gorm:"column:address"         json:"address"`
	Phone          string      `gorm:"column:phone"           json:"phone"`
	Email          string      `gorm:"column:email"           json:"email"`
	TaxID          string      `gorm:"column:tax_id"          json:"taxId"`
	CreditDays     int         `gorm:"column:credit_days"     json:"creditDays"`
	OpeningBalance float64     `gorm:"column:opening_balance" json:"openingBalance"`
	BalanceType    BalanceType `gorm:"column:balance_type"    json:"balanceType"`
	Notes          string      `gorm:"column:notes"           json:"notes"`
	CreatedAt      time.Time   `gorm:"column:created_at"      json:"createdAt"`
	UpdatedAt      time.Time   `gorm:"column:updated_at"      json:"updatedAt"`
}

// TableName implements gorm's tabler.
func (Customer) TableName() string {
	return "customers"
}
