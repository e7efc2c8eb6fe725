// Package customer provides aggregate reads over the customers table.
// Rows are created and edited by the UI through the bridge.
package customer

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ledgerdesk/ledgerdesk/internal/db/models"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Summary aggregates the opening balances of all customers.
type Summary struct {
	Count      int64   `json:"count"`
	Receivable float64 `json:"receivable"` // debit side, owed by customers
	Payable    float64 `json:"payable"`    // credit side, owed to customers
}

// Summarize returns customer count and opening balance totals per side.
func Summarize(db *gorm.DB) (Summary, error) {
	var s Summary

	if db == nil {
		return s, ErrDBNil
	}

	if err := db.Model(&models.Customer{}).Count(&s.Count).Error; err != nil {
		return s, err
	}

	var rows []struct {
		BalanceType models.BalanceType
		Total       float64
	}

	err := db.Model(&models.Customer{}).
		Select("balance_type, COALESCE(SUM(opening_balance), 0) AS total").
		Group("balance_type").
		Scan(&rows).Error
	if err != nil {
		return s, err
	}

	for _, r := range rows {
		switch r.BalanceType {
		case models.BalanceDebit:
			s.Receivable += r.Total
		case models.BalanceCredit:
			s.Payable += r.Total
		}
	}

	return s, nil
}
