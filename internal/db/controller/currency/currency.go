// Package currency provides read access to the currencies table.
package currency

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ledgerdesk/ledgerdesk/internal/db/models"
)

var (
	// ErrCurrencyNotFound is returned when a currency code is unknown.
	ErrCurrencyNotFound = errors.New("currency not found")
	// ErrNoDefaultCurrency is returned when no row is flagged as default.
	ErrNoDefaultCurrency = errors.New("no default currency")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a currency by its code, case insensitive.
func Get(db *gorm.DB, code string) (*models.Currency, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var c models.Currency

	result := db.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).Take(&c)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCurrencyNotFound
		}

		return nil, result.Error
	}

	return &c, nil
}

// GetAll retrieves all currencies, default first.
func GetAll(db *gorm.DB) ([]models.Currency, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var out []models.Currency
	if result := db.Order("is_default DESC").Order("code").Find(&out); result.Error != nil {
		return nil, result.Error
	}

	return out, nil
}

// Default returns the default currency.
func Default(db *gorm.DB) (*models.Currency, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var c models.Currency

	result := db.Where("is_default = ?", true).Order("code").Take(&c)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNoDefaultCurrency
		}

		return nil, result.Error
	}

	return &c, nil
}
