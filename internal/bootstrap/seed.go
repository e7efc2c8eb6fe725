package bootstrap

import (
	"github.com/ledgerdesk/ledgerdesk/internal/db/models"
)

// SeedSettings are the company settings every fresh database starts with.
var SeedSettings = []models.Setting{ //nolint:gochecknoglobals
	{Key: models.SettingCompanyName, Value: "My Company Pvt. Ltd."},
	{Key: models.SettingCompanyAddress, Value: "Kathmandu, Nepal"},
	{Key: models.SettingCompanyPhone, Value: "+977-1-4000000"},
	{Key: models.SettingCompanyEmail, Value: "info@mycompany.com.np"},
	{Key: models.SettingFiscalYear, Value: "2081/82"},
}

// SeedCurrency is the single default currency of a fresh database.
var SeedCurrency = models.Currency{ //nolint:gochecknoglobals
	Code:      "NPR",
	Name:      "Nepalese Rupee",
	Symbol:    "Rs.",
	IsDefault: true,
}

const (
	insertSetting  = "INSERT INTO settings (key, value) VALUES (?, ?)"
	insertCurrency = "INSERT INTO currencies (code, name, symbol, is_default) VALUES (?, ?, ?, ?)"
)

type seedStatement struct {
	sql  string
	args []any
}

func seedStatements() []seedStatement {
	out := make([]seedStatement, 0, len(SeedSettings)+1)

	for _, s := range SeedSettings {
		out = append(out, seedStatement{sql: insertSetting, args: []any{s.Key, s.Value}})
	}

	isDefault := 0
	if SeedCurrency.IsDefault {
		isDefault = 1
	}

	out = append(out, seedStatement{
		sql:  insertCurrency,
		args: []any{SeedCurrency.Code, SeedCurrency.Name, SeedCurrency.Symbol, isDefault},
	})

	return out
}
