package export

import (
	"github.com/ledgerdesk/ledgerdesk/internal/db/controller/customer"
	"github.com/ledgerdesk/ledgerdesk/internal/db/models"
)

// CompanySummary builds the default document printed when the caller passes none.
// currency may be nil when the books have no default currency.
func CompanySummary(settings map[string]string, currency *models.Currency, customers customer.Summary) Document {
	title := settings[models.SettingCompanyName]
	if title == "" {
		title = "Company summary"
	}

	symbol := ""
	code := ""

	if currency != nil {
		symbol = currency.Symbol + " "
		code = currency.Code + " (" + currency.Name + ")"
	}

	rows := []map[string]any{
		{"field": "Company", "value": settings[models.SettingCompanyName]},
		{"field": "Address", "value": settings[models.SettingCompanyAddress]},
		{"field": "Phone", "value": settings[models.SettingCompanyPhone]},
		{"field": "Email", "value": settings[models.SettingCompanyEmail]},
		{"field": "Fiscal year", "value": settings[models.SettingFiscalYear]},
		{"field": "Default currency", "value": code},
		{"field": "Customers", "value": customers.Count},
		{"field": "Receivable (opening)", "value": symbol + FormatValue(customers.Receivable)},
		{"field": "Payable (opening)", "value": symbol + FormatValue(customers.Payable)},
	}

	return Document{
		Title: title,
		Columns: []Column{
			{Key: "field", Title: "Field"},
			{Key: "value", Title: "Value"},
		},
		Rows: rows,
	}
}
