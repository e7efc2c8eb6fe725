// Package dsn builds SQLite data source names from the configuration.
package dsn

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ledgerdesk/ledgerdesk/internal/config"
)

// Create builds the SQLite DSN for path with the configured pragmas appended as _pragma parameters,
// so every pooled connection gets them.
func Create(path string, db *config.DB) string {
	base, rawQuery, _ := strings.Cut(path, "?")

	query, _ := url.ParseQuery(rawQuery)

	if db != nil {
		if db.BusyTimeoutMS > 0 {
			query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", db.BusyTimeoutMS))
		}

		if mode := JournalMode(db.JournalMode); mode != "" {
			query.Add("_pragma", fmt.Sprintf("journal_mode(%s)", mode))
		}

		if sync := Synchronous(db.Synchronous); sync != "" {
			query.Add("_pragma", fmt.Sprintf("synchronous(%s)", sync))
		}

		if db.ForeignKeys {
			query.Add("_pragma", "foreign_keys(1)")
		} else {
			query.Add("_pragma", "foreign_keys(0)")
		}
	}

	if len(query) == 0 {
		return base
	}

	return base + "?" + query.Encode()
}

// JournalMode returns the upper cased journal mode or "" when it is not one SQLite accepts.
func JournalMode(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))

	switch value {
	case "WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "OFF":
		return value
	default:
		return ""
	}
}

// Synchronous returns the upper cased synchronous level or "" when invalid.
func Synchronous(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))

	switch value {
	case "OFF", "NORMAL", "FULL", "EXTRA", "0", "1", "2", "3":
		return value
	default:
		return ""
	}
}
