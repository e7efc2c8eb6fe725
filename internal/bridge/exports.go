package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/ledgerdesk/ledgerdesk/internal/db/controller/currency"
	"github.com/ledgerdesk/ledgerdesk/internal/db/controller/customer"
	"github.com/ledgerdesk/ledgerdesk/internal/db/controller/setting"
	"github.com/ledgerdesk/ledgerdesk/internal/export"
)

const exportsDir = "exports"

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`) //nolint:gochecknoglobals

func slug(s, fallback string) string {
	out := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if out == "" {
		return fallback
	}

	return out
}

func (b *Bridge) exportPath(name, ext string) string {
	return filepath.Join(b.cfg.DataDir, exportsDir, slug(name, "report")+"-"+b.now().Format(stampLayout)+ext)
}

func (b *Bridge) callExportPDF(_ context.Context, raw json.RawMessage) any {
	var req ExportPDFRequest
	if err := b.decode(raw, &req); err != nil {
		return ExportResult{Status: fail(err)}
	}

	return b.ExportPDF(req)
}

// ExportPDF prints the given document, or the company summary when none is given, to a PDF file.
func (b *Bridge) ExportPDF(req ExportPDFRequest) ExportResult {
	var doc export.Document

	if req.Document != nil {
		doc = *req.Document
	} else {
		summary, err := b.companySummary()
		if err != nil {
			return ExportResult{Status: fail(err)}
		}

		doc = summary
	}

	path := b.exportPath(doc.Title, ".pdf")

	if err := export.WritePDF(path, doc, req.PrintOptions); err != nil {
		return ExportResult{Status: fail(err)}
	}

	return ExportResult{Status: ok(), FilePath: path}
}

func (b *Bridge) companySummary() (export.Document, error) {
	var doc export.Document

	err := b.store.View(func(db *gorm.DB) error {
		settings, err := setting.Map(db)
		if err != nil {
			return err //nolint:wrapcheck
		}

		cur, err := currency.Default(db)
		if err != nil && !errors.Is(err, currency.ErrNoDefaultCurrency) {
			return err //nolint:wrapcheck
		}

		customers, err := customer.Summarize(db)
		if err != nil {
			return err //nolint:wrapcheck
		}

		doc = export.CompanySummary(settings, cur, customers)

		return nil
	})

	return doc, err
}

func (b *Bridge) callExportXLSX(ctx context.Context, raw json.RawMessage) any {
	var req TableRequest
	if err := b.decode(raw, &req); err != nil {
		return ExportResult{Status: fail(err)}
	}

	return b.ExportXLSX(ctx, req)
}

// ExportXLSX writes every row of an existing table to a spreadsheet.
func (b *Bridge) ExportXLSX(ctx context.Context, req TableRequest) ExportResult {
	rows, err := b.store.Table(ctx, req.Table)
	if err != nil {
		return ExportResult{Status: fail(err)}
	}

	columns, err := b.store.TableColumns(ctx, req.Table)
	if err != nil {
		return ExportResult{Status: fail(err)}
	}

	path := b.exportPath(req.Table, ".xlsx")

	if err = export.WriteXLSX(path, req.Table, columns, rows); err != nil {
		return ExportResult{Status: fail(err)}
	}

	return ExportResult{Status: ok(), FilePath: path}
}
