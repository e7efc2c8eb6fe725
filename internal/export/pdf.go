// Package export renders tabular data to PDF and spreadsheet files.
package export

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
	pkgerrors "github.com/pkg/errors"
)

// Margin presets of PrintOptions.MarginsType.
const (
	MarginsDefault = 0
	MarginsNone    = 1
	MarginsMinimum = 2
)

const (
	defaultMarginMM = 10.0
	minimumMarginMM = 5.0

	titleHeight = 10.0
	rowHeight   = 7.0
	fontFamily  = "Arial"
)

var (
	// ErrNoColumns is returned when neither columns nor rows describe the table.
	ErrNoColumns = errors.New("document has no columns")
	// ErrMarginsType is returned for an unknown margin preset.
	ErrMarginsType = errors.New("unknown margins type")
)

// PrintOptions control the page layout of a PDF export.
type PrintOptions struct {
	MarginsType        int  `json:"marginsType"        validate:"min=0,max=2"`
	PrintBackground    bool `json:"printBackground"`
	Landscape          bool `json:"landscape"`
	PrintSelectionOnly bool `json:"printSelectionOnly"`
}

func (o PrintOptions) margin() (float64, error) {
	switch o.MarginsType {
	case MarginsDefault:
		return defaultMarginMM, nil
	case MarginsNone:
		return 0, nil
	case MarginsMinimum:
		return minimumMarginMM, nil
	default:
		return 0, pkgerrors.Wrapf(ErrMarginsType, "%d", o.MarginsType)
	}
}

// Column is one table column. Title falls back to Key.
type Column struct {
	Key   string `json:"key"   validate:"required"`
	Title string `json:"title"`
}

// Label returns the header text of the column.
func (c Column) Label() string {
	if c.Title != "" {
		return c.Title
	}

	return c.Key
}

// Document is a titled table. Selection holds row indexes for selection-only printing.
type Document struct {
	Title     string           `json:"title"`
	Columns   []Column         `json:"columns"   validate:"dive"`
	Rows      []map[string]any `json:"rows"`
	Selection []int            `json:"selection"`
}

// printableRows applies the selection when selection-only printing is requested.
// An empty selection prints every row.
func (d Document) printableRows(selectionOnly bool) []map[string]any {
	if !selectionOnly || len(d.Selection) == 0 {
		return d.Rows
	}

	out := make([]map[string]any, 0, len(d.Selection))

	for _, i := range d.Selection {
		if i >= 0 && i < len(d.Rows) {
			out = append(out, d.Rows[i])
		}
	}

	return out
}

func (d Document) columns() []Column {
	if len(d.Columns) > 0 {
		return d.Columns
	}

	keys := ColumnsOf(d.Rows)
	out := make([]Column, 0, len(keys))

	for _, k := range keys {
		out = append(out, Column{Key: k})
	}

	return out
}

// RenderPDF writes doc as a PDF table to w.
func RenderPDF(w io.Writer, doc Document, opts PrintOptions) error {
	margin, err := opts.margin()
	if err != nil {
		return err
	}

	columns := doc.columns()
	if len(columns) == 0 {
		return ErrNoColumns
	}

	orientation := "P"
	if opts.Landscape {
		orientation = "L"
	}

	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle(doc.Title, true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, pageHeight := pdf.GetPageSize()
	colWidth := (pageWidth - 2*margin) / float64(len(columns))

	header := func() {
		pdf.SetFont(fontFamily, "B", 9) //nolint:mnd

		if opts.PrintBackground {
			pdf.SetFillColor(225, 230, 240) //nolint:mnd
		}

		for _, c := range columns {
			pdf.CellFormat(colWidth, rowHeight, fit(pdf, tr(c.Label()), colWidth), "1", 0, "L", opts.PrintBackground, 0, "")
		}

		pdf.Ln(-1)
		pdf.SetFont(fontFamily, "", 9) //nolint:mnd
	}

	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont(fontFamily, "B", 14) //nolint:mnd
		pdf.CellFormat(0, titleHeight, tr(doc.Title), "", 1, "L", false, 0, "")
	}

	pdf.SetFont(fontFamily, "I", 8) //nolint:mnd
	pdf.CellFormat(0, rowHeight, "Generated "+time.Now().Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")

	header()

	for _, row := range doc.printableRows(opts.PrintSelectionOnly) {
		if pdf.GetY()+rowHeight > pageHeight-margin {
			pdf.AddPage()
			header()
		}

		for _, c := range columns {
			pdf.CellFormat(colWidth, rowHeight, fit(pdf, tr(FormatValue(row[c.Key])), colWidth), "1", 0, "L", false, 0, "")
		}

		pdf.Ln(-1)
	}

	if err = pdf.Output(w); err != nil {
		return pkgerrors.Wrap(err, "render pdf")
	}

	return nil
}

// WritePDF renders doc into a new file at path.
func WritePDF(path string, doc Document, opts PrintOptions) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), 0o750); err != nil { //nolint:mnd
		return pkgerrors.Wrap(err, "create export directory")
	}

	f, err := os.Create(path)
	if err != nil {
		return pkgerrors.Wrap(err, "create pdf file")
	}

	defer func() {
		if errClose := f.Close(); errClose != nil && err == nil {
			err = pkgerrors.Wrap(errClose, "close pdf file")
		}

		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return RenderPDF(f, doc, opts)
}

// fit shortens s until it fits into a cell of width w.
func fit(pdf *gofpdf.Fpdf, s string, w float64) string {
	const padding = 2.0

	if pdf.GetStringWidth(s) <= w-padding {
		return s
	}

	b := []byte(s)
	for len(b) > 0 && pdf.GetStringWidth(string(b)+"...") > w-padding {
		b = b[:len(b)-1]
	}

	return string(b) + "..."
}
