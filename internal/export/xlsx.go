package export

import (
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// sheetName strips the characters Excel refuses in sheet names.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}

		return r
	}, strings.TrimSpace(name))

	if name == "" {
		name = "Sheet1"
	}

	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}

	return name
}

// WriteXLSX writes rows as one sheet with a bold header row into a new file at path.
// columns fixes the column order; nil uses the sorted row keys.
func WriteXLSX(path, sheet string, columns []string, rows []map[string]any) (err error) {
	if columns == nil {
		columns = ColumnsOf(rows)
	}

	if len(columns) == 0 {
		return ErrNoColumns
	}

	f := excelize.NewFile()

	defer func() {
		if errClose := f.Close(); errClose != nil && err == nil {
			err = pkgerrors.Wrap(errClose, "close workbook")
		}
	}()

	sheet = sheetName(sheet)

	if sheet != "Sheet1" {
		if err = f.SetSheetName("Sheet1", sheet); err != nil {
			return pkgerrors.Wrap(err, "name sheet")
		}
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}

	if err = f.SetSheetRow(sheet, "A1", &header); err != nil {
		return pkgerrors.Wrap(err, "write header")
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return pkgerrors.Wrap(err, "create header style")
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return pkgerrors.Wrap(err, "header range")
	}

	if err = f.SetCellStyle(sheet, "A1", lastHeader, bold); err != nil {
		return pkgerrors.Wrap(err, "style header")
	}

	for i, row := range rows {
		cell, errCell := excelize.CoordinatesToCellName(1, i+2) //nolint:mnd
		if errCell != nil {
			return pkgerrors.Wrap(errCell, "row cell")
		}

		values := make([]any, len(columns))
		for j, c := range columns {
			values[j] = cellValue(row[c])
		}

		if err = f.SetSheetRow(sheet, cell, &values); err != nil {
			return pkgerrors.Wrapf(err, "write row %d", i+1)
		}
	}

	if err = os.MkdirAll(filepath.Dir(path), 0o750); err != nil { //nolint:mnd
		return pkgerrors.Wrap(err, "create export directory")
	}

	return pkgerrors.Wrap(f.SaveAs(path), "save workbook")
}

// cellValue keeps numbers numeric and renders everything else as text.
func cellValue(v any) any {
	switch v.(type) {
	case int64, int, float64, bool, nil:
		return v
	default:
		return FormatValue(v)
	}
}
