package bridge

import (
	"bytes"
	"encoding/json"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/ledgerdesk/ledgerdesk/internal/export"
)

// SaveRequest is the input of save-file.
type SaveRequest struct {
	FileName string          `json:"fileName" validate:"required"`
	Data     json.RawMessage `json:"data"     validate:"required"`
}

// LoadRequest is the optional input of load-file. An empty FileName loads the last saved file.
type LoadRequest struct {
	FileName string `json:"fileName"`
}

// ExportPDFRequest is the input of export-pdf. A nil Document prints the company summary.
type ExportPDFRequest struct {
	export.PrintOptions
	Document *export.Document `json:"document"`
}

// SQLRequest is the input of db-query and db-update.
type SQLRequest struct {
	SQL    string `json:"sql"    validate:"required"`
	Params []any  `json:"params"`
}

// TableRequest is the input of db-get-table and db-export-xlsx.
type TableRequest struct {
	Table string `json:"table" validate:"required"`
}

// RestoreRequest is the optional input of db-restore. An empty FilePath restores the newest backup.
type RestoreRequest struct {
	FilePath string `json:"filePath"`
}

// decode reads raw into dst and validates it. Absent input decodes to the zero value.
func (b *Bridge) decode(raw json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(raw)

	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()

		if err := dec.Decode(dst); err != nil {
			return pkgerrors.Wrap(err, "decode request")
		}
	}

	if err := b.validate.Struct(dst); err != nil {
		return pkgerrors.Wrap(err, "invalid request")
	}

	return nil
}

// bindParams turns decoded JSON values into driver arguments.
// Whole numbers become int64, other numbers float64, objects and arrays their JSON text.
func bindParams(params []any) ([]any, error) {
	out := make([]any, len(params))

	for i, p := range params {
		switch v := p.(type) {
		case json.Number:
			if n, err := v.Int64(); err == nil && !strings.ContainsAny(v.String(), ".eE") {
				out[i] = n
				continue
			}

			f, err := v.Float64()
			if err != nil {
				return nil, pkgerrors.Wrapf(err, "param %d", i+1)
			}

			out[i] = f
		case map[string]any, []any:
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, pkgerrors.Wrapf(err, "param %d", i+1)
			}

			out[i] = string(raw)
		default:
			out[i] = v
		}
	}

	return out, nil
}
