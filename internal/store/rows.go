package store

import (
	"database/sql"
	"unicode/utf8"
)

// scanRows reads every row into a column map and closes rows.
// Text that arrives as bytes is returned as string; binary blobs stay []byte.
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	out := make([]map[string]any, 0)

	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))

		for i := range values {
			pointers[i] = &values[i]
		}

		if err = rows.Scan(pointers...); err != nil {
			return nil, err //nolint:wrapcheck
		}

		row := make(map[string]any, len(columns))

		for i, col := range columns {
			if b, ok := values[i].([]byte); ok && utf8.Valid(b) {
				row[col] = string(b)
				continue
			}

			row[col] = values[i]
		}

		out = append(out, row)
	}

	return out, rows.Err() //nolint:wrapcheck
}
