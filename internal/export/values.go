package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// FormatValue renders a column value as cell text.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case time.Time:
		return t.Format(time.DateTime)
	default:
		return fmt.Sprint(t)
	}
}

// ColumnsOf returns the sorted union of the keys of rows.
func ColumnsOf(rows []map[string]any) []string {
	seen := make(map[string]struct{})

	for _, r := range rows {
		for k := range r {
			seen[k] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}
