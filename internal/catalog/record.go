package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is one row of a catalog call keyed by upper-case field name.
type Record map[string]any

// Has reports whether the field is present in the row, NULL or not.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// Value returns the raw value of field, nil when absent or NULL.
func (r Record) Value(field string) any {
	return r[field]
}

// IsNull reports whether field is absent or NULL.
func (r Record) IsNull(field string) bool {
	return r[field] == nil
}

// String returns field as text; "" when absent or NULL.
func (r Record) String(field string) string {
	s, _ := r.NullString(field)
	return s
}

// NullString returns field as text and whether it was non-NULL.
func (r Record) NullString(field string) (string, bool) {
	switch v := r[field].(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []byte:
		return string(v), true
	case time.Time:
		return v.Format(time.RFC3339Nano), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// Int returns field as an int; 0 when absent, NULL or not numeric.
func (r Record) Int(field string) int {
	n, _ := r.NullInt(field)
	return n
}

// NullInt returns field as an int and whether it held a numeric value.
func (r Record) NullInt(field string) (int, bool) {
	return toInt(r[field])
}

// Bool returns field as a boolean. Numeric values are true when non-zero;
// text accepts the usual catalog spellings (t, true, yes, y, 1).
func (r Record) Bool(field string) bool {
	switch v := r[field].(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return parseBool(v)
	case []byte:
		return parseBool(string(v))
	default:
		n, ok := toInt(v)
		return ok && n != 0
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "t", "true", "y", "yes", "1":
		return true
	}
	return false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int(n), true
	case float32:
		return int(n), true
	case float64:
		return int(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		return atoi(n)
	case []byte:
		return atoi(string(n))
	}
	return 0, false
}

func atoi(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), true
	}
	return 0, false
}
