package dialect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/errs"
	"github.com/koustreak/dbsnap/internal/schema"
)

var (
	functionCall = regexp.MustCompile(`^[A-Za-z_][\w.]*\s*\(.*\)$`)
	bitLiteral   = regexp.MustCompile(`^[bB]'([01]+)'$`)
)

// keywordFunctions are niladic SQL functions written without parentheses.
var keywordFunctions = map[string]bool{
	"CURRENT_DATE":      true,
	"CURRENT_TIME":      true,
	"CURRENT_TIMESTAMP": true,
	"CURRENT_USER":      true,
	"LOCALTIME":         true,
	"LOCALTIMESTAMP":    true,
	"SESSION_USER":      true,
	"SYSDATE":           true,
	"SYSTIMESTAMP":      true,
	"USER":              true,
}

var temporalLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
	"15:04:05.999999999Z07:00",
	"15:04:05.999999999Z07",
	"15:04:05.999999999",
}

// IsFunction reports whether s reads as a computed expression rather than
// a literal.
func IsFunction(s string) bool {
	s = strings.TrimSpace(s)
	if keywordFunctions[strings.ToUpper(s)] {
		return true
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return true
	}
	return functionCall.MatchString(s)
}

// Unquote strips one level of single quotes, undoing doubled quotes.
// ok is false when s is not a quoted literal.
func Unquote(s string) (string, bool) {
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return s, false
	}
	return strings.ReplaceAll(s[1:len(s)-1], "''", "'"), true
}

// ConvertValue normalizes a raw catalog default into a Go value for a
// column of type dataType:
//
//	integer types       -> int64
//	other numeric types -> float64 (int64 when digits is 0 and it fits)
//	boolean/bit         -> bool (int64 for multi-bit b'...' literals)
//	date/time types     -> time.Time
//	character types     -> string
//
// Expressions become schema.Function. A literal that does not fit its
// column type is an ErrKindInvalidData error.
func ConvertValue(raw any, dataType catalog.SQLType, digits int) (any, error) {
	var s string
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time, bool, int64, float64:
		return v, nil
	default:
		s = fmt.Sprint(v)
	}

	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "NULL") {
		return nil, nil
	}

	literal, quoted := Unquote(s)
	if !quoted {
		if IsFunction(s) {
			return schema.Function(s), nil
		}
		// unquoted text column defaults (MySQL reports them bare)
		if dataType.IsCharacter() {
			return s, nil
		}
	}

	switch {
	case dataType.IsCharacter():
		return literal, nil
	case dataType.IsBoolean():
		return parseBoolDefault(literal, dataType)
	case dataType.IsInteger():
		n, err := strconv.ParseInt(literal, 10, 64)
		if err != nil {
			return nil, invalid(literal, dataType, err)
		}
		return n, nil
	case dataType.IsNumeric():
		if digits == 0 {
			if n, err := strconv.ParseInt(literal, 10, 64); err == nil {
				return n, nil
			}
		}
		f, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return nil, invalid(literal, dataType, err)
		}
		return f, nil
	case dataType.IsTemporal():
		for _, layout := range temporalLayouts {
			if t, err := time.Parse(layout, literal); err == nil {
				return t, nil
			}
		}
		return nil, invalid(literal, dataType, nil)
	}
	return literal, nil
}

func parseBoolDefault(s string, dataType catalog.SQLType) (any, error) {
	if m := bitLiteral.FindStringSubmatch(s); m != nil {
		if len(m[1]) == 1 {
			return m[1] == "1", nil
		}
		// multi-bit strings are reported as their unsigned value
		n, err := strconv.ParseUint(m[1], 2, 64)
		if err != nil {
			return nil, invalid(s, dataType, err)
		}
		return int64(n), nil
	}
	switch strings.ToLower(s) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	}
	return nil, invalid(s, dataType, nil)
}

func invalid(s string, dataType catalog.SQLType, cause error) error {
	if cause == nil {
		cause = fmt.Errorf("unrecognized %s literal", dataType)
	}
	return errs.Wrapf(errs.ErrKindInvalidData, cause, "cannot convert default %q to %s", s, dataType)
}
