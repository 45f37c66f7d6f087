package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name  string
		style Placeholder
		in    string
		want  string
	}{
		{
			name:  "question untouched",
			style: PlaceholderQuestion,
			in:    "SELECT 1 WHERE a = ? AND b = ?",
			want:  "SELECT 1 WHERE a = ? AND b = ?",
		},
		{
			name:  "dollar",
			style: PlaceholderDollar,
			in:    "SELECT 1 WHERE a = ? AND b = ?",
			want:  "SELECT 1 WHERE a = $1 AND b = $2",
		},
		{
			name:  "colon",
			style: PlaceholderColon,
			in:    "SELECT 1 FROM dual WHERE owner = ?",
			want:  "SELECT 1 FROM dual WHERE owner = :1",
		},
		{
			name:  "literal question mark kept",
			style: PlaceholderDollar,
			in:    "SELECT '?' WHERE a = ?",
			want:  "SELECT '?' WHERE a = $1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rebind(tt.style, tt.in))
		})
	}
}

func TestApplyVisitors_LeftToRight(t *testing.T) {
	upper := SQLVisitor(strings.ToUpper)
	suffix := SQLVisitor(func(s string) string { return s + " -- hint" })

	got := ApplyVisitors("select seq from t", upper, nil, suffix)
	assert.Equal(t, "SELECT SEQ FROM T -- hint", got)

	got = ApplyVisitors("select seq from t", suffix, upper)
	assert.Equal(t, "SELECT SEQ FROM T -- HINT", got)

	assert.Equal(t, "x", ApplyVisitors("x"))
}

func TestQuoting(t *testing.T) {
	assert.Equal(t, `"my""table"`, QuoteIdent(`my"table`))
	assert.Equal(t, `'o''brien'`, QuoteLiteral("o'brien"))
}
