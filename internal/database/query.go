package database

import (
	"strconv"
	"strings"
)

// Placeholder controls which SQL parameter style a statement is rebound to.
type Placeholder int

const (
	// PlaceholderQuestion uses ? placeholders (MySQL, SQLite).
	PlaceholderQuestion Placeholder = iota

	// PlaceholderDollar uses $1, $2, … placeholders (PostgreSQL).
	PlaceholderDollar

	// PlaceholderColon uses :1, :2, … placeholders (Oracle).
	PlaceholderColon
)

// Rebind rewrites the ? placeholders of sql into style p.
// Question marks inside single-quoted literals are left alone.
func Rebind(p Placeholder, sql string) string {
	if p == PlaceholderQuestion {
		return sql
	}

	var sb strings.Builder
	sb.Grow(len(sql) + 8)

	idx := 1
	inLiteral := false
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'':
			inLiteral = !inLiteral
			sb.WriteByte(c)
		case c == '?' && !inLiteral:
			if p == PlaceholderDollar {
				sb.WriteByte('$')
			} else {
				sb.WriteByte(':')
			}
			sb.WriteString(strconv.Itoa(idx))
			idx++
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// SQLVisitor rewrites a generated SQL statement before it is executed.
// Visitors let callers adjust product-specific SQL (hints, schema
// qualification, casing) without touching the code that produced it.
type SQLVisitor func(sql string) string

// ApplyVisitors runs sql through visitors left to right.
func ApplyVisitors(sql string, visitors ...SQLVisitor) string {
	for _, v := range visitors {
		if v != nil {
			sql = v(sql)
		}
	}
	return sql
}

// QuoteIdent wraps a SQL identifier in double-quotes (ANSI standard).
// This safely handles reserved words and mixed-case names.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral wraps s in single quotes, doubling embedded quotes.
// Used only where a catalog statement cannot take a bound parameter
// (SQLite PRAGMA arguments, raw index queries).
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
