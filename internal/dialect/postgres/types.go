package postgres

import (
	"strings"

	"github.com/koustreak/dbsnap/internal/catalog"
)

// sqlType maps information_schema data_type / udt_name to a type code.
func sqlType(dataType, udtName string) catalog.SQLType {
	if dataType == "ARRAY" || strings.HasPrefix(udtName, "_") {
		return catalog.Array
	}
	switch udtName {
	case "int2":
		return catalog.SmallInt
	case "int4":
		return catalog.Integer
	case "int8", "oid":
		return catalog.BigInt
	case "float4":
		return catalog.Real
	case "float8", "money":
		return catalog.Double
	case "numeric":
		return catalog.Numeric
	case "bpchar", "char":
		return catalog.Char
	case "varchar", "text", "name", "citext":
		return catalog.VarChar
	case "bool":
		return catalog.Boolean
	case "bit", "varbit":
		return catalog.Bit
	case "date":
		return catalog.Date
	case "time":
		return catalog.Time
	case "timetz":
		return catalog.TimeTZ
	case "timestamp":
		return catalog.Timestamp
	case "timestamptz":
		return catalog.TimestampTZ
	case "bytea":
		return catalog.Binary
	}
	return catalog.Other
}

// normalizeUdtName converts PostgreSQL internal type names to more readable forms
func normalizeUdtName(udtName string) string {
	switch udtName {
	case "int4":
		return "integer"
	case "int8":
		return "bigint"
	case "int2":
		return "smallint"
	case "float4":
		return "real"
	case "float8":
		return "double precision"
	case "bool":
		return "boolean"
	case "bpchar":
		return "char"
	default:
		return udtName
	}
}

// columnType renders a udt name the way DDL would spell it. Generated
// integer columns become their serial pseudo-types.
func columnType(udtName string, autoIncrement bool) string {
	if autoIncrement {
		switch udtName {
		case "int2":
			return "smallserial"
		case "int4":
			return "serial"
		case "int8":
			return "bigserial"
		}
	}
	if strings.HasPrefix(udtName, "_") {
		return normalizeUdtName(udtName[1:]) + "[]"
	}
	return normalizeUdtName(udtName)
}
