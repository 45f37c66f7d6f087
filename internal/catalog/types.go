package catalog

// SQLType is the product-neutral type code carried in DATA_TYPE.
type SQLType int

// Type codes shared by every catalog implementation.
const (
	Bit           SQLType = -7
	TinyInt       SQLType = -6
	SmallInt      SQLType = 5
	Integer       SQLType = 4
	BigInt        SQLType = -5
	Float         SQLType = 6
	Real          SQLType = 7
	Double        SQLType = 8
	Numeric       SQLType = 2
	Decimal       SQLType = 3
	Char          SQLType = 1
	VarChar       SQLType = 12
	LongVarChar   SQLType = -1
	Date          SQLType = 91
	Time          SQLType = 92
	Timestamp     SQLType = 93
	Binary        SQLType = -2
	VarBinary     SQLType = -3
	LongVarBinary SQLType = -4
	Null          SQLType = 0
	Other         SQLType = 1111
	Blob          SQLType = 2004
	Clob          SQLType = 2005
	Boolean       SQLType = 16
	Array         SQLType = 2003
	NChar         SQLType = -15
	NVarChar      SQLType = -9
	LongNVarChar  SQLType = -16
	NClob         SQLType = 2011
	TimeTZ        SQLType = 2013
	TimestampTZ   SQLType = 2014
)

var typeNames = map[SQLType]string{
	Bit: "BIT", TinyInt: "TINYINT", SmallInt: "SMALLINT", Integer: "INTEGER",
	BigInt: "BIGINT", Float: "FLOAT", Real: "REAL", Double: "DOUBLE",
	Numeric: "NUMERIC", Decimal: "DECIMAL", Char: "CHAR", VarChar: "VARCHAR",
	LongVarChar: "LONGVARCHAR", Date: "DATE", Time: "TIME", Timestamp: "TIMESTAMP",
	Binary: "BINARY", VarBinary: "VARBINARY", LongVarBinary: "LONGVARBINARY",
	Null: "NULL", Other: "OTHER", Blob: "BLOB", Clob: "CLOB", Boolean: "BOOLEAN",
	Array: "ARRAY", NChar: "NCHAR", NVarChar: "NVARCHAR", LongNVarChar: "LONGNVARCHAR",
	NClob: "NCLOB", TimeTZ: "TIME_WITH_TIMEZONE", TimestampTZ: "TIMESTAMP_WITH_TIMEZONE",
}

func (t SQLType) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "OTHER"
}

// IsNumeric reports whether values of t are numbers.
func (t SQLType) IsNumeric() bool {
	switch t {
	case TinyInt, SmallInt, Integer, BigInt, Float, Real, Double, Numeric, Decimal:
		return true
	}
	return false
}

// IsInteger reports whether t holds whole numbers only.
func (t SQLType) IsInteger() bool {
	switch t {
	case TinyInt, SmallInt, Integer, BigInt:
		return true
	}
	return false
}

// IsCharacter reports whether t holds text.
func (t SQLType) IsCharacter() bool {
	switch t {
	case Char, VarChar, LongVarChar, NChar, NVarChar, LongNVarChar, Clob, NClob:
		return true
	}
	return false
}

// IsTemporal reports whether t holds dates or times.
func (t SQLType) IsTemporal() bool {
	switch t {
	case Date, Time, Timestamp, TimeTZ, TimestampTZ:
		return true
	}
	return false
}

// IsBoolean reports whether t holds truth values.
func (t SQLType) IsBoolean() bool {
	return t == Boolean || t == Bit
}
