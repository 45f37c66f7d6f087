package catalog

// Standard metadata field names.
const (
	FieldTableCat        = "TABLE_CAT"
	FieldTableSchem      = "TABLE_SCHEM"
	FieldTableName       = "TABLE_NAME"
	FieldTableType       = "TABLE_TYPE"
	FieldRemarks         = "REMARKS"
	FieldColumnName      = "COLUMN_NAME"
	FieldDataType        = "DATA_TYPE"
	FieldTypeName        = "TYPE_NAME"
	FieldColumnSize      = "COLUMN_SIZE"
	FieldDecimalDigits   = "DECIMAL_DIGITS"
	FieldNullable        = "NULLABLE"
	FieldColumnDef       = "COLUMN_DEF"
	FieldPKTableName     = "PKTABLE_NAME"
	FieldPKColumnName    = "PKCOLUMN_NAME"
	FieldFKTableSchem    = "FKTABLE_SCHEM"
	FieldFKTableName     = "FKTABLE_NAME"
	FieldFKColumnName    = "FKCOLUMN_NAME"
	FieldKeySeq          = "KEY_SEQ"
	FieldUpdateRule      = "UPDATE_RULE"
	FieldDeleteRule      = "DELETE_RULE"
	FieldFKName          = "FK_NAME"
	FieldPKName          = "PK_NAME"
	FieldDeferrability   = "DEFERRABILITY"
	FieldIndexName       = "INDEX_NAME"
	FieldNonUnique       = "NON_UNIQUE"
	FieldType            = "TYPE"
	FieldOrdinalPosition = "ORDINAL_POSITION"
	FieldFilterCondition = "FILTER_CONDITION"
	FieldIsAutoIncrement = "IS_AUTOINCREMENT"
)

// TABLE_TYPE values requested by the snapshot.
const (
	TypeTable = "TABLE"
	TypeView  = "VIEW"
	TypeAlias = "ALIAS"
)

// UPDATE_RULE / DELETE_RULE codes.
const (
	KeyCascade    = 0
	KeyRestrict   = 1
	KeySetNull    = 2
	KeyNoAction   = 3
	KeySetDefault = 4
)

// DEFERRABILITY codes.
const (
	KeyInitiallyDeferred  = 5
	KeyInitiallyImmediate = 6
	KeyNotDeferrable      = 7
)

// NULLABLE codes.
const (
	ColumnNoNulls         = 0
	ColumnNullable        = 1
	ColumnNullableUnknown = 2
)

// Index TYPE codes.
const (
	IndexStatistic = 0
	IndexClustered = 1
	IndexHashed    = 2
	IndexOther     = 3
)
