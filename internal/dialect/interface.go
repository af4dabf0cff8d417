package dialect

// Dialect abstracts database-specific enum catalog access and statement text.
type Dialect interface {
	Name() string

	// Metadata Queries (Catalog Introspection)
	ServerVersionQuery() string
	SchemasQuery() string
	EnumsQuery() string
	EnumColumnsQuery() string
	ColumnExistsQuery() string

	// Capabilities
	SetVersion(version int)
	SupportsRenameValue() bool
	SupportsTransactionalAddValue() bool
	MaxIdentifierLength() int

	// Statement Generation
	CreateEnumQuery(schema, name string, values []string) string
	DropEnumQuery(schema, name string) string
	RenameEnumQuery(schema, from, to string) string
	RenameValueQuery(schema, name, from, to string) string
	AddValueQuery(schema, name, value string, pos Position) string
	AlterColumnTypeQuery(col ColumnTarget, typeSchema, typeName string, using string) string
	DropDefaultQuery(col ColumnTarget) string
	SetDefaultQuery(col ColumnTarget, expr string) string
	ReplaceValueQuery(col ColumnTarget, typeSchema, typeName, from string, to *string) string

	// Expressions
	CastExpression(col ColumnTarget, typeSchema, typeName string, mapping map[string]string) string

	// Helpers
	QuoteIdent(name string) string
	QuoteLiteral(value string) string
	QualifiedName(schema, name string) string
	GetSchemaName(input string) string
}

// Position anchors a new enum member relative to an existing one.
// The zero value appends.
type Position struct {
	Before string
	After  string
}

// ColumnTarget is the column an alter/update statement acts on.
type ColumnTarget struct {
	Schema string
	Table  string
	Column string
	Array  bool
}
