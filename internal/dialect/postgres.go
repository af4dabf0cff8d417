package dialect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"
)

// Server versions (server_version_num) that changed enum behaviour.
const (
	pgRenameValueVersion      = 100000 // ALTER TYPE ... RENAME VALUE
	pgPartitionVersion        = 100000 // pg_class.relispartition
	pgTransactionalAddVersion = 120000 // ADD VALUE usable inside a transaction block

	pgMaxIdentifierLength = 63 // NAMEDATALEN - 1
)

// PostgresDialect targets PostgreSQL named enum types. A zero Version means
// the server version is unknown and the newest behaviour is assumed.
type PostgresDialect struct {
	Version int
}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) atLeast(version int) bool {
	return d.Version == 0 || d.Version >= version
}

func (d *PostgresDialect) ServerVersionQuery() string {
	return `SHOW server_version_num`
}

func (d *PostgresDialect) SchemasQuery() string {
	return `SELECT nspname FROM pg_catalog.pg_namespace
WHERE nspname NOT IN ('pg_catalog', 'information_schema')
  AND nspname NOT LIKE 'pg\_toast%'
  AND nspname NOT LIKE 'pg\_temp\_%'
ORDER BY nspname`
}

// EnumsQuery returns (schema, name, labels) with labels in declaration order.
// An empty $1 selects every non-system schema.
func (d *PostgresDialect) EnumsQuery() string {
	return `SELECT n.nspname, t.typname,
    ARRAY(SELECT e.enumlabel FROM pg_catalog.pg_enum e WHERE e.enumtypid = t.oid ORDER BY e.enumsortorder)::text[]
FROM pg_catalog.pg_type t
JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
WHERE t.typtype = 'e'
  AND ($1::text = '' OR n.nspname = $1::text)
  AND n.nspname NOT IN ('pg_catalog', 'information_schema')
ORDER BY n.nspname, t.typname`
}

// EnumColumnsQuery returns every table column whose type is an enum owned by
// $1 (or any schema when empty), matching both the enum itself and its array
// type so array columns are resolved through the catalog.
func (d *PostgresDialect) EnumColumnsQuery() string {
	partitionFilter := ""
	if d.atLeast(pgPartitionVersion) {
		partitionFilter = "\n  AND NOT c.relispartition"
	}
	return `SELECT en.nspname, et.typname, tn.nspname, c.relname, a.attname,
    a.atttypid = et.typarray AS is_array,
    COALESCE(pg_catalog.pg_get_expr(ad.adbin, ad.adrelid), '') AS column_default
FROM pg_catalog.pg_attribute a
JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
JOIN pg_catalog.pg_namespace tn ON tn.oid = c.relnamespace
JOIN pg_catalog.pg_type et ON (a.atttypid = et.oid OR a.atttypid = et.typarray)
JOIN pg_catalog.pg_namespace en ON en.oid = et.typnamespace
LEFT JOIN pg_catalog.pg_attrdef ad ON ad.adrelid = a.attrelid AND ad.adnum = a.attnum
WHERE et.typtype = 'e'
  AND c.relkind IN ('r', 'p')
  AND a.attnum > 0
  AND NOT a.attisdropped` + partitionFilter + `
  AND ($1::text = '' OR en.nspname = $1::text)
ORDER BY en.nspname, et.typname, tn.nspname, c.relname, a.attname`
}

func (d *PostgresDialect) ColumnExistsQuery() string {
	return `SELECT EXISTS (
    SELECT 1 FROM pg_catalog.pg_attribute a
    JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
    JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
    WHERE n.nspname = $1 AND c.relname = $2 AND a.attname = $3
      AND a.attnum > 0 AND NOT a.attisdropped
)`
}

func (d *PostgresDialect) SetVersion(version int) {
	d.Version = version
}

func (d *PostgresDialect) SupportsRenameValue() bool {
	return d.atLeast(pgRenameValueVersion)
}

// SupportsTransactionalAddValue reports whether a value added with ADD VALUE
// may run in a transaction block. Even then the new value is unusable until
// that transaction commits.
func (d *PostgresDialect) SupportsTransactionalAddValue() bool {
	return d.atLeast(pgTransactionalAddVersion)
}

// MaxIdentifierLength is the longest type name, in bytes, the server keeps
// without truncating it.
func (d *PostgresDialect) MaxIdentifierLength() int {
	return pgMaxIdentifierLength
}

func (d *PostgresDialect) CreateEnumQuery(schema, name string, values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = d.QuoteLiteral(v)
	}
	return fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", d.QualifiedName(schema, name), strings.Join(quoted, ", "))
}

func (d *PostgresDialect) DropEnumQuery(schema, name string) string {
	return fmt.Sprintf("DROP TYPE %s", d.QualifiedName(schema, name))
}

func (d *PostgresDialect) RenameEnumQuery(schema, from, to string) string {
	return fmt.Sprintf("ALTER TYPE %s RENAME TO %s", d.QualifiedName(schema, from), d.QuoteIdent(to))
}

func (d *PostgresDialect) RenameValueQuery(schema, name, from, to string) string {
	return fmt.Sprintf("ALTER TYPE %s RENAME VALUE %s TO %s",
		d.QualifiedName(schema, name), d.QuoteLiteral(from), d.QuoteLiteral(to))
}

func (d *PostgresDialect) AddValueQuery(schema, name, value string, pos Position) string {
	q := fmt.Sprintf("ALTER TYPE %s ADD VALUE %s", d.QualifiedName(schema, name), d.QuoteLiteral(value))
	switch {
	case pos.Before != "":
		q += " BEFORE " + d.QuoteLiteral(pos.Before)
	case pos.After != "":
		q += " AFTER " + d.QuoteLiteral(pos.After)
	}
	return q
}

func (d *PostgresDialect) typeRef(typeSchema, typeName string, array bool) string {
	t := d.QualifiedName(typeSchema, typeName)
	if array {
		t += "[]"
	}
	return t
}

func (d *PostgresDialect) tableRef(col ColumnTarget) string {
	return d.QualifiedName(d.GetSchemaName(col.Schema), col.Table)
}

func (d *PostgresDialect) AlterColumnTypeQuery(col ColumnTarget, typeSchema, typeName string, using string) string {
	q := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s",
		d.tableRef(col), d.QuoteIdent(col.Column), d.typeRef(typeSchema, typeName, col.Array))
	if using != "" {
		q += " USING " + using
	}
	return q
}

func (d *PostgresDialect) DropDefaultQuery(col ColumnTarget) string {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", d.tableRef(col), d.QuoteIdent(col.Column))
}

func (d *PostgresDialect) SetDefaultQuery(col ColumnTarget, expr string) string {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", d.tableRef(col), d.QuoteIdent(col.Column), expr)
}

// ReplaceValueQuery rewrites rows holding from. A nil to clears the value:
// scalar columns are set to NULL, array columns drop the element.
func (d *PostgresDialect) ReplaceValueQuery(col ColumnTarget, typeSchema, typeName, from string, to *string) string {
	column := d.QuoteIdent(col.Column)
	if !col.Array {
		target := "NULL"
		if to != nil {
			target = d.QuoteLiteral(*to)
		}
		return fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = %s",
			d.tableRef(col), column, target, column, d.QuoteLiteral(from))
	}
	typ := d.typeRef(typeSchema, typeName, false)
	fromLit := d.QuoteLiteral(from) + "::" + typ
	var set string
	if to != nil {
		set = fmt.Sprintf("array_replace(%s, %s, %s::%s)", column, fromLit, d.QuoteLiteral(*to), typ)
	} else {
		set = fmt.Sprintf("array_remove(%s, %s)", column, fromLit)
	}
	return fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = ANY(%s)",
		d.tableRef(col), column, set, fromLit, column)
}

// CastExpression converts col to the given enum (or enum array) through text.
// mapping renames labels on the way; USING does not allow subqueries, so
// arrays use nested array_replace calls.
func (d *PostgresDialect) CastExpression(col ColumnTarget, typeSchema, typeName string, mapping map[string]string) string {
	column := d.QuoteIdent(col.Column)
	target := d.typeRef(typeSchema, typeName, col.Array)

	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if col.Array {
		expr := column + "::text[]"
		for _, k := range keys {
			expr = fmt.Sprintf("array_replace(%s, %s, %s)", expr, d.QuoteLiteral(k), d.QuoteLiteral(mapping[k]))
		}
		return expr + "::" + target
	}
	if len(keys) == 0 {
		return column + "::text::" + target
	}
	var sb strings.Builder
	sb.WriteString("CASE ")
	sb.WriteString(column)
	sb.WriteString("::text")
	for _, k := range keys {
		fmt.Fprintf(&sb, " WHEN %s THEN %s", d.QuoteLiteral(k), d.QuoteLiteral(mapping[k]))
	}
	fmt.Fprintf(&sb, " ELSE %s::text END::%s", column, target)
	return sb.String()
}

func (d *PostgresDialect) QuoteIdent(name string) string {
	return pq.QuoteIdentifier(name)
}

func (d *PostgresDialect) QuoteLiteral(value string) string {
	return pq.QuoteLiteral(value)
}

func (d *PostgresDialect) QualifiedName(schema, name string) string {
	return d.QuoteIdent(d.GetSchemaName(schema)) + "." + d.QuoteIdent(name)
}

func (d *PostgresDialect) GetSchemaName(input string) string {
	if input == "" {
		return "public"
	}
	return input
}
