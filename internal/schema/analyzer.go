package schema

import (
	"context"
	"database/sql"
	"fmt"

	"enum-sync/internal/dialect"

	"github.com/lib/pq"
)

// Querier is the read-only part of *sql.DB / *sql.Tx the inspector needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ---------------------------------------------------------------------
// 1. Server Capabilities
// ---------------------------------------------------------------------

// DetectVersion reads the server version and records it on the dialect so
// capability checks match the connected server.
func DetectVersion(ctx context.Context, db Querier, d dialect.Dialect) (int, error) {
	var raw string
	if err := db.QueryRowContext(ctx, d.ServerVersionQuery()).Scan(&raw); err != nil {
		return 0, introspectionErr("server version", err)
	}
	version, err := dialect.ParseServerVersion(raw)
	if err != nil {
		return 0, introspectionErr("server version", err)
	}
	d.SetVersion(version)
	return version, nil
}

// ListSchemas returns every non-system schema, sorted.
func ListSchemas(ctx context.Context, db Querier, d dialect.Dialect) ([]string, error) {
	rows, err := db.QueryContext(ctx, d.SchemasQuery())
	if err != nil {
		return nil, introspectionErr("query schemas", err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, introspectionErr("scan schema", err)
		}
		schemas = append(schemas, name)
	}
	if err := rows.Err(); err != nil {
		return nil, introspectionErr("iterate schemas", err)
	}
	return schemas, nil
}

// ---------------------------------------------------------------------
// 2. Enum Catalog Analysis
// ---------------------------------------------------------------------

// InspectDatabase reads enum types owned by schemaName (every schema when
// empty) together with the columns that use them, wherever those columns
// live. Any failure aborts the whole inspection.
func InspectDatabase(ctx context.Context, db Querier, d dialect.Dialect, schemaName string) (*Enums, error) {
	result := NewEnums()

	// --- Step 1: Fetch Enum Types ---
	rows, err := db.QueryContext(ctx, d.EnumsQuery(), schemaName)
	if err != nil {
		return nil, introspectionErr("query enums", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name EnumName
		var labels []string
		if err := rows.Scan(&name.Schema, &name.Name, pq.Array(&labels)); err != nil {
			return nil, introspectionErr("scan enum", err)
		}
		if labels == nil {
			labels = []string{}
		}
		result.Values[name] = labels
	}
	if err := rows.Err(); err != nil {
		return nil, introspectionErr("iterate enums", err)
	}

	// --- Step 2: Fetch Dependent Columns ---
	colRows, err := db.QueryContext(ctx, d.EnumColumnsQuery(), schemaName)
	if err != nil {
		return nil, introspectionErr("query enum columns", err)
	}
	defer colRows.Close()

	for colRows.Next() {
		var name EnumName
		var ref TableReference
		var isArray bool
		var columnDefault string
		if err := colRows.Scan(&name.Schema, &name.Name, &ref.TableSchema, &ref.TableName, &ref.ColumnName, &isArray, &columnDefault); err != nil {
			return nil, introspectionErr(fmt.Sprintf("scan enum column (enum: %s)", name), err)
		}
		if isArray {
			ref.ColumnType = Array
		}
		if _, ok := result.Values[name]; !ok {
			// Type created between the two queries; its members are unknown.
			return nil, introspectionErr("resolve enum column", fmt.Errorf("column %s references unknown enum %s", ref, name))
		}
		result.addReference(name, ref)
		if columnDefault != "" {
			result.Defaults[ref] = columnDefault
		}
	}
	if err := colRows.Err(); err != nil {
		return nil, introspectionErr("iterate enum columns", err)
	}

	return result, nil
}

// ---------------------------------------------------------------------
// 3. Live Column Resolution
// ---------------------------------------------------------------------

// DatabaseResolver checks table references against the live catalog.
type DatabaseResolver struct {
	DB      Querier
	Dialect dialect.Dialect
}

// ColumnExists reports whether ref still names a real column.
func (r *DatabaseResolver) ColumnExists(ctx context.Context, ref TableReference) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, r.Dialect.ColumnExistsQuery(),
		r.Dialect.GetSchemaName(ref.TableSchema), ref.TableName, ref.ColumnName).Scan(&exists)
	if err != nil {
		return false, introspectionErr("resolve column "+ref.String(), err)
	}
	return exists, nil
}
