package schema

import (
	"fmt"
	"slices"
)

// MetaData is the application's declared schema: the tables and enum types
// it expects the database to have.
type MetaData struct {
	// Schema applies to tables and enums that do not name their own.
	Schema string
	Tables []*Table
	// Enums lists enum types declared without being attached to a column.
	Enums []*EnumType
}

type Table struct {
	Schema  string
	Name    string
	Columns []*Column
}

// Column is a declared column. Enum is nil for non-enum columns; Array marks
// an array of the enum.
type Column struct {
	Name     string
	DataType string
	Enum     *EnumType
	Array    bool
}

// EnumType is a declared enum. With InheritSchema and no explicit Schema the
// type lives in the schema of the table using it.
type EnumType struct {
	Name          string
	Schema        string
	InheritSchema bool
	Values        []string
}

func (m *MetaData) tableSchema(t *Table, defaultSchema string) string {
	switch {
	case t.Schema != "":
		return t.Schema
	case m.Schema != "":
		return m.Schema
	default:
		return defaultSchema
	}
}

func (m *MetaData) enumSchema(e *EnumType, tableSchema, defaultSchema string) string {
	switch {
	case e.Schema != "":
		return e.Schema
	case e.InheritSchema && tableSchema != "":
		return tableSchema
	case m.Schema != "":
		return m.Schema
	default:
		return defaultSchema
	}
}

// DeclaredEnums collects the enums the application declares in schemaName
// (every schema when empty), in the same shape InspectDatabase returns.
// References are reported under the schema of the table holding the column,
// which can differ from the enum's own schema.
func DeclaredEnums(meta *MetaData, schemaName, defaultSchema string) (*Enums, error) {
	result := NewEnums()

	declare := func(name EnumName, values []string) error {
		if existing, ok := result.Values[name]; ok {
			if !slices.Equal(existing, values) {
				return fmt.Errorf("%w: %s declared as %v and %v", ErrConflictingEnum, name, existing, values)
			}
			return nil
		}
		result.Values[name] = slices.Clone(values)
		return nil
	}
	inScope := func(name EnumName) bool {
		return schemaName == "" || name.Schema == schemaName
	}

	for _, e := range meta.Enums {
		name := EnumName{Schema: meta.enumSchema(e, "", defaultSchema), Name: e.Name}
		if !inScope(name) {
			continue
		}
		if err := declare(name, e.Values); err != nil {
			return nil, err
		}
	}

	for _, t := range meta.Tables {
		ts := meta.tableSchema(t, defaultSchema)
		for _, c := range t.Columns {
			if c.Enum == nil {
				continue
			}
			name := EnumName{Schema: meta.enumSchema(c.Enum, ts, defaultSchema), Name: c.Enum.Name}
			if !inScope(name) {
				continue
			}
			if err := declare(name, c.Enum.Values); err != nil {
				return nil, err
			}
			ref := TableReference{TableSchema: ts, TableName: t.Name, ColumnName: c.Name}
			if c.Array {
				ref.ColumnType = Array
			}
			result.addReference(name, ref)
		}
	}

	return result, nil
}
