package engine

import (
	"maps"
	"slices"
	"sort"

	"enum-sync/internal/dialect"
	"enum-sync/internal/schema"
)

// Kind tags an operation.
type Kind string

const (
	KindRenameValue  Kind = "rename_value"
	KindAddValue     Kind = "add_value"
	KindRemoveValues Kind = "remove_values"
	KindCreateType   Kind = "create_type"
	KindAlterColumn  Kind = "alter_column"
	KindDropType     Kind = "drop_type"
	KindRenameType   Kind = "rename_type"
	KindSetDefault   Kind = "set_default"
)

// Operation is one atomic step of a plan. A type rebuild is the sequence
// CreateType, AlterColumn..., DropType, RenameType.
type Operation interface {
	Kind() Kind
	Statements(d dialect.Dialect) []Statement
}

// Statement is rendered SQL. Autocommit statements must run outside a
// transaction block, after everything before them has committed.
type Statement struct {
	SQL        string
	Autocommit bool
}

func target(ref schema.TableReference) dialect.ColumnTarget {
	return dialect.ColumnTarget{
		Schema: ref.TableSchema,
		Table:  ref.TableName,
		Column: ref.ColumnName,
		Array:  ref.ColumnType == schema.Array,
	}
}

// RenameValue renames one member in place.
type RenameValue struct {
	Enum schema.EnumName
	From string
	To   string
}

func (o *RenameValue) Kind() Kind { return KindRenameValue }

func (o *RenameValue) Statements(d dialect.Dialect) []Statement {
	return []Statement{{SQL: d.RenameValueQuery(o.Enum.Schema, o.Enum.Name, o.From, o.To)}}
}

// AddValue adds one member. Empty Before and After append it.
type AddValue struct {
	Enum       schema.EnumName
	Value      string
	Before     string
	After      string
	Autocommit bool
}

func (o *AddValue) Kind() Kind { return KindAddValue }

func (o *AddValue) Statements(d dialect.Dialect) []Statement {
	pos := dialect.Position{Before: o.Before, After: o.After}
	return []Statement{{
		SQL:        d.AddValueQuery(o.Enum.Schema, o.Enum.Name, o.Value, pos),
		Autocommit: o.Autocommit,
	}}
}

// RemoveValues moves rows of one column off members about to be removed.
// Members missing from Replacements are cleared.
type RemoveValues struct {
	Enum         schema.EnumName
	Ref          schema.TableReference
	Values       []string
	Replacements map[string]string
}

func (o *RemoveValues) Kind() Kind { return KindRemoveValues }

func (o *RemoveValues) Statements(d dialect.Dialect) []Statement {
	stmts := make([]Statement, 0, len(o.Values))
	for _, v := range o.Values {
		var to *string
		if r, ok := o.Replacements[v]; ok {
			to = &r
		}
		stmts = append(stmts, Statement{SQL: d.ReplaceValueQuery(target(o.Ref), o.Enum.Schema, o.Enum.Name, v, to)})
	}
	return stmts
}

type CreateType struct {
	Enum   schema.EnumName
	Values []string
}

func (o *CreateType) Kind() Kind { return KindCreateType }

func (o *CreateType) Statements(d dialect.Dialect) []Statement {
	return []Statement{{SQL: d.CreateEnumQuery(o.Enum.Schema, o.Enum.Name, o.Values)}}
}

// AlterColumn switches a column from one enum type to another. Mapping
// renames members during the cast and forces a USING clause.
type AlterColumn struct {
	Ref         schema.TableReference
	From        schema.EnumName
	To          schema.EnumName
	Using       bool
	Mapping     map[string]string
	DropDefault bool
}

func (o *AlterColumn) Kind() Kind { return KindAlterColumn }

func (o *AlterColumn) Statements(d dialect.Dialect) []Statement {
	col := target(o.Ref)
	var stmts []Statement
	if o.DropDefault {
		stmts = append(stmts, Statement{SQL: d.DropDefaultQuery(col)})
	}
	using := ""
	if o.Using || len(o.Mapping) > 0 {
		using = d.CastExpression(col, o.To.Schema, o.To.Name, o.Mapping)
	}
	stmts = append(stmts, Statement{SQL: d.AlterColumnTypeQuery(col, o.To.Schema, o.To.Name, using)})
	return stmts
}

type DropType struct {
	Enum schema.EnumName
}

func (o *DropType) Kind() Kind { return KindDropType }

func (o *DropType) Statements(d dialect.Dialect) []Statement {
	return []Statement{{SQL: d.DropEnumQuery(o.Enum.Schema, o.Enum.Name)}}
}

// RenameType renames an enum type within its schema.
type RenameType struct {
	Enum schema.EnumName
	To   string
}

func (o *RenameType) Kind() Kind { return KindRenameType }

func (o *RenameType) Statements(d dialect.Dialect) []Statement {
	return []Statement{{SQL: d.RenameEnumQuery(o.Enum.Schema, o.Enum.Name, o.To)}}
}

type SetDefault struct {
	Ref  schema.TableReference
	Expr string
}

func (o *SetDefault) Kind() Kind { return KindSetDefault }

func (o *SetDefault) Statements(d dialect.Dialect) []Statement {
	return []Statement{{SQL: d.SetDefaultQuery(target(o.Ref), o.Expr)}}
}

// sortedKeys is used where map order would leak into output.
func sortedKeys(m map[string]string) []string {
	keys := slices.Collect(maps.Keys(m))
	sort.Strings(keys)
	return keys
}
