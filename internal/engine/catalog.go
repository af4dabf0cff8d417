package engine

import (
	"fmt"
	"maps"
	"slices"

	"enum-sync/internal/dialect"
	"enum-sync/internal/schema"
)

// ColumnKey identifies a column in the simulated catalog.
type ColumnKey struct {
	Schema string
	Table  string
	Column string
}

func keyOf(ref schema.TableReference) ColumnKey {
	return ColumnKey{Schema: ref.TableSchema, Table: ref.TableName, Column: ref.ColumnName}
}

// ColumnState is the enum-related state of one column.
type ColumnState struct {
	Type    schema.EnumName
	Array   bool
	Default string
}

// Catalog is an in-memory model of the enum types and their dependent
// columns. Apply enforces the preconditions PostgreSQL checks, so a plan
// that applies cleanly here has the right shape for the real catalog.
//
// Operations run the way Script groups them: consecutive transactional
// operations share one transaction and an autocommit operation commits it.
type Catalog struct {
	Types   map[schema.EnumName][]string
	Columns map[ColumnKey]ColumnState

	dialect dialect.Dialect
	// members added by ADD VALUE in the open transaction, and the types
	// that transaction created
	uncommitted map[schema.EnumName][]string
	created     map[schema.EnumName]bool
}

// NewCatalog seeds a catalog from inspected enums.
func NewCatalog(e *schema.Enums, d dialect.Dialect) *Catalog {
	c := &Catalog{
		Types:   make(map[schema.EnumName][]string, len(e.Values)),
		Columns: make(map[ColumnKey]ColumnState),
		dialect: d,
	}
	for name, values := range e.Values {
		c.Types[name] = slices.Clone(values)
	}
	for name, refs := range e.References {
		for ref := range refs {
			c.Columns[keyOf(ref)] = ColumnState{
				Type:    name,
				Array:   ref.ColumnType == schema.Array,
				Default: e.Defaults[ref],
			}
		}
	}
	return c
}

func (c *Catalog) Clone() *Catalog {
	out := &Catalog{
		Types:   make(map[schema.EnumName][]string, len(c.Types)),
		Columns: maps.Clone(c.Columns),
		dialect: c.dialect,
	}
	for name, values := range c.Types {
		out.Types[name] = slices.Clone(values)
	}
	for name, values := range c.uncommitted {
		if out.uncommitted == nil {
			out.uncommitted = make(map[schema.EnumName][]string)
		}
		out.uncommitted[name] = slices.Clone(values)
	}
	if c.created != nil {
		out.created = maps.Clone(c.created)
	}
	return out
}

// Commit ends the open transaction.
func (c *Catalog) Commit() {
	c.uncommitted = nil
	c.created = nil
}

func (c *Catalog) usable(name schema.EnumName, values ...string) error {
	for _, v := range values {
		if slices.Contains(c.uncommitted[name], v) {
			return fmt.Errorf("unsafe use of new value %q of enum type %s", v, name)
		}
	}
	return nil
}

// Equal compares types, member order and column state.
func (c *Catalog) Equal(o *Catalog) bool {
	return maps.EqualFunc(c.Types, o.Types, func(a, b []string) bool { return slices.Equal(a, b) }) && maps.Equal(c.Columns, o.Columns)
}

// ApplyAll applies ops in order as one script and stops at the first
// failure. The last transaction commits when the script ends.
func (c *Catalog) ApplyAll(ops []Operation) error {
	for i, op := range ops {
		if err := c.Apply(op); err != nil {
			return fmt.Errorf("operation %d (%s): %w", i, op.Kind(), err)
		}
	}
	c.Commit()
	return nil
}

func (c *Catalog) members(name schema.EnumName) ([]string, error) {
	values, ok := c.Types[name]
	if !ok {
		return nil, fmt.Errorf("type %s does not exist", name)
	}
	return values, nil
}

func (c *Catalog) column(ref schema.TableReference, typ schema.EnumName) (ColumnState, error) {
	col, ok := c.Columns[keyOf(ref)]
	if !ok {
		return col, fmt.Errorf("column %s does not exist", ref)
	}
	if col.Type != typ {
		return col, fmt.Errorf("column %s has type %s, not %s", ref, col.Type, typ)
	}
	if col.Array != (ref.ColumnType == schema.Array) {
		return col, fmt.Errorf("column %s array flag mismatch", ref)
	}
	return col, nil
}

// Apply applies one operation.
func (c *Catalog) Apply(op Operation) error {
	switch o := op.(type) {
	case *RenameValue:
		values, err := c.members(o.Enum)
		if err != nil {
			return err
		}
		i := slices.Index(values, o.From)
		if i < 0 {
			return fmt.Errorf("%q is not a member of %s", o.From, o.Enum)
		}
		if slices.Contains(values, o.To) {
			return fmt.Errorf("%q is already a member of %s", o.To, o.Enum)
		}
		values[i] = o.To
		// Stored defaults reference the member itself, so they follow it.
		for k, col := range c.Columns {
			if col.Type == o.Enum && col.Default != "" {
				col.Default, _ = rewriteDefault(c.dialect, col.Default, col.Array, map[string]string{o.From: o.To}, nil)
				c.Columns[k] = col
			}
		}

	case *AddValue:
		values, err := c.members(o.Enum)
		if err != nil {
			return err
		}
		if slices.Contains(values, o.Value) {
			return fmt.Errorf("%q is already a member of %s", o.Value, o.Enum)
		}
		at := len(values)
		switch {
		case o.Before != "":
			if at = slices.Index(values, o.Before); at < 0 {
				return fmt.Errorf("%q is not a member of %s", o.Before, o.Enum)
			}
		case o.After != "":
			i := slices.Index(values, o.After)
			if i < 0 {
				return fmt.Errorf("%q is not a member of %s", o.After, o.Enum)
			}
			at = i + 1
		}
		c.Types[o.Enum] = slices.Insert(values, at, o.Value)
		switch {
		case o.Autocommit:
			// Runs after the open transaction commits and commits itself.
			c.Commit()
		case c.created[o.Enum]:
			// Members of a type created in the same transaction are usable.
		default:
			if c.uncommitted == nil {
				c.uncommitted = make(map[schema.EnumName][]string)
			}
			c.uncommitted[o.Enum] = append(c.uncommitted[o.Enum], o.Value)
		}

	case *RemoveValues:
		values, err := c.members(o.Enum)
		if err != nil {
			return err
		}
		if _, err := c.column(o.Ref, o.Enum); err != nil {
			return err
		}
		for _, v := range o.Values {
			if !slices.Contains(values, v) {
				return fmt.Errorf("%q is not a member of %s", v, o.Enum)
			}
			r, ok := o.Replacements[v]
			if !ok {
				continue
			}
			if !slices.Contains(values, r) {
				return fmt.Errorf("replacement %q is not a member of %s", r, o.Enum)
			}
			if err := c.usable(o.Enum, r); err != nil {
				return err
			}
		}

	case *CreateType:
		if _, ok := c.Types[o.Enum]; ok {
			return fmt.Errorf("type %s already exists", o.Enum)
		}
		seen := make(map[string]bool, len(o.Values))
		for _, v := range o.Values {
			if seen[v] {
				return fmt.Errorf("duplicate member %q", v)
			}
			seen[v] = true
		}
		c.Types[o.Enum] = slices.Clone(o.Values)
		if c.created == nil {
			c.created = make(map[schema.EnumName]bool)
		}
		c.created[o.Enum] = true

	case *AlterColumn:
		col, err := c.column(o.Ref, o.From)
		if err != nil {
			return err
		}
		if _, err := c.members(o.To); err != nil {
			return err
		}
		if col.Default != "" && !o.DropDefault {
			return fmt.Errorf("default for column %s cannot be cast automatically", o.Ref)
		}
		if !o.Using && len(o.Mapping) == 0 {
			return fmt.Errorf("column %s cannot be cast from %s to %s without USING", o.Ref, o.From, o.To)
		}
		for _, from := range sortedKeys(o.Mapping) {
			if err := c.usable(o.To, o.Mapping[from]); err != nil {
				return err
			}
		}
		col.Type = o.To
		col.Default = ""
		c.Columns[keyOf(o.Ref)] = col

	case *DropType:
		if _, err := c.members(o.Enum); err != nil {
			return err
		}
		for k, col := range c.Columns {
			if col.Type == o.Enum {
				return fmt.Errorf("cannot drop type %s: column %s.%s.%s depends on it", o.Enum, k.Schema, k.Table, k.Column)
			}
		}
		delete(c.Types, o.Enum)
		delete(c.uncommitted, o.Enum)
		delete(c.created, o.Enum)

	case *RenameType:
		values, err := c.members(o.Enum)
		if err != nil {
			return err
		}
		to := schema.EnumName{Schema: o.Enum.Schema, Name: o.To}
		if _, ok := c.Types[to]; ok {
			return fmt.Errorf("type %s already exists", to)
		}
		delete(c.Types, o.Enum)
		c.Types[to] = values
		if pending, ok := c.uncommitted[o.Enum]; ok {
			delete(c.uncommitted, o.Enum)
			c.uncommitted[to] = pending
		}
		if c.created[o.Enum] {
			delete(c.created, o.Enum)
			c.created[to] = true
		}
		for k, col := range c.Columns {
			if col.Type == o.Enum {
				col.Type = to
				c.Columns[k] = col
			}
		}

	case *SetDefault:
		col, ok := c.Columns[keyOf(o.Ref)]
		if !ok {
			return fmt.Errorf("column %s does not exist", o.Ref)
		}
		if err := c.usable(col.Type, defaultMembers(o.Expr, col.Array)...); err != nil {
			return err
		}
		col.Default = o.Expr
		c.Columns[keyOf(o.Ref)] = col

	default:
		return fmt.Errorf("unsupported operation %T", op)
	}
	return nil
}

// Verify replays plan against the database state: the upgrade must yield the
// declared members for every changed enum and the downgrade must restore the
// starting catalog exactly.
func Verify(defined, declared *schema.Enums, plan *Plan, d dialect.Dialect) error {
	start := NewCatalog(defined, d)
	cat := start.Clone()
	if err := cat.ApplyAll(plan.Upgrade()); err != nil {
		return fmt.Errorf("upgrade: %w", err)
	}
	for _, ch := range plan.Changes {
		want, declaredEnum := declared.Values[ch.Enum]
		got, exists := cat.Types[ch.Enum]
		switch {
		case declaredEnum && !exists:
			return fmt.Errorf("upgrade: type %s missing", ch.Enum)
		case declaredEnum && !slices.Equal(got, want):
			return fmt.Errorf("upgrade: type %s has members %v, want %v", ch.Enum, got, want)
		case !declaredEnum && exists:
			return fmt.Errorf("upgrade: type %s should have been dropped", ch.Enum)
		}
	}
	if err := cat.ApplyAll(plan.Downgrade()); err != nil {
		return fmt.Errorf("downgrade: %w", err)
	}
	if !cat.Equal(start) {
		return fmt.Errorf("downgrade does not restore the original catalog")
	}
	return nil
}
