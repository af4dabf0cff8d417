package schema

import (
	"fmt"
	"sort"
	"strings"
)

// EnumName identifies an enum type within a database schema.
type EnumName struct {
	Schema string
	Name   string
}

func (n EnumName) String() string {
	if n.Schema == "" {
		return n.Name
	}
	return n.Schema + "." + n.Name
}

// ParseEnumName splits "schema.name". A bare name gets defaultSchema.
func ParseEnumName(s, defaultSchema string) EnumName {
	if i := strings.LastIndex(s, "."); i >= 0 {
		return EnumName{Schema: s[:i], Name: s[i+1:]}
	}
	return EnumName{Schema: defaultSchema, Name: s}
}

// ColumnType tells whether a column holds the enum itself or an array of it.
type ColumnType int

const (
	Scalar ColumnType = iota
	Array
)

func (t ColumnType) String() string {
	if t == Array {
		return "ARRAY"
	}
	return "SCALAR"
}

// TableReference is a single column depending on an enum type.
type TableReference struct {
	TableSchema string
	TableName   string
	ColumnName  string
	ColumnType  ColumnType
}

func (r TableReference) String() string {
	return fmt.Sprintf("%s.%s.%s (%s)", r.TableSchema, r.TableName, r.ColumnName, r.ColumnType)
}

func (r TableReference) less(o TableReference) bool {
	if r.TableSchema != o.TableSchema {
		return r.TableSchema < o.TableSchema
	}
	if r.TableName != o.TableName {
		return r.TableName < o.TableName
	}
	if r.ColumnName != o.ColumnName {
		return r.ColumnName < o.ColumnName
	}
	return r.ColumnType < o.ColumnType
}

// ReferenceSet is a set of table references.
type ReferenceSet map[TableReference]struct{}

// NewReferenceSet builds a set from refs, dropping duplicates.
func NewReferenceSet(refs ...TableReference) ReferenceSet {
	s := make(ReferenceSet, len(refs))
	for _, r := range refs {
		s.Add(r)
	}
	return s
}

func (s ReferenceSet) Add(r TableReference) {
	s[r] = struct{}{}
}

func (s ReferenceSet) Has(r TableReference) bool {
	_, ok := s[r]
	return ok
}

// Sorted returns the references ordered by schema, table, column and type.
func (s ReferenceSet) Sorted() []TableReference {
	out := make([]TableReference, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}

// Enums is the shape both inspectors produce: member lists and dependent
// columns per enum. Defaults is only filled from a live database.
type Enums struct {
	Values     map[EnumName][]string
	References map[EnumName]ReferenceSet
	Defaults   map[TableReference]string
}

func NewEnums() *Enums {
	return &Enums{
		Values:     make(map[EnumName][]string),
		References: make(map[EnumName]ReferenceSet),
		Defaults:   make(map[TableReference]string),
	}
}

func (e *Enums) addReference(name EnumName, ref TableReference) {
	set, ok := e.References[name]
	if !ok {
		set = make(ReferenceSet)
		e.References[name] = set
	}
	set.Add(ref)
}

// Names returns every enum name in a stable order.
func (e *Enums) Names() []EnumName {
	names := make([]EnumName, 0, len(e.Values))
	for n := range e.Values {
		names = append(names, n)
	}
	SortNames(names)
	return names
}

// SortNames orders enum names by schema then name.
func SortNames(names []EnumName) {
	sort.Slice(names, func(i, j int) bool {
		if names[i].Schema != names[j].Schema {
			return names[i].Schema < names[j].Schema
		}
		return names[i].Name < names[j].Name
	})
}
