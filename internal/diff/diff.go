// Package diff computes the edit between the member lists of one enum type.
package diff

import (
	"slices"

	"enum-sync/internal/schema"
)

// EnumDiff is the change between the database (Old) and declared (New)
// member lists of one enum. New is authoritative for the final order.
type EnumDiff struct {
	Enum       schema.EnumName
	Old        []string
	New        []string
	Added      []string
	Removed    []string
	Renames    []Rename
	References []schema.TableReference
	Ambiguous  []Ambiguity
}

// IsEmpty reports whether the member lists are identical, order included.
func (d *EnumDiff) IsEmpty() bool {
	return slices.Equal(d.Old, d.New)
}

// Reordered reports whether members kept by the change (after renames)
// appear in a different relative order.
func (d *EnumDiff) Reordered() bool {
	renamed := d.RenamedOld()
	inNew := make(map[string]int, len(d.New))
	for i, v := range d.New {
		inNew[v] = i
	}
	last := -1
	for _, v := range renamed {
		i, ok := inNew[v]
		if !ok {
			continue
		}
		if i < last {
			return true
		}
		last = i
	}
	return false
}

// RenamedOld returns Old with renames applied.
func (d *EnumDiff) RenamedOld() []string {
	mapping := d.RenameMap()
	out := make([]string, len(d.Old))
	for i, v := range d.Old {
		if to, ok := mapping[v]; ok {
			v = to
		}
		out[i] = v
	}
	return out
}

// RenameMap returns renames keyed by old member.
func (d *EnumDiff) RenameMap() map[string]string {
	m := make(map[string]string, len(d.Renames))
	for _, r := range d.Renames {
		m[r.From] = r.To
	}
	return m
}

// Reverse returns the diff that undoes d.
func (d *EnumDiff) Reverse() *EnumDiff {
	r := &EnumDiff{
		Enum:       d.Enum,
		Old:        slices.Clone(d.New),
		New:        slices.Clone(d.Old),
		Added:      slices.Clone(d.Removed),
		Removed:    slices.Clone(d.Added),
		References: slices.Clone(d.References),
	}
	for _, rn := range d.Renames {
		r.Renames = append(r.Renames, Rename{From: rn.To, To: rn.From})
	}
	return r
}

// Option configures Members.
type Option func(*options)

type options struct {
	matcher    RenameMatcher
	explicit   []Rename
	references schema.ReferenceSet
}

// WithMatcher replaces the rename heuristic. The default is Positional.
func WithMatcher(m RenameMatcher) Option {
	return func(o *options) {
		o.matcher = m
	}
}

// WithRenames supplies known renames. They are applied before the matcher
// and ignored unless From was removed and To was added.
func WithRenames(renames ...Rename) Option {
	return func(o *options) {
		o.explicit = append(o.explicit, renames...)
	}
}

// WithReferences attaches the columns depending on the enum.
func WithReferences(refs schema.ReferenceSet) Option {
	return func(o *options) {
		o.references = refs
	}
}

// Members diffs the old and new member lists of enum.
func Members(enum schema.EnumName, old, new []string, opts ...Option) *EnumDiff {
	o := &options{matcher: Positional}
	for _, opt := range opts {
		opt(o)
	}

	d := &EnumDiff{
		Enum: enum,
		Old:  slices.Clone(old),
		New:  slices.Clone(new),
	}
	if o.references != nil {
		d.References = o.references.Sorted()
	}
	if d.IsEmpty() {
		return d
	}

	removed := difference(old, new)
	added := difference(new, old)

	// Explicit renames first.
	for _, rn := range o.explicit {
		ri, ai := slices.Index(removed, rn.From), slices.Index(added, rn.To)
		if ri < 0 || ai < 0 {
			continue
		}
		d.Renames = append(d.Renames, rn)
		removed = slices.Delete(removed, ri, ri+1)
		added = slices.Delete(added, ai, ai+1)
	}

	if o.matcher != nil {
		renames, ambiguous := matchRenames(o.matcher, old, new, removed, added)
		d.Ambiguous = ambiguous
		for _, rn := range renames {
			d.Renames = append(d.Renames, rn)
			removed = slices.DeleteFunc(removed, func(v string) bool { return v == rn.From })
			added = slices.DeleteFunc(added, func(v string) bool { return v == rn.To })
		}
	}

	d.Removed = removed
	d.Added = added
	return d
}

// difference returns members of a missing from b, in a's order.
func difference(a, b []string) []string {
	out := []string{}
	for _, v := range a {
		if !slices.Contains(b, v) {
			out = append(out, v)
		}
	}
	return out
}
