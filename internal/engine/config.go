package engine

import (
	"enum-sync/internal/diff"
	"enum-sync/internal/schema"
)

// Config controls synthesis and rendering. It is passed by value and never
// changes while a plan is being built.
type Config struct {
	// AddTypeIgnore appends a "-- noqa" marker to generated statements so
	// SQL linters skip them.
	AddTypeIgnore bool
	// AddUsingToAlterOperation adds an explicit USING cast to column type
	// changes. Array columns are cast through text[] to the enum array type.
	AddUsingToAlterOperation bool
	// DetectRenames enables the positional rename heuristic.
	DetectRenames bool
	// Renames lists known member renames per enum.
	Renames map[schema.EnumName][]diff.Rename
	// Remap gives, per enum, the member that rows holding a removed member
	// are moved to. Removed members without an entry are cleared.
	Remap map[schema.EnumName]map[string]string
}

func DefaultConfig() Config {
	return Config{
		AddUsingToAlterOperation: true,
		DetectRenames:            true,
	}
}

func (c Config) diffOptions(name schema.EnumName, refs schema.ReferenceSet) []diff.Option {
	opts := []diff.Option{diff.WithReferences(refs)}
	if !c.DetectRenames {
		opts = append(opts, diff.WithMatcher(diff.NoRenames))
	}
	if rn := c.Renames[name]; len(rn) > 0 {
		opts = append(opts, diff.WithRenames(rn...))
	}
	return opts
}
