package engine

import (
	"context"
	"fmt"
	"slices"

	"enum-sync/internal/diff"
	"enum-sync/internal/schema"
)

// Plan is the ordered set of enum changes for one autogeneration pass.
type Plan struct {
	Changes []*Change
}

// HasChanges returns true when the plan includes at least one operation.
func (p *Plan) HasChanges() bool {
	for _, c := range p.Changes {
		if len(c.Upgrade) > 0 {
			return true
		}
	}
	return false
}

// Upgrade returns every upgrade operation in enum order.
func (p *Plan) Upgrade() []Operation {
	var ops []Operation
	for _, c := range p.Changes {
		ops = append(ops, c.Upgrade...)
	}
	return ops
}

// Downgrade undoes the changes in reverse order.
func (p *Plan) Downgrade() []Operation {
	var ops []Operation
	for i := len(p.Changes) - 1; i >= 0; i-- {
		ops = append(ops, p.Changes[i].Downgrade...)
	}
	return ops
}

// Compare diffs the database enums (defined) against the application's
// (declared). Declared-only enums are created, database-only enums that no
// column uses are dropped and enums on both sides are synchronized.
func (s *Synthesizer) Compare(ctx context.Context, defined, declared *schema.Enums) (*Plan, error) {
	log := s.logger()

	seen := make(map[schema.EnumName]bool)
	var names []schema.EnumName
	for _, n := range append(defined.Names(), declared.Names()...) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	schema.SortNames(names)

	plan := &Plan{}
	for _, name := range names {
		oldValues, inDB := defined.Values[name]
		newValues, inModels := declared.Values[name]

		switch {
		case !inDB:
			log.Debug("enum declared but missing from database", "enum", name.String())
			plan.Changes = append(plan.Changes, &Change{
				Enum:      name,
				Upgrade:   []Operation{&CreateType{Enum: name, Values: slices.Clone(newValues)}},
				Downgrade: []Operation{&DropType{Enum: name}},
			})

		case !inModels:
			if refs := defined.References[name]; len(refs) > 0 {
				log.Debug("enum not declared but still used, keeping it", "enum", name.String(), "columns", len(refs))
				continue
			}
			log.Debug("enum no longer declared", "enum", name.String())
			plan.Changes = append(plan.Changes, &Change{
				Enum:      name,
				Upgrade:   []Operation{&DropType{Enum: name}},
				Downgrade: []Operation{&CreateType{Enum: name, Values: slices.Clone(oldValues)}},
			})

		default:
			d := diff.Members(name, oldValues, newValues, s.Config.diffOptions(name, defined.References[name])...)
			for _, amb := range d.Ambiguous {
				log.Warn("ambiguous enum rename, treating as remove and add",
					"enum", name.String(), "removed", amb.Removed, "added", amb.Added)
			}
			if d.IsEmpty() {
				continue
			}
			change, err := s.Synthesize(ctx, d, defined.Defaults)
			if err != nil {
				return nil, fmt.Errorf("failed to synthesize %s: %w", name, err)
			}
			if err := s.checkTemporaryTypes(change, defined, declared); err != nil {
				return nil, err
			}
			log.Debug("enum changed", "enum", name.String(),
				"added", d.Added, "removed", d.Removed, "renames", len(d.Renames))
			plan.Changes = append(plan.Changes, change)
		}
	}
	return plan, nil
}
