package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"enum-sync/internal/dialect"
	"enum-sync/internal/diff"
	"enum-sync/internal/schema"
)

// rebuildSuffix names the replacement type while a rebuild is in flight.
const rebuildSuffix = "_new"

// ColumnResolver tells whether a referenced column still exists.
type ColumnResolver interface {
	ColumnExists(ctx context.Context, ref schema.TableReference) (bool, error)
}

// Change is the synthesized migration for one enum.
type Change struct {
	Enum      schema.EnumName
	Diff      *diff.EnumDiff
	Upgrade   []Operation
	Downgrade []Operation
}

// Synthesizer turns enum diffs into operations. It keeps no state between
// calls.
type Synthesizer struct {
	Config   Config
	Dialect  dialect.Dialect
	Resolver ColumnResolver
	Logger   *slog.Logger
}

func (s *Synthesizer) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Synthesize builds the upgrade for d and, from the reversed diff, the
// downgrade that restores the original type exactly. defaults holds the
// current column defaults of dependent columns.
func (s *Synthesizer) Synthesize(ctx context.Context, d *diff.EnumDiff, defaults map[schema.TableReference]string) (*Change, error) {
	change := &Change{Enum: d.Enum, Diff: d}
	if d.IsEmpty() {
		return change, nil
	}
	if err := s.checkReferences(ctx, d); err != nil {
		return nil, err
	}
	remap, err := validateRemap(d, s.Config.Remap[d.Enum])
	if err != nil {
		return nil, err
	}

	before := make(map[schema.TableReference]string)
	for _, ref := range d.References {
		if expr, ok := defaults[ref]; ok {
			before[ref] = expr
		}
	}
	after := s.rewriteDefaults(d, before)

	change.Upgrade = s.plan(d, remap, before, after)
	change.Downgrade = s.plan(d.Reverse(), nil, after, before)
	return change, nil
}

func (s *Synthesizer) checkReferences(ctx context.Context, d *diff.EnumDiff) error {
	if s.Resolver == nil {
		return nil
	}
	for _, ref := range d.References {
		ok, err := s.Resolver.ColumnExists(ctx, ref)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", ref, err)
		}
		if !ok {
			return &StaleReferenceError{Enum: d.Enum, Ref: ref}
		}
	}
	return nil
}

func validateRemap(d *diff.EnumDiff, remap map[string]string) (map[string]string, error) {
	out := make(map[string]string)
	for from, to := range remap {
		if !slices.Contains(d.Removed, from) {
			continue
		}
		if !slices.Contains(d.New, to) {
			return nil, fmt.Errorf("%w: enum %s: %q -> %q, %q is not a member", ErrInvalidRemap, d.Enum, from, to, to)
		}
		out[from] = to
	}
	return out, nil
}

// rewriteDefaults returns the defaults as they must read after d is applied.
// Defaults naming a removed member are dropped.
func (s *Synthesizer) rewriteDefaults(d *diff.EnumDiff, defaults map[schema.TableReference]string) map[schema.TableReference]string {
	out := make(map[schema.TableReference]string, len(defaults))
	renames := d.RenameMap()
	for ref, expr := range defaults {
		rewritten, ok := rewriteDefault(s.Dialect, expr, ref.ColumnType == schema.Array, renames, d.Removed)
		if !ok {
			s.logger().Warn("column default uses a removed enum value; default will not be restored",
				"enum", d.Enum.String(), "column", ref.String(), "default", expr)
			continue
		}
		out[ref] = rewritten
	}
	return out
}

// plan orders the operations for one direction: renames, additions, row
// remapping, then a rebuild when members go away or change order.
func (s *Synthesizer) plan(d *diff.EnumDiff, remap map[string]string, defaultsBefore, defaultsAfter map[schema.TableReference]string) []Operation {
	var ops []Operation
	native := s.Dialect.SupportsRenameValue()

	// 1. Renames
	current := slices.Clone(d.Old)
	mapping := make(map[string]string)
	for _, rn := range d.Renames {
		if native {
			ops = append(ops, &RenameValue{Enum: d.Enum, From: rn.From, To: rn.To})
		} else {
			mapping[rn.From] = rn.To
		}
	}
	if native {
		current = d.RenamedOld()
		mapping = nil
	}

	rebuild := len(d.Removed) > 0 || d.Reordered() || len(mapping) > 0

	if !rebuild {
		// 2. Additions, each placed where it belongs in New.
		ops = append(ops, s.positionalAdds(d, current)...)
		// Defaults an earlier rebuild could not keep come back once their
		// member exists again.
		var used []string
		for _, ref := range d.References {
			_, had := defaultsBefore[ref]
			if expr, ok := defaultsAfter[ref]; ok && !had {
				ops = append(ops, &SetDefault{Ref: ref, Expr: expr})
				used = append(used, defaultMembers(expr, ref.ColumnType == schema.Array)...)
			}
		}
		// A member added inside a transaction cannot be used until it commits.
		for _, op := range ops {
			if add, ok := op.(*AddValue); ok && slices.Contains(used, add.Value) {
				add.Autocommit = true
			}
		}
		return ops
	}

	// 2. Additions that removed rows are remapped to must exist first.
	// Replacements are named as the live type knows them.
	reverse := make(map[string]string, len(mapping))
	for from, to := range mapping {
		reverse[to] = from
	}
	replacements := make(map[string]string, len(remap))
	for _, from := range sortedKeys(remap) {
		to := remap[from]
		if old, ok := reverse[to]; ok {
			to = old
		}
		replacements[from] = to
		if slices.Contains(d.Added, to) && !slices.Contains(current, to) {
			ops = append(ops, &AddValue{Enum: d.Enum, Value: to, Autocommit: true})
			current = append(current, to)
		}
	}

	// 3. Rows holding removed members
	if len(d.Removed) > 0 {
		for _, ref := range d.References {
			ops = append(ops, &RemoveValues{
				Enum:         d.Enum,
				Ref:          ref,
				Values:       slices.Clone(d.Removed),
				Replacements: replacements,
			})
		}
	}

	// 4. Rebuild
	tmp := schema.EnumName{Schema: d.Enum.Schema, Name: d.Enum.Name + rebuildSuffix}
	ops = append(ops, &CreateType{Enum: tmp, Values: slices.Clone(d.New)})
	for _, ref := range d.References {
		_, hasDefault := defaultsBefore[ref]
		ops = append(ops, &AlterColumn{
			Ref:         ref,
			From:        d.Enum,
			To:          tmp,
			Using:       s.Config.AddUsingToAlterOperation,
			Mapping:     mapping,
			DropDefault: hasDefault,
		})
	}
	ops = append(ops,
		&DropType{Enum: d.Enum},
		&RenameType{Enum: tmp, To: d.Enum.Name},
	)
	for _, ref := range d.References {
		if expr, ok := defaultsAfter[ref]; ok {
			ops = append(ops, &SetDefault{Ref: ref, Expr: expr})
		}
	}
	return ops
}

// checkTemporaryTypes rejects a change whose rebuild would create a type
// that already exists or whose name the server would truncate.
func (s *Synthesizer) checkTemporaryTypes(ch *Change, defined, declared *schema.Enums) error {
	for _, op := range slices.Concat(ch.Upgrade, ch.Downgrade) {
		create, ok := op.(*CreateType)
		if !ok || create.Enum == ch.Enum {
			continue
		}
		if len(create.Enum.Name) > s.Dialect.MaxIdentifierLength() {
			return fmt.Errorf("%w: %s is longer than %d bytes", ErrTemporaryType, create.Enum, s.Dialect.MaxIdentifierLength())
		}
		_, inDB := defined.Values[create.Enum]
		_, inModels := declared.Values[create.Enum]
		if inDB || inModels {
			return fmt.Errorf("%w: rebuilding %s needs %s, which already exists", ErrTemporaryType, ch.Enum, create.Enum)
		}
	}
	return nil
}

// positionalAdds inserts added members next to their neighbour in New. It
// requires the surviving members to already be in New's relative order.
func (s *Synthesizer) positionalAdds(d *diff.EnumDiff, current []string) []Operation {
	var ops []Operation
	autocommit := !s.Dialect.SupportsTransactionalAddValue()
	for i, v := range d.New {
		if slices.Contains(current, v) {
			continue
		}
		op := &AddValue{Enum: d.Enum, Value: v, Autocommit: autocommit}
		switch {
		case i > 0:
			prev := d.New[i-1]
			at := slices.Index(current, prev) + 1
			if at < len(current) {
				op.After = prev
			}
			current = slices.Insert(current, at, v)
		case len(current) > 0:
			op.Before = current[0]
			current = slices.Insert(current, 0, v)
		default:
			current = append(current, v)
		}
		ops = append(ops, op)
	}
	return ops
}
