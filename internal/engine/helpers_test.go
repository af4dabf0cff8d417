package engine_test

import (
	"context"
	"testing"

	"enum-sync/internal/dialect"
	"enum-sync/internal/diff"
	"enum-sync/internal/engine"
	"enum-sync/internal/schema"

	"github.com/stretchr/testify/require"
)

var carColor = schema.EnumName{Schema: "public", Name: "car_color"}

var (
	colorCol   = schema.TableReference{TableSchema: "public", TableName: "cars", ColumnName: "color"}
	paletteCol = schema.TableReference{TableSchema: "public", TableName: "cars", ColumnName: "palette", ColumnType: schema.Array}
)

// columns answers ColumnExists from a fixed set; a nil set accepts everything.
type columns map[schema.TableReference]bool

func (c columns) ColumnExists(ctx context.Context, ref schema.TableReference) (bool, error) {
	if c == nil {
		return true, nil
	}
	return c[ref], nil
}

func newSynthesizer(version int) *engine.Synthesizer {
	return &engine.Synthesizer{
		Config:   engine.DefaultConfig(),
		Dialect:  &dialect.PostgresDialect{Version: version},
		Resolver: columns(nil),
	}
}

func synthesize(t *testing.T, s *engine.Synthesizer, old, new []string, defaults map[schema.TableReference]string, refs ...schema.TableReference) *engine.Change {
	t.Helper()
	d := diff.Members(carColor, old, new, diff.WithReferences(schema.NewReferenceSet(refs...)))
	ch, err := s.Synthesize(context.Background(), d, defaults)
	require.NoError(t, err)
	return ch
}

func kinds(ops []engine.Operation) []engine.Kind {
	out := make([]engine.Kind, len(ops))
	for i, op := range ops {
		out[i] = op.Kind()
	}
	return out
}

func sqlOf(ops []engine.Operation, d dialect.Dialect) []string {
	var out []string
	for _, st := range engine.Render(ops, d) {
		out = append(out, st.SQL)
	}
	return out
}

// roundTrip replays a change on a catalog seeded with old and checks the
// upgrade yields new and the downgrade restores the start state.
func roundTrip(t *testing.T, s *engine.Synthesizer, old, new []string, defaults map[schema.TableReference]string, refs ...schema.TableReference) {
	t.Helper()
	defined := schema.NewEnums()
	defined.Values[carColor] = old
	defined.References[carColor] = schema.NewReferenceSet(refs...)
	for ref, expr := range defaults {
		defined.Defaults[ref] = expr
	}
	declared := schema.NewEnums()
	declared.Values[carColor] = new

	plan, err := s.Compare(context.Background(), defined, declared)
	require.NoError(t, err)
	require.NoError(t, engine.Verify(defined, declared, plan, s.Dialect), "old=%v new=%v", old, new)
}
