package engine_test

import (
	"context"
	"strings"
	"testing"

	"enum-sync/internal/diff"
	"enum-sync/internal/engine"
	"enum-sync/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enumsOf(values map[schema.EnumName][]string, refs map[schema.EnumName][]schema.TableReference) *schema.Enums {
	e := schema.NewEnums()
	for name, v := range values {
		e.Values[name] = v
	}
	for name, r := range refs {
		e.References[name] = schema.NewReferenceSet(r...)
	}
	return e
}

func TestCompare_Unchanged(t *testing.T) {
	s := newSynthesizer(0)
	values := map[schema.EnumName][]string{carColor: {"black", "red"}}

	plan, err := s.Compare(context.Background(),
		enumsOf(values, map[schema.EnumName][]schema.TableReference{carColor: {colorCol}}),
		enumsOf(values, nil))
	require.NoError(t, err)
	assert.False(t, plan.HasChanges())
	assert.Empty(t, plan.Upgrade())
	assert.Empty(t, plan.Downgrade())
}

func TestCompare_UnchangedInheritedSchema(t *testing.T) {
	s := newSynthesizer(0)
	status := &schema.EnumType{Name: "status", Schema: "shared", InheritSchema: true, Values: []string{"open", "closed"}}
	meta := &schema.MetaData{Tables: []*schema.Table{
		{Schema: "billing", Name: "invoices", Columns: []*schema.Column{{Name: "status", Enum: status}}},
		{Schema: "billing", Name: "batches", Columns: []*schema.Column{{Name: "states", Enum: status, Array: true}}},
	}}

	declared, err := schema.DeclaredEnums(meta, "", "public")
	require.NoError(t, err)
	name := schema.EnumName{Schema: "shared", Name: "status"}
	for ref := range declared.References[name] {
		assert.Equal(t, "billing", ref.TableSchema)
	}

	// The database already matches the models.
	plan, err := s.Compare(context.Background(), declared, declared)
	require.NoError(t, err)
	assert.Empty(t, plan.Upgrade())
	assert.Empty(t, plan.Downgrade())
}

func TestCompare_CreateAndDrop(t *testing.T) {
	s := newSynthesizer(0)
	mood := schema.EnumName{Schema: "public", Name: "mood"}
	stale := schema.EnumName{Schema: "public", Name: "stale"}
	inUse := schema.EnumName{Schema: "app", Name: "in_use"}

	defined := enumsOf(map[schema.EnumName][]string{
		stale: {"x"},
		inUse: {"y"},
	}, map[schema.EnumName][]schema.TableReference{
		inUse: {{TableSchema: "app", TableName: "t", ColumnName: "c"}},
	})
	declared := enumsOf(map[schema.EnumName][]string{mood: {"happy", "sad"}}, nil)

	plan, err := s.Compare(context.Background(), defined, declared)
	require.NoError(t, err)
	require.Len(t, plan.Changes, 2)

	// Sorted by schema then name; in_use is kept because a column uses it.
	assert.Equal(t, mood, plan.Changes[0].Enum)
	assert.Equal(t, []engine.Kind{engine.KindCreateType}, kinds(plan.Changes[0].Upgrade))
	assert.Equal(t, []engine.Kind{engine.KindDropType}, kinds(plan.Changes[0].Downgrade))

	assert.Equal(t, stale, plan.Changes[1].Enum)
	assert.Equal(t, []engine.Kind{engine.KindDropType}, kinds(plan.Changes[1].Upgrade))
	assert.Equal(t, []string{"x"}, plan.Changes[1].Downgrade[0].(*engine.CreateType).Values)

	// Downgrade runs in reverse enum order.
	assert.Equal(t, []engine.Kind{engine.KindCreateType, engine.KindDropType}, kinds(plan.Downgrade()))

	require.NoError(t, engine.Verify(defined, declared, plan, s.Dialect))
}

func TestCompare_DetectRenamesDisabled(t *testing.T) {
	s := newSynthesizer(0)
	s.Config.DetectRenames = false

	plan, err := s.Compare(context.Background(),
		enumsOf(map[schema.EnumName][]string{carColor: {"black", "green", "red"}}, nil),
		enumsOf(map[schema.EnumName][]string{carColor: {"black", "lime", "red"}}, nil))
	require.NoError(t, err)
	require.Len(t, plan.Changes, 1)
	d := plan.Changes[0].Diff
	assert.Empty(t, d.Renames)
	assert.Equal(t, []string{"green"}, d.Removed)
	assert.Equal(t, []string{"lime"}, d.Added)
	assert.NotContains(t, kinds(plan.Upgrade()), engine.KindRenameValue)
}

func TestCompare_ConfiguredRenames(t *testing.T) {
	s := newSynthesizer(0)
	s.Config.Renames = map[schema.EnumName][]diff.Rename{
		carColor: {{From: "green", To: "lime"}},
	}

	plan, err := s.Compare(context.Background(),
		enumsOf(map[schema.EnumName][]string{carColor: {"green", "black"}}, nil),
		enumsOf(map[schema.EnumName][]string{carColor: {"black", "blue", "lime"}}, nil))
	require.NoError(t, err)
	require.Len(t, plan.Changes, 1)
	assert.Equal(t, []diff.Rename{{From: "green", To: "lime"}}, plan.Changes[0].Diff.Renames)
	assert.Equal(t, engine.KindRenameValue, plan.Upgrade()[0].Kind())
}

func TestCompare_StaleReference(t *testing.T) {
	s := newSynthesizer(0)
	s.Resolver = columns{}

	_, err := s.Compare(context.Background(),
		enumsOf(map[schema.EnumName][]string{carColor: {"a", "b"}}, map[schema.EnumName][]schema.TableReference{carColor: {colorCol}}),
		enumsOf(map[schema.EnumName][]string{carColor: {"a"}}, nil))

	var stale *engine.StaleReferenceError
	assert.ErrorAs(t, err, &stale)
}

func TestCompare_TemporaryTypeTaken(t *testing.T) {
	s := newSynthesizer(0)
	taken := schema.EnumName{Schema: "public", Name: "car_color_new"}
	refs := map[schema.EnumName][]schema.TableReference{carColor: {colorCol}}

	// Removing a member rebuilds through car_color_new.
	_, err := s.Compare(context.Background(),
		enumsOf(map[schema.EnumName][]string{carColor: {"black", "red"}, taken: {"x"}}, refs),
		enumsOf(map[schema.EnumName][]string{carColor: {"black"}, taken: {"x"}}, nil))
	assert.ErrorIs(t, err, engine.ErrTemporaryType)

	// The same name is fine when nothing is rebuilt.
	_, err = s.Compare(context.Background(),
		enumsOf(map[schema.EnumName][]string{carColor: {"black", "red"}, taken: {"x"}}, refs),
		enumsOf(map[schema.EnumName][]string{carColor: {"black", "red", "blue"}, taken: {"x"}}, nil))
	assert.NoError(t, err)
}

func TestCompare_TemporaryTypeTooLong(t *testing.T) {
	s := newSynthesizer(0)
	long := schema.EnumName{Schema: "public", Name: strings.Repeat("c", 60)}

	_, err := s.Compare(context.Background(),
		enumsOf(map[schema.EnumName][]string{long: {"a", "b"}}, nil),
		enumsOf(map[schema.EnumName][]string{long: {"b", "a"}}, nil))
	assert.ErrorIs(t, err, engine.ErrTemporaryType)
}
