package schema_test

import (
	"os"
	"path/filepath"
	"testing"

	"enum-sync/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modelsYAML = `
schema: app
enums:
  - name: car_color
    values: [black, red, "light blue"]
  - name: status
    inherit_schema: true
    values: [open, closed]
  - name: unused
    schema: archive
    values: [old]
tables:
  - name: cars
    columns:
      - name: id
        type: bigint
      - name: color
        enum: car_color
      - name: extras
        enum: car_color
        array: true
  - name: tickets
    schema: support
    columns:
      - name: state
        enum: status
`

func TestParseMetaData(t *testing.T) {
	meta, err := schema.ParseMetaData([]byte(modelsYAML))
	require.NoError(t, err)

	assert.Equal(t, "app", meta.Schema)
	require.Len(t, meta.Tables, 2)
	require.Len(t, meta.Enums, 1)
	assert.Equal(t, "unused", meta.Enums[0].Name)

	cars := meta.Tables[0]
	assert.Nil(t, cars.Columns[0].Enum)
	assert.Equal(t, "bigint", cars.Columns[0].DataType)
	// Both columns share one declaration.
	assert.Same(t, cars.Columns[1].Enum, cars.Columns[2].Enum)
	assert.True(t, cars.Columns[2].Array)

	enums, err := schema.DeclaredEnums(meta, "", "public")
	require.NoError(t, err)
	assert.Equal(t, []schema.EnumName{
		{Schema: "app", Name: "car_color"},
		{Schema: "archive", Name: "unused"},
		{Schema: "support", Name: "status"},
	}, enums.Names())
	assert.Equal(t, []string{"black", "red", "light blue"}, enums.Values[schema.EnumName{Schema: "app", Name: "car_color"}])
}

func TestParseMetaData_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown enum":    "tables: [{name: t, columns: [{name: c, enum: nope}]}]",
		"duplicate enum":  "enums: [{name: a, values: [x]}, {name: a, values: [y]}]",
		"duplicate value": "enums: [{name: a, values: [x, x]}]",
		"unnamed enum":    "enums: [{values: [x]}]",
		"unnamed table":   "tables: [{columns: []}]",
		"bad yaml":        "enums: [",
	}
	for name, doc := range tests {
		_, err := schema.ParseMetaData([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoadMetaData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(modelsYAML), 0o644))

	meta, err := schema.LoadMetaData(path)
	require.NoError(t, err)
	assert.Len(t, meta.Tables, 2)

	_, err = schema.LoadMetaData(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
