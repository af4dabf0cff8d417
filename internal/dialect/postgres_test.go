package dialect_test

import (
	"strings"
	"testing"

	"enum-sync/internal/dialect"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDialect(t *testing.T) {
	for _, driver := range []string{"postgres", "pgx"} {
		d, err := dialect.GetDialect(driver)
		require.NoError(t, err, driver)
		assert.Equal(t, "postgres", d.Name())
	}

	_, err := dialect.GetDialect("mysql")
	assert.Error(t, err)
}

func TestParseServerVersion(t *testing.T) {
	v, err := dialect.ParseServerVersion(" 150004\n")
	require.NoError(t, err)
	assert.Equal(t, 150004, v)

	_, err = dialect.ParseServerVersion("15.4")
	assert.Error(t, err)
}

func TestPostgresDialect_Capabilities(t *testing.T) {
	tests := []struct {
		version       int
		rename        bool
		transactional bool
		partitions    bool
	}{
		{0, true, true, true},
		{90600, false, false, false},
		{100000, true, false, true},
		{110005, true, false, true},
		{120000, true, true, true},
	}
	for _, tt := range tests {
		d := &dialect.PostgresDialect{}
		d.SetVersion(tt.version)
		assert.Equal(t, tt.rename, d.SupportsRenameValue(), "version %d", tt.version)
		assert.Equal(t, tt.transactional, d.SupportsTransactionalAddValue(), "version %d", tt.version)
		assert.Equal(t, tt.partitions, strings.Contains(d.EnumColumnsQuery(), "relispartition"), "version %d", tt.version)
		assert.Equal(t, 63, d.MaxIdentifierLength())
	}
}

func TestPostgresDialect_TypeStatements(t *testing.T) {
	d := &dialect.PostgresDialect{}

	assert.Equal(t, `CREATE TYPE "public"."car_color" AS ENUM ('black', 'it''s red')`,
		d.CreateEnumQuery("", "car_color", []string{"black", "it's red"}))
	assert.Equal(t, `DROP TYPE "app"."mood"`, d.DropEnumQuery("app", "mood"))
	assert.Equal(t, `ALTER TYPE "app"."mood_new" RENAME TO "mood"`, d.RenameEnumQuery("app", "mood_new", "mood"))
	assert.Equal(t, `ALTER TYPE "public"."mood" RENAME VALUE 'sad' TO 'blue'`,
		d.RenameValueQuery("public", "mood", "sad", "blue"))
}

func TestPostgresDialect_AddValueQuery(t *testing.T) {
	d := &dialect.PostgresDialect{}

	assert.Equal(t, `ALTER TYPE "public"."mood" ADD VALUE 'meh'`,
		d.AddValueQuery("public", "mood", "meh", dialect.Position{}))
	assert.Equal(t, `ALTER TYPE "public"."mood" ADD VALUE 'meh' BEFORE 'happy'`,
		d.AddValueQuery("public", "mood", "meh", dialect.Position{Before: "happy"}))
	assert.Equal(t, `ALTER TYPE "public"."mood" ADD VALUE 'meh' AFTER 'sad'`,
		d.AddValueQuery("public", "mood", "meh", dialect.Position{After: "sad"}))
}

func TestPostgresDialect_AlterColumnTypeQuery(t *testing.T) {
	d := &dialect.PostgresDialect{}
	scalar := dialect.ColumnTarget{Schema: "public", Table: "cars", Column: "color"}
	array := dialect.ColumnTarget{Schema: "public", Table: "cars", Column: "colors", Array: true}

	assert.Equal(t,
		`ALTER TABLE "public"."cars" ALTER COLUMN "color" TYPE "public"."car_color_new" USING "color"::text::"public"."car_color_new"`,
		d.AlterColumnTypeQuery(scalar, "public", "car_color_new", d.CastExpression(scalar, "public", "car_color_new", nil)))
	assert.Equal(t,
		`ALTER TABLE "public"."cars" ALTER COLUMN "colors" TYPE "public"."car_color_new"[] USING "colors"::text[]::"public"."car_color_new"[]`,
		d.AlterColumnTypeQuery(array, "public", "car_color_new", d.CastExpression(array, "public", "car_color_new", nil)))
	assert.Equal(t,
		`ALTER TABLE "public"."cars" ALTER COLUMN "color" TYPE "public"."car_color_new"`,
		d.AlterColumnTypeQuery(scalar, "public", "car_color_new", ""))
}

func TestPostgresDialect_CastExpressionWithMapping(t *testing.T) {
	d := &dialect.PostgresDialect{}
	mapping := map[string]string{"green": "lime", "blue": "navy"}

	scalar := dialect.ColumnTarget{Table: "cars", Column: "color"}
	assert.Equal(t,
		`CASE "color"::text WHEN 'blue' THEN 'navy' WHEN 'green' THEN 'lime' ELSE "color"::text END::"public"."car_color_new"`,
		d.CastExpression(scalar, "public", "car_color_new", mapping))

	array := dialect.ColumnTarget{Table: "cars", Column: "colors", Array: true}
	assert.Equal(t,
		`array_replace(array_replace("colors"::text[], 'blue', 'navy'), 'green', 'lime')::"public"."car_color_new"[]`,
		d.CastExpression(array, "public", "car_color_new", mapping))
}

func TestPostgresDialect_ReplaceValueQuery(t *testing.T) {
	d := &dialect.PostgresDialect{}
	scalar := dialect.ColumnTarget{Schema: "public", Table: "cars", Column: "color"}
	array := dialect.ColumnTarget{Schema: "public", Table: "cars", Column: "colors", Array: true}
	other := "black"

	assert.Equal(t, `UPDATE "public"."cars" SET "color" = NULL WHERE "color" = 'violet'`,
		d.ReplaceValueQuery(scalar, "public", "car_color", "violet", nil))
	assert.Equal(t, `UPDATE "public"."cars" SET "color" = 'black' WHERE "color" = 'violet'`,
		d.ReplaceValueQuery(scalar, "public", "car_color", "violet", &other))
	assert.Equal(t,
		`UPDATE "public"."cars" SET "colors" = array_remove("colors", 'violet'::"public"."car_color") WHERE 'violet'::"public"."car_color" = ANY("colors")`,
		d.ReplaceValueQuery(array, "public", "car_color", "violet", nil))
	assert.Equal(t,
		`UPDATE "public"."cars" SET "colors" = array_replace("colors", 'violet'::"public"."car_color", 'black'::"public"."car_color") WHERE 'violet'::"public"."car_color" = ANY("colors")`,
		d.ReplaceValueQuery(array, "public", "car_color", "violet", &other))
}

func TestPostgresDialect_DefaultQueries(t *testing.T) {
	d := &dialect.PostgresDialect{}
	col := dialect.ColumnTarget{Table: "cars", Column: "color"}

	assert.Equal(t, `ALTER TABLE "public"."cars" ALTER COLUMN "color" DROP DEFAULT`, d.DropDefaultQuery(col))
	assert.Equal(t, `ALTER TABLE "public"."cars" ALTER COLUMN "color" SET DEFAULT 'black'::car_color`,
		d.SetDefaultQuery(col, "'black'::car_color"))
}

func TestPostgresDialect_GetSchemaName(t *testing.T) {
	d := &dialect.PostgresDialect{}
	assert.Equal(t, "public", d.GetSchemaName(""))
	assert.Equal(t, "app", d.GetSchemaName("app"))
	assert.Equal(t, `"my ""odd"" schema"."t"`, d.QualifiedName(`my "odd" schema`, "t"))
}
