package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"enum-sync/internal/engine"
	"enum-sync/internal/schema"

	"github.com/spf13/viper"
)

// planResult bundles everything a command needs to print or check a plan.
type planResult struct {
	Config   engine.Config
	Defined  *schema.Enums
	Declared *schema.Enums
	Plan     *engine.Plan
}

// buildPlan loads the models file, inspects the database and compares the
// two. It never writes to the database.
func buildPlan(ctx context.Context) (*planResult, error) {
	defaultSchema := Dialect.GetSchemaName("")

	cfg, err := loadEngineConfig(defaultSchema)
	if err != nil {
		return nil, err
	}

	modelsPath := viper.GetString("settings.models")
	slog.Debug("loading models", "path", modelsPath)
	meta, err := schema.LoadMetaData(modelsPath)
	if err != nil {
		return nil, err
	}

	// 1. Declared side
	declared, err := schema.DeclaredEnums(meta, SchemaName, defaultSchema)
	if err != nil {
		return nil, err
	}

	// 2. Database side
	slog.Debug("inspecting database", "schema", SchemaName)
	defined, err := schema.InspectDatabase(ctx, DB, Dialect, SchemaName)
	if err != nil {
		return nil, err
	}

	// 3. Compare
	syn := &engine.Synthesizer{
		Config:   cfg,
		Dialect:  Dialect,
		Resolver: &schema.DatabaseResolver{DB: DB, Dialect: Dialect},
		Logger:   slog.Default(),
	}
	plan, err := syn.Compare(ctx, defined, declared)
	if err != nil {
		return nil, fmt.Errorf("failed to compare enums: %w", err)
	}
	return &planResult{Config: cfg, Defined: defined, Declared: declared, Plan: plan}, nil
}
