package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"enum-sync/internal/diff"
	"enum-sync/internal/engine"
	"enum-sync/internal/schema"

	"github.com/spf13/viper"
)

type DBConfig struct {
	Name   string `mapstructure:"name"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Active bool   `mapstructure:"active"`
}

// RenameConfig declares that a member of an enum was renamed.
//
// Renames and remaps are lists rather than maps because viper lower-cases
// map keys and enum members are case sensitive.
type RenameConfig struct {
	Enum string `mapstructure:"enum"`
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

// RemapConfig moves rows holding a removed member to another member.
type RemapConfig struct {
	Enum  string `mapstructure:"enum"`
	Value string `mapstructure:"value"`
	To    string `mapstructure:"to"`
}

// ErrNoActiveDB is returned by GetActiveDBConfig when no entry of
// "databases" is marked active.
var ErrNoActiveDB = errors.New("no active database found in config (set active: true)")

// GetActiveDBConfig returns the currently active database configuration.
func GetActiveDBConfig() (*DBConfig, error) {
	var configs []DBConfig

	if err := viper.UnmarshalKey("databases", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse databases config: %w", err)
	}

	var activeConfig *DBConfig
	count := 0

	for i := range configs {
		if configs[i].Active {
			activeConfig = &configs[i]
			count++
		}
	}

	if count == 0 {
		return nil, ErrNoActiveDB
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple active databases found (only one can be active)")
	}

	return activeConfig, nil
}

// resolveConnection picks the DSN and driver to connect with.
// Precedence: Flag > Config > Default. The active "databases" entry is the
// config value; database.dsn and database.driver are used without one.
func resolveConnection(dsnChanged, driverChanged bool) (string, string, error) {
	connStr := viper.GetString("database.dsn")
	driver := viper.GetString("database.driver")

	if !dsnChanged {
		active, err := GetActiveDBConfig()
		switch {
		case err == nil:
			connStr = active.DSN
			if !driverChanged && active.Driver != "" {
				driver = active.Driver
			}
			slog.Debug("using configured database", "name", active.Name)
		case !errors.Is(err, ErrNoActiveDB):
			return "", "", err
		}
	}

	if connStr == "" {
		return "", "", fmt.Errorf("database.dsn is required (via flag or config)")
	}
	if driver == "" {
		driver = "postgres"
	}
	return connStr, driver, nil
}

func init() {
	viper.SetDefault("settings.models", "models.yaml")
	viper.SetDefault("settings.add_type_ignore", false)
	viper.SetDefault("settings.add_using_to_alter_operation", true)
	viper.SetDefault("settings.detect_renames", true)
}

// loadEngineConfig builds the synthesis settings from the "settings" block.
func loadEngineConfig(defaultSchema string) (engine.Config, error) {
	cfg := engine.DefaultConfig()
	cfg.AddTypeIgnore = viper.GetBool("settings.add_type_ignore")
	cfg.AddUsingToAlterOperation = viper.GetBool("settings.add_using_to_alter_operation")
	cfg.DetectRenames = viper.GetBool("settings.detect_renames")

	var renames []RenameConfig
	if err := viper.UnmarshalKey("settings.renames", &renames); err != nil {
		return cfg, fmt.Errorf("failed to parse settings.renames: %w", err)
	}
	for _, r := range renames {
		if r.Enum == "" {
			return cfg, fmt.Errorf("settings.renames: enum is required")
		}
		name := schema.ParseEnumName(r.Enum, defaultSchema)
		if r.From == "" || r.To == "" {
			return cfg, fmt.Errorf("settings.renames: %s needs both from and to", name)
		}
		if cfg.Renames == nil {
			cfg.Renames = make(map[schema.EnumName][]diff.Rename)
		}
		cfg.Renames[name] = append(cfg.Renames[name], diff.Rename{From: r.From, To: r.To})
	}

	var remaps []RemapConfig
	if err := viper.UnmarshalKey("settings.remap", &remaps); err != nil {
		return cfg, fmt.Errorf("failed to parse settings.remap: %w", err)
	}
	for _, r := range remaps {
		if r.Enum == "" {
			return cfg, fmt.Errorf("settings.remap: enum is required")
		}
		name := schema.ParseEnumName(r.Enum, defaultSchema)
		if cfg.Remap == nil {
			cfg.Remap = make(map[schema.EnumName]map[string]string)
		}
		if cfg.Remap[name] == nil {
			cfg.Remap[name] = make(map[string]string)
		}
		cfg.Remap[name][r.Value] = r.To
	}
	return cfg, nil
}
