package cmd

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"enum-sync/internal/dialect"
	"enum-sync/internal/schema"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	dsn        string
	DB         *sql.DB
	Dialect    dialect.Dialect
	SchemaName string // target schema; empty with --all-schemas
	cfgFile    string
	DriverName string // "postgres" or "pgx"
	verbose    bool
	allSchemas bool
)

var RootCmd = &cobra.Command{
	Use:   "enum-sync",
	Short: "Generate migrations for PostgreSQL enum type changes",
	Long: `enum-sync compares the enum types declared in your models file with the
enum types in a live PostgreSQL database and prints a reversible SQL
migration (upgrade and downgrade) that brings the database in line.

Nothing is ever written to the database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()

		flags := cmd.Root().PersistentFlags()
		connStr, driver, err := resolveConnection(flags.Changed("dsn"), flags.Changed("driver"))
		if err != nil {
			return err
		}
		DriverName = driver

		d, err := dialect.GetDialect(DriverName)
		if err != nil {
			return err
		}
		Dialect = d

		DB, err = sql.Open(DriverName, connStr)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		ctx := cmd.Context()
		if err := DB.PingContext(ctx); err != nil {
			return fmt.Errorf("failed to connect to db: %w", err)
		}

		version, err := schema.DetectVersion(ctx, DB, Dialect)
		if err != nil {
			return err
		}
		slog.Debug("connected", "driver", DriverName, "server_version", version)

		SchemaName = Dialect.GetSchemaName(viper.GetString("settings.schema"))
		if allSchemas {
			SchemaName = ""
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if DB != nil {
			return DB.Close()
		}
		return nil
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Define flags
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./enum-sync.yaml)")
	RootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Database Source Name (DSN)")
	RootCmd.PersistentFlags().String("driver", "", "database/sql driver: postgres or pgx")
	RootCmd.PersistentFlags().String("schema", "", "schema whose enums are compared (default public)")
	RootCmd.PersistentFlags().String("models", "", "models file declaring enums and tables (default models.yaml)")
	RootCmd.PersistentFlags().BoolVar(&allSchemas, "all-schemas", false, "compare enums of every schema")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	viper.BindPFlag("database.dsn", RootCmd.PersistentFlags().Lookup("dsn"))
	viper.BindPFlag("database.driver", RootCmd.PersistentFlags().Lookup("driver"))
	viper.BindPFlag("settings.schema", RootCmd.PersistentFlags().Lookup("schema"))
	viper.BindPFlag("settings.models", RootCmd.PersistentFlags().Lookup("models"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// 1. Executable Directory (Priority 1)
		ex, err := os.Executable()
		if err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}

		// 2. Current Directory (Priority 2)
		viper.AddConfigPath(".")

		viper.SetConfigName("enum-sync")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("ENUM_SYNC")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
