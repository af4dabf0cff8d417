package cmd

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"strings"

	"enum-sync/internal/schema"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List enum types and the columns that use them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		schemas := []string{SchemaName}
		if SchemaName == "" {
			all, err := schema.ListSchemas(ctx, DB, Dialect)
			if err != nil {
				return err
			}
			schemas = all
		}
		slog.Debug("inspecting schemas", "count", len(schemas))

		// Progress goes to stderr so stdout stays parseable.
		progress := uiprogress.New()
		progress.SetOut(os.Stderr)
		progress.Start()
		bar := progress.AddBar(len(schemas)).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return "Inspecting: "
		})

		merged := schema.NewEnums()
		for _, s := range schemas {
			found, err := schema.InspectDatabase(ctx, DB, Dialect, s)
			if err != nil {
				progress.Stop()
				return err
			}
			maps.Copy(merged.Values, found.Values)
			maps.Copy(merged.References, found.References)
			maps.Copy(merged.Defaults, found.Defaults)
			bar.Incr()
		}
		progress.Stop()

		out := cmd.OutOrStdout()
		names := merged.Names()
		if len(names) == 0 {
			fmt.Fprintln(out, "no enum types found")
			return nil
		}
		for _, name := range names {
			fmt.Fprintf(out, "%s (%s)\n", name, strings.Join(merged.Values[name], ", "))
			for _, ref := range merged.References[name].Sorted() {
				if def, ok := merged.Defaults[ref]; ok {
					fmt.Fprintf(out, "    └ %s DEFAULT %s\n", ref, def)
					continue
				}
				fmt.Fprintf(out, "    └ %s\n", ref)
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(inspectCmd)
}
