package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"enum-sync/internal/dialect"
	"enum-sync/internal/engine"

	"github.com/spf13/cobra"
)

var verify bool

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Print the upgrade and downgrade SQL for enum changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := buildPlan(cmd.Context())
		if err != nil {
			return err
		}
		if !res.Plan.HasChanges() {
			slog.Info("enums are in sync, nothing to do")
			return nil
		}

		if verify {
			if err := engine.Verify(res.Defined, res.Declared, res.Plan, Dialect); err != nil {
				return fmt.Errorf("generated migration failed verification: %w", err)
			}
			slog.Info("migration verified against a simulated catalog")
		}

		writeDiff(cmd.OutOrStdout(), cmd.ErrOrStderr(), res.Plan, Dialect, res.Config)
		return nil
	},
}

// writeDiff prints both scripts to out and a per-enum summary to summary.
func writeDiff(out, summary io.Writer, plan *engine.Plan, d dialect.Dialect, cfg engine.Config) {
	fmt.Fprintln(out, "-- upgrade")
	fmt.Fprint(out, engine.Script(plan.Upgrade(), d, cfg))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "-- downgrade")
	fmt.Fprint(out, engine.Script(plan.Downgrade(), d, cfg))

	for _, ch := range plan.Changes {
		fmt.Fprintf(summary, "  %-30s %d up / %d down\n", ch.Enum, len(ch.Upgrade), len(ch.Downgrade))
	}
}

func init() {
	RootCmd.AddCommand(diffCmd)

	diffCmd.Flags().BoolVar(&verify, "verify", false, "replay the migration on a simulated catalog before printing")
}
