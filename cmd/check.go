package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ErrDrift is returned by check when the database enums differ from the models.
var ErrDrift = errors.New("enum drift detected")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Exit non-zero when database enums differ from the models",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := buildPlan(cmd.Context())
		if err != nil {
			return err
		}
		if !res.Plan.HasChanges() {
			fmt.Fprintln(cmd.OutOrStdout(), "✓ enums are in sync")
			return nil
		}

		out := cmd.OutOrStdout()
		for _, ch := range res.Plan.Changes {
			if ch.Diff == nil {
				fmt.Fprintf(out, "! %s: type must be created or dropped\n", ch.Enum)
				continue
			}
			fmt.Fprintf(out, "! %s: added %v, removed %v, renamed %d\n",
				ch.Enum, ch.Diff.Added, ch.Diff.Removed, len(ch.Diff.Renames))
		}
		return ErrDrift
	},
}

func init() {
	RootCmd.AddCommand(checkCmd)
}
