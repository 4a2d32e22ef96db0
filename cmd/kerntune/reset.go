package main

import (
	"context"

	"github.com/kerntune/kerntune/pkg/kerntune/output"
	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Revert everything kerntune has applied",
	Long: `Undo every non-reverted transaction, newest first, remove the
persisted configuration files, and ask the system to reload sysctl
settings.

Transactions that fail to revert are reported and the reset continues
with the remaining ones.`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "reset without asking for confirmation")
	rootCmd.AddCommand(resetCmd)
}

// runReset reverts all recorded transactions and removes persisted state.
func runReset(cmd *cobra.Command, args []string) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer app.close()

	if !resetYes && !confirm("Revert all kerntune changes") {
		printInfo("Aborted.")
		return nil
	}

	report, err := app.pipeline.Reset(context.Background())
	if err != nil {
		return err
	}

	return render(app.format, &output.Document{Reset: output.BuildReset(report)})
}
