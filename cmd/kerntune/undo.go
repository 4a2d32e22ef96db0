package main

import (
	"errors"

	"github.com/kerntune/kerntune/pkg/kerntune/ledger"
	"github.com/kerntune/kerntune/pkg/kerntune/output"
	"github.com/spf13/cobra"
)

var undoCmd = &cobra.Command{
	Use:   "undo [transaction-id]",
	Short: "Undo an applied transaction",
	Long: `Restore the pre-change values recorded in a transaction.

Without arguments the most recent non-reverted transaction is undone.
Pass a transaction id (see 'kerntune history') to undo a specific one.

A transaction is marked reverted only when every parameter was restored.
If some restores fail the transaction stays active and a later undo
retries the whole set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUndo,
}

func init() {
	rootCmd.AddCommand(undoCmd)
}

// runUndo restores the previous values of one transaction.
func runUndo(cmd *cobra.Command, args []string) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer app.close()

	var report *ledger.UndoReport
	if len(args) == 1 {
		report, err = app.pipeline.UndoByID(args[0])
	} else {
		report, err = app.pipeline.UndoLast()
	}
	if err != nil {
		if errors.Is(err, ledger.ErrNothingToUndo) {
			printInfo("Nothing to undo.")
			return nil
		}
		return err
	}

	return render(app.format, &output.Document{Undo: output.BuildUndo(report)})
}
