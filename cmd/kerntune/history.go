package main

import (
	"github.com/kerntune/kerntune/pkg/kerntune/output"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show applied transactions",
	Long: `List the transactions recorded in the ledger, newest first.

The ledger keeps the most recent transactions; older ones are evicted
when the capacity is reached. Reverted transactions stay listed and are
marked as such.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

// runHistory lists recorded transactions.
func runHistory(cmd *cobra.Command, args []string) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer app.close()

	transactions, err := app.pipeline.History(historyLimit)
	if err != nil {
		return err
	}

	return render(app.format, &output.Document{History: output.BuildHistory(transactions)})
}
