package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/kerntune/kerntune/pkg/kerntune/engine"
	"github.com/kerntune/kerntune/pkg/kerntune/output"
	"github.com/kerntune/kerntune/pkg/kerntune/types"
	"github.com/spf13/cobra"
)

var (
	applyYes    bool
	applyDryRun bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply tuning proposals to the running system",
	Long: `Analyze the system and apply the resulting proposals.

Every applied batch is recorded as a transaction with the pre-change
value of each parameter, so 'kerntune undo' can restore the previous
state. Applied sysctl parameters are also persisted under the sysctl
configuration directory so they survive reboot.

Proposals that fail validation are rejected without stopping the rest
of the batch. Use --category and --priority to narrow the batch.`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().BoolVarP(&applyYes, "yes", "y", false, "apply without asking for confirmation")
	applyCmd.Flags().BoolVarP(&applyDryRun, "dry-run", "d", false, "show what would be applied without changing anything")
	rootCmd.AddCommand(applyCmd)
}

// runApply analyzes the system and applies the filtered proposals as one
// transaction.
func runApply(cmd *cobra.Command, args []string) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer app.close()

	set := app.pipeline.Analyze(app.persona)
	proposals, err := filterProposals(set.Proposals())
	if err != nil {
		return err
	}

	doc := &output.Document{
		Persona:   string(app.persona),
		System:    output.BuildSystem(app.pipeline.Snapshot()),
		Proposals: output.BuildProposals(proposals),
	}

	if len(proposals) == 0 || applyDryRun {
		return render(app.format, doc)
	}

	if !applyYes {
		if err := render(app.format, doc); err != nil {
			return err
		}
		if !confirm(fmt.Sprintf("Apply %d proposals", len(proposals))) {
			printInfo("Aborted.")
			return nil
		}
	}

	batch := types.NewProposalSet()
	batch.AddAll(proposals)

	description := fmt.Sprintf("%s tuning", app.persona)
	report, err := app.pipeline.Apply(context.Background(), batch, description)
	if err != nil && !errors.Is(err, engine.ErrAllRejected) {
		return err
	}

	doc.Proposals = nil
	doc.Apply = output.BuildApply(report)
	if renderErr := render(app.format, doc); renderErr != nil {
		return renderErr
	}
	return err
}
