// Package pipeline wires the analysis and apply flow end to end:
// snapshot → rule providers → proposal set → validation → apply engine →
// transaction ledger. A Pipeline is constructed once per invocation and
// passed explicitly; there is no ambient global state.
package pipeline

import (
	"context"
	"fmt"

	"github.com/kerntune/kerntune/pkg/kerntune/engine"
	"github.com/kerntune/kerntune/pkg/kerntune/ledger"
	"github.com/kerntune/kerntune/pkg/kerntune/logging"
	"github.com/kerntune/kerntune/pkg/kerntune/rules"
	"github.com/kerntune/kerntune/pkg/kerntune/snapshot"
	"github.com/kerntune/kerntune/pkg/kerntune/types"
)

// logger is the package-level logger for pipeline orchestration.
var logger = logging.Get("pipeline")

// Pipeline orchestrates one analyze/apply cycle. The snapshot it holds is
// immutable and discarded with the pipeline; proposals flow through by
// value and are never retained.
type Pipeline struct {
	snap    snapshot.Snapshot
	reg     *rules.Registry
	eng     *engine.Engine
	led     *ledger.Ledger
	mutator engine.Mutator
}

// New builds a pipeline over the given snapshot and collaborators. The
// mutator is shared between the engine (forward writes) and the ledger
// (inverse writes during undo).
func New(snap snapshot.Snapshot, reg *rules.Registry, led *ledger.Ledger, mutator engine.Mutator, engineOpts ...engine.Option) *Pipeline {
	return &Pipeline{
		snap:    snap,
		reg:     reg,
		eng:     engine.New(mutator, engineOpts...),
		led:     led,
		mutator: mutator,
	}
}

// Analyze runs every registered rule provider against the snapshot and
// returns the deduplicated, deterministically ordered proposal set.
func (p *Pipeline) Analyze(persona types.Persona) *types.ProposalSet {
	set := p.reg.Analyze(p.snap, persona)
	logger.Info("analysis complete", "persona", persona, "proposals", set.Len())
	return set
}

// Apply validates and applies a confirmed proposal set, appends the
// resulting transaction to the ledger, and returns the per-proposal
// report. Partial failures are reported, not raised; only an empty or
// fully rejected batch, or a ledger failure, is an error.
func (p *Pipeline) Apply(ctx context.Context, set *types.ProposalSet, description string) (*engine.Report, error) {
	report, err := p.eng.Apply(ctx, set, description)
	if err != nil {
		return report, err
	}
	if report.Transaction != nil {
		if err := p.led.Append(report.Transaction); err != nil {
			// The writes happened but history did not: surface loudly,
			// the transaction cannot be undone through the ledger.
			return report, fmt.Errorf("recording transaction %s: %w", report.Transaction.ID, err)
		}
	}
	return report, nil
}

// UndoLast undoes the most recent non-reverted transaction.
func (p *Pipeline) UndoLast() (*ledger.UndoReport, error) {
	return p.led.UndoLast(p.mutator)
}

// UndoByID undoes a specific transaction.
func (p *Pipeline) UndoByID(id string) (*ledger.UndoReport, error) {
	return p.led.UndoByID(id, p.mutator)
}

// Reset undoes all recorded transactions, removes persisted configuration
// artifacts, and signals a reload.
func (p *Pipeline) Reset(ctx context.Context) (*ledger.ResetReport, error) {
	return p.led.Reset(ctx, p.mutator)
}

// History lists the most recent transactions, newest first.
func (p *Pipeline) History(limit int) ([]types.Transaction, error) {
	return p.led.List(limit)
}

// Snapshot returns the snapshot the pipeline was built over.
func (p *Pipeline) Snapshot() snapshot.Snapshot {
	return p.snap
}
