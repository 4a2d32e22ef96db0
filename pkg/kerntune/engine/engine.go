// Package engine applies validated proposals against the system mutator.
// Proposals are applied strictly sequentially, never in parallel, because
// writes may target overlapping namespaces and ordering must be
// reproducible. One failing write never discards the batch: each proposal
// gets its own result, and a transaction is committed only when at least
// one change succeeded.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kerntune/kerntune/pkg/kerntune/logging"
	"github.com/kerntune/kerntune/pkg/kerntune/types"
	"github.com/kerntune/kerntune/pkg/kerntune/validate"
)

// logger is the package-level logger for apply operations.
var logger = logging.Get("engine")

// Mutator is the external capability that performs the actual system
// write. Apply returns the value the parameter held immediately before
// the write, which becomes the pre-image recorded for undo. The engine
// imposes no timeout of its own; each call carries whatever timeout the
// mutator defines.
type Mutator interface {
	// Current reads the live value of a parameter.
	Current(param string) (string, error)

	// Apply writes a value and returns the previous one.
	Apply(param, value string) (old string, err error)
}

// Runner executes the command of a command-carrying proposal. The engine
// works without one; command proposals then fail with ErrNoRunner.
type Runner interface {
	Run(ctx context.Context, command string) error
}

// Persister records successfully applied parameter writes in a persisted
// configuration file so they survive reboot.
type Persister interface {
	Persist(entries []PersistEntry) error
}

// PersistEntry is one parameter line handed to the Persister.
type PersistEntry struct {
	Param  string
	Value  string
	Reason string
}

// Status is the per-proposal state within an apply batch.
type Status string

// Proposal states. Every proposal moves Pending → Validated → Applying →
// Applied or Failed; validation violations divert to Rejected and live
// no-ops to Skipped.
const (
	StatusPending   Status = "pending"
	StatusValidated Status = "validated"
	StatusApplying  Status = "applying"
	StatusApplied   Status = "applied"
	StatusFailed    Status = "failed"
	StatusRejected  Status = "rejected"
	StatusSkipped   Status = "skipped"
)

// Result is the outcome for a single proposal.
type Result struct {
	// Proposal is the proposal this result describes.
	Proposal types.Proposal `json:"proposal"`

	// Status is the final state the proposal reached.
	Status Status `json:"status"`

	// Error holds the failure or rejection reason, if any.
	Error string `json:"error,omitempty"`
}

// Report aggregates per-proposal results and the committed transaction.
type Report struct {
	// Results holds one entry per submitted proposal, in order.
	Results []Result `json:"results"`

	// Transaction is the committed transaction, nil when nothing changed.
	Transaction *types.Transaction `json:"transaction,omitempty"`
}

// Counts returns the number of applied, failed, rejected, and skipped
// proposals.
func (r *Report) Counts() (applied, failed, rejected, skipped int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusApplied:
			applied++
		case StatusFailed:
			failed++
		case StatusRejected:
			rejected++
		case StatusSkipped:
			skipped++
		}
	}
	return applied, failed, rejected, skipped
}

// TransactionID returns the committed transaction's id, or "".
func (r *Report) TransactionID() string {
	if r.Transaction == nil {
		return ""
	}
	return r.Transaction.ID
}

// ErrNoRunner indicates a command proposal was submitted to an engine
// without a command runner.
var ErrNoRunner = errors.New("no command runner configured")

// ErrAllRejected indicates that validation discarded every proposal in
// the batch, so nothing was attempted.
var ErrAllRejected = errors.New("all proposals rejected by validation")

// ErrEmptyBatch indicates an empty proposal set was submitted.
var ErrEmptyBatch = errors.New("no proposals to apply")

// Option configures an Engine.
type Option func(*Engine)

// WithRunner supplies the command runner for command-carrying proposals.
func WithRunner(r Runner) Option {
	return func(e *Engine) { e.runner = r }
}

// WithPersister supplies the persisted-configuration writer.
func WithPersister(p Persister) Option {
	return func(e *Engine) { e.persister = p }
}

// Engine executes proposal batches against a mutator.
type Engine struct {
	mutator   Mutator
	runner    Runner
	persister Persister
}

// New returns an engine writing through the given mutator.
func New(m Mutator, opts ...Option) *Engine {
	e := &Engine{mutator: m}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply validates and applies every proposal in the set, strictly in
// order, and returns a report with one result per proposal. A transaction
// is created only when at least one change succeeded; its pre-images are
// the live values read at apply time, not the values captured at analysis.
//
// Apply returns ErrAllRejected when validation discarded the whole batch
// and ErrEmptyBatch for an empty set; partial failures are not errors.
func (e *Engine) Apply(ctx context.Context, set *types.ProposalSet, description string) (*Report, error) {
	proposals := set.FilterNoOps().Proposals()
	if len(proposals) == 0 {
		return &Report{}, ErrEmptyBatch
	}

	report := &Report{Results: make([]Result, 0, len(proposals))}
	var changes []types.ParamChange
	var persistEntries []PersistEntry

	rejected := 0
	for _, p := range proposals {
		res := Result{Proposal: p, Status: StatusPending}

		if err := validate.Proposal(p); err != nil {
			res.Status = StatusRejected
			res.Error = err.Error()
			rejected++
			logger.Warn("proposal rejected", "param", p.Param, "reason", err)
			report.Results = append(report.Results, res)
			continue
		}
		res.Status = StatusValidated

		res.Status = StatusApplying
		change, applied, err := e.applyOne(ctx, p)
		switch {
		case err != nil:
			res.Status = StatusFailed
			res.Error = err.Error()
			logger.Error("apply failed", "param", p.Param, "error", err)
		case !applied:
			res.Status = StatusSkipped
			logger.Debug("proposal already in effect", "param", p.Param, "value", p.Proposed)
		default:
			res.Status = StatusApplied
			changes = append(changes, change)
			if persistable(p) {
				persistEntries = append(persistEntries, PersistEntry{
					Param:  p.Param,
					Value:  p.Proposed,
					Reason: p.Reason,
				})
			}
			logger.Info("applied", "param", p.Param, "old", change.Old, "new", change.New)
		}
		report.Results = append(report.Results, res)
	}

	if rejected == len(proposals) {
		return report, ErrAllRejected
	}

	if len(changes) > 0 {
		report.Transaction = &types.Transaction{
			ID:          uuid.NewString(),
			Timestamp:   time.Now().UTC(),
			Description: description,
			Changes:     changes,
		}
		if e.persister != nil && len(persistEntries) > 0 {
			if err := e.persister.Persist(persistEntries); err != nil {
				// The live writes already happened; a persistence failure
				// must not undo the batch, only surface in the log.
				logger.Error("persisting configuration failed", "error", err)
			}
		}
	}

	return report, nil
}

// applyOne executes a single proposal. It reports applied=false with a
// nil error when the live value already matches the proposal.
func (e *Engine) applyOne(ctx context.Context, p types.Proposal) (types.ParamChange, bool, error) {
	if p.Command != "" {
		if e.runner == nil {
			return types.ParamChange{}, false, fmt.Errorf("applying %s: %w", p.Param, ErrNoRunner)
		}
		if err := e.runner.Run(ctx, p.Command); err != nil {
			return types.ParamChange{}, false, fmt.Errorf("running command for %s: %w", p.Param, err)
		}
		// Commands have no readable pre-image; record the analysis-time
		// value so the change is at least documented.
		return types.ParamChange{Param: p.Param, Old: p.Current, New: p.Proposed, Command: true}, true, nil
	}

	// Fresh pre-image: the analysis-time value may be stale.
	live, err := e.mutator.Current(p.Param)
	if err == nil && live == p.Proposed && !p.Force {
		return types.ParamChange{}, false, nil
	}

	old, err := e.mutator.Apply(p.Param, p.Proposed)
	if err != nil {
		return types.ParamChange{}, false, fmt.Errorf("writing %s: %w", p.Param, err)
	}
	return types.ParamChange{Param: p.Param, Old: old, New: p.Proposed}, true, nil
}

// persistable reports whether an applied proposal belongs in the persisted
// sysctl configuration. Command proposals and sysfs block-device knobs do
// not: the former are not parameter writes, the latter are not sysctl
// namespace entries.
func persistable(p types.Proposal) bool {
	return p.Command == "" && !strings.HasPrefix(p.Param, "block.")
}
