package ledger

import (
	"context"
	"fmt"

	"github.com/kerntune/kerntune/pkg/kerntune/types"
)

// UndoFailure records one parameter that could not be restored.
type UndoFailure struct {
	// Param is the parameter whose restore failed.
	Param string `json:"param"`

	// Error is the failure reason.
	Error string `json:"error"`
}

// UndoReport describes the outcome of undoing one transaction. A partial
// revert is explicitly surfaced: Restored lists what went back, Failed
// what did not, and Reverted is true only when everything was restored.
type UndoReport struct {
	// TransactionID identifies the undone transaction.
	TransactionID string `json:"transaction_id"`

	// Description is the transaction's original description.
	Description string `json:"description"`

	// Restored lists the changes whose old values were written back.
	Restored []types.ParamChange `json:"restored"`

	// Skipped lists command changes, which have no inverse write. They do
	// not block the transaction from being marked reverted.
	Skipped []types.ParamChange `json:"skipped,omitempty"`

	// Failed lists the changes that could not be restored.
	Failed []UndoFailure `json:"failed,omitempty"`

	// Reverted is true when every restorable change was written back and
	// the transaction was marked reverted in the ledger.
	Reverted bool `json:"reverted"`
}

// ResetOutcome is the per-transaction result of a reset.
type ResetOutcome struct {
	// TransactionID identifies the transaction.
	TransactionID string `json:"transaction_id"`

	// Status is "reverted", "partial", or "failed".
	Status string `json:"status"`

	// Error carries the failure reason for partial and failed outcomes.
	Error string `json:"error,omitempty"`
}

// ResetReport aggregates a full reset-to-defaults run.
type ResetReport struct {
	// Outcomes holds one entry per non-reverted transaction processed,
	// newest first.
	Outcomes []ResetOutcome `json:"outcomes"`

	// ArtifactsRemoved is true when the persisted configuration files
	// under the config root were removed.
	ArtifactsRemoved bool `json:"artifacts_removed"`

	// Reloaded is true when the external reload signal succeeded.
	Reloaded bool `json:"reloaded"`
}

// UndoLast undoes the most recent non-reverted transaction.
func (l *Ledger) UndoLast(m Mutator) (*UndoReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	unlock, err := l.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	txs, err := l.load()
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := len(txs) - 1; i >= 0; i-- {
		if !txs[i].Reverted {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNothingToUndo
	}
	return l.undoAt(txs, idx, m)
}

// UndoByID undoes the transaction with the given id. It fails with
// ErrNotFound when the id is absent and ErrAlreadyReverted when the
// transaction was undone before.
func (l *Ledger) UndoByID(id string, m Mutator) (*UndoReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	unlock, err := l.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	txs, err := l.load()
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range txs {
		if txs[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if txs[idx].Reverted {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyReverted, id)
	}
	return l.undoAt(txs, idx, m)
}

// undoAt applies inverse writes for the transaction at idx, in reverse
// change order, and marks it reverted only when every write succeeded.
// Command changes have no inverse write; they are skipped so a
// transaction carrying one can still be fully reverted and never pins
// older transactions behind it. Callers hold the lock.
func (l *Ledger) undoAt(txs []types.Transaction, idx int, m Mutator) (*UndoReport, error) {
	tx := txs[idx]
	report := &UndoReport{TransactionID: tx.ID, Description: tx.Description}

	for i := len(tx.Changes) - 1; i >= 0; i-- {
		change := tx.Changes[i]
		if change.Command {
			report.Skipped = append(report.Skipped, change)
			logger.Info("command change not restorable, skipped", "tx", tx.ID, "param", change.Param)
			continue
		}
		if _, err := m.Apply(change.Param, change.Old); err != nil {
			report.Failed = append(report.Failed, UndoFailure{Param: change.Param, Error: err.Error()})
			logger.Error("restore failed", "tx", tx.ID, "param", change.Param, "error", err)
			continue
		}
		report.Restored = append(report.Restored, change)
		logger.Info("restored", "tx", tx.ID, "param", change.Param, "value", change.Old)
	}

	if l.pruner != nil && len(report.Restored) > 0 {
		params := make([]string, 0, len(report.Restored))
		for _, c := range report.Restored {
			params = append(params, c.Param)
		}
		if err := l.pruner.RemoveParams(params); err != nil {
			logger.Error("pruning persisted configuration failed", "tx", tx.ID, "error", err)
		}
	}

	if len(report.Failed) == 0 {
		txs[idx].Reverted = true
		if err := l.save(txs); err != nil {
			return report, err
		}
		report.Reverted = true
	}
	return report, nil
}

// Reset undoes every non-reverted transaction in reverse chronological
// order, continuing through failures, then removes persisted
// configuration artifacts under the config root and signals the external
// system to reload its defaults. The report carries one outcome per
// transaction plus the artifact and reload results.
func (l *Ledger) Reset(ctx context.Context, m Mutator) (*ResetReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	unlock, err := l.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	txs, err := l.load()
	if err != nil {
		return nil, err
	}

	report := &ResetReport{}
	for i := len(txs) - 1; i >= 0; i-- {
		if txs[i].Reverted {
			continue
		}
		undo, err := l.undoAt(txs, i, m)
		outcome := ResetOutcome{TransactionID: txs[i].ID}
		switch {
		case err != nil:
			outcome.Status = "failed"
			outcome.Error = err.Error()
		case len(undo.Failed) > 0:
			outcome.Status = "partial"
			outcome.Error = fmt.Sprintf("%d of %d changes not restored", len(undo.Failed), len(txs[i].Changes))
		default:
			outcome.Status = "reverted"
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	if l.pruner != nil {
		if err := l.pruner.RemoveAll(); err != nil {
			logger.Error("removing persisted configuration failed", "error", err)
		} else {
			report.ArtifactsRemoved = true
		}
	}
	if l.reloader != nil {
		if err := l.reloader.Reload(ctx); err != nil {
			logger.Error("reload signal failed", "error", err)
		} else {
			report.Reloaded = true
		}
	}

	logger.Info("reset complete", "transactions", len(report.Outcomes),
		"artifacts_removed", report.ArtifactsRemoved, "reloaded", report.Reloaded)
	return report, nil
}
