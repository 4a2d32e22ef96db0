// Package ledger provides the durable, append-only record of applied
// tuning transactions. The ledger is a JSON array at a fixed path,
// replaced atomically on every mutation so a crash mid-write never leaves
// a truncated file, and guarded by an exclusive advisory lock so two
// invocations cannot race on the same file. It retains the 50 most recent
// transactions; older ones are evicted with a logged warning and become
// non-undoable.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kerntune/kerntune/pkg/kerntune/logging"
	"github.com/kerntune/kerntune/pkg/kerntune/types"
)

// DefaultCapacity is the number of transactions retained before FIFO
// eviction of the oldest.
const DefaultCapacity = 50

// logger is the package-level logger for ledger operations.
var logger = logging.Get("ledger")

// Sentinel errors for ledger operations.
var (
	// ErrNotFound indicates the undo target does not exist.
	ErrNotFound = errors.New("transaction not found")

	// ErrAlreadyReverted indicates the undo target was already undone.
	ErrAlreadyReverted = errors.New("transaction already reverted")

	// ErrNothingToUndo indicates no non-reverted transaction exists.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrLocked indicates another operation holds the exclusive lock.
	ErrLocked = errors.New("ledger locked by another operation")

	// ErrStorage indicates a ledger read or write failure. Atomic replace
	// guarantees no half-written state survives such a failure.
	ErrStorage = errors.New("ledger storage error")
)

// Mutator applies inverse writes during undo. It matches the engine's
// mutator capability; the ledger declares its own copy so the dependency
// points the right way.
type Mutator interface {
	Apply(param, value string) (old string, err error)
}

// Pruner removes persisted configuration artifacts when changes are
// undone or the system is reset.
type Pruner interface {
	RemoveParams(params []string) error
	RemoveAll() error
}

// Reloader signals the external system to reload defaults after a reset.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithCapacity overrides the retained-transaction capacity.
func WithCapacity(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// WithPruner supplies the persisted-configuration pruner used by undo and
// reset.
func WithPruner(p Pruner) Option {
	return func(l *Ledger) { l.pruner = p }
}

// WithReloader supplies the reload signal used by reset.
func WithReloader(r Reloader) Option {
	return func(l *Ledger) { l.reloader = r }
}

// Ledger is the durable transaction store.
type Ledger struct {
	path     string
	capacity int
	pruner   Pruner
	reloader Reloader

	// mu serializes in-process access; the flock in lock() serializes
	// across processes.
	mu sync.Mutex
}

// New creates a ledger persisting to the given file path.
func New(path string, opts ...Option) (*Ledger, error) {
	if path == "" {
		return nil, errors.New("ledger path cannot be empty")
	}
	l := &Ledger{path: path, capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return l.path
}

// Append durably records a transaction, evicting the oldest entries once
// capacity is exceeded. Eviction is logged: evicted changes can no longer
// be undone.
func (l *Ledger) Append(tx *types.Transaction) error {
	if tx == nil || len(tx.Changes) == 0 {
		return errors.New("transaction must carry at least one change")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	unlock, err := l.lock()
	if err != nil {
		return err
	}
	defer unlock()

	txs, err := l.load()
	if err != nil {
		return err
	}

	txs = append(txs, *tx)
	if len(txs) > l.capacity {
		evicted := txs[:len(txs)-l.capacity]
		for _, old := range evicted {
			logger.Warn("evicting transaction beyond capacity; its changes are no longer undoable",
				"id", old.ID, "applied", old.Timestamp)
		}
		txs = txs[len(txs)-l.capacity:]
	}

	if err := l.save(txs); err != nil {
		return err
	}
	logger.Info("transaction appended", "id", tx.ID, "changes", len(tx.Changes))
	return nil
}

// List returns the most recent limit transactions, newest first. A
// non-positive limit returns everything.
func (l *Ledger) List(limit int) ([]types.Transaction, error) {
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

	// Reverse into newest-first order.
	out := make([]types.Transaction, 0, len(txs))
	for i := len(txs) - 1; i >= 0; i-- {
		out = append(out, txs[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get returns the transaction with the given id.
func (l *Ledger) Get(id string) (*types.Transaction, error) {
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
	for i := range txs {
		if txs[i].ID == id {
			return &txs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// load reads the persisted transaction array. A missing file is an empty
// ledger; a corrupt one is a storage error.
func (l *Ledger) load() ([]types.Transaction, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrStorage, l.path, err)
	}
	var txs []types.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrStorage, l.path, err)
	}
	return txs, nil
}

// save atomically replaces the ledger file: write to a temporary path,
// then rename. Permissions are owner-only.
func (l *Ledger) save(txs []types.Transaction) error {
	if txs == nil {
		txs = []types.Transaction{}
	}
	data, err := json.MarshalIndent(txs, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding: %v", ErrStorage, err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("%w: creating ledger directory: %v", ErrStorage, err)
	}

	tmpPath := l.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("%w: writing temp file: %v", ErrStorage, err)
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: renaming temp file: %v", ErrStorage, err)
	}
	return nil
}
