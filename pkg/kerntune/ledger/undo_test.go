package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kerntune/kerntune/pkg/kerntune/types"
)

// memMutator is a map-backed mutator with optional per-param failures.
type memMutator struct {
	values map[string]string
	fail   map[string]error
}

func newMemMutator() *memMutator {
	return &memMutator{values: make(map[string]string), fail: make(map[string]error)}
}

func (m *memMutator) Apply(param, value string) (string, error) {
	if err := m.fail[param]; err != nil {
		return "", err
	}
	old := m.values[param]
	m.values[param] = value
	return old, nil
}

// memPruner records pruned parameters.
type memPruner struct {
	removed    []string
	removedAll bool
	err        error
}

func (p *memPruner) RemoveParams(params []string) error {
	if p.err != nil {
		return p.err
	}
	p.removed = append(p.removed, params...)
	return nil
}

func (p *memPruner) RemoveAll() error {
	if p.err != nil {
		return p.err
	}
	p.removedAll = true
	return nil
}

// memReloader records reload calls.
type memReloader struct {
	called bool
	err    error
}

func (r *memReloader) Reload(ctx context.Context) error {
	if r.err != nil {
		return r.err
	}
	r.called = true
	return nil
}

func TestUndoLast(t *testing.T) {
	l := testLedger(t)
	m := newMemMutator()
	m.values["vm.swappiness"] = "10"
	m.values["net.core.somaxconn"] = "65535"

	tx := testTx("tx-undo",
		types.ParamChange{Param: "vm.swappiness", Old: "60", New: "10"},
		types.ParamChange{Param: "net.core.somaxconn", Old: "4096", New: "65535"},
	)
	if err := l.Append(tx); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	report, err := l.UndoLast(m)
	if err != nil {
		t.Fatalf("UndoLast() error = %v", err)
	}

	if !report.Reverted {
		t.Error("Reverted = false, want true")
	}
	if len(report.Restored) != 2 || len(report.Failed) != 0 {
		t.Fatalf("Restored/Failed = %d/%d, want 2/0", len(report.Restored), len(report.Failed))
	}

	// Inverse writes in reverse change order.
	if report.Restored[0].Param != "net.core.somaxconn" {
		t.Errorf("first restore = %q, want net.core.somaxconn", report.Restored[0].Param)
	}
	if m.values["vm.swappiness"] != "60" {
		t.Errorf("vm.swappiness = %q after undo, want 60", m.values["vm.swappiness"])
	}
	if m.values["net.core.somaxconn"] != "4096" {
		t.Errorf("net.core.somaxconn = %q after undo, want 4096", m.values["net.core.somaxconn"])
	}

	// The transaction stays in history, marked reverted.
	stored, err := l.Get("tx-undo")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !stored.Reverted {
		t.Error("stored transaction not marked reverted")
	}

	t.Run("nothing left to undo", func(t *testing.T) {
		if _, err := l.UndoLast(m); !errors.Is(err, ErrNothingToUndo) {
			t.Errorf("UndoLast() error = %v, want ErrNothingToUndo", err)
		}
	})
}

func TestUndoLastSkipsReverted(t *testing.T) {
	l := testLedger(t)
	m := newMemMutator()

	if err := l.Append(testTx("tx-old", types.ParamChange{Param: "vm.swappiness", Old: "60", New: "10"})); err != nil {
		t.Fatal(err)
	}
	if err := l.Append(testTx("tx-new", types.ParamChange{Param: "vm.dirty_ratio", Old: "20", New: "5"})); err != nil {
		t.Fatal(err)
	}

	if _, err := l.UndoByID("tx-new", m); err != nil {
		t.Fatalf("UndoByID() error = %v", err)
	}

	report, err := l.UndoLast(m)
	if err != nil {
		t.Fatalf("UndoLast() error = %v", err)
	}
	if report.TransactionID != "tx-old" {
		t.Errorf("UndoLast() undid %q, want tx-old", report.TransactionID)
	}
}

func TestUndoSkipsCommandChanges(t *testing.T) {
	l := testLedger(t)
	m := newMemMutator()
	// A command change has no parameter behind it; any attempt to write
	// one back must not happen.
	m.fail["fstrim.timer"] = errors.New("no such parameter")

	if err := l.Append(testTx("tx-old", types.ParamChange{Param: "vm.swappiness", Old: "60", New: "10"})); err != nil {
		t.Fatal(err)
	}
	tx := testTx("tx-new",
		types.ParamChange{Param: "vm.dirty_ratio", Old: "20", New: "5"},
		types.ParamChange{Param: "fstrim.timer", Old: "disabled", New: "enabled", Command: true},
	)
	if err := l.Append(tx); err != nil {
		t.Fatal(err)
	}

	report, err := l.UndoLast(m)
	if err != nil {
		t.Fatalf("UndoLast() error = %v", err)
	}
	if report.TransactionID != "tx-new" {
		t.Fatalf("UndoLast() undid %q, want tx-new", report.TransactionID)
	}
	if !report.Reverted {
		t.Error("Reverted = false, want true despite the command change")
	}
	if len(report.Restored) != 1 || report.Restored[0].Param != "vm.dirty_ratio" {
		t.Errorf("Restored = %v, want only vm.dirty_ratio", report.Restored)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Param != "fstrim.timer" {
		t.Errorf("Skipped = %v, want fstrim.timer", report.Skipped)
	}
	if len(report.Failed) != 0 {
		t.Errorf("Failed = %v, want none", report.Failed)
	}
	if _, wrote := m.values["fstrim.timer"]; wrote {
		t.Error("undo wrote the command change back through the mutator")
	}

	// Older transactions stay reachable behind the command-carrying one.
	report, err = l.UndoLast(m)
	if err != nil {
		t.Fatalf("second UndoLast() error = %v", err)
	}
	if report.TransactionID != "tx-old" {
		t.Errorf("second UndoLast() undid %q, want tx-old", report.TransactionID)
	}
}

func TestUndoByID(t *testing.T) {
	l := testLedger(t)
	m := newMemMutator()
	if err := l.Append(testTx("tx-byid")); err != nil {
		t.Fatal(err)
	}

	t.Run("unknown id", func(t *testing.T) {
		if _, err := l.UndoByID("missing", m); !errors.Is(err, ErrNotFound) {
			t.Errorf("UndoByID(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("undo and repeat", func(t *testing.T) {
		if _, err := l.UndoByID("tx-byid", m); err != nil {
			t.Fatalf("UndoByID() error = %v", err)
		}
		if _, err := l.UndoByID("tx-byid", m); !errors.Is(err, ErrAlreadyReverted) {
			t.Errorf("second UndoByID() error = %v, want ErrAlreadyReverted", err)
		}
	})
}

func TestUndoPartialFailureKeepsTransactionActive(t *testing.T) {
	l := testLedger(t)
	m := newMemMutator()
	m.fail["vm.swappiness"] = errors.New("permission denied")

	tx := testTx("tx-partial",
		types.ParamChange{Param: "vm.swappiness", Old: "60", New: "10"},
		types.ParamChange{Param: "vm.dirty_ratio", Old: "20", New: "5"},
	)
	if err := l.Append(tx); err != nil {
		t.Fatal(err)
	}

	report, err := l.UndoLast(m)
	if err != nil {
		t.Fatalf("UndoLast() error = %v", err)
	}

	if report.Reverted {
		t.Error("Reverted = true despite a failed restore")
	}
	if len(report.Restored) != 1 || len(report.Failed) != 1 {
		t.Fatalf("Restored/Failed = %d/%d, want 1/1", len(report.Restored), len(report.Failed))
	}
	if report.Failed[0].Param != "vm.swappiness" {
		t.Errorf("failed param = %q, want vm.swappiness", report.Failed[0].Param)
	}

	// Still undoable once the failure is cleared.
	stored, _ := l.Get("tx-partial")
	if stored.Reverted {
		t.Fatal("partially undone transaction marked reverted")
	}
	delete(m.fail, "vm.swappiness")
	report, err = l.UndoLast(m)
	if err != nil {
		t.Fatalf("retry UndoLast() error = %v", err)
	}
	if !report.Reverted {
		t.Error("retry did not fully revert")
	}
}

func TestUndoPrunesPersistedParams(t *testing.T) {
	pruner := &memPruner{}
	l := testLedger(t, WithPruner(pruner))
	m := newMemMutator()

	tx := testTx("tx-prune",
		types.ParamChange{Param: "vm.swappiness", Old: "60", New: "10"},
	)
	if err := l.Append(tx); err != nil {
		t.Fatal(err)
	}
	if _, err := l.UndoLast(m); err != nil {
		t.Fatal(err)
	}

	if len(pruner.removed) != 1 || pruner.removed[0] != "vm.swappiness" {
		t.Errorf("pruned params = %v, want [vm.swappiness]", pruner.removed)
	}
}

func TestReset(t *testing.T) {
	pruner := &memPruner{}
	reloader := &memReloader{}
	l := testLedger(t, WithPruner(pruner), WithReloader(reloader))
	m := newMemMutator()

	for i := 0; i < 3; i++ {
		tx := testTx(fmt.Sprintf("tx-%d", i),
			types.ParamChange{Param: fmt.Sprintf("vm.param_%d", i), Old: "old", New: "new"},
		)
		if err := l.Append(tx); err != nil {
			t.Fatal(err)
		}
	}

	// One transaction resists reverting.
	m.fail["vm.param_1"] = errors.New("permission denied")

	report, err := l.Reset(context.Background(), m)
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if len(report.Outcomes) != 3 {
		t.Fatalf("Outcomes = %d, want 3", len(report.Outcomes))
	}

	// Newest first, continuing through the failure.
	wantStatus := map[string]string{"tx-2": "reverted", "tx-1": "partial", "tx-0": "reverted"}
	for i, wantID := range []string{"tx-2", "tx-1", "tx-0"} {
		o := report.Outcomes[i]
		if o.TransactionID != wantID {
			t.Errorf("Outcomes[%d].TransactionID = %q, want %q", i, o.TransactionID, wantID)
		}
		if o.Status != wantStatus[wantID] {
			t.Errorf("Outcomes[%d].Status = %q, want %q", i, o.Status, wantStatus[wantID])
		}
	}

	if !report.ArtifactsRemoved || !pruner.removedAll {
		t.Error("persisted artifacts were not removed")
	}
	if !report.Reloaded || !reloader.called {
		t.Error("reload signal was not sent")
	}

	t.Run("reverted transactions stay skipped", func(t *testing.T) {
		report, err := l.Reset(context.Background(), m)
		if err != nil {
			t.Fatalf("Reset() error = %v", err)
		}
		if len(report.Outcomes) != 1 {
			t.Fatalf("Outcomes = %d on second reset, want only the partial leftover", len(report.Outcomes))
		}
		if report.Outcomes[0].TransactionID != "tx-1" {
			t.Errorf("leftover = %q, want tx-1", report.Outcomes[0].TransactionID)
		}
	})
}

func TestResetFailureTolerance(t *testing.T) {
	pruner := &memPruner{err: errors.New("read-only filesystem")}
	reloader := &memReloader{err: errors.New("sysctl missing")}
	l := testLedger(t, WithPruner(pruner), WithReloader(reloader))

	report, err := l.Reset(context.Background(), newMemMutator())
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if report.ArtifactsRemoved {
		t.Error("ArtifactsRemoved = true despite pruner failure")
	}
	if report.Reloaded {
		t.Error("Reloaded = true despite reloader failure")
	}
}
