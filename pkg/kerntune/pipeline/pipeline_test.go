package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerntune/kerntune/pkg/kerntune/ledger"
	"github.com/kerntune/kerntune/pkg/kerntune/rules"
	"github.com/kerntune/kerntune/pkg/kerntune/snapshot"
	"github.com/kerntune/kerntune/pkg/kerntune/types"
)

// mapMutator is a map-backed mutator standing in for the live kernel.
type mapMutator struct {
	values map[string]string
}

func (m *mapMutator) Current(param string) (string, error) {
	v, ok := m.values[param]
	if !ok {
		return "", fmt.Errorf("no such parameter: %s", param)
	}
	return v, nil
}

func (m *mapMutator) Apply(param, value string) (string, error) {
	old := m.values[param]
	m.values[param] = value
	return old, nil
}

// gamingDesktop is an NVMe desktop with stock kernel defaults, the
// canonical machine the gamer persona targets.
func gamingDesktop() snapshot.Snapshot {
	return snapshot.Snapshot{
		Disk:      snapshot.DiskNVMe,
		MemTotal:  16 * types.GiB,
		Governor:  "performance",
		Chassis:   snapshot.ChassisDesktop,
		CPUVendor: "Intel",
		Features:  map[string]bool{},
		Sysctl: map[string]string{
			"vm.swappiness":    "60",
			"vm.max_map_count": "65530",
		},
		Kernel: "6.12.4-200.fc41.x86_64",
	}
}

func testPipeline(t *testing.T, snap snapshot.Snapshot, m *mapMutator) *Pipeline {
	t.Helper()
	led, err := ledger.New(filepath.Join(t.TempDir(), "transactions.json"))
	require.NoError(t, err)
	return New(snap, rules.DefaultRegistry(), led, m)
}

func TestPipelineAnalyzeApplyUndo(t *testing.T) {
	snap := gamingDesktop()
	m := &mapMutator{values: map[string]string{
		"vm.swappiness":    "60",
		"vm.max_map_count": "65530",
	}}
	p := testPipeline(t, snap, m)

	set := p.Analyze(types.PersonaGamer)
	require.NotZero(t, set.Len(), "analysis of a stock system must propose something")

	swappiness, ok := set.Get("vm.swappiness")
	require.True(t, ok, "NVMe desktop should get a swappiness proposal")
	assert.Equal(t, "5", swappiness.Proposed)

	mapCount, ok := set.Get("vm.max_map_count")
	require.True(t, ok, "gamer persona should raise vm.max_map_count")
	assert.Equal(t, "2147483642", mapCount.Proposed)
	assert.Equal(t, types.PriorityCritical, mapCount.Priority)

	// Apply just the two sysctl proposals, as a user confirming a
	// filtered selection would.
	batch := types.NewProposalSet()
	batch.AddAll([]types.Proposal{swappiness, mapCount})

	report, err := p.Apply(context.Background(), batch, "gamer tuning")
	require.NoError(t, err)
	require.NotNil(t, report.Transaction)

	applied, failed, rejected, skipped := report.Counts()
	assert.Equal(t, 2, applied)
	assert.Zero(t, failed+rejected+skipped)

	assert.Equal(t, "5", m.values["vm.swappiness"])
	assert.Equal(t, "2147483642", m.values["vm.max_map_count"])

	history, err := p.History(0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, report.Transaction.ID, history[0].ID)
	assert.Len(t, history[0].Changes, 2)

	undo, err := p.UndoLast()
	require.NoError(t, err)
	assert.Equal(t, report.Transaction.ID, undo.TransactionID)
	assert.Len(t, undo.Restored, 2)
	assert.Empty(t, undo.Failed)

	assert.Equal(t, "60", m.values["vm.swappiness"])
	assert.Equal(t, "65530", m.values["vm.max_map_count"])

	history, err = p.History(0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Reverted, "undone transaction stays in history flagged reverted")
}

func TestPipelineApplyIsIdempotent(t *testing.T) {
	snap := gamingDesktop()
	m := &mapMutator{values: map[string]string{
		"vm.swappiness":    "60",
		"vm.max_map_count": "65530",
	}}
	p := testPipeline(t, snap, m)

	set := p.Analyze(types.PersonaGamer)
	swappiness, ok := set.Get("vm.swappiness")
	require.True(t, ok)

	batch := types.NewProposalSet()
	batch.AddAll([]types.Proposal{swappiness})

	_, err := p.Apply(context.Background(), batch, "first pass")
	require.NoError(t, err)
	require.Equal(t, "5", m.values["vm.swappiness"])

	// The value already matches; a second apply has nothing to do and
	// must not record a transaction.
	report, err := p.Apply(context.Background(), batch, "second pass")
	require.NoError(t, err)
	assert.Nil(t, report.Transaction)

	_, _, _, skipped := report.Counts()
	assert.Equal(t, 1, skipped)

	history, err := p.History(0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestPipelineUndoByID(t *testing.T) {
	snap := gamingDesktop()
	m := &mapMutator{values: map[string]string{
		"vm.swappiness":    "60",
		"vm.max_map_count": "65530",
	}}
	p := testPipeline(t, snap, m)

	set := p.Analyze(types.PersonaGamer)
	swappiness, _ := set.Get("vm.swappiness")
	batch := types.NewProposalSet()
	batch.AddAll([]types.Proposal{swappiness})

	report, err := p.Apply(context.Background(), batch, "gamer tuning")
	require.NoError(t, err)

	undo, err := p.UndoByID(report.Transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Transaction.ID, undo.TransactionID)
	assert.Equal(t, "60", m.values["vm.swappiness"])
}
