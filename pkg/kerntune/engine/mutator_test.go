package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSysTree builds a proc-sys and sysfs tree under a temp dir.
func fakeSysTree(t *testing.T) (procSys, sys string) {
	t.Helper()
	root := t.TempDir()
	procSys = filepath.Join(root, "proc", "sys")
	sys = filepath.Join(root, "sys")

	require.NoError(t, os.MkdirAll(filepath.Join(procSys, "vm"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(sys, "block", "sda", "queue"), 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(procSys, "vm", "swappiness"), []byte("60\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sys, "block", "sda", "queue", "scheduler"),
		[]byte("mq-deadline kyber [bfq] none\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sys, "block", "sda", "queue", "read_ahead_kb"),
		[]byte("128\n"), 0o644))

	return procSys, sys
}

func TestFileMutatorCurrent(t *testing.T) {
	procSys, sys := fakeSysTree(t)
	m := NewFileMutator(procSys, sys)

	t.Run("sysctl parameter", func(t *testing.T) {
		got, err := m.Current("vm.swappiness")
		require.NoError(t, err)
		assert.Equal(t, "60", got)
	})

	t.Run("bracketed scheduler value", func(t *testing.T) {
		got, err := m.Current("block.sda.queue.scheduler")
		require.NoError(t, err)
		assert.Equal(t, "bfq", got)
	})

	t.Run("plain block knob", func(t *testing.T) {
		got, err := m.Current("block.sda.queue.read_ahead_kb")
		require.NoError(t, err)
		assert.Equal(t, "128", got)
	})

	t.Run("missing parameter", func(t *testing.T) {
		_, err := m.Current("vm.nonexistent")
		assert.Error(t, err)
	})

	t.Run("malformed block parameter", func(t *testing.T) {
		_, err := m.Current("block.sda.scheduler")
		assert.Error(t, err)
	})
}

func TestFileMutatorApply(t *testing.T) {
	procSys, sys := fakeSysTree(t)
	m := NewFileMutator(procSys, sys)

	t.Run("sysctl write returns previous value", func(t *testing.T) {
		old, err := m.Apply("vm.swappiness", "10")
		require.NoError(t, err)
		assert.Equal(t, "60", old)

		data, err := os.ReadFile(filepath.Join(procSys, "vm", "swappiness"))
		require.NoError(t, err)
		assert.Equal(t, "10", string(data))
	})

	t.Run("scheduler write returns active option", func(t *testing.T) {
		old, err := m.Apply("block.sda.queue.scheduler", "none")
		require.NoError(t, err)
		assert.Equal(t, "bfq", old)
	})

	t.Run("missing parameter is not created", func(t *testing.T) {
		_, err := m.Apply("vm.nonexistent", "1")
		assert.Error(t, err)
		_, statErr := os.Stat(filepath.Join(procSys, "vm", "nonexistent"))
		assert.True(t, os.IsNotExist(statErr))
	})
}
