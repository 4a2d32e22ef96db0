package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// FileMutator writes kernel parameters through the /proc/sys and /sys
// filesystems. Dot-separated sysctl names map onto /proc/sys paths;
// parameters of the form block.<dev>.queue.<knob> map onto the block
// device's sysfs queue directory. Roots are parameterized for tests.
type FileMutator struct {
	procSysRoot string
	sysRoot     string
}

// NewFileMutator returns a mutator rooted at the given proc-sys and sysfs
// trees. Production callers use NewDefaultMutator.
func NewFileMutator(procSysRoot, sysRoot string) *FileMutator {
	return &FileMutator{procSysRoot: procSysRoot, sysRoot: sysRoot}
}

// NewDefaultMutator returns a mutator writing through the live kernel
// interfaces.
func NewDefaultMutator() *FileMutator {
	return NewFileMutator("/proc/sys", "/sys")
}

// blockParamPattern matches block.<dev>.queue.<knob> parameters.
var blockParamPattern = regexp.MustCompile(`^block\.([a-z0-9_]+)\.queue\.([a-z0-9_]+)$`)

// resolve maps a parameter name to its backing file.
func (m *FileMutator) resolve(param string) (string, error) {
	if match := blockParamPattern.FindStringSubmatch(param); match != nil {
		return filepath.Join(m.sysRoot, "block", match[1], "queue", match[2]), nil
	}
	if strings.HasPrefix(param, "block.") {
		return "", fmt.Errorf("unresolvable block parameter %q", param)
	}
	return filepath.Join(m.procSysRoot, strings.ReplaceAll(param, ".", "/")), nil
}

// activeSchedPattern extracts the bracketed active option from sysfs
// multi-option files such as "[mq-deadline] none".
var activeSchedPattern = regexp.MustCompile(`\[(\S+)\]`)

// Current reads the live value of a parameter.
func (m *FileMutator) Current(param string) (string, error) {
	path, err := m.resolve(param)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", param, err)
	}
	value := strings.TrimSpace(string(data))
	if match := activeSchedPattern.FindStringSubmatch(value); match != nil {
		value = match[1]
	}
	return value, nil
}

// Apply writes a value and returns the previous one.
func (m *FileMutator) Apply(param, value string) (string, error) {
	old, err := m.Current(param)
	if err != nil {
		return "", err
	}
	path, err := m.resolve(param)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", param, err)
	}
	return old, nil
}

// Ensure FileMutator implements Mutator.
var _ Mutator = (*FileMutator)(nil)
