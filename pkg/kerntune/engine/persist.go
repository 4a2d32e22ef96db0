package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kerntune/kerntune/pkg/kerntune/validate"
)

// ConfFileName is the sysctl.d drop-in owned by kerntune.
const ConfFileName = "99-kerntune.conf"

// confFilePrefix marks files under the config root that kerntune owns and
// may remove during reset.
const confFilePrefix = "99-kerntune"

// ConfFile persists applied sysctl parameters into a drop-in under the
// sysctl.d root so they survive reboot. Writes go through a temporary
// file and an atomic rename, with owner-only permissions.
type ConfFile struct {
	root string
	path string
}

// NewConfFile returns a ConfFile rooted at the given sysctl.d directory.
// The resolved drop-in path must lie under the root.
func NewConfFile(root string) (*ConfFile, error) {
	path := filepath.Join(root, ConfFileName)
	if err := validate.Path(path, root); err != nil {
		return nil, err
	}
	return &ConfFile{root: root, path: path}, nil
}

// Path returns the drop-in's absolute path.
func (c *ConfFile) Path() string {
	return c.path
}

// Persist appends entries that are not already present. Each entry gets a
// comment line with its reason.
func (c *ConfFile) Persist(entries []PersistEntry) error {
	existing, err := c.read()
	if err != nil {
		return err
	}

	var added []string
	for _, e := range entries {
		line := fmt.Sprintf("%s = %s", e.Param, e.Value)
		if containsLine(existing, line) {
			continue
		}
		if e.Reason != "" {
			added = append(added, "# "+e.Reason)
		}
		added = append(added, line)
	}
	if len(added) == 0 {
		return nil
	}

	var content strings.Builder
	content.WriteString(existing)
	if existing == "" {
		content.WriteString("# Generated by kerntune - " + time.Now().UTC().Format("2006-01-02 15:04") + "\n")
	}
	content.WriteString(strings.Join(added, "\n") + "\n")

	return c.write(content.String())
}

// RemoveParams rewrites the drop-in without the given parameters and their
// attached comment lines. Missing files are not an error.
func (c *ConfFile) RemoveParams(params []string) error {
	existing, err := c.read()
	if err != nil {
		return err
	}
	if existing == "" {
		return nil
	}

	drop := make(map[string]bool, len(params))
	for _, p := range params {
		drop[p] = true
	}

	var kept []string
	var pendingComment string
	for _, line := range strings.Split(existing, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			// Hold the comment back until we know its parameter survives.
			if pendingComment != "" {
				kept = append(kept, pendingComment)
			}
			pendingComment = line
			continue
		}
		param, _, found := strings.Cut(trimmed, "=")
		if found && drop[strings.TrimSpace(param)] {
			pendingComment = ""
			continue
		}
		if pendingComment != "" {
			kept = append(kept, pendingComment)
			pendingComment = ""
		}
		kept = append(kept, line)
	}
	if pendingComment != "" {
		kept = append(kept, pendingComment)
	}

	return c.write(strings.Join(kept, "\n"))
}

// RemoveAll deletes every kerntune-owned drop-in under the root.
func (c *ConfFile) RemoveAll() error {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config root: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), confFilePrefix) {
			continue
		}
		path := filepath.Join(c.root, entry.Name())
		if err := validate.Path(path, c.root); err != nil {
			continue
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	return nil
}

// read returns the drop-in's content, or "" when it does not exist.
func (c *ConfFile) read() (string, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", c.path, err)
	}
	return string(data), nil
}

// write replaces the drop-in atomically with owner-only permissions.
func (c *ConfFile) write(content string) error {
	if err := os.MkdirAll(c.root, 0o755); err != nil {
		return fmt.Errorf("creating config root: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// containsLine reports whether content already carries the exact
// "param = value" assignment, in either spacing style.
func containsLine(content, line string) bool {
	compact := strings.ReplaceAll(line, " ", "")
	for _, l := range strings.Split(content, "\n") {
		if strings.TrimSpace(l) == line || strings.ReplaceAll(strings.TrimSpace(l), " ", "") == compact {
			return true
		}
	}
	return false
}

// Ensure ConfFile implements Persister.
var _ Persister = (*ConfFile)(nil)
