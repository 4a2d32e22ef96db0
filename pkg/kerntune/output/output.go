// Package output provides formatters for displaying kerntune proposals,
// apply reports, undo reports, and transaction history in various output
// formats (pretty, tsv, json, yaml).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, doc); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"
)

// SystemInfo summarizes the analyzed machine for report headers.
type SystemInfo struct {
	// Disk is the primary storage category.
	Disk string `json:"disk" yaml:"disk"`

	// Memory is the human-readable total RAM.
	Memory string `json:"memory" yaml:"memory"`

	// Chassis is the machine form factor.
	Chassis string `json:"chassis" yaml:"chassis"`

	// Governor is the active CPU frequency governor.
	Governor string `json:"governor,omitempty" yaml:"governor,omitempty"`

	// Kernel is the running kernel release.
	Kernel string `json:"kernel,omitempty" yaml:"kernel,omitempty"`
}

// ProposalRow is one proposal prepared for display.
type ProposalRow struct {
	Param    string `json:"param" yaml:"param"`
	Current  string `json:"current" yaml:"current"`
	Proposed string `json:"proposed" yaml:"proposed"`
	Reason   string `json:"reason" yaml:"reason"`
	Category string `json:"category" yaml:"category"`
	Priority string `json:"priority" yaml:"priority"`
	Command  string `json:"command,omitempty" yaml:"command,omitempty"`
}

// ApplyRow is one per-proposal apply outcome prepared for display.
type ApplyRow struct {
	Param    string `json:"param" yaml:"param"`
	Proposed string `json:"proposed" yaml:"proposed"`
	Status   string `json:"status" yaml:"status"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ApplyView is the apply report prepared for display.
type ApplyView struct {
	Results       []ApplyRow `json:"results" yaml:"results"`
	TransactionID string     `json:"transaction_id,omitempty" yaml:"transaction_id,omitempty"`
	Applied       int        `json:"applied" yaml:"applied"`
	Failed        int        `json:"failed" yaml:"failed"`
	Rejected      int        `json:"rejected" yaml:"rejected"`
	Skipped       int        `json:"skipped" yaml:"skipped"`
}

// ChangeRow is one restored or recorded change prepared for display.
type ChangeRow struct {
	Param string `json:"param" yaml:"param"`
	Old   string `json:"old" yaml:"old"`
	New   string `json:"new" yaml:"new"`
}

// UndoView is an undo report prepared for display.
type UndoView struct {
	TransactionID string      `json:"transaction_id" yaml:"transaction_id"`
	Description   string      `json:"description" yaml:"description"`
	Restored      []ChangeRow `json:"restored" yaml:"restored"`
	Skipped       []ChangeRow `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Failed        []ApplyRow  `json:"failed,omitempty" yaml:"failed,omitempty"`
	Reverted      bool        `json:"reverted" yaml:"reverted"`
}

// OutcomeRow is one per-transaction reset outcome prepared for display.
type OutcomeRow struct {
	TransactionID string `json:"transaction_id" yaml:"transaction_id"`
	Status        string `json:"status" yaml:"status"`
	Error         string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ResetView is a reset report prepared for display.
type ResetView struct {
	Outcomes         []OutcomeRow `json:"outcomes" yaml:"outcomes"`
	ArtifactsRemoved bool         `json:"artifacts_removed" yaml:"artifacts_removed"`
	Reloaded         bool         `json:"reloaded" yaml:"reloaded"`
}

// HistoryRow is one ledger transaction prepared for display.
type HistoryRow struct {
	ID          string    `json:"id" yaml:"id"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	Description string    `json:"description" yaml:"description"`
	Changes     int       `json:"changes" yaml:"changes"`
	Reverted    bool      `json:"reverted" yaml:"reverted"`
}

// Document contains the complete output data for formatting. Sections
// are optional; formatters render whichever are present.
type Document struct {
	// Persona is the workload profile the analysis ran under.
	Persona string `json:"persona,omitempty" yaml:"persona,omitempty"`

	// System summarizes the analyzed machine.
	System *SystemInfo `json:"system,omitempty" yaml:"system,omitempty"`

	// Proposals lists the generated tuning proposals.
	Proposals []ProposalRow `json:"proposals,omitempty" yaml:"proposals,omitempty"`

	// Apply is the apply report, when a batch was applied.
	Apply *ApplyView `json:"apply,omitempty" yaml:"apply,omitempty"`

	// Undo is the undo report, when a transaction was undone.
	Undo *UndoView `json:"undo,omitempty" yaml:"undo,omitempty"`

	// Reset is the reset report, when a full reset ran.
	Reset *ResetView `json:"reset,omitempty" yaml:"reset,omitempty"`

	// History lists ledger transactions, newest first.
	History []HistoryRow `json:"history,omitempty" yaml:"history,omitempty"`
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, d *Document) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}
