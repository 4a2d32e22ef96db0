// Package types provides core data types for the kerntune optimizer.
// It includes structures for tuning proposals, applied-change transactions,
// and the closed category/priority/persona enumerations, along with utility
// functions for parsing and formatting memory sizes.
package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// Category classifies what subsystem a proposal tunes.
type Category string

// Valid proposal categories.
const (
	CategoryCPU     Category = "cpu"
	CategoryMemory  Category = "memory"
	CategoryNetwork Category = "network"
	CategoryDisk    Category = "disk"
	CategoryGaming  Category = "gaming"
	CategoryPower   Category = "power"
	CategoryKernel  Category = "kernel"
)

// ErrInvalidCategory indicates an unknown category string.
var ErrInvalidCategory = errors.New("invalid category")

// ParseCategory parses a string into a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(s)) {
	case CategoryCPU, CategoryMemory, CategoryNetwork, CategoryDisk,
		CategoryGaming, CategoryPower, CategoryKernel:
		return Category(strings.ToLower(s)), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
}

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

// Priority ranks how strongly a proposal is advised.
type Priority string

// Valid proposal priorities, from strongest to weakest.
const (
	PriorityCritical    Priority = "critical"
	PriorityRecommended Priority = "recommended"
	PriorityOptional    Priority = "optional"
)

// ErrInvalidPriority indicates an unknown priority string.
var ErrInvalidPriority = errors.New("invalid priority")

// ParsePriority parses a string into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToLower(s)) {
	case PriorityCritical, PriorityRecommended, PriorityOptional:
		return Priority(strings.ToLower(s)), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
}

// Valid reports whether the priority is one of the known values.
func (p Priority) Valid() bool {
	_, err := ParsePriority(string(p))
	return err == nil
}

// Rank returns the precedence of the priority; lower ranks win.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityRecommended:
		return 1
	case PriorityOptional:
		return 2
	default:
		return 3
	}
}

// StrongerThan reports whether p takes precedence over other when two
// proposals target the same parameter.
func (p Priority) StrongerThan(other Priority) bool {
	return p.Rank() < other.Rank()
}

// Persona is a workload profile biasing rule selection.
type Persona string

// Known personas.
const (
	PersonaGamer     Persona = "gamer"
	PersonaDeveloper Persona = "developer"
	PersonaServer    Persona = "server"
	PersonaGeneral   Persona = "general"
)

// ErrInvalidPersona indicates an unknown persona string.
var ErrInvalidPersona = errors.New("invalid persona")

// ParsePersona parses a string into a Persona. An empty string maps to
// PersonaGeneral.
func ParsePersona(s string) (Persona, error) {
	switch Persona(strings.ToLower(s)) {
	case PersonaGamer, PersonaDeveloper, PersonaServer, PersonaGeneral:
		return Persona(strings.ToLower(s)), nil
	case "":
		return PersonaGeneral, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPersona, s)
	}
}

// Proposal is a single suggested parameter change with its rationale.
// Proposals are transient values owned by the calling workflow; they are
// never retained past one analyze/apply cycle.
type Proposal struct {
	// Param is the parameter name (e.g., "vm.swappiness").
	Param string `json:"param"`

	// Current is the value observed at analysis time. It may be stale by
	// the time the proposal is applied; the engine re-reads the live value.
	Current string `json:"current"`

	// Proposed is the suggested new value.
	Proposed string `json:"proposed"`

	// Reason explains why the change is advised.
	Reason string `json:"reason"`

	// Category classifies the tuned subsystem.
	Category Category `json:"category"`

	// Priority ranks how strongly the change is advised.
	Priority Priority `json:"priority"`

	// Command, when set, is an executable applied instead of a parameter
	// write (e.g., enabling a systemd timer).
	Command string `json:"command,omitempty"`

	// Force allows a proposal whose proposed value equals the current one
	// to pass no-op filtering.
	Force bool `json:"force,omitempty"`
}

// NoOp reports whether the proposal would not change anything and carries
// no force flag. No-op proposals are filtered before they reach the apply
// engine.
func (p Proposal) NoOp() bool {
	return p.Proposed == p.Current && !p.Force
}

// ParamChange records one applied change. Old is captured at apply time
// from the live system, not from the value seen at analysis time.
type ParamChange struct {
	// Param is the parameter name.
	Param string `json:"param"`

	// Old is the pre-image read immediately before the write.
	Old string `json:"old"`

	// New is the value that was written.
	New string `json:"new"`

	// Command is true when the change was made by running a command
	// rather than writing a parameter. Command changes have no inverse
	// write and are skipped by undo.
	Command bool `json:"command,omitempty"`
}

// Transaction is an atomic, recorded group of applied parameter changes,
// undoable as a unit. A transaction is created only when at least one
// proposal in a batch succeeds, and is immutable once appended to the
// ledger except for the Reverted flag.
type Transaction struct {
	// ID uniquely identifies the transaction.
	ID string `json:"id"`

	// Timestamp is when the transaction was applied.
	Timestamp time.Time `json:"timestamp"`

	// Description is a human-readable summary of the batch.
	Description string `json:"description"`

	// Changes is the non-empty ordered sequence of applied changes.
	Changes []ParamChange `json:"changes"`

	// Reverted is set once every change has been undone.
	Reverted bool `json:"reverted"`
}

// Summary returns a one-line description of the transaction suitable for
// history listings.
func (t Transaction) Summary() string {
	return fmt.Sprintf("%s  %s  %d change(s)%s",
		t.ID, t.Timestamp.Format(time.RFC3339), len(t.Changes), revertedSuffix(t.Reverted))
}

func revertedSuffix(reverted bool) string {
	if reverted {
		return "  (reverted)"
	}
	return ""
}

// sizePattern matches size strings like "16GB", "512M", "1.5GiB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in
// bytes. It supports plain bytes ("1024"), and K/M/G/T suffixes with
// optional "B"/"iB" ("16GB", "512MiB"). Decimal values are truncated to
// the nearest byte.
//
// Returns ErrInvalidSize if the format is not recognized.
// Returns ErrNegativeSize if the value is negative.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
