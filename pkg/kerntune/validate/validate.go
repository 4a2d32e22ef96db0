// Package validate gates proposals before they reach the system mutator.
// It rejects parameter names and values that could be used for command
// injection, and confines persisted file paths to an allowed root. The
// validator fails closed: a violation discards only the offending proposal.
package validate

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kerntune/kerntune/pkg/kerntune/types"
)

// Limits on validated inputs.
const (
	maxParamLen = 128
	maxValueLen = 256
)

// ErrValidation is the sentinel for all validation failures. Use
// errors.Is(err, ErrValidation) to classify.
var ErrValidation = errors.New("validation failed")

// Error describes why a proposal was rejected.
type Error struct {
	// Param is the parameter the rejected proposal targeted.
	Param string

	// Field names the offending field ("param", "value", or "path").
	Field string

	// Reason is a human-readable explanation.
	Reason string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s for %q: %s", e.Field, e.Param, e.Reason)
}

// Unwrap ties every Error to the ErrValidation sentinel.
func (e *Error) Unwrap() error {
	return ErrValidation
}

// paramPattern is the allow-list shape for parameter names: dot-separated
// lowercase tokens of alphanumerics and underscores. Anything else (shell
// metacharacters, path separators, whitespace) is rejected.
var paramPattern = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)*$`)

// dangerousValueChars are shell metacharacters screened out of values on
// command-carrying proposals.
var dangerousValueChars = []string{";", "|", "&", "`", "$(", "\n", "\r", ">", "<"}

// Param validates a parameter name.
func Param(param string) error {
	if param == "" {
		return &Error{Param: param, Field: "param", Reason: "empty parameter name"}
	}
	if len(param) > maxParamLen {
		return &Error{Param: param, Field: "param", Reason: fmt.Sprintf("longer than %d characters", maxParamLen)}
	}
	if !paramPattern.MatchString(param) {
		return &Error{Param: param, Field: "param",
			Reason: "must be dot-separated lowercase tokens of letters, digits, and underscores"}
	}
	return nil
}

// Value validates a proposed value for a command-carrying proposal, where
// the value could end up interpolated into an executable. Plain parameter
// writes go through the file-backed mutator and need no screening beyond
// length.
func Value(value string) error {
	if len(value) > maxValueLen {
		return &Error{Field: "value", Reason: fmt.Sprintf("longer than %d characters", maxValueLen)}
	}
	for _, c := range dangerousValueChars {
		if strings.Contains(value, c) {
			return &Error{Field: "value", Reason: fmt.Sprintf("contains shell metacharacter %q", c)}
		}
	}
	return nil
}

// Path validates that a persisted file path resolves under root, with no
// traversal outside it.
func Path(path, root string) error {
	if path == "" {
		return &Error{Field: "path", Reason: "empty path"}
	}
	if strings.Contains(path, "\x00") {
		return &Error{Field: "path", Reason: "contains null byte"}
	}
	if !filepath.IsAbs(path) {
		return &Error{Field: "path", Reason: "must be absolute"}
	}

	resolved := filepath.Clean(path)
	cleanRoot := filepath.Clean(root)
	if resolved != cleanRoot && !strings.HasPrefix(resolved, cleanRoot+string(filepath.Separator)) {
		return &Error{Field: "path", Reason: fmt.Sprintf("outside allowed root %s", cleanRoot)}
	}
	return nil
}

// Proposal validates one proposal end to end: the parameter name always,
// and the proposed value whenever the proposal carries an executable
// command rather than a plain parameter write.
func Proposal(p types.Proposal) error {
	if err := Param(p.Param); err != nil {
		return err
	}
	if p.Command != "" {
		if err := Value(p.Proposed); err != nil {
			verr := err.(*Error)
			verr.Param = p.Param
			return verr
		}
	}
	return nil
}
