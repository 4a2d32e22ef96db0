package engine

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// commandTimeout is the maximum time to wait for an external command.
const commandTimeout = 30 * time.Second

// ErrEmptyCommand indicates a command proposal with a blank command.
var ErrEmptyCommand = errors.New("empty command")

// ExecRunner executes proposal commands directly, without a shell, so no
// metacharacter in a command line can ever be interpreted. The command is
// split on whitespace; commands needing shell features are not supported.
type ExecRunner struct{}

// Run executes the command and waits for it to finish.
func (ExecRunner) Run(ctx context.Context, command string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ErrEmptyCommand
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", fields[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Ensure ExecRunner implements Runner.
var _ Runner = ExecRunner{}
