package pipeline

import (
	"context"

	"github.com/kerntune/kerntune/pkg/kerntune/engine"
	"github.com/kerntune/kerntune/pkg/kerntune/ledger"
)

// SysctlReloader signals the kernel to reload sysctl defaults after a
// reset, by running sysctl --system like the distribution boot path does.
type SysctlReloader struct{}

// Reload runs the system-wide sysctl reload.
func (SysctlReloader) Reload(ctx context.Context) error {
	return engine.ExecRunner{}.Run(ctx, "sysctl --system")
}

// Ensure SysctlReloader implements ledger.Reloader.
var _ ledger.Reloader = SysctlReloader{}
