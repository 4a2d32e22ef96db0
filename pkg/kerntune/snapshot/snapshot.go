// Package snapshot provides the immutable hardware/workload record that
// rule providers consume. A snapshot is produced once per analysis call,
// passed by value through the pipeline, and discarded afterwards; it is
// never persisted.
package snapshot

import (
	"github.com/kerntune/kerntune/pkg/kerntune/types"
)

// DiskCategory classifies the primary storage device.
type DiskCategory string

// Known disk categories.
const (
	DiskNVMe    DiskCategory = "nvme"
	DiskSSD     DiskCategory = "ssd"
	DiskHDD     DiskCategory = "hdd"
	DiskUnknown DiskCategory = "unknown"
)

// Chassis classifies the machine's form factor.
type Chassis string

// Known chassis types.
const (
	ChassisDesktop Chassis = "desktop"
	ChassisLaptop  Chassis = "laptop"
	ChassisServer  Chassis = "server"
	ChassisVM      Chassis = "vm"
)

// BlockDevice describes one block device relevant to I/O scheduling.
type BlockDevice struct {
	// Name is the kernel device name (e.g., "nvme0n1").
	Name string

	// Category is the device's disk category.
	Category DiskCategory

	// Scheduler is the currently active I/O scheduler.
	Scheduler string

	// ReadAheadKB is the current read-ahead size in KiB.
	ReadAheadKB int
}

// Snapshot is an immutable record of hardware and workload facts used as
// rule input. Rule providers read its fields and the live parameter values
// it carries, and must never mutate it.
type Snapshot struct {
	// Disk is the category of the primary storage device.
	Disk DiskCategory

	// MemTotal is total physical RAM in bytes.
	MemTotal int64

	// Governor is the active CPU frequency governor (e.g., "powersave").
	Governor string

	// Chassis is the machine form factor.
	Chassis Chassis

	// CPUVendor is the CPU vendor string ("Intel", "AMD", or "Unknown").
	CPUVendor string

	// HybridCPU indicates a hybrid-core (P/E) processor.
	HybridCPU bool

	// Workloads are detected workload tags (e.g., "gaming", "containers").
	Workloads []string

	// Features maps kernel feature flags (e.g., "fstrim", "zram", "bbr")
	// to their availability.
	Features map[string]bool

	// Sysctl holds live kernel parameter values captured when the snapshot
	// was taken. Values may be stale by apply time; the engine re-reads
	// them before writing.
	Sysctl map[string]string

	// BlockDevices lists block devices for scheduler tuning.
	BlockDevices []BlockDevice

	// Kernel is the running kernel release string.
	Kernel string
}

// Value returns the live value for param, or fallback when the snapshot
// has no reading for it.
func (s Snapshot) Value(param, fallback string) string {
	if v, ok := s.Sysctl[param]; ok && v != "" {
		return v
	}
	return fallback
}

// HasFeature reports whether a kernel feature flag is present and set.
func (s Snapshot) HasFeature(name string) bool {
	return s.Features[name]
}

// HasWorkload reports whether a workload tag was detected.
func (s Snapshot) HasWorkload(tag string) bool {
	for _, w := range s.Workloads {
		if w == tag {
			return true
		}
	}
	return false
}

// MemHuman returns the total RAM formatted as a human-readable string.
func (s Snapshot) MemHuman() string {
	return types.FormatSize(s.MemTotal)
}
