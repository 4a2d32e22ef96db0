package rules

import (
	"fmt"
	"math"
	"strconv"

	"github.com/kerntune/kerntune/pkg/kerntune/snapshot"
	"github.com/kerntune/kerntune/pkg/kerntune/types"
)

// Bounds for the derived vm.min_free_kbytes value.
const (
	minFreeFloorKB   = 65536  // 64 MiB
	minFreeCeilingKB = 262144 // 256 MiB
)

// MemoryRules tunes virtual memory parameters around the storage class:
// fast flash storage wants less swapping and smaller dirty windows, while
// rotational disks keep the kernel defaults.
type MemoryRules struct{}

// Name identifies the provider.
func (MemoryRules) Name() string { return "memory" }

// swappinessFor maps a disk category to its advised swappiness.
func swappinessFor(disk snapshot.DiskCategory) (value, reason string) {
	switch disk {
	case snapshot.DiskNVMe:
		return "5", "NVMe storage detected; low swappiness keeps working sets in RAM instead of swapping to disk"
	case snapshot.DiskSSD:
		return "10", "SATA SSD detected; low swappiness reduces flash wear and improves responsiveness"
	default:
		return "60", "rotational or unknown storage; the kernel default swappiness is appropriate"
	}
}

// Analyze returns memory tuning proposals.
func (MemoryRules) Analyze(snap snapshot.Snapshot, persona types.Persona) []types.Proposal {
	var out []types.Proposal

	swp, swpReason := swappinessFor(snap.Disk)
	out = append(out, types.Proposal{
		Param:    "vm.swappiness",
		Current:  snap.Value("vm.swappiness", "60"),
		Proposed: swp,
		Reason:   swpReason,
		Category: types.CategoryMemory,
		Priority: types.PriorityRecommended,
	})

	// Dirty-page windows: servers get their own profile from PersonaRules,
	// so only tighten them here for desktop-class flash storage.
	if persona != types.PersonaServer && (snap.Disk == snapshot.DiskNVMe || snap.Disk == snapshot.DiskSSD) {
		optimal := "10"
		background := "5"
		if snap.Disk == snapshot.DiskNVMe {
			optimal = "5"
			background = "3"
		}
		current := snap.Value("vm.dirty_ratio", "20")
		if asInt(current, 20) > asInt(optimal, 0) {
			out = append(out, types.Proposal{
				Param:    "vm.dirty_ratio",
				Current:  current,
				Proposed: optimal,
				Reason:   "smaller dirty window keeps flush bursts short on flash storage",
				Category: types.CategoryMemory,
				Priority: types.PriorityRecommended,
			})
		}
		currentBG := snap.Value("vm.dirty_background_ratio", "10")
		if asInt(currentBG, 10) > asInt(background, 0) {
			out = append(out, types.Proposal{
				Param:    "vm.dirty_background_ratio",
				Current:  currentBG,
				Proposed: background,
				Reason:   "start background writeback earlier so foreground writes rarely stall",
				Category: types.CategoryMemory,
				Priority: types.PriorityOptional,
			})
		}
	}

	out = append(out, types.Proposal{
		Param:    "vm.vfs_cache_pressure",
		Current:  snap.Value("vm.vfs_cache_pressure", "100"),
		Proposed: "50",
		Reason:   "retain dentry and inode caches longer; directory-heavy workloads benefit",
		Category: types.CategoryMemory,
		Priority: types.PriorityOptional,
	})

	if snap.MemTotal > 0 {
		proposed := strconv.Itoa(minFreeKBytes(snap.MemTotal))
		out = append(out, types.Proposal{
			Param:    "vm.min_free_kbytes",
			Current:  snap.Value("vm.min_free_kbytes", "0"),
			Proposed: proposed,
			Reason:   fmt.Sprintf("reserve headroom scaled to %s of RAM so atomic allocations do not fail under pressure", snap.MemHuman()),
			Category: types.CategoryMemory,
			Priority: types.PriorityOptional,
		})
	}

	if !snap.HasFeature("zram") && snap.MemTotal > 0 && snap.MemTotal <= 16*types.GiB {
		out = append(out, types.Proposal{
			Param:    "zram.generator",
			Current:  "disabled",
			Proposed: "enabled",
			Reason:   "compressed swap in RAM stretches effective memory on machines with 16 GiB or less",
			Category: types.CategoryMemory,
			Priority: types.PriorityOptional,
			Command:  "systemctl enable --now systemd-zram-setup@zram0.service",
		})
	}

	return out
}

// minFreeKBytes derives vm.min_free_kbytes from total RAM:
// sqrt(RAM in KiB) * 16, clamped to [64 MiB, 256 MiB].
func minFreeKBytes(memTotal int64) int {
	ramKB := float64(memTotal) / 1024
	calculated := int(math.Sqrt(ramKB) * 16)
	if calculated < minFreeFloorKB {
		return minFreeFloorKB
	}
	if calculated > minFreeCeilingKB {
		return minFreeCeilingKB
	}
	return calculated
}

// asInt parses a decimal string, falling back when the live value is
// missing or malformed.
func asInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
