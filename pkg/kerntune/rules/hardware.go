package rules

import (
	"github.com/kerntune/kerntune/pkg/kerntune/snapshot"
	"github.com/kerntune/kerntune/pkg/kerntune/types"
)

// HardwareRules covers knobs tied to the physical machine rather than the
// workload: laptop power behavior, hybrid-core scheduling, and vendor
// specifics.
type HardwareRules struct{}

// Name identifies the provider.
func (HardwareRules) Name() string { return "hardware" }

// Analyze returns hardware-specific proposals.
func (HardwareRules) Analyze(snap snapshot.Snapshot, persona types.Persona) []types.Proposal {
	var out []types.Proposal

	if snap.Chassis == snapshot.ChassisLaptop {
		out = append(out, types.Proposal{
			Param:    "vm.dirty_writeback_centisecs",
			Current:  snap.Value("vm.dirty_writeback_centisecs", "500"),
			Proposed: "6000",
			Reason:   "waking the disk once a minute instead of every five seconds extends battery life",
			Category: types.CategoryPower,
			Priority: types.PriorityRecommended,
		})
		out = append(out, types.Proposal{
			Param:    "vm.laptop_mode",
			Current:  snap.Value("vm.laptop_mode", "0"),
			Proposed: "5",
			Reason:   "laptop mode batches disk activity around unavoidable wakeups",
			Category: types.CategoryPower,
			Priority: types.PriorityOptional,
		})
	}

	if snap.HybridCPU && snap.CPUVendor == "Intel" {
		// Only propose when the kernel exposes the knob; older kernels
		// reject the write outright.
		if itmt := snap.Value("kernel.sched_itmt_enabled", ""); itmt != "" && itmt != "1" {
			out = append(out, types.Proposal{
				Param:    "kernel.sched_itmt_enabled",
				Current:  itmt,
				Proposed: "1",
				Reason:   "Thread Director steering places demanding threads on performance cores",
				Category: types.CategoryCPU,
				Priority: types.PriorityCritical,
			})
		}
	}

	if snap.CPUVendor == "AMD" {
		out = append(out, types.Proposal{
			Param:    "kernel.numa_balancing",
			Current:  snap.Value("kernel.numa_balancing", "0"),
			Proposed: "1",
			Reason:   "automatic NUMA balancing keeps memory local on multi-CCD parts",
			Category: types.CategoryCPU,
			Priority: types.PriorityOptional,
		})
	}

	if snap.Chassis == snapshot.ChassisDesktop && snap.Governor == "powersave" {
		out = append(out, types.Proposal{
			Param:    "cpu.scaling_governor",
			Current:  "powersave",
			Proposed: "performance",
			Reason:   "a wall-powered desktop leaves performance on the table under the powersave governor",
			Category: types.CategoryCPU,
			Priority: types.PriorityOptional,
			Command:  "cpupower frequency-set -g performance",
		})
	}

	return out
}
