package rules

import (
	"github.com/kerntune/kerntune/pkg/kerntune/snapshot"
	"github.com/kerntune/kerntune/pkg/kerntune/types"
)

// Thresholds below which the persona limits are raised.
const (
	gamerMapCountFloor = 1000000
	devInotifyFloor    = 524288
)

// PersonaRules biases tuning toward the declared workload profile. It also
// honors workload tags detected in the snapshot, so a machine that looks
// like a gaming rig gets the gamer set even under the general persona.
type PersonaRules struct{}

// Name identifies the provider.
func (PersonaRules) Name() string { return "persona" }

// Analyze returns persona-specific proposals.
func (PersonaRules) Analyze(snap snapshot.Snapshot, persona types.Persona) []types.Proposal {
	var out []types.Proposal

	if persona == types.PersonaGamer || snap.HasWorkload("gaming") {
		out = append(out, gamerProposals(snap)...)
	}
	if persona == types.PersonaDeveloper || snap.HasWorkload("containers") {
		out = append(out, developerProposals(snap)...)
	}
	if persona == types.PersonaServer {
		out = append(out, serverProposals(snap)...)
	}
	if persona != types.PersonaServer && snap.Chassis == snapshot.ChassisDesktop {
		out = append(out, types.Proposal{
			Param:    "kernel.sched_autogroup_enabled",
			Current:  snap.Value("kernel.sched_autogroup_enabled", "0"),
			Proposed: "1",
			Reason:   "session autogrouping keeps background builds from starving the foreground",
			Category: types.CategoryCPU,
			Priority: types.PriorityRecommended,
		})
	}

	return out
}

func gamerProposals(snap snapshot.Snapshot) []types.Proposal {
	var out []types.Proposal

	mapCount := snap.Value("vm.max_map_count", "65530")
	if asInt(mapCount, 0) < gamerMapCountFloor {
		out = append(out, types.Proposal{
			Param:    "vm.max_map_count",
			Current:  mapCount,
			Proposed: "2147483642",
			Reason:   "many Windows titles under Proton exhaust the default memory map limit and crash",
			Category: types.CategoryGaming,
			Priority: types.PriorityCritical,
		})
	}

	out = append(out, types.Proposal{
		Param:    "kernel.sched_cfs_bandwidth_slice_us",
		Current:  snap.Value("kernel.sched_cfs_bandwidth_slice_us", "5000"),
		Proposed: "3000",
		Reason:   "shorter bandwidth slices cut scheduler latency spikes under load",
		Category: types.CategoryGaming,
		Priority: types.PriorityRecommended,
	})

	return out
}

func developerProposals(snap snapshot.Snapshot) []types.Proposal {
	var out []types.Proposal

	watches := snap.Value("fs.inotify.max_user_watches", "8192")
	if asInt(watches, 0) < devInotifyFloor {
		out = append(out, types.Proposal{
			Param:    "fs.inotify.max_user_watches",
			Current:  watches,
			Proposed: "524288",
			Reason:   "IDE indexers and container file watchers exhaust the default inotify budget",
			Category: types.CategoryKernel,
			Priority: types.PriorityRecommended,
		})
	}

	return out
}

func serverProposals(snap snapshot.Snapshot) []types.Proposal {
	return []types.Proposal{
		{
			Param:    "net.core.somaxconn",
			Current:  snap.Value("net.core.somaxconn", "4096"),
			Proposed: "65535",
			Reason:   "deep accept queues absorb connection floods without refusing clients",
			Category: types.CategoryNetwork,
			Priority: types.PriorityRecommended,
		},
		{
			Param:    "vm.dirty_ratio",
			Current:  snap.Value("vm.dirty_ratio", "20"),
			Proposed: "40",
			Reason:   "throughput-oriented dirty window lets the kernel batch writes on servers",
			Category: types.CategoryMemory,
			Priority: types.PriorityRecommended,
		},
		{
			Param:    "vm.dirty_background_ratio",
			Current:  snap.Value("vm.dirty_background_ratio", "10"),
			Proposed: "10",
			Reason:   "keep background writeback at the kernel default for steady batching",
			Category: types.CategoryMemory,
			Priority: types.PriorityOptional,
		},
	}
}
