package rules

import (
	"fmt"
	"strconv"

	"github.com/kerntune/kerntune/pkg/kerntune/snapshot"
	"github.com/kerntune/kerntune/pkg/kerntune/types"
)

// SchedulerRules picks I/O schedulers and read-ahead per block device.
// NVMe queues get out of the kernel's way, SATA SSDs want mq-deadline or
// bfq depending on interactivity, and rotational disks always take bfq.
type SchedulerRules struct{}

// Name identifies the provider.
func (SchedulerRules) Name() string { return "iosched" }

// workload collapses a persona into the scheduler matrix's workload axis.
func workload(persona types.Persona) string {
	switch persona {
	case types.PersonaGamer:
		return "gaming"
	case types.PersonaServer:
		return "server"
	default:
		return "desktop"
	}
}

// schedulerFor returns the advised scheduler for a device category and
// workload.
func schedulerFor(category snapshot.DiskCategory, workload string) string {
	switch category {
	case snapshot.DiskNVMe:
		if workload == "gaming" || workload == "server" {
			return "none" // NVMe's internal queueing beats any elevator
		}
		return "mq-deadline"
	case snapshot.DiskSSD:
		if workload == "desktop" {
			return "bfq"
		}
		return "mq-deadline"
	case snapshot.DiskHDD:
		return "bfq"
	default:
		return "mq-deadline"
	}
}

// readAheadFor returns the advised read_ahead_kb for a device category.
func readAheadFor(category snapshot.DiskCategory) int {
	if category == snapshot.DiskHDD {
		return 4096 // rotational media rewards aggressive read-ahead
	}
	return 256
}

// Analyze returns per-device scheduler and read-ahead proposals. Device
// knobs are addressed as block.<dev>.queue.<knob> parameters; the mutator
// maps them onto the sysfs queue directory.
func (SchedulerRules) Analyze(snap snapshot.Snapshot, persona types.Persona) []types.Proposal {
	wl := workload(persona)

	var out []types.Proposal
	for _, dev := range snap.BlockDevices {
		if dev.Category == snapshot.DiskUnknown {
			continue
		}

		optimal := schedulerFor(dev.Category, wl)
		out = append(out, types.Proposal{
			Param:    fmt.Sprintf("block.%s.queue.scheduler", dev.Name),
			Current:  dev.Scheduler,
			Proposed: optimal,
			Reason:   fmt.Sprintf("%s scheduler suits a %s device under a %s workload", optimal, dev.Category, wl),
			Category: types.CategoryDisk,
			Priority: types.PriorityRecommended,
		})

		readAhead := readAheadFor(dev.Category)
		out = append(out, types.Proposal{
			Param:    fmt.Sprintf("block.%s.queue.read_ahead_kb", dev.Name),
			Current:  strconv.Itoa(dev.ReadAheadKB),
			Proposed: strconv.Itoa(readAhead),
			Reason:   fmt.Sprintf("read-ahead of %d KiB matches %s access patterns", readAhead, dev.Category),
			Category: types.CategoryDisk,
			Priority: types.PriorityOptional,
		})
	}

	// TRIM keeps flash firmware informed of reusable blocks; without the
	// timer, sustained write performance degrades over months.
	if (snap.Disk == snapshot.DiskNVMe || snap.Disk == snapshot.DiskSSD) && !snap.HasFeature("fstrim") {
		out = append(out, types.Proposal{
			Param:    "fstrim.timer",
			Current:  "disabled",
			Proposed: "enabled",
			Reason:   "periodic TRIM is critical for long-term flash storage performance",
			Category: types.CategoryDisk,
			Priority: types.PriorityCritical,
			Command:  "systemctl enable --now fstrim.timer",
		})
	}

	return out
}
