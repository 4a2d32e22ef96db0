//go:build linux

package snapshot

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Collect probes the running system and returns a best-effort snapshot.
// Probing never fails the whole collection: fields that cannot be read are
// left at their zero or "unknown" values so analysis can still proceed.
//
// The paths are parameterized for tests; production callers use
// CollectDefault.
func Collect(procRoot, sysRoot string) Snapshot {
	snap := Snapshot{
		Disk:     DiskUnknown,
		Chassis:  ChassisDesktop,
		Features: map[string]bool{},
		Sysctl:   map[string]string{},
	}

	snap.MemTotal = readMemTotal(filepath.Join(procRoot, "meminfo"))
	snap.CPUVendor, snap.HybridCPU = readCPUInfo(filepath.Join(procRoot, "cpuinfo"))
	snap.Governor = readFirstLine(filepath.Join(sysRoot, "devices/system/cpu/cpu0/cpufreq/scaling_governor"))
	snap.Chassis = readChassis(sysRoot)
	snap.BlockDevices = readBlockDevices(sysRoot)
	snap.Disk = primaryDisk(snap.BlockDevices)
	snap.Kernel = kernelRelease()

	for _, param := range probedParams {
		if v := readSysctl(procRoot, param); v != "" {
			snap.Sysctl[param] = v
		}
	}

	if congestion, ok := snap.Sysctl["net.ipv4.tcp_congestion_control"]; ok {
		snap.Features["bbr"] = strings.Contains(congestion, "bbr")
	}
	if avail := readFirstLine(filepath.Join(procRoot, "sys/net/ipv4/tcp_available_congestion_control")); avail != "" {
		snap.Features["bbr_available"] = strings.Contains(avail, "bbr")
	}
	snap.Features["zram"] = dirExists(filepath.Join(sysRoot, "block/zram0"))

	return snap
}

// CollectDefault collects a snapshot from the live system.
func CollectDefault() Snapshot {
	return Collect("/proc", "/sys")
}

// probedParams are the live kernel parameters captured into the snapshot.
// Rule providers compare against these values; missing parameters simply
// produce no readings.
var probedParams = []string{
	"vm.swappiness",
	"vm.dirty_ratio",
	"vm.dirty_background_ratio",
	"vm.dirty_writeback_centisecs",
	"vm.vfs_cache_pressure",
	"vm.max_map_count",
	"vm.min_free_kbytes",
	"net.ipv4.tcp_congestion_control",
	"net.ipv4.tcp_fastopen",
	"net.core.default_qdisc",
	"net.core.rmem_max",
	"net.core.wmem_max",
	"net.core.netdev_max_backlog",
	"net.core.somaxconn",
	"kernel.sched_autogroup_enabled",
	"kernel.sched_cfs_bandwidth_slice_us",
	"kernel.sched_itmt_enabled",
	"kernel.numa_balancing",
	"fs.inotify.max_user_watches",
}

// readSysctl reads one parameter through the /proc/sys tree.
func readSysctl(procRoot, param string) string {
	path := filepath.Join(procRoot, "sys", strings.ReplaceAll(param, ".", "/"))
	return readFirstLine(path)
}

// readMemTotal parses MemTotal from a meminfo file, returning bytes.
func readMemTotal(path string) int64 {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kb, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return 0
		}
		return kb * 1024
	}
	return 0
}

// readCPUInfo extracts the CPU vendor and detects hybrid-core processors
// by looking for distinct core frequencies across model names.
func readCPUInfo(path string) (vendor string, hybrid bool) {
	vendor = "Unknown"
	data, err := os.ReadFile(path)
	if err != nil {
		return vendor, false
	}
	content := string(data)
	switch {
	case strings.Contains(content, "GenuineIntel"):
		vendor = "Intel"
	case strings.Contains(content, "AuthenticAMD"):
		vendor = "AMD"
	}
	// Hybrid Intel parts expose a core_type cpufreq attribute; as a cheaper
	// proxy, distinct "model name" strings across cores indicate P/E cores.
	models := map[string]struct{}{}
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "model name") {
			models[strings.TrimSpace(line)] = struct{}{}
		}
	}
	return vendor, vendor == "Intel" && len(models) > 1
}

// laptopChassisTypes are the DMI chassis type ids reported by portables.
var laptopChassisTypes = map[string]bool{"8": true, "9": true, "10": true, "14": true}

// readChassis maps the DMI chassis type to a Chassis value.
func readChassis(sysRoot string) Chassis {
	id := readFirstLine(filepath.Join(sysRoot, "class/dmi/id/chassis_type"))
	switch {
	case laptopChassisTypes[id]:
		return ChassisLaptop
	case id == "17" || id == "23":
		return ChassisServer
	default:
		return ChassisDesktop
	}
}

// activeSchedPattern extracts the bracketed active scheduler from a sysfs
// scheduler file such as "[mq-deadline] none".
var activeSchedPattern = regexp.MustCompile(`\[(\S+)\]`)

// readBlockDevices enumerates real disks under /sys/block with their
// category, active scheduler, and read-ahead setting.
func readBlockDevices(sysRoot string) []BlockDevice {
	entries, err := os.ReadDir(filepath.Join(sysRoot, "block"))
	if err != nil {
		return nil
	}

	var devices []BlockDevice
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "loop") || strings.HasPrefix(name, "ram") ||
			strings.HasPrefix(name, "zram") || strings.HasPrefix(name, "dm-") {
			continue
		}

		queue := filepath.Join(sysRoot, "block", name, "queue")
		rotational := readFirstLine(filepath.Join(queue, "rotational"))

		category := DiskUnknown
		switch {
		case strings.HasPrefix(name, "nvme"):
			category = DiskNVMe
		case rotational == "0":
			category = DiskSSD
		case rotational == "1":
			category = DiskHDD
		}

		sched := readFirstLine(filepath.Join(queue, "scheduler"))
		if m := activeSchedPattern.FindStringSubmatch(sched); m != nil {
			sched = m[1]
		}

		readAhead, _ := strconv.Atoi(readFirstLine(filepath.Join(queue, "read_ahead_kb")))

		devices = append(devices, BlockDevice{
			Name:        name,
			Category:    category,
			Scheduler:   sched,
			ReadAheadKB: readAhead,
		})
	}
	return devices
}

// primaryDisk picks the fastest detected category as the machine's disk
// class, matching how tuning guides reason about mixed setups.
func primaryDisk(devices []BlockDevice) DiskCategory {
	best := DiskUnknown
	rank := func(c DiskCategory) int {
		switch c {
		case DiskNVMe:
			return 0
		case DiskSSD:
			return 1
		case DiskHDD:
			return 2
		default:
			return 3
		}
	}
	for _, d := range devices {
		if rank(d.Category) < rank(best) {
			best = d.Category
		}
	}
	return best
}

// kernelRelease returns the uname release string.
func kernelRelease() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Release[:])
}

func readFirstLine(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimSpace(line)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
