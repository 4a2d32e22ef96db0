//go:build !linux

package snapshot

// Collect returns an empty snapshot on platforms without the Linux proc
// and sysfs trees. Analysis still runs; rule providers simply see no
// hardware facts and propose nothing.
func Collect(procRoot, sysRoot string) Snapshot {
	return Snapshot{
		Disk:     DiskUnknown,
		Chassis:  ChassisDesktop,
		Features: map[string]bool{},
		Sysctl:   map[string]string{},
	}
}

// CollectDefault collects a snapshot from the live system.
func CollectDefault() Snapshot {
	return Collect("/proc", "/sys")
}
