package snapshot

import (
	"testing"

	"github.com/kerntune/kerntune/pkg/kerntune/types"
)

func TestSnapshotValue(t *testing.T) {
	snap := Snapshot{
		Sysctl: map[string]string{
			"vm.swappiness": "60",
			"vm.empty":      "",
		},
	}

	tests := []struct {
		name     string
		param    string
		fallback string
		want     string
	}{
		{name: "present", param: "vm.swappiness", fallback: "0", want: "60"},
		{name: "missing takes fallback", param: "vm.dirty_ratio", fallback: "20", want: "20"},
		{name: "empty reading takes fallback", param: "vm.empty", fallback: "x", want: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := snap.Value(tt.param, tt.fallback); got != tt.want {
				t.Errorf("Value(%q, %q) = %q, want %q", tt.param, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestSnapshotHasWorkload(t *testing.T) {
	snap := Snapshot{Workloads: []string{"gaming", "containers"}}

	if !snap.HasWorkload("gaming") {
		t.Error("HasWorkload(gaming) = false, want true")
	}
	if snap.HasWorkload("databases") {
		t.Error("HasWorkload(databases) = true, want false")
	}
}

func TestSnapshotHasFeature(t *testing.T) {
	snap := Snapshot{Features: map[string]bool{"fstrim": true, "zram": false}}

	if !snap.HasFeature("fstrim") {
		t.Error("HasFeature(fstrim) = false, want true")
	}
	if snap.HasFeature("zram") {
		t.Error("HasFeature(zram) = true, want false")
	}
	if snap.HasFeature("missing") {
		t.Error("HasFeature(missing) = true, want false")
	}
}

func TestSnapshotMemHuman(t *testing.T) {
	snap := Snapshot{MemTotal: 16 * types.GiB}
	if got := snap.MemHuman(); got != "16 GiB" {
		t.Errorf("MemHuman() = %q, want %q", got, "16 GiB")
	}
}
