package rules

import (
	"strings"

	"github.com/kerntune/kerntune/pkg/kerntune/snapshot"
	"github.com/kerntune/kerntune/pkg/kerntune/types"
)

// Modern defaults for high-bandwidth links.
const (
	socketBufMax   = 16777216 // 16 MiB
	netdevBacklog  = "16384"
	tcpFastopenAll = "3"
)

// NetworkRules tunes the TCP stack: BBR congestion control with the fq
// qdisc, TCP Fast Open, and socket buffer ceilings sized for modern
// high-bandwidth links.
type NetworkRules struct{}

// Name identifies the provider.
func (NetworkRules) Name() string { return "network" }

// Analyze returns network tuning proposals.
func (NetworkRules) Analyze(snap snapshot.Snapshot, persona types.Persona) []types.Proposal {
	var out []types.Proposal

	congestion := snap.Value("net.ipv4.tcp_congestion_control", "cubic")
	if !strings.Contains(strings.ToLower(congestion), "bbr") {
		out = append(out, types.Proposal{
			Param:    "net.ipv4.tcp_congestion_control",
			Current:  congestion,
			Proposed: "bbr",
			Reason:   "BBR congestion control improves throughput markedly on high-latency links",
			Category: types.CategoryNetwork,
			Priority: types.PriorityRecommended,
		})
		// BBR is designed to pair with the fq qdisc.
		out = append(out, types.Proposal{
			Param:    "net.core.default_qdisc",
			Current:  snap.Value("net.core.default_qdisc", "fq_codel"),
			Proposed: "fq",
			Reason:   "fair queueing qdisc provides the pacing BBR depends on",
			Category: types.CategoryNetwork,
			Priority: types.PriorityRecommended,
		})
	}

	out = append(out, types.Proposal{
		Param:    "net.ipv4.tcp_fastopen",
		Current:  snap.Value("net.ipv4.tcp_fastopen", "1"),
		Proposed: tcpFastopenAll,
		Reason:   "TCP Fast Open for both directions shaves a round trip off connection setup",
		Category: types.CategoryNetwork,
		Priority: types.PriorityOptional,
	})

	for _, buf := range []struct {
		param, reason string
	}{
		{"net.core.rmem_max", "raise the receive buffer ceiling to 16 MiB for high-bandwidth transfers"},
		{"net.core.wmem_max", "raise the send buffer ceiling to 16 MiB for sustained uploads"},
	} {
		current := snap.Value(buf.param, "212992")
		if asInt(current, 0) < socketBufMax {
			out = append(out, types.Proposal{
				Param:    buf.param,
				Current:  current,
				Proposed: "16777216",
				Reason:   buf.reason,
				Category: types.CategoryNetwork,
				Priority: types.PriorityRecommended,
			})
		}
	}

	backlog := snap.Value("net.core.netdev_max_backlog", "1000")
	if asInt(backlog, 0) < asInt(netdevBacklog, 0) {
		out = append(out, types.Proposal{
			Param:    "net.core.netdev_max_backlog",
			Current:  backlog,
			Proposed: netdevBacklog,
			Reason:   "deeper device backlog avoids packet drops during receive bursts",
			Category: types.CategoryNetwork,
			Priority: types.PriorityOptional,
		})
	}

	return out
}
