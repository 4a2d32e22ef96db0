// Package rules generates tuning proposals from a hardware snapshot.
// Each rule provider is a pure function of (snapshot, persona): it reads
// snapshot fields and the live parameter values the snapshot carries, and
// returns proposals without side effects. Providers are registered in a
// fixed order so identical inputs always yield an identical proposal set.
package rules

import (
	"github.com/kerntune/kerntune/pkg/kerntune/snapshot"
	"github.com/kerntune/kerntune/pkg/kerntune/types"
)

// Provider maps a snapshot and persona to tuning proposals.
//
// Implementations must be deterministic and side-effect-free: no system
// reads, no writes, no time or randomness. Everything a provider needs is
// in the snapshot.
type Provider interface {
	// Name identifies the provider in logs and reports.
	Name() string

	// Analyze returns the provider's proposals for the given snapshot.
	Analyze(snap snapshot.Snapshot, persona types.Persona) []types.Proposal
}

// Registry holds an ordered list of rule providers. Order matters: when
// two providers propose the same parameter at equal priority, the one
// registered earliest wins.
type Registry struct {
	providers []Provider
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns a registry with the built-in providers in their
// canonical order: memory, network, I/O scheduler, persona, hardware.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(MemoryRules{})
	r.Register(NetworkRules{})
	r.Register(SchedulerRules{})
	r.Register(PersonaRules{})
	r.Register(HardwareRules{})
	return r
}

// Register appends a provider. Registration order is analysis order.
func (r *Registry) Register(p Provider) {
	r.providers = append(r.providers, p)
}

// Providers returns the registered providers in order.
func (r *Registry) Providers() []Provider {
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Analyze runs every provider against the snapshot and aggregates the
// results into a deduplicated, ordered proposal set. No-op proposals
// (proposed equals current, not forced) are filtered out.
func (r *Registry) Analyze(snap snapshot.Snapshot, persona types.Persona) *types.ProposalSet {
	set := types.NewProposalSet()
	for _, p := range r.providers {
		for _, proposal := range p.Analyze(snap, persona) {
			if proposal.NoOp() {
				continue
			}
			set.Add(proposal)
		}
	}
	return set
}
