package types

import (
	"errors"
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Category
		wantErr bool
	}{
		{name: "cpu", input: "cpu", want: CategoryCPU},
		{name: "memory", input: "memory", want: CategoryMemory},
		{name: "network", input: "network", want: CategoryNetwork},
		{name: "disk", input: "disk", want: CategoryDisk},
		{name: "gaming", input: "gaming", want: CategoryGaming},
		{name: "power", input: "power", want: CategoryPower},
		{name: "kernel", input: "kernel", want: CategoryKernel},
		{name: "uppercase", input: "MEMORY", want: CategoryMemory},
		{name: "unknown", input: "storage", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCategory(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCategory) {
					t.Errorf("ParseCategory(%q) error = %v, want ErrInvalidCategory", tt.input, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Priority
		wantErr bool
	}{
		{name: "critical", input: "critical", want: PriorityCritical},
		{name: "recommended", input: "recommended", want: PriorityRecommended},
		{name: "optional", input: "optional", want: PriorityOptional},
		{name: "uppercase", input: "Critical", want: PriorityCritical},
		{name: "unknown", input: "urgent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePriority(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParsePriority(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParsePriority(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPriorityStrongerThan(t *testing.T) {
	tests := []struct {
		name  string
		p     Priority
		other Priority
		want  bool
	}{
		{name: "critical beats recommended", p: PriorityCritical, other: PriorityRecommended, want: true},
		{name: "critical beats optional", p: PriorityCritical, other: PriorityOptional, want: true},
		{name: "recommended beats optional", p: PriorityRecommended, other: PriorityOptional, want: true},
		{name: "recommended does not beat critical", p: PriorityRecommended, other: PriorityCritical, want: false},
		{name: "equal priorities tie", p: PriorityOptional, other: PriorityOptional, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.StrongerThan(tt.other); got != tt.want {
				t.Errorf("%q.StrongerThan(%q) = %v, want %v", tt.p, tt.other, got, tt.want)
			}
		})
	}
}

func TestParsePersona(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Persona
		wantErr bool
	}{
		{name: "gamer", input: "gamer", want: PersonaGamer},
		{name: "developer", input: "developer", want: PersonaDeveloper},
		{name: "server", input: "server", want: PersonaServer},
		{name: "general", input: "general", want: PersonaGeneral},
		{name: "empty defaults to general", input: "", want: PersonaGeneral},
		{name: "unknown", input: "workstation", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePersona(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParsePersona(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParsePersona(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestProposalNoOp(t *testing.T) {
	tests := []struct {
		name     string
		proposal Proposal
		want     bool
	}{
		{
			name:     "differing values are not a no-op",
			proposal: Proposal{Param: "vm.swappiness", Current: "60", Proposed: "10"},
			want:     false,
		},
		{
			name:     "equal values are a no-op",
			proposal: Proposal{Param: "vm.swappiness", Current: "10", Proposed: "10"},
			want:     true,
		},
		{
			name:     "force overrides equality",
			proposal: Proposal{Param: "vm.swappiness", Current: "10", Proposed: "10", Force: true},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.proposal.NoOp(); got != tt.want {
				t.Errorf("NoOp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransactionSummary(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tx := Transaction{
		ID:        "abc-123",
		Timestamp: ts,
		Changes: []ParamChange{
			{Param: "vm.swappiness", Old: "60", New: "10"},
			{Param: "net.ipv4.tcp_congestion_control", Old: "cubic", New: "bbr"},
		},
	}

	got := tx.Summary()
	want := "abc-123  2025-06-01T12:00:00Z  2 change(s)"
	if got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}

	tx.Reverted = true
	got = tx.Summary()
	want = "abc-123  2025-06-01T12:00:00Z  2 change(s)  (reverted)"
	if got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}
