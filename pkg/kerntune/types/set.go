package types

// ProposalSet is an ordered collection of proposals, unique by parameter
// name. When two proposals target the same parameter, the one with the
// higher priority wins; on a tie, the proposal added first wins. Because
// providers feed the set in registration order, identical inputs always
// produce an identical ordered set.
type ProposalSet struct {
	proposals []Proposal
	index     map[string]int
}

// NewProposalSet returns an empty ProposalSet.
func NewProposalSet() *ProposalSet {
	return &ProposalSet{index: make(map[string]int)}
}

// Add inserts a proposal, applying the deduplication precedence rule.
// It reports whether the proposal was kept (either inserted or replacing
// a weaker duplicate).
func (s *ProposalSet) Add(p Proposal) bool {
	if i, ok := s.index[p.Param]; ok {
		if p.Priority.StrongerThan(s.proposals[i].Priority) {
			// Replacement keeps the original position so ordering stays
			// stable regardless of which provider won.
			s.proposals[i] = p
			return true
		}
		return false
	}
	s.index[p.Param] = len(s.proposals)
	s.proposals = append(s.proposals, p)
	return true
}

// AddAll inserts each proposal in order.
func (s *ProposalSet) AddAll(ps []Proposal) {
	for _, p := range ps {
		s.Add(p)
	}
}

// Len returns the number of proposals in the set.
func (s *ProposalSet) Len() int {
	return len(s.proposals)
}

// Proposals returns the proposals in insertion order. The returned slice
// is a copy; mutating it does not affect the set.
func (s *ProposalSet) Proposals() []Proposal {
	out := make([]Proposal, len(s.proposals))
	copy(out, s.proposals)
	return out
}

// Get returns the proposal for the given parameter, if present.
func (s *ProposalSet) Get(param string) (Proposal, bool) {
	i, ok := s.index[param]
	if !ok {
		return Proposal{}, false
	}
	return s.proposals[i], true
}

// ByCategory returns the proposals in the given category, in order.
func (s *ProposalSet) ByCategory(c Category) []Proposal {
	var out []Proposal
	for _, p := range s.proposals {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

// ByPriority returns the proposals with the given priority, in order.
func (s *ProposalSet) ByPriority(pr Priority) []Proposal {
	var out []Proposal
	for _, p := range s.proposals {
		if p.Priority == pr {
			out = append(out, p)
		}
	}
	return out
}

// FilterNoOps returns a new set without proposals whose proposed value
// equals the current one (unless forced).
func (s *ProposalSet) FilterNoOps() *ProposalSet {
	out := NewProposalSet()
	for _, p := range s.proposals {
		if !p.NoOp() {
			out.Add(p)
		}
	}
	return out
}
