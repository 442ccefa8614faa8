package experiments

import (
	"slices"
)

// Descriptor is one experiment parsed from the configuration document.
// Name is the identity key.
type Descriptor struct {
	Name     string
	Metadata map[string]any
}

// DisplayRow is the merge of one descriptor with the enabled set.
type DisplayRow struct {
	Name      string
	IsEnabled bool
	Metadata  map[string]any
}

// EnabledSet is the set of experiment names the host currently activates.
type EnabledSet map[string]struct{}

// NewEnabledSet builds a set from names.
func NewEnabledSet(names ...string) EnabledSet {
	set := make(EnabledSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Has reports whether name is enabled.
func (s EnabledSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the members in sorted order.
func (s EnabledSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Phase is a step of a refresh cycle, used in logs.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseFetching Phase = "fetching"
	PhaseMerging  Phase = "merging"
	PhaseDone     Phase = "done"
	PhaseFailed   Phase = "failed"
)

func (p Phase) String() string { return string(p) }
