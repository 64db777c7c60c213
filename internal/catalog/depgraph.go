package catalog

import (
	"slices"

	"github.com/oberon-games/waterfall/internal/listener"
)

// DependencyGraph maps a challenge ID to the ordered, deduplicated list of
// challenge IDs it depends on. The map is sparse: only challenges whose
// context listeners reference at least one other challenge have an entry.
// Entries are immutable after construction.
//
// An entry may include its own ID; that is an artifact of listener parsing
// and the completion cascade skips the self edge explicitly.
type DependencyGraph struct {
	entries map[string][]string
	order   []string
}

// BuildDependencyGraph derives the graph from the given definitions.
// Malformed listener expressions never abort construction; they simply
// yield no entry for that definition.
func BuildDependencyGraph(challenges []Challenge) *DependencyGraph {
	g := &DependencyGraph{entries: make(map[string][]string)}
	for i := range challenges {
		c := &challenges[i]
		parsed := listener.Parse(c.ContextListeners, c.MergedContext())
		if len(parsed.ChallengeTreeIDs) == 0 {
			continue
		}
		g.entries[c.ID] = parsed.ChallengeTreeIDs
		g.order = append(g.order, c.ID)
	}
	slices.Sort(g.order)
	return g
}

// Dependencies returns the dependency list for a challenge, or nil when
// the challenge has no entry. Callers must not modify the result.
func (g *DependencyGraph) Dependencies(id string) []string {
	return g.entries[id]
}

// TreeIDs returns every challenge ID that has a dependency entry, in
// lexicographic order so cascade traversal is deterministic across runs.
// Callers must not modify the result.
func (g *DependencyGraph) TreeIDs() []string {
	return g.order
}

// Len returns the number of entries in the graph.
func (g *DependencyGraph) Len() int {
	return len(g.entries)
}
