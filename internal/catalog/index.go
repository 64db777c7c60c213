package catalog

import (
	"fmt"
)

// Index is the immutable-after-load lookup over challenge definitions,
// their groups, and the derived dependency graph. It is constructed once
// and injected into everything that needs definition data; there is no
// package-level registry.
type Index struct {
	challenges    map[string]*Challenge
	groups        map[string]*Group
	groupContents map[string][]string
	groupOrder    []string
	graph         *DependencyGraph
}

// NewIndex builds an Index from loaded groups and challenges. Challenge
// GroupID fields must already be set. Structural problems (duplicate IDs,
// membership in an unregistered group, invalid scope) are reported as a
// single combined error.
func NewIndex(groups []Group, challenges []Challenge) (*Index, error) {
	if err := validateDefinitions(groups, challenges); err != nil {
		return nil, err
	}

	idx := &Index{
		challenges:    make(map[string]*Challenge, len(challenges)),
		groups:        make(map[string]*Group, len(groups)),
		groupContents: make(map[string][]string),
	}

	for i := range groups {
		g := &groups[i]
		idx.groups[g.CategoryID] = g
		idx.groupOrder = append(idx.groupOrder, g.CategoryID)
	}
	for i := range challenges {
		c := &challenges[i]
		idx.challenges[c.ID] = c
		idx.groupContents[c.GroupID] = append(idx.groupContents[c.GroupID], c.ID)
	}

	idx.graph = BuildDependencyGraph(challenges)
	return idx, nil
}

// ChallengeByID returns a definition, or an error if it is unknown.
func (idx *Index) ChallengeByID(id string) (*Challenge, error) {
	c, ok := idx.challenges[id]
	if !ok {
		return nil, fmt.Errorf("challenge not found: %q", id)
	}
	return c, nil
}

// GroupByID returns a group, or nil if it is unknown.
func (idx *Index) GroupByID(id string) *Group {
	return idx.groups[id]
}

// GroupIDs returns the category IDs in load order.
func (idx *Index) GroupIDs() []string {
	return idx.groupOrder
}

// ChallengesInGroup returns the definitions registered under a group, in
// registration order.
func (idx *Index) ChallengesInGroup(groupID string) []*Challenge {
	ids := idx.groupContents[groupID]
	out := make([]*Challenge, 0, len(ids))
	for _, id := range ids {
		out = append(out, idx.challenges[id])
	}
	return out
}

// Len returns the number of registered challenges.
func (idx *Index) Len() int {
	return len(idx.challenges)
}

// Graph exposes the dependency graph for the cascade and for diagnostic
// tooling.
func (idx *Index) Graph() *DependencyGraph {
	return idx.graph
}

// Dependencies returns the dependency list for a challenge, empty when it
// has none.
func (idx *Index) Dependencies(id string) []string {
	return idx.graph.Dependencies(id)
}

// GroupedLists is a set of challenges bucketed by category ID.
type GroupedLists map[string][]*Challenge

// FilterChallenges buckets the challenges matching the filter by group,
// preserving group load order and dropping empty groups. GroupOrder on
// the result follows idx.GroupIDs.
func (idx *Index) FilterChallenges(f Filter) GroupedLists {
	out := make(GroupedLists)
	for _, groupID := range idx.groupOrder {
		var matched []*Challenge
		for _, id := range idx.groupContents[groupID] {
			c := idx.challenges[id]
			if f.Match(c) {
				matched = append(matched, c)
			}
		}
		if len(matched) > 0 {
			out[groupID] = matched
		}
	}
	return out
}
