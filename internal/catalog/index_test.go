package catalog

import (
	"reflect"
	"testing"
)

func simpleChallenge(id, groupID string) Challenge {
	return Challenge{
		ID:      id,
		Name:    id,
		GroupID: groupID,
		Scope:   ScopeSession,
		Definition: map[string]any{
			"States": map[string]any{},
		},
	}
}

func treeChallenge(id, groupID string, deps ...string) Challenge {
	refs := make([]any, len(deps))
	for i, d := range deps {
		refs[i] = d
	}
	c := simpleChallenge(id, groupID)
	c.ContextListeners = map[string]any{
		"watch": map[string]any{
			"type":       "challengetree",
			"challenges": refs,
		},
	}
	return c
}

func testGroups() []Group {
	return []Group{
		{CategoryID: "assassination", Name: "Assassination"},
		{CategoryID: "discovery", Name: "Discovery"},
	}
}

func TestNewIndex_LookupAndGroups(t *testing.T) {
	idx, err := NewIndex(testGroups(), []Challenge{
		simpleChallenge("ch-a", "assassination"),
		simpleChallenge("ch-b", "discovery"),
		simpleChallenge("ch-c", "assassination"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, err := idx.ChallengeByID("ch-b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.GroupID != "discovery" {
		t.Errorf("got group %q, want %q", c.GroupID, "discovery")
	}

	if _, err := idx.ChallengeByID("nope"); err == nil {
		t.Error("expected error for unknown challenge")
	}

	got := idx.GroupIDs()
	want := []string{"assassination", "discovery"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got group order %v, want %v", got, want)
	}

	inGroup := idx.ChallengesInGroup("assassination")
	if len(inGroup) != 2 || inGroup[0].ID != "ch-a" || inGroup[1].ID != "ch-c" {
		t.Errorf("unexpected group contents: %+v", inGroup)
	}
}

func TestNewIndex_ValidationErrors(t *testing.T) {
	tests := []struct {
		name       string
		challenges []Challenge
	}{
		{"duplicate ID", []Challenge{
			simpleChallenge("ch-a", "assassination"),
			simpleChallenge("ch-a", "discovery"),
		}},
		{"unregistered group", []Challenge{
			simpleChallenge("ch-a", "ghosts"),
		}},
		{"invalid scope", []Challenge{
			{ID: "ch-a", GroupID: "discovery", Scope: Scope("galaxy")},
		}},
		{"empty ID", []Challenge{
			{GroupID: "discovery", Scope: ScopeSession},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewIndex(testGroups(), tt.challenges); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestBuildDependencyGraph_Sparse(t *testing.T) {
	g := BuildDependencyGraph([]Challenge{
		simpleChallenge("ch-a", "discovery"),
		treeChallenge("ch-b", "discovery", "ch-a"),
		treeChallenge("ch-c", "discovery", "ch-a", "ch-b"),
	})

	if g.Len() != 2 {
		t.Errorf("got %d entries, want 2", g.Len())
	}
	if deps := g.Dependencies("ch-a"); deps != nil {
		t.Errorf("ch-a should have no entry, got %v", deps)
	}
	if deps := g.Dependencies("ch-c"); !reflect.DeepEqual(deps, []string{"ch-a", "ch-b"}) {
		t.Errorf("got %v, want [ch-a ch-b]", deps)
	}
	if ids := g.TreeIDs(); !reflect.DeepEqual(ids, []string{"ch-b", "ch-c"}) {
		t.Errorf("got tree IDs %v, want [ch-b ch-c]", ids)
	}
}

func TestBuildDependencyGraph_MalformedListeners(t *testing.T) {
	c := simpleChallenge("ch-weird", "discovery")
	c.ContextListeners = map[string]any{
		"broken": "not even a map",
	}
	g := BuildDependencyGraph([]Challenge{c})
	if g.Len() != 0 {
		t.Errorf("malformed listeners must yield no entry, got %d", g.Len())
	}
}

func TestBuildDependencyGraph_SelfReferenceKept(t *testing.T) {
	// A self edge is a parsing artifact; the graph keeps it and the
	// cascade is responsible for skipping it.
	g := BuildDependencyGraph([]Challenge{
		treeChallenge("ch-loop", "discovery", "ch-loop", "ch-other"),
	})
	deps := g.Dependencies("ch-loop")
	if !reflect.DeepEqual(deps, []string{"ch-loop", "ch-other"}) {
		t.Errorf("got %v, want [ch-loop ch-other]", deps)
	}
}

func TestFilterChallenges(t *testing.T) {
	pinned := simpleChallenge("ch-pinned", "assassination")
	pinned.InclusionContracts = []string{"contract-1"}

	located := simpleChallenge("ch-located", "discovery")
	located.LocationID = "LOCATION_PARIS"

	parented := simpleChallenge("ch-parented", "discovery")
	parented.ParentLocationID = "LOCATION_PARENT_PARIS"

	elsewhere := simpleChallenge("ch-elsewhere", "discovery")
	elsewhere.LocationID = "LOCATION_SAPIENZA"
	elsewhere.ParentLocationID = "LOCATION_PARENT_SAPIENZA"

	pinnedElsewhere := simpleChallenge("ch-pinned-elsewhere", "assassination")
	pinnedElsewhere.InclusionContracts = []string{"contract-9"}
	pinnedElsewhere.LocationID = "LOCATION_PARIS"

	idx, err := NewIndex(testGroups(), []Challenge{pinned, located, parented, elsewhere, pinnedElsewhere})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := idx.FilterChallenges(Filter{
		Type:             FilterContract,
		ContractID:       "contract-1",
		LocationID:       "LOCATION_PARIS",
		ParentLocationID: "LOCATION_PARENT_PARIS",
	})

	var ids []string
	for _, groupID := range idx.GroupIDs() {
		for _, c := range got[groupID] {
			ids = append(ids, c.ID)
		}
	}
	want := []string{"ch-pinned", "ch-located", "ch-parented"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("got %v, want %v", ids, want)
	}
}

func TestFilterChallenges_ParentLocation(t *testing.T) {
	a := simpleChallenge("ch-a", "discovery")
	a.ParentLocationID = "LOCATION_PARENT_PARIS"
	b := simpleChallenge("ch-b", "discovery")
	b.ParentLocationID = "LOCATION_PARENT_SAPIENZA"

	idx, err := NewIndex(testGroups(), []Challenge{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := idx.FilterChallenges(Filter{
		Type:             FilterParentLocation,
		ParentLocationID: "LOCATION_PARENT_SAPIENZA",
	})
	if len(got) != 1 || len(got["discovery"]) != 1 || got["discovery"][0].ID != "ch-b" {
		t.Errorf("unexpected filter result: %+v", got)
	}
}
