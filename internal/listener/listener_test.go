package listener

import (
	"reflect"
	"testing"
)

func TestParse_TreeLiteralIDs(t *testing.T) {
	listeners := map[string]any{
		"watch": map[string]any{
			"type":       TypeChallengeTree,
			"challenges": []any{"ch-a", "ch-b", "ch-a"},
		},
	}

	p := Parse(listeners, nil)
	want := []string{"ch-a", "ch-b"}
	if !reflect.DeepEqual(p.ChallengeTreeIDs, want) {
		t.Errorf("got %v, want %v", p.ChallengeTreeIDs, want)
	}
}

func TestParse_TreeContextReference(t *testing.T) {
	listeners := map[string]any{
		"watch": map[string]any{
			"type":       TypeChallengeTree,
			"challenges": "$Children",
		},
	}
	merged := map[string]any{
		"Children": []any{"ch-x", "ch-y"},
	}

	p := Parse(listeners, merged)
	want := []string{"ch-x", "ch-y"}
	if !reflect.DeepEqual(p.ChallengeTreeIDs, want) {
		t.Errorf("got %v, want %v", p.ChallengeTreeIDs, want)
	}
}

func TestParse_TreeMixedArray(t *testing.T) {
	listeners := map[string]any{
		"watch": map[string]any{
			"type":       TypeChallengeTree,
			"challenges": []any{"ch-lit", "$Extra"},
		},
	}
	merged := map[string]any{"Extra": "ch-ref"}

	p := Parse(listeners, merged)
	want := []string{"ch-lit", "ch-ref"}
	if !reflect.DeepEqual(p.ChallengeTreeIDs, want) {
		t.Errorf("got %v, want %v", p.ChallengeTreeIDs, want)
	}
}

func TestParse_Counter(t *testing.T) {
	listeners := map[string]any{
		"counter": map[string]any{
			"type":  TypeChallengeCounter,
			"count": "$CompletedCount",
			"total": float64(5),
		},
	}
	merged := map[string]any{"CompletedCount": float64(2)}

	p := Parse(listeners, merged)
	if p.CountData.Count != 2 || p.CountData.Total != 5 {
		t.Errorf("got %+v, want {2 5}", p.CountData)
	}
}

func TestParse_MalformedListenersYieldNothing(t *testing.T) {
	tests := []struct {
		name      string
		listeners map[string]any
	}{
		{"nil map", nil},
		{"listener not a map", map[string]any{"x": "oops"}},
		{"unknown type", map[string]any{"x": map[string]any{"type": "wibble"}}},
		{"challenges not resolvable", map[string]any{
			"x": map[string]any{"type": TypeChallengeTree, "challenges": "$Missing"},
		}},
		{"challenges wrong shape", map[string]any{
			"x": map[string]any{"type": TypeChallengeTree, "challenges": 42},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(tt.listeners, nil)
			if len(p.ChallengeTreeIDs) != 0 {
				t.Errorf("got %v, want empty", p.ChallengeTreeIDs)
			}
			if p.CountData.Total != 0 {
				t.Errorf("got total %d, want 0", p.CountData.Total)
			}
		})
	}
}

func TestParse_DeterministicAcrossListeners(t *testing.T) {
	// Listener names iterate in sorted order, so references from multiple
	// listeners always land in the same position.
	listeners := map[string]any{
		"b-second": map[string]any{
			"type":       TypeChallengeTree,
			"challenges": []any{"ch-2"},
		},
		"a-first": map[string]any{
			"type":       TypeChallengeTree,
			"challenges": []any{"ch-1"},
		},
	}

	for range 20 {
		p := Parse(listeners, nil)
		want := []string{"ch-1", "ch-2"}
		if !reflect.DeepEqual(p.ChallengeTreeIDs, want) {
			t.Fatalf("got %v, want %v", p.ChallengeTreeIDs, want)
		}
	}
}
