// Package listener extracts cross-challenge references from the context
// listener expressions attached to challenge definitions. The expressions
// themselves belong to the state-machine data format and are otherwise
// opaque to the engine; the only facts it needs are which other challenges
// a listener watches and, for counter listeners, the N-of-M progress pair.
package listener

import (
	"maps"
	"slices"
	"strings"
)

// Listener type tags recognized in definition data.
const (
	TypeChallengeTree    = "challengetree"
	TypeChallengeCounter = "challengecounter"
)

// CountData is the progress pair for an N-of-M counter listener.
type CountData struct {
	Count int
	Total int
}

// Parsed holds everything extracted from a definition's context listeners.
type Parsed struct {
	// ChallengeTreeIDs are the challenge IDs referenced by tree listeners,
	// in first-seen order with duplicates removed.
	ChallengeTreeIDs []string

	// CountData is populated from the last counter listener seen.
	CountData CountData
}

// Parse walks the listener expressions of a challenge definition and
// collects challenge references and counter data. String values prefixed
// with "$" are resolved against merged, the definition's context and
// constants merged together. Malformed listeners contribute nothing;
// Parse never fails.
func Parse(listeners map[string]any, merged map[string]any) Parsed {
	var p Parsed
	if len(listeners) == 0 {
		return p
	}

	seen := make(map[string]bool)
	for _, name := range slices.Sorted(maps.Keys(listeners)) {
		l, ok := listeners[name].(map[string]any)
		if !ok {
			continue
		}
		switch l["type"] {
		case TypeChallengeTree:
			for _, id := range resolveStrings(l["challenges"], merged) {
				if id == "" || seen[id] {
					continue
				}
				seen[id] = true
				p.ChallengeTreeIDs = append(p.ChallengeTreeIDs, id)
			}
		case TypeChallengeCounter:
			if n, ok := resolveNumber(l["count"], merged); ok {
				p.CountData.Count = n
			}
			if n, ok := resolveNumber(l["total"], merged); ok {
				p.CountData.Total = n
			}
		}
	}
	return p
}

// resolveStrings normalizes a listener field into a flat list of strings.
// The field may be a literal string, a "$" reference, or an array mixing
// both. References that resolve to arrays are flattened one level.
func resolveStrings(v any, merged map[string]any) []string {
	switch val := v.(type) {
	case string:
		return resolveStringRef(val, merged)
	case []any:
		var out []string
		for _, entry := range val {
			s, ok := entry.(string)
			if !ok {
				continue
			}
			out = append(out, resolveStringRef(s, merged)...)
		}
		return out
	default:
		return nil
	}
}

func resolveStringRef(s string, merged map[string]any) []string {
	if !strings.HasPrefix(s, "$") {
		return []string{s}
	}
	switch resolved := deref(s, merged).(type) {
	case string:
		return []string{resolved}
	case []any:
		var out []string
		for _, entry := range resolved {
			if id, ok := entry.(string); ok {
				out = append(out, id)
			}
		}
		return out
	default:
		return nil
	}
}

func resolveNumber(v any, merged map[string]any) (int, bool) {
	if s, ok := v.(string); ok && strings.HasPrefix(s, "$") {
		v = deref(s, merged)
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

// deref resolves "$Name" or "$.Name" against the merged context.
func deref(ref string, merged map[string]any) any {
	name := strings.TrimPrefix(strings.TrimPrefix(ref, "$"), ".")
	if merged == nil {
		return nil
	}
	return merged[name]
}
