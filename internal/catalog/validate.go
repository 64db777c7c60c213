package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// validateDefinitions performs structural checks on a loaded catalog.
// Returns a combined error describing all problems found, or nil.
//
// Dependency references to unknown challenge IDs are deliberately allowed:
// listener expressions can mention challenges from other catalogs or game
// versions, and an unknown reference simply never completes. Cycles in the
// dependency graph are also allowed; the cascade's monotonic-completion
// rule makes them safe.
func validateDefinitions(groups []Group, challenges []Challenge) error {
	var errs []string

	groupSet := make(map[string]bool, len(groups))
	for _, g := range groups {
		if g.CategoryID == "" {
			errs = append(errs, "group with empty CategoryID")
			continue
		}
		if groupSet[g.CategoryID] {
			errs = append(errs, fmt.Sprintf("duplicate group ID: %q", g.CategoryID))
		}
		groupSet[g.CategoryID] = true
	}

	idSet := make(map[string]bool, len(challenges))
	for i := range challenges {
		c := &challenges[i]
		if c.ID == "" {
			errs = append(errs, "challenge with empty ID")
			continue
		}
		if idSet[c.ID] {
			errs = append(errs, fmt.Sprintf("duplicate challenge ID: %q", c.ID))
		}
		idSet[c.ID] = true

		if !groupSet[c.GroupID] {
			errs = append(errs, fmt.Sprintf("challenge %q belongs to unregistered group %q", c.ID, c.GroupID))
		}
		if !slices.Contains(AllScopes(), c.Scope) {
			errs = append(errs, fmt.Sprintf("challenge %q has invalid scope %q", c.ID, c.Scope))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
