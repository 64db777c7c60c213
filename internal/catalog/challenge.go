package catalog

// Scope is the lifetime class of a challenge's evaluation context.
type Scope string

const (
	// ScopeSession contexts live only as long as the play session.
	ScopeSession Scope = "session"
	// ScopeProfile contexts persist on the user's profile across sessions.
	ScopeProfile Scope = "profile"
	// ScopeHit contexts persist per mission on the user's profile.
	ScopeHit Scope = "hit"
)

// AllScopes returns the valid scopes.
func AllScopes() []Scope {
	return []Scope{ScopeSession, ScopeProfile, ScopeHit}
}

// Persistent reports whether contexts for this scope are written through
// to the user's profile.
func (s Scope) Persistent() bool {
	return s == ScopeProfile || s == ScopeHit
}

// Challenge is a single challenge definition. Definitions are immutable
// after catalog load; the engine never mutates them.
type Challenge struct {
	ID          string
	Name        string
	Description string
	Icon        string

	// GroupID is the category the challenge belongs to, assigned at
	// registration time from the group file it was loaded from.
	GroupID string

	// Location placement, used for session filtering.
	LocationID       string
	ParentLocationID string

	// InclusionContracts limits the challenge to specific contracts.
	// Empty means the location placement alone decides inclusion.
	InclusionContracts []string

	Scope Scope

	// Definition is the declarative transition specification consumed by
	// the external state-machine evaluator. Opaque to the engine.
	Definition map[string]any

	// Context is the default evaluation context. Deep-cloned before any
	// use so live session state never aliases definition data.
	Context map[string]any

	// Constants are merged with Context when parsing context listeners.
	Constants map[string]any

	// ContextListeners declare references to other challenges.
	ContextListeners map[string]any

	Tags []string
	XP   int
}

// MergedContext returns Context and Constants merged into a fresh map,
// with Constants taking precedence. Used for listener parsing only; the
// result must not be used as live evaluation state.
func (c *Challenge) MergedContext() map[string]any {
	merged := make(map[string]any, len(c.Context)+len(c.Constants))
	for k, v := range c.Context {
		merged[k] = v
	}
	for k, v := range c.Constants {
		merged[k] = v
	}
	return merged
}

// Group is a challenge category.
type Group struct {
	CategoryID  string
	Name        string
	Description string
	Icon        string
	Image       string
}
