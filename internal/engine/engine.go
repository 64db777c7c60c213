// Package engine tracks per-session challenge progress, applies gameplay
// events through the external state-machine evaluator, and cascades
// completion through dependency trees.
package engine

import (
	"encoding/json"
	"log/slog"

	"github.com/oberon-games/waterfall/internal/catalog"
	"github.com/oberon-games/waterfall/internal/profile"
	"github.com/oberon-games/waterfall/internal/statemachine"
)

// Hooks are the engine's outbound notifications.
type Hooks struct {
	// ChallengeCompleted fires exactly once per newly completed
	// challenge, cascaded completions included. Fire-and-forget: the
	// engine ignores anything the hook does.
	ChallengeCompleted func(userID string, ch *catalog.Challenge, gameVersion string)
}

// Service is the challenge progression engine. All collaborators are
// injected; it holds no package-level state.
type Service struct {
	index    *catalog.Index
	eval     statemachine.Evaluator
	profiles profile.Repo
	log      *slog.Logger
	hooks    Hooks
}

// New creates a Service. A nil logger discards engine logging.
func New(index *catalog.Index, eval statemachine.Evaluator, profiles profile.Repo, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		index:    index,
		eval:     eval,
		profiles: profiles,
		log:      logger,
	}
}

// SetHooks installs the outbound notification hooks.
func (s *Service) SetHooks(h Hooks) {
	s.hooks = h
}

// Index exposes the definition index for presentation collaborators.
func (s *Service) Index() *catalog.Index {
	return s.index
}

// Graph exposes the dependency graph for diagnostic tooling.
func (s *Service) Graph() *catalog.DependencyGraph {
	return s.index.Graph()
}

// cloneContext deep-copies an evaluation context through JSON, the same
// representation the profile store round-trips state through. Definition
// defaults must always be cloned before use so live session state never
// aliases catalog data.
func cloneContext(m map[string]any) map[string]any {
	if len(m) == 0 {
		return map[string]any{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}
