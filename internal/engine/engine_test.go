package engine

import (
	"context"
	"testing"

	"github.com/oberon-games/waterfall/internal/catalog"
	"github.com/oberon-games/waterfall/internal/profile"
	"github.com/oberon-games/waterfall/internal/statemachine"
)

const (
	testUser    = "user-1"
	testVersion = "h3"
	testGroup   = "feats"
)

// chal builds a test challenge. states is the Simple evaluator's
// transition table; deps become a challengetree context listener.
func chal(id string, scope catalog.Scope, states map[string]any, deps ...string) catalog.Challenge {
	if states == nil {
		states = map[string]any{}
	}
	c := catalog.Challenge{
		ID:      id,
		Name:    id,
		GroupID: testGroup,
		Scope:   scope,
		Definition: map[string]any{
			"States": states,
		},
	}
	if len(deps) > 0 {
		refs := make([]any, len(deps))
		for i, d := range deps {
			refs[i] = d
		}
		c.ContextListeners = map[string]any{
			"watch": map[string]any{
				"type":       "challengetree",
				"challenges": refs,
			},
		}
	}
	return c
}

// oneShot is a transition table completing on a single event.
func oneShot(eventName string) map[string]any {
	return map[string]any{
		statemachine.StateStart: map[string]any{
			eventName: statemachine.StateSuccess,
		},
	}
}

func newTestService(t *testing.T, eval statemachine.Evaluator, challenges ...catalog.Challenge) (*Service, *profile.Memory) {
	t.Helper()
	idx, err := catalog.NewIndex([]catalog.Group{{CategoryID: testGroup, Name: "Feats"}}, challenges)
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	repo := profile.NewMemory()
	return New(idx, eval, repo, nil), repo
}

func startTestSession(t *testing.T, s *Service) *Session {
	t.Helper()
	sess, err := s.StartSession(context.Background(), testUser, testVersion, "contract-1", catalog.Filter{})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	return sess
}

// hookRecorder appends completed challenge IDs in firing order.
func hookRecorder(s *Service) *[]string {
	var fired []string
	s.SetHooks(Hooks{
		ChallengeCompleted: func(userID string, ch *catalog.Challenge, gameVersion string) {
			fired = append(fired, ch.ID)
		},
	})
	return &fired
}
