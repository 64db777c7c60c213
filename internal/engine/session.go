package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/oberon-games/waterfall/internal/catalog"
	"github.com/oberon-games/waterfall/internal/statemachine"
)

// ChallengeContext is the live evaluation state for one challenge within
// a session. Owned exclusively by the session; discarded with it.
type ChallengeContext struct {
	Context map[string]any
	State   string
	Timers  []statemachine.Timer
}

// Session holds every challenge context for one play session. Events for
// a session must be processed one at a time, in arrival order; sessions
// for different users are fully independent.
type Session struct {
	ID          string
	UserID      string
	GameVersion string
	ContractID  string
	Contexts    map[string]*ChallengeContext
}

// StartSession seeds a session with every challenge matching the filter.
// Profile- and hit-scoped challenges resume from their persistent state;
// session-scoped ones start from a fresh clone of the definition default.
// The persistent store is only read, never written.
func (s *Service) StartSession(ctx context.Context, userID, gameVersion, contractID string, f catalog.Filter) (*Session, error) {
	sess := &Session{
		ID:          uuid.NewString(),
		UserID:      userID,
		GameVersion: gameVersion,
		ContractID:  contractID,
		Contexts:    make(map[string]*ChallengeContext),
	}

	completed, err := s.profiles.CompletedSet(ctx, userID, gameVersion)
	if err != nil {
		return nil, fmt.Errorf("read completed set: %w", err)
	}

	groups := s.index.FilterChallenges(f)
	for _, groupID := range s.index.GroupIDs() {
		for _, ch := range groups[groupID] {
			state := statemachine.StateStart
			if completed[ch.ID] {
				state = statemachine.StateSuccess
			}

			evalCtx, err := s.seedContext(ctx, userID, gameVersion, ch)
			if err != nil {
				return nil, err
			}

			sess.Contexts[ch.ID] = &ChallengeContext{
				Context: evalCtx,
				State:   state,
				Timers:  []statemachine.Timer{},
			}
		}
	}

	s.log.Debug("session started",
		"session", sess.ID,
		"user", userID,
		"contract", contractID,
		"challenges", len(sess.Contexts))
	return sess, nil
}

func (s *Service) seedContext(ctx context.Context, userID, gameVersion string, ch *catalog.Challenge) (map[string]any, error) {
	if !ch.Scope.Persistent() {
		return cloneContext(ch.Context), nil
	}

	rec, err := s.profiles.Get(ctx, userID, gameVersion, ch.ID)
	switch {
	case err == nil:
		return rec.State, nil
	case isNotFound(err):
		// No progression yet; the record materializes lazily on the
		// first write, not here.
		return cloneContext(ch.Context), nil
	default:
		return nil, fmt.Errorf("seed context for %s: %w", ch.ID, err)
	}
}
