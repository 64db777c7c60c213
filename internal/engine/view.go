package engine

import (
	"context"
	"fmt"

	"github.com/oberon-games/waterfall/internal/catalog"
	"github.com/oberon-games/waterfall/internal/listener"
	"github.com/oberon-games/waterfall/internal/statemachine"
)

// ProgressionData is the persistent progression read-model for one
// challenge, as handed to presentation collaborators.
type ProgressionData struct {
	ChallengeID string
	ProfileID   string
	Completed   bool
	Ticked      bool
	State       map[string]any
}

// WaterfallStatus reports dependency satisfaction for a challenge.
// For dependency-bearing challenges the ID slices are populated; for
// N-of-M counter challenges Counter is true and only the counts are
// meaningful.
type WaterfallStatus struct {
	CompletedCount int
	TotalCount     int
	CompletedIDs   []string
	MissingIDs     []string
	Counter        bool
}

// Totals summarizes completion across grouped challenge lists.
type Totals struct {
	Challenges int
	Completed  int
}

// IsCompleted reports whether the user has completed the challenge.
func (s *Service) IsCompleted(ctx context.Context, userID, gameVersion, challengeID string) (bool, error) {
	return s.profiles.IsCompleted(ctx, userID, gameVersion, challengeID)
}

// IsUnticked reports whether the challenge is completed but not yet
// acknowledged in the UI.
func (s *Service) IsUnticked(ctx context.Context, userID, gameVersion, challengeID string) (bool, error) {
	rec, err := s.profiles.Get(ctx, userID, gameVersion, challengeID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return rec.Completed && !rec.Ticked, nil
}

// Tick acknowledges a completed challenge.
func (s *Service) Tick(ctx context.Context, userID, gameVersion, challengeID string) error {
	return s.profiles.SetTicked(ctx, userID, gameVersion, challengeID, true)
}

// PersistentProgression returns the progression record for one challenge,
// materializing a default record on first access. Completed challenges
// report a state of {"CurrentState": "Success"} regardless of stored
// context, and dependency-bearing challenges carry the completed subset
// of their dependencies under "CompletedChallenges".
func (s *Service) PersistentProgression(ctx context.Context, userID, gameVersion, challengeID string) (*ProgressionData, error) {
	ch, err := s.index.ChallengeByID(challengeID)
	if err != nil {
		return nil, err
	}

	rec, err := s.profiles.Ensure(ctx, userID, gameVersion, challengeID, cloneContext(ch.Context))
	if err != nil {
		return nil, fmt.Errorf("progression for %s: %w", challengeID, err)
	}

	state := rec.State
	if rec.Completed {
		// The client crashes on a completed challenge without an explicit
		// terminal state marker.
		state = map[string]any{"CurrentState": statemachine.StateSuccess}
	}

	if deps := s.index.Dependencies(challengeID); len(deps) > 0 {
		// Always an array in the serialized state, even when empty; the
		// client treats null and absent differently.
		completedDeps := []string{}
		for _, depID := range deps {
			done, err := s.profiles.IsCompleted(ctx, userID, gameVersion, depID)
			if err != nil {
				return nil, err
			}
			if done {
				completedDeps = append(completedDeps, depID)
			}
		}
		state["CompletedChallenges"] = completedDeps
	}

	return &ProgressionData{
		ChallengeID: challengeID,
		ProfileID:   userID,
		Completed:   rec.Completed,
		Ticked:      rec.Ticked,
		State:       state,
	}, nil
}

// DependencyStatus reports how far along a challenge's dependency tree or
// counter listener is. Returns nil when the challenge has neither.
func (s *Service) DependencyStatus(ctx context.Context, userID, gameVersion, challengeID string) (*WaterfallStatus, error) {
	ch, err := s.index.ChallengeByID(challengeID)
	if err != nil {
		return nil, err
	}

	deps := s.index.Dependencies(challengeID)
	if len(deps) > 0 {
		status := &WaterfallStatus{TotalCount: len(deps)}
		for _, depID := range deps {
			done, err := s.profiles.IsCompleted(ctx, userID, gameVersion, depID)
			if err != nil {
				return nil, err
			}
			if done {
				status.CompletedIDs = append(status.CompletedIDs, depID)
			} else {
				status.MissingIDs = append(status.MissingIDs, depID)
			}
		}
		status.CompletedCount = len(status.CompletedIDs)
		return status, nil
	}

	parsed := listener.Parse(ch.ContextListeners, ch.MergedContext())
	if parsed.CountData.Total > 0 {
		return &WaterfallStatus{
			CompletedCount: parsed.CountData.Count,
			TotalCount:     parsed.CountData.Total,
			Counter:        true,
		}, nil
	}

	return nil, nil
}

// CountCompleted tallies totals and completions across grouped lists.
// It reads the completed set once; fine for reports, too slow for the
// event path.
func (s *Service) CountCompleted(ctx context.Context, userID, gameVersion string, lists catalog.GroupedLists) (Totals, error) {
	completed, err := s.profiles.CompletedSet(ctx, userID, gameVersion)
	if err != nil {
		return Totals{}, err
	}

	var t Totals
	for _, challenges := range lists {
		for _, ch := range challenges {
			t.Challenges++
			if completed[ch.ID] {
				t.Completed++
			}
		}
	}
	return t, nil
}
