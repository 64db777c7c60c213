package engine

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/oberon-games/waterfall/internal/profile"
	"github.com/oberon-games/waterfall/internal/statemachine"
)

// Event is one gameplay event as received from the session plumbing.
type Event struct {
	Name    string
	Payload map[string]any

	// Timestamp in seconds, as carried by the game protocol.
	Timestamp float64
}

// ApplyEvent evaluates the event against every challenge tracked by the
// session. A single challenge's evaluator failure is logged and skipped;
// it never affects the other challenges. Challenges already completed in
// the persistent store are not re-evaluated, so cascaded completions
// earlier in the same event are honored.
//
// Callers must serialize ApplyEvent per session.
func (s *Service) ApplyEvent(ctx context.Context, sess *Session, ev Event) error {
	for _, challengeID := range slices.Sorted(maps.Keys(sess.Contexts)) {
		ch, err := s.index.ChallengeByID(challengeID)
		if err != nil {
			s.log.Warn("challenge not found", "challenge", challengeID)
			continue
		}
		data := sess.Contexts[challengeID]

		done, err := s.profiles.IsCompleted(ctx, sess.UserID, sess.GameVersion, challengeID)
		if err != nil {
			return err
		}
		if done {
			continue
		}

		previousState := data.State
		result, err := s.eval.Evaluate(
			ch.Definition,
			cloneContext(data.Context),
			ev.Payload,
			statemachine.Options{
				EventName:    ev.Name,
				CurrentState: previousState,
				Timers:       data.Timers,
				Timestamp:    ev.Timestamp,
			},
		)
		if err != nil {
			s.log.Error("evaluator failed",
				"challenge", challengeID,
				"event", ev.Name,
				"error", err)
			continue
		}

		// Persistent scopes write the evaluated context straight through;
		// completion checks in later sessions read it back.
		if ch.Scope.Persistent() {
			if err := s.profiles.SaveState(ctx, sess.UserID, sess.GameVersion, challengeID, result.Context); err != nil {
				s.log.Error("write-through failed",
					"challenge", challengeID,
					"error", err)
				continue
			}
		}

		// The session context always updates, whatever the scope, so
		// completion is determined from session state alone.
		data.State = result.State
		if result.Context != nil {
			data.Context = result.Context
		} else {
			data.Context = cloneContext(ch.Context)
		}
		data.Timers = result.Timers

		if previousState != statemachine.StateSuccess && result.State == statemachine.StateSuccess {
			if err := s.Complete(ctx, sess, challengeID, ""); err != nil {
				s.log.Error("completion cascade failed",
					"challenge", challengeID,
					"error", err)
			}
		}
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, profile.ErrNotFound)
}
