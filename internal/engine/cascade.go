package engine

import (
	"context"
	"fmt"
	"slices"
)

// Complete persists a challenge completion and cascades it through every
// dependency tree that the completion newly satisfies. via names the
// dependency that triggered a cascaded call, for diagnostics; top-level
// calls pass "".
//
// Complete is idempotent: an already-completed challenge returns without
// touching the store or firing the hook, so simultaneous satisfaction of
// the same tree notifies once. Termination on cyclic graphs follows from
// completion being monotonic: a tree is only entered when all of its
// dependencies are already completed, and entering marks it completed
// before recursing, so no tree is entered twice.
func (s *Service) Complete(ctx context.Context, sess *Session, challengeID string, via string) error {
	ch, err := s.index.ChallengeByID(challengeID)
	if err != nil {
		return fmt.Errorf("complete: %w", err)
	}

	done, err := s.profiles.IsCompleted(ctx, sess.UserID, sess.GameVersion, challengeID)
	if err != nil {
		return fmt.Errorf("complete %s: %w", challengeID, err)
	}
	if done {
		return nil
	}

	if via != "" {
		s.log.Debug("challenge completed", "challenge", challengeID, "via", via)
	} else {
		s.log.Debug("challenge completed", "challenge", challengeID)
	}

	if _, err := s.profiles.Ensure(ctx, sess.UserID, sess.GameVersion, challengeID, nil); err != nil {
		return fmt.Errorf("complete %s: %w", challengeID, err)
	}
	if err := s.profiles.MarkCompleted(ctx, sess.UserID, sess.GameVersion, challengeID); err != nil {
		return fmt.Errorf("complete %s: %w", challengeID, err)
	}

	if s.hooks.ChallengeCompleted != nil {
		s.hooks.ChallengeCompleted(sess.UserID, ch, sess.GameVersion)
	}

	graph := s.index.Graph()
	for _, treeID := range graph.TreeIDs() {
		if treeID == challengeID {
			// A tree may reference itself through listener parsing;
			// recursing into it would never terminate.
			continue
		}

		deps := graph.Dependencies(treeID)
		if !slices.Contains(deps, challengeID) {
			continue
		}

		satisfied := true
		for _, depID := range deps {
			depDone, err := s.profiles.IsCompleted(ctx, sess.UserID, sess.GameVersion, depID)
			if err != nil {
				return fmt.Errorf("check dependency %s of %s: %w", depID, treeID, err)
			}
			if !depDone {
				satisfied = false
				break
			}
		}
		if !satisfied {
			continue
		}

		if err := s.Complete(ctx, sess, treeID, challengeID); err != nil {
			return err
		}
	}
	return nil
}
