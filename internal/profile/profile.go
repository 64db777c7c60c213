// Package profile persists per-user challenge progression. Records are
// keyed by (user, game version, challenge) and outlive any play session;
// the engine reconciles them with session state at session start and on
// every successful transition.
package profile

import (
	"context"
	"errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("progression record not found")

// Record is a user's persistent progression for one challenge.
// Completed is monotonic: once true it is never reset by the engine
// (only an explicit Reset wipes records).
type Record struct {
	ChallengeID string
	Completed   bool
	Ticked      bool
	State       map[string]any
}

// Repo provides progression record access. Implementations must
// serialize writes per (user, game version) pair; the engine relies on
// read-your-own-writes for the cascade's termination argument.
type Repo interface {
	// Get returns the record, or ErrNotFound.
	Get(ctx context.Context, userID, gameVersion, challengeID string) (*Record, error)

	// Ensure returns the record, materializing a default one
	// (Completed=false, Ticked=false, State=defaultState) if absent.
	Ensure(ctx context.Context, userID, gameVersion, challengeID string, defaultState map[string]any) (*Record, error)

	// SaveState upserts the free-form context state, preserving the
	// Completed and Ticked bits.
	SaveState(ctx context.Context, userID, gameVersion, challengeID string, state map[string]any) error

	// MarkCompleted sets Completed=true, materializing the record first
	// if needed. It never clears the bit.
	MarkCompleted(ctx context.Context, userID, gameVersion, challengeID string) error

	// SetTicked records UI acknowledgment of a completed challenge.
	SetTicked(ctx context.Context, userID, gameVersion, challengeID string, ticked bool) error

	// IsCompleted is the fast completion check used by the cascade.
	IsCompleted(ctx context.Context, userID, gameVersion, challengeID string) (bool, error)

	// CompletedSet returns the set of completed challenge IDs for a user.
	CompletedSet(ctx context.Context, userID, gameVersion string) (map[string]bool, error)

	// Reset deletes every record for the user. Administrative only.
	Reset(ctx context.Context, userID, gameVersion string) error
}
