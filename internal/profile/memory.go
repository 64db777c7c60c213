package profile

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is an in-memory Repo for tests and the simulate tooling.
// It mirrors the SQLite store's semantics, including state isolation:
// callers never observe each other's live maps.
type Memory struct {
	mu   sync.Mutex
	recs map[string]*Record
}

var _ Repo = (*Memory)(nil)

// NewMemory creates an empty in-memory repo.
func NewMemory() *Memory {
	return &Memory{recs: make(map[string]*Record)}
}

func key(userID, gameVersion, challengeID string) string {
	return userID + "\x00" + gameVersion + "\x00" + challengeID
}

func (m *Memory) Get(ctx context.Context, userID, gameVersion, challengeID string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[key(userID, gameVersion, challengeID)]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(rec), nil
}

func (m *Memory) Ensure(ctx context.Context, userID, gameVersion, challengeID string, defaultState map[string]any) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(userID, gameVersion, challengeID)
	rec, ok := m.recs[k]
	if !ok {
		rec = &Record{
			ChallengeID: challengeID,
			State:       copyState(defaultState),
		}
		m.recs[k] = rec
	}
	return copyRecord(rec), nil
}

func (m *Memory) SaveState(ctx context.Context, userID, gameVersion, challengeID string, state map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(userID, gameVersion, challengeID)
	rec, ok := m.recs[k]
	if !ok {
		rec = &Record{ChallengeID: challengeID}
		m.recs[k] = rec
	}
	rec.State = copyState(state)
	return nil
}

func (m *Memory) MarkCompleted(ctx context.Context, userID, gameVersion, challengeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(userID, gameVersion, challengeID)
	rec, ok := m.recs[k]
	if !ok {
		rec = &Record{ChallengeID: challengeID, State: map[string]any{}}
		m.recs[k] = rec
	}
	rec.Completed = true
	return nil
}

func (m *Memory) SetTicked(ctx context.Context, userID, gameVersion, challengeID string, ticked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[key(userID, gameVersion, challengeID)]
	if !ok {
		return ErrNotFound
	}
	rec.Ticked = ticked
	return nil
}

func (m *Memory) IsCompleted(ctx context.Context, userID, gameVersion, challengeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[key(userID, gameVersion, challengeID)]
	return ok && rec.Completed, nil
}

func (m *Memory) CompletedSet(ctx context.Context, userID, gameVersion string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := userID + "\x00" + gameVersion + "\x00"
	set := make(map[string]bool)
	for k, rec := range m.recs {
		if rec.Completed && len(k) > len(prefix) && k[:len(prefix)] == prefix {
			set[rec.ChallengeID] = true
		}
	}
	return set, nil
}

func (m *Memory) Reset(ctx context.Context, userID, gameVersion string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := userID + "\x00" + gameVersion + "\x00"
	for k := range m.recs {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			delete(m.recs, k)
		}
	}
	return nil
}

func copyRecord(rec *Record) *Record {
	return &Record{
		ChallengeID: rec.ChallengeID,
		Completed:   rec.Completed,
		Ticked:      rec.Ticked,
		State:       copyState(rec.State),
	}
}

// copyState deep-copies via JSON, matching how the SQLite store round
// trips state through its state column.
func copyState(state map[string]any) map[string]any {
	if state == nil {
		return map[string]any{}
	}
	b, err := json.Marshal(state)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}
