package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed Repo.
type Store struct {
	db *sql.DB

	// mu guards locks; each user gets a mutex so writes for one user
	// are serialized without cross-user contention.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ Repo = (*Store)(nil)

// Open creates a Store connected to the SQLite database at dsn, applies
// recommended pragmas, and creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, locks: make(map[string]*sync.Mutex)}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// applyPragmas configures SQLite for single-writer-per-user workloads.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS challenge_progression (
		user_id      TEXT NOT NULL,
		game_version TEXT NOT NULL,
		challenge_id TEXT NOT NULL,
		completed    INTEGER NOT NULL DEFAULT 0,
		ticked       INTEGER NOT NULL DEFAULT 0,
		state        TEXT NOT NULL DEFAULT '{}',
		updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, game_version, challenge_id)
	)`)
	return err
}

// userLock returns the mutex serializing writes for one user+version.
func (s *Store) userLock(userID, gameVersion string) *sync.Mutex {
	key := userID + "\x00" + gameVersion
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func (s *Store) Get(ctx context.Context, userID, gameVersion, challengeID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT completed, ticked, state FROM challenge_progression
		 WHERE user_id = ? AND game_version = ? AND challenge_id = ?`,
		userID, gameVersion, challengeID)

	var completed, ticked int
	var stateJSON string
	if err := row.Scan(&completed, &ticked, &stateJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query progression: %w", err)
	}

	state, err := decodeState(stateJSON)
	if err != nil {
		return nil, fmt.Errorf("decode state for %s: %w", challengeID, err)
	}
	return &Record{
		ChallengeID: challengeID,
		Completed:   completed != 0,
		Ticked:      ticked != 0,
		State:       state,
	}, nil
}

func (s *Store) Ensure(ctx context.Context, userID, gameVersion, challengeID string, defaultState map[string]any) (*Record, error) {
	lock := s.userLock(userID, gameVersion)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.Get(ctx, userID, gameVersion, challengeID)
	if err == nil {
		return rec, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	stateJSON, err := encodeState(defaultState)
	if err != nil {
		return nil, fmt.Errorf("encode default state: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO challenge_progression (user_id, game_version, challenge_id, state)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, game_version, challenge_id) DO NOTHING`,
		userID, gameVersion, challengeID, stateJSON)
	if err != nil {
		return nil, fmt.Errorf("insert progression: %w", err)
	}
	return s.Get(ctx, userID, gameVersion, challengeID)
}

func (s *Store) SaveState(ctx context.Context, userID, gameVersion, challengeID string, state map[string]any) error {
	lock := s.userLock(userID, gameVersion)
	lock.Lock()
	defer lock.Unlock()

	stateJSON, err := encodeState(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO challenge_progression (user_id, game_version, challenge_id, state, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, game_version, challenge_id)
		 DO UPDATE SET state = excluded.state, updated_at = CURRENT_TIMESTAMP`,
		userID, gameVersion, challengeID, stateJSON)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *Store) MarkCompleted(ctx context.Context, userID, gameVersion, challengeID string) error {
	lock := s.userLock(userID, gameVersion)
	lock.Lock()
	defer lock.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO challenge_progression (user_id, game_version, challenge_id, completed, updated_at)
		 VALUES (?, ?, ?, 1, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, game_version, challenge_id)
		 DO UPDATE SET completed = 1, updated_at = CURRENT_TIMESTAMP`,
		userID, gameVersion, challengeID)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

func (s *Store) SetTicked(ctx context.Context, userID, gameVersion, challengeID string, ticked bool) error {
	lock := s.userLock(userID, gameVersion)
	lock.Lock()
	defer lock.Unlock()

	tick := 0
	if ticked {
		tick = 1
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE challenge_progression SET ticked = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ? AND game_version = ? AND challenge_id = ?`,
		tick, userID, gameVersion, challengeID)
	if err != nil {
		return fmt.Errorf("set ticked: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) IsCompleted(ctx context.Context, userID, gameVersion, challengeID string) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT completed FROM challenge_progression
		 WHERE user_id = ? AND game_version = ? AND challenge_id = ?`,
		userID, gameVersion, challengeID)

	var completed int
	if err := row.Scan(&completed); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("query completed: %w", err)
	}
	return completed != 0, nil
}

func (s *Store) CompletedSet(ctx context.Context, userID, gameVersion string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT challenge_id FROM challenge_progression
		 WHERE user_id = ? AND game_version = ? AND completed = 1`,
		userID, gameVersion)
	if err != nil {
		return nil, fmt.Errorf("query completed set: %w", err)
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		set[id] = true
	}
	return set, rows.Err()
}

func (s *Store) Reset(ctx context.Context, userID, gameVersion string) error {
	lock := s.userLock(userID, gameVersion)
	lock.Lock()
	defer lock.Unlock()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM challenge_progression WHERE user_id = ? AND game_version = ?`,
		userID, gameVersion)
	if err != nil {
		return fmt.Errorf("reset progression: %w", err)
	}
	return nil
}

func encodeState(state map[string]any) (string, error) {
	if state == nil {
		state = map[string]any{}
	}
	b, err := json.Marshal(state)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeState(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var state map[string]any
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, err
	}
	if state == nil {
		state = map[string]any{}
	}
	return state, nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. WATERFALL_DB environment variable
// 2. $XDG_DATA_HOME/waterfall/waterfall.db
// 3. ~/.local/share/waterfall/waterfall.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("WATERFALL_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "waterfall", "waterfall.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
