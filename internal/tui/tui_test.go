package tui

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/oberon-games/waterfall/internal/catalog"
	"github.com/oberon-games/waterfall/internal/engine"
	"github.com/oberon-games/waterfall/internal/profile"
	"github.com/oberon-games/waterfall/internal/statemachine"
)

func testService(t *testing.T, challenges ...catalog.Challenge) (*engine.Service, *profile.Memory) {
	t.Helper()
	idx, err := catalog.NewIndex([]catalog.Group{{CategoryID: "feats", Name: "Feats"}}, challenges)
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	repo := profile.NewMemory()
	return engine.New(idx, statemachine.Simple{}, repo, nil), repo
}

func testChallenge(id string) catalog.Challenge {
	return catalog.Challenge{
		ID:      id,
		Name:    id,
		GroupID: "feats",
		Scope:   catalog.ScopeSession,
	}
}

func TestNewModel_BuildsGroupedRows(t *testing.T) {
	svc, _ := testService(t, testChallenge("ch-a"), testChallenge("ch-b"))

	m, err := NewModel(svc, "user-1", "h3", catalog.Filter{})
	if err != nil {
		t.Fatal(err)
	}

	if len(m.rows) != 3 {
		t.Fatalf("got %d rows, want header + 2 challenges", len(m.rows))
	}
	if m.rows[0].kind != rowGroupHeader {
		t.Error("first row should be the group header")
	}
	if m.cursor != 1 {
		t.Errorf("cursor at %d, want first challenge row", m.cursor)
	}
}

func TestUpdate_EmptyRowsIsNoOp(t *testing.T) {
	svc, _ := testService(t)

	m, err := NewModel(svc, "user-1", "h3", catalog.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(m.rows) != 0 {
		t.Fatalf("got %d rows, want none", len(m.rows))
	}

	// Every navigation and action key must no-op rather than panic when
	// the filter matched nothing.
	keys := []tea.KeyPressMsg{
		{Code: tea.KeyTab},
		{Code: tea.KeyTab, Mod: tea.ModShift},
		{Code: tea.KeyEnter},
		{Code: 't', Text: "t"},
		{Code: tea.KeyUp},
		{Code: tea.KeyDown},
	}
	var model tea.Model = m
	for _, k := range keys {
		model, _ = model.Update(k)
	}
	if got := model.(Model); len(got.rows) != 0 {
		t.Errorf("rows changed: %d", len(got.rows))
	}
}

func TestUpdate_EnterAcknowledgesCompleted(t *testing.T) {
	svc, repo := testService(t, testChallenge("ch-a"))
	ctx := context.Background()
	if err := repo.MarkCompleted(ctx, "user-1", "h3", "ch-a"); err != nil {
		t.Fatal(err)
	}

	m, err := NewModel(svc, "user-1", "h3", catalog.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if !m.rows[m.cursor].entry.unticked {
		t.Fatal("challenge should start unticked")
	}

	model, _ := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	got := model.(Model)
	if got.rows[got.cursor].entry.unticked {
		t.Error("enter should acknowledge the selected challenge")
	}

	unticked, err := svc.IsUnticked(ctx, "user-1", "h3", "ch-a")
	if err != nil {
		t.Fatal(err)
	}
	if unticked {
		t.Error("acknowledgement not persisted")
	}
}

func TestTruncate_KeepsRunesIntact(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a long challenge name", 10, "a long ch…"},
		{"Sturmmöwenjäger", 10, "Sturmmöwe…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
