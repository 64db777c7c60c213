// Package tui renders the interactive challenge map: every tracked
// challenge grouped by category, with completion, acknowledgement and
// dependency progress at a glance.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oberon-games/waterfall/internal/catalog"
	"github.com/oberon-games/waterfall/internal/engine"
)

// Color palette following the in-game challenge board.
var (
	colPrimary = lipgloss.Color("#E11D48") // Crimson
	colAccent  = lipgloss.Color("#F59E0B") // Amber
	colSuccess = lipgloss.Color("#22C55E") // Green
	colText    = lipgloss.Color("#F8FAFC") // White
	colDim     = lipgloss.Color("#94A3B8") // Slate
	colBar     = lipgloss.Color("#1E293B") // Dark Slate
)

type rowKind int

const (
	rowGroupHeader rowKind = iota
	rowChallenge
)

type entry struct {
	challenge *catalog.Challenge
	completed bool
	unticked  bool
	status    *engine.WaterfallStatus
}

type row struct {
	kind  rowKind
	group *catalog.Group
	entry *entry
}

// Model is the root Bubble Tea model for the challenge map.
type Model struct {
	svc         *engine.Service
	userID      string
	gameVersion string

	rows         []row
	totals       engine.Totals
	cursor       int
	scrollOffset int
	width        int
	height       int
	err          error
}

// NewModel loads progression for every challenge matching the filter and
// builds the screen. Reads everything upfront; the map is a report, not
// a live session view.
func NewModel(svc *engine.Service, userID, gameVersion string, f catalog.Filter) (Model, error) {
	m := Model{svc: svc, userID: userID, gameVersion: gameVersion}

	ctx := context.Background()
	idx := svc.Index()
	lists := idx.FilterChallenges(f)

	totals, err := svc.CountCompleted(ctx, userID, gameVersion, lists)
	if err != nil {
		return m, err
	}
	m.totals = totals

	for _, groupID := range idx.GroupIDs() {
		challenges := lists[groupID]
		if len(challenges) == 0 {
			continue
		}
		group := idx.GroupByID(groupID)
		m.rows = append(m.rows, row{kind: rowGroupHeader, group: group})

		for _, ch := range challenges {
			e, err := m.loadEntry(ctx, ch)
			if err != nil {
				return m, err
			}
			m.rows = append(m.rows, row{kind: rowChallenge, group: group, entry: e})
		}
	}

	for i, r := range m.rows {
		if r.kind == rowChallenge {
			m.cursor = i
			break
		}
	}
	return m, nil
}

func (m *Model) loadEntry(ctx context.Context, ch *catalog.Challenge) (*entry, error) {
	completed, err := m.svc.IsCompleted(ctx, m.userID, m.gameVersion, ch.ID)
	if err != nil {
		return nil, err
	}
	unticked, err := m.svc.IsUnticked(ctx, m.userID, m.gameVersion, ch.ID)
	if err != nil {
		return nil, err
	}
	status, err := m.svc.DependencyStatus(ctx, m.userID, m.gameVersion, ch.ID)
	if err != nil {
		return nil, err
	}
	return &entry{challenge: ch, completed: completed, unticked: unticked, status: status}, nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			m.moveCursor(-1)
		case "down", "j":
			m.moveCursor(1)
		case "tab":
			m.nextGroup()
		case "shift+tab":
			m.prevGroup()
		case "enter", "t":
			m.tickSelected()
		}
	}
	return m, nil
}

// moveCursor moves by delta, skipping group headers.
func (m *Model) moveCursor(delta int) {
	next := m.cursor + delta
	for next >= 0 && next < len(m.rows) {
		if m.rows[next].kind == rowChallenge {
			m.cursor = next
			return
		}
		next += delta
	}
}

func (m *Model) nextGroup() {
	if len(m.rows) == 0 {
		return
	}
	current := m.rows[m.cursor].group
	for i := m.cursor + 1; i < len(m.rows); i++ {
		if m.rows[i].kind == rowChallenge && m.rows[i].group != current {
			m.cursor = i
			return
		}
	}
}

func (m *Model) prevGroup() {
	if len(m.rows) == 0 {
		return
	}
	current := m.rows[m.cursor].group
	for i := m.cursor - 1; i >= 0; i-- {
		if m.rows[i].kind == rowChallenge && m.rows[i].group != current {
			// Walk back to the first challenge of that group.
			target := m.rows[i].group
			first := i
			for j := i - 1; j >= 0 && m.rows[j].group == target; j-- {
				if m.rows[j].kind == rowChallenge {
					first = j
				}
			}
			m.cursor = first
			return
		}
	}
}

// tickSelected acknowledges the selected challenge if it is completed and
// still unticked.
func (m *Model) tickSelected() {
	if len(m.rows) == 0 {
		return
	}
	r := m.rows[m.cursor]
	if r.kind != rowChallenge || !r.entry.completed || !r.entry.unticked {
		return
	}
	if err := m.svc.Tick(context.Background(), m.userID, m.gameVersion, r.entry.challenge.ID); err != nil {
		m.err = err
		return
	}
	r.entry.unticked = false
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 1 {
		contentHeight = 1
	}

	content := m.renderRows(contentHeight)
	v.SetContent(lipgloss.JoinVertical(lipgloss.Left, header, content, footer))
	return v
}

func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().Foreground(colPrimary).Bold(true).
		Render("CHALLENGES")
	tally := lipgloss.NewStyle().Foreground(colDim).
		Render(fmt.Sprintf("%d / %d completed", m.totals.Completed, m.totals.Challenges))
	line := title + "  " + tally
	return lipgloss.NewStyle().Background(colBar).Width(m.width).Padding(0, 2).
		Render(line)
}

func (m Model) renderFooter() string {
	hints := "↑↓ navigate · tab group · enter acknowledge · q quit"
	if m.err != nil {
		hints = m.err.Error()
	}
	return lipgloss.NewStyle().Background(colBar).Foreground(colDim).
		Width(m.width).Padding(0, 2).Render(hints)
}

func (m *Model) renderRows(height int) string {
	m.adjustScroll(height)

	var lines []string
	visible := 0
	for i := m.scrollOffset; i < len(m.rows) && visible < height; i++ {
		r := m.rows[i]
		switch r.kind {
		case rowGroupHeader:
			lines = append(lines, m.renderGroupHeader(r.group))
		case rowChallenge:
			lines = append(lines, m.renderChallengeRow(r.entry, i == m.cursor))
		}
		visible++
	}
	for visible < height {
		lines = append(lines, "")
		visible++
	}
	return strings.Join(lines, "\n")
}

func (m *Model) adjustScroll(height int) {
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+height {
		m.scrollOffset = m.cursor - height + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

func (m Model) renderGroupHeader(g *catalog.Group) string {
	return lipgloss.NewStyle().Foreground(colAccent).Bold(true).
		Padding(1, 0, 0, 2).
		Render(strings.ToUpper(g.Name))
}

func (m Model) renderChallengeRow(e *entry, selected bool) string {
	icon := "○"
	switch {
	case e.completed && e.unticked:
		icon = "◉"
	case e.completed:
		icon = "●"
	}

	progress := ""
	if s := e.status; s != nil {
		progress = fmt.Sprintf("%d/%d", s.CompletedCount, s.TotalCount)
	}

	nameWidth := m.width - 20
	if nameWidth < 10 {
		nameWidth = 10
	}
	name := truncate(e.challenge.Name, nameWidth)

	var nameStyle, metaStyle lipgloss.Style
	switch {
	case selected:
		nameStyle = lipgloss.NewStyle().Foreground(colPrimary).Bold(true)
		metaStyle = lipgloss.NewStyle().Foreground(colPrimary)
	case e.completed:
		nameStyle = lipgloss.NewStyle().Foreground(colSuccess)
		metaStyle = lipgloss.NewStyle().Foreground(colDim)
	default:
		nameStyle = lipgloss.NewStyle().Foreground(colText)
		metaStyle = lipgloss.NewStyle().Foreground(colDim)
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	return fmt.Sprintf("  %s%s %s  %s",
		cursor,
		icon,
		nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, name)),
		metaStyle.Render(fmt.Sprintf("%6s", progress)),
	)
}

// truncate shortens s to max runes, ending with an ellipsis. Byte slicing
// would split multibyte runes in challenge names.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// Run starts the interactive challenge map.
func Run(svc *engine.Service, userID, gameVersion string, f catalog.Filter) error {
	m, err := NewModel(svc, userID, gameVersion, f)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m).Run()
	return err
}
