package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/souljournal/internal/journal"
)

func (m *model) View() string {
	state := m.controller.State()
	m.refreshViewportIfDirty()
	parts := []string{
		m.heroView(),
		m.composerPanel(state),
	}
	if status := m.statusLine(state); status != "" {
		parts = append(parts, status)
	}
	parts = append(parts, m.viewport.View())
	if m.helpVisible {
		parts = append(parts, m.keyLegendView())
	}
	parts = append(parts, m.statusBarView(state))
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		heroTitleStyle.Render("Soul Journal"),
		taglineStyle.Render(heroTagline),
	)
}

func (m *model) composerPanel(state journal.State) string {
	return joinNonEmpty([]string{
		sectionHeaderStyle.Render("Today's Entry"),
		m.composer.View(),
		m.counterView(state.Draft),
	})
}

func (m *model) counterView(draft string) string {
	count := utf8.RuneCountInString(draft)
	label := fmt.Sprintf("%d/%d", count, journal.MaxDraftLength)
	if count >= journal.MaxDraftLength {
		return counterFullStyle.Render(label)
	}
	return counterStyle.Render(label)
}

// statusLine shows the loading spinner, else the controller's error, else any
// informational notice.
func (m *model) statusLine(state journal.State) string {
	switch {
	case m.stage == stageLoading:
		return helperStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), loadingMessage))
	case state.Error != "":
		return errorStyle.Render(state.Error)
	case m.infoMessage != "":
		return helperStyle.Render(m.infoMessage)
	default:
		return ""
	}
}

func (m *model) statusBarView(state journal.State) string {
	stats := []string{
		fmt.Sprintf("Entries %d/%d", len(state.History), journal.MaxHistory),
	}
	if m.config.AnalyzerName != "" {
		stats = append(stats, m.config.AnalyzerName)
	}
	if m.lastJob != nil {
		stats = append(stats, fmt.Sprintf("Last %s %s", m.lastJob.Kind, m.lastJob.Status))
	}
	stats = append(stats, "F1 help")
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"Ctrl+S", "Reflect"},
		{"Ctrl+L", "Clear draft"},
		{"PgUp/PgDn", "Scroll"},
		{"F1", "Toggle help"},
		{"Esc", "Quit"},
	}
	rows := []string{sectionHeaderStyle.Render("Keys")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description + "  ")
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
