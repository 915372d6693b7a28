package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/souljournal/internal/journal"
)

type pageLayout struct {
	viewportWidth  int
	viewportHeight int
	composerHeight int
}

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:  76,
		viewportHeight: 12,
		composerHeight: composerHeight,
	}
}

func (l *pageLayout) Update(width, height int) {
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth

	l.composerHeight = height / 4
	if l.composerHeight < 3 {
		l.composerHeight = 3
	}
	if l.composerHeight > composerHeight {
		l.composerHeight = composerHeight
	}
	// hero, composer header, counter, status line, status bar and spacing
	const chrome = 9
	usable := height - chrome - l.composerHeight
	if usable < 6 {
		usable = 6
	}
	l.viewportHeight = usable
}

func (m *model) buildDisplayContent(state journal.State) string {
	cb := &strings.Builder{}
	if state.Result != nil {
		m.writeResult(cb, *state.Result)
		cb.WriteRune('\n')
	}
	m.writeHistory(cb, state.History)
	return cb.String()
}

func (m *model) writeResult(cb *strings.Builder, result journal.AnalysisResult) {
	wrap := m.wrapWidth(6)
	var lines []string
	lines = append(lines, moodHeading(result.Sentiment))
	if result.Summary != "" {
		lines = append(lines, wordwrap.String(result.Summary, wrap))
	}
	if result.Prompt != "" {
		lines = append(lines, "", helperStyle.Render("Reflect on this:"), promptStyle.Render(wordwrap.String(result.Prompt, wrap)))
	}
	if len(result.KeyPhrases) > 0 {
		tags := make([]string, 0, len(result.KeyPhrases))
		for _, phrase := range result.KeyPhrases {
			tags = append(tags, tagStyle.Render(phrase))
		}
		lines = append(lines, "", strings.Join(tags, " "))
	}
	cb.WriteString(resultBoxStyle.Render(strings.Join(lines, "\n")))
	cb.WriteRune('\n')
}

func (m *model) writeHistory(cb *strings.Builder, history []journal.HistoryRecord) {
	cb.WriteString(sectionHeaderStyle.Render("Previous Entries"))
	cb.WriteRune('\n')
	if len(history) == 0 {
		cb.WriteString(helperStyle.Render("Your reflections will gather here."))
		cb.WriteRune('\n')
		return
	}
	now := m.config.Now()
	for _, record := range history {
		cb.WriteString(historyLine(record, now))
		cb.WriteRune('\n')
	}
}

func historyLine(record journal.HistoryRecord, now time.Time) string {
	when := record.Timestamp
	if at, ok := record.Time(); ok {
		when = fmt.Sprintf("%s (%s)", at.Local().Format("Jan 2, 2006"), humanize.RelTime(at, now, "ago", "from now"))
	}
	emoji := "·"
	if mood, ok := record.Sentiment.Mood(); ok {
		emoji = mood.Emoji
	}
	return fmt.Sprintf("%s %s  %s", emoji, historyDate.Render(when), journal.Preview(record.Entry))
}

func moodHeading(sentiment journal.Sentiment) string {
	mood, ok := sentiment.Mood()
	if !ok {
		return sectionHeaderStyle.Render(sentiment.Label())
	}
	label := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(mood.Color)).Render(sentiment.Label())
	return mood.Emoji + " " + label
}

func (m *model) wrapWidth(padding int) int {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	if padding < 0 {
		padding = 0
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}
