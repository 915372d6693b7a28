package tui

import "github.com/charmbracelet/lipgloss"

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d4a574"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	counterStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	counterFullStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	heroAccentColor        = lipgloss.Color("#d4a574")
	heroEmberColor         = lipgloss.Color("#2b1d12")
	heroTextColor          = lipgloss.Color("#f5e6d3")
	heroSecondaryTextColor = lipgloss.Color("#b8855f")

	heroTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor).Background(heroEmberColor).Padding(0, 2)
	taglineStyle   = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(heroAccentColor).Padding(0, 1)
	keyStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(heroAccentColor).Padding(0, 1)
	promptStyle    = lipgloss.NewStyle().Italic(true).Foreground(heroTextColor)
	tagStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#e8d5c4")).Padding(0, 1)
	historyDate    = lipgloss.NewStyle().Foreground(heroSecondaryTextColor)
)
