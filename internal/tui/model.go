package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/souljournal/internal/journal"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Controller *journal.Controller
	// AnalyzerName is shown in the status bar, e.g. "HTTP (api.example.com)".
	AnalyzerName string
	// AnalyzeTimeout is the analyzer's request timeout; the submission job
	// outlives it so the analyzer reports its own timeout.
	AnalyzeTimeout time.Duration
	// Notice is an informational line shown until the first submission.
	Notice string
	Now    func() time.Time
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	if config.Now == nil {
		config.Now = time.Now
	}

	composer := textarea.New()
	composer.Placeholder = composerPlaceholder
	composer.ShowLineNumbers = false
	// Length is enforced by the controller so over-long pastes can be
	// reported instead of silently truncated.
	composer.CharLimit = 0
	composer.MaxHeight = 0
	composer.SetWidth(76)
	composer.SetHeight(composerHeight)
	composer.SetValue(config.Controller.Draft())
	composer.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 12)
	vp.MouseWheelEnabled = true

	m := &model{
		config:      config,
		controller:  config.Controller,
		stage:       stageCompose,
		composer:    composer,
		spinner:     spin,
		viewport:    vp,
		layout:      newPageLayout(),
		jobs:        newJobBus(),
		infoMessage: config.Notice,
	}
	m.markViewportDirty()
	return m
}

type model struct {
	config     Config
	controller *journal.Controller
	stage      stage

	composer textarea.Model
	spinner  spinner.Model
	viewport viewport.Model
	layout   pageLayout
	jobs     *jobBus

	lastJob       *jobSnapshot
	infoMessage   string
	helpVisible   bool
	viewportDirty bool
}

func (m *model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.stage == stageLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case jobSignalMsg:
		snapshot := msg.Snapshot
		m.lastJob = &snapshot
		return m, nil
	case jobResultEnvelope:
		snapshot := msg.Snapshot
		m.lastJob = &snapshot
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case submitResultMsg:
		m.stage = stageCompose
		m.composer.Focus()
		if msg.err == nil {
			m.infoMessage = ""
			m.viewport.GotoTop()
		}
		m.markViewportDirty()
		return m, nil
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.composer.SetWidth(m.layout.viewportWidth)
		m.composer.SetHeight(m.layout.composerHeight)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		m.markViewportDirty()
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(key)
		return m, cmd
	case tea.KeyF1:
		return m, m.actionToggleHelpCmd()
	}
	if m.stage == stageLoading {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlS:
		return m, m.actionSubmitCmd()
	case tea.KeyCtrlL:
		return m, m.actionClearDraftCmd()
	}

	previous := m.composer.Value()
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(key)
	m.syncDraft(previous)
	return m, cmd
}

// syncDraft pushes the composer text into the controller and reverts the
// composer when the controller rejects it.
func (m *model) syncDraft(previous string) {
	next := m.composer.Value()
	if next == previous {
		return
	}
	if err := m.controller.SetDraft(next); err != nil {
		m.composer.SetValue(previous)
	}
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

func (m *model) refreshViewportIfDirty() {
	if !m.viewportDirty {
		return
	}
	m.viewport.SetContent(m.buildDisplayContent(m.controller.State()))
	m.viewportDirty = false
}
