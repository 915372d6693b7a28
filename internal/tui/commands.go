package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/souljournal/internal/journal"
)

const (
	defaultAnalyzeTimeout = 3 * time.Minute
	// persistGrace leaves room to write history after a slow analysis.
	persistGrace = 15 * time.Second
)

func submitDeadline(analyzeTimeout time.Duration) time.Duration {
	if analyzeTimeout <= 0 {
		analyzeTimeout = defaultAnalyzeTimeout
	}
	return analyzeTimeout + persistGrace
}

func submitEntryJob(controller *journal.Controller, analyzeTimeout time.Duration) jobRunner {
	deadline := submitDeadline(analyzeTimeout)
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, deadline)
		defer cancel()
		_, err := controller.Submit(ctx)
		return submitResultMsg{err: err}, err
	}
}

// actionSubmitCmd starts a submission job unless the controller would reject
// it outright, in which case the rejection is already in the controller state.
func (m *model) actionSubmitCmd() tea.Cmd {
	if m.stage == stageLoading {
		return nil
	}
	if err := m.controller.CheckSubmit(); err != nil {
		m.markViewportDirty()
		return nil
	}
	m.stage = stageLoading
	m.composer.Blur()
	return tea.Batch(m.jobs.Start(jobKindAnalyze, submitEntryJob(m.controller, m.config.AnalyzeTimeout)), m.spinner.Tick)
}

func (m *model) actionClearDraftCmd() tea.Cmd {
	if m.stage == stageLoading {
		return nil
	}
	m.controller.ClearDraft()
	m.composer.Reset()
	return nil
}

func (m *model) actionToggleHelpCmd() tea.Cmd {
	m.helpVisible = !m.helpVisible
	return nil
}
