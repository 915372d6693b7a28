package tui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/souljournal/internal/logging"
)

type jobKind string

type jobStatus string

const (
	jobKindAnalyze jobKind = "analyze"
)

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
)

type jobSnapshot struct {
	ID          string
	Kind        jobKind
	Status      jobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Err         string
	Duration    time.Duration
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

type jobBus struct {
	counter int64
}

func newJobBus() *jobBus {
	return &jobBus{}
}

func (b *jobBus) nextID(kind jobKind) string {
	idx := atomic.AddInt64(&b.counter, 1)
	return fmt.Sprintf("%s-%d", kind, idx)
}

// Start emits a running signal, then runs runner off the event loop and
// delivers its payload wrapped in a jobResultEnvelope.
func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	started := time.Now()
	startSnapshot := jobSnapshot{ID: id, Kind: kind, Status: jobStatusRunning, StartedAt: started}
	startCmd := func() tea.Msg {
		logging.Info("[jobs] started", "id", id, "kind", kind)
		return jobSignalMsg{Snapshot: startSnapshot}
	}

	runCmd := func() tea.Msg {
		return b.run(context.Background(), id, kind, started, runner)
	}

	return tea.Sequence(startCmd, runCmd)
}

func (b *jobBus) run(ctx context.Context, id string, kind jobKind, started time.Time, runner jobRunner) jobResultEnvelope {
	payload, err := runner(ctx)
	snapshot := jobSnapshot{
		ID:          id,
		Kind:        kind,
		StartedAt:   started,
		CompletedAt: time.Now(),
	}
	if err != nil {
		snapshot.Status = jobStatusFailed
		snapshot.Err = err.Error()
	} else {
		snapshot.Status = jobStatusSucceeded
	}
	snapshot.Duration = snapshot.CompletedAt.Sub(started)
	if err != nil {
		logging.Error("[jobs] "+string(snapshot.Status), "id", id, "kind", kind, "duration", snapshot.Duration, "err", err)
	} else {
		logging.Info("[jobs] "+string(snapshot.Status), "id", id, "kind", kind, "duration", snapshot.Duration)
	}
	return jobResultEnvelope{Snapshot: snapshot, Payload: payload}
}
