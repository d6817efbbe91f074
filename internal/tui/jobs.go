package tui

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type jobKind string

type jobStatus string

const (
	jobKindAsk   jobKind = "ask"
	jobKindIndex jobKind = "index"
)

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
)

// jobSnapshot is the per-job record kept by the model for the status meter.
type jobSnapshot struct {
	ID       string
	Kind     jobKind
	Status   jobStatus
	Duration time.Duration
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

// Start runs the job as a tea command, announcing it first so the status
// meter can show the in-flight badge before the result lands.
func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	return tea.Sequence(announceJob(id, kind), executeJob(id, kind, runner))
}

func announceJob(id string, kind jobKind) tea.Cmd {
	return func() tea.Msg {
		return jobSignalMsg{Snapshot: jobSnapshot{ID: id, Kind: kind, Status: jobStatusRunning}}
	}
}

func executeJob(id string, kind jobKind, runner jobRunner) tea.Cmd {
	return func() tea.Msg {
		started := time.Now()
		payload, err := runner(context.Background())
		snapshot := jobSnapshot{
			ID:       id,
			Kind:     kind,
			Status:   jobStatusSucceeded,
			Duration: time.Since(started),
		}
		if err != nil {
			snapshot.Status = jobStatusFailed
		}
		log.Printf("[jobs] %s %s (duration=%s, err=%v)", kind, snapshot.Status, snapshot.Duration, err)
		return jobResultEnvelope{Snapshot: snapshot, Payload: payload}
	}
}
