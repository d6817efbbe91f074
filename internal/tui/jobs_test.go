package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestJobBusAssignsSequentialIDs(t *testing.T) {
	bus := newJobBus()
	if got := bus.nextID(jobKindAsk); got != "ask-1" {
		t.Fatalf("first id = %q, want ask-1", got)
	}
	if got := bus.nextID(jobKindIndex); got != "index-2" {
		t.Fatalf("second id = %q, want index-2", got)
	}
}

func TestAnnounceJobReportsRunning(t *testing.T) {
	msg := announceJob("ask-1", jobKindAsk)()
	signal, ok := msg.(jobSignalMsg)
	if !ok {
		t.Fatalf("expected jobSignalMsg, got %T", msg)
	}
	if signal.Snapshot.ID != "ask-1" || signal.Snapshot.Status != jobStatusRunning {
		t.Fatalf("unexpected snapshot: %+v", signal.Snapshot)
	}
}

func TestExecuteJobWrapsOutcome(t *testing.T) {
	type doneMsg struct{ value int }

	msg := executeJob("ask-1", jobKindAsk, func(context.Context) (tea.Msg, error) {
		return doneMsg{value: 42}, nil
	})()
	envelope, ok := msg.(jobResultEnvelope)
	if !ok {
		t.Fatalf("expected jobResultEnvelope, got %T", msg)
	}
	if envelope.Snapshot.Status != jobStatusSucceeded {
		t.Fatalf("status = %q, want succeeded", envelope.Snapshot.Status)
	}
	if envelope.Snapshot.Duration < 0 {
		t.Fatalf("duration = %v, want non-negative", envelope.Snapshot.Duration)
	}
	if payload, ok := envelope.Payload.(doneMsg); !ok || payload.value != 42 {
		t.Fatalf("payload not passed through: %#v", envelope.Payload)
	}

	msg = executeJob("ask-2", jobKindAsk, func(context.Context) (tea.Msg, error) {
		return doneMsg{}, errors.New("boom")
	})()
	envelope, ok = msg.(jobResultEnvelope)
	if !ok {
		t.Fatalf("expected jobResultEnvelope, got %T", msg)
	}
	if envelope.Snapshot.Status != jobStatusFailed {
		t.Fatalf("status = %q, want failed", envelope.Snapshot.Status)
	}
}
