package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/skamath/corpus/internal/qa"
)

func newTestModel(t *testing.T) *model {
	t.Helper()
	backend := qa.New(qa.Config{BaseURL: "http://127.0.0.1:0"})
	teaModel, ok := New(Config{Backend: backend}).(*model)
	if !ok {
		t.Fatalf("expected *model, got %T", teaModel)
	}
	return teaModel
}

func fixtureResult() *qa.Result {
	return &qa.Result{
		Answer:  "X is Y",
		Context: "Para about Y",
		Citations: map[string]qa.Citation{
			"C1": {Page: 3, Source: "doc.pdf"},
		},
	}
}

func TestSubmitRejectsWhitespaceQuestion(t *testing.T) {
	m := newTestModel(t)
	m.result = fixtureResult()
	m.composer.SetValue("   ")

	if cmd := m.submitQuestion(); cmd != nil {
		t.Fatalf("blank submission should not start a job, got %T", cmd)
	}
	if m.errorMessage != validationNotice {
		t.Fatalf("error message = %q, want %q", m.errorMessage, validationNotice)
	}
	if m.requestSeq != 0 {
		t.Fatalf("request sequence advanced to %d on a rejected submission", m.requestSeq)
	}
	if m.phase != phaseIdle {
		t.Fatalf("phase = %v, want idle", m.phase)
	}
	if m.result == nil || m.result.Answer != "X is Y" {
		t.Fatal("displayed result should stay untouched after a rejected submission")
	}
}

func TestSubmitClearsPreviousResult(t *testing.T) {
	m := newTestModel(t)
	m.result = fixtureResult()
	m.composer.SetValue("What is X?")

	cmd := m.submitQuestion()
	if cmd == nil {
		t.Fatal("valid submission should start the ask job")
	}
	if m.result != nil {
		t.Fatal("previous result should be cleared before the request is issued")
	}
	if m.phase != phaseAsking {
		t.Fatalf("phase = %v, want asking", m.phase)
	}
	if m.requestSeq != 1 {
		t.Fatalf("request sequence = %d, want 1", m.requestSeq)
	}
	if got := strings.TrimSpace(m.composer.Value()); got != "" {
		t.Fatalf("composer should clear after submission, got %q", got)
	}
}

func TestSubmitIgnoredWhileAsking(t *testing.T) {
	m := newTestModel(t)
	m.composer.SetValue("first question")
	if cmd := m.submitQuestion(); cmd == nil {
		t.Fatal("first submission should start a job")
	}

	m.composer.SetValue("second question")
	if cmd := m.submitQuestion(); cmd != nil {
		t.Fatal("submission while asking should be ignored")
	}
	if m.requestSeq != 1 {
		t.Fatalf("request sequence = %d, want 1", m.requestSeq)
	}
}

func TestAskResultSettlesSuccess(t *testing.T) {
	m := newTestModel(t)
	m.phase = phaseAsking
	m.requestSeq = 1

	if _, cmd := m.handleAskResult(qaResultMsg{seq: 1, result: fixtureResult()}); cmd != nil {
		t.Fatalf("result handling should not start a command, got %T", cmd)
	}
	if m.phase != phaseIdle {
		t.Fatalf("phase = %v, want idle after settling", m.phase)
	}
	if m.result == nil || m.result.Answer != "X is Y" {
		t.Fatalf("result not stored: %#v", m.result)
	}
	if m.errorMessage != "" {
		t.Fatalf("unexpected error message: %q", m.errorMessage)
	}
}

func TestAskResultTransportFailure(t *testing.T) {
	m := newTestModel(t)
	m.phase = phaseAsking
	m.requestSeq = 1

	m.handleAskResult(qaResultMsg{seq: 1, err: errors.New("connection refused")})
	if m.errorMessage != transportNotice {
		t.Fatalf("error message = %q, want %q", m.errorMessage, transportNotice)
	}
	if m.result != nil {
		t.Fatal("result should stay cleared after a transport failure")
	}
	if m.phase != phaseIdle {
		t.Fatalf("phase = %v, want idle after failure", m.phase)
	}
}

func TestStaleAskResultDiscarded(t *testing.T) {
	m := newTestModel(t)
	m.phase = phaseAsking
	m.requestSeq = 2

	m.handleAskResult(qaResultMsg{seq: 1, result: fixtureResult()})
	if m.result != nil {
		t.Fatal("stale response should never overwrite newer state")
	}
	if m.phase != phaseAsking {
		t.Fatalf("phase = %v, want asking while the newer request is in flight", m.phase)
	}
}

func TestJobEnvelopeDispatchesPayload(t *testing.T) {
	m := newTestModel(t)
	m.phase = phaseAsking
	m.requestSeq = 1

	envelope := jobResultEnvelope{
		Snapshot: jobSnapshot{ID: "ask-1", Kind: jobKindAsk, Status: jobStatusSucceeded},
		Payload:  qaResultMsg{seq: 1, result: fixtureResult()},
	}
	if _, cmd := m.Update(envelope); cmd != nil {
		t.Fatalf("envelope dispatch should not start a command, got %T", cmd)
	}
	if m.result == nil {
		t.Fatal("payload was not dispatched to the result handler")
	}
	if _, ok := m.jobHistory["ask-1"]; !ok {
		t.Fatal("job snapshot was not recorded")
	}
}

func TestIndexResultUpdatesStatus(t *testing.T) {
	m := newTestModel(t)
	m.indexing = true

	m.handleIndexResult(indexResultMsg{
		path:   "paper.pdf",
		pages:  7,
		report: &qa.IndexReport{Filename: "paper.pdf", ChunksIndexed: 12, Message: "PDF indexed successfully."},
	})
	if m.indexing {
		t.Fatal("indexing flag should clear after the upload settles")
	}
	if !strings.Contains(m.infoMessage, "paper.pdf") || !strings.Contains(m.infoMessage, "12") {
		t.Fatalf("info message missing report details: %q", m.infoMessage)
	}

	m.indexing = true
	m.handleIndexResult(indexResultMsg{path: "broken.pdf", err: errors.New("failed to open pdf")})
	if m.indexing {
		t.Fatal("indexing flag should clear after a failed upload")
	}
	if m.errorMessage == "" {
		t.Fatal("expected an error banner for a failed upload")
	}
}

func TestSubmitIndexRejectsEmptyPath(t *testing.T) {
	m := newTestModel(t)
	m.composer.SetValue("  ")
	if cmd := m.submitIndexPDF(); cmd != nil {
		t.Fatal("blank path should not start an index job")
	}
	if m.errorMessage == "" {
		t.Fatal("expected a validation banner for a blank path")
	}
}

func TestEscTogglesBrowseMode(t *testing.T) {
	m := newTestModel(t)
	m.result = fixtureResult()

	if _, _ = m.handleEsc(); m.stage != stageBrowse {
		t.Fatalf("stage = %v, want browse after Esc with a result", m.stage)
	}
	if m.composer.Focused() {
		t.Fatal("composer should blur in browse mode")
	}

	if _, _ = m.handleEsc(); m.stage != stageCompose {
		t.Fatalf("stage = %v, want compose after a second Esc", m.stage)
	}
	if !m.composer.Focused() {
		t.Fatal("composer should regain focus when leaving browse mode")
	}
}

func TestEscClearsComposerFirst(t *testing.T) {
	m := newTestModel(t)
	m.composer.SetValue("half-typed question")

	m.handleEsc()
	if got := m.composer.Value(); got != "" {
		t.Fatalf("composer not cleared, got %q", got)
	}
	if m.stage != stageCompose {
		t.Fatalf("stage = %v, want compose after clearing", m.stage)
	}
}

func TestBrowseKeysJumpBetweenSections(t *testing.T) {
	m := newTestModel(t)
	m.result = &qa.Result{
		Answer:  "X is Y",
		Context: strings.Repeat("retrieved passage line\n", 10),
		Citations: map[string]qa.Citation{
			"C1": {Page: 3, Source: "doc.pdf"},
		},
	}
	m.stage = stageBrowse
	m.viewport.Height = 5
	m.refreshViewport()

	if len(m.availableSections()) != 3 {
		t.Fatalf("expected three sections, got %v", m.availableSections())
	}

	m.handleBrowseKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})
	if m.infoMessage != "Jumped to Supporting Context." {
		t.Fatalf("unexpected info message after first jump: %q", m.infoMessage)
	}
	m.handleBrowseKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})
	if m.infoMessage != "Jumped to Citations." {
		t.Fatalf("unexpected info message after second jump: %q", m.infoMessage)
	}
	m.handleBrowseKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'['}})
	if m.infoMessage != "Jumped to Supporting Context." {
		t.Fatalf("unexpected info message after backward jump: %q", m.infoMessage)
	}
}

func TestSearchCyclesMatches(t *testing.T) {
	m := newTestModel(t)
	m.result = &qa.Result{
		Answer:  "Vector stores index vectors.",
		Context: "A vector store keeps vector embeddings.",
	}
	m.refreshViewport()

	m.applySearch("vector")
	if len(m.searchMatches) == 0 {
		t.Fatal("expected matches for a present term")
	}
	first := m.searchMatchIdx
	m.advanceSearch(1)
	if m.searchMatchIdx == first && len(m.searchMatches) > 1 {
		t.Fatal("advance did not move to the next match")
	}
	m.applySearch("")
	if m.searchQuery != "" || m.searchMatches != nil {
		t.Fatal("clearing the search should drop matches")
	}
}
