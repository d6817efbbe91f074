package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/skamath/corpus/internal/qa"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Backend *qa.Client
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	composer := textinput.New()
	composer.Placeholder = composerPlaceholder
	composer.Focus()
	composer.CharLimit = 400
	composer.Width = 70

	searchInput := textinput.New()
	searchInput.Placeholder = "Search within the current result…"
	searchInput.CharLimit = 120
	searchInput.Width = 60

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	return &model{
		config:         config,
		stage:          stageCompose,
		phase:          phaseIdle,
		composer:       composer,
		searchInput:    searchInput,
		spinner:        spin,
		viewport:       vp,
		layout:         newPageLayout(),
		jobs:           newJobBus(),
		jobHistory:     map[string]jobSnapshot{},
		sectionAnchors: map[string]int{},
		searchMatchIdx: -1,
		viewportDirty:  true,
		infoMessage:    "Type a question and press Enter.",
	}
}

type model struct {
	config Config
	stage  stage
	phase  phase

	composer    textinput.Model
	searchInput textinput.Model
	spinner     spinner.Model
	viewport    viewport.Model
	layout      pageLayout

	jobs       *jobBus
	jobHistory map[string]jobSnapshot

	result     *qa.Result
	requestSeq int64
	indexing   bool

	viewportDirty   bool
	viewportContent string
	sectionAnchors  map[string]int
	searchQuery     string
	searchMatches   []matchRange
	searchMatchIdx  int

	errorMessage string
	infoMessage  string
	helpVisible  bool
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.phase == phaseAsking || m.indexing {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			return m.handleEsc()
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case jobSignalMsg:
		m.recordJob(msg.Snapshot)
		return m, nil
	case jobResultEnvelope:
		m.recordJob(msg.Snapshot)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case qaResultMsg:
		return m.handleAskResult(msg)
	case indexResultMsg:
		return m.handleIndexResult(msg)
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		m.composer.Width = m.layout.composerWidth
		m.markViewportDirty()
		return m, nil
	}
	return m, nil
}

func (m *model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageSearch:
		m.stage = stageBrowse
		m.searchInput.Blur()
		return m, nil
	case stageBrowse:
		m.stage = stageCompose
		m.composer.Focus()
		m.infoMessage = "Composer focused. Press Enter to ask."
		return m, nil
	default:
		if strings.TrimSpace(m.composer.Value()) != "" {
			m.composer.SetValue("")
			m.infoMessage = "Cleared the composer."
			return m, nil
		}
		if m.result != nil || m.viewportContent != "" {
			m.stage = stageBrowse
			m.composer.Blur()
			m.infoMessage = "Browse mode. Press Esc or Enter to return to the composer."
			return m, nil
		}
		return m, tea.Quit
	}
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageCompose:
		return m.handleComposeKey(key)
	case stageBrowse:
		return m.handleBrowseKey(key)
	case stageSearch:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(key)
		if key.Type == tea.KeyEnter {
			value := strings.TrimSpace(m.searchInput.Value())
			m.stage = stageBrowse
			m.applySearch(value)
			return m, cmd
		}
		return m, cmd
	default:
		return m, nil
	}
}

func (m *model) handleComposeKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(key)
	switch key.Type {
	case tea.KeyEnter:
		return m, tea.Batch(cmd, m.submitQuestion())
	case tea.KeyCtrlO:
		return m, tea.Batch(cmd, m.submitIndexPDF())
	}
	return m, cmd
}

func (m *model) handleBrowseKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	handled := true
	switch key.String() {
	case "enter", "i":
		m.stage = stageCompose
		m.composer.Focus()
		m.infoMessage = "Composer focused. Press Enter to ask."
	case "g":
		m.viewport.SetYOffset(0)
		m.infoMessage = "Jumped to top."
	case "G":
		m.viewport.GotoBottom()
		m.infoMessage = "Jumped to bottom."
	case "]":
		m.jumpToRelativeSection(1)
	case "[":
		m.jumpToRelativeSection(-1)
	case "/":
		m.stage = stageSearch
		m.searchInput.SetValue(m.searchQuery)
		m.searchInput.Focus()
	case "n":
		m.advanceSearch(1)
	case "N":
		m.advanceSearch(-1)
	case "?":
		m.helpVisible = !m.helpVisible
		if m.helpVisible {
			m.infoMessage = "Help overlay open. Press ? to hide."
		} else {
			m.infoMessage = "Help overlay hidden."
		}
	default:
		handled = false
	}
	if handled {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(key)
	return m, cmd
}

// submitQuestion converts the composer text into at most one in-flight
// request. A blank question is rejected before any network activity, leaving
// the displayed result untouched; a valid one clears the previous result
// wholesale so stale sections are never shown next to a new submission.
func (m *model) submitQuestion() tea.Cmd {
	question := strings.TrimSpace(m.composer.Value())
	if question == "" {
		m.errorMessage = validationNotice
		return nil
	}
	if m.phase == phaseAsking {
		m.infoMessage = "Still waiting on the previous question…"
		return nil
	}

	m.result = nil
	m.phase = phaseAsking
	m.requestSeq++
	m.errorMessage = ""
	m.infoMessage = "Asking the backend…"
	m.composer.SetValue("")
	m.clearSearch()
	m.markViewportDirty()
	return tea.Batch(
		m.spinner.Tick,
		m.jobs.Start(jobKindAsk, askQuestionJob(m.requestSeq, m.config.Backend, question)),
	)
}

func (m *model) submitIndexPDF() tea.Cmd {
	path := strings.TrimSpace(m.composer.Value())
	if path == "" {
		m.errorMessage = "Enter a PDF path before indexing."
		return nil
	}
	if m.indexing {
		m.infoMessage = "An upload is already running."
		return nil
	}

	m.indexing = true
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Uploading %s…", filepath.Base(path))
	m.composer.SetValue("")
	return tea.Batch(
		m.spinner.Tick,
		m.jobs.Start(jobKindIndex, indexPDFJob(m.config.Backend, path)),
	)
}

func (m *model) handleAskResult(msg qaResultMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.requestSeq {
		// A newer submission superseded this response; drop it.
		return m, nil
	}
	m.phase = phaseIdle
	if msg.err != nil {
		m.errorMessage = transportNotice
		m.infoMessage = "Check the backend address and try again."
		m.result = nil
		m.markViewportDirty()
		return m, nil
	}
	m.result = msg.result
	m.errorMessage = ""
	m.infoMessage = "Answer ready. Press Esc to browse, Enter to ask again."
	m.viewport.SetYOffset(0)
	m.markViewportDirty()
	return m, nil
}

func (m *model) handleIndexResult(msg indexResultMsg) (tea.Model, tea.Cmd) {
	m.indexing = false
	if msg.err != nil {
		m.errorMessage = fmt.Sprintf("index failed: %v", msg.err)
		m.infoMessage = "Fix the PDF path and retry with Ctrl+O."
		return m, nil
	}
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf(
		"Indexed %s (%d pages, %d chunks).",
		msg.report.Filename, msg.pages, msg.report.ChunksIndexed,
	)
	return m, nil
}

func (m *model) recordJob(snapshot jobSnapshot) {
	if m.jobHistory == nil {
		m.jobHistory = map[string]jobSnapshot{}
	}
	m.jobHistory[snapshot.ID] = snapshot
}

func (m *model) jobStatusBadges() []string {
	var running, failed int
	for _, snapshot := range m.jobHistory {
		switch snapshot.Status {
		case jobStatusRunning:
			running++
		case jobStatusFailed:
			failed++
		}
	}
	badges := []string{}
	if running > 0 {
		badges = append(badges, fmt.Sprintf("Jobs running %d", running))
	}
	if failed > 0 {
		badges = append(badges, fmt.Sprintf("Jobs failed %d", failed))
	}
	return badges
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

func (m *model) refreshViewportIfDirty() {
	if m.viewportDirty {
		m.refreshViewport()
	}
}

func (m *model) refreshViewport() {
	m.viewportDirty = false
	view := m.buildDisplayContent()
	m.viewportContent = view.content
	m.sectionAnchors = view.anchors

	content := view.content
	if m.searchQuery != "" {
		m.searchMatches = findMatches(content, m.searchQuery)
		if len(m.searchMatches) == 0 {
			m.searchMatchIdx = -1
		} else if m.searchMatchIdx < 0 || m.searchMatchIdx >= len(m.searchMatches) {
			m.searchMatchIdx = 0
		}
		content = highlightMatches(content, m.searchMatches, m.searchMatchIdx)
	} else {
		m.searchMatches = nil
		m.searchMatchIdx = -1
	}
	m.viewport.SetContent(content)
	if m.searchQuery != "" && len(m.searchMatches) > 0 && m.searchMatchIdx >= 0 {
		m.scrollToCurrentMatch()
	}
}

func (m *model) jumpToRelativeSection(delta int) {
	anchors := m.availableSections()
	if len(anchors) == 0 {
		m.infoMessage = "No result sections yet."
		return
	}
	current := m.viewport.YOffset
	if delta > 0 {
		for _, anchor := range anchors {
			if line := m.sectionAnchors[anchor]; line > current {
				m.jumpToSection(anchor)
				return
			}
		}
		m.infoMessage = "Already at the last section."
		return
	}
	for i := len(anchors) - 1; i >= 0; i-- {
		anchor := anchors[i]
		if line := m.sectionAnchors[anchor]; line < current {
			m.jumpToSection(anchor)
			return
		}
	}
	m.infoMessage = "Already at the first section."
}

func (m *model) availableSections() []string {
	if len(m.sectionAnchors) == 0 {
		return nil
	}
	var ordered []string
	for _, anchor := range sectionSequence {
		if _, ok := m.sectionAnchors[anchor]; ok {
			ordered = append(ordered, anchor)
		}
	}
	return ordered
}

func (m *model) jumpToSection(anchor string) {
	line, ok := m.sectionAnchors[anchor]
	if !ok {
		m.infoMessage = "Section unavailable."
		return
	}
	if line < 0 {
		line = 0
	}
	m.viewport.SetYOffset(line)
	m.infoMessage = fmt.Sprintf("Jumped to %s.", sectionLabel(anchor))
}

func (m *model) applySearch(query string) {
	query = strings.TrimSpace(query)
	m.searchInput.Blur()
	m.searchQuery = query
	if query == "" {
		m.searchMatches = nil
		m.searchMatchIdx = -1
		m.searchInput.SetValue("")
	} else {
		m.searchMatchIdx = 0
	}
	m.markViewportDirty()
	m.refreshViewportIfDirty()
	if query == "" {
		m.infoMessage = "Cleared search filter."
	} else if len(m.searchMatches) == 0 {
		m.infoMessage = fmt.Sprintf("No matches for %q.", query)
	} else {
		m.infoMessage = fmt.Sprintf("Search ready for %q.", query)
	}
}

func (m *model) clearSearch() {
	m.searchQuery = ""
	m.searchMatches = nil
	m.searchMatchIdx = -1
	m.searchInput.SetValue("")
	m.searchInput.Blur()
	m.markViewportDirty()
}

func (m *model) advanceSearch(delta int) {
	if m.searchQuery == "" {
		m.infoMessage = "Start a search with / first."
		return
	}
	if len(m.searchMatches) == 0 {
		m.infoMessage = fmt.Sprintf("No matches for %q.", m.searchQuery)
		return
	}
	count := len(m.searchMatches)
	m.searchMatchIdx = (m.searchMatchIdx + delta) % count
	if m.searchMatchIdx < 0 {
		m.searchMatchIdx += count
	}
	m.infoMessage = fmt.Sprintf("Match %d/%d for %q.", m.searchMatchIdx+1, count, m.searchQuery)
	m.markViewportDirty()
	m.refreshViewportIfDirty()
}

func (m *model) scrollToCurrentMatch() {
	if len(m.searchMatches) == 0 || m.searchMatchIdx < 0 || m.searchMatchIdx >= len(m.searchMatches) {
		return
	}
	match := m.searchMatches[m.searchMatchIdx]
	line := lineNumberAtOffset(m.viewportContent, match.start)
	target := line - 1
	if target < 0 {
		target = 0
	}
	m.viewport.SetYOffset(target)
}

func (m *model) searchStatusLine() string {
	if m.searchQuery == "" {
		return ""
	}
	if len(m.searchMatches) == 0 {
		return fmt.Sprintf("Search %q — no matches", m.searchQuery)
	}
	return fmt.Sprintf("Search %q — match %d/%d", m.searchQuery, m.searchMatchIdx+1, len(m.searchMatches))
}
