package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	viewportWidth  int
	viewportHeight int
	composerWidth  int
}

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:  80,
		viewportHeight: 20,
		composerWidth:  70,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth
	l.composerWidth = innerWidth
	// Hero, composer panel, status meter, and message lines share the screen
	// with the viewport.
	const chrome = 12
	contentHeight := height - chrome
	if contentHeight < 6 {
		contentHeight = 6
	}
	l.viewportHeight = contentHeight
}

type displayView struct {
	content string
	anchors map[string]int
}

type contentBuilder struct {
	builder strings.Builder
	lines   int
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
	cb.lines += strings.Count(s, "\n")
}

func (cb *contentBuilder) WriteRune(r rune) {
	cb.builder.WriteRune(r)
	if r == '\n' {
		cb.lines++
	}
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

func (cb *contentBuilder) Line() int {
	return cb.lines
}

// buildDisplayContent maps the current result to the three display sections.
// Each section is gated on its own field only: answer when non-empty, context
// when non-empty (rendered preformatted, whitespace intact), citations when
// the mapping is present, entries in sorted label order.
func (m *model) buildDisplayContent() displayView {
	if m.result == nil {
		return m.buildIdleContent()
	}

	cb := &contentBuilder{}
	anchors := map[string]int{}
	baseWrap := m.wrapWidth(0)
	result := m.result

	if result.Answer != "" {
		anchors[anchorAnswer] = cb.Line()
		cb.WriteString(sectionHeaderStyle.Render("Answer"))
		cb.WriteRune('\n')
		cb.WriteString(wordwrap.String(result.Answer, baseWrap))
		cb.WriteRune('\n')
	}

	if result.Context != "" {
		if cb.Line() > 0 {
			cb.WriteRune('\n')
		}
		anchors[anchorContext] = cb.Line()
		cb.WriteString(sectionHeaderStyle.Render("Supporting Context"))
		cb.WriteRune('\n')
		// Preformatted: the retrieved passage keeps its own line breaks and
		// indentation.
		cb.WriteString(result.Context)
		cb.WriteRune('\n')
	}

	if result.Citations != nil {
		if cb.Line() > 0 {
			cb.WriteRune('\n')
		}
		anchors[anchorCitations] = cb.Line()
		cb.WriteString(sectionHeaderStyle.Render("Citations"))
		cb.WriteRune('\n')
		if len(result.Citations) == 0 {
			cb.WriteString(helperStyle.Render("The backend returned an empty citation set."))
			cb.WriteRune('\n')
		}
		for _, label := range result.CitationLabels() {
			citation := result.Citations[label]
			cb.WriteString(fmt.Sprintf(
				" %s  Page %v  •  Source %s",
				citationLabelStyle.Render(label), citation.Page, citation.Source,
			))
			cb.WriteRune('\n')
		}
	}

	return displayView{content: cb.String(), anchors: anchors}
}

func (m *model) buildIdleContent() displayView {
	cb := &contentBuilder{}
	cb.WriteString(sectionHeaderStyle.Render("Ask the corpus"))
	cb.WriteRune('\n')
	cb.WriteString(helperStyle.Render("Type a question below and press Enter to query the backend."))
	cb.WriteRune('\n')
	cb.WriteString(helperStyle.Render("Ctrl+O uploads the composer text as a PDF path for indexing."))
	cb.WriteRune('\n')
	return displayView{content: cb.String(), anchors: map[string]int{}}
}

func sectionLabel(anchor string) string {
	switch anchor {
	case anchorAnswer:
		return "Answer"
	case anchorContext:
		return "Supporting Context"
	case anchorCitations:
		return "Citations"
	default:
		return "section"
	}
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

type matchRange struct {
	start int
	end   int
}

func findMatches(content, query string) []matchRange {
	lowerContent := strings.ToLower(content)
	lowerQuery := strings.ToLower(query)
	if lowerQuery == "" {
		return nil
	}
	var matches []matchRange
	searchIdx := 0
	for {
		idx := strings.Index(lowerContent[searchIdx:], lowerQuery)
		if idx == -1 {
			break
		}
		start := searchIdx + idx
		end := start + len(lowerQuery)
		matches = append(matches, matchRange{start: start, end: end})
		searchIdx = end
		if searchIdx >= len(content) {
			break
		}
	}
	return matches
}

func highlightMatches(content string, matches []matchRange, current int) string {
	if len(matches) == 0 {
		return content
	}
	var b strings.Builder
	pos := 0
	for idx, match := range matches {
		if match.start > len(content) {
			break
		}
		if match.start > pos {
			b.WriteString(content[pos:match.start])
		}
		segmentEnd := match.end
		if segmentEnd > len(content) {
			segmentEnd = len(content)
		}
		segment := content[match.start:segmentEnd]
		if idx == current {
			b.WriteString(searchCurrentStyle.Render(segment))
		} else {
			b.WriteString(searchHighlightStyle.Render(segment))
		}
		pos = segmentEnd
	}
	if pos < len(content) {
		b.WriteString(content[pos:])
	}
	return b.String()
}

func lineNumberAtOffset(content string, offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset > len(content) {
		offset = len(content)
	}
	return strings.Count(content[:offset], "\n")
}
