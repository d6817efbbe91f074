package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *model) View() string {
	m.refreshViewportIfDirty()
	parts := []string{m.heroView(), m.viewport.View()}
	if status := m.searchStatusLine(); status != "" {
		parts = append(parts, helperStyle.Render(status))
	}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.phase == phaseAsking || m.indexing {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(message))
	}
	parts = append(parts, m.inputPanel(), m.sessionMeterView())
	if m.helpVisible {
		if legend := m.keyLegendView(); legend != "" {
			parts = append(parts, legend)
		}
		parts = append(parts, m.helpView())
	}
	return joinNonEmpty(parts)
}

func (m *model) inputPanel() string {
	if m.stage == stageSearch {
		return joinNonEmpty([]string{
			sectionHeaderStyle.Render("Search Current Result"),
			m.searchInput.View(),
			helperStyle.Render("Press Enter to apply search, Esc to cancel."),
		})
	}
	return joinNonEmpty([]string{
		sectionHeaderStyle.Render("Composer"),
		m.composer.View(),
		helperStyle.Render(m.composerHelpText()),
	})
}

func (m *model) composerHelpText() string {
	if m.phase == phaseAsking {
		return "Waiting for the backend… • Esc: browse • Ctrl+C: quit"
	}
	return "Enter: ask • Ctrl+O: index PDF path • Esc: browse • ?: help (browse mode)"
}

func (m *model) stageLabel() string {
	switch m.stage {
	case stageBrowse:
		return "BROWSE"
	case stageSearch:
		return "SEARCH"
	default:
		return "COMPOSE"
	}
}

func (m *model) sessionMeterView() string {
	stats := []string{
		fmt.Sprintf("Mode %s", m.stageLabel()),
		fmt.Sprintf("Backend %s", m.config.Backend.BaseURL()),
	}
	switch {
	case m.phase == phaseAsking:
		stats = append(stats, "Asking…")
	case m.result != nil:
		stats = append(stats, fmt.Sprintf("Citations %d", len(m.result.Citations)))
	default:
		stats = append(stats, "Idle")
	}
	if m.indexing {
		stats = append(stats, "Indexing…")
	}
	if badges := m.jobStatusBadges(); len(badges) > 0 {
		stats = append(stats, badges...)
	}
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"Enter", "Ask question"},
		{"Ctrl+O", "Index PDF path"},
		{"Esc", "Toggle browse mode"},
		{"[/]", "Jump sections"},
		{"/", "Search result"},
		{"n/N", "Next/prev match"},
		{"g/G", "Top or bottom"},
		{"?", "Toggle help"},
		{"Ctrl+C", "Quit"},
	}
	rows := []string{sectionHeaderStyle.Render("Navigation Cheatsheet")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description)
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m *model) helpView() string {
	lines := []string{
		sectionHeaderStyle.Render("How corpus works"),
		helperStyle.Render("• type a question in the composer and press Enter; the answer, supporting context, and citations render above."),
		helperStyle.Render("• each section appears only when the backend returned it; a missing answer shows a placeholder instead."),
		helperStyle.Render("• press Esc to browse the result, [ and ] to jump between sections, / to search inside it."),
		helperStyle.Render("• put a local PDF path in the composer and press Ctrl+O to index it into the backend."),
		helperStyle.Render("• errors show as a banner; the composer is ready again immediately afterwards."),
	}
	return helpBoxStyle.Render(strings.Join(lines, "\n"))
}

func (m *model) heroView() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		renderLogo(),
		taglineStyle.Render(heroTagline),
	)
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func renderLogo() string {
	if len(logoArtLines) == 0 {
		return ""
	}
	width := 0
	lineRunes := make([][]rune, len(logoArtLines))
	for i, line := range logoArtLines {
		runes := []rune(line)
		lineRunes[i] = runes
		if len(runes) > width {
			width = len(runes)
		}
	}
	width += 1 // allow horizontal shadow shift
	height := len(logoArtLines) + 1

	type cell struct {
		r     rune
		style lipgloss.Style
	}

	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}

	// draw shadow first (offset down/right)
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r == ' ' {
				continue
			}
			if y+1 < height && x+1 < width {
				grid[y+1][x+1] = cell{r: r, style: logoShadowStyle}
			}
		}
	}

	// draw face on top
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r == ' ' {
				continue
			}
			grid[y][x] = cell{r: r, style: logoFaceStyle}
		}
	}

	lines := make([]string, height)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			if c.r == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		lines[y] = b.String()
	}
	return logoContainerStyle.Render(strings.Join(lines, "\n"))
}

var (
	sectionHeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	citationLabelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("215"))
	searchHighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("190"))
	searchCurrentStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("229"))

	heroAccentColor = lipgloss.Color("#3fa7d6")
	heroInkColor    = lipgloss.Color("#001b2e")
	heroTextColor   = lipgloss.Color("#e3f2fd")

	taglineStyle       = lipgloss.NewStyle().Foreground(heroAccentColor).Italic(true)
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	helpBoxStyle       = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
	logoFaceStyle      = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor).Background(heroInkColor)
	logoShadowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#02111f"))
	logoContainerStyle = lipgloss.NewStyle().Padding(0, 1)
	logoArtLines       = []string{
		" ██████╗   ██████╗   ██████╗   ██████╗   ██╗   ██╗  ███████╗",
		"██╔════╝  ██╔═══██╗  ██╔══██╗  ██╔══██╗  ██║   ██║  ██╔════╝",
		"██║       ██║   ██║  ██████╔╝  ██████╔╝  ██║   ██║  ███████╗",
		"██║       ██║   ██║  ██╔══██╗  ██╔═══╝   ██║   ██║  ╚════██║",
		"╚██████╗  ╚██████╔╝  ██║  ██║  ██║       ╚██████╔╝  ███████║",
		" ╚═════╝   ╚═════╝   ╚═╝  ╚═╝  ╚═╝        ╚═════╝   ╚══════╝",
	}
)
