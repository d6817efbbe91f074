package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/skamath/corpus/internal/qa"
	"github.com/skamath/corpus/internal/tui"
)

func main() {
	backend := flag.String("backend", "", "QA backend base URL (defaults to $CORPUS_BACKEND, then http://localhost:8000)")
	timeout := flag.Duration("timeout", 0, "per-request timeout; 0 lets requests run to completion")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	flag.Parse()

	httpClient := &http.Client{}
	if *timeout > 0 {
		httpClient.Timeout = *timeout
	}
	client := qa.New(qa.Config{
		BaseURL:    *backend,
		HTTPClient: httpClient,
	})

	opts := []tea.ProgramOption{}
	if !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{Backend: client}),
		opts...,
	)

	if _, err := program.Run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}
