package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/skamath/corpus/internal/pdfinfo"
	"github.com/skamath/corpus/internal/qa"
)

type qaResultMsg struct {
	seq    int64
	result *qa.Result
	err    error
}

type indexResultMsg struct {
	path   string
	pages  int
	report *qa.IndexReport
	err    error
}

// askQuestionJob issues exactly one request for the given submission
// sequence. The sequence travels with the result so stale responses can be
// discarded by the model.
func askQuestionJob(seq int64, backend *qa.Client, question string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		result, err := backend.Ask(parent, question)
		return qaResultMsg{seq: seq, result: result, err: err}, err
	}
}

func indexPDFJob(backend *qa.Client, path string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		info, err := pdfinfo.Inspect(path)
		if err != nil {
			return indexResultMsg{path: path, err: err}, err
		}
		ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
		defer cancel()
		report, err := backend.IndexPDF(ctx, path)
		if err != nil {
			return indexResultMsg{path: path, err: err}, err
		}
		return indexResultMsg{path: path, pages: info.Pages, report: report}, nil
	}
}
