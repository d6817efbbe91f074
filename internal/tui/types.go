package tui

type stage int

const (
	stageCompose stage = iota
	stageBrowse
	stageSearch
)

// phase tracks the request lifecycle. Settling a submission, success or
// failure, always returns the model to phaseIdle; there is no separate error
// phase, only the transient error banner.
type phase int

const (
	phaseIdle phase = iota
	phaseAsking
)

const (
	anchorAnswer    = "answer"
	anchorContext   = "context"
	anchorCitations = "citations"
)

var sectionSequence = []string{
	anchorAnswer,
	anchorContext,
	anchorCitations,
}

const heroTagline = "Ask your document corpus anything."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
)

const (
	composerPlaceholder = "Ask a question about the indexed documents…"
	validationNotice    = "Enter a question before submitting."
	transportNotice     = "Backend not reachable"
)
