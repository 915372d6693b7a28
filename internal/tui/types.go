package tui

type stage int

const (
	stageCompose stage = iota
	stageLoading
)

const heroTagline = "A quiet place to write, and a gentle mirror to read it back."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	composerHeight            = 8
)

const (
	loadingMessage      = "Finding your rhythm…"
	composerPlaceholder = "What's on your mind today?"
)

// submitResultMsg reports a finished submission; the outcome itself is read
// back from the controller state.
type submitResultMsg struct {
	err error
}
