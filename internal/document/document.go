package document

import "fmt"

// DefaultContent seeds a fresh document when the link carries none.
const DefaultContent = "# Hello, world!\n\nStart typing your markdown here..."

// Mode selects how the document is presented.
type Mode int

const (
	ModeEdit Mode = iota
	ModePreview
)

func (m Mode) String() string {
	switch m {
	case ModeEdit:
		return "edit"
	case ModePreview:
		return "preview"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts exactly "edit" or "preview".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "edit":
		return ModeEdit, true
	case "preview":
		return ModePreview, true
	default:
		return ModeEdit, false
	}
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModePreview {
		return ModeEdit
	}
	return ModePreview
}

// State is the complete shareable document state.
type State struct {
	Content string
	Mode    Mode
}

// Default returns the seed state used before hydration.
func Default() State {
	return State{Content: DefaultContent, Mode: ModeEdit}
}

// Phase tracks whether startup hydration has finished.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
)

func (p Phase) String() string {
	if p == PhaseReady {
		return "ready"
	}
	return "loading"
}
