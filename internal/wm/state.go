package wm

import "fmt"

// State is a window's lifecycle state. Focus, visibility and decoration
// are tracked as separate fields, not folded into this enum, so every
// transition stays exhaustively matchable. The zero value is
// StateNormal, the state freshly created windows start in.
type State int

const (
	StateNormal State = iota
	StateHidden
	StateMinimized
	StateMaximized
	StateFullscreen
)

func (s State) String() string {
	switch s {
	case StateHidden:
		return "hidden"
	case StateNormal:
		return "normal"
	case StateMinimized:
		return "minimized"
	case StateMaximized:
		return "maximized"
	case StateFullscreen:
		return "fullscreen"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ParseState maps a state name back to its value, for layout snapshots.
func ParseState(name string) (State, error) {
	switch name {
	case "hidden":
		return StateHidden, nil
	case "normal":
		return StateNormal, nil
	case "minimized":
		return StateMinimized, nil
	case "maximized":
		return StateMaximized, nil
	case "fullscreen":
		return StateFullscreen, nil
	default:
		return StateNormal, fmt.Errorf("unknown window state %q", name)
	}
}
