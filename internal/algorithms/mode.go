package algorithms

import "fmt"

// Mode selects the per-frame transform.
type Mode int

const (
	ModeEdges Mode = iota
	ModeGrayscale
	ModeInvert
	ModeBlur
)

// Modes lists every defined mode in wire order.
var Modes = []Mode{ModeEdges, ModeGrayscale, ModeInvert, ModeBlur}

// ResolveMode maps a raw host integer to a Mode. Anything outside the
// defined set resolves to ModeEdges.
func ResolveMode(raw int32) Mode {
	switch Mode(raw) {
	case ModeGrayscale:
		return ModeGrayscale
	case ModeInvert:
		return ModeInvert
	case ModeBlur:
		return ModeBlur
	default:
		return ModeEdges
	}
}

func (m Mode) String() string {
	switch m {
	case ModeEdges:
		return "edges"
	case ModeGrayscale:
		return "grayscale"
	case ModeInvert:
		return "invert"
	case ModeBlur:
		return "blur"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseModeName maps a mode name back to its Mode.
func ParseModeName(name string) (Mode, error) {
	for _, m := range Modes {
		if m.String() == name {
			return m, nil
		}
	}
	return ModeEdges, fmt.Errorf("unknown mode name: %q", name)
}
