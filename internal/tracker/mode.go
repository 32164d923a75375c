package tracker

import "fmt"

// Mode selects which motion source drives the visual tracker. One state
// machine serves all variants; only the per-frame estimate differs.
type Mode int

const (
	// ModeFeatures runs the full detect/match/estimate pipeline.
	ModeFeatures Mode = iota + 1
	// ModeReference anchors directly to the external reference pose.
	ModeReference
	// ModeSimulated advances a constant velocity per frame, for bench runs
	// without a camera.
	ModeSimulated
)

func (m Mode) String() string {
	switch m {
	case ModeFeatures:
		return "features"
	case ModeReference:
		return "reference"
	case ModeSimulated:
		return "simulated"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a config value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "features", "":
		return ModeFeatures, nil
	case "reference":
		return ModeReference, nil
	case "simulated":
		return ModeSimulated, nil
	default:
		return 0, fmt.Errorf("unknown tracker mode %q", s)
	}
}
