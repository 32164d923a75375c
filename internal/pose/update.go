package pose

import "fmt"

// Source identifies which estimator produced a pose update.
type Source int

const (
	SourceDeadReckoning Source = iota + 1
	SourceVisual
)

func (s Source) String() string {
	switch s {
	case SourceDeadReckoning:
		return "dr"
	case SourceVisual:
		return "visual"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// MarshalText makes Source render as its short name in JSON payloads.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the short names written by MarshalText.
func (s *Source) UnmarshalText(b []byte) error {
	switch string(b) {
	case "dr":
		*s = SourceDeadReckoning
	case "visual":
		*s = SourceVisual
	default:
		return fmt.Errorf("unknown pose source %q", string(b))
	}
	return nil
}

// Update is a single tagged pose emission from one of the estimators.
type Update struct {
	Source Source `json:"source"`
	Pose   Pose2D `json:"pose"`
	Nanos  int64  `json:"t_ns"`
}

// Sink receives pose updates. Each estimator calls its sink from a single
// goroutine, so delivery order matches emission order per source; updates
// from different sources interleave with no cross-source guarantee.
type Sink interface {
	OnPose(Update)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Update)

// OnPose calls f.
func (f SinkFunc) OnPose(u Update) { f(u) }
