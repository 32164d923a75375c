package frames

import (
	"time"

	"github.com/relabs-tech/drift_tracker/internal/vision"
)

// Synthetic generates a checkerboard scene that slides a fixed number of
// pixels per frame, with a reference pose advancing at constant velocity.
// Useful for demo runs and soak tests without a camera.
type Synthetic struct {
	width, height int
	cell          int
	pixelsPerTick int
	refStep       float64

	frame int
	start time.Time
}

// NewSynthetic returns a generator producing width×height frames whose
// texture shifts pixelsPerTick horizontally each frame while the reference
// pose advances refStep meters.
func NewSynthetic(width, height, pixelsPerTick int, refStep float64) *Synthetic {
	return &Synthetic{
		width:         width,
		height:        height,
		cell:          16,
		pixelsPerTick: pixelsPerTick,
		refStep:       refStep,
		start:         time.Now(),
	}
}

// Next renders the next frame. Always ready; never returns nil.
func (s *Synthetic) Next() (*vision.Capture, error) {
	offset := s.frame * s.pixelsPerTick
	pix := make([]uint8, s.width*s.height)
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			if ((x+offset)/s.cell+y/s.cell)%2 == 0 {
				pix[y*s.width+x] = 220
			} else {
				pix[y*s.width+x] = 30
			}
		}
	}

	cap := &vision.Capture{
		Frame: vision.Frame{Pix: pix, Width: s.width, Height: s.height},
		Ref: vision.Reference{
			TX:       float64(s.frame) * s.refStep,
			QW:       1,
			Tracking: true,
		},
		Nanos: time.Now().UnixNano(),
	}
	s.frame++
	return cap, nil
}
