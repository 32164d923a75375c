package tracker

import (
	"github.com/relabs-tech/drift_tracker/internal/vision"
)

// MapPoint is the approximate world-space location of a tracked feature.
type MapPoint struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Z            float64 `json:"z"`
	Observations int     `json:"obs"`
}

// featureMap is the tracker's sparse world map. The size cap bounds memory;
// once full, new points are simply not added (no eviction).
type featureMap struct {
	points []MapPoint
	cap    int
}

func newFeatureMap(capPoints int) *featureMap {
	return &featureMap{cap: capPoints}
}

func (fm *featureMap) size() int {
	return len(fm.points)
}

// add projects a pixel-space feature to an approximate world coordinate via
// the fixed pixel-to-meter scale and stores it, subject to the cap.
func (fm *featureMap) add(f vision.FeaturePoint, pixelToMeter float64) {
	if len(fm.points) >= fm.cap {
		return
	}
	fm.points = append(fm.points, MapPoint{
		X:            f.X * pixelToMeter,
		Y:            f.Y * pixelToMeter,
		Z:            0,
		Observations: 1,
	})
}
