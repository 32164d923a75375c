// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package tracker

import (
	"log"
	"sync"

	"github.com/relabs-tech/drift_tracker/internal/pose"
	"github.com/relabs-tech/drift_tracker/internal/vision"
)

// Config holds the visual-tracker tunables.
type Config struct {
	// Mode selects the motion source (features, reference, simulated).
	Mode Mode `json:"-"`
	// MinMatches is the minimum accepted correspondences before the feature
	// estimate is trusted over the reference fallback.
	MinMatches int `json:"min_matches"`
	// MapMaxPoints caps the sparse map size.
	MapMaxPoints int `json:"map_max_points"`
	// SimStep is the per-frame increment applied in ModeSimulated.
	SimStep pose.Pose2D `json:"sim_step"`

	Detector  vision.DetectorConfig  `json:"detector"`
	Matcher   vision.MatcherConfig   `json:"matcher"`
	Estimator vision.EstimatorConfig `json:"estimator"`
}

// Defaults returns the standard tracker configuration.
func Defaults() Config {
	return Config{
		Mode:         ModeFeatures,
		MinMatches:   3,
		MapMaxPoints: 500,
		SimStep:      pose.Pose2D{X: 0.02},
		Detector:     vision.DetectorDefaults(),
		Matcher:      vision.MatcherDefaults(),
		Estimator:    vision.EstimatorDefaults(),
	}
}

// prevFrame is the cached previous frame used for matching.
type prevFrame struct {
	features []vision.FeaturePoint
	frame    vision.Frame
}

// state carries everything the tracker accumulates across frames. Each
// per-frame step takes and mutates this one struct, so transitions stay
// auditable and testable without a live frame source.
type state struct {
	initialRef  *pose.Pose2D
	accumulated pose.Pose2D
	frameCount  int64
	prev        *prevFrame
	worldMap    *featureMap
}

// Visual is the visual tracking state machine. Per running frame it detects
// features, matches them against the previous frame, estimates incremental
// motion fused with the external reference pose, and falls back to pure
// reference anchoring whenever the feature path degrades. It never fails
// hard: every degraded condition degrades to the most recent trustworthy
// pose source.
//
// A mutex serializes ProcessFrame against Start/Stop/Reset so Stop is safe
// to call while a frame tick is in flight.
type Visual struct {
	cfg       Config
	detector  *vision.Detector
	matcher   *vision.Matcher
	estimator *vision.Estimator
	sink      pose.Sink

	mu      sync.Mutex
	running bool
	st      state
}

// New returns a stopped visual tracker emitting to sink (may be nil).
func New(cfg Config, sink pose.Sink) *Visual {
	return &Visual{
		cfg:       cfg,
		detector:  vision.NewDetector(cfg.Detector),
		matcher:   vision.NewMatcher(cfg.Matcher),
		estimator: vision.NewEstimator(cfg.Estimator),
		sink:      sink,
		st:        state{worldMap: newFeatureMap(cfg.MapMaxPoints)},
	}
}

// Start enables frame processing. Starting a running tracker is a no-op and
// does not reset accumulated state.
func (v *Visual) Start() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.running = true
}

// Stop halts processing and clears the map and previous-frame cache. Nothing
// is preserved for a later Start other than the tracker identity.
func (v *Visual) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.running = false
	v.st = state{worldMap: newFeatureMap(v.cfg.MapMaxPoints)}
}

// Reset clears all accumulated state and emits the zero pose. The running
// flag is untouched.
func (v *Visual) Reset() {
	v.mu.Lock()
	v.st = state{worldMap: newFeatureMap(v.cfg.MapMaxPoints)}
	v.mu.Unlock()
	v.emit(pose.Pose2D{}, 0)
}

// Running reports whether frames are currently processed.
func (v *Visual) Running() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.running
}

// MapSize returns the current number of map points.
func (v *Visual) MapSize() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.st.worldMap.size()
}

// Current returns the accumulated pose relative to the initial reference.
func (v *Visual) Current() pose.Pose2D {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.relative()
}

// ProcessFrame runs one tick of the state machine. While stopped it is a
// no-op, never an error.
func (v *Visual) ProcessFrame(cap vision.Capture) {
	v.mu.Lock()
	if !v.running {
		v.mu.Unlock()
		return
	}
	v.st.frameCount++
	out, ok := v.processLocked(cap)
	v.mu.Unlock()
	if ok {
		v.emit(out, cap.Nanos)
	}
}

// processLocked advances the state machine one frame and returns the pose to
// emit. Caller holds the mutex.
func (v *Visual) processLocked(cap vision.Capture) (pose.Pose2D, bool) {
	ref := cap.Ref

	// First valid reference sample anchors the session, tracking or not.
	if v.st.initialRef == nil {
		p := ref.Planar()
		v.st.initialRef = &p
		v.st.accumulated = p
		if !ref.Tracking {
			return pose.Pose2D{}, true
		}
	} else if !ref.Tracking {
		// Keep consumers fed with the last relative pose while the external
		// subsystem has lost tracking.
		return v.relative(), true
	}

	switch v.cfg.Mode {
	case ModeReference:
		return v.fallback(ref), true
	case ModeSimulated:
		v.st.accumulated = v.st.accumulated.Add(v.cfg.SimStep)
		return v.relative(), true
	}

	features := v.detector.Detect(cap.Frame)
	if len(features) == 0 {
		return v.fallback(ref), true
	}

	if v.st.prev == nil {
		// Bootstrap frame: seed the map, cache the frame, report origin.
		for _, f := range features {
			v.st.worldMap.add(f, v.cfg.Estimator.PixelToMeter)
		}
		v.st.prev = &prevFrame{features: features, frame: cap.Frame}
		return pose.Pose2D{}, true
	}

	matches := v.matcher.Match(v.st.prev.features, features)
	v.st.prev = &prevFrame{features: features, frame: cap.Frame}

	if len(matches) < v.cfg.MinMatches {
		log.Printf("tracker: %d/%d matches, falling back to reference pose", len(matches), v.cfg.MinMatches)
		return v.fallback(ref), true
	}

	inc, err := v.estimator.Estimate(matches, ref)
	if err != nil {
		log.Printf("tracker: motion estimation failed: %v", err)
		return v.fallback(ref), true
	}

	v.st.accumulated = v.st.accumulated.Add(inc)
	v.updateMap(matches, features)
	return v.relative(), true
}

// fallback re-anchors the accumulated pose to the external reference and
// returns the relative pose. The default answer whenever the feature path
// cannot be trusted.
func (v *Visual) fallback(ref vision.Reference) pose.Pose2D {
	v.st.accumulated = ref.Planar()
	return v.relative()
}

// relative is accumulated − initial, the pose reported to consumers.
func (v *Visual) relative() pose.Pose2D {
	if v.st.initialRef == nil {
		return pose.Pose2D{}
	}
	return v.st.accumulated.Sub(*v.st.initialRef)
}

// updateMap inserts current-frame features that matched nothing in the
// previous frame as new map points.
func (v *Visual) updateMap(matches []vision.FeatureMatch, features []vision.FeaturePoint) {
	matched := make(map[[2]float64]bool, len(matches))
	for _, m := range matches {
		matched[[2]float64{m.Current.X, m.Current.Y}] = true
	}
	for _, f := range features {
		if matched[[2]float64{f.X, f.Y}] {
			continue
		}
		v.st.worldMap.add(f, v.cfg.Estimator.PixelToMeter)
	}
}

func (v *Visual) emit(p pose.Pose2D, nanos int64) {
	if v.sink == nil {
		return
	}
	v.sink.OnPose(pose.Update{Source: pose.SourceVisual, Pose: p, Nanos: nanos})
}
