// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pdr

import (
	"math"
	"time"

	"github.com/relabs-tech/drift_tracker/internal/pose"
)

// Config holds the step-detection tunables. Defaults() matches the values
// the detector was tuned with on phone-grade accelerometers.
type Config struct {
	// StepThreshold is the high-passed magnitude (m/s²) a sample must
	// exceed to count as a footfall.
	StepThreshold float64 `json:"step_threshold"`
	// StepLength is the nominal stride advanced per detected step, meters.
	StepLength float64 `json:"step_length_m"`
	// MinStepInterval debounces the detector so one footfall cannot fire
	// twice.
	MinStepInterval time.Duration `json:"min_step_interval"`
	// HighPassAlpha is the first-order high-pass coefficient applied to the
	// acceleration magnitude signal.
	HighPassAlpha float64 `json:"high_pass_alpha"`
}

// Defaults returns the standard step-detection configuration.
func Defaults() Config {
	return Config{
		StepThreshold:   1.0,
		StepLength:      0.75,
		MinStepInterval: 400 * time.Millisecond,
		HighPassAlpha:   0.8,
	}
}

// HeadingFunc supplies the walker's current yaw in radians. It is read once
// per detected step.
type HeadingFunc func() float64

// Integrator turns an acceleration sample stream into planar dead-reckoning
// poses: a high-pass filter on the magnitude isolates footfall peaks, each
// accepted peak advances the pose one stride along the current heading.
//
// All methods must be called from the sample-delivery goroutine; only the
// heading function crosses goroutines.
type Integrator struct {
	cfg     Config
	heading HeadingFunc
	sink    pose.Sink

	running       bool
	stepped       bool
	lastStepNanos int64
	highPass      float64
	lastMagnitude float64
	current       pose.Pose2D
}

// NewIntegrator returns a stopped integrator. heading must be non-nil; sink
// may be nil if the caller only polls Current().
func NewIntegrator(cfg Config, heading HeadingFunc, sink pose.Sink) *Integrator {
	return &Integrator{cfg: cfg, heading: heading, sink: sink}
}

// Start enables sample processing. Calling Start on a running integrator is
// a no-op and does not disturb the accumulated pose.
func (it *Integrator) Start() {
	it.running = true
}

// Stop disables sample processing. The accumulated pose survives so a later
// Start resumes from it; only Reset clears it.
func (it *Integrator) Stop() {
	it.running = false
}

// Running reports whether samples are currently being processed.
func (it *Integrator) Running() bool {
	return it.running
}

// Reset zeroes the pose and the step debounce clock and emits the zero pose.
func (it *Integrator) Reset() {
	it.stepped = false
	it.lastStepNanos = 0
	it.highPass = 0
	it.lastMagnitude = 0
	it.current = pose.Pose2D{}
	it.emit(0)
}

// Current returns the accumulated dead-reckoning pose.
func (it *Integrator) Current() pose.Pose2D {
	return it.current
}

// ProcessSample ingests one linear-acceleration sample (m/s², timestamp in
// nanoseconds). While stopped it is a no-op.
func (it *Integrator) ProcessSample(ax, ay, az float64, nanos int64) {
	if !it.running {
		return
	}

	magnitude := math.Sqrt(ax*ax + ay*ay + az*az)

	// First-order high-pass on the magnitude signal: slow bias (gravity
	// leakage, sensor offset) is removed so only sharp peaks remain.
	a := it.cfg.HighPassAlpha
	it.highPass = a*(it.highPass+magnitude-it.lastMagnitude) + (1-a)*magnitude
	it.lastMagnitude = magnitude

	if it.highPass <= it.cfg.StepThreshold {
		return
	}
	if it.stepped && nanos-it.lastStepNanos <= it.cfg.MinStepInterval.Nanoseconds() {
		return
	}

	it.stepped = true
	it.lastStepNanos = nanos
	it.current = it.current.Step(it.cfg.StepLength, it.heading())
	it.emit(nanos)
}

func (it *Integrator) emit(nanos int64) {
	if it.sink == nil {
		return
	}
	it.sink.OnPose(pose.Update{
		Source: pose.SourceDeadReckoning,
		Pose:   it.current,
		Nanos:  nanos,
	})
}
