// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package imu

import (
	"math"
	"time"
)

type mockWalker struct {
	start    time.Time
	cadence  float64 // steps per second
	strength float64 // peak acceleration above rest, m/s²
}

// NewMockWalker creates a mock acceleration source that looks like a person
// walking at the given cadence: a rest magnitude with a sharp vertical
// spike once per step.
func NewMockWalker(cadence, strength float64) Source {
	return &mockWalker{start: time.Now(), cadence: cadence, strength: strength}
}

func (m *mockWalker) Next() (Sample, error) {
	now := time.Now()
	elapsed := now.Sub(m.start).Seconds()

	// Rectified sine gives one sharp peak per step period.
	phase := math.Sin(2 * math.Pi * m.cadence * elapsed)
	spike := 0.0
	if phase > 0.9 {
		spike = m.strength
	}

	return Sample{
		Ax:    0.1 * math.Sin(elapsed*3),
		Ay:    0.1 * math.Cos(elapsed*2),
		Az:    spike,
		Nanos: now.UnixNano(),
	}, nil
}
