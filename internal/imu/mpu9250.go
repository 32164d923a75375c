// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

// Raw accelerometer LSB per g at the ±2g range, and standard gravity.
const (
	lsbPerG = 16384.0
	gravity = 9.80665
)

type mpu9250Source struct {
	imu *mpu9250.MPU9250
}

// NewMPU9250Source initializes an MPU9250 over SPI and returns a Source
// reading linear acceleration in m/s². spiDev is the SPI device path
// (e.g. /dev/spidev6.0), csPin the chip-select GPIO name.
func NewMPU9250Source(spiDev, csPin string) (Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU CS pin %q not found", csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU SPI transport (%s): %w", spiDev, err)
	}

	imu, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("IMU device creation: %w", err)
	}

	if err := imu.Init(); err != nil {
		return nil, fmt.Errorf("IMU init: %w", err)
	}

	return &mpu9250Source{imu: imu}, nil
}

// Next reads one accelerometer sample and converts raw counts to m/s².
func (s *mpu9250Source) Next() (Sample, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return Sample{}, fmt.Errorf("IMU acc X: %w", err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return Sample{}, fmt.Errorf("IMU acc Y: %w", err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return Sample{}, fmt.Errorf("IMU acc Z: %w", err)
	}

	scale := gravity / lsbPerG
	return Sample{
		Ax:    float64(ax) * scale,
		Ay:    float64(ay) * scale,
		Az:    float64(az) * scale,
		Nanos: time.Now().UnixNano(),
	}, nil
}
