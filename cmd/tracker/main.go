// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/drift_tracker/internal/app"
	"github.com/relabs-tech/drift_tracker/internal/config"
)

func main() {
	configPath := flag.String("config", "drift_config.txt", "path to config file")
	mockIMU := flag.Bool("mock-imu", false, "use the synthetic walker instead of the SPI IMU")
	gpsHeading := flag.Bool("gps-heading", false, "feed heading from GPS course over ground")
	frameDir := flag.String("frames", "", "replay frames from this directory instead of the synthetic scene")
	posesPath := flag.String("poses", "", "reference-pose CSV for -frames")
	flag.Parse()

	log.Println("starting drift-tracker producer")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	err := app.RunProducer(app.ProducerOptions{
		UseMockIMU:    *mockIMU,
		UseGPSHeading: *gpsHeading,
		FrameDir:      *frameDir,
		PosesPath:     *posesPath,
	})
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
