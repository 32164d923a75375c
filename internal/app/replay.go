package app

import (
	"fmt"
	"log"

	"github.com/relabs-tech/drift_tracker/internal/config"
	"github.com/relabs-tech/drift_tracker/internal/drift"
	"github.com/relabs-tech/drift_tracker/internal/frames"
	"github.com/relabs-tech/drift_tracker/internal/tracker"
)

// RunReplay processes a recorded frame session offline, writes the session
// CSV, and prints a drift summary. No broker involved.
func RunReplay(frameDir, posesPath string) error {
	cfg := config.Get()

	replay, err := frames.NewReplay(frameDir, posesPath)
	if err != nil {
		return err
	}
	log.Printf("replay: %d frames from %s", replay.Len(), frameDir)

	trackerCfg, err := cfg.Tracker()
	if err != nil {
		return err
	}

	agg := drift.NewAggregator()
	visual := tracker.New(trackerCfg, agg)
	visual.Start()

	for !replay.Finished() {
		cap, err := replay.Next()
		if err != nil {
			// One bad frame does not end the session.
			log.Printf("replay: %v", err)
			continue
		}
		if cap == nil {
			break
		}
		visual.ProcessFrame(*cap)
	}
	mapSize := visual.MapSize()
	visual.Stop()

	dr, vis := agg.Trajectories()
	if err := drift.SaveSession(cfg.SessionCSVPath, dr, vis); err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	log.Printf("replay: wrote %s (%d visual samples)", cfg.SessionCSVPath, len(vis))

	fmt.Printf("frames:    %d\n", replay.Len())
	fmt.Printf("map size:  %d points\n", mapSize)
	fmt.Printf("rms drift: %.3f m\n", agg.RMSDrift(0))
	return nil
}
