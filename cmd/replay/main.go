package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/drift_tracker/internal/app"
	"github.com/relabs-tech/drift_tracker/internal/config"
)

func main() {
	configPath := flag.String("config", "drift_config.txt", "path to config file")
	frameDir := flag.String("frames", "", "directory of recorded frame images")
	posesPath := flag.String("poses", "", "reference-pose CSV")
	flag.Parse()

	if *frameDir == "" || *posesPath == "" {
		log.Fatal("both -frames and -poses are required")
	}

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunReplay(*frameDir, *posesPath); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
