package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/drift_tracker/internal/app"
	"github.com/relabs-tech/drift_tracker/internal/config"
)

func main() {
	configPath := flag.String("config", "drift_config.txt", "path to config file")
	flag.Parse()

	log.Println("starting drift-tracker console (MQTT subscriber)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsole(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
