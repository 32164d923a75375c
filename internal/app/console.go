package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/drift_tracker/internal/config"
	"github.com/relabs-tech/drift_tracker/internal/pose"
)

// RunConsole subscribes to both pose topics and the drift metric and prints
// every update until interrupted.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	onPose := func(_ mqtt.Client, msg mqtt.Message) {
		var u pose.Update
		if err := json.Unmarshal(msg.Payload(), &u); err != nil {
			log.Printf("console: pose unmarshal error: %v", err)
			return
		}
		fmt.Printf(
			"[%-6s] x=%7.3f  y=%7.3f  theta=%6.3f\n",
			u.Source, u.Pose.X, u.Pose.Y, u.Pose.Theta,
		)
	}

	for _, topic := range []string{cfg.TopicPoseDR, cfg.TopicPoseVisual} {
		token := client.Subscribe(topic, 0, onPose)
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("console: subscribed to %s", topic)
	}

	driftToken := client.Subscribe(cfg.TopicDrift, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var m struct {
			Drift float64 `json:"drift_m"`
			RMS   float64 `json:"rms_m"`
		}
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			log.Printf("console: drift unmarshal error: %v", err)
			return
		}
		fmt.Printf("[DRIFT ] now=%7.3fm  rms=%7.3fm\n", m.Drift, m.RMS)
	})
	driftToken.Wait()
	if driftToken.Error() != nil {
		return driftToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicDrift)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
