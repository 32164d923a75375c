package app

import (
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/drift_tracker/internal/config"
	"github.com/relabs-tech/drift_tracker/internal/drift"
	"github.com/relabs-tech/drift_tracker/internal/frames"
	"github.com/relabs-tech/drift_tracker/internal/gps"
	"github.com/relabs-tech/drift_tracker/internal/heading"
	"github.com/relabs-tech/drift_tracker/internal/imu"
	"github.com/relabs-tech/drift_tracker/internal/pdr"
	"github.com/relabs-tech/drift_tracker/internal/pose"
	"github.com/relabs-tech/drift_tracker/internal/tracker"
)

// ProducerOptions selects the input sources for the tracker producer.
type ProducerOptions struct {
	// UseMockIMU replaces the SPI IMU with the synthetic walker.
	UseMockIMU bool
	// UseGPSHeading feeds the heading estimator from GPS course over ground
	// instead of leaving it at the initial facing direction.
	UseGPSHeading bool
	// FrameDir plays back a recorded frame directory; empty means the
	// synthetic scene generator.
	FrameDir string
	// PosesPath is the reference-pose CSV for FrameDir.
	PosesPath string
}

// mqttSink publishes pose updates as retained JSON and mirrors them into the
// drift aggregator so the drift metric rides along on its own topic.
type mqttSink struct {
	client     mqtt.Client
	agg        *drift.Aggregator
	topicDR    string
	topicVis   string
	topicDrift string
}

func (s *mqttSink) OnPose(u pose.Update) {
	s.agg.OnPose(u)

	topic := s.topicDR
	if u.Source == pose.SourceVisual {
		topic = s.topicVis
	}
	payload, err := json.Marshal(u)
	if err != nil {
		log.Printf("producer: pose marshal error: %v", err)
		return
	}
	if token := s.client.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("producer: MQTT publish error (%s): %v", topic, token.Error())
		return
	}

	metric := struct {
		Drift float64 `json:"drift_m"`
		RMS   float64 `json:"rms_m"`
		Nanos int64   `json:"t_ns"`
	}{s.agg.Drift(), s.agg.RMSDrift(100), u.Nanos}
	if payload, err := json.Marshal(metric); err != nil {
		log.Printf("producer: drift marshal error: %v", err)
	} else {
		s.client.Publish(s.topicDrift, 0, true, payload)
	}
}

// RunProducer wires both estimators to their inputs and publishes every pose
// update over MQTT until the process is killed.
func RunProducer(opts ProducerOptions) error {
	log.Println("starting drift-tracker producer")

	cfg := config.Get()

	// --- connect to MQTT ---
	mqttOpts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(mqttOpts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Println("connected to MQTT, starting estimators")

	sink := &mqttSink{
		client:     client,
		agg:        drift.NewAggregator(),
		topicDR:    cfg.TopicPoseDR,
		topicVis:   cfg.TopicPoseVisual,
		topicDrift: cfg.TopicDrift,
	}

	// --- heading ---
	est := heading.NewEstimator()
	if opts.UseGPSHeading {
		go func() {
			if err := gps.ReadHeadings(cfg.GPSSerialPort, uint(cfg.GPSBaudRate), est.Set); err != nil {
				log.Printf("producer: GPS heading source stopped: %v", err)
			}
		}()
	}

	// --- acceleration source ---
	var accel imu.Source
	if opts.UseMockIMU {
		log.Println("using mock walker acceleration source")
		accel = imu.NewMockWalker(1.8, 4.0)
	} else {
		var err error
		accel, err = imu.NewMPU9250Source(cfg.IMUSPIDevice, cfg.IMUCSPin)
		if err != nil {
			return err
		}
	}

	// --- dead reckoning ---
	integrator := pdr.NewIntegrator(cfg.PDR(), est.Heading, sink)
	integrator.Start()
	integrator.Reset()

	go func() {
		ticker := time.NewTicker(time.Duration(cfg.IMUSampleIntervalMS) * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			s, err := accel.Next()
			if err != nil {
				log.Printf("producer: accel read error: %v", err)
				continue
			}
			integrator.ProcessSample(s.Ax, s.Ay, s.Az, s.Nanos)
		}
	}()

	// --- visual tracking ---
	trackerCfg, err := cfg.Tracker()
	if err != nil {
		return err
	}
	visual := tracker.New(trackerCfg, sink)

	var source tracker.FrameSource
	if opts.FrameDir != "" {
		replay, err := frames.NewReplay(opts.FrameDir, opts.PosesPath)
		if err != nil {
			return err
		}
		log.Printf("replaying %d frames from %s", replay.Len(), opts.FrameDir)
		source = replay
	} else {
		log.Println("using synthetic frame source")
		source = frames.NewSynthetic(320, 240, 2, 0.02)
	}

	loop := tracker.NewLoop(visual, source, time.Duration(cfg.FrameIntervalMS)*time.Millisecond)
	loop.Start()

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("producer: shutting down")
	loop.Stop()
	integrator.Stop()
	return nil
}
