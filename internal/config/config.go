package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/relabs-tech/drift_tracker/internal/pdr"
	"github.com/relabs-tech/drift_tracker/internal/tracker"
)

// Config holds all application configuration values. Every empirical engine
// constant lives here rather than in code: the scales and weights are tuned
// numbers, not laws.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string

	// Topics
	TopicPoseDR     string
	TopicPoseVisual string
	TopicDrift      string

	// Step detection
	StepThreshold     float64
	StepLengthM       float64
	MinStepIntervalMS int
	HighPassAlpha     float64

	// Feature detection
	MaxFeatures      int
	FeatureThreshold float64
	DetectWindow     int
	DetectStride     int
	HarrisK          float64
	PatchSize        int

	// Matching
	MatchMaxDistance float64
	MatchCrossCheck  bool
	MinMatches       int

	// Motion estimation
	PixelToMeter  float64
	FeatureWeight float64

	// Tracker
	TrackerMode  string
	MapMaxPoints int

	// Timing
	IMUSampleIntervalMS int
	FrameIntervalMS     int

	// IMU hardware
	IMUSPIDevice string
	IMUCSPin     string

	// GPS
	GPSSerialPort string
	GPSBaudRate   int

	// Web server
	WebServerPort int

	// Session output
	SessionCSVPath string
}

// Defaults returns the configuration used when no file overrides it.
func Defaults() *Config {
	return &Config{
		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDProducer: "drift-tracker-producer",
		MQTTClientIDConsole:  "drift-tracker-console",
		MQTTClientIDWeb:      "drift-tracker-web",

		TopicPoseDR:     "drift/pose/dr",
		TopicPoseVisual: "drift/pose/visual",
		TopicDrift:      "drift/metric",

		StepThreshold:     1.0,
		StepLengthM:       0.75,
		MinStepIntervalMS: 400,
		HighPassAlpha:     0.8,

		MaxFeatures:      200,
		FeatureThreshold: 30,
		DetectWindow:     3,
		DetectStride:     4,
		HarrisK:          0.04,
		PatchSize:        8,

		MatchMaxDistance: 30.0,
		MatchCrossCheck:  false,
		MinMatches:       3,

		PixelToMeter:  0.001,
		FeatureWeight: 0.3,

		TrackerMode:  "features",
		MapMaxPoints: 500,

		IMUSampleIntervalMS: 20,
		FrameIntervalMS:     33,

		IMUSPIDevice: "/dev/spidev6.0",
		IMUCSPin:     "18",

		GPSSerialPort: "/dev/serial0",
		GPSBaudRate:   9600,

		WebServerPort:  8080,
		SessionCSVPath: "session.csv",
	}
}

// PDR maps the step-detection keys onto a pdr.Config.
func (c *Config) PDR() pdr.Config {
	return pdr.Config{
		StepThreshold:   c.StepThreshold,
		StepLength:      c.StepLengthM,
		MinStepInterval: time.Duration(c.MinStepIntervalMS) * time.Millisecond,
		HighPassAlpha:   c.HighPassAlpha,
	}
}

// Tracker maps the vision keys onto a tracker.Config.
func (c *Config) Tracker() (tracker.Config, error) {
	mode, err := tracker.ParseMode(c.TrackerMode)
	if err != nil {
		return tracker.Config{}, err
	}
	tc := tracker.Defaults()
	tc.Mode = mode
	tc.MinMatches = c.MinMatches
	tc.MapMaxPoints = c.MapMaxPoints
	tc.Detector.MaxFeatures = c.MaxFeatures
	tc.Detector.Threshold = c.FeatureThreshold
	tc.Detector.Window = c.DetectWindow
	tc.Detector.Stride = c.DetectStride
	tc.Detector.K = c.HarrisK
	tc.Detector.PatchSize = c.PatchSize
	tc.Matcher.MaxDistance = c.MatchMaxDistance
	tc.Matcher.CrossCheck = c.MatchCrossCheck
	tc.Estimator.PixelToMeter = c.PixelToMeter
	tc.Estimator.FeatureWeight = c.FeatureWeight
	return tc, nil
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file over the defaults and returns a Config.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value

	// Topics
	case "TOPIC_POSE_DR":
		c.TopicPoseDR = value
	case "TOPIC_POSE_VISUAL":
		c.TopicPoseVisual = value
	case "TOPIC_DRIFT":
		c.TopicDrift = value

	// Step detection
	case "STEP_THRESHOLD":
		return setFloat(&c.StepThreshold, key, value)
	case "STEP_LENGTH_M":
		return setFloat(&c.StepLengthM, key, value)
	case "MIN_STEP_INTERVAL_MS":
		return setInt(&c.MinStepIntervalMS, key, value)
	case "HIGH_PASS_ALPHA":
		if err := setFloat(&c.HighPassAlpha, key, value); err != nil {
			return err
		}
		if c.HighPassAlpha < 0 || c.HighPassAlpha > 1 {
			return fmt.Errorf("HIGH_PASS_ALPHA must be in [0,1], got %v", c.HighPassAlpha)
		}

	// Feature detection
	case "MAX_FEATURES":
		return setInt(&c.MaxFeatures, key, value)
	case "FEATURE_THRESHOLD":
		return setFloat(&c.FeatureThreshold, key, value)
	case "DETECT_WINDOW":
		return setInt(&c.DetectWindow, key, value)
	case "DETECT_STRIDE":
		return setInt(&c.DetectStride, key, value)
	case "HARRIS_K":
		return setFloat(&c.HarrisK, key, value)
	case "PATCH_SIZE":
		return setInt(&c.PatchSize, key, value)

	// Matching
	case "MATCH_MAX_DISTANCE":
		return setFloat(&c.MatchMaxDistance, key, value)
	case "MATCH_CROSS_CHECK":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid MATCH_CROSS_CHECK %q: %w", value, err)
		}
		c.MatchCrossCheck = b
	case "MIN_MATCHES":
		return setInt(&c.MinMatches, key, value)

	// Motion estimation
	case "PIXEL_TO_METER":
		return setFloat(&c.PixelToMeter, key, value)
	case "FEATURE_WEIGHT":
		if err := setFloat(&c.FeatureWeight, key, value); err != nil {
			return err
		}
		if c.FeatureWeight < 0 || c.FeatureWeight > 1 {
			return fmt.Errorf("FEATURE_WEIGHT must be in [0,1], got %v", c.FeatureWeight)
		}

	// Tracker
	case "TRACKER_MODE":
		c.TrackerMode = value
	case "MAP_MAX_POINTS":
		return setInt(&c.MapMaxPoints, key, value)

	// Timing
	case "IMU_SAMPLE_INTERVAL_MS":
		return setInt(&c.IMUSampleIntervalMS, key, value)
	case "FRAME_INTERVAL_MS":
		return setInt(&c.FrameIntervalMS, key, value)

	// IMU hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		return setInt(&c.GPSBaudRate, key, value)

	// Web server
	case "WEB_SERVER_PORT":
		return setInt(&c.WebServerPort, key, value)

	// Session output
	case "SESSION_CSV_PATH":
		c.SessionCSVPath = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func setFloat(dst *float64, key, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = v
	return nil
}

func setInt(dst *int, key, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = v
	return nil
}

// validate checks that the loaded values can actually drive the engine.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.StepLengthM <= 0 {
		return fmt.Errorf("STEP_LENGTH_M must be positive")
	}
	if c.MinStepIntervalMS <= 0 {
		return fmt.Errorf("MIN_STEP_INTERVAL_MS must be positive")
	}
	if c.MaxFeatures <= 0 {
		return fmt.Errorf("MAX_FEATURES must be positive")
	}
	if c.MinMatches <= 0 {
		return fmt.Errorf("MIN_MATCHES must be positive")
	}
	if c.MapMaxPoints <= 0 {
		return fmt.Errorf("MAP_MAX_POINTS must be positive")
	}
	if c.FrameIntervalMS <= 0 {
		return fmt.Errorf("FRAME_INTERVAL_MS must be positive")
	}
	if _, err := tracker.ParseMode(c.TrackerMode); err != nil {
		return err
	}
	return nil
}

// InitGlobal initializes the global configuration from file, falling back to
// defaults when the file does not exist. Runs at most once.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
			globalConfig = Defaults()
			return
		}
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance. InitGlobal must be called
// first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
