package gps

import (
	"bufio"
	"fmt"
	"log"
	"math"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/drift_tracker/internal/pose"
)

// minSpeedKnots gates heading updates: course over ground is noise while
// standing still.
const minSpeedKnots = 0.5

// CourseToHeading converts a compass course over ground (degrees, clockwise
// from north) to the engine's yaw convention (radians, counter-clockwise
// from the initial facing direction, east-referenced).
func CourseToHeading(courseDeg float64) float64 {
	return pose.NormalizeAngle(math.Pi/2 - courseDeg*math.Pi/180)
}

// ReadHeadings opens the GPS serial port, parses NMEA sentences, and calls
// onHeading with the yaw derived from each valid RMC course while the
// receiver is moving. Blocks until the port errors out.
func ReadHeadings(portName string, baudRate uint, onHeading func(float64)) error {
	serialOpts := serial.OpenOptions{
		PortName:        portName,
		BaudRate:        baudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return fmt.Errorf("open GPS serial port %s: %w", portName, err)
	}
	defer port.Close()
	log.Printf("GPS serial port opened on %s at %d baud", portName, baudRate)

	reader := bufio.NewReader(port)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("GPS read: %w", err)
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// noisy GPS or partial sentences
			continue
		}

		if sentence.DataType() != nmea.TypeRMC {
			continue
		}
		m := sentence.(nmea.RMC)
		if string(m.Validity) != "A" || m.Speed < minSpeedKnots {
			continue
		}
		onHeading(CourseToHeading(m.Course))
	}
}
