package drift

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/drift_tracker/internal/pose"
)

func point(x, y float64, nanos int64) Point {
	return Point{Pose: pose.Pose2D{X: x, Y: y}, Nanos: nanos}
}

func TestWriteSessionFormat(t *testing.T) {
	var buf bytes.Buffer
	drTraj := []Point{
		point(0.75, 0, 500e6),
		point(1.5, 0, 900e6),
	}
	vis := []Point{
		point(0.7031, 0.0005, 520e6),
	}

	require.NoError(t, WriteSession(&buf, drTraj, vis))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp_ms,dr_x,dr_y,slam_x,slam_y", lines[0])
	assert.Equal(t, "500,0.750,0.000,0.703,0.001", lines[1])
	// Visual stream exhausted: empty fields.
	assert.Equal(t, "900,1.500,0.000,,", lines[2])
}

func TestWriteSessionVisualOnlyRows(t *testing.T) {
	var buf bytes.Buffer
	vis := []Point{point(1, 2, 100e6)}

	require.NoError(t, WriteSession(&buf, nil, vis))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "100,,,1.000,2.000", lines[1])
}

func TestWriteSessionEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSession(&buf, nil, nil))
	assert.Equal(t, "timestamp_ms,dr_x,dr_y,slam_x,slam_y\n", buf.String())
}
