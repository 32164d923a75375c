package drift

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// sessionHeader is the column layout consumed by the session tooling.
var sessionHeader = []string{"timestamp_ms", "dr_x", "dr_y", "slam_x", "slam_y"}

// WriteSession writes both trajectories as session CSV: one row per sample
// index, 3-decimal fixed-point coordinates, empty fields where a source has
// no value at that index. Timestamps come from the dead-reckoning sample
// when present, otherwise from the visual one.
func WriteSession(w io.Writer, dr, visual []Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sessionHeader); err != nil {
		return fmt.Errorf("session header: %w", err)
	}

	n := len(dr)
	if len(visual) > n {
		n = len(visual)
	}
	for i := 0; i < n; i++ {
		row := make([]string, 5)
		if i < len(dr) {
			row[0] = fmt.Sprintf("%d", dr[i].Nanos/1e6)
			row[1] = fmt.Sprintf("%.3f", dr[i].Pose.X)
			row[2] = fmt.Sprintf("%.3f", dr[i].Pose.Y)
		}
		if i < len(visual) {
			if row[0] == "" {
				row[0] = fmt.Sprintf("%d", visual[i].Nanos/1e6)
			}
			row[3] = fmt.Sprintf("%.3f", visual[i].Pose.X)
			row[4] = fmt.Sprintf("%.3f", visual[i].Pose.Y)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("session row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveSession writes the session CSV to path.
func SaveSession(path string, dr, visual []Point) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	if err := WriteSession(f, dr, visual); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
