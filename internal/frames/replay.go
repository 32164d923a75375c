package frames

import (
	"encoding/csv"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/relabs-tech/drift_tracker/internal/vision"
)

// Replay plays back a recorded session: a directory of grayscale-able image
// files (sorted by name, one per frame) plus a poses CSV carrying the
// reference pose and tracking flag per frame:
//
//	t_ns,tx,tz,qx,qy,qz,qw,tracking
//
// Next returns (nil, nil) once the session is exhausted.
type Replay struct {
	paths []string
	refs  []vision.Capture
	next  int
}

// NewReplay loads the pose file and indexes the frame images in dir.
func NewReplay(dir, posesPath string) (*Replay, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".png", ".jpg", ".jpeg":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	refs, err := loadPoses(posesPath)
	if err != nil {
		return nil, err
	}
	if len(refs) < len(paths) {
		return nil, fmt.Errorf("poses file has %d rows for %d frames", len(refs), len(paths))
	}

	return &Replay{paths: paths, refs: refs}, nil
}

// Len returns the number of frames in the session.
func (r *Replay) Len() int {
	return len(r.paths)
}

// Finished reports whether the whole session has been consumed.
func (r *Replay) Finished() bool {
	return r.next >= len(r.paths)
}

// Next decodes and returns the next frame with its reference pose, or
// (nil, nil) when the session is exhausted.
func (r *Replay) Next() (*vision.Capture, error) {
	if r.Finished() {
		return nil, nil
	}
	i := r.next
	r.next++

	f, err := os.Open(r.paths[i])
	if err != nil {
		return nil, fmt.Errorf("open frame %s: %w", r.paths[i], err)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", r.paths[i], err)
	}

	cap := r.refs[i]
	b := img.Bounds()
	cap.Frame = vision.FromImage(img, b.Dx(), b.Dy())
	return &cap, nil
}

// loadPoses parses the poses CSV into captures with empty frames.
func loadPoses(path string) ([]vision.Capture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open poses file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse poses file: %w", err)
	}

	var refs []vision.Capture
	for i, row := range rows {
		if i == 0 && row[0] == "t_ns" {
			continue
		}
		if len(row) != 8 {
			return nil, fmt.Errorf("poses row %d: want 8 fields, got %d", i, len(row))
		}
		vals := make([]float64, 7)
		for j := 0; j < 7; j++ {
			v, err := strconv.ParseFloat(row[j], 64)
			if err != nil {
				return nil, fmt.Errorf("poses row %d field %d: %w", i, j, err)
			}
			vals[j] = v
		}
		tracking, err := strconv.ParseBool(row[7])
		if err != nil {
			return nil, fmt.Errorf("poses row %d tracking flag: %w", i, err)
		}
		refs = append(refs, vision.Capture{
			Nanos: int64(vals[0]),
			Ref: vision.Reference{
				TX: vals[1], TZ: vals[2],
				QX: vals[3], QY: vals[4], QZ: vals[5], QW: vals[6],
				Tracking: tracking,
			},
		})
	}
	return refs, nil
}
