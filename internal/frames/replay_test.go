package frames

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGrayPNG(t *testing.T, path string, w, h int, value uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func writePoses(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestReplaySession(t *testing.T) {
	dir := t.TempDir()
	writeGrayPNG(t, filepath.Join(dir, "frame_000.png"), 16, 16, 10)
	writeGrayPNG(t, filepath.Join(dir, "frame_001.png"), 16, 16, 200)

	posesPath := filepath.Join(dir, "poses.csv")
	writePoses(t, posesPath, `t_ns,tx,tz,qx,qy,qz,qw,tracking
1000,0.0,0.0,0,0,0,1,true
2000,0.1,-0.2,0,0,0,1,false
`)

	r, err := NewReplay(dir, posesPath)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	assert.False(t, r.Finished())

	first, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, int64(1000), first.Nanos)
	assert.True(t, first.Ref.Tracking)
	assert.Equal(t, 16, first.Frame.Width)
	assert.Equal(t, uint8(10), first.Frame.At(3, 3))

	second, err := r.Next()
	require.NoError(t, err)
	assert.InDelta(t, 0.1, second.Ref.TX, 1e-9)
	assert.InDelta(t, -0.2, second.Ref.TZ, 1e-9)
	assert.False(t, second.Ref.Tracking)

	assert.True(t, r.Finished())
	done, err := r.Next()
	require.NoError(t, err)
	assert.Nil(t, done)
}

func TestReplayRejectsShortPoseFile(t *testing.T) {
	dir := t.TempDir()
	writeGrayPNG(t, filepath.Join(dir, "frame_000.png"), 8, 8, 0)
	writeGrayPNG(t, filepath.Join(dir, "frame_001.png"), 8, 8, 0)

	posesPath := filepath.Join(dir, "poses.csv")
	writePoses(t, posesPath, "1000,0,0,0,0,0,1,true\n")

	_, err := NewReplay(dir, posesPath)
	assert.Error(t, err)
}

func TestReplayRejectsMalformedRow(t *testing.T) {
	dir := t.TempDir()
	writeGrayPNG(t, filepath.Join(dir, "frame_000.png"), 8, 8, 0)

	posesPath := filepath.Join(dir, "poses.csv")
	writePoses(t, posesPath, "1000,0,0,0,0,0,1,maybe\n")

	_, err := NewReplay(dir, posesPath)
	assert.Error(t, err)
}
