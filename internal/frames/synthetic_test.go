package frames

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticSlidesAndAdvances(t *testing.T) {
	s := NewSynthetic(64, 32, 2, 0.05)

	first, err := s.Next()
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, first.Frame.Valid())
	assert.Equal(t, 64, first.Frame.Width)
	assert.Equal(t, 32, first.Frame.Height)
	assert.Zero(t, first.Ref.TX)
	assert.True(t, first.Ref.Tracking)

	second, err := s.Next()
	require.NoError(t, err)
	assert.InDelta(t, 0.05, second.Ref.TX, 1e-9)

	// The texture must actually move between frames.
	assert.NotEqual(t, first.Frame.Pix, second.Frame.Pix)
}

func TestSyntheticThirdFrame(t *testing.T) {
	s := NewSynthetic(32, 32, 1, 0.02)
	for i := 0; i < 2; i++ {
		_, err := s.Next()
		require.NoError(t, err)
	}
	third, err := s.Next()
	require.NoError(t, err)
	assert.InDelta(t, 0.04, third.Ref.TX, 1e-9)
}
