package snapshot

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var buf bytes.Buffer
	w := NewWriter(&buf)

	frames := make([][]float64, 5)
	for n := range frames {
		frames[n] = make([]float64, 6*32)
		for i := range frames[n] {
			frames[n][i] = rng.NormFloat64()
		}
		require.NoError(t, w.Append(n, float64(n)*0.25, frames[n]))
	}

	r := NewReader(&buf)
	for n := range frames {
		frame, tm, y, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, n, frame)
		assert.Equal(t, float64(n)*0.25, tm)
		assert.Equal(t, frames[n], y)
	}
	_, _, _, err := r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestCompressibleFramesShrink(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	y := make([]float64, 6*1024) // all zeros compress well
	require.NoError(t, w.Append(0, 0, y))
	assert.Less(t, buf.Len(), 8*len(y)/2, "snappy should compress a constant frame")
}

func TestBadMagic(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte("not a snapshot stream")))
	_, _, _, err := r.Next()
	require.Error(t, err)
}

func TestEmptyStream(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	_, _, _, err := r.Next()
	require.Error(t, err)
}
