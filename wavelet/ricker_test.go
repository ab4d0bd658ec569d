package wavelet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRicker(t *testing.T) {
	w := Ricker(1000, 2, 0.01)
	assert.Len(t, w, 501)

	// Peak at t0 = 100ms -> sample 50.
	peak := 0
	for i, v := range w {
		if v > w[peak] {
			peak = i
		}
	}
	assert.Equal(t, 50, peak)
	assert.InDelta(t, 1.0, w[50], 1e-6)
	assert.InDelta(t, 0.0, w[0], 1e-3)
	assert.InDelta(t, float64(w[40]), float64(w[60]), 1e-6)
}

func TestTile(t *testing.T) {
	assert.Equal(t, []float32{1, 2, 1, 2, 1, 2}, Tile([]float32{1, 2}, 3))
	assert.Empty(t, Tile([]float32{1, 2}, 0))
}
