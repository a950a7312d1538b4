package classify

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeatGradient_Stops(t *testing.T) {
	require.Len(t, HeatGradient, 5)
	for i := 1; i < len(HeatGradient); i++ {
		assert.Greater(t, HeatGradient[i].At, HeatGradient[i-1].At)
	}
	assert.Equal(t, 0.0, HeatGradient[0].At)
	assert.Equal(t, 1.0, HeatGradient[4].At)
}

func TestColorAt_HitsStops(t *testing.T) {
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, ColorAt(0))
	assert.Equal(t, color.RGBA{255, 255, 0, 255}, ColorAt(0.3))
	assert.Equal(t, color.RGBA{255, 165, 0, 255}, ColorAt(0.6))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, ColorAt(0.8))
	assert.Equal(t, color.RGBA{139, 0, 0, 255}, ColorAt(1))
}

func TestColorAt_Clamps(t *testing.T) {
	assert.Equal(t, ColorAt(0), ColorAt(-1))
	assert.Equal(t, ColorAt(1), ColorAt(3))
	assert.Equal(t, ColorAt(0), ColorAt(math.NaN()))
}

func TestColorAt_Interpolates(t *testing.T) {
	mid := ColorAt(0.15)
	assert.Equal(t, uint8(128), mid.R)
	assert.Equal(t, uint8(255), mid.G)
}

func TestStopIndex_Monotonic(t *testing.T) {
	prev := 0
	for w := 0.0; w <= 1.0; w += 0.01 {
		idx := StopIndex(w)
		assert.GreaterOrEqual(t, idx, prev)
		prev = idx
	}
	assert.Equal(t, 4, StopIndex(1))
	assert.Equal(t, 1, StopIndex(0.3))
}

func TestParseHex_Invalid(t *testing.T) {
	_, err := ParseHex("red")
	assert.Error(t, err)
	_, err = ParseHex("#zzzzzz")
	assert.Error(t, err)
}
