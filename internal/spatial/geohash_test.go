package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeGeohash(t *testing.T) {
	// well-known reference value
	assert.Equal(t, "ezs42", EncodeGeohash(42.6, -5.6, 5))
	assert.Len(t, EncodeGeohash(5.3, -4.0, 0), 1)
	assert.Len(t, EncodeGeohash(5.3, -4.0, 20), 12)
}

func TestGeohashPrecisionForZoom(t *testing.T) {
	prev := 0
	for z := 0; z <= 20; z++ {
		p := GeohashPrecisionForZoom(z)
		assert.GreaterOrEqual(t, p, prev)
		prev = p
	}
}
