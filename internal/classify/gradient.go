package classify

import (
	"fmt"
	"image/color"
	"math"

	"github.com/jengzang/zonemap-backend-go/internal/models"
)

// HeatGradient is the 5-stop heat layer gradient over normalized weights. It
// follows the occupancy bands at a finer resolution.
var HeatGradient = []models.GradientStop{
	{At: 0.0, Color: "#00ff00"},
	{At: 0.3, Color: "#ffff00"},
	{At: 0.6, Color: "#ffa500"},
	{At: 0.8, Color: "#ff0000"},
	{At: 1.0, Color: "#8b0000"},
}

// ColorAt linearly interpolates the heat gradient at weight w, clamped to [0,1].
func ColorAt(w float64) color.RGBA {
	if math.IsNaN(w) {
		w = 0
	}
	w = math.Max(0, math.Min(1, w))

	for i := 1; i < len(HeatGradient); i++ {
		lo, hi := HeatGradient[i-1], HeatGradient[i]
		if w > hi.At {
			continue
		}
		t := (w - lo.At) / (hi.At - lo.At)
		a, b := mustHex(lo.Color), mustHex(hi.Color)
		return color.RGBA{
			R: lerp(a.R, b.R, t),
			G: lerp(a.G, b.G, t),
			B: lerp(a.B, b.B, t),
			A: 0xff,
		}
	}
	return mustHex(HeatGradient[len(HeatGradient)-1].Color)
}

// StopIndex returns the index of the gradient stop segment w falls into.
// It is non-decreasing in w.
func StopIndex(w float64) int {
	for i := len(HeatGradient) - 1; i >= 0; i-- {
		if w >= HeatGradient[i].At {
			return i
		}
	}
	return 0
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// ParseHex parses "#rrggbb".
func ParseHex(s string) (color.RGBA, error) {
	var c color.RGBA
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("invalid hex color %q", s)
	}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	c.A = 0xff
	return c, nil
}

func mustHex(s string) color.RGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}
