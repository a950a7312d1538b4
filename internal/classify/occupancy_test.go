package classify

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pct(v float64) *float64 { return &v }

func TestClassifyOccupancy_Thresholds(t *testing.T) {
	cases := []struct {
		in   *float64
		want Band
	}{
		{nil, BandUnknown},
		{pct(math.NaN()), BandUnknown},
		{pct(0), BandVeryLow},
		{pct(19.999), BandVeryLow},
		{pct(20), BandLow},
		{pct(39.9), BandLow},
		{pct(40), BandMediumLow},
		{pct(59.9), BandMediumLow},
		{pct(60), BandMediumHigh},
		{pct(79.9), BandMediumHigh},
		{pct(80), BandHigh},
		{pct(100), BandHigh},
		{pct(-5), BandVeryLow},
		{pct(150), BandHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyOccupancy(tc.in))
	}
}

func TestClassifyOccupancy_Monotonic(t *testing.T) {
	prev := ClassifyOccupancy(pct(0)).Severity()
	for v := 0.0; v <= 100; v += 0.5 {
		sev := ClassifyOccupancy(pct(v)).Severity()
		assert.GreaterOrEqual(t, sev, prev, "severity dropped at %v", v)
		prev = sev
	}
}

func TestStyle_TableIsTotal(t *testing.T) {
	seen := map[string]bool{}
	for _, b := range Bands() {
		s := b.Style()
		assert.NotEmpty(t, s.ColorToken)
		assert.NotEmpty(t, s.FillClass)
		_, err := ParseHex(s.Hex)
		assert.NoError(t, err)
		assert.False(t, seen[s.Hex], "duplicate color for %s", b)
		seen[s.Hex] = true
	}
	assert.Equal(t, BandUnknown.Style(), Band("bogus").Style())
}

func TestStyle_Colors(t *testing.T) {
	assert.Equal(t, "red", BandHigh.Style().ColorToken)
	assert.Equal(t, "orange", BandMediumHigh.Style().ColorToken)
	assert.Equal(t, "yellow", BandMediumLow.Style().ColorToken)
	assert.Equal(t, "lightgreen", BandLow.Style().ColorToken)
	assert.Equal(t, "green", BandVeryLow.Style().ColorToken)
	assert.Equal(t, "gray", BandUnknown.Style().ColorToken)
}

func TestStatusBadgeAndFormat(t *testing.T) {
	assert.Equal(t, "bg-red-100 text-red-800", StatusBadge(pct(95)))
	assert.Equal(t, "N/A", FormatPct(nil))
	assert.Equal(t, "42.5%", FormatPct(pct(42.5)))
}
