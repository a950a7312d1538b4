package codec

import (
	"math/rand"
	"net/url"
	"testing"

	"github.com/jengzang/zonemap-backend-go/internal/filter"
	"github.com/jengzang/zonemap-backend-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Defaults(t *testing.T) {
	assert.Equal(t, "", Encode(models.DefaultFilterState()))
	assert.Equal(t, models.DefaultFilterState(), Decode(""))
}

func TestEncode_ScenarioC(t *testing.T) {
	s := models.FilterState{
		OccupancyBand: models.OccupancyHigh,
		Search:        "",
		AreaRange:     models.AreaRange{Min: 0, Max: 1000},
	}

	encoded := Encode(s)

	assert.Equal(t, "filter=high", encoded)
	assert.NotContains(t, encoded, KeySearch)
	assert.NotContains(t, encoded, KeyMinArea)
	assert.NotContains(t, encoded, KeyMaxArea)
	assert.Equal(t, encoded, Encode(Decode(encoded)))
}

func TestEncode_AllFields(t *testing.T) {
	s := models.FilterState{
		OccupancyBand: models.OccupancyMedium,
		Search:        "zone nord",
		AreaRange:     models.AreaRange{Min: 12.5, Max: 300},
		Viability:     []string{models.ViabilityPartial, models.ViabilityComplete},
		Statuses:      []string{"actif", "en_construction"},
		Heatmap:       true,
	}

	encoded := Encode(s)
	values, err := url.ParseQuery(encoded)
	require.NoError(t, err)

	assert.Equal(t, "medium", values.Get(KeyFilter))
	assert.Equal(t, "zone nord", values.Get(KeySearch))
	assert.Equal(t, "12.5", values.Get(KeyMinArea))
	assert.Equal(t, "300", values.Get(KeyMaxArea))
	assert.Equal(t, "partial,complete", values.Get(KeyViability))
	assert.Equal(t, "actif,en_construction", values.Get(KeyStatus))
	assert.Equal(t, "true", values.Get(KeyHeatmap))

	assert.Equal(t, s, Decode(encoded))
}

func TestEncode_OmitsFalseHeatmapAndDefaultBounds(t *testing.T) {
	s := models.DefaultFilterState()
	s.AreaRange.Max = 500
	encoded := Encode(s)
	assert.Equal(t, "maxSuperficie=500", encoded)
	assert.NotContains(t, encoded, KeyHeatmap)
}

func TestDecode_Malformed(t *testing.T) {
	s := Decode("?filter=extreme&minSuperficie=abc&maxSuperficie=-4&heatmap=yes&viabilite=bogus,partial&statut=,actif,actif&unknown=1&search=%zz")

	assert.Equal(t, models.OccupancyAll, s.OccupancyBand)
	assert.Equal(t, models.DefaultAreaRange(), s.AreaRange)
	assert.False(t, s.Heatmap)
	assert.Equal(t, []string{"partial"}, s.Viability)
	assert.Equal(t, []string{"actif"}, s.Statuses)
	assert.Equal(t, "", s.Search)
}

func TestEncode_DropsUnknownViability(t *testing.T) {
	zones := []models.Zone{
		{ID: "full", ViabilizationPct: models.Float(95)},
		{ID: "low", ViabilizationPct: models.Float(5)},
		{ID: "unknown"},
	}
	cases := map[string]struct {
		viability []string
		want      string
	}{
		"mixed":     {[]string{"bogus", models.ViabilityComplete}, "viabilite=complete"},
		"only junk": {[]string{"bogus", " ", "COMPLETE"}, ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s := models.DefaultFilterState()
			s.Viability = tc.viability

			encoded := Encode(s)
			assert.Equal(t, tc.want, encoded)
			assert.Equal(t, filter.Apply(zones, s), filter.Apply(zones, Decode(encoded)))
		})
	}
}

func TestDecode_InvertedRangeFallsBack(t *testing.T) {
	s := Decode("minSuperficie=500&maxSuperficie=100")
	assert.Equal(t, models.DefaultAreaRange(), s.AreaRange)

	inverted := models.DefaultFilterState()
	inverted.AreaRange = models.AreaRange{Min: 500, Max: 100}
	zones := []models.Zone{{ID: "a", AreaHectares: models.Float(300)}, {ID: "b"}}
	assert.Equal(t, filter.Apply(zones, inverted), filter.Apply(zones, Decode(Encode(inverted))))
}

func TestDecode_NeverPanics(t *testing.T) {
	inputs := []string{"", "?", "&&&", "=", "%", "filter", "heatmap=true=true", "statut=%2C%2C", ";;", "\x00\xff"}
	for _, in := range inputs {
		assert.NotPanics(t, func() { Decode(in) }, in)
	}
}

func TestShareURL(t *testing.T) {
	s := models.DefaultFilterState()
	s.OccupancyBand = models.OccupancyLow
	s.Heatmap = true

	got, err := ShareURL("https://dash.example.ci/zones/map?lang=fr&filter=high", s)
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "/zones/map", u.Path)
	assert.Equal(t, "fr", u.Query().Get("lang"))
	assert.Equal(t, "low", u.Query().Get(KeyFilter))
	assert.Equal(t, "true", u.Query().Get(KeyHeatmap))
	assert.Equal(t, s, FromValues(u.Query()))

	_, err = ShareURL("://bad", s)
	assert.Error(t, err)
}

// For random UI-reachable states the decoded state filters any zone set the
// same way as the original, and the encoding is stable.
func TestRoundTrip_Property(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	bands := []models.OccupancyBand{models.OccupancyAll, models.OccupancyHigh, models.OccupancyMedium, models.OccupancyLow}
	viab := []string{models.ViabilityComplete, models.ViabilityPartial, models.ViabilityNone}
	statuses := []string{"actif", "inactif", "en_construction"}
	searches := []string{"", "you", "Zone Nord", "é&=?", "a+b"}

	zones := []models.Zone{
		{ID: "1", Name: "Yopougon", OccupancyPct: models.Float(95), AreaHectares: models.Float(120), Status: models.Str("actif"), ViabilizationPct: models.Float(85)},
		{ID: "2", Name: "Koumassi", OccupancyPct: models.Float(25), AreaHectares: models.Float(40), Status: models.Str("inactif"), ViabilizationPct: models.Float(10)},
		{ID: "3", Name: "Zone Nord é&=?", OccupancyPct: models.Float(45), AreaHectares: models.Float(700), Status: models.Str("en_construction")},
		{ID: "4", Name: "a+b"},
		{ID: "5", Name: "PK24", AreaHectares: models.Float(1500)},
	}

	for i := 0; i < 300; i++ {
		s := models.DefaultFilterState()
		s.OccupancyBand = bands[rng.Intn(len(bands))]
		s.Search = searches[rng.Intn(len(searches))]
		if rng.Intn(2) == 0 {
			s.AreaRange = models.AreaRange{Min: float64(rng.Intn(100)), Max: float64(100 + rng.Intn(901))}
		}
		for _, v := range viab {
			if rng.Intn(3) == 0 {
				s.Viability = append(s.Viability, v)
			}
		}
		for _, st := range statuses {
			if rng.Intn(3) == 0 {
				s.Statuses = append(s.Statuses, st)
			}
		}
		s.Heatmap = rng.Intn(2) == 0

		decoded := Decode(Encode(s))

		assert.Equal(t, s, decoded)
		assert.Equal(t, filter.Apply(zones, s), filter.Apply(zones, decoded))
		assert.Equal(t, Encode(s), Encode(decoded))
	}
}
