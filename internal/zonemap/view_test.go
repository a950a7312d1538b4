package zonemap

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/jengzang/zonemap-backend-go/internal/models"
	"github.com/jengzang/zonemap-backend-go/internal/statestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	zones []models.Zone
	err   error
}

func (s stubSource) FetchZones(context.Context) ([]models.Zone, error) {
	return s.zones, s.err
}

type stubClipboard struct {
	err  error
	text string
}

func (c *stubClipboard) WriteText(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func TestView_HydratesFromStore(t *testing.T) {
	v := NewView(ViewConfig{Store: statestore.NewMemoryStore("?filter=low&heatmap=true&bogus=1")})

	s := v.State()
	assert.Equal(t, models.OccupancyLow, s.OccupancyBand)
	assert.True(t, s.Heatmap)
}

func TestView_Refresh(t *testing.T) {
	v := NewView(ViewConfig{Viewport: Viewport{Zoom: 12, ClusterRadiusPx: 60}})

	require.NoError(t, v.Refresh(context.Background(), stubSource{zones: sampleZones()}))
	assert.Len(t, v.Zones(), 3)
	assert.NoError(t, v.Err())
	assert.Len(t, v.Dataset().Zones, 3)
}

func TestView_FetchFailureEmptiesView(t *testing.T) {
	v := NewView(ViewConfig{})
	require.NoError(t, v.Refresh(context.Background(), stubSource{zones: sampleZones()}))

	boom := errors.New("upstream down")
	err := v.Refresh(context.Background(), stubSource{err: boom})

	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, v.Err(), boom)
	assert.Empty(t, v.Dataset().Zones)
}

func TestView_StaleResponseDiscarded(t *testing.T) {
	v := NewView(ViewConfig{})
	v.SetState(models.FilterState{OccupancyBand: models.OccupancyHigh, AreaRange: models.DefaultAreaRange()})

	older := v.BeginFetch()
	newer := v.BeginFetch()

	require.NoError(t, v.CompleteFetch(newer, sampleZones()[:1], nil))
	err := v.CompleteFetch(older, sampleZones(), nil)

	assert.ErrorIs(t, err, ErrStaleResponse)
	assert.Len(t, v.Zones(), 1)
	assert.Equal(t, models.OccupancyHigh, v.State().OccupancyBand, "state untouched by stale response")

	// a stale failure must not surface either
	assert.ErrorIs(t, v.CompleteFetch(older, nil, errors.New("late")), ErrStaleResponse)
	assert.NoError(t, v.Err())
}

func TestView_Share(t *testing.T) {
	store := statestore.NewMemoryStore("")
	clip := &stubClipboard{}
	v := NewView(ViewConfig{BaseURL: "https://dash.example.ci/zones/map", Store: store, Clipboard: clip})
	s := models.DefaultFilterState()
	s.OccupancyBand = models.OccupancyHigh
	v.SetState(s)

	res, err := v.Share()

	require.NoError(t, err)
	assert.Equal(t, "https://dash.example.ci/zones/map?filter=high", res.URL)
	assert.Equal(t, "filter=high", res.Query)
	assert.True(t, res.Copied)
	assert.NoError(t, res.ClipboardErr)
	assert.Equal(t, res.URL, clip.text)
	assert.Equal(t, "filter=high", store.Get())
}

func TestView_ShareClipboardFailure(t *testing.T) {
	v := NewView(ViewConfig{
		BaseURL:   "https://dash.example.ci/zones/map",
		Clipboard: &stubClipboard{err: errors.New("permission denied")},
	})
	s := models.DefaultFilterState()
	s.Heatmap = true
	v.SetState(s)

	res, err := v.Share()

	require.NoError(t, err)
	assert.False(t, res.Copied)
	assert.ErrorIs(t, res.ClipboardErr, ErrClipboardUnavailable)
	u, perr := url.Parse(res.URL)
	require.NoError(t, perr)
	assert.Equal(t, "true", u.Query().Get("heatmap"))
}

func TestView_ShareWithoutClipboard(t *testing.T) {
	v := NewView(ViewConfig{BaseURL: "http://localhost:8080/zones/map"})

	res, err := v.Share()

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/zones/map", res.URL)
	assert.ErrorIs(t, res.ClipboardErr, ErrClipboardUnavailable)
}

func TestView_ShareBadBaseURL(t *testing.T) {
	v := NewView(ViewConfig{BaseURL: "://nope"})
	_, err := v.Share()
	assert.Error(t, err)
}

func TestView_Close(t *testing.T) {
	v := NewView(ViewConfig{Viewport: Viewport{Zoom: 12, ClusterRadiusPx: 60}})
	require.NoError(t, v.Refresh(context.Background(), stubSource{zones: sampleZones()}))
	v.Dataset()
	assert.Equal(t, LayerMounted, v.Layers().Polygons.State())

	v.Close()
	assert.Equal(t, LayerUnmounted, v.Layers().Polygons.State())
}
