package zonemap

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jengzang/zonemap-backend-go/internal/codec"
	"github.com/jengzang/zonemap-backend-go/internal/logging"
	"github.com/jengzang/zonemap-backend-go/internal/metrics"
	"github.com/jengzang/zonemap-backend-go/internal/models"
	"github.com/jengzang/zonemap-backend-go/internal/statestore"
)

var (
	// ErrStaleResponse is returned when a fetch completes after a newer one
	// was started. Its result is dropped.
	ErrStaleResponse = errors.New("stale fetch response discarded")
	// ErrClipboardUnavailable wraps clipboard write failures during Share.
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
)

// Source provides the raw zone collection.
type Source interface {
	FetchZones(ctx context.Context) ([]models.Zone, error)
}

// Clipboard receives share URLs.
type Clipboard interface {
	WriteText(text string) error
}

// ViewConfig wires a View to its collaborators. Every field is optional.
type ViewConfig struct {
	BaseURL   string
	Store     statestore.Store
	Clipboard Clipboard
	Surface   Surface
	Logger    logging.Logger
	Viewport  Viewport
}

// ShareResult is the outcome of Share. URL is always set; ClipboardErr is
// non-nil when copying failed and the caller should display URL instead.
type ShareResult struct {
	URL          string `json:"url"`
	Query        string `json:"query"`
	Copied       bool   `json:"copied"`
	ClipboardErr error  `json:"-"`
}

// View owns one zone collection and one filter state, the equivalent of a
// mounted map page.
type View struct {
	mu         sync.Mutex
	zones      []models.Zone
	state      models.FilterState
	viewport   Viewport
	fetchErr   error
	generation uint64

	baseURL   string
	store     statestore.Store
	clipboard Clipboard
	layers    *Layers
	pipeline  *Pipeline
	log       logging.Logger
}

// NewView creates a view and hydrates its filter state from the store.
func NewView(cfg ViewConfig) *View {
	log := cfg.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	store := cfg.Store
	if store == nil {
		store = statestore.NewMemoryStore("")
	}
	return &View{
		state:     codec.Decode(store.Get()),
		viewport:  cfg.Viewport,
		baseURL:   cfg.BaseURL,
		store:     store,
		clipboard: cfg.Clipboard,
		layers:    NewLayers(cfg.Surface),
		pipeline:  NewPipeline(log),
		log:       log.Named("view"),
	}
}

// State returns the current filter state.
func (v *View) State() models.FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// SetState replaces the filter state.
func (v *View) SetState(s models.FilterState) {
	v.mu.Lock()
	v.state = s
	v.mu.Unlock()
}

// SetViewport records a pan or zoom.
func (v *View) SetViewport(vp Viewport) {
	v.mu.Lock()
	v.viewport = vp
	v.mu.Unlock()
}

// Zones returns the raw collection last accepted from a fetch.
func (v *View) Zones() []models.Zone {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.zones
}

// Err returns the error of the last accepted fetch, if any.
func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fetchErr
}

// Layers exposes the layer state machine.
func (v *View) Layers() *Layers {
	return v.layers
}

// BeginFetch starts a new fetch generation, superseding any in flight.
func (v *View) BeginFetch() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation++
	return v.generation
}

// CompleteFetch delivers the result of the fetch started as generation gen.
// A result from a superseded generation is dropped and ErrStaleResponse
// returned. A failed fetch leaves the view with the (empty) collection the
// source returned and records the error for display. An accepted collection
// has its malformed geometry counted once.
func (v *View) CompleteFetch(gen uint64, zones []models.Zone, err error) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.generation {
		metrics.StaleResponsesTotal.Inc()
		v.log.Debug("[View] dropped stale fetch response",
			logging.Int64("generation", int64(gen)),
			logging.Int64("current", int64(v.generation)))
		return ErrStaleResponse
	}
	v.zones = zones
	v.fetchErr = err
	if err != nil {
		v.log.Warn("[View] zone fetch failed", logging.Err(err))
		return err
	}
	RecordGeometry(v.log, zones)
	return nil
}

// Refresh fetches zones from src and applies them unless a newer Refresh
// started in the meantime.
func (v *View) Refresh(ctx context.Context, src Source) error {
	gen := v.BeginFetch()
	zones, err := src.FetchZones(ctx)
	return v.CompleteFetch(gen, zones, err)
}

// Dataset rebuilds the render dataset from the current zones, state and
// viewport and syncs the layers to it.
func (v *View) Dataset() Dataset {
	v.mu.Lock()
	zones, state, vp := v.zones, v.state, v.viewport
	v.mu.Unlock()

	ds := v.pipeline.Build(zones, state, vp)
	v.layers.Sync(ds)
	return ds
}

// Share builds the share URL for the current state, writes the encoded
// query back to the store and tries to copy the URL to the clipboard. Only
// an unusable base URL is an error; clipboard problems are reported on the
// result.
func (v *View) Share() (ShareResult, error) {
	state := v.State()

	url, err := codec.ShareURL(v.baseURL, state)
	if err != nil {
		return ShareResult{}, fmt.Errorf("failed to build share url: %w", err)
	}
	res := ShareResult{URL: url, Query: codec.Encode(state)}
	v.store.Set(res.Query)

	if v.clipboard == nil {
		res.ClipboardErr = ErrClipboardUnavailable
		return res, nil
	}
	if err := v.clipboard.WriteText(url); err != nil {
		res.ClipboardErr = fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
		v.log.Info("[View] clipboard write failed, showing url instead", logging.Err(err))
		return res, nil
	}
	res.Copied = true
	return res, nil
}

// Close unmounts every layer.
func (v *View) Close() {
	v.layers.Teardown()
}
