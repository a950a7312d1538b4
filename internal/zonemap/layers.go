package zonemap

import (
	"sync"
)

// LayerState is the lifecycle position of one map layer.
type LayerState string

const (
	LayerAbsent    LayerState = "absent"
	LayerMounted   LayerState = "mounted"
	LayerUnmounted LayerState = "unmounted"
)

// Layer names managed by Layers.
const (
	LayerPolygons = "polygons"
	LayerMarkers  = "markers"
	LayerHeat     = "heat"
)

// Surface receives the side effects of layer transitions. It is only called
// when a layer actually changes state.
type Surface interface {
	AddLayer(name string)
	RemoveLayer(name string)
}

// Layer is a single mountable layer. Mount and Unmount are idempotent.
type Layer struct {
	name    string
	state   LayerState
	surface Surface
}

// NewLayer creates an absent layer. surface may be nil.
func NewLayer(name string, surface Surface) *Layer {
	return &Layer{name: name, state: LayerAbsent, surface: surface}
}

func (l *Layer) Name() string      { return l.name }
func (l *Layer) State() LayerState { return l.state }

// Mount attaches the layer. It reports whether anything changed.
func (l *Layer) Mount() bool {
	if l.state == LayerMounted {
		return false
	}
	l.state = LayerMounted
	if l.surface != nil {
		l.surface.AddLayer(l.name)
	}
	return true
}

// Unmount detaches a mounted layer. An absent layer stays absent.
func (l *Layer) Unmount() bool {
	if l.state != LayerMounted {
		return false
	}
	l.state = LayerUnmounted
	if l.surface != nil {
		l.surface.RemoveLayer(l.name)
	}
	return true
}

// Set mounts or unmounts the layer to match want.
func (l *Layer) Set(want bool) bool {
	if want {
		return l.Mount()
	}
	return l.Unmount()
}

// Layers is the set of layers of one map view.
type Layers struct {
	mu       sync.Mutex
	Polygons *Layer
	Markers  *Layer
	Heat     *Layer
}

// NewLayers creates all layers in the absent state.
func NewLayers(surface Surface) *Layers {
	return &Layers{
		Polygons: NewLayer(LayerPolygons, surface),
		Markers:  NewLayer(LayerMarkers, surface),
		Heat:     NewLayer(LayerHeat, surface),
	}
}

// Sync brings every layer in line with ds. The heat layer is mounted only
// when the heatmap is enabled and has points. Syncing the same dataset twice
// is a no-op.
func (ls *Layers) Sync(ds Dataset) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.Polygons.Set(ds.Summary.Polygons > 0)
	ls.Markers.Set(len(ds.Clusters) > 0)
	ls.Heat.Set(ds.State.Heatmap && ds.Heat != nil && len(ds.Heat.Points) > 0)
}

// Teardown unmounts every layer, as when the view goes away.
func (ls *Layers) Teardown() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.Heat.Unmount()
	ls.Markers.Unmount()
	ls.Polygons.Unmount()
}

// States snapshots the state of every layer by name.
func (ls *Layers) States() map[string]LayerState {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	return map[string]LayerState{
		LayerPolygons: ls.Polygons.State(),
		LayerMarkers:  ls.Markers.State(),
		LayerHeat:     ls.Heat.State(),
	}
}
