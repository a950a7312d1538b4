package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jengzang/zonemap-backend-go/internal/config"
	"github.com/jengzang/zonemap-backend-go/internal/logging"
	"github.com/jengzang/zonemap-backend-go/internal/models"
	"github.com/jengzang/zonemap-backend-go/internal/repository"
	"github.com/jengzang/zonemap-backend-go/internal/snapshot"
	"github.com/jengzang/zonemap-backend-go/internal/statestore"
	"github.com/jengzang/zonemap-backend-go/internal/zonemap"
	"github.com/paulmach/orb/geojson"
)

// ErrInvalidZone marks ingest payloads that cannot be stored.
var ErrInvalidZone = errors.New("invalid zone")

// ZoneService handles business logic for the zone map
type ZoneService struct {
	repo     *repository.ZoneRepository
	pipeline *zonemap.Pipeline
	mapCfg   config.MapConfig
	baseURL  string
	log      logging.Logger
}

// NewZoneService creates a new zone service
func NewZoneService(repo *repository.ZoneRepository, cfg *config.Config, log logging.Logger) *ZoneService {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ZoneService{
		repo:     repo,
		pipeline: zonemap.NewPipeline(log),
		mapCfg:   cfg.Map,
		baseURL:  cfg.PublicBaseURL,
		log:      log.Named("zones"),
	}
}

// Envelope returns the stored collection in the upstream wire shape. A
// storage failure is reported inside the envelope.
func (s *ZoneService) Envelope(ctx context.Context) models.ZonesEnvelope {
	zones, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("[ZoneService] failed to list zones", logging.Err(err))
		return models.ZonesEnvelope{Success: false, Zones: []models.Zone{}, Error: "failed to load zones"}
	}
	return models.ZonesEnvelope{Success: true, Zones: zones}
}

// Ingest validates and upserts a batch of zones
func (s *ZoneService) Ingest(ctx context.Context, zones []models.Zone) (int, error) {
	seen := make(map[models.ZoneID]struct{}, len(zones))
	for i, z := range zones {
		if z.ID == "" {
			return 0, fmt.Errorf("%w: zone %d has no id", ErrInvalidZone, i)
		}
		if _, dup := seen[z.ID]; dup {
			return 0, fmt.Errorf("%w: duplicate id %s", ErrInvalidZone, z.ID)
		}
		seen[z.ID] = struct{}{}
	}

	n, err := s.repo.Upsert(ctx, zones)
	if err != nil {
		return 0, err
	}
	zonemap.RecordGeometry(s.log, zones)
	s.log.Info("[ZoneService] ingested zones", logging.Int("count", n))
	return n, nil
}

// Import converts a GeoJSON feature collection to zones and ingests them
func (s *ZoneService) Import(ctx context.Context, fc *geojson.FeatureCollection) (int, error) {
	zones, err := zonemap.FromFeatureCollection(fc)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidZone, err)
	}
	return s.Ingest(ctx, zones)
}

// Viewport fills unset query parameters with configured defaults
func (s *ZoneService) Viewport(q models.MapQuery) zonemap.Viewport {
	vp := zonemap.Viewport{Zoom: q.Zoom, ClusterRadiusPx: q.Radius}
	if vp.Zoom <= 0 {
		vp.Zoom = s.mapCfg.DefaultZoom
	}
	if vp.Zoom > s.mapCfg.MaxZoom {
		vp.Zoom = s.mapCfg.MaxZoom
	}
	if vp.ClusterRadiusPx == 0 {
		vp.ClusterRadiusPx = s.mapCfg.ClusterRadiusPx
	}
	return vp
}

// Dataset builds the render dataset for state over the stored zones
func (s *ZoneService) Dataset(ctx context.Context, state models.FilterState, q models.MapQuery) (zonemap.Dataset, error) {
	zones, err := s.repo.List(ctx)
	if err != nil {
		return zonemap.Dataset{}, err
	}
	return s.pipeline.Build(zones, state, s.Viewport(q)), nil
}

// FeatureCollection exports the filtered zones as GeoJSON
func (s *ZoneService) FeatureCollection(ctx context.Context, state models.FilterState, q models.MapQuery) (*geojson.FeatureCollection, error) {
	ds, err := s.Dataset(ctx, state, q)
	if err != nil {
		return nil, err
	}
	return zonemap.ToFeatureCollection(ds), nil
}

// Snapshot writes a PNG of the filtered map to w
func (s *ZoneService) Snapshot(ctx context.Context, w io.Writer, state models.FilterState, q models.MapQuery) error {
	ds, err := s.Dataset(ctx, state, q)
	if err != nil {
		return err
	}

	opt := snapshot.Options{Width: q.Width, Height: q.Height, MaxZoom: s.mapCfg.MaxZoom}
	if opt.Width <= 0 {
		opt.Width = s.mapCfg.SnapshotWidth
	}
	if opt.Height <= 0 {
		opt.Height = s.mapCfg.SnapshotHeight
	}
	return snapshot.WritePNG(w, ds, opt)
}

// Share returns the public share link for a raw query string. The server
// has no clipboard, so the result always carries the URL for display.
func (s *ZoneService) Share(rawQuery string) (zonemap.ShareResult, error) {
	view := zonemap.NewView(zonemap.ViewConfig{
		BaseURL: s.baseURL,
		Store:   statestore.NewMemoryStore(rawQuery),
		Logger:  s.log,
	})
	return view.Share()
}
