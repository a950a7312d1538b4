package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/zonemap-backend-go/internal/codec"
	"github.com/jengzang/zonemap-backend-go/internal/models"
	"github.com/jengzang/zonemap-backend-go/internal/service"
	"github.com/jengzang/zonemap-backend-go/internal/snapshot"
	"github.com/jengzang/zonemap-backend-go/pkg/response"
	"github.com/paulmach/orb/geojson"
)

// maxImportBytes caps GeoJSON import bodies.
const maxImportBytes = 32 << 20

// ZoneHandler handles HTTP requests for the zone map
type ZoneHandler struct {
	service *service.ZoneService
}

// NewZoneHandler creates a new zone handler
func NewZoneHandler(service *service.ZoneService) *ZoneHandler {
	return &ZoneHandler{service: service}
}

// ListZones handles GET /api/v1/zones. The body is the bare envelope so
// the endpoint can itself serve as an upstream.
func (h *ZoneHandler) ListZones(c *gin.Context) {
	env := h.service.Envelope(c.Request.Context())
	status := http.StatusOK
	if !env.Success {
		status = http.StatusInternalServerError
	}
	c.JSON(status, env)
}

// PutZones handles PUT /api/v1/zones
func (h *ZoneHandler) PutZones(c *gin.Context) {
	var zones []models.Zone
	if err := c.ShouldBindJSON(&zones); err != nil {
		response.BadRequest(c, "Invalid zone payload", err)
		return
	}

	n, err := h.service.Ingest(c.Request.Context(), zones)
	if err != nil {
		h.ingestError(c, err)
		return
	}
	response.Success(c, gin.H{"upserted": n})
}

// ImportGeoJSON handles POST /api/v1/zones/import
func (h *ZoneHandler) ImportGeoJSON(c *gin.Context) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)); err != nil {
		response.BadRequest(c, "Failed to read request body", err)
		return
	}
	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	if err != nil {
		response.BadRequest(c, "Invalid GeoJSON", err)
		return
	}

	n, err := h.service.Import(c.Request.Context(), fc)
	if err != nil {
		h.ingestError(c, err)
		return
	}
	response.Success(c, gin.H{"imported": n})
}

// GetMap handles GET /api/v1/zones/map
func (h *ZoneHandler) GetMap(c *gin.Context) {
	state, q, ok := bindMapRequest(c)
	if !ok {
		return
	}

	ds, err := h.service.Dataset(c.Request.Context(), state, q)
	if err != nil {
		response.InternalError(c, "Failed to build map", err)
		return
	}
	response.Success(c, ds)
}

// GetGeoJSON handles GET /api/v1/zones/geojson
func (h *ZoneHandler) GetGeoJSON(c *gin.Context) {
	state, q, ok := bindMapRequest(c)
	if !ok {
		return
	}

	fc, err := h.service.FeatureCollection(c.Request.Context(), state, q)
	if err != nil {
		response.InternalError(c, "Failed to export zones", err)
		return
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		response.InternalError(c, "Failed to encode GeoJSON", err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}

// GetSnapshot handles GET /api/v1/zones/snapshot.png
func (h *ZoneHandler) GetSnapshot(c *gin.Context) {
	state, q, ok := bindMapRequest(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.Snapshot(c.Request.Context(), &buf, state, q); err != nil {
		if errors.Is(err, snapshot.ErrInvalidSize) {
			response.BadRequest(c, "Invalid snapshot size", err)
			return
		}
		response.InternalError(c, "Failed to render snapshot", err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// GetShare handles GET /api/v1/zones/share
func (h *ZoneHandler) GetShare(c *gin.Context) {
	res, err := h.service.Share(c.Request.URL.RawQuery)
	if err != nil {
		response.InternalError(c, "Failed to build share link", err)
		return
	}
	response.Success(c, gin.H{"url": res.URL, "query": res.Query})
}

func (h *ZoneHandler) ingestError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidZone) {
		response.BadRequest(c, "Invalid zone payload", err)
		return
	}
	response.InternalError(c, "Failed to store zones", err)
}

// bindMapRequest decodes the filter state leniently from the codec keys and
// binds the viewport parameters strictly.
func bindMapRequest(c *gin.Context) (models.FilterState, models.MapQuery, bool) {
	var q models.MapQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return models.FilterState{}, q, false
	}
	return codec.FromValues(c.Request.URL.Query()), q, true
}
