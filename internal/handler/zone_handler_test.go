package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/zonemap-backend-go/internal/config"
	"github.com/jengzang/zonemap-backend-go/internal/database"
	"github.com/jengzang/zonemap-backend-go/internal/models"
	"github.com/jengzang/zonemap-backend-go/internal/repository"
	"github.com/jengzang/zonemap-backend-go/internal/service"
	"github.com/jengzang/zonemap-backend-go/internal/zonemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const zonesPayload = `[
	{"id":1,"name":"Yopougon","occupancyPct":95,"areaHectares":120,"status":"actif",
	 "polygon":[[-4.08,5.33],[-4.07,5.33],[-4.07,5.34],[-4.08,5.34]],"centroid":{"lat":5.335,"lng":-4.075}},
	{"id":2,"name":"Koumassi","occupancyPct":25,"areaHectares":40,"status":"inactif",
	 "centroid":{"lat":5.295,"lng":-3.945}},
	{"id":3,"name":"Sans géométrie","polygon":[],"centroid":null}
]`

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	conn, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, database.NewMigrationManager(conn).Migrate(context.Background()))

	cfg := &config.Config{
		PublicBaseURL: "http://localhost:8080/zones/map",
		Map:           config.MapConfig{ClusterRadiusPx: 60, DefaultZoom: 12, MaxZoom: 18, SnapshotWidth: 120, SnapshotHeight: 80},
	}
	h := NewZoneHandler(service.NewZoneService(repository.NewZoneRepository(conn), cfg, nil))

	r := gin.New()
	r.GET("/zones", h.ListZones)
	r.PUT("/zones", h.PutZones)
	r.POST("/zones/import", h.ImportGeoJSON)
	r.GET("/zones/map", h.GetMap)
	r.GET("/zones/geojson", h.GetGeoJSON)
	r.GET("/zones/snapshot.png", h.GetSnapshot)
	r.GET("/zones/share", h.GetShare)
	return r
}

func do(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func seed(t *testing.T, r *gin.Engine) {
	t.Helper()
	w := do(r, http.MethodPut, "/zones", zonesPayload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

type mapResponse struct {
	Code int             `json:"code"`
	Data zonemap.Dataset `json:"data"`
}

func TestListZones_Envelope(t *testing.T) {
	r := newTestEngine(t)
	seed(t, r)

	w := do(r, http.MethodGet, "/zones", "")
	require.Equal(t, http.StatusOK, w.Code)

	var env models.ZonesEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	require.Len(t, env.Zones, 3)
	assert.Equal(t, models.ZoneID("1"), env.Zones[0].ID)
	assert.False(t, env.Zones[2].HasMarker())
}

func TestPutZones_Invalid(t *testing.T) {
	r := newTestEngine(t)

	w := do(r, http.MethodPut, "/zones", `{"not":"an array"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/zones", `[{"name":"missing id"}]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid zone")
}

func TestGetMap_ScenarioA(t *testing.T) {
	r := newTestEngine(t)
	seed(t, r)

	w := do(r, http.MethodGet, "/zones/map?filter=high&zoom=10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp mapResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Zones, 1)
	assert.Equal(t, "Yopougon", resp.Data.Zones[0].Name)
	assert.Equal(t, "filter=high", resp.Data.Query)
	assert.Equal(t, 10, resp.Data.Viewport.Zoom)
}

func TestGetMap_ScenarioD(t *testing.T) {
	r := newTestEngine(t)
	seed(t, r)

	w := do(r, http.MethodGet, "/zones/map?heatmap=true", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp mapResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Zones, 3)
	require.NotNil(t, resp.Data.Heat)
	assert.Len(t, resp.Data.Heat.Points, 2)
	assert.Equal(t, 1, resp.Data.Summary.Unmappable)
}

func TestGetMap_MalformedFilterFallsBack(t *testing.T) {
	r := newTestEngine(t)
	seed(t, r)

	w := do(r, http.MethodGet, "/zones/map?filter=bogus&minSuperficie=abc", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp mapResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Zones, 3)
}

func TestGetMap_BadViewport(t *testing.T) {
	r := newTestEngine(t)

	w := do(r, http.MethodGet, "/zones/map?zoom=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetGeoJSON(t *testing.T) {
	r := newTestEngine(t)
	seed(t, r)

	w := do(r, http.MethodGet, "/zones/geojson?statut=actif", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))

	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Len(t, fc.Features, 1)
}

func TestImportGeoJSON(t *testing.T) {
	r := newTestEngine(t)

	body := `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[-4.0,5.3]},"properties":{"id":"p1","name":"Port"}}]}`
	w := do(r, http.MethodPost, "/zones/import", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodPost, "/zones/import", `{"type":"Nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/zones", "")
	var env models.ZonesEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Zones, 1)
	assert.Equal(t, "Port", env.Zones[0].Name)
}

func TestGetSnapshot(t *testing.T) {
	r := newTestEngine(t)
	seed(t, r)

	w := do(r, http.MethodGet, "/zones/snapshot.png?filter=high", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())

	w = do(r, http.MethodGet, "/zones/snapshot.png?width=99999", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetShare(t *testing.T) {
	r := newTestEngine(t)

	w := do(r, http.MethodGet, "/zones/share?filter=high&search=&heatmap=false", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			URL   string `json:"url"`
			Query string `json:"query"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "http://localhost:8080/zones/map?filter=high", resp.Data.URL)
	assert.Equal(t, "filter=high", resp.Data.Query)
}
