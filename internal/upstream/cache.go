package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jengzang/zonemap-backend-go/internal/logging"
	"github.com/jengzang/zonemap-backend-go/internal/metrics"
	"github.com/jengzang/zonemap-backend-go/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultCacheKey is where CachedSource stores the zone collection.
const DefaultCacheKey = "zonemap:zones"

// CachedSource serves zones from redis when present and otherwise asks the
// wrapped source, caching successful results for ttl. Failed fetches are
// never cached. Redis errors degrade to a direct fetch.
type CachedSource struct {
	src Source
	rdb redis.Cmdable
	key string
	ttl time.Duration
	log logging.Logger
}

// NewCachedSource wraps src. An empty key uses DefaultCacheKey.
func NewCachedSource(src Source, rdb redis.Cmdable, key string, ttl time.Duration, log logging.Logger) (*CachedSource, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if key == "" {
		key = DefaultCacheKey
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CachedSource{src: src, rdb: rdb, key: key, ttl: ttl, log: log.Named("cache")}, nil
}

// FetchZones implements Source.
func (c *CachedSource) FetchZones(ctx context.Context) ([]models.Zone, error) {
	if c.rdb == nil {
		return c.src.FetchZones(ctx)
	}

	data, err := c.rdb.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var zones []models.Zone
		if uerr := json.Unmarshal(data, &zones); uerr == nil {
			metrics.CacheHitsTotal.Inc()
			return zones, nil
		}
		c.log.Warn("[Cache] dropping undecodable entry", logging.String("key", c.key))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("[Cache] redis get failed", logging.String("key", c.key), logging.Err(err))
	}
	metrics.CacheMissesTotal.Inc()

	zones, err := c.src.FetchZones(ctx)
	if err != nil {
		return zones, err
	}

	payload, err := json.Marshal(zones)
	if err != nil {
		c.log.Warn("[Cache] failed to encode zones", logging.Err(err))
		return zones, nil
	}
	if err := c.rdb.Set(ctx, c.key, string(payload), c.ttl).Err(); err != nil {
		c.log.Warn("[Cache] redis set failed", logging.String("key", c.key), logging.Err(err))
	}
	return zones, nil
}

// Invalidate removes the cached collection, e.g. after an ingest.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, c.key).Err()
}
