// Package upstream fetches the raw zone collection from the zones endpoint.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jengzang/zonemap-backend-go/internal/logging"
	"github.com/jengzang/zonemap-backend-go/internal/metrics"
	"github.com/jengzang/zonemap-backend-go/internal/models"
)

// ErrNilSource is returned when a cache is built around no source.
var ErrNilSource = errors.New("upstream: nil source")

// Fetch failure reasons for FetchFailuresTotal.
const (
	reasonTransport = "transport"
	reasonStatus    = "status"
	reasonDecode    = "decode"
	reasonEnvelope  = "envelope"
)

// maxBodyBytes caps the envelope size read from upstream.
const maxBodyBytes = 64 << 20

// EnvelopeError reports an envelope with success=false. Message is the
// upstream error text, possibly empty.
type EnvelopeError struct {
	Message string
}

func (e *EnvelopeError) Error() string {
	if e.Message == "" {
		return "upstream reported failure"
	}
	return "upstream reported failure: " + e.Message
}

// Source is anything that yields the zone collection.
type Source interface {
	FetchZones(ctx context.Context) ([]models.Zone, error)
}

// Client performs a single GET against the zones endpoint. It does not
// retry.
type Client struct {
	url  string
	http *http.Client
	log  logging.Logger
}

// NewClient creates a client for url with the given request timeout.
func NewClient(url string, timeout time.Duration, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
		log:  log.Named("upstream"),
	}
}

// FetchZones fetches and unwraps the envelope. When upstream reports
// success=false it returns an empty collection and an *EnvelopeError.
func (c *Client) FetchZones(ctx context.Context) ([]models.Zone, error) {
	env, err := c.FetchEnvelope(ctx)
	if err != nil {
		return []models.Zone{}, err
	}
	if !env.Success {
		metrics.FetchFailuresTotal.WithLabelValues(reasonEnvelope).Inc()
		c.log.Warn("[Upstream] envelope reported failure", logging.String("error", env.Error))
		return []models.Zone{}, &EnvelopeError{Message: env.Error}
	}
	if env.Zones == nil {
		return []models.Zone{}, nil
	}
	return env.Zones, nil
}

// FetchEnvelope returns the decoded envelope as sent by upstream.
func (c *Client) FetchEnvelope(ctx context.Context) (*models.ZonesEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.FetchFailuresTotal.WithLabelValues(reasonTransport).Inc()
		return nil, fmt.Errorf("failed to fetch zones: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.FetchFailuresTotal.WithLabelValues(reasonStatus).Inc()
		return nil, fmt.Errorf("failed to fetch zones: unexpected status %d", resp.StatusCode)
	}

	var env models.ZonesEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&env); err != nil {
		metrics.FetchFailuresTotal.WithLabelValues(reasonDecode).Inc()
		return nil, fmt.Errorf("failed to decode zones envelope: %w", err)
	}

	c.log.Debug("[Upstream] fetched zones",
		logging.Int("count", len(env.Zones)),
		logging.Bool("success", env.Success),
		logging.Duration("elapsed", time.Since(start)))
	return &env, nil
}
