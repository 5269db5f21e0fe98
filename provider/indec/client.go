// Package indec implements a series provider for the Datos Argentina
// series API (apis.datos.gob.ar), the official publication channel for the
// INDEC consumer price index. The monthly-variation series arrives as
// {"data": [["2024-01-01", 0.206], ...]}; values may be JSON numbers,
// numeric strings, or null. No API key required.
package indec

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/adjustment-engine/series"
)

const (
	// DefaultBaseURL is the public series API endpoint.
	DefaultBaseURL = "https://apis.datos.gob.ar/series/api"

	// DefaultSeriesID is "IPC Nacional - Nivel General - Variación
	// Porcentual Mensual".
	DefaultSeriesID = "148.3_INIVELGEN_D_A_0_26"

	// DefaultLimit is how many observations to request. The full history
	// is small, so ask for all of it and let the engine pick its window.
	DefaultLimit = 5000

	defaultTimeout = 30 * time.Second
)

// Config customizes the client. Zero fields fall back to the defaults.
type Config struct {
	BaseURL  string
	SeriesID string
	Limit    int
	Timeout  time.Duration
}

// Client fetches an index series from the Datos Argentina API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	seriesID   string
	limit      int
}

// New creates a client for the configured series.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SeriesID == "" {
		cfg.SeriesID = DefaultSeriesID
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		seriesID:   cfg.SeriesID,
		limit:      cfg.Limit,
	}
}

// SeriesID returns the configured upstream series identifier.
func (c *Client) SeriesID() string { return c.seriesID }

// seriesResponse mirrors the wire format. Each data row is
// [date, value]; both fields need lenient decoding.
type seriesResponse struct {
	Data [][]json.RawMessage `json:"data"`
}

// FetchSeries retrieves and parses the configured series.
//
// Rows whose value cannot be parsed as a number (null, empty, malformed)
// are excluded entirely, never zero-filled; whether anything usable
// remains is for the engine to judge.
func (c *Client) FetchSeries(ctx context.Context) (series.Series, error) {
	q := url.Values{}
	q.Set("ids", c.seriesID)
	q.Set("limit", strconv.Itoa(c.limit))
	q.Set("format", "json")
	endpoint := c.baseURL + "/series?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("indec: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("indec: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("indec: HTTP %d fetching series %s", resp.StatusCode, c.seriesID)
	}

	var payload seriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("indec: decoding response: %w", err)
	}

	obs := make([]series.Observation, 0, len(payload.Data))
	for _, row := range payload.Data {
		o, ok := parseRow(row)
		if !ok {
			continue
		}
		obs = append(obs, o)
	}
	return series.New(obs), nil
}

// Ping verifies connectivity with a single-observation request.
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("ids", c.seriesID)
	q.Set("limit", "1")
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/series?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("indec ping: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("indec ping: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("indec ping: HTTP %d", resp.StatusCode)
	}
	return nil
}

// parseRow decodes one [date, value] row. Returns ok=false for rows that
// are short, undated, or carry an unparseable value.
func parseRow(row []json.RawMessage) (series.Observation, bool) {
	if len(row) < 2 {
		return series.Observation{}, false
	}

	var dateStr string
	if err := json.Unmarshal(row[0], &dateStr); err != nil {
		return series.Observation{}, false
	}
	period, err := series.ParseMonth(dateStr)
	if err != nil {
		return series.Observation{}, false
	}

	raw, ok := parseValue(row[1])
	if !ok {
		return series.Observation{}, false
	}
	return series.Observation{Period: period, Raw: raw}, true
}

// parseValue accepts a JSON number or a numeric string. Nulls and
// non-numeric strings are excluded.
func parseValue(msg json.RawMessage) (decimal.Decimal, bool) {
	var num json.Number
	if err := json.Unmarshal(msg, &num); err == nil {
		if d, derr := decimal.NewFromString(num.String()); derr == nil {
			return d, true
		}
		return decimal.Decimal{}, false
	}

	var str string
	if err := json.Unmarshal(msg, &str); err == nil {
		if d, derr := decimal.NewFromString(str); derr == nil {
			return d, true
		}
	}
	return decimal.Decimal{}, false
}
