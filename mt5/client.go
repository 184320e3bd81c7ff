// Package mt5 talks to a locally running MetaTrader 5 terminal through its
// HTTP bridge. The bridge mirrors the terminal API surface the collector
// needs: initialize/shutdown and copy_rates_from_pos.
package mt5

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Fasterbrick/FetchOHLCMT5/market"
)

// DefaultBridgeURL is where the terminal bridge listens when the terminal is
// started locally in portable mode.
const DefaultBridgeURL = "http://127.0.0.1:6542"

// Timeframe identifies a bar duration using the terminal's own constants.
type Timeframe int

const (
	TimeframeM1 Timeframe = 1
	TimeframeD1 Timeframe = 16408
)

// TimeframeFor maps a granularity to the terminal timeframe constant.
func TimeframeFor(g market.Granularity) Timeframe {
	if g == market.Daily {
		return TimeframeD1
	}
	return TimeframeM1
}

// ErrNotInitialized is returned when rates are requested before a successful
// Initialize. It is distinct from an empty result, which is not an error.
var ErrNotInitialized = errors.New("mt5: terminal connection not initialized")

// Client is a connection to the terminal bridge with an explicit
// open/close lifecycle.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	initialized bool
}

// NewClient creates a bridge client. An empty baseURL selects
// DefaultBridgeURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBridgeURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type initializeRequest struct {
	Portable bool `json:"portable"`
}

type statusResponse struct {
	Success   bool   `json:"success"`
	ErrorCode int    `json:"error_code,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Initialize connects to the terminal in portable (headless, no-UI) mode.
// A failure here means the terminal is unreachable, not that it has no data.
func (c *Client) Initialize(ctx context.Context) error {
	body, err := json.Marshal(initializeRequest{Portable: true})
	if err != nil {
		return fmt.Errorf("marshal initialize request: %w", err)
	}

	var resp statusResponse
	if err := c.post(ctx, "/initialize", body, &resp); err != nil {
		return fmt.Errorf("initialize terminal: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("initialize terminal failed, error code %d: %s", resp.ErrorCode, resp.Error)
	}

	c.initialized = true
	return nil
}

// Shutdown releases the terminal connection. Safe to call when Initialize
// never succeeded.
func (c *Client) Shutdown(ctx context.Context) error {
	if !c.initialized {
		return nil
	}
	c.initialized = false

	var resp statusResponse
	if err := c.post(ctx, "/shutdown", nil, &resp); err != nil {
		return fmt.Errorf("shutdown terminal: %w", err)
	}
	return nil
}

type ratesResponse struct {
	Rates []market.Rate `json:"rates"`
}

// CopyRatesFromPos fetches count bars of the given timeframe starting at
// position from (0 = most recent), returned oldest-first. The terminal may
// return fewer bars than requested.
func (c *Client) CopyRatesFromPos(ctx context.Context, symbol string, tf Timeframe, from, count int) ([]market.Rate, error) {
	if !c.initialized {
		return nil, ErrNotInitialized
	}
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive")
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("timeframe", fmt.Sprintf("%d", tf))
	params.Set("start_pos", fmt.Sprintf("%d", from))
	params.Set("count", fmt.Sprintf("%d", count))

	apiURL := fmt.Sprintf("%s/copy_rates_from_pos?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bridge error (status %d): %s", resp.StatusCode, string(b))
	}

	var apiResp ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode rates: %w", err)
	}

	return apiResp.Rates, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte, out *statusResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bridge error (status %d): %s", resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// RatesSource binds a client to one symbol and timeframe so the ingestion
// loop only has to say how many bars it wants.
type RatesSource struct {
	client *Client
	symbol string
	tf     Timeframe
}

// Rates returns a fetch source for one symbol and timeframe.
func (c *Client) Rates(symbol string, tf Timeframe) *RatesSource {
	return &RatesSource{client: c, symbol: symbol, tf: tf}
}

// FetchRecent returns up to count of the most recent bars, oldest-first.
func (s *RatesSource) FetchRecent(ctx context.Context, count int) ([]market.Rate, error) {
	return s.client.CopyRatesFromPos(ctx, s.symbol, s.tf, 0, count)
}
