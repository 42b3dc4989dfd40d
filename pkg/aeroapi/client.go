// Package aeroapi provides a client for the FlightAware AeroAPI v4 flight
// detail endpoint.
//
// AeroAPI is quota-billed and strictly rate limited, so the client paces
// requests, backs off into a cool-down window after connection-level
// failures, and shares the pipeline's network gate so its requests never
// interleave with the state-vector source's.
//
// API Documentation: https://www.flightaware.com/aeroapi/portal/documentation
package aeroapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/flightwall/flightwall/pkg/apierr"
	"github.com/flightwall/flightwall/pkg/netgate"
)

const (
	// DefaultBaseURL is the FlightAware AeroAPI v4 base URL
	DefaultBaseURL = "https://aeroapi.flightaware.com/aeroapi"

	// DefaultTimeout for API requests
	DefaultTimeout = 10 * time.Second

	// cooldownWindow suppresses further requests after a connection-level
	// failure, so a down endpoint is not hammered in a hot loop.
	cooldownWindow = 20 * time.Second
)

// ErrBusy is returned when the network gate could not be acquired in time.
// The fetch is skipped for this cycle, not failed.
var ErrBusy = fmt.Errorf("aeroapi: network gate busy")

// ErrCoolingDown is returned while the post-failure cool-down window is
// active; no network I/O is attempted.
var ErrCoolingDown = fmt.Errorf("aeroapi: cooling down after connection failure")

// Airport describes one endpoint of a flight. Any field may be empty.
type Airport struct {
	CodeICAO string `json:"code_icao"`
	CodeIATA string `json:"code_iata"`
	Name     string `json:"name"`
}

// FlightDetail is the descriptive record for one flight, as served by the
// /flights/{ident} endpoint, plus the runtime-enriched display names and the
// live metrics merged in by the pipeline.
type FlightDetail struct {
	// Identifiers
	Ident     string `json:"ident"`
	IdentICAO string `json:"ident_icao"`
	IdentIATA string `json:"ident_iata"`

	// Operator
	Operator     string `json:"operator"`
	OperatorICAO string `json:"operator_icao"`
	OperatorIATA string `json:"operator_iata"`

	// Aircraft ICAO type designator (e.g. "A20N")
	AircraftType string `json:"aircraft_type"`

	// Route
	Origin      Airport `json:"origin"`
	Destination Airport `json:"destination"`

	// Enriched display names, resolved by the pipeline after fetch.
	// Resolution is idempotent: re-running it yields the same names.
	AirlineName  string `json:"airline_name,omitempty"`
	AircraftName string `json:"aircraft_name,omitempty"`

	// Live metrics copied from the matching state vector each pass.
	// Never cached; always the freshest values.
	BaroAltitudeM float64 `json:"baro_altitude_m,omitempty"`
	VelocityMPS   float64 `json:"velocity_mps,omitempty"`
}

// Config contains configuration for the AeroAPI client.
type Config struct {
	APIKey          string
	BaseURL         string
	Timeout         time.Duration
	RequestsPerHour int

	// Gate serializes this client's calls with the rest of the pipeline.
	Gate        *netgate.Gate
	GateTimeout time.Duration
}

// Client fetches per-flight detail records.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	gate        *netgate.Gate
	gateTimeout time.Duration

	// now is the clock, swappable in tests.
	now func() time.Time

	mu            sync.Mutex
	cooldownUntil time.Time
}

// NewClient creates an AeroAPI client.
//
// Compression is disabled and connection reuse discouraged on purpose: a
// chunked gzip stream that dies mid-body can look like a clean EOF, while a
// plain close-delimited body makes truncation detectable and therefore
// retryable.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerHour == 0 {
		// Free tier: 500 requests/month. One request per minute keeps a
		// comfortable margin under the paid starter tier too.
		cfg.RequestsPerHour = 60
	}
	if cfg.GateTimeout == 0 {
		cfg.GateTimeout = 5 * time.Second
	}

	requestsPerSecond := float64(cfg.RequestsPerHour) / 3600.0
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DisableCompression: true,
				DisableKeepAlives:  true,
			},
		},
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		gate:        cfg.Gate,
		gateTimeout: cfg.GateTimeout,
		now:         time.Now,
	}
}

// flightsResponse mirrors the JSON envelope of /flights/{ident}.
type flightsResponse struct {
	Flights []FlightDetail `json:"flights"`
}

// FetchFlight retrieves the detail record for one flight ident (callsign).
//
// Guards, in order: configured API key, cool-down window, network gate,
// request pacing. A truncated response body gets exactly one retry of the
// whole request; any other parse failure is terminal for this call. An empty
// flights array is "no data" (NotFoundError), not a retryable failure.
func (c *Client) FetchFlight(ctx context.Context, ident string) (*FlightDetail, error) {
	if c.apiKey == "" {
		return nil, &apierr.ConfigError{Msg: "aeroapi key not configured"}
	}

	c.mu.Lock()
	cooling := c.now().Before(c.cooldownUntil)
	c.mu.Unlock()
	if cooling {
		return nil, ErrCoolingDown
	}

	if c.gate != nil {
		if !c.gate.Acquire(c.gateTimeout) {
			return nil, ErrBusy
		}
		defer c.gate.Release()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &apierr.TransportError{ConnectionLevel: true, Msg: "rate limiter", Err: err}
	}

	detail, err := c.fetchOnce(ctx, ident)
	if apierr.IsTruncated(err) {
		// Truncation is the single recoverable parse failure.
		log.Printf("AeroAPI: truncated response for %s, retrying once", ident)
		detail, err = c.fetchOnce(ctx, ident)
	}
	return detail, err
}

// fetchOnce performs one complete request/parse attempt.
func (c *Client) fetchOnce(ctx context.Context, ident string) (*FlightDetail, error) {
	url := fmt.Sprintf("%s/flights/%s", c.baseURL, ident)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &apierr.TransportError{ConnectionLevel: true, Msg: "creating request", Err: err}
	}
	req.Header.Set("x-apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Close = true

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.startCooldown()
		return nil, &apierr.TransportError{ConnectionLevel: true, Msg: "http request", Err: err}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, &apierr.TransportError{Status: resp.StatusCode,
			Msg: fmt.Sprintf("flight request for %s failed", ident)}
	}

	if readErr != nil {
		if isTruncation(readErr) {
			return nil, &apierr.ParseError{Msg: "body cut short", Truncated: true, Err: readErr}
		}
		c.startCooldown()
		return nil, &apierr.TransportError{ConnectionLevel: true, Msg: "reading response", Err: readErr}
	}

	var parsed flightsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if isTruncation(err) {
			return nil, &apierr.ParseError{Msg: "json ended early", Truncated: true, Err: err}
		}
		return nil, &apierr.ParseError{Msg: "decoding flights response", Err: err}
	}

	if len(parsed.Flights) == 0 {
		return nil, &apierr.NotFoundError{Ident: ident}
	}

	// Only the first array element is used; later ones are historical
	// flights under the same ident.
	detail := parsed.Flights[0]
	return &detail, nil
}

// startCooldown opens the suppression window after a connection-level
// failure.
func (c *Client) startCooldown() {
	c.mu.Lock()
	c.cooldownUntil = c.now().Add(cooldownWindow)
	c.mu.Unlock()
	log.Printf("AeroAPI: connection failure, cooling down for %v", cooldownWindow)
}

// isTruncation reports whether err indicates a body that ended before the
// document was complete.
func isTruncation(err error) bool {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return strings.Contains(syn.Error(), "unexpected end of JSON input")
	}
	return false
}
