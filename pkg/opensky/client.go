package opensky

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/flightwall/flightwall/pkg/apierr"
	"github.com/flightwall/flightwall/pkg/geo"
	"github.com/flightwall/flightwall/pkg/netgate"
)

// ErrBusy is returned when the network gate could not be acquired in time.
// It means "skip this cycle", not a hard failure.
var ErrBusy = fmt.Errorf("opensky: network gate busy")

// Config contains configuration for the OpenSky client.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration

	// Gate, when set, serializes this client's outbound calls with the rest
	// of the pipeline. GateTimeout bounds the wait for it.
	Gate        *netgate.Gate
	GateTimeout time.Duration

	// BearingMin/BearingMax define an optional bearing window filter in
	// degrees, wrapping through north when min > max. Both zero disables it.
	BearingMin float64
	BearingMax float64
}

// Client fetches state vectors around a fixed center from the OpenSky API,
// filtered to the true circular radius and optional bearing window.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      *TokenSource
	gate        *netgate.Gate
	gateTimeout time.Duration
	bearingMin  float64
	bearingMax  float64
}

// NewClient creates an OpenSky client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.GateTimeout == 0 {
		cfg.GateTimeout = 5 * time.Second
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		tokens:      NewTokenSource(cfg.ClientID, cfg.ClientSecret, cfg.TokenURL),
		gate:        cfg.Gate,
		gateTimeout: cfg.GateTimeout,
		bearingMin:  cfg.BearingMin,
		bearingMax:  cfg.BearingMax,
	}
}

// TokenSource exposes the client's token source, mainly for tests.
func (c *Client) TokenSource() *TokenSource {
	return c.tokens
}

// statesResponse mirrors the JSON shape of /api/states/all. Each state is a
// positional array; see StateVector for the field order.
type statesResponse struct {
	Time   int64   `json:"time"`
	States [][]any `json:"states"`
}

// FetchStates queries the bounding box around center and returns the state
// vectors within radiusKm of it, tagged with distance and bearing, in
// response order.
//
// Failure semantics: a missing states array is a successful empty result;
// a 401 triggers exactly one forced token refresh and one retry of the GET;
// any other non-200 status fails the call with no further retry.
func (c *Client) FetchStates(ctx context.Context, center geo.Point, radiusKm float64) ([]StateVector, error) {
	if c.gate != nil {
		if !c.gate.Acquire(c.gateTimeout) {
			return nil, ErrBusy
		}
		defer c.gate.Release()
	}

	token, err := c.tokens.Token(ctx, false)
	if err != nil {
		return nil, err
	}

	box := geo.BoundingBox(center, radiusKm)
	url := fmt.Sprintf("%s/api/states/all?lamin=%.6f&lamax=%.6f&lomin=%.6f&lomax=%.6f",
		c.baseURL, box.LatMin, box.LatMax, box.LonMin, box.LonMax)

	resp, err := c.get(ctx, url, token)
	if err != nil {
		return nil, err
	}

	// A 401 means the token went stale server-side; refresh once and retry
	// the original call once before surfacing failure.
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		token, err = c.tokens.Token(ctx, true)
		if err != nil {
			return nil, err
		}
		resp, err = c.get(ctx, url, token)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &apierr.TransportError{Status: resp.StatusCode, Msg: "states request failed"}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apierr.TransportError{ConnectionLevel: true, Msg: "reading states response", Err: err}
	}

	var raw statesResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &apierr.ParseError{Msg: "decoding states response", Err: err}
	}

	return c.filterStates(raw, center, radiusKm), nil
}

// get issues one authenticated GET. Connection-level failures are reported
// as TransportError with no HTTP status.
func (c *Client) get(ctx context.Context, url, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &apierr.TransportError{ConnectionLevel: true, Msg: "creating states request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apierr.TransportError{ConnectionLevel: true, Msg: "states request", Err: err}
	}
	return resp, nil
}

// filterStates converts the positional arrays to typed records and applies
// the true-circle radius and bearing filters. The bounding box the server
// evaluated is a superset of the circle.
func (c *Client) filterStates(raw statesResponse, center geo.Point, radiusKm float64) []StateVector {
	out := make([]StateVector, 0, len(raw.States))
	for _, a := range raw.States {
		if len(a) < minStateFields {
			log.Printf("OpenSky: dropping state element with %d fields (need %d)", len(a), minStateFields)
			continue
		}

		s := StateVector{
			ICAO24:         stringVal(a[0]),
			Callsign:       strings.TrimSpace(stringVal(a[1])),
			OriginCountry:  stringVal(a[2]),
			TimePosition:   intVal(a[3]),
			LastContact:    intVal(a[4]),
			Longitude:      floatVal(a[5]),
			Latitude:       floatVal(a[6]),
			BaroAltitude:   floatVal(a[7]),
			OnGround:       boolVal(a[8]),
			Velocity:       floatVal(a[9]),
			Heading:        floatVal(a[10]),
			VerticalRate:   floatVal(a[11]),
			Sensors:        intVal(a[12]),
			GeoAltitude:    floatVal(a[13]),
			Squawk:         stringVal(a[14]),
			SPI:            boolVal(a[15]),
			PositionSource: int(intVal(a[16])),
		}

		if !s.HasPosition() {
			continue
		}

		pos := geo.Point{Latitude: s.Latitude, Longitude: s.Longitude}
		s.DistanceKm = geo.DistanceKm(center, pos)
		if s.DistanceKm > radiusKm {
			continue
		}
		s.BearingDeg = geo.BearingDeg(center, pos)
		if !geo.BearingInWindow(s.BearingDeg, c.bearingMin, c.bearingMax) {
			continue
		}

		out = append(out, s)
	}
	return out
}

// stringVal extracts a string from a positional field, "" for null.
func stringVal(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// floatVal extracts a float from a positional field, NaN for null.
func floatVal(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return math.NaN()
}

// intVal extracts an integer from a positional field, 0 for null.
// JSON numbers decode as float64.
func intVal(v any) int64 {
	if f, ok := v.(float64); ok {
		return int64(f)
	}
	return 0
}

// boolVal extracts a bool from a positional field, false for null.
func boolVal(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
