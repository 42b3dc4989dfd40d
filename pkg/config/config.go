// Package config loads and persists the FlightWall configuration snapshot.
//
// The pipeline reads configuration exactly once per construction; there is
// no live reloading. Secrets can be kept out of the file via environment
// overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Observer ObserverConfig `json:"observer"`
	Tracking TrackingConfig `json:"tracking"`
	OpenSky  OpenSkyConfig  `json:"opensky"`
	AeroAPI  AeroAPIConfig  `json:"aeroapi"`
	Display  DisplayConfig  `json:"display"`
}

// ServerConfig contains HTTP API server configuration.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port string `json:"port"`

	// Host is the server bind address (default: "0.0.0.0")
	Host string `json:"host"`
}

// ObserverConfig is the fixed geographic point flights are tracked around.
type ObserverConfig struct {
	// Name is a friendly identifier for this location
	Name string `json:"name"`

	// Latitude in decimal degrees (-90 to +90)
	Latitude float64 `json:"latitude"`

	// Longitude in decimal degrees (-180 to +180)
	Longitude float64 `json:"longitude"`
}

// TrackingConfig tunes the acquisition pipeline.
type TrackingConfig struct {
	// RadiusKm is the true-circle search radius around the observer
	RadiusKm float64 `json:"radius_km"`

	// PollIntervalSeconds is the fetch cadence. The default of 30 keeps an
	// always-on installation inside OpenSky's 4000 requests/month budget.
	PollIntervalSeconds int `json:"poll_interval_seconds"`

	// DetailFetchBudget caps live detail-API calls per poll cycle
	DetailFetchBudget int `json:"detail_fetch_budget"`

	// CacheTTLSeconds is how long a fetched flight detail stays valid
	CacheTTLSeconds int `json:"cache_ttl_seconds"`

	// BearingMinDeg/BearingMaxDeg restrict results to a bearing window
	// [min, max) degrees from the observer, wrapping through north when
	// min > max. Both zero disables the filter.
	BearingMinDeg float64 `json:"bearing_min_deg"`
	BearingMaxDeg float64 `json:"bearing_max_deg"`
}

// OpenSkyConfig contains the state-vector source credentials and endpoints.
type OpenSkyConfig struct {
	// ClientID/ClientSecret are the OAuth2 client credentials.
	// Prefer the FLIGHTWALL_OPENSKY_CLIENT_SECRET environment variable over
	// putting the secret in the file.
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`

	// BaseURL overrides the API root (testing); empty uses the default
	BaseURL string `json:"base_url,omitempty"`

	// TokenURL overrides the token endpoint (testing); empty uses the default
	TokenURL string `json:"token_url,omitempty"`
}

// AeroAPIConfig contains FlightAware AeroAPI settings.
type AeroAPIConfig struct {
	// APIKey for AeroAPI v4. Sign up at https://www.flightaware.com/aeroapi/
	APIKey string `json:"api_key"`

	// BaseURL overrides the API root (testing); empty uses the default
	BaseURL string `json:"base_url,omitempty"`

	// RequestsPerHour limits the API call rate
	RequestsPerHour int `json:"requests_per_hour"`
}

// DisplayConfig carries unit preferences for the display surfaces.
type DisplayConfig struct {
	// AltitudeFeet shows altitudes in feet instead of meters
	AltitudeFeet bool `json:"altitude_feet"`

	// SpeedKnots shows speeds in knots instead of m/s
	SpeedKnots bool `json:"speed_knots"`
}

// Load reads configuration from a JSON file.
// If the file doesn't exist, returns a default configuration.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvironmentOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()
	return &cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
// The observer defaults to the east side of Munich, the location the
// project was first built for.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Host: "0.0.0.0",
		},
		Observer: ObserverConfig{
			Name:      "Home",
			Latitude:  48.1155,
			Longitude: 11.7359,
		},
		Tracking: TrackingConfig{
			RadiusKm:            18.0,
			PollIntervalSeconds: 30,
			DetailFetchBudget:   2,
			CacheTTLSeconds:     60,
		},
		AeroAPI: AeroAPIConfig{
			RequestsPerHour: 60,
		},
		Display: DisplayConfig{
			AltitudeFeet: false,
			SpeedKnots:   true,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides.
// This keeps credentials out of config files.
func (c *Config) applyEnvironmentOverrides() {
	if port := os.Getenv("FLIGHTWALL_PORT"); port != "" {
		c.Server.Port = port
	}
	if id := os.Getenv("FLIGHTWALL_OPENSKY_CLIENT_ID"); id != "" {
		c.OpenSky.ClientID = id
	}
	if secret := os.Getenv("FLIGHTWALL_OPENSKY_CLIENT_SECRET"); secret != "" {
		c.OpenSky.ClientSecret = secret
	}
	if key := os.Getenv("FLIGHTWALL_AEROAPI_KEY"); key != "" {
		c.AeroAPI.APIKey = key
	}
}
