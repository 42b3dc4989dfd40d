// Package pipeline orchestrates one acquisition-and-enrichment pass: pull
// state vectors for the watched area, dedup by callsign, fill in flight
// details from the cache or the detail API within a per-cycle budget, and
// merge live metrics into the result.
package pipeline

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/flightwall/flightwall/pkg/aeroapi"
	"github.com/flightwall/flightwall/pkg/geo"
	"github.com/flightwall/flightwall/pkg/lookup"
	"github.com/flightwall/flightwall/pkg/opensky"
)

// StateSource supplies the current state vectors around a point.
type StateSource interface {
	FetchStates(ctx context.Context, center geo.Point, radiusKm float64) ([]opensky.StateVector, error)
}

// DetailSource supplies descriptive flight details for an ident.
type DetailSource interface {
	FetchFlight(ctx context.Context, ident string) (*aeroapi.FlightDetail, error)
}

// NameResolver maps operator and aircraft type codes to display names.
type NameResolver interface {
	AirlineName(code string) string
	AircraftName(code string) string
}

// Config holds the tunables for a Pipeline.
type Config struct {
	// Center is the observer position.
	Center geo.Point

	// RadiusKm bounds the watched circle.
	RadiusKm float64

	// DetailFetchBudget caps live detail-API calls per poll cycle.
	DetailFetchBudget int

	// CacheTTL bounds how long a fetched detail stays valid.
	CacheTTL time.Duration
}

// Pipeline runs poll cycles. It owns the detail cache; callers own the
// sources.
type Pipeline struct {
	states  StateSource
	details DetailSource
	names   NameResolver
	cache   *DetailCache

	center geo.Point
	radius float64
	budget int
}

// New creates a Pipeline over the given sources.
func New(states StateSource, details DetailSource, names NameResolver, cfg Config) *Pipeline {
	return &Pipeline{
		states:  states,
		details: details,
		names:   names,
		cache:   NewDetailCache(cfg.CacheTTL),
		center:  cfg.Center,
		radius:  cfg.RadiusKm,
		budget:  cfg.DetailFetchBudget,
	}
}

// Poll executes one full cycle and returns the enriched flights in the
// order their callsigns were first encountered. A state-source failure is
// logged and yields an empty result; the next cycle starts clean.
func (p *Pipeline) Poll(ctx context.Context) []aeroapi.FlightDetail {
	p.cache.Prune()

	states, err := p.states.FetchStates(ctx, p.center, p.radius)
	if err != nil {
		log.Printf("Pipeline: state fetch failed: %v", err)
		return nil
	}

	budget := p.budget
	seen := make(map[string]bool)
	var flights []aeroapi.FlightDetail

	for i := range states {
		s := &states[i]
		if s.Callsign == "" {
			continue
		}
		key := cacheKey(s.Callsign)
		if seen[key] {
			continue
		}
		seen[key] = true

		detail, ok := p.cache.GetOrFetch(s.Callsign, &budget, func(ident string) (*aeroapi.FlightDetail, error) {
			return p.details.FetchFlight(ctx, ident)
		})
		if !ok {
			continue
		}

		mergeLiveMetrics(detail, s)
		p.resolveNames(detail, s.Callsign)
		flights = append(flights, *detail)
	}

	return flights
}

// CacheLen reports the current detail cache size, for status reporting.
func (p *Pipeline) CacheLen() int {
	return p.cache.Len()
}

// mergeLiveMetrics copies the per-sighting kinematics from the state vector
// onto the detail record. Absent values (NaN) are left at zero so the
// record stays JSON-marshalable.
func mergeLiveMetrics(detail *aeroapi.FlightDetail, s *opensky.StateVector) {
	if !math.IsNaN(s.BaroAltitude) {
		detail.BaroAltitudeM = s.BaroAltitude
	}
	if !math.IsNaN(s.Velocity) {
		detail.VelocityMPS = s.Velocity
	}
}

// resolveNames fills the display-name fields from whatever identifying
// codes the detail record carries, falling back to the callsign prefix
// when the record has no operator at all.
func (p *Pipeline) resolveNames(detail *aeroapi.FlightDetail, callsign string) {
	switch {
	case detail.OperatorICAO != "":
		if name := p.names.AirlineName(detail.OperatorICAO); name != "" {
			detail.AirlineName = name
		} else {
			detail.AirlineName = detail.OperatorICAO
		}
	case detail.Operator != "":
		detail.AirlineName = detail.Operator
	default:
		if prefix := lookup.AirlinePrefix(callsign); prefix != "" {
			if name := p.names.AirlineName(prefix); name != "" {
				detail.AirlineName = name
			} else {
				detail.AirlineName = prefix
			}
		}
	}

	if detail.AircraftType != "" {
		label := p.names.AircraftName(detail.AircraftType)
		if label == "" {
			label = detail.AircraftType
		}
		label = lookup.NormalizeAircraftLabel(label)
		if label == "" {
			label = detail.AircraftType
		}
		detail.AircraftName = label
	}
}
