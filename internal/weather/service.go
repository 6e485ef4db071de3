package weather

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skycast-app/skycast/internal/alerts"
)

const (
	hourlyWindow = 24
	dailyWindow  = 7
)

// AlertCollector gathers hazard alerts for a coordinate. It never fails;
// unavailable sources contribute empty lists.
type AlertCollector interface {
	Collect(ctx context.Context, lat, lon float64) []alerts.Alert
}

// ServiceConfig holds configuration for the aggregation service.
type ServiceConfig struct {
	// Provider is the primary forecast provider (required).
	Provider ForecastProvider

	// Alerts collects hazard alerts (optional; nil disables alerts).
	Alerts AlertCollector

	// Logger for service operations.
	Logger zerolog.Logger

	// FreshFor is how long a cached aggregate is served without refetching
	// (default: 5 minutes).
	FreshFor time.Duration

	// EvictAfter is how long an unused cache entry survives before being
	// dropped entirely (default: 30 minutes).
	EvictAfter time.Duration

	// Now overrides the clock, used to align the hourly series (default:
	// time.Now).
	Now func() time.Time

	// OnCacheHit and OnCacheMiss feed telemetry counters. Optional.
	OnCacheHit  func()
	OnCacheMiss func()
}

// Service aggregates the primary forecast and all alert sources into
// immutable WeatherData values, cached per (lat, lon, units).
type Service struct {
	provider    ForecastProvider
	alerts      AlertCollector
	logger      zerolog.Logger
	freshFor    time.Duration
	evictAfter  time.Duration
	now         func() time.Time
	onCacheHit  func()
	onCacheMiss func()
	tracer      trace.Tracer

	mu    sync.Mutex
	cache map[string]*cachedAggregate
}

type cachedAggregate struct {
	data       *WeatherData
	fetchedAt  time.Time
	accessedAt time.Time
}

// NewService creates a new aggregation service.
func NewService(cfg ServiceConfig) *Service {
	freshFor := cfg.FreshFor
	if freshFor == 0 {
		freshFor = 5 * time.Minute
	}

	evictAfter := cfg.EvictAfter
	if evictAfter == 0 {
		evictAfter = 30 * time.Minute
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		provider:    cfg.Provider,
		alerts:      cfg.Alerts,
		logger:      cfg.Logger,
		freshFor:    freshFor,
		evictAfter:  evictAfter,
		now:         now,
		onCacheHit:  cfg.OnCacheHit,
		onCacheMiss: cfg.OnCacheMiss,
		tracer:      otel.Tracer("skycast/weather"),
		cache:       make(map[string]*cachedAggregate),
	}
}

// Fetch returns the aggregate weather for a coordinate in the requested unit
// system. It fails only on invalid input or primary-source failure; alert
// sources degrade to empty lists.
func (s *Service) Fetch(ctx context.Context, lat, lon float64, units Units) (*WeatherData, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	key := cacheKey(lat, lon, units)

	s.mu.Lock()
	if cached, ok := s.cache[key]; ok && s.now().Sub(cached.fetchedAt) < s.freshFor {
		cached.accessedAt = s.now()
		s.mu.Unlock()
		if s.onCacheHit != nil {
			s.onCacheHit()
		}
		return cached.data, nil
	}
	s.mu.Unlock()

	if s.onCacheMiss != nil {
		s.onCacheMiss()
	}

	data, err := s.fetch(ctx, lat, lon, units)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[key] = &cachedAggregate{data: data, fetchedAt: s.now(), accessedAt: s.now()}
	s.evictStale()
	s.mu.Unlock()

	return data, nil
}

// Invalidate drops all cached aggregates.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedAggregate)
}

// fetch performs the aggregate fetch: the primary forecast request and the
// alert collection run concurrently and are joined before assembly.
func (s *Service) fetch(ctx context.Context, lat, lon float64, units Units) (*WeatherData, error) {
	ctx, span := s.tracer.Start(ctx, "weather.fetch", trace.WithAttributes(
		attribute.Float64("lat", lat),
		attribute.Float64("lon", lon),
		attribute.String("units", string(units)),
	))
	defer span.End()

	fetchID := uuid.NewString()
	logger := s.logger.With().Str("fetch_id", fetchID).Logger()

	logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Str("units", string(units)).
		Str("provider", s.provider.Name()).
		Msg("fetching aggregate weather")

	started := s.now()

	var collected []alerts.Alert
	var wg sync.WaitGroup
	if s.alerts != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collected = s.alerts.Collect(ctx, lat, lon)
		}()
	}

	forecast, err := s.provider.Forecast(ctx, lat, lon, units)
	wg.Wait()

	if err != nil {
		logger.Error().Err(err).Msg("primary forecast fetch failed")
		return nil, ErrForecastUnavailable
	}
	if collected == nil {
		collected = []alerts.Alert{}
	}

	data := s.assemble(forecast, collected)

	logger.Info().
		Int("hourly_points", len(data.Hourly)).
		Int("daily_points", len(data.Daily)).
		Int("alerts", len(data.Alerts)).
		Dur("elapsed", s.now().Sub(started)).
		Msg("aggregate weather assembled")

	return data, nil
}

// assemble aligns the hourly series to the current instant, truncates both
// series to their windows, and stamps the observation time.
func (s *Service) assemble(forecast *Forecast, collected []alerts.Alert) *WeatherData {
	now := s.now()

	current := forecast.Current
	current.Dt = now.Unix()

	hourly := alignHourly(forecast.Hourly, now)

	daily := forecast.Daily
	if len(daily) > dailyWindow {
		daily = daily[:dailyWindow]
	}

	return &WeatherData{
		Current: current,
		Hourly:  hourly,
		Daily:   daily,
		Alerts:  collected,
	}
}

// alignHourly locates the first upstream point at or after now and returns
// the next 24 points from there. When every point is in the past (clock skew
// at the end of the source window) it falls back to the start of the window.
func alignHourly(hourly []Hourly, now time.Time) []Hourly {
	start := 0
	found := false
	for i, h := range hourly {
		if h.Dt >= now.Unix() {
			start = i
			found = true
			break
		}
	}
	if !found {
		start = 0
	}

	end := start + hourlyWindow
	if end > len(hourly) {
		end = len(hourly)
	}

	aligned := make([]Hourly, end-start)
	copy(aligned, hourly[start:end])
	return aligned
}

// evictStale drops entries not accessed within the eviction window.
// Caller must hold s.mu.
func (s *Service) evictStale() {
	now := s.now()
	for key, cached := range s.cache {
		if now.Sub(cached.accessedAt) > s.evictAfter {
			delete(s.cache, key)
		}
	}
}

// cacheKey groups requests by coordinate (4 decimals, ~11m) and unit system.
func cacheKey(lat, lon float64, units Units) string {
	return fmt.Sprintf("%.4f:%.4f:%s", lat, lon, units)
}

// validateCoordinates rejects NaN, infinite, and out-of-range coordinates
// before any network call is made.
func validateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return ErrInvalidCoordinates
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
