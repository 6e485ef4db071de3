package alerts

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the alert collection service.
type ServiceConfig struct {
	// Sources are the alert feeds to query. Order is insignificant.
	Sources []Source

	// Logger for service operations.
	Logger zerolog.Logger

	// OnSourceFailure is called with the source name when a source fails.
	// Used to feed telemetry counters. Optional.
	OnSourceFailure func(name string)
}

// Service fans out to all configured alert sources and concatenates their
// results. Source failures are logged and degraded to empty lists; Collect
// itself never fails.
type Service struct {
	sources         []Source
	logger          zerolog.Logger
	onSourceFailure func(name string)
}

// NewService creates a new alert collection service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		sources:         cfg.Sources,
		logger:          cfg.Logger,
		onSourceFailure: cfg.OnSourceFailure,
	}
}

// Collect queries every source concurrently and returns the concatenation of
// all results. Alerts reported by more than one source are not deduplicated.
func (s *Service) Collect(ctx context.Context, lat, lon float64) []Alert {
	results := make([][]Alert, len(s.sources))

	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()

			found, err := src.ActiveAlerts(ctx, lat, lon)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("source", src.Name()).
					Float64("lat", lat).
					Float64("lon", lon).
					Msg("alert source failed, skipping")
				if s.onSourceFailure != nil {
					s.onSourceFailure(src.Name())
				}
				return
			}
			results[i] = found
		}(i, src)
	}
	wg.Wait()

	merged := make([]Alert, 0)
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged
}
