// Package brief generates human-readable weather summaries through an
// opaque text-generation capability, with deterministic fallbacks. Summary
// generation is enrichment: it never fails and never surfaces an error.
package brief

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/skycast-app/skycast/internal/weather"
)

// Generator is the opaque text-generation capability. It is externally
// rate-limited and billed, and treated as unreliable.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ServiceConfig holds configuration for the brief service.
type ServiceConfig struct {
	// Generator produces the summaries (optional; nil always falls back).
	Generator Generator

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service builds weather briefs with a deterministic fallback.
type Service struct {
	generator Generator
	logger    zerolog.Logger
}

// NewService creates a new brief service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		generator: cfg.Generator,
		logger:    cfg.Logger,
	}
}

// Daily returns a short brief for today's weather at the named location.
// On any generator failure it returns the templated fallback sentence.
func (s *Service) Daily(ctx context.Context, locationName string, current weather.Current, today weather.Daily, units weather.Units) string {
	fallback := fallbackBrief(locationName, current, today)

	if s.generator == nil {
		return fallback
	}

	summary, err := s.generator.Generate(ctx, dailyPrompt(locationName, current, today, units))
	if err != nil || strings.TrimSpace(summary) == "" {
		s.logger.Warn().Err(err).Msg("brief generation failed, using templated fallback")
		return fallback
	}
	return summary
}

// ExplainAlert rewrites an official alert description in plain language.
// On failure the original description is returned unchanged.
func (s *Service) ExplainAlert(ctx context.Context, description string) string {
	if s.generator == nil {
		return description
	}

	prompt := "Rewrite this official weather alert in plain language with clear action steps " +
		"for a non-expert. Keep it brief (2-3 sentences maximum). Preserve critical details " +
		"but make it easy to understand what to do.\n\nAlert: " + description

	explained, err := s.generator.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(explained) == "" {
		s.logger.Warn().Err(err).Msg("alert explanation failed, returning original description")
		return description
	}
	return explained
}

// dailyPrompt builds the fact sheet the generator summarizes.
func dailyPrompt(locationName string, current weather.Current, today weather.Daily, units weather.Units) string {
	tempUnit, speedUnit := "°C", "km/h"
	if units == weather.UnitsImperial {
		tempUnit, speedUnit = "°F", "mph"
	}

	var facts strings.Builder
	fmt.Fprintf(&facts, "Location: %s\n", locationName)
	fmt.Fprintf(&facts, "Current Temperature: %d%s\n", round(current.Temp), tempUnit)
	fmt.Fprintf(&facts, "Feels Like: %d%s\n", round(current.FeelsLike), tempUnit)
	fmt.Fprintf(&facts, "Today's High: %d%s\n", round(today.Temp.Max), tempUnit)
	fmt.Fprintf(&facts, "Today's Low: %d%s\n", round(today.Temp.Min), tempUnit)
	fmt.Fprintf(&facts, "Conditions: %s\n", conditionDescription(current))
	fmt.Fprintf(&facts, "Wind Speed: %d %s\n", round(current.WindSpeed), speedUnit)
	fmt.Fprintf(&facts, "Humidity: %.0f%%\n", current.Humidity)
	fmt.Fprintf(&facts, "Precipitation Chance: %d%%\n", round(today.Pop*100))
	fmt.Fprintf(&facts, "UV Index: %.0f\n", current.UVIndex)

	return fmt.Sprintf("You are a concise weather explainer. Summarize today's weather for %s, "+
		"using these facts: %s. Write 2-3 sentences maximum. Include temperatures, precipitation "+
		"risk, and notable conditions. Be conversational and helpful, like a friendly weather "+
		"forecaster.", locationName, facts.String())
}

// fallbackBrief is the deterministic sentence shown when generation fails.
func fallbackBrief(locationName string, current weather.Current, today weather.Daily) string {
	return fmt.Sprintf("Today in %s: %d° with %s. High of %d°, low of %d°.",
		locationName,
		round(current.Temp),
		conditionDescription(current),
		round(today.Temp.Max),
		round(today.Temp.Min))
}

func conditionDescription(current weather.Current) string {
	if len(current.Weather) == 0 {
		return "unknown conditions"
	}
	return current.Weather[0].Description
}

func round(v float64) int {
	return int(math.Round(v))
}
