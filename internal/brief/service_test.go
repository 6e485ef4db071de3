package brief_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/skycast-app/skycast/internal/brief"
	"github.com/skycast-app/skycast/internal/weather"
)

type stubGenerator struct {
	out     string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.out, nil
}

func sampleWeather() (weather.Current, weather.Daily) {
	current := weather.Current{
		Temp:      18.4,
		FeelsLike: 17.1,
		Humidity:  72,
		WindSpeed: 12.3,
		UVIndex:   4,
		Weather:   []weather.Condition{{Description: "scattered clouds"}},
	}
	today := weather.Daily{
		Temp: weather.DailyTemp{Min: 11.6, Max: 21.2},
		Pop:  0.35,
	}
	return current, today
}

func TestService_Daily_UsesGenerator(t *testing.T) {
	gen := &stubGenerator{out: "A mild day with some clouds drifting through."}
	svc := brief.NewService(brief.ServiceConfig{Generator: gen, Logger: zerolog.Nop()})

	current, today := sampleWeather()
	got := svc.Daily(context.Background(), "Amsterdam", current, today, weather.UnitsMetric)

	assert.Equal(t, "A mild day with some clouds drifting through.", got)
	assert.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Amsterdam")
	assert.Contains(t, gen.prompts[0], "scattered clouds")
	assert.Contains(t, gen.prompts[0], "°C")
}

func TestService_Daily_FallbackTemplate(t *testing.T) {
	current, today := sampleWeather()
	expected := "Today in Amsterdam: 18° with scattered clouds. High of 21°, low of 12°."

	cases := []struct {
		name string
		gen  brief.Generator
	}{
		{name: "no generator configured", gen: nil},
		{name: "generator error", gen: &stubGenerator{err: errors.New("rate limited")}},
		{name: "blank generator output", gen: &stubGenerator{out: "   "}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := brief.NewService(brief.ServiceConfig{Generator: tc.gen, Logger: zerolog.Nop()})
			got := svc.Daily(context.Background(), "Amsterdam", current, today, weather.UnitsMetric)
			assert.Equal(t, expected, got)
		})
	}
}

func TestService_Daily_FallbackWithoutConditions(t *testing.T) {
	svc := brief.NewService(brief.ServiceConfig{Logger: zerolog.Nop()})

	got := svc.Daily(context.Background(), "Amsterdam",
		weather.Current{Temp: 10}, weather.Daily{Temp: weather.DailyTemp{Min: 5, Max: 12}},
		weather.UnitsMetric)

	assert.Equal(t, "Today in Amsterdam: 10° with unknown conditions. High of 12°, low of 5°.", got)
}

func TestService_ExplainAlert(t *testing.T) {
	gen := &stubGenerator{out: "A flood is expected tonight. Move valuables upstairs and avoid driving."}
	svc := brief.NewService(brief.ServiceConfig{Generator: gen, Logger: zerolog.Nop()})

	got := svc.ExplainAlert(context.Background(), "FLOOD WARNING IN EFFECT UNTIL 8 PM EDT")
	assert.Equal(t, gen.out, got)
	assert.Contains(t, gen.prompts[0], "FLOOD WARNING IN EFFECT UNTIL 8 PM EDT")
}

func TestService_ExplainAlert_FailureReturnsOriginal(t *testing.T) {
	original := "FLOOD WARNING IN EFFECT UNTIL 8 PM EDT"

	cases := []struct {
		name string
		gen  brief.Generator
	}{
		{name: "no generator configured", gen: nil},
		{name: "generator error", gen: &stubGenerator{err: errors.New("overloaded")}},
		{name: "blank generator output", gen: &stubGenerator{out: ""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := brief.NewService(brief.ServiceConfig{Generator: tc.gen, Logger: zerolog.Nop()})
			assert.Equal(t, original, svc.ExplainAlert(context.Background(), original))
		})
	}
}
