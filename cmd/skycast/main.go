// Package main provides the skycast CLI, the presentation-layer consumer of
// the aggregation library.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/skycast-app/skycast/internal/alerts"
	"github.com/skycast-app/skycast/internal/alerts/gdacs"
	"github.com/skycast-app/skycast/internal/alerts/nws"
	"github.com/skycast-app/skycast/internal/brief"
	"github.com/skycast-app/skycast/internal/config"
	"github.com/skycast-app/skycast/internal/geocoding/nominatim"
	"github.com/skycast-app/skycast/internal/location"
	"github.com/skycast-app/skycast/internal/storage"
	"github.com/skycast-app/skycast/internal/telemetry"
	"github.com/skycast-app/skycast/internal/weather"
	"github.com/skycast-app/skycast/internal/weather/openmeteo"
	"github.com/skycast-app/skycast/pkg/format"
)

// Version is set at compile time via ldflags.
var Version = "dev"

func main() {
	_ = godotenv.Load() //nolint:errcheck // a missing .env is fine

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Timestamp().
		Str("service", "skycast").
		Logger()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "skycast",
		ServiceVersion: Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	metrics, err := telemetry.NewPipelineMetrics(tp.Meter)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize pipeline metrics")
	}

	kv, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open state database")
	}
	defer kv.Close()

	geocoder := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:           cfg.NominatimURL,
		UserAgent:         cfg.GeocoderUserAgent,
		RequestsPerSecond: cfg.GeocoderRPS,
		Logger:            log.With().Str("component", "nominatim").Logger(),
	})

	store := location.NewStore(location.StoreConfig{
		KV:              kv,
		Geocoder:        geocoder,
		Logger:          log.With().Str("component", "location").Logger(),
		PositionTimeout: cfg.PositionTimeout,
	})
	if err := store.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load stored state")
	}

	gdacsClient := gdacs.NewClient(gdacs.ClientConfig{
		BaseURL: cfg.GDACSURL,
		Logger:  log.With().Str("component", "gdacs").Logger(),
	})

	alertService := alerts.NewService(alerts.ServiceConfig{
		Sources: []alerts.Source{
			nws.NewClient(nws.ClientConfig{
				BaseURL: cfg.NWSURL,
				Logger:  log.With().Str("component", "nws").Logger(),
			}),
			alerts.NewGeofenced("gdacs-ph", gdacsClient, alerts.PhilippinesBox),
			gdacsClient,
		},
		Logger:          log.With().Str("component", "alerts").Logger(),
		OnSourceFailure: metrics.AlertSourceFailure,
	})

	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: openmeteo.NewClient(openmeteo.ClientConfig{
			BaseURL: cfg.ForecastURL,
			Logger:  log.With().Str("component", "openmeteo").Logger(),
		}),
		Alerts:      alertService,
		Logger:      log.With().Str("component", "weather").Logger(),
		OnCacheHit:  metrics.CacheHit,
		OnCacheMiss: metrics.CacheMiss,
	})

	briefService := brief.NewService(brief.ServiceConfig{
		Logger: log.With().Str("component", "brief").Logger(),
	})

	app := &cli{
		log:     log,
		store:   store,
		weather: weatherService,
		brief:   briefService,
		geo:     geocoder,
	}

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

type cli struct {
	log     zerolog.Logger
	store   *location.Store
	weather *weather.Service
	brief   *brief.Service
	geo     *nominatim.Client
}

func (c *cli) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "now":
		return c.now(ctx, args)
	case "search":
		return c.search(ctx, args)
	case "select":
		return c.selectLocation(ctx, args)
	case "fav":
		return c.favorites(ctx, args)
	case "units":
		return c.units(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// now fetches and prints the aggregate weather for the active location.
func (c *cli) now(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("now", flag.ExitOnError)
	lat := fs.Float64("lat", 0, "latitude override")
	lon := fs.Float64("lon", 0, "longitude override")
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings := c.store.Settings()
	name := fmt.Sprintf("%.4f, %.4f", *lat, *lon)

	latitude, longitude := *lat, *lon
	if fs.NFlag() == 0 {
		active, ok := c.store.Active()
		if !ok {
			return fmt.Errorf("no active location; run 'skycast search' and 'skycast select' first")
		}
		latitude, longitude = active.Latitude, active.Longitude
		name = active.City
	}

	data, err := c.weather.Fetch(ctx, latitude, longitude, settings.Units)
	if err != nil {
		return err
	}

	current := data.Current
	fmt.Printf("%s: %s (feels like %s), %s\n",
		name,
		format.Temp(current.Temp, settings.TemperatureUnit),
		format.Temp(current.FeelsLike, settings.TemperatureUnit),
		current.Weather[0].Description)
	fmt.Printf("wind %s %s, humidity %.0f%%, pressure %s, UV %s\n",
		format.Speed(current.WindSpeed, settings.SpeedUnit),
		format.WindDirection(current.WindDeg),
		current.Humidity,
		format.Pressure(current.Pressure, settings.PressureUnit),
		format.UVLevel(current.UVIndex))

	if len(data.Daily) > 0 {
		fmt.Println(c.brief.Daily(ctx, name, current, data.Daily[0], settings.Units))
	}

	for _, alert := range data.Alerts {
		fmt.Printf("! %s: %s\n", alert.SenderName, alert.Event)
	}
	return nil
}

// search resolves a free-text query to candidate locations.
func (c *cli) search(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: skycast search <query>")
	}

	candidates, err := c.geo.SearchCities(ctx, args[0])
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Println("no results")
		return nil
	}

	for _, cand := range candidates {
		name := cand.Name
		if cand.State != "" {
			name += ", " + cand.State
		}
		fmt.Printf("%-40s %s  (%.4f, %.4f)\n", name, cand.Country, cand.Lat, cand.Lon)
	}
	return nil
}

// selectLocation persists a manually chosen location.
func (c *cli) selectLocation(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: skycast select <lat> <lon> <city>")
	}
	lat, lon, err := parseCoords(args[0], args[1])
	if err != nil {
		return err
	}
	return c.store.Select(ctx, location.Location{
		Latitude:  lat,
		Longitude: lon,
		City:      args[2],
	})
}

// favorites manages the favorites list.
func (c *cli) favorites(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "ls" {
		for _, fav := range c.store.Favorites() {
			fmt.Printf("%-30s %s  (%.4f, %.4f)\n", fav.City, fav.Country, fav.Latitude, fav.Longitude)
		}
		return nil
	}

	switch args[0] {
	case "add":
		if len(args) < 4 {
			return fmt.Errorf("usage: skycast fav add <lat> <lon> <city>")
		}
		lat, lon, err := parseCoords(args[1], args[2])
		if err != nil {
			return err
		}
		return c.store.AddFavorite(ctx, location.Location{Latitude: lat, Longitude: lon, City: args[3]})
	case "rm":
		if len(args) < 3 {
			return fmt.Errorf("usage: skycast fav rm <lat> <lon>")
		}
		lat, lon, err := parseCoords(args[1], args[2])
		if err != nil {
			return err
		}
		return c.store.RemoveFavorite(ctx, lat, lon)
	default:
		return fmt.Errorf("unknown fav subcommand %q", args[0])
	}
}

// units switches the unit system, rewriting all dependent labels atomically.
func (c *cli) units(ctx context.Context, args []string) error {
	if len(args) < 1 {
		fmt.Println(c.store.Settings().Units)
		return nil
	}

	units := weather.Units(args[0])
	if units != weather.UnitsMetric && units != weather.UnitsImperial {
		return fmt.Errorf("units must be %q or %q", weather.UnitsMetric, weather.UnitsImperial)
	}
	return c.store.UpdateSettings(ctx, location.PatchForUnits(units))
}

func parseCoords(latArg, lonArg string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latArg, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q", latArg)
	}
	lon, err := strconv.ParseFloat(lonArg, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q", lonArg)
	}
	return lat, lon, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: skycast <command> [args]

commands:
  now [-lat -lon]          aggregate weather for the active (or given) location
  search <query>           search locations by name
  select <lat> <lon> <city> set the selected location
  fav [ls|add|rm] ...      manage favorites
  units [metric|imperial]  show or switch the unit system`)
}
