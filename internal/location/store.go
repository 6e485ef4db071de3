package location

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/skycast-app/skycast/internal/geocoding"
	"github.com/skycast-app/skycast/internal/storage"
)

// Storage keys. One JSON-serialized value per slice.
const (
	keyFavorites = "@weather_favorites"
	keySettings  = "@weather_settings"
	keySelected  = "@weather_selected_location"
)

// StoreConfig holds configuration for the location store.
type StoreConfig struct {
	// KV is the persistence backend (required).
	KV storage.KV

	// Geocoder resolves coordinates to place names (required for
	// AcquireCurrent).
	Geocoder geocoding.Geocoder

	// Position is the device location capability (required for
	// AcquireCurrent).
	Position PositionProvider

	// Logger for store operations.
	Logger zerolog.Logger

	// PositionTimeout bounds the device position read so a stuck sensor
	// never blocks the caller indefinitely (default: 15 seconds).
	PositionTimeout time.Duration
}

// Store is the single owner of location and settings state. It loads the
// persisted slices once at startup and keeps them in memory as the source
// of truth; every mutation is written to storage before it is committed to
// memory.
type Store struct {
	kv              storage.KV
	geocoder        geocoding.Geocoder
	position        PositionProvider
	logger          zerolog.Logger
	positionTimeout time.Duration

	mu        sync.RWMutex
	current   *Location
	selected  *Location
	favorites []Location
	settings  Settings
	onChange  []func()
}

// NewStore creates a new location store with default settings. Call Load to
// reconcile with persisted state.
func NewStore(cfg StoreConfig) *Store {
	timeout := cfg.PositionTimeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Store{
		kv:              cfg.KV,
		geocoder:        cfg.Geocoder,
		position:        cfg.Position,
		logger:          cfg.Logger,
		positionTimeout: timeout,
		favorites:       []Location{},
		settings:        DefaultSettings(),
	}
}

// Load reads favorites, settings, and the selected location from storage.
// Missing or malformed entries fall back to defaults and are never fatal.
func (s *Store) Load(ctx context.Context) error {
	favorites := []Location{}
	if ok := s.loadSlice(ctx, keyFavorites, &favorites); !ok {
		favorites = []Location{}
	}

	settings := DefaultSettings()
	if ok := s.loadSlice(ctx, keySettings, &settings); !ok {
		settings = DefaultSettings()
	}

	var selected *Location
	var loc Location
	if ok := s.loadSlice(ctx, keySelected, &loc); ok {
		selected = &loc
	}

	s.mu.Lock()
	s.favorites = favorites
	s.settings = settings
	s.selected = selected
	s.mu.Unlock()
	return nil
}

// loadSlice reads and unmarshals one persisted slice, reporting whether a
// usable value was found.
func (s *Store) loadSlice(ctx context.Context, key string, dst any) bool {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to read stored slice, using defaults")
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("malformed stored slice, using defaults")
		return false
	}
	return true
}

// AcquireCurrent obtains a GPS fix, reverse-geocodes it, and makes it both
// the current and the selected location. Concurrent calls are permitted;
// the last result wins.
func (s *Store) AcquireCurrent(ctx context.Context) (Location, error) {
	granted, err := s.position.RequestPermission(ctx)
	if err != nil || !granted {
		return Location{}, ErrPermissionDenied
	}

	posCtx, cancel := context.WithTimeout(ctx, s.positionTimeout)
	defer cancel()

	pos, err := s.position.CurrentPosition(posCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(posCtx.Err(), context.DeadlineExceeded) {
			return Location{}, ErrLocationTimeout
		}
		return Location{}, err
	}

	// Reverse lookup degrades to a sentinel place rather than failing;
	// a usable coordinate must never be lost to a naming failure.
	place := s.geocoder.Reverse(ctx, pos.Latitude, pos.Longitude)

	loc := Location{
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		City:      place.City,
		Country:   place.Country,
		IsCurrent: true,
	}

	if err := s.persist(ctx, keySelected, loc); err != nil {
		return Location{}, err
	}

	s.mu.Lock()
	s.current = &loc
	s.selected = &loc
	s.mu.Unlock()

	s.notify()
	return loc, nil
}

// Select makes loc the selected location.
func (s *Store) Select(ctx context.Context, loc Location) error {
	if err := s.persist(ctx, keySelected, loc); err != nil {
		return err
	}

	s.mu.Lock()
	s.selected = &loc
	s.mu.Unlock()

	s.notify()
	return nil
}

// AddFavorite appends loc to the favorites. Favorites are always stored
// with IsCurrent cleared.
func (s *Store) AddFavorite(ctx context.Context, loc Location) error {
	loc.IsCurrent = false

	s.mu.RLock()
	updated := make([]Location, len(s.favorites), len(s.favorites)+1)
	copy(updated, s.favorites)
	s.mu.RUnlock()
	updated = append(updated, loc)

	if err := s.persist(ctx, keyFavorites, updated); err != nil {
		return err
	}

	s.mu.Lock()
	s.favorites = updated
	s.mu.Unlock()
	return nil
}

// RemoveFavorite removes favorites at exactly the given coordinates.
// Removal intentionally uses exact equality while IsFavorite uses the fuzzy
// tolerance; both behaviors are pinned by tests.
func (s *Store) RemoveFavorite(ctx context.Context, lat, lon float64) error {
	s.mu.RLock()
	updated := make([]Location, 0, len(s.favorites))
	for _, fav := range s.favorites {
		if fav.Latitude == lat && fav.Longitude == lon {
			continue
		}
		updated = append(updated, fav)
	}
	s.mu.RUnlock()

	if err := s.persist(ctx, keyFavorites, updated); err != nil {
		return err
	}

	s.mu.Lock()
	s.favorites = updated
	s.mu.Unlock()
	return nil
}

// IsFavorite reports whether a favorite exists within the fuzzy coordinate
// tolerance of (lat, lon).
func (s *Store) IsFavorite(lat, lon float64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fav := range s.favorites {
		if math.Abs(fav.Latitude-lat) < favoriteTolerance &&
			math.Abs(fav.Longitude-lon) < favoriteTolerance {
			return true
		}
	}
	return false
}

// UpdateSettings merges the patch into the settings and persists the merged
// result atomically. Cross-field unit-label consistency is the caller's
// contract (use PatchForUnits for unit switches).
func (s *Store) UpdateSettings(ctx context.Context, patch SettingsPatch) error {
	s.mu.RLock()
	merged := s.settings
	s.mu.RUnlock()

	if patch.Units != nil {
		merged.Units = *patch.Units
	}
	if patch.TemperatureUnit != nil {
		merged.TemperatureUnit = *patch.TemperatureUnit
	}
	if patch.SpeedUnit != nil {
		merged.SpeedUnit = *patch.SpeedUnit
	}
	if patch.PressureUnit != nil {
		merged.PressureUnit = *patch.PressureUnit
	}
	if patch.Theme != nil {
		merged.Theme = *patch.Theme
	}

	if err := s.persist(ctx, keySettings, merged); err != nil {
		return err
	}

	s.mu.Lock()
	s.settings = merged
	s.mu.Unlock()

	s.notify()
	return nil
}

// Active returns the location driving weather fetches: the selected
// location, falling back to the last GPS fix.
func (s *Store) Active() (Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected != nil {
		return *s.selected, true
	}
	if s.current != nil {
		return *s.current, true
	}
	return Location{}, false
}

// Current returns the last GPS fix, if any.
func (s *Store) Current() (Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Location{}, false
	}
	return *s.current, true
}

// Settings returns the current settings.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Favorites returns a copy of the favorites list.
func (s *Store) Favorites() []Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Location, len(s.favorites))
	copy(out, s.favorites)
	return out
}

// OnChange registers a callback fired after any mutation that should
// retrigger a weather fetch: active-location or settings changes.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *Store) notify() {
	s.mu.RLock()
	callbacks := make([]func(), len(s.onChange))
	copy(callbacks, s.onChange)
	s.mu.RUnlock()
	for _, fn := range callbacks {
		fn()
	}
}

// persist writes one slice to storage. The mutation is only committed to
// memory after this returns nil.
func (s *Store) persist(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, string(raw))
}
