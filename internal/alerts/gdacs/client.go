// Package gdacs provides the global disaster feed client for the GDACS API.
// The feed is worldwide; results are filtered to events near the queried
// coordinate.
package gdacs

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/skycast-app/skycast/internal/alerts"
	"github.com/skycast-app/skycast/internal/provider/resilience"
)

const (
	// SourceName identifies this alert source.
	SourceName = "gdacs"

	// DefaultBaseURL is the GDACS API base URL.
	DefaultBaseURL = "https://www.gdacs.org/gdacsapi/api"

	// proximityDegrees is the Euclidean degree-distance threshold for an
	// event to count as nearby.
	proximityDegrees = 10.0
)

// ClientConfig holds configuration for the GDACS client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to gdacs.org).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a GDACS event feed client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// NewClient creates a new GDACS client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(SourceName))
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
		now:        time.Now,
	}
}

// Name returns the source name.
func (c *Client) Name() string {
	return SourceName
}

// ActiveAlerts fetches the global event list and keeps events within
// proximityDegrees of the coordinate.
func (c *Client) ActiveAlerts(ctx context.Context, lat, lon float64) ([]alerts.Alert, error) {
	url := c.baseURL + "/events/geteventlist/SEARCH"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body eventListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	nearby := make([]alerts.Alert, 0)
	for _, f := range body.Features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		eventLon := f.Geometry.Coordinates[0]
		eventLat := f.Geometry.Coordinates[1]
		if eventLat == 0 || eventLon == 0 {
			continue
		}

		distance := math.Hypot(eventLat-lat, eventLon-lon)
		if distance >= proximityDegrees {
			continue
		}

		nearby = append(nearby, c.toAlert(f.Properties))
	}
	return nearby, nil
}

// toAlert normalizes a GDACS event, defaulting the fields the feed leaves
// empty for some event types.
func (c *Client) toAlert(p eventProperties) alerts.Alert {
	event := p.Name
	if event == "" {
		event = p.EventType
	}
	if event == "" {
		event = "Weather Event"
	}

	description := p.Description
	if description == "" {
		description = p.HTMLDescription
	}
	if description == "" {
		description = "Global disaster alert"
	}

	severity := p.AlertLevel
	if severity == "" {
		severity = p.Severity
	}
	if severity == "" {
		severity = "moderate"
	}

	now := c.now()
	start := now.Unix()
	if t, ok := parseEventTime(p.FromDate); ok {
		start = t
	}
	end := now.Add(24 * time.Hour).Unix()
	if t, ok := parseEventTime(p.ToDate); ok {
		end = t
	}

	return alerts.Alert{
		SenderName:  "GDACS",
		Event:       event,
		Start:       start,
		End:         end,
		Description: description,
		Tags:        []string{strings.ToLower(severity)},
	}
}

// parseEventTime accepts the timestamp formats the feed has been observed to
// emit, with or without a zone offset.
func parseEventTime(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Unix(), true
		}
	}
	return 0, false
}

// GDACS API response structures.

type eventListResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
		Properties eventProperties `json:"properties"`
	} `json:"features"`
}

type eventProperties struct {
	Name            string `json:"name"`
	EventType       string `json:"eventtype"`
	AlertLevel      string `json:"alertlevel"`
	Severity        string `json:"severity"`
	FromDate        string `json:"fromdate"`
	ToDate          string `json:"todate"`
	Description     string `json:"description"`
	HTMLDescription string `json:"htmldescription"`
}
