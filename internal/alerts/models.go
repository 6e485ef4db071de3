// Package alerts provides hazard-alert collection from multiple best-effort
// sources. Alert data is enrichment: a failing source degrades to an empty
// list and never fails the caller.
package alerts

import "context"

// Alert is a normalized hazard alert. Start and End are Unix seconds.
type Alert struct {
	SenderName  string   `json:"sender_name"`
	Event       string   `json:"event"`
	Start       int64    `json:"start"`
	End         int64    `json:"end"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Source fetches active alerts relevant to a coordinate.
type Source interface {
	// ActiveAlerts returns alerts for the location. Implementations may
	// return an error; the collecting service absorbs it.
	ActiveAlerts(ctx context.Context, lat, lon float64) ([]Alert, error)

	// Name identifies the source for logging.
	Name() string
}

// BoundingBox is a closed geographic box.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether the point lies inside the box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lon >= b.MinLon && lon <= b.MaxLon
}

// PhilippinesBox covers the Philippine archipelago, the region the geofenced
// subset source is scoped to.
var PhilippinesBox = BoundingBox{MinLat: 4.5, MaxLat: 21.5, MinLon: 116, MaxLon: 127}
