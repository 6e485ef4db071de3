package alerts

import "context"

// Geofenced wraps a Source and only delegates when the queried coordinate
// falls inside the configured box. Outside the box it returns an empty list
// without touching the network.
type Geofenced struct {
	source Source
	box    BoundingBox
	name   string
}

// NewGeofenced creates a geofenced view of the given source.
func NewGeofenced(name string, source Source, box BoundingBox) *Geofenced {
	return &Geofenced{source: source, box: box, name: name}
}

// ActiveAlerts delegates to the wrapped source inside the box.
func (g *Geofenced) ActiveAlerts(ctx context.Context, lat, lon float64) ([]Alert, error) {
	if !g.box.Contains(lat, lon) {
		return []Alert{}, nil
	}
	return g.source.ActiveAlerts(ctx, lat, lon)
}

// Name returns the source name.
func (g *Geofenced) Name() string {
	return g.name
}
