package location

import "context"

// Position is a raw device fix.
type Position struct {
	Latitude  float64
	Longitude float64
}

// PositionProvider abstracts the device location capability. Implementations
// wrap whatever sensor or platform API is available; the store only needs a
// permission gate and a bounded position read.
type PositionProvider interface {
	// RequestPermission checks or requests the location permission and
	// reports whether it was granted.
	RequestPermission(ctx context.Context) (bool, error)

	// CurrentPosition reads the device position. Implementations should
	// honor ctx cancellation; the store bounds the call with a timeout.
	CurrentPosition(ctx context.Context) (Position, error)
}
