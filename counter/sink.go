package counter

import (
	"time"

	"github.com/google/uuid"
)

// CountedVehicle is emitted once per vehicle that completed a downward crossing
type CountedVehicle struct {
	ID uuid.UUID
	// Wall-clock time of the detection that triggered the count
	Timestamp time.Time
	// Centroid and area of that detection
	Center    Point
	Size      float64
	Direction Direction
	// Estimated image-plane velocity (pixels per second)
	Velocity Point
	// Running total including this vehicle
	Total uint64
}

// Sink receives counted vehicles. Delivery is fire-and-forget: the engine never waits for nor
// inspects the outcome, so implementations must not block for long.
type Sink interface {
	VehicleCounted(vehicle CountedVehicle)
}

// SinkFunc adapts ordinary function to Sink
type SinkFunc func(vehicle CountedVehicle)

func (f SinkFunc) VehicleCounted(vehicle CountedVehicle) {
	f(vehicle)
}

// NopSink drops every event
type NopSink struct{}

func (NopSink) VehicleCounted(CountedVehicle) {}
