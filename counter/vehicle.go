package counter

import (
	"time"

	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// track is one physical vehicle seen above the counting line.
type track struct {
	id          uuid.UUID
	massCenter  Point
	size        float64
	counted     bool
	direction   Direction
	firstSeenAt time.Time
	lastSeenAt  time.Time
	hits        int
	// Smoothed centroid and velocity. Reporting only: massCenter and size always come from the latest rectangle
	estimate  Point
	velocity  Point
	estimator *kalman_filter.Kalman2D
}

// VehicleState is read-only snapshot of a live track
type VehicleState struct {
	ID          uuid.UUID
	MassCenter  Point
	Size        float64
	Counted     bool
	Direction   Direction
	FirstSeenAt time.Time
	LastSeenAt  time.Time
	Hits        int
	Velocity    Point
}

func newVehicle(rect Rectangle, direction Direction, now time.Time) *track {
	center := rect.Centroid()
	return &track{
		id:          uuid.New(),
		massCenter:  center,
		size:        rect.Area(),
		counted:     false,
		direction:   direction,
		firstSeenAt: now,
		lastSeenAt:  now,
		hits:        1,
		estimate:    center,
		velocity:    Point{X: 0, Y: 0},
		estimator:   newEstimator(center),
	}
}

func newEstimator(center Point) *kalman_filter.Kalman2D {
	/* Kalman filter props */
	dt := 1.0
	ux := 1.0
	uy := 1.0
	stdDevA := 2.0
	stdDevMx := 0.1
	stdDevMy := 0.1
	return kalman_filter.NewKalman2D(dt, ux, uy, stdDevA, stdDevMx, stdDevMy, kalman_filter.WithState2D(center.X, center.Y))
}

// state returns snapshot of track
func (vehicle *track) state() VehicleState {
	return VehicleState{
		ID:          vehicle.id,
		MassCenter:  vehicle.massCenter,
		Size:        vehicle.size,
		Counted:     vehicle.counted,
		Direction:   vehicle.direction,
		FirstSeenAt: vehicle.firstSeenAt,
		LastSeenAt:  vehicle.lastSeenAt,
		Hits:        vehicle.hits,
		Velocity:    vehicle.velocity,
	}
}

// update replaces centroid, size and timestamp with the new rectangle's values.
// The estimator is advanced afterwards; its failure only resets the estimate.
func (vehicle *track) update(rect Rectangle, now time.Time) {
	elapsed := now.Sub(vehicle.lastSeenAt).Seconds()
	vehicle.massCenter = rect.Centroid()
	vehicle.size = rect.Area()
	vehicle.lastSeenAt = now
	vehicle.hits++

	if err := vehicle.advanceEstimate(elapsed); err != nil {
		vehicle.estimator = newEstimator(vehicle.massCenter)
		vehicle.estimate = vehicle.massCenter
		vehicle.velocity = Point{X: 0, Y: 0}
	}
}

func (vehicle *track) advanceEstimate(elapsed float64) error {
	vehicle.estimator.Predict()
	err := vehicle.estimator.Update(vehicle.massCenter.X, vehicle.massCenter.Y)
	if err != nil {
		return errors.Wrap(err, "Can't update vehicle estimator")
	}
	stateX, stateY := vehicle.estimator.GetState()
	if elapsed > 0 {
		vehicle.velocity.X = (stateX - vehicle.estimate.X) / elapsed
		vehicle.velocity.Y = (stateY - vehicle.estimate.Y) / elapsed
	}
	vehicle.estimate.X = stateX
	vehicle.estimate.Y = stateY
	return nil
}
