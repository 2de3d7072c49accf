// Package sink delivers counted vehicles to logs, an external recording service and the database.
// Every sink is fire-and-forget: none of them blocks the frame loop on I/O or reports errors back.
package sink

import (
	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/counter"
	"github.com/sirupsen/logrus"
)

// Multi fans an event out to several sinks in order
type Multi []counter.Sink

func (m Multi) VehicleCounted(vehicle counter.CountedVehicle) {
	for _, s := range m {
		s.VehicleCounted(vehicle)
	}
}

// LogSink logs every counted vehicle
type LogSink struct {
	logger   *logrus.Logger
	category string
}

// NewLogSink creates new LogSink
func NewLogSink(logger *logrus.Logger, category string) *LogSink {
	return &LogSink{
		logger:   logger,
		category: category,
	}
}

func (s *LogSink) VehicleCounted(vehicle counter.CountedVehicle) {
	s.logger.WithFields(logrus.Fields{
		"vehicle_id":  vehicle.ID.String(),
		"category":    s.category,
		"total":       vehicle.Total,
		"detected_at": vehicle.Timestamp,
		"center_x":    vehicle.Center.X,
		"center_y":    vehicle.Center.Y,
		"size":        vehicle.Size,
		"direction":   vehicle.Direction.String(),
		"velocity_y":  vehicle.Velocity.Y,
	}).Info("Vehicle counted")
}
