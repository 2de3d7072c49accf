package sink

import (
	"context"
	"sync"
	"time"

	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/counter"
	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/internal/store"
	"github.com/sirupsen/logrus"
)

// StoreSink persists counted vehicles from a background worker.
// Events arriving while the queue is full are dropped with a warning.
type StoreSink struct {
	repo      store.CountRepository
	sessionID string
	category  string
	logger    *logrus.Logger
	queue     chan counter.CountedVehicle
	done      chan struct{}
	mu        sync.Mutex
	closed    bool
}

// NewStoreSink creates StoreSink and starts its worker
func NewStoreSink(repo store.CountRepository, sessionID, category string, buffer int, logger *logrus.Logger) *StoreSink {
	if buffer <= 0 {
		buffer = 64
	}
	s := &StoreSink{
		repo:      repo,
		sessionID: sessionID,
		category:  category,
		logger:    logger,
		queue:     make(chan counter.CountedVehicle, buffer),
		done:      make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *StoreSink) VehicleCounted(vehicle counter.CountedVehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.WithField("vehicle_id", vehicle.ID.String()).Warn("Store sink is closed, vehicle record dropped")
		return
	}
	select {
	case s.queue <- vehicle:
	default:
		s.logger.WithField("vehicle_id", vehicle.ID.String()).Warn("Store queue is full, vehicle record dropped")
	}
}

// Close stops accepting events and waits until queued ones are written
func (s *StoreSink) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	<-s.done
}

func (s *StoreSink) run() {
	defer close(s.done)
	for vehicle := range s.queue {
		record := &store.CountRecord{
			ID:         vehicle.ID.String(),
			SessionID:  s.sessionID,
			Category:   s.category,
			DetectedAt: vehicle.Timestamp,
			CenterX:    vehicle.Center.X,
			CenterY:    vehicle.Center.Y,
			Size:       vehicle.Size,
			VelocityX:  vehicle.Velocity.X,
			VelocityY:  vehicle.Velocity.Y,
			Total:      vehicle.Total,
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Create(ctx, record); err != nil {
			s.logger.WithError(err).WithField("vehicle_id", record.ID).Error("Can't store counted vehicle")
		}
		cancel()
	}
}
