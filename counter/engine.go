package counter

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Outcome is result of a single association attempt
type Outcome uint8

const (
	// OutcomeIgnored - rectangle matched nothing and appeared at or below the line
	OutcomeIgnored Outcome = iota
	// OutcomeCreated - rectangle started a new track
	OutcomeCreated
	// OutcomeMatched - rectangle extended an existing track
	OutcomeMatched
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeCreated:
		return "created"
	case OutcomeMatched:
		return "matched"
	default:
		return "unknown"
	}
}

// Association describes what happened to one rectangle
type Association struct {
	Outcome Outcome
	// Zero for OutcomeIgnored
	VehicleID uuid.UUID
	// True when the match completed a crossing; the vehicle is already retired
	Counted bool
}

// FrameResult aggregates associations of a single frame
type FrameResult struct {
	LineY        float64
	Associations []Association
	// Rectangles rejected with ErrInvalidDetection, in input order
	Rejected []error
	// Number of tracks evicted by the idle sweep after this frame
	Evicted int
}

// Engine associates per-frame detections into vehicle tracks and counts downward line crossings.
// It is not safe for concurrent use: a single goroutine must own it.
type Engine struct {
	cfg       Config
	direction DirectionPolicy
	sink      Sink
	// Live tracks in creation order
	vehicles []*track
	count    uint64
}

// NewEngineDefault creates engine with default configuration and horizontal direction policy
func NewEngineDefault(sink Sink) *Engine {
	engine, _ := NewEngine(DefaultConfig(), nil, sink)
	return engine
}

// NewEngine creates new instance of Engine. Nil policy means HorizontalDirectionPolicy(cfg.DirectionThreshold),
// nil sink means NopSink.
func NewEngine(cfg Config, policy DirectionPolicy, sink Sink) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "Can't create engine")
	}
	if policy == nil {
		policy = HorizontalDirectionPolicy(cfg.DirectionThreshold)
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Engine{
		cfg:       cfg,
		direction: policy,
		sink:      sink,
		vehicles:  make([]*track, 0),
	}, nil
}

// Config returns engine configuration
func (engine *Engine) Config() Config {
	return engine.cfg
}

// Count returns number of vehicles counted since creation or last Reset
func (engine *Engine) Count() uint64 {
	return engine.count
}

// Len returns number of live tracks
func (engine *Engine) Len() int {
	return len(engine.vehicles)
}

// Vehicles returns snapshot of live tracks in creation order
func (engine *Engine) Vehicles() []VehicleState {
	states := make([]VehicleState, len(engine.vehicles))
	for i, vehicle := range engine.vehicles {
		states[i] = vehicle.state()
	}
	return states
}

// Reset starts a new counting session: drops every track and zeroes the counter
func (engine *Engine) Reset() {
	engine.vehicles = make([]*track, 0)
	engine.count = 0
}

// LinePosition returns counting line ordinate for the given frame height
func (engine *Engine) LinePosition(frameHeight float64) (float64, error) {
	if !(frameHeight > 0) {
		return 0, errors.Wrapf(ErrNoActiveLine, "frame height %v", frameHeight)
	}
	return frameHeight * engine.cfg.LineFraction, nil
}

// ObserveFrame runs one association attempt per rectangle (not per frame) and then sweeps idle tracks.
// If frame geometry is unusable the whole frame is skipped with ErrNoActiveLine.
// Invalid rectangles are skipped individually and reported in FrameResult.Rejected.
func (engine *Engine) ObserveFrame(rects []Rectangle, frameWidth, frameHeight float64, now time.Time) (FrameResult, error) {
	yLine, err := engine.LinePosition(frameHeight)
	if err != nil {
		return FrameResult{}, err
	}
	if !(frameWidth > 0) {
		return FrameResult{}, errors.Wrapf(ErrNoActiveLine, "frame width %v", frameWidth)
	}
	result := FrameResult{
		LineY:        yLine,
		Associations: make([]Association, 0, len(rects)),
	}
	for i := range rects {
		association, err := engine.Observe(rects[i], frameWidth, frameHeight, yLine, now)
		if err != nil {
			result.Rejected = append(result.Rejected, errors.Wrapf(err, "rectangle #%d", i))
			continue
		}
		result.Associations = append(result.Associations, association)
	}
	result.Evicted = engine.Sweep(now)
	return result, nil
}

// Observe handles a single detection of the current frame.
// It validates input before touching any state: ErrInvalidDetection for bad rectangle,
// ErrNoActiveLine for bad frame geometry or line position.
func (engine *Engine) Observe(rect Rectangle, frameWidth, frameHeight, yLine float64, now time.Time) (Association, error) {
	if !(frameHeight > 0) || !(frameWidth > 0) {
		return Association{}, errors.Wrapf(ErrNoActiveLine, "frame %vx%v", frameWidth, frameHeight)
	}
	if !(yLine > 0) {
		return Association{}, errors.Wrapf(ErrNoActiveLine, "line position %v", yLine)
	}
	return engine.Associate(rect, frameWidth, yLine, now)
}

// Associate is match-or-create: nearest live track whose window contains the centroid is updated
// (and counted if it has crossed), otherwise a new track is started when the centroid is strictly above the line.
func (engine *Engine) Associate(rect Rectangle, frameWidth, yLine float64, now time.Time) (Association, error) {
	if err := rect.Validate(); err != nil {
		return Association{}, err
	}
	center := rect.Centroid()
	if idx, ok := engine.match(rect, center); ok {
		vehicle := engine.vehicles[idx]
		vehicle.update(rect, now)
		association := Association{
			Outcome:   OutcomeMatched,
			VehicleID: vehicle.id,
		}
		if engine.shouldBeCounted(vehicle, yLine) {
			engine.retire(idx)
			association.Counted = true
		}
		return association, nil
	}
	if center.Y < yLine {
		vehicle := newVehicle(rect, engine.direction(rect, frameWidth), now)
		engine.vehicles = append(engine.vehicles, vehicle)
		return Association{
			Outcome:   OutcomeCreated,
			VehicleID: vehicle.id,
		}, nil
	}
	return Association{Outcome: OutcomeIgnored}, nil
}

// match returns arena index of the nearest track within proximity window (and size window, if enabled)
func (engine *Engine) match(rect Rectangle, center Point) (int, bool) {
	priorityQueue := newCandidateHeap(len(engine.vehicles))
	for i, vehicle := range engine.vehicles {
		if !IsMoving(vehicle.massCenter, center, engine.cfg.ProximityWindow) {
			continue
		}
		priorityQueue.add(candidate{
			index:    i,
			distance: euclideanDistance(vehicle.massCenter, center),
		})
	}
	for priorityQueue.Len() > 0 {
		best := priorityQueue.next()
		if engine.cfg.SizeWindow > 0 && !sameSize(engine.vehicles[best.index].size, rect.Area(), engine.cfg.SizeWindow) {
			continue
		}
		return best.index, true
	}
	return -1, false
}

func (engine *Engine) shouldBeCounted(vehicle *track, yLine float64) bool {
	return vehicle.direction == DirectionDownward && !vehicle.counted && vehicle.massCenter.Y > yLine
}

// retire marks vehicle as counted, notifies the sink and removes it from live set
func (engine *Engine) retire(idx int) {
	vehicle := engine.vehicles[idx]
	vehicle.counted = true
	engine.count++
	engine.remove(idx)
	engine.sink.VehicleCounted(CountedVehicle{
		ID:        vehicle.id,
		Timestamp: vehicle.lastSeenAt,
		Center:    vehicle.massCenter,
		Size:      vehicle.size,
		Direction: vehicle.direction,
		Velocity:  vehicle.velocity,
		Total:     engine.count,
	})
}

// Sweep evicts tracks not seen for longer than MaxIdle. Evicted tracks are never counted.
// Returns number of evicted tracks.
func (engine *Engine) Sweep(now time.Time) int {
	if engine.cfg.MaxIdle <= 0 {
		return 0
	}
	kept := engine.vehicles[:0]
	evicted := 0
	for _, vehicle := range engine.vehicles {
		if now.Sub(vehicle.lastSeenAt) > engine.cfg.MaxIdle {
			evicted++
			continue
		}
		kept = append(kept, vehicle)
	}
	// Drop references held by the tail of backing array
	for i := len(kept); i < len(engine.vehicles); i++ {
		engine.vehicles[i] = nil
	}
	engine.vehicles = kept
	return evicted
}

func (engine *Engine) remove(idx int) {
	copy(engine.vehicles[idx:], engine.vehicles[idx+1:])
	engine.vehicles[len(engine.vehicles)-1] = nil
	engine.vehicles = engine.vehicles[:len(engine.vehicles)-1]
}
