package video

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/counter"
	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/internal/stats"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// FrameReader produces raw frames
type FrameReader interface {
	Read(dst *gocv.Mat) bool
}

// Detector finds candidate rectangles on a preprocessed frame
type Detector interface {
	Detect(gray gocv.Mat) []image.Rectangle
}

// Pipeline is the frame loop: read, preprocess, detect, observe, render.
// It is the only owner of the engine.
type Pipeline struct {
	source    FrameReader
	detector  Detector
	engine    *counter.Engine
	renderer  *Renderer
	publisher *stats.Publisher
	logger    *logrus.Logger
	interval  time.Duration
	clock     func() time.Time
}

// NewPipeline creates frame loop. Zero fps disables pacing, nil renderer disables annotation
func NewPipeline(source FrameReader, detector Detector, engine *counter.Engine, renderer *Renderer, publisher *stats.Publisher, fps float64, logger *logrus.Logger) *Pipeline {
	var interval time.Duration
	if fps > 0 {
		interval = time.Duration(float64(time.Second) / fps)
	}
	return &Pipeline{
		source:    source,
		detector:  detector,
		engine:    engine,
		renderer:  renderer,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
		clock:     time.Now,
	}
}

// Run processes frames until the stream ends or ctx is cancelled
func (p *Pipeline) Run(ctx context.Context) error {
	frame := gocv.NewMat()
	defer frame.Close()
	gray := gocv.NewMat()
	defer gray.Close()

	var tick <-chan time.Time
	if p.interval > 0 {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	p.publisher.Update(func(s *stats.Snapshot) { s.Running = true })
	defer p.publisher.Update(func(s *stats.Snapshot) { s.Running = false })

	p.logger.Info("Frame loop started")
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				p.logger.Info("Frame loop cancelled")
				return nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			p.logger.Info("Frame loop cancelled")
			return nil
		}

		if ok := p.source.Read(&frame); !ok {
			p.logger.Info("Video stream ended")
			return nil
		}
		if frame.Empty() {
			p.skip("empty frame")
			continue
		}
		if err := p.processFrame(&frame, &gray); err != nil {
			p.logger.WithError(err).Warn("Frame skipped")
			p.skip(err.Error())
		}
	}
}

func (p *Pipeline) skip(reason string) {
	p.logger.Debugf("Skipping frame: %s", reason)
	p.publisher.Update(func(s *stats.Snapshot) { s.FramesSkipped++ })
}

// processFrame never lets a single bad frame stop the session
func (p *Pipeline) processFrame(frame, gray *gocv.Mat) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing frame: %v", r)
		}
	}()

	now := p.clock()
	Preprocess(*frame, gray)
	detections := p.detector.Detect(*gray)

	rects := make([]counter.Rectangle, len(detections))
	for i := range detections {
		rects[i] = counter.NewRectFrom(detections[i])
	}
	result, err := p.engine.ObserveFrame(rects, float64(frame.Cols()), float64(frame.Rows()), now)
	if err != nil {
		return err
	}
	for _, rejected := range result.Rejected {
		p.logger.WithError(rejected).Debug("Detection rejected")
	}
	if result.Evicted > 0 {
		p.logger.Debugf("Evicted %d idle tracks", result.Evicted)
	}

	count := p.engine.Count()
	active := p.engine.Len()
	p.publisher.Update(func(s *stats.Snapshot) {
		s.UpdatedAt = now
		s.Count = count
		s.ActiveTracks = active
		s.LineY = result.LineY
		s.FrameWidth = frame.Cols()
		s.FrameHeight = frame.Rows()
		s.FramesProcessed++
		s.RejectedRects += uint64(len(result.Rejected))
		s.EvictedTracks += uint64(result.Evicted)
	})

	if p.renderer != nil {
		p.renderer.Draw(frame, detections, result.LineY, p.engine.Vehicles(), count)
		if err := p.renderer.Write(*frame); err != nil {
			p.logger.WithError(err).Warn("Can't write annotated frame")
		}
	}
	return nil
}
