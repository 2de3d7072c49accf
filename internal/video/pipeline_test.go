package video

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/counter"
	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/internal/logging"
	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

const (
	testFrameRows = 500
	testFrameCols = 640
)

// scriptedReader plays a fixed sequence of frames; false entries are empty frames
type scriptedReader struct {
	frames []bool
	reads  int
	// called after each read with the number of reads so far
	onRead func(reads int)
}

func (r *scriptedReader) Read(dst *gocv.Mat) bool {
	if r.reads >= len(r.frames) {
		return false
	}
	nonEmpty := r.frames[r.reads]
	r.reads++
	dst.Close()
	if nonEmpty {
		*dst = gocv.NewMatWithSize(testFrameRows, testFrameCols, gocv.MatTypeCV8UC3)
	} else {
		*dst = gocv.NewMat()
	}
	if r.onRead != nil {
		r.onRead(r.reads)
	}
	return true
}

type detectionStep struct {
	rects []image.Rectangle
	panic bool
}

type scriptedDetector struct {
	steps []detectionStep
	calls int
}

func (d *scriptedDetector) Detect(gocv.Mat) []image.Rectangle {
	if d.calls >= len(d.steps) {
		return nil
	}
	step := d.steps[d.calls]
	d.calls++
	if step.panic {
		panic("detector failure")
	}
	return step.rects
}

// box returns 20x20 detection centered at (cx, cy)
func box(cx, cy int) image.Rectangle {
	return image.Rect(cx-10, cy-10, cx+10, cy+10)
}

func newTestPipeline(t *testing.T, reader FrameReader, detector Detector) (*Pipeline, *counter.Engine, *stats.Publisher) {
	t.Helper()
	engine, err := counter.NewEngine(counter.DefaultConfig(), nil, nil)
	require.NoError(t, err)
	publisher := stats.NewPublisher("session", time.Now())
	return NewPipeline(reader, detector, engine, nil, publisher, 0, logging.Discard()), engine, publisher
}

func TestPipelineSkipsBadFramesAndCounts(t *testing.T) {
	reader := &scriptedReader{frames: []bool{true, false, true, true, true}}
	detector := &scriptedDetector{steps: []detectionStep{
		{rects: []image.Rectangle{box(50, 250)}},
		{panic: true},
		{rects: []image.Rectangle{box(55, 290)}},
		{rects: []image.Rectangle{box(60, 310)}},
	}}
	pipeline, engine, publisher := newTestPipeline(t, reader, detector)

	require.NoError(t, pipeline.Run(context.Background()))

	assert.Equal(t, 5, reader.reads)
	// empty frame never reaches the detector
	assert.Equal(t, 4, detector.calls)
	assert.Equal(t, uint64(1), engine.Count())
	assert.Equal(t, 0, engine.Len())

	snapshot := publisher.Snapshot()
	assert.Equal(t, uint64(1), snapshot.Count)
	assert.Equal(t, uint64(3), snapshot.FramesProcessed)
	assert.Equal(t, uint64(2), snapshot.FramesSkipped)
	assert.Equal(t, 300.0, snapshot.LineY)
	assert.Equal(t, testFrameCols, snapshot.FrameWidth)
	assert.Equal(t, testFrameRows, snapshot.FrameHeight)
	assert.False(t, snapshot.Running)
}

func TestPipelineStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &scriptedReader{
		frames: []bool{true, true, true, true},
		onRead: func(reads int) {
			if reads == 2 {
				cancel()
			}
		},
	}
	pipeline, _, publisher := newTestPipeline(t, reader, &scriptedDetector{})

	require.NoError(t, pipeline.Run(ctx))

	assert.Equal(t, 2, reader.reads)
	snapshot := publisher.Snapshot()
	assert.Equal(t, uint64(2), snapshot.FramesProcessed)
	assert.False(t, snapshot.Running)
}

func TestPipelineNotStartedWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reader := &scriptedReader{frames: []bool{true}}
	pipeline, _, publisher := newTestPipeline(t, reader, &scriptedDetector{})

	require.NoError(t, pipeline.Run(ctx))
	assert.Equal(t, 0, reader.reads)
	assert.Equal(t, uint64(0), publisher.Snapshot().FramesProcessed)
}
