package video

import (
	"fmt"
	"image"
	"image/color"

	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/counter"
	"gocv.io/x/gocv"
)

var (
	lineColor       = color.RGBA{250, 0, 0, 0}
	detectionColor  = color.RGBA{0, 255, 0, 0}
	downwardColor   = color.RGBA{0, 250, 0, 0}
	otherTrackColor = color.RGBA{255, 128, 0, 0}
	textColor       = color.RGBA{255, 255, 255, 0}
)

// Renderer annotates frames and optionally writes them to a video file
type Renderer struct {
	output string
	fps    float64
	writer *gocv.VideoWriter
}

// NewRenderer creates renderer. Empty output disables writing; annotation still happens
func NewRenderer(output string, fps float64) *Renderer {
	if fps <= 0 {
		fps = 30
	}
	return &Renderer{
		output: output,
		fps:    fps,
	}
}

// Draw annotates frame with counting line (first 80% of width), detections, live tracks and the count
func (r *Renderer) Draw(frame *gocv.Mat, detections []image.Rectangle, lineY float64, tracks []counter.VehicleState, count uint64) {
	y := int(lineY)
	gocv.Line(frame, image.Pt(0, y), image.Pt(int(0.8*float64(frame.Cols())), y), lineColor, 2)

	for _, rect := range detections {
		gocv.Rectangle(frame, rect, detectionColor, 3)
	}
	for _, track := range tracks {
		trackColor := otherTrackColor
		if track.Direction == counter.DirectionDownward {
			trackColor = downwardColor
		}
		gocv.Circle(frame, track.MassCenter.ToImage(), 4, trackColor, -1)
	}
	gocv.PutText(frame, fmt.Sprintf("Vehicles: %d", count), image.Pt(10, 30), gocv.FontHersheyPlain, 2, textColor, 2)
}

// Write appends frame to output video, opening the writer on first call
func (r *Renderer) Write(frame gocv.Mat) error {
	if r.output == "" {
		return nil
	}
	if r.writer == nil {
		writer, err := gocv.VideoWriterFile(r.output, "MJPG", r.fps, frame.Cols(), frame.Rows(), true)
		if err != nil {
			return fmt.Errorf("open video writer %q: %w", r.output, err)
		}
		r.writer = writer
	}
	return r.writer.Write(frame)
}

func (r *Renderer) Close() error {
	if r.writer == nil {
		return nil
	}
	return r.writer.Close()
}
