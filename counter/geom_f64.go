package counter

import (
	"image"
	"math"

	"github.com/pkg/errors"
)

// Rectangle is an axis-aligned detection region in frame pixel coordinates.
type Rectangle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func NewRect(x, y, width, height float64) Rectangle {
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

func NewRectFrom(rect image.Rectangle) Rectangle {
	return Rectangle{
		X:      float64(rect.Min.X),
		Y:      float64(rect.Min.Y),
		Width:  float64(rect.Dx()),
		Height: float64(rect.Dy()),
	}
}

// Centroid returns the mass center of the rectangle
func (rect Rectangle) Centroid() Point {
	return Point{
		X: rect.X + rect.Width/2.0,
		Y: rect.Y + rect.Height/2.0,
	}
}

// Area returns width * height
func (rect Rectangle) Area() float64 {
	return rect.Width * rect.Height
}

// Validate rejects rectangles with non-positive dimensions or any non-finite value.
func (rect Rectangle) Validate() error {
	if !(rect.Width > 0) || !(rect.Height > 0) || math.IsInf(rect.Width, 0) || math.IsInf(rect.Height, 0) {
		return errors.Wrapf(ErrInvalidDetection, "width=%v height=%v", rect.Width, rect.Height)
	}
	if !isFinite(rect.X) || !isFinite(rect.Y) {
		return errors.Wrapf(ErrInvalidDetection, "origin=(%v, %v)", rect.X, rect.Y)
	}
	return nil
}

// ToImage converts rectangle back to integer image coordinates (used for drawing).
func (rect Rectangle) ToImage() image.Rectangle {
	return image.Rect(
		int(math.Round(rect.X)),
		int(math.Round(rect.Y)),
		int(math.Round(rect.X+rect.Width)),
		int(math.Round(rect.Y+rect.Height)),
	)
}

type Point struct {
	X float64
	Y float64
}

// ToImage rounds point to integer image coordinates.
func (pt Point) ToImage() image.Point {
	return image.Pt(int(math.Round(pt.X)), int(math.Round(pt.Y)))
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(p1.X-p2.X, 2) + math.Pow(p1.Y-p2.Y, 2))
}
