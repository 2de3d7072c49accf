package counter

import (
	"image"
	"math"
	"testing"

	"github.com/pkg/errors"
)

const (
	eps = 0.00001
)

func TestEuclideanDistance(t *testing.T) {
	p1 := Point{X: 341, Y: 264}
	p2 := Point{X: 421, Y: 427}
	correnctAnswer := 181.57367
	answer := euclideanDistance(p1, p2)
	if math.Abs(answer-correnctAnswer) > eps {
		t.Errorf("Wrong answer: %v, correct answer: %v", answer, correnctAnswer)
	}
}

func TestCentroidAndArea(t *testing.T) {
	rect := NewRect(40, 240, 20, 20)
	center := rect.Centroid()
	if center.X != 50 || center.Y != 250 {
		t.Errorf("Wrong centroid: %v, correct answer: (50, 250)", center)
	}
	if rect.Area() != 400 {
		t.Errorf("Wrong area: %v, correct answer: 400", rect.Area())
	}
	fromImage := NewRectFrom(image.Rect(10, 20, 41, 60))
	if fromImage.Width != 31 || fromImage.Height != 40 {
		t.Errorf("Wrong conversion from image.Rectangle: %+v", fromImage)
	}
	if fromImage.ToImage() != image.Rect(10, 20, 41, 60) {
		t.Errorf("Wrong conversion to image.Rectangle: %v", fromImage.ToImage())
	}
}

func TestValidate(t *testing.T) {
	valid := []Rectangle{NewRect(0, 0, 1, 1), NewRect(-5, -5, 10, 10)}
	for _, rect := range valid {
		if err := rect.Validate(); err != nil {
			t.Errorf("Rectangle %+v should be valid, got %v", rect, err)
		}
	}
	invalid := []Rectangle{
		NewRect(0, 0, 0, 10),
		NewRect(0, 0, 10, 0),
		NewRect(0, 0, -1, 10),
		NewRect(0, 0, math.NaN(), 10),
		NewRect(0, 0, math.Inf(1), 10),
		NewRect(math.NaN(), 0, 10, 10),
		NewRect(math.Inf(1), 10, 20, 20),
		NewRect(10, math.Inf(-1), 20, 20),
	}
	for _, rect := range invalid {
		err := rect.Validate()
		if errors.Cause(err) != ErrInvalidDetection {
			t.Errorf("Rectangle %+v should be rejected with ErrInvalidDetection, got %v", rect, err)
		}
	}
}
