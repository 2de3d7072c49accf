package video

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// cascadeScaleImage is CASCADE_SCALE_IMAGE flag of OpenCV
const cascadeScaleImage = 2

// Preprocess converts frame to grayscale and equalizes its histogram
func Preprocess(frame gocv.Mat, gray *gocv.Mat) {
	gocv.CvtColor(frame, gray, gocv.ColorBGRToGray)
	gocv.EqualizeHist(*gray, gray)
}

// CascadeDetector finds vehicles with a Haar/LBP cascade classifier
type CascadeDetector struct {
	classifier      gocv.CascadeClassifier
	scaleFactor     float64
	minNeighbors    int
	minSizeFraction float64
	// Computed once from the first frame height
	minSize int
}

// NewCascadeDetector loads classifier trained set from disk
func NewCascadeDetector(path string, scaleFactor float64, minNeighbors int, minSizeFraction float64) (*CascadeDetector, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("can't load cascade classifier from %q", path)
	}
	return &CascadeDetector{
		classifier:      classifier,
		scaleFactor:     scaleFactor,
		minNeighbors:    minNeighbors,
		minSizeFraction: minSizeFraction,
	}, nil
}

// Detect returns candidate rectangles on a preprocessed (grayscale, equalized) frame
func (d *CascadeDetector) Detect(gray gocv.Mat) []image.Rectangle {
	if d.minSize == 0 {
		if size := int(math.Round(float64(gray.Rows()) * d.minSizeFraction)); size > 0 {
			d.minSize = size
		}
	}
	return d.classifier.DetectMultiScaleWithParams(
		gray,
		d.scaleFactor,
		d.minNeighbors,
		cascadeScaleImage,
		image.Pt(d.minSize, d.minSize),
		image.Pt(0, 0),
	)
}

func (d *CascadeDetector) Close() error {
	return d.classifier.Close()
}
