// Package video holds the collaborators around the counting engine: frame capture,
// preprocessing, cascade detection and annotated output. All of it is backed by gocv.
package video

import (
	"fmt"
	"os"
	"strconv"

	"gocv.io/x/gocv"
)

// Source is an opened video file or camera
type Source struct {
	capture *gocv.VideoCapture
	name    string
}

// OpenSource opens a video file when name is an existing path, otherwise treats it as camera index
func OpenSource(name string) (*Source, error) {
	var capture *gocv.VideoCapture
	var err error
	if _, statErr := os.Stat(name); statErr == nil {
		capture, err = gocv.VideoCaptureFile(name)
	} else {
		id, convErr := strconv.Atoi(name)
		if convErr != nil {
			return nil, fmt.Errorf("video source %q is neither a file nor a camera index", name)
		}
		capture, err = gocv.VideoCaptureDevice(id)
	}
	if err != nil {
		return nil, fmt.Errorf("open video source %q: %w", name, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("video source %q is not available", name)
	}
	return &Source{
		capture: capture,
		name:    name,
	}, nil
}

// Read grabs next frame into dst. False means the stream is over
func (s *Source) Read(dst *gocv.Mat) bool {
	return s.capture.Read(dst)
}

// FPS reported by the stream, zero when unknown
func (s *Source) FPS() float64 {
	return s.capture.Get(gocv.VideoCaptureFPS)
}

// Name returns source file or camera index as given
func (s *Source) Name() string {
	return s.name
}

func (s *Source) Close() error {
	return s.capture.Close()
}
