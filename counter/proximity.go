package counter

import "math"

// IsMoving reports whether newCenter could be the same vehicle as oldCenter one frame later.
// Window is anchored on the old centroid: new coordinate must lie in [old-w*old, old+w*old] on both axes.
// Bounds are inclusive. Note the window collapses to a single value for coordinates at zero.
func IsMoving(oldCenter, newCenter Point, window float64) bool {
	return withinWindow(oldCenter.X, newCenter.X, window) && withinWindow(oldCenter.Y, newCenter.Y, window)
}

// sameSize is the same window test applied to areas
func sameSize(oldSize, newSize, window float64) bool {
	return withinWindow(oldSize, newSize, window)
}

func withinWindow(old, value, window float64) bool {
	// abs() keeps the window well-formed for negative anchors (detections partially outside the frame)
	delta := math.Abs(old * window)
	return value >= old-delta && value <= old+delta
}
