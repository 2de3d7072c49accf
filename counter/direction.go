package counter

// Direction is travel direction of a vehicle relative to the counting line
type Direction uint8

const (
	// DirectionDownward marks vehicles expected to cross the line top to bottom. Only those are counted
	DirectionDownward Direction = iota
	// DirectionNotDownward marks everything else
	DirectionNotDownward
)

func (d Direction) String() string {
	switch d {
	case DirectionDownward:
		return "downward"
	case DirectionNotDownward:
		return "not_downward"
	default:
		return "unknown"
	}
}

// DirectionPolicy classifies a newly created track from its first rectangle.
// It is evaluated exactly once per track and never revisited.
type DirectionPolicy func(rect Rectangle, frameWidth float64) Direction

// HorizontalDirectionPolicy uses horizontal position as a proxy for travel direction:
// a centroid left of threshold*frameWidth is considered downward traffic.
func HorizontalDirectionPolicy(threshold float64) DirectionPolicy {
	return func(rect Rectangle, frameWidth float64) Direction {
		if rect.Centroid().X < frameWidth*threshold {
			return DirectionDownward
		}
		return DirectionNotDownward
	}
}

// ClassifyDirection classifies with the default 70% threshold
func ClassifyDirection(rect Rectangle, frameWidth float64) Direction {
	return HorizontalDirectionPolicy(DefaultConfig().DirectionThreshold)(rect, frameWidth)
}
