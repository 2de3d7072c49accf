package counter

import "github.com/pkg/errors"

var (
	// ErrInvalidDetection is returned for a detection rectangle with non-positive width or height.
	// The rectangle is skipped and no track state is touched.
	ErrInvalidDetection = errors.New("invalid detection")
	// ErrNoActiveLine is returned when the frame geometry is unusable (non-positive height or width),
	// so the counting line is undefined. All rectangles of such frame are skipped.
	ErrNoActiveLine = errors.New("no active counting line")
)
