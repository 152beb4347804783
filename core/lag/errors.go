package lag

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned when source and target have different lengths.
var ErrLengthMismatch = errors.New("source and target must have equal length")

// InsufficientDataError reports that a window cannot hold every lag candidate.
type InsufficientDataError struct {
	StartRow  int
	MaxLag    int
	WindowEnd int
	Length    int
}

func (e *InsufficientDataError) Error() string {
	if e.WindowEnd >= e.Length {
		return fmt.Sprintf("insufficient data: window end %d is past the last row %d", e.WindowEnd, e.Length-1)
	}
	return fmt.Sprintf("insufficient data: start row %d + max lag %d exceeds window end %d", e.StartRow, e.MaxLag, e.WindowEnd)
}

// DegenerateSeriesError reports a lag candidate with zero variance.
type DegenerateSeriesError struct {
	Lag int
}

func (e *DegenerateSeriesError) Error() string {
	return fmt.Sprintf("lag %d: zero variance, correlation undefined", e.Lag)
}

// NoValidLagError reports that every lag candidate for a row was degenerate.
type NoValidLagError struct {
	StartRow int
	Causes   []error
}

func (e *NoValidLagError) Error() string {
	return fmt.Sprintf("no valid lag at start row %d: %d candidates degenerate", e.StartRow, len(e.Causes))
}

// Unwrap exposes the per-lag causes to errors.Is and errors.As.
func (e *NoValidLagError) Unwrap() []error {
	return e.Causes
}
