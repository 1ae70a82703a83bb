package georadius

import (
	"errors"
	"fmt"
)

// ErrInvalidPolygon matches every *InvalidPolygonError via errors.Is.
var ErrInvalidPolygon = errors.New("invalid polygon")

// InvalidPolygonError reports why a polygon could not be used for a radius estimate.
// Index is the offending vertex, or -1 when the polygon as a whole is rejected.
type InvalidPolygonError struct {
	Index  int
	Reason string
}

func (e *InvalidPolygonError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid polygon: %s", e.Reason)
	}
	return fmt.Sprintf("invalid polygon: point %d: %s", e.Index, e.Reason)
}

func (e *InvalidPolygonError) Is(target error) bool {
	return target == ErrInvalidPolygon
}

func polygonError(reason string) error {
	return &InvalidPolygonError{Index: -1, Reason: reason}
}
