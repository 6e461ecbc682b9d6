package bspline

import "errors"

var (
	// ErrInvalidInput is returned for knot sequences that are too short,
	// decreasing or non-finite, for orders below 1 and for empty point sets.
	ErrInvalidInput = errors.New("bspline: invalid input")

	// ErrIndexOutOfRange is returned when index + order addresses past the
	// end of the extended knot sequence.
	ErrIndexOutOfRange = errors.New("bspline: index out of range")
)
