package baseflow

import "errors"

var (
	// ErrInvalidParameter indicates a filter parameter that makes the
	// recursion coefficients mathematically undefined.
	ErrInvalidParameter = errors.New("invalid filter parameter")

	// ErrInvalidInitialValue indicates an unrecognized initial-value method.
	ErrInvalidInitialValue = errors.New("invalid initial value method")

	// ErrInsufficientTurningPoints indicates that a graphical method found
	// fewer than the 3 turning points required for interpolation.
	ErrInsufficientTurningPoints = errors.New("fewer than 3 turning points found")

	// ErrInsufficientData indicates a series too short or too degenerate for
	// the requested computation.
	ErrInsufficientData = errors.New("insufficient flow data")
)
