package model

import (
	"errors"
	"math"
)

var (
	// ErrMissingInput marks a date whose required return, signal or regime value is absent.
	// Affected rows are excluded; they are never zero-filled.
	ErrMissingInput = errors.New("missing input")

	// ErrInsufficientSample is returned when a window has no rows to compute statistics over.
	ErrInsufficientSample = errors.New("insufficient sample")
)

// Undefined is the value stored for a day with no defined signal or weight.
func Undefined() float64 { return math.NaN() }

func IsDefined(x float64) bool { return !math.IsNaN(x) }
