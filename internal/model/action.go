package model

// Direction is a human-friendly label for a day's spread position.
// Keep these values stable; they are intended for CSV output.
type Direction string

const (
	DirectionLong      Direction = "LONG"
	DirectionFlat      Direction = "FLAT"
	DirectionShort     Direction = "SHORT"
	DirectionUndefined Direction = "UNDEFINED"
)

func DirectionFromWeight(weight float64) Direction {
	switch {
	case !IsDefined(weight):
		return DirectionUndefined
	case weight > 0:
		return DirectionLong
	case weight < 0:
		return DirectionShort
	default:
		return DirectionFlat
	}
}
