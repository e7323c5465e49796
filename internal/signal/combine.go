package signal

// Blend mixes the normalized threshold signal and the calendar position.
// An undefined input yields an undefined weight.
func Blend(threshold, calendar, alpha float64) float64 {
	return alpha*threshold + (1-alpha)*calendar
}

// Combine applies Blend day by day.
func Combine(threshold, calendar []float64, alpha float64) []float64 {
	out := make([]float64, len(threshold))
	for i := range threshold {
		out[i] = Blend(threshold[i], calendar[i], alpha)
	}
	return out
}
