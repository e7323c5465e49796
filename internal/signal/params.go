package signal

import (
	"errors"
	"fmt"
	"math"
)

// Params carries every tunable of the signal pipeline so sensitivity sweeps
// can reuse the same code with different values.
type Params struct {
	// TargetWeight is the risk-asset weight the simulated rebalancer returns to.
	TargetWeight float64
	// Deltas is the threshold band sweep averaged into the threshold signal.
	Deltas DeltaSweep
	// Normalization scales the ensemble-mean drift into a position.
	Normalization float64
	// Alpha is the blend weight of the threshold signal; 1-Alpha goes to the calendar signal.
	Alpha float64
}

func DefaultParams() Params {
	return Params{
		TargetWeight:  0.6,
		Deltas:        DeltaSweep{Min: 0, Max: 0.025, Step: 0.001},
		Normalization: 0.012,
		Alpha:         0.6,
	}
}

func (p Params) Validate() error {
	if p.TargetWeight <= 0 || p.TargetWeight >= 1 {
		return errors.New("target weight must be in (0, 1)")
	}
	if p.Normalization == 0 || math.IsNaN(p.Normalization) {
		return errors.New("normalization constant must be non-zero")
	}
	if math.IsNaN(p.Alpha) {
		return errors.New("alpha must be a number")
	}
	if err := p.Deltas.Validate(); err != nil {
		return fmt.Errorf("delta sweep: %w", err)
	}
	return nil
}

// DeltaSweep describes Min, Min+Step, ..., up to and including Max.
type DeltaSweep struct {
	Min  float64
	Max  float64
	Step float64
}

func (d DeltaSweep) Validate() error {
	if d.Min < 0 {
		return errors.New("min must be >= 0")
	}
	if d.Max < d.Min {
		return errors.New("max must be >= min")
	}
	if d.Step <= 0 && d.Max > d.Min {
		return errors.New("step must be > 0")
	}
	return nil
}

// Values expands the sweep. Each value is Min + i*Step, so the default
// sweep yields exactly 26 deltas from 0 to 0.025.
func (d DeltaSweep) Values() []float64 {
	if d.Step <= 0 || d.Max == d.Min {
		return []float64{d.Min}
	}
	// Tolerance keeps Max inclusive despite binary rounding of Step.
	n := int(math.Floor((d.Max-d.Min)/d.Step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Min + float64(i)*d.Step
	}
	return out
}
