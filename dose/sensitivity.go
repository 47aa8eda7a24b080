package dose

import (
	"fmt"
	"sort"
)

// perturbFloor keeps a decreased variable strictly positive. Negative
// depths, doses, or rates are physically meaningless and would take the
// pipeline outside its contract.
const perturbFloor = 0.01

// Perturbable variable names accepted by Sensitivity and Sweep.
const (
	VarDose      = "dose"
	VarFieldSize = "field_size"
	VarMURate    = "mu_rate"
	VarDepth     = "depth"
	VarWedge     = "wf"
	VarISF       = "isf"
	VarTray      = "tf"
)

// SweepRange is a closed value range for one perturbable variable.
type SweepRange struct {
	Min float64
	Max float64
}

// DefaultSweepRanges are the per-variable exploration ranges used when a
// caller does not supply its own, matching the original clinical tool.
var DefaultSweepRanges = map[string]SweepRange{
	VarDose:      {Min: 100, Max: 300},
	VarFieldSize: {Min: 5, Max: 20},
	VarMURate:    {Min: 50, Max: 150},
	VarDepth:     {Min: 0, Max: 30},
	VarWedge:     {Min: 0.5, Max: 1.5},
	VarISF:       {Min: 0.7, Max: 1.3},
	VarTray:      {Min: 0.7, Max: 1.3},
}

// DefaultSweepSamples is the number of points of a default sweep.
const DefaultSweepSamples = 50

// Variables returns the supported variable names, sorted.
func Variables() []string {
	names := make([]string, 0, len(DefaultSweepRanges))
	for name := range DefaultSweepRanges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// variableValue reads the named scalar from the inputs.
func variableValue(in Inputs, variable string) (float64, error) {
	switch variable {
	case VarDose:
		return in.Dose, nil
	case VarFieldSize:
		return in.FieldSize, nil
	case VarMURate:
		return in.MURate, nil
	case VarDepth:
		return in.Depth, nil
	case VarWedge:
		return in.WedgeFactor, nil
	case VarISF:
		return in.ISF, nil
	case VarTray:
		return in.TrayFactor, nil
	default:
		return 0, fmt.Errorf("unknown sensitivity variable %q (want one of %v)", variable, Variables())
	}
}

// setVariable writes the named scalar on the inputs.
func setVariable(in *Inputs, variable string, value float64) error {
	switch variable {
	case VarDose:
		in.Dose = value
	case VarFieldSize:
		in.FieldSize = value
	case VarMURate:
		in.MURate = value
	case VarDepth:
		in.Depth = value
	case VarWedge:
		in.WedgeFactor = value
	case VarISF:
		in.ISF = value
	case VarTray:
		in.TrayFactor = value
	default:
		return fmt.Errorf("unknown sensitivity variable %q (want one of %v)", variable, Variables())
	}
	return nil
}

// Sensitivity reports how MU responds to a ±increment perturbation of one
// input variable around a baseline.
type Sensitivity struct {
	Variable  string  `json:"variable"`
	Increment float64 `json:"increment"`
	BaseMU    float64 `json:"base_mu"`
	PctUp     float64 `json:"pct_change_up"`
	PctDown   float64 `json:"pct_change_down"`
	// Defined is false when the baseline MU is undefined or exactly zero,
	// in which case the percentage changes carry no meaning.
	Defined bool `json:"defined"`
}

// Sensitivity perturbs one variable by ±increment around the baseline and
// reports the percentage change in MU for each direction. The baseline is
// never mutated; each perturbation runs on a clone through the identical
// pipeline. A baseline wedge angle is resolved to its factor first so the
// wf perturbation acts on the value the pipeline actually multiplies.
func (e *Engine) Sensitivity(variable string, baseline Inputs, increment float64) (Sensitivity, error) {
	out := Sensitivity{Variable: variable, Increment: increment}

	base := baseline.Clone()
	if base.WedgeAngle != nil {
		wf, err := e.data.WedgeFactor(*base.WedgeAngle)
		if err != nil {
			return out, err
		}
		base.WedgeFactor = wf
		base.WedgeAngle = nil
	}

	if _, err := variableValue(base, variable); err != nil {
		return out, err
	}

	baseRes, err := e.Calculate(base)
	if err != nil {
		return out, err
	}
	if !baseRes.Defined || baseRes.MU == 0 {
		return out, nil
	}
	out.BaseMU = baseRes.MU

	up, err := e.perturbedMU(base, variable, increment)
	if err != nil {
		return out, err
	}
	down, err := e.perturbedMU(base, variable, -increment)
	if err != nil {
		return out, err
	}
	if !up.Defined || !down.Defined {
		return out, nil
	}

	out.PctUp = 100 * (up.MU - baseRes.MU) / baseRes.MU
	out.PctDown = 100 * (down.MU - baseRes.MU) / baseRes.MU
	out.Defined = true
	return out, nil
}

func (e *Engine) perturbedMU(base Inputs, variable string, delta float64) (Result, error) {
	perturbed := base.Clone()
	value, err := variableValue(perturbed, variable)
	if err != nil {
		return Result{}, err
	}
	value += delta
	if value < perturbFloor {
		value = perturbFloor
	}
	if err := setVariable(&perturbed, variable, value); err != nil {
		return Result{}, err
	}
	return e.Calculate(perturbed)
}

// SweepPoint is one sample of a sensitivity sweep. Defined mirrors the
// underlying Result; plotting layers render undefined points as gaps.
type SweepPoint struct {
	Value   float64 `json:"value"`
	MU      float64 `json:"mu"`
	Defined bool    `json:"defined"`
}

// Sweep evaluates MU across an evenly spaced range of one variable,
// holding all other baseline inputs fixed. samples must be >= 2. The
// baseline is never mutated.
func (e *Engine) Sweep(variable string, baseline Inputs, rng SweepRange, samples int) ([]SweepPoint, error) {
	if samples < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 samples, got %d", samples)
	}
	if rng.Max < rng.Min {
		return nil, fmt.Errorf("sweep range max %v below min %v", rng.Max, rng.Min)
	}
	if _, err := variableValue(baseline, variable); err != nil {
		return nil, err
	}

	base := baseline.Clone()
	if base.WedgeAngle != nil {
		wf, err := e.data.WedgeFactor(*base.WedgeAngle)
		if err != nil {
			return nil, err
		}
		base.WedgeFactor = wf
		base.WedgeAngle = nil
	}

	step := (rng.Max - rng.Min) / float64(samples-1)
	points := make([]SweepPoint, 0, samples)
	for i := 0; i < samples; i++ {
		value := rng.Min + float64(i)*step
		point := SweepPoint{Value: value}

		sample := base.Clone()
		if err := setVariable(&sample, variable, value); err != nil {
			return nil, err
		}
		res, err := e.Calculate(sample)
		if err == nil && res.Defined {
			point.MU = res.MU
			point.Defined = true
		}
		points = append(points, point)
	}
	return points, nil
}
