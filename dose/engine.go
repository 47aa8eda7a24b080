package dose

import (
	"fmt"
)

// Engine binds the calculation pipeline to one validated beam dataset.
// It carries no per-calculation state and is safe for concurrent use.
type Engine struct {
	data *BeamData
}

// NewEngine validates the dataset and returns an Engine bound to it.
func NewEngine(data *BeamData) (*Engine, error) {
	if data == nil {
		return nil, fmt.Errorf("beam data must not be nil")
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return &Engine{data: data}, nil
}

// BeamData returns the dataset the engine was built with.
func (e *Engine) BeamData() *BeamData { return e.data }

// wedgeFactor resolves the effective wedge multiplier for the inputs:
// the angle table when a wedge is requested, the direct multiplier
// otherwise. An explicit zero multiplier stays zero so the undefined
// result path can surface it; "no wedge" is expressed by the caller
// passing 1.0 (the CLI and API defaults), not by zero.
func (e *Engine) wedgeFactor(in Inputs) (float64, error) {
	if in.WedgeAngle != nil {
		wf, err := e.data.WedgeFactor(*in.WedgeAngle)
		if err != nil {
			return 0, err
		}
		return wf, nil
	}
	return in.WedgeFactor, nil
}

// Calculate runs the full pipeline: effective depth, %DD, TMR for the
// requested geometry, correction factors, and the final MU. The returned
// Result has Defined=false when the factor product is exactly zero; an
// error is returned only for configuration problems (unknown energy,
// missing wedge table) or inputs violating the scalar contract.
func (e *Engine) Calculate(in Inputs) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	effectiveDepth := in.EffectiveDepth()

	percentDD, err := e.data.PercentDepthDose(in.Energy, in.FieldSize, effectiveDepth)
	if err != nil {
		return Result{}, err
	}

	wf, err := e.wedgeFactor(in)
	if err != nil {
		return Result{}, err
	}

	tmr := CalcTMR(percentDD, effectiveDepth, in.Geometry, in.SSD, e.data.SAD)
	outputFactor := e.data.OutputFactor(in.FieldSize)

	res := Result{
		Energy:         in.Energy,
		Geometry:       in.Geometry,
		EffectiveDepth: effectiveDepth,
		OutputFactor:   outputFactor,
		PercentDD:      percentDD,
		TMR:            tmr,
		WedgeFactor:    wf,
	}
	res.Denominator = outputFactor * in.MURate * tmr * wf * in.ISF * in.TrayFactor
	res.MU, res.Defined = CalcMU(in.Dose, outputFactor, in.MURate, tmr, wf, in.ISF, in.TrayFactor)
	return res, nil
}
