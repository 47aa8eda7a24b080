package dose

// Result is the outcome of one MU calculation: the resolved intermediate
// factors and the final MU. Defined is false when the denominator
// evaluated to exactly zero; MU is then 0 and must not be shown as a
// number. A diverging MU is an input error, not a value, so the pipeline
// surfaces it as data instead of propagating Inf or NaN.
type Result struct {
	Energy         Energy   `json:"energy"`
	Geometry       Geometry `json:"geometry"`
	EffectiveDepth float64  `json:"effective_depth"`
	OutputFactor   float64  `json:"output_factor"`
	PercentDD      float64  `json:"percent_dd"`
	TMR            float64  `json:"tmr"`
	WedgeFactor    float64  `json:"wedge_factor"`
	Denominator    float64  `json:"denominator"`
	MU             float64  `json:"mu"`
	Defined        bool     `json:"defined"`
}

// CalcMU computes monitor units from dose and the six multiplicative
// denominator factors. All six are treated symmetrically; none is ever
// dropped. Returns defined=false when the denominator is exactly zero
// after floating-point evaluation.
func CalcMU(dose, outputFactor, muRate, tmr, wf, isf, tf float64) (mu float64, defined bool) {
	denominator := outputFactor * muRate * tmr * wf * isf * tf
	if denominator == 0 {
		return 0, false
	}
	return dose / denominator, true
}
