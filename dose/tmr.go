package dose

// CalcTMR converts a %DD value into a tissue-maximum-ratio equivalent.
//
// SAD (isocentric) geometry uses %DD/100 directly. SSD geometry applies
// an inverse-square correction ((ssd+depth)/sad)^2 converting the
// SSD-measured %DD into an SAD-equivalent ratio. effectiveDepth must
// already include bolus; the addition happens in Inputs.EffectiveDepth,
// never here. A non-positive sad falls back to DefaultSAD.
func CalcTMR(percentDD, effectiveDepth float64, geometry Geometry, ssd, sad float64) float64 {
	if sad <= 0 {
		sad = DefaultSAD
	}
	tmr := percentDD / 100.0
	if geometry == GeometrySSD {
		scale := (ssd + effectiveDepth) / sad
		tmr *= scale * scale
	}
	return tmr
}
