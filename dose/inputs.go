package dose

import (
	"fmt"
	"math"
	"strings"
)

// Geometry selects the treatment setup for the TMR conversion.
type Geometry string

const (
	// GeometrySAD is the isocentric setup: %DD is used as TMR directly.
	GeometrySAD Geometry = "SAD"
	// GeometrySSD is the fixed-distance setup: %DD is converted with an
	// inverse-square correction using the SSD distance.
	GeometrySSD Geometry = "SSD"
)

// ParseGeometry parses a geometry label, case-insensitively.
func ParseGeometry(s string) (Geometry, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SAD":
		return GeometrySAD, nil
	case "SSD":
		return GeometrySSD, nil
	default:
		return "", fmt.Errorf("unknown geometry %q (want SAD or SSD)", s)
	}
}

// Inputs is the transient parameter set of one MU calculation. A value is
// created per request, owned by that calculation only, and never retained.
type Inputs struct {
	Dose      float64 `json:"dose" yaml:"dose"`             // prescribed dose, cGy
	FieldSize float64 `json:"field_size" yaml:"field_size"` // equivalent square field size, cm
	MURate    float64 `json:"mu_rate" yaml:"mu_rate"`       // machine calibration, cGy/MU
	Energy    Energy  `json:"energy" yaml:"energy"`
	Depth     float64 `json:"depth" yaml:"depth"` // prescription depth, cm

	// WedgeAngle, when set, selects the wedge factor from the dataset and
	// takes precedence over WedgeFactor. Nil means no wedge (factor 1.0).
	WedgeAngle *float64 `json:"wedge_angle,omitempty" yaml:"wedge_angle,omitempty"` // degrees
	// WedgeFactor is a direct wedge transmission multiplier for callers
	// that bypass the angle table. Ignored when WedgeAngle is set.
	WedgeFactor float64 `json:"wedge_factor" yaml:"wedge_factor"`

	ISF        float64 `json:"isf" yaml:"isf"`                 // inverse square factor
	TrayFactor float64 `json:"tray_factor" yaml:"tray_factor"` // tray transmission factor

	Geometry Geometry `json:"geometry" yaml:"geometry"`
	SSD      float64  `json:"ssd,omitempty" yaml:"ssd,omitempty"`     // cm, required iff Geometry == SSD
	Bolus    float64  `json:"bolus,omitempty" yaml:"bolus,omitempty"` // bolus thickness, cm, added to depth
}

// DefaultInputs returns an Inputs value with every multiplicative factor
// at identity and SAD geometry. CLI flags and API request decoding start
// from this so an omitted factor means 1.0 while an explicit zero is
// preserved and surfaces as an undefined result.
func DefaultInputs() Inputs {
	return Inputs{
		WedgeFactor: 1.0,
		ISF:         1.0,
		TrayFactor:  1.0,
		Geometry:    GeometrySAD,
	}
}

// Clone returns an independent copy. The wedge angle pointer is deep
// copied so perturbing a clone can never reach the caller's value.
func (in Inputs) Clone() Inputs {
	out := in
	if in.WedgeAngle != nil {
		angle := *in.WedgeAngle
		out.WedgeAngle = &angle
	}
	return out
}

// EffectiveDepth is the lookup depth: prescribed depth plus bolus. The
// addition happens here, before any %DD or TMR resolution.
func (in Inputs) EffectiveDepth() float64 {
	return in.Depth + in.Bolus
}

// Validate checks the scalar contract the calculation pipeline assumes,
// collecting every problem into a single error.
func (in Inputs) Validate() error {
	var problems []string

	if in.Dose <= 0 || !isFinite(in.Dose) {
		problems = append(problems, fmt.Sprintf("dose must be > 0, got %v", in.Dose))
	}
	if in.FieldSize <= 0 || !isFinite(in.FieldSize) {
		problems = append(problems, fmt.Sprintf("field_size must be > 0, got %v", in.FieldSize))
	}
	if in.MURate < 0 || !isFinite(in.MURate) {
		problems = append(problems, fmt.Sprintf("mu_rate must be >= 0, got %v", in.MURate))
	}
	if in.Energy == "" {
		problems = append(problems, "energy must be set")
	}
	if in.Depth < 0 || !isFinite(in.Depth) {
		problems = append(problems, fmt.Sprintf("depth must be >= 0, got %v", in.Depth))
	}
	if in.Bolus < 0 || !isFinite(in.Bolus) {
		problems = append(problems, fmt.Sprintf("bolus must be >= 0, got %v", in.Bolus))
	}
	if !isFinite(in.WedgeFactor) || !isFinite(in.ISF) || !isFinite(in.TrayFactor) {
		problems = append(problems, "wedge_factor, isf, and tray_factor must be finite")
	}
	if in.WedgeAngle != nil && !isFinite(*in.WedgeAngle) {
		problems = append(problems, "wedge_angle must be finite")
	}
	switch in.Geometry {
	case GeometrySAD:
	case GeometrySSD:
		if in.SSD <= 0 || !isFinite(in.SSD) {
			problems = append(problems, fmt.Sprintf("ssd must be > 0 for SSD geometry, got %v", in.SSD))
		}
	default:
		problems = append(problems, fmt.Sprintf("geometry must be SAD or SSD, got %q", in.Geometry))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid inputs: %s", strings.Join(problems, "; "))
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
