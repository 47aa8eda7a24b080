package dose

import (
	"math"
	"testing"
)

func TestSensitivity_MURateUpDecreasesMU(t *testing.T) {
	e := testEngine(t)
	s, err := e.Sensitivity(VarMURate, baselineInputs(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Defined {
		t.Fatal("expected defined sensitivity")
	}
	if s.PctUp >= 0 {
		t.Errorf("increasing a denominator factor must decrease MU: pct_up = %v", s.PctUp)
	}
	if s.PctDown <= 0 {
		t.Errorf("decreasing a denominator factor must increase MU: pct_down = %v", s.PctDown)
	}
}

func TestSensitivity_DoseIsLinear(t *testing.T) {
	e := testEngine(t)
	s, err := e.Sensitivity(VarDose, baselineInputs(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// MU is proportional to dose: a +20 on 200 is exactly +10%.
	if math.Abs(s.PctUp-10) > 1e-9 {
		t.Errorf("pct_up = %v, want 10", s.PctUp)
	}
	if math.Abs(s.PctDown+10) > 1e-9 {
		t.Errorf("pct_down = %v, want -10", s.PctDown)
	}
}

func TestSensitivity_NeverMutatesBaseline(t *testing.T) {
	e := testEngine(t)
	angle := 30.0
	baseline := baselineInputs()
	baseline.WedgeAngle = &angle

	snapshot := baseline.Clone()
	if _, err := e.Sensitivity(VarDepth, baseline, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if baseline.Depth != snapshot.Depth || baseline.Dose != snapshot.Dose || baseline.WedgeFactor != snapshot.WedgeFactor {
		t.Errorf("baseline mutated: %+v vs %+v", baseline, snapshot)
	}
	if baseline.WedgeAngle == nil || *baseline.WedgeAngle != 30.0 {
		t.Error("baseline wedge angle mutated")
	}
}

func TestSensitivity_UndefinedBaseline(t *testing.T) {
	e := testEngine(t)
	in := baselineInputs()
	in.MURate = 0 // denominator zero, base MU undefined
	s, err := e.Sensitivity(VarDose, in, 20)
	if err != nil {
		t.Fatalf("undefined baseline must not be an error: %v", err)
	}
	if s.Defined {
		t.Errorf("expected undefined sensitivity, got %+v", s)
	}
}

func TestSensitivity_FloorsDecreasedValue(t *testing.T) {
	e := testEngine(t)
	in := baselineInputs()
	in.Depth = 0.5
	// Decrement larger than the value: down branch clamps at the floor
	// instead of going negative, so the pipeline stays defined.
	s, err := e.Sensitivity(VarDepth, in, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Defined {
		t.Fatal("expected defined sensitivity with floored decrement")
	}
}

func TestSensitivity_UnknownVariable(t *testing.T) {
	e := testEngine(t)
	if _, err := e.Sensitivity("energy", baselineInputs(), 1); err == nil {
		t.Fatal("expected error for unknown variable")
	}
}

func TestSensitivity_WedgeAngleResolvedBeforePerturbation(t *testing.T) {
	e := testEngine(t)
	angle := 45.0
	in := baselineInputs()
	in.WedgeAngle = &angle

	s, err := e.Sensitivity(VarWedge, in, 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Defined {
		t.Fatal("expected defined sensitivity")
	}
	// With the angle baked into wf=0.84, perturbing wf must change MU.
	if s.PctUp == 0 || s.PctDown == 0 {
		t.Errorf("wf perturbation had no effect: %+v", s)
	}
}

func TestSweep_SampleCountAndEndpoints(t *testing.T) {
	e := testEngine(t)
	points, err := e.Sweep(VarDose, baselineInputs(), SweepRange{Min: 100, Max: 300}, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 50 {
		t.Fatalf("got %d points, want 50", len(points))
	}
	if points[0].Value != 100 || points[len(points)-1].Value != 300 {
		t.Errorf("endpoints = %v..%v, want 100..300", points[0].Value, points[len(points)-1].Value)
	}
	for _, p := range points {
		if !p.Defined {
			t.Fatalf("unexpected undefined point at %v", p.Value)
		}
	}
}

func TestSweep_UndefinedPointsAreGapsNotErrors(t *testing.T) {
	e := testEngine(t)
	// Sweeping wf through zero produces an undefined point, not a failure.
	points, err := e.Sweep(VarWedge, baselineInputs(), SweepRange{Min: -1, Max: 1}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sawUndefined := false
	for _, p := range points {
		if !p.Defined {
			sawUndefined = true
			if p.MU != 0 {
				t.Errorf("undefined point must carry mu=0, got %v", p.MU)
			}
		}
	}
	if !sawUndefined {
		t.Error("expected at least one undefined point in a sweep through wf=0")
	}
}

func TestSweep_RejectsDegenerateParameters(t *testing.T) {
	e := testEngine(t)
	if _, err := e.Sweep(VarDose, baselineInputs(), SweepRange{Min: 100, Max: 300}, 1); err == nil {
		t.Error("expected error for samples < 2")
	}
	if _, err := e.Sweep(VarDose, baselineInputs(), SweepRange{Min: 300, Max: 100}, 10); err == nil {
		t.Error("expected error for inverted range")
	}
	if _, err := e.Sweep("bolus", baselineInputs(), SweepRange{Min: 0, Max: 1}, 10); err == nil {
		t.Error("expected error for unknown variable")
	}
}

func TestDefaultSweepRanges_CoverAllVariables(t *testing.T) {
	for _, name := range Variables() {
		rng, ok := DefaultSweepRanges[name]
		if !ok {
			t.Errorf("no default range for %q", name)
			continue
		}
		if rng.Max <= rng.Min {
			t.Errorf("degenerate default range for %q: %+v", name, rng)
		}
	}
}
