package dose

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultBeamData())
	if err != nil {
		t.Fatalf("engine construction: %v", err)
	}
	return e
}

func baselineInputs() Inputs {
	in := DefaultInputs()
	in.Dose = 200
	in.FieldSize = 10
	in.MURate = 100
	in.Energy = Energy6MV
	in.Depth = 5
	return in
}

func TestCalculate_ReferenceSADScenario(t *testing.T) {
	e := testEngine(t)
	res, err := e.Calculate(baselineInputs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Defined {
		t.Fatal("expected defined result")
	}
	assert.Equal(t, 83.0, res.PercentDD)
	assert.Equal(t, 0.83, res.TMR)
	assert.Equal(t, 1.00, res.OutputFactor)
	assert.InDelta(t, 200.0/(1.00*100*0.83), res.MU, 1e-12)
	assert.InDelta(t, 2.41, res.MU, 0.005)
}

func TestCalculate_SSDGeometryMatchesSADAtUnitScale(t *testing.T) {
	e := testEngine(t)
	in := baselineInputs()
	in.Geometry = GeometrySSD
	in.SSD = 95 // (95+5)/100 = 1, so TMR equals the SAD value
	res, err := e.Calculate(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.InDelta(t, 0.83, res.TMR, 1e-12)
}

func TestCalculate_BolusAddsToLookupDepth(t *testing.T) {
	e := testEngine(t)

	withBolus := baselineInputs()
	withBolus.Depth = 3
	withBolus.Bolus = 2

	plain := baselineInputs()
	plain.Depth = 5

	got, err := e.Calculate(withBolus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, err := e.Calculate(plain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PercentDD != want.PercentDD {
		t.Errorf("depth 3 + bolus 2 %%DD = %v, want same as depth 5 (%v)", got.PercentDD, want.PercentDD)
	}
	if got.EffectiveDepth != 5 {
		t.Errorf("effective depth = %v, want 5", got.EffectiveDepth)
	}
}

func TestCalculate_WedgeAngleLookupOverridesDirectFactor(t *testing.T) {
	e := testEngine(t)
	angle := 30.0
	in := baselineInputs()
	in.WedgeAngle = &angle
	in.WedgeFactor = 0.5 // must be ignored in favor of the table

	res, err := e.Calculate(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, 0.91, res.WedgeFactor)
	assert.InDelta(t, 200.0/(1.00*100*0.83*0.91), res.MU, 1e-12)
}

func TestCalculate_NoWedgeMeansIdentityFactor(t *testing.T) {
	e := testEngine(t)
	res, err := e.Calculate(baselineInputs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.WedgeFactor != 1.0 {
		t.Errorf("wedge factor = %v, want identity 1.0 without a wedge", res.WedgeFactor)
	}
}

func TestCalculate_ZeroWedgeFactorYieldsUndefined(t *testing.T) {
	e := testEngine(t)
	in := baselineInputs()
	in.WedgeFactor = 0
	res, err := e.Calculate(in)
	if err != nil {
		t.Fatalf("undefined result must not be an error: %v", err)
	}
	if res.Defined {
		t.Errorf("expected undefined result with wf=0, got mu=%v", res.MU)
	}
	if math.IsInf(res.MU, 0) || math.IsNaN(res.MU) {
		t.Errorf("mu must not be Inf/NaN, got %v", res.MU)
	}
}

func TestCalculate_ZeroMURateYieldsUndefined(t *testing.T) {
	e := testEngine(t)
	in := baselineInputs()
	in.MURate = 0
	res, err := e.Calculate(in)
	if err != nil {
		t.Fatalf("undefined result must not be an error: %v", err)
	}
	if res.Defined {
		t.Errorf("expected undefined result with mu_rate=0, got mu=%v", res.MU)
	}
}

func TestCalculate_UnknownEnergyIsError(t *testing.T) {
	e := testEngine(t)
	in := baselineInputs()
	in.Energy = "4 MV"
	if _, err := e.Calculate(in); err == nil {
		t.Fatal("expected configuration error for unknown energy")
	}
}

func TestCalculate_InvalidInputsCollected(t *testing.T) {
	e := testEngine(t)
	in := baselineInputs()
	in.Dose = -10
	in.Geometry = GeometrySSD // SSD unset
	_, err := e.Calculate(in)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assert.Contains(t, err.Error(), "dose")
	assert.Contains(t, err.Error(), "ssd")
}

func TestCalculate_Idempotent(t *testing.T) {
	e := testEngine(t)
	in := baselineInputs()
	first, err := e.Calculate(in)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		res, err := e.Calculate(in)
		if err != nil {
			t.Fatal(err)
		}
		if res != first {
			t.Fatalf("call %d differs: %+v vs %+v", i, res, first)
		}
	}
}

func TestNewEngine_RejectsInvalidData(t *testing.T) {
	if _, err := NewEngine(nil); err == nil {
		t.Fatal("expected error for nil beam data")
	}
	if _, err := NewEngine(&BeamData{}); err == nil {
		t.Fatal("expected error for empty beam data")
	}
}
