package report

import (
	"bytes"
	"testing"

	"github.com/mucalc/mucalc/dose"
)

func TestWorksheet_ProducesPDF(t *testing.T) {
	in := dose.DefaultInputs()
	in.Dose = 200
	in.FieldSize = 10
	in.MURate = 100
	in.Energy = dose.Energy6MV
	in.Depth = 5

	engine, err := dose.NewEngine(dose.DefaultBeamData())
	if err != nil {
		t.Fatal(err)
	}
	res, err := engine.Calculate(in)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	meta := Meta{Institution: "General Hospital", Author: "Physics", RequestID: "req-1"}
	if err := Worksheet(&buf, meta, in, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty output")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not start with a PDF header")
	}
}

func TestWorksheet_UndefinedResultRendersDiagnostic(t *testing.T) {
	in := dose.DefaultInputs()
	in.Dose = 200
	in.FieldSize = 10
	in.MURate = 0 // zero denominator
	in.Energy = dose.Energy6MV
	in.Depth = 5

	engine, err := dose.NewEngine(dose.DefaultBeamData())
	if err != nil {
		t.Fatal(err)
	}
	res, err := engine.Calculate(in)
	if err != nil {
		t.Fatal(err)
	}
	if res.Defined {
		t.Fatal("expected undefined result")
	}

	var buf bytes.Buffer
	if err := Worksheet(&buf, Meta{}, in, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty output")
	}
}
