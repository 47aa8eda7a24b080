// Package report renders MU calculation worksheets as PDF documents for
// chart records and second checks. It is a pure rendering layer over
// dose.Result; no state is kept between calls.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/mucalc/mucalc/dose"
)

// Meta carries the identifying header fields of a worksheet.
type Meta struct {
	Title       string `json:"title"`
	Institution string `json:"institution"`
	Author      string `json:"author"`
	RequestID   string `json:"request_id"`
	Notes       string `json:"notes"`
}

// Worksheet writes a single-page PDF summarizing one calculation:
// the inputs, the resolved factors, and the final MU (or the undefined
// diagnostic when the denominator was zero).
func Worksheet(w io.Writer, meta Meta, in dose.Inputs, res dose.Result) error {
	if meta.Title == "" {
		meta.Title = "MU Calculation Worksheet"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, meta.Title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	if meta.Institution != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Institution: %s", meta.Institution))
		pdf.Ln(6)
	}
	if meta.Author != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Calculated by: %s", meta.Author))
		pdf.Ln(6)
	}
	if meta.RequestID != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Request: %s", meta.RequestID))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Inputs")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	writeRow(pdf, "Prescribed dose", fmt.Sprintf("%.2f cGy", in.Dose))
	writeRow(pdf, "Energy", string(in.Energy))
	writeRow(pdf, "Field size", fmt.Sprintf("%.2f cm", in.FieldSize))
	writeRow(pdf, "Depth", fmt.Sprintf("%.2f cm", in.Depth))
	if in.Bolus > 0 {
		writeRow(pdf, "Bolus", fmt.Sprintf("%.2f cm", in.Bolus))
	}
	writeRow(pdf, "Geometry", string(in.Geometry))
	if in.Geometry == dose.GeometrySSD {
		writeRow(pdf, "SSD", fmt.Sprintf("%.1f cm", in.SSD))
	}
	writeRow(pdf, "MU rate", fmt.Sprintf("%.2f cGy/MU", in.MURate))
	if in.WedgeAngle != nil {
		writeRow(pdf, "Wedge angle", fmt.Sprintf("%.0f deg", *in.WedgeAngle))
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Resolved factors")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	writeRow(pdf, "Effective depth", fmt.Sprintf("%.2f cm", res.EffectiveDepth))
	writeRow(pdf, "Percent depth dose", fmt.Sprintf("%.2f %%", res.PercentDD))
	writeRow(pdf, "TMR", fmt.Sprintf("%.4f", res.TMR))
	writeRow(pdf, "Output factor", fmt.Sprintf("%.4f", res.OutputFactor))
	writeRow(pdf, "Wedge factor", fmt.Sprintf("%.4f", res.WedgeFactor))
	writeRow(pdf, "Inverse square factor", fmt.Sprintf("%.4f", in.ISF))
	writeRow(pdf, "Tray factor", fmt.Sprintf("%.4f", in.TrayFactor))
	writeRow(pdf, "Denominator", fmt.Sprintf("%.6f", res.Denominator))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	if res.Defined {
		pdf.Cell(0, 10, fmt.Sprintf("Monitor units: %.2f MU", res.MU))
	} else {
		pdf.Cell(0, 10, "Monitor units: cannot calculate (zero denominator - check inputs)")
	}
	pdf.Ln(12)

	if meta.Notes != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, meta.Notes, "", "L", false)
	}

	return pdf.Output(w)
}

func writeRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.Cell(70, 6, label)
	pdf.Cell(0, 6, value)
	pdf.Ln(6)
}
