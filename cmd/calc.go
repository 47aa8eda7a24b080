package cmd

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mucalc/mucalc/dose"
)

var (
	// CLI flags for one calculation
	calcDose       float64 // Prescribed dose (cGy)
	calcFieldSize  float64 // Equivalent square field size (cm)
	calcMURate     float64 // Machine calibration (cGy/MU)
	calcEnergy     string  // Beam energy label
	calcDepth      float64 // Prescription depth (cm)
	calcBolus      float64 // Bolus thickness (cm)
	calcWedgeAngle float64 // Wedge angle in degrees, < 0 = no wedge
	calcWedge      float64 // Direct wedge factor
	calcISF        float64 // Inverse square factor
	calcTray       float64 // Tray factor
	calcGeometry   string  // SAD or SSD
	calcSSD        float64 // SSD distance (cm), SSD geometry only
	calcFormat     string  // Output format: text or json
)

func inputsFromFlags() dose.Inputs {
	in := dose.DefaultInputs()
	in.Dose = calcDose
	in.FieldSize = calcFieldSize
	in.MURate = calcMURate
	in.Energy = dose.Energy(calcEnergy)
	in.Depth = calcDepth
	in.Bolus = calcBolus
	in.WedgeFactor = calcWedge
	in.ISF = calcISF
	in.TrayFactor = calcTray
	in.SSD = calcSSD
	if calcWedgeAngle >= 0 {
		angle := calcWedgeAngle
		in.WedgeAngle = &angle
	}
	geometry, err := dose.ParseGeometry(calcGeometry)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	in.Geometry = geometry
	return in
}

// calcCmd runs a single MU calculation from CLI flags
var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Calculate monitor units for one prescription",
	Run: func(cmd *cobra.Command, args []string) {
		engine := loadEngine()
		in := inputsFromFlags()

		res, err := engine.Calculate(in)
		if err != nil {
			logrus.Fatalf("Calculation failed: %v", err)
		}

		switch calcFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				logrus.Fatalf("Encode result: %v", err)
			}
		case "text":
			printResult(in, res)
		default:
			logrus.Fatalf("Unknown output format %q (want text or json)", calcFormat)
		}

		if !res.Defined {
			// Diagnostic, not a crash: a zero denominator is an input error.
			os.Exit(1)
		}
	},
}

func printResult(in dose.Inputs, res dose.Result) {
	fmt.Printf("Energy:          %s\n", res.Energy)
	fmt.Printf("Geometry:        %s\n", res.Geometry)
	fmt.Printf("Effective depth: %.2f cm\n", res.EffectiveDepth)
	fmt.Printf("Percent DD:      %.2f %%\n", res.PercentDD)
	fmt.Printf("TMR:             %.4f\n", res.TMR)
	fmt.Printf("Output factor:   %.4f\n", res.OutputFactor)
	fmt.Printf("Wedge factor:    %.4f\n", res.WedgeFactor)
	fmt.Printf("Denominator:     %.6f\n", res.Denominator)
	if res.Defined {
		fmt.Printf("MU:              %.2f\n", res.MU)
	} else {
		fmt.Println("MU:              cannot calculate (zero denominator - check your inputs)")
	}
}

func init() {
	calcCmd.Flags().Float64Var(&calcDose, "dose", 0, "Prescribed dose in cGy")
	calcCmd.Flags().Float64Var(&calcFieldSize, "field-size", 0, "Equivalent square field size in cm")
	calcCmd.Flags().Float64Var(&calcMURate, "mu-rate", 1.0, "Machine calibration in cGy/MU")
	calcCmd.Flags().StringVar(&calcEnergy, "energy", "6 MV", "Beam energy label")
	calcCmd.Flags().Float64Var(&calcDepth, "depth", 0, "Prescription depth in cm")
	calcCmd.Flags().Float64Var(&calcBolus, "bolus", 0, "Bolus thickness in cm, added to depth")
	calcCmd.Flags().Float64Var(&calcWedgeAngle, "wedge-angle", -1, "Wedge angle in degrees (negative = no wedge)")
	calcCmd.Flags().Float64Var(&calcWedge, "wf", 1.0, "Wedge factor (ignored when --wedge-angle is set)")
	calcCmd.Flags().Float64Var(&calcISF, "isf", 1.0, "Inverse square factor")
	calcCmd.Flags().Float64Var(&calcTray, "tf", 1.0, "Tray factor")
	calcCmd.Flags().StringVar(&calcGeometry, "geometry", "SAD", "Treatment geometry (SAD or SSD)")
	calcCmd.Flags().Float64Var(&calcSSD, "ssd", 0, "Source-surface distance in cm (SSD geometry)")
	calcCmd.Flags().StringVar(&calcFormat, "format", "text", "Output format (text, json)")

	rootCmd.AddCommand(calcCmd)
}
