package cmd

import (
	"encoding/csv"
	"os"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mucalc/mucalc/dose"
)

var (
	sweepVariable string  // Variable to sweep
	sweepMin      float64 // Range minimum (NaN-free: 0 sentinel handled via flags Changed)
	sweepMax      float64 // Range maximum
	sweepSamples  int     // Number of points
	sweepOut      string  // Output file, empty = stdout
	sweepFormat   string  // csv or json
)

// sweepCmd evaluates MU across a range of one input variable, producing
// curve data for external plotting.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep one input variable and report the MU curve",
	Run: func(cmd *cobra.Command, args []string) {
		engine := loadEngine()
		in := inputsFromFlags()

		rng, ok := dose.DefaultSweepRanges[sweepVariable]
		if !ok {
			logrus.Fatalf("Unknown sweep variable %q (want one of %v)", sweepVariable, dose.Variables())
		}
		if cmd.Flags().Changed("min") {
			rng.Min = sweepMin
		}
		if cmd.Flags().Changed("max") {
			rng.Max = sweepMax
		}

		points, err := engine.Sweep(sweepVariable, in, rng, sweepSamples)
		if err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}

		out := os.Stdout
		if sweepOut != "" {
			f, err := os.Create(sweepOut)
			if err != nil {
				logrus.Fatalf("Create output file: %v", err)
			}
			defer f.Close()
			out = f
		}

		switch sweepFormat {
		case "csv":
			w := csv.NewWriter(out)
			if err := w.Write([]string{sweepVariable, "mu", "defined"}); err != nil {
				logrus.Fatalf("Write CSV: %v", err)
			}
			for _, p := range points {
				record := []string{
					strconv.FormatFloat(p.Value, 'g', -1, 64),
					strconv.FormatFloat(p.MU, 'g', -1, 64),
					strconv.FormatBool(p.Defined),
				}
				if err := w.Write(record); err != nil {
					logrus.Fatalf("Write CSV: %v", err)
				}
			}
			w.Flush()
			if err := w.Error(); err != nil {
				logrus.Fatalf("Write CSV: %v", err)
			}
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(points); err != nil {
				logrus.Fatalf("Encode sweep: %v", err)
			}
		default:
			logrus.Fatalf("Unknown output format %q (want csv or json)", sweepFormat)
		}
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepVariable, "variable", "dose", "Variable to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "Range minimum (default: per-variable range)")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0, "Range maximum (default: per-variable range)")
	sweepCmd.Flags().IntVar(&sweepSamples, "samples", dose.DefaultSweepSamples, "Number of sample points")
	sweepCmd.Flags().StringVar(&sweepOut, "out", "", "Output file (default: stdout)")
	sweepCmd.Flags().StringVar(&sweepFormat, "format", "csv", "Output format (csv, json)")

	sweepCmd.Flags().AddFlagSet(calcCmd.Flags())

	rootCmd.AddCommand(sweepCmd)
}
