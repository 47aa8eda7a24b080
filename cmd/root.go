package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mucalc/mucalc/dose"
)

var (
	logLevel     string // Log verbosity level
	beamDataPath string // YAML beam dataset, empty = embedded defaults
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "mucalc",
	Short: "Monitor unit calculator for external beam radiotherapy",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// loadEngine builds the calculation engine from the configured dataset,
// falling back to the embedded defaults when no path is given. Reference
// data errors are deployment bugs, so they are fatal here.
func loadEngine() *dose.Engine {
	data := dose.DefaultBeamData()
	if beamDataPath != "" {
		loaded, err := dose.LoadBeamData(beamDataPath)
		if err != nil {
			logrus.Fatalf("Invalid beam data: %v", err)
		}
		data = loaded
		logrus.Infof("Loaded beam data from %s: energies=%v sad=%.1f", beamDataPath, data.Energies(), data.SAD)
	}
	engine, err := dose.NewEngine(data)
	if err != nil {
		logrus.Fatalf("Invalid beam data: %v", err)
	}
	return engine
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&beamDataPath, "beam-data", "", "YAML beam dataset path (default: embedded dataset)")
}
