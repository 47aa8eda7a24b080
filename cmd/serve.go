package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mucalc/mucalc/dose"
	"github.com/mucalc/mucalc/internal/api"
	"github.com/mucalc/mucalc/internal/config"
)

// serveCmd runs the calculation HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MU calculation HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		// .env is optional; deployments usually set real env vars.
		if err := godotenv.Load(); err == nil {
			logrus.Debug("Loaded environment from .env")
		}

		cfg, err := config.Load()
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			logrus.SetLevel(level)
		}

		data := dose.DefaultBeamData()
		if path := cfg.BeamDataPath; path != "" {
			if data, err = dose.LoadBeamData(path); err != nil {
				logrus.Fatalf("Invalid beam data: %v", err)
			}
		}
		engine, err := dose.NewEngine(data)
		if err != nil {
			logrus.Fatalf("Invalid beam data: %v", err)
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		server := &http.Server{
			Addr:              cfg.Addr,
			Handler:           api.NewServer(engine, cfg, reg).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			logrus.Infof("Serving MU calculation API on %s (energies: %v)", cfg.Addr, data.Energies())
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logrus.Fatalf("Server failed: %v", err)
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logrus.Errorf("Shutdown: %v", err)
		}
		logrus.Info("Server stopped.")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
