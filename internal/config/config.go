// Package config defines the service configuration for the mucalc HTTP
// server and its layered loading: defaults, optional YAML file, then
// environment variables.
package config

// Config contains process configuration for `mucalc serve`.
type Config struct {
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: trace, debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// BeamDataPath points at a YAML beam dataset. Empty uses the
	// embedded default dataset.
	BeamDataPath string `koanf:"beam_data_path"`

	// RateLimitRPS and RateLimitBurst bound calculation requests per
	// client-facing instance. RPS <= 0 disables limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// MaxBodyBytes caps request body size, covering dataset uploads.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:           ":8080",
		LogLevel:       "info",
		RateLimitRPS:   50,
		RateLimitBurst: 100,
		MaxBodyBytes:   4 << 20,
	}
}
