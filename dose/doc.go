// Package dose implements the monitor-unit (MU) calculation core.
//
// # Reading Guide
//
// Start with these three files to understand the calculation pipeline:
//   - table.go: sorted-key lookup tables with linear interpolation and flat clamping
//   - beamdata.go: the calibrated beam dataset (output factors, wedge factors, %DD)
//   - engine.go: the pipeline composing %DD, TMR, and correction factors into MU
//
// # Architecture
//
// BeamData is immutable reference data, built once at startup from the
// embedded defaults or a YAML/CSV/XLSX dataset and shared across
// calculations without locking. Each calculation receives its own Inputs
// value and produces a Result; an exactly-zero denominator yields a
// Result with Defined=false rather than an error, Inf, or NaN.
//
// sensitivity.go derives per-variable responsiveness from the same
// pipeline: single ±increment perturbations and full range sweeps for
// external plotting layers.
package dose
