package api

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mucalc/mucalc/dose"
	"github.com/mucalc/mucalc/report"
)

// calculationRequest is the JSON body of calculation-style endpoints.
// The multiplicative factors are pointers so an omitted factor defaults
// to 1.0 while an explicit zero is preserved and reported as an
// undefined result, never as Inf.
type calculationRequest struct {
	Dose        float64  `json:"dose"`
	FieldSize   float64  `json:"field_size"`
	MURate      float64  `json:"mu_rate"`
	Energy      string   `json:"energy"`
	Depth       float64  `json:"depth"`
	WedgeAngle  *float64 `json:"wedge_angle,omitempty"`
	WedgeFactor *float64 `json:"wedge_factor,omitempty"`
	ISF         *float64 `json:"isf,omitempty"`
	TrayFactor  *float64 `json:"tray_factor,omitempty"`
	Geometry    string   `json:"geometry,omitempty"`
	SSD         float64  `json:"ssd,omitempty"`
	Bolus       float64  `json:"bolus,omitempty"`
}

func (req calculationRequest) toInputs() (dose.Inputs, error) {
	in := dose.DefaultInputs()
	in.Dose = req.Dose
	in.FieldSize = req.FieldSize
	in.MURate = req.MURate
	in.Energy = dose.Energy(req.Energy)
	in.Depth = req.Depth
	in.SSD = req.SSD
	in.Bolus = req.Bolus
	in.WedgeAngle = req.WedgeAngle
	if req.WedgeFactor != nil {
		in.WedgeFactor = *req.WedgeFactor
	}
	if req.ISF != nil {
		in.ISF = *req.ISF
	}
	if req.TrayFactor != nil {
		in.TrayFactor = *req.TrayFactor
	}
	if req.Geometry != "" {
		geometry, err := dose.ParseGeometry(req.Geometry)
		if err != nil {
			return dose.Inputs{}, err
		}
		in.Geometry = geometry
	}
	return in, nil
}

type calculationResponse struct {
	RequestID string      `json:"request_id"`
	Result    dose.Result `json:"result"`
	Message   string      `json:"message,omitempty"`
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { s.metrics.Duration.Observe(time.Since(start).Seconds()) }()

	var req calculationRequest
	if err := decodeJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.metrics.Calculations.WithLabelValues(OutcomeBadRequest).Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := req.toInputs()
	if err != nil {
		s.metrics.Calculations.WithLabelValues(OutcomeBadRequest).Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.engine.Calculate(in)
	if err != nil {
		s.metrics.Calculations.WithLabelValues(OutcomeBadRequest).Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := calculationResponse{RequestID: uuid.NewString(), Result: res}
	if !res.Defined {
		s.metrics.Calculations.WithLabelValues(OutcomeUndefined).Inc()
		resp.Message = "cannot calculate MU: denominator is zero, check your inputs"
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	s.metrics.Calculations.WithLabelValues(OutcomeOK).Inc()
	writeJSON(w, http.StatusOK, resp)
}

type sensitivityRequest struct {
	Variable  string             `json:"variable"`
	Increment float64            `json:"increment"`
	Inputs    calculationRequest `json:"inputs"`
}

func (s *Server) handleSensitivity(w http.ResponseWriter, r *http.Request) {
	var req sensitivityRequest
	if err := decodeJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Increment <= 0 {
		writeError(w, http.StatusBadRequest, "increment must be > 0")
		return
	}
	in, err := req.Inputs.toInputs()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sens, err := s.engine.Sensitivity(req.Variable, in, req.Increment)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sens)
}

type sweepRequest struct {
	Variable string             `json:"variable"`
	Min      *float64           `json:"min,omitempty"`
	Max      *float64           `json:"max,omitempty"`
	Samples  int                `json:"samples,omitempty"`
	Inputs   calculationRequest `json:"inputs"`
}

type sweepResponse struct {
	Variable string            `json:"variable"`
	Points   []dose.SweepPoint `json:"points"`
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	var req sweepRequest
	if err := decodeJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := req.Inputs.toInputs()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rng, ok := dose.DefaultSweepRanges[req.Variable]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown sweep variable %q (want one of %v)", req.Variable, dose.Variables()))
		return
	}
	if req.Min != nil {
		rng.Min = *req.Min
	}
	if req.Max != nil {
		rng.Max = *req.Max
	}
	samples := req.Samples
	if samples == 0 {
		samples = dose.DefaultSweepSamples
	}

	points, err := s.engine.Sweep(req.Variable, in, rng, samples)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sweepResponse{Variable: req.Variable, Points: points})
}

type reportRequest struct {
	Meta   report.Meta        `json:"meta"`
	Inputs calculationRequest `json:"inputs"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decodeJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := req.Inputs.toInputs()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.engine.Calculate(in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	meta := req.Meta
	if meta.RequestID == "" {
		meta.RequestID = uuid.NewString()
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="mu-worksheet.pdf"`)
	if err := report.Worksheet(w, meta, in, res); err != nil {
		writeError(w, http.StatusInternalServerError, "report generation error")
		return
	}
}

// beamDataSummary describes a dataset without echoing every table value.
type beamDataSummary struct {
	SAD        float64              `json:"sad"`
	Energies   []dose.Energy        `json:"energies"`
	FieldSizes map[string][]float64 `json:"field_sizes"`
	HasWedge   bool                 `json:"has_wedge_factors"`
}

func summarize(data *dose.BeamData) beamDataSummary {
	summary := beamDataSummary{
		SAD:        data.SAD,
		Energies:   data.Energies(),
		FieldSizes: make(map[string][]float64, len(data.PDD)),
		HasWedge:   data.WedgeFactors != nil,
	}
	for energy, set := range data.PDD {
		summary.FieldSizes[string(energy)] = set.FieldSizes()
	}
	return summary
}

func (s *Server) handleBeamDataInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, summarize(s.engine.BeamData()))
}

// handleBeamDataImport validates an uploaded XLSX dataset and returns its
// summary. The server keeps serving its configured dataset; physicists
// use this to check a commissioning workbook before deployment.
func (s *Server) handleBeamDataImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file required")
		return
	}
	defer file.Close()

	data, err := dose.ReadBeamDataXLSX(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summarize(data))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Status: status, Message: message})
}
