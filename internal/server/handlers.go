package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/san-kum/barfea/internal/config"
	"github.com/san-kum/barfea/internal/experiment"
	"github.com/san-kum/barfea/internal/export"
	"github.com/san-kum/barfea/internal/fea"
	"github.com/san-kum/barfea/internal/storage"
)

type SolveResponse struct {
	Name      string      `json:"name"`
	RunID     string      `json:"run_id,omitempty"`
	Mesh      []float64   `json:"mesh"`
	Result    *fea.Result `json:"result"`
	Stresses  []float64   `json:"stresses,omitempty"`
	MaxNode   int         `json:"max_node"`
	MaxAbs    float64     `json:"max_abs"`
	ElapsedMs float64     `json:"elapsed_ms"`
}

type ModesResponse struct {
	Name  string           `json:"name"`
	Mesh  []float64        `json:"mesh"`
	Modal *fea.ModalResult `json:"modal"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Solve runs a static analysis. With ?save=true and a store, the run is
// also persisted and its id returned.
func (s *Server) Solve(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeProblem(w, r)
	if !ok {
		return
	}
	p.Modes = 0
	out, ok := s.run(w, r, p)
	if !ok {
		return
	}

	node, peak := out.Result.Displacements.MaxAbs()
	resp := SolveResponse{
		Name:      p.Name,
		Mesh:      out.Mesh,
		Result:    out.Result,
		MaxNode:   node,
		MaxAbs:    peak,
		ElapsedMs: float64(out.Elapsed.Microseconds()) / 1000,
	}
	if len(p.Stiffness) == 0 {
		resp.Stresses = out.Result.Stresses(p.Area)
	}

	if r.URL.Query().Get("save") == "true" && s.store != nil {
		id, err := s.store.Save(out)
		if err != nil {
			s.logger.Printf("save run: %v", err)
			writeError(w, http.StatusInternalServerError, "could not save run")
			return
		}
		resp.RunID = id
	}
	writeJSON(w, http.StatusOK, resp)
}

// Modes runs a modal analysis; a problem asking for no modes gets the default count.
func (s *Server) Modes(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeProblem(w, r)
	if !ok {
		return
	}
	if p.Modes <= 0 {
		p.Modes = config.DefaultModes
	}
	out, ok := s.run(w, r, p)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ModesResponse{Name: p.Name, Mesh: out.Mesh, Modal: out.Modal})
}

func (s *Server) Report(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeProblem(w, r)
	if !ok {
		return
	}
	out, ok := s.run(w, r, p)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.Report(&buf, out); err != nil {
		s.logger.Printf("report: %v", err)
		writeError(w, http.StatusInternalServerError, "could not render report")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", p.Name+".pdf"))
	w.Write(buf.Bytes())
}

func (s *Server) Workbook(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeProblem(w, r)
	if !ok {
		return
	}
	out, ok := s.run(w, r, p)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, out); err != nil {
		s.logger.Printf("workbook: %v", err)
		writeError(w, http.StatusInternalServerError, "could not render workbook")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", p.Name+".xlsx"))
	w.Write(buf.Bytes())
}

func (s *Server) ListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, config.ListPresets())
}

func (s *Server) GetPreset(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	p := config.GetPreset(name)
	if p == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown preset %q", name))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "no run store configured")
		return
	}
	runs, err := s.store.List()
	if err != nil {
		s.logger.Printf("list runs: %v", err)
		writeError(w, http.StatusInternalServerError, "could not list runs")
		return
	}
	if runs == nil {
		runs = []storage.RunMetadata{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "no run store configured")
		return
	}
	var buf bytes.Buffer
	if err := s.store.ExportJSON(&buf, mux.Vars(r)["id"]); err != nil {
		s.storeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(buf.Bytes())
}

func (s *Server) RunNodes(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "no run store configured")
		return
	}
	var buf bytes.Buffer
	if err := s.store.CopyNodes(&buf, mux.Vars(r)["id"]); err != nil {
		s.storeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Write(buf.Bytes())
}

// decodeProblem reads a JSON problem on top of the defaults.
func (s *Server) decodeProblem(w http.ResponseWriter, r *http.Request) (*config.Problem, bool) {
	p := config.DefaultProblem()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request payload: %v", err))
		return nil, false
	}
	if len(p.Nodes) > maxNodes || (len(p.Nodes) == 0 && p.Elements >= maxNodes) {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("mesh too large: at most %d nodes", maxNodes))
		return nil, false
	}
	return p, true
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, p *config.Problem) (*experiment.Outcome, bool) {
	out, err := experiment.New(p).Run(r.Context())
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Printf("solve %s: %v", p.Name, err)
		}
		writeError(w, status, err.Error())
		return nil, false
	}
	return out, true
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.Printf("store: %v", err)
	writeError(w, http.StatusInternalServerError, "could not read run")
}

// statusFor maps solver errors to HTTP statuses: bad input and singular
// systems are the caller's problem.
func statusFor(err error) int {
	switch {
	case errors.Is(err, fea.ErrInvalidMesh),
		errors.Is(err, fea.ErrDimensionMismatch),
		errors.Is(err, fea.ErrInvalidStiffness),
		errors.Is(err, fea.ErrInvalidMass),
		errors.Is(err, fea.ErrInvalidLoad),
		errors.Is(err, fea.ErrInvalidConstraint),
		errors.Is(err, fea.ErrSingularSystem):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
