// Package api exposes the recognition listener over HTTP: the perception
// stack posts segmented object observations, the server runs a recognition
// pass against the stored grasp models and replies with the outcome.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/bhetherman/rail-pick-and-place/internal/graspdb"
	"github.com/bhetherman/rail-pick-and-place/internal/httputil"
	"github.com/bhetherman/rail-pick-and-place/internal/monitor"
	"github.com/bhetherman/rail-pick-and-place/internal/recognition"
	"github.com/bhetherman/rail-pick-and-place/internal/version"
)

// Server wires the grasp-model store, the recognizer and the monitor into
// an HTTP surface.
type Server struct {
	store *graspdb.Store
	rec   *recognition.Recognizer
	mon   *monitor.Monitor
}

// NewServer creates a Server.
func NewServer(store *graspdb.Store, rec *recognition.Recognizer, mon *monitor.Monitor) *Server {
	return &Server{store: store, rec: rec, mon: mon}
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/recognize", s.handleRecognize)
	mux.HandleFunc("/api/models", s.handleModels)
	mux.HandleFunc("/api/version", handleVersion)
	mux.HandleFunc("/debug/recognition", s.mon.HandleDashboard)
	mux.HandleFunc("/", s.handleHome)
	return mux
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("rail pick-and-place recognition listener"))
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}

func (s *Server) handleRecognize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req ObservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("decode observation: %v", err))
		return
	}

	candidates, err := s.store.GetGraspModels(req.ObjectName)
	if err != nil {
		log.Printf("load candidate models: %v", err)
		httputil.InternalServerError(w, "failed to load candidate models")
		return
	}

	start := time.Now()
	result, err := s.rec.Recognize(req.Observation(), candidates)
	attempt := monitor.Attempt{
		FrameID:    req.FrameID,
		Candidates: len(candidates),
		Duration:   time.Since(start),
	}

	switch {
	case err == nil:
		attempt.Accepted = true
		attempt.ModelID = result.ModelID
		attempt.ObjectName = result.Name
		attempt.Confidence = result.Confidence
		s.mon.Record(attempt)
		httputil.WriteJSONOK(w, RecognizeResponse{Recognized: true, Result: result})
	case errors.Is(err, recognition.ErrNoConfidentMatch):
		s.mon.Record(attempt)
		httputil.WriteJSONOK(w, RecognizeResponse{Recognized: false})
	case errors.Is(err, recognition.ErrNoCandidates), errors.Is(err, recognition.ErrEmptyCloud):
		s.mon.Record(attempt)
		httputil.UnprocessableEntity(w, err.Error())
	default:
		log.Printf("recognition failed: %v", err)
		httputil.InternalServerError(w, "recognition failed")
	}
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listModels(w, r)
	case http.MethodPost:
		s.importModel(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) listModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.store.GetGraspModels(r.URL.Query().Get("object_name"))
	if err != nil {
		log.Printf("list models: %v", err)
		httputil.InternalServerError(w, "failed to list models")
		return
	}
	summaries := make([]ModelSummary, 0, len(models))
	for _, m := range models {
		summary := ModelSummary{ID: m.ID, ObjectName: m.ObjectName, GraspCount: len(m.Grasps)}
		if m.PointCloud != nil {
			summary.PointCount = len(m.PointCloud.Points)
		}
		summaries = append(summaries, summary)
	}
	httputil.WriteJSONOK(w, summaries)
}

func (s *Server) importModel(w http.ResponseWriter, r *http.Request) {
	var req ModelImport
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("decode model: %v", err))
		return
	}
	if req.ObjectName == "" {
		httputil.BadRequest(w, "object_name is required")
		return
	}
	model := req.Model()
	if err := s.store.AddGraspModel(model); err != nil {
		log.Printf("import model: %v", err)
		httputil.InternalServerError(w, "failed to store model")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ModelSummary{
		ID:         model.ID,
		ObjectName: model.ObjectName,
		GraspCount: len(model.Grasps),
		PointCount: len(model.PointCloud.Points),
	})
}
