// Package server exposes a workspace over HTTP so a presentation layer can
// push build steps and poll the projections of the published tree.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/stepfs/pkg/stepfs"
	"github.com/arthur-debert/stepfs/pkg/stepfs/core"
	"github.com/arthur-debert/stepfs/pkg/stepfs/steps"
)

const maxBodySize = 10 << 20

// Server holds the chi router and the workspace it serves.
type Server struct {
	router chi.Router
	ws     *stepfs.Workspace
	logger zerolog.Logger
}

// New creates a Server with all routes configured.
func New(ws *stepfs.Workspace, logger zerolog.Logger) *Server {
	s := &Server{ws: ws, logger: logger}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/steps", s.handleListSteps)
		r.Post("/steps", s.handleAppendSteps)
		r.Get("/tree", s.handleTree)
		r.Get("/mount", s.handleMount)
		r.Get("/files", s.handleFiles)
		r.Get("/preview/mode", s.handlePreviewMode)
		r.Get("/preview/document", s.handleStaticDocument)
		r.Get("/preview/ready", s.handleReady)
	})

	s.router = r
	return s
}

// ServeHTTP implements the http.Handler interface, delegating to the chi router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type appendResponse struct {
	Applied []core.StepID `json:"applied"`
	Changed bool          `json:"changed"`
	Error   string        `json:"error,omitempty"`
}

// handleAppendSteps accepts a step plan (object or bare array), appends its
// steps and reconciles. Sandbox failures are reported in the body; the steps
// are applied regardless.
func (s *Server) handleAppendSteps(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	plan, err := steps.UnmarshalPlan(raw)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	result, err := s.ws.Apply(r.Context(), plan.Steps...)
	resp := appendResponse{Applied: result.Applied, Changed: result.Changed}
	if resp.Applied == nil {
		resp.Applied = []core.StepID{}
	}
	if err != nil {
		resp.Error = err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSteps(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ws.Steps())
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ws.Tree())
}

func (s *Server) handleMount(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ws.MountDescriptor())
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ws.FlattenedFiles())
}

func (s *Server) handlePreviewMode(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"mode": string(s.ws.PreviewMode())})
}

func (s *Server) handleStaticDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.ws.StaticDocument()
	if !ok {
		s.writeError(w, http.StatusNotFound, "no preview available (no HTML file found)")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		s.logger.Debug().Err(err).Msg("failed to write static document")
	}
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ready, ok := s.ws.ServerReady()
	if !ok {
		s.writeError(w, http.StatusNotFound, "sandbox not ready")
		return
	}
	s.writeJSON(w, http.StatusOK, ready)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
