// Package server exposes the roost action surface over a local HTTP
// daemon: JSON actions plus a server-sent-events and a websocket feed for
// scan progress.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/colonyops/roost/internal/core/organize"
	"github.com/colonyops/roost/internal/roost"
)

// Server hosts the roost HTTP API.
type Server struct {
	app *roost.App
	log zerolog.Logger
}

// New creates a Server for the given app.
func New(app *roost.App, log zerolog.Logger) *Server {
	return &Server{app: app, log: log}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))

	r.Route("/api", func(r chi.Router) {
		r.Post("/scan", s.handleTriggerScan)
		r.Post("/scan/stop", s.handleStopScan)
		r.Get("/scan/progress", s.handleProgress)
		r.Get("/scan/progress/stream", s.handleProgressSSE)
		r.Get("/scan/progress/ws", s.handleProgressWS)

		r.Post("/preview", s.handlePreview)
		r.Post("/moves", s.handleMoves)

		r.Get("/repos", s.handleListRepos)
		r.Post("/repos/{id}/theme", s.handleAssignTheme)
		r.Post("/repos/{id}/ignore", s.handleIgnore)
		r.Post("/repos/{id}/reset", s.handleReset)

		r.Get("/dirs", s.handleListDirs)
		r.Post("/dirs", s.handleAddDir)
		r.Delete("/dirs", s.handleRemoveDir)
		r.Patch("/dirs", s.handleToggleDir)

		r.Get("/themes", s.handleListThemes)
		r.Post("/themes", s.handleAddTheme)
		r.Delete("/themes/{name}", s.handleRemoveTheme)

		r.Get("/settings", s.handleSettings)
		r.Put("/settings/root", s.handleSetRoot)
	})

	return r
}

// ListenAndServe runs the HTTP server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", addr).Msg("http server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// requestLogger emits one debug line per request.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}

// writeResult serializes a uniform action result. Failed actions use 422;
// the result body itself carries the error message.
func (s *Server) writeResult(w http.ResponseWriter, result roost.Result) {
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, result)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug().Err(err).Msg("write response failed")
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeResult(w, roost.Result{Success: false, Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) handleTriggerScan(w http.ResponseWriter, _ *http.Request) {
	s.writeResult(w, s.app.Service.TriggerScan())
}

func (s *Server) handleStopScan(w http.ResponseWriter, _ *http.Request) {
	s.writeResult(w, s.app.Service.StopScan())
}

func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.app.Service.Progress())
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []int64 `json:"ids"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	s.writeResult(w, s.app.Service.GeneratePreview(r.Context(), req.IDs))
}

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Entries []organize.PreviewEntry `json:"entries"`
		Options organize.ExecuteOptions `json:"options"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	s.writeResult(w, s.app.Service.ExecuteMoves(r.Context(), req.Entries, req.Options))
}
