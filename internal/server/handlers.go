package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/colonyops/roost/internal/core/repo"
	"github.com/colonyops/roost/internal/roost"
)

func (s *Server) repoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeResult(w, roost.Result{Success: false, Error: "invalid repository id"})
		return 0, false
	}
	return id, true
}

func (s *Server) handleListRepos(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, s.app.Service.ListRepos(r.Context()))
}

func (s *Server) handleAssignTheme(w http.ResponseWriter, r *http.Request) {
	id, ok := s.repoID(w, r)
	if !ok {
		return
	}

	var req struct {
		Theme string `json:"theme"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	s.writeResult(w, s.app.Service.AssignTheme(r.Context(), id, req.Theme))
}

func (s *Server) handleIgnore(w http.ResponseWriter, r *http.Request) {
	id, ok := s.repoID(w, r)
	if !ok {
		return
	}
	s.writeResult(w, s.app.Service.IgnoreRepo(r.Context(), id))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id, ok := s.repoID(w, r)
	if !ok {
		return
	}
	s.writeResult(w, s.app.Service.ResetTriage(r.Context(), id))
}

func (s *Server) handleListDirs(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, s.app.Service.ListScanDirs(r.Context()))
}

func (s *Server) handleAddDir(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	s.writeResult(w, s.app.Service.AddScanDir(r.Context(), req.Path))
}

func (s *Server) handleRemoveDir(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	s.writeResult(w, s.app.Service.RemoveScanDir(r.Context(), req.Path))
}

func (s *Server) handleToggleDir(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path    string `json:"path"`
		Enabled bool   `json:"enabled"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	s.writeResult(w, s.app.Service.SetScanDirEnabled(r.Context(), req.Path, req.Enabled))
}

func (s *Server) handleListThemes(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, s.app.Service.ListThemes(r.Context()))
}

func (s *Server) handleAddTheme(w http.ResponseWriter, r *http.Request) {
	var req repo.Theme
	if !s.decode(w, r, &req) {
		return
	}
	s.writeResult(w, s.app.Service.AddTheme(r.Context(), req))
}

func (s *Server) handleRemoveTheme(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, s.app.Service.RemoveTheme(r.Context(), chi.URLParam(r, "name")))
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, s.app.Service.GetSettings(r.Context()))
}

func (s *Server) handleSetRoot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Root string `json:"root"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	s.writeResult(w, s.app.Service.SetOrganizationRoot(r.Context(), req.Root))
}
