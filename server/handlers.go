package server

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/randalmurphal/tidynote"
	"github.com/randalmurphal/tidynote/artifact"
	tnctx "github.com/randalmurphal/tidynote/context"
)

type organizeRequest struct {
	Text string `json:"text"`
	Save bool   `json:"save,omitempty"`
}

type contentRequest struct {
	Content string `json:"content"`
}

type organizeResponse struct {
	tidynote.Result
	Artifact *artifact.Artifact `json:"artifact,omitempty"`
}

type listResponse struct {
	Artifacts []artifact.Artifact `json:"artifacts"`
	Count     int                 `json:"count"`
}

func (s *Server) handleOrganize(w http.ResponseWriter, r *http.Request) {
	var req organizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	org := tnctx.MustOrganizer(r.Context())
	result, err := org.Organize(r.Context(), req.Text)
	if err != nil {
		tnctx.Logger(r.Context()).Warn("organize failed", "error", err)
		writeError(w, err)
		return
	}

	resp := organizeResponse{Result: result}
	if req.Save {
		saved, err := org.Save(r.Context(), result)
		if err != nil {
			writeError(w, err)
			return
		}
		resp.Artifact = &saved
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tnctx.MustOrganizer(r.Context()).Process(req.Content))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := tnctx.MustOrganizer(r.Context()).List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Artifacts: items, Count: len(items)})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, tidynote.ErrEmptyInput)
		return
	}

	org := tnctx.MustOrganizer(r.Context())
	saved, err := org.Save(r.Context(), org.Process(req.Content))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/artifacts/"+saved.ID)
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	item, err := tnctx.MustOrganizer(r.Context()).Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	item, err := tnctx.MustOrganizer(r.Context()).Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": artifact.DefaultExportName}))
	w.WriteHeader(http.StatusOK)
	if err := artifact.Export(w, item); err != nil {
		tnctx.Logger(r.Context()).Warn("export write failed", "id", item.ID, "error", err)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	removed, err := tnctx.MustOrganizer(r.Context()).Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !removed {
		writeError(w, fmt.Errorf("%w: %s", tidynote.ErrNotFound, id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":     "ok",
		"driver":     s.services.Backend.Driver(),
		"completion": s.services.Completer != nil,
	}
	writeJSON(w, http.StatusOK, status)
}
