// Package handlers implements the read-only HTTP surface over a project
// tree: health, version, and project status/history lookups.
package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/skonghq/skong/internal/errors"
	"github.com/skonghq/skong/pkg/project"
)

// ProjectsHandler serves status and history for the tracked directories
// under one parent tree. It only ever reads; mutation stays with the CLI.
type ProjectsHandler struct {
	tree   string
	logger *zap.Logger
}

// NewProjectsHandler creates a handler rooted at the given parent tree.
func NewProjectsHandler(tree string, logger *zap.Logger) *ProjectsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectsHandler{tree: tree, logger: logger}
}

// ProjectListResponse is the body of GET /projects.
type ProjectListResponse struct {
	Projects []project.Entry `json:"projects"`
}

// ProjectHistoryResponse is the body of GET /projects/{name}/history.
type ProjectHistoryResponse struct {
	Project string           `json:"project"`
	History []map[string]any `json:"history"`
}

// List serves GET /projects. An optional ?status= query narrows the
// listing to one status.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter project.Status
	if q := r.URL.Query().Get("status"); q != "" {
		parsed, err := project.ParseStatus(q)
		if err != nil {
			apperrors.WriteHTTPError(w, http.StatusBadRequest,
				apperrors.CodeInvalidArgument, err.Error())
			return
		}
		filter = parsed
	}

	entries, err := project.Scan(h.tree)
	if err != nil {
		h.logger.Error("Project scan failed", zap.String("tree", h.tree), zap.Error(err))
		apperrors.WriteHTTPError(w, http.StatusInternalServerError,
			apperrors.CodeInternal, "failed to scan project tree")
		return
	}

	if filter != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Status == filter {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if entries == nil {
		entries = []project.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ProjectListResponse{Projects: entries})
}

// History serves GET /projects/{name}/history.
func (h *ProjectsHandler) History(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		apperrors.WriteHTTPError(w, http.StatusBadRequest,
			apperrors.CodeInvalidArgument, "invalid project name")
		return
	}

	store := project.NewStore(filepath.Join(h.tree, name))
	if !store.Initialized() {
		apperrors.WriteHTTPError(w, http.StatusNotFound,
			apperrors.CodeNotFound, "project not found: "+name)
		return
	}

	entries, err := store.History()
	if err != nil {
		h.logger.Error("History read failed", zap.String("project", name), zap.Error(err))
		apperrors.WriteHTTPError(w, http.StatusInternalServerError,
			apperrors.CodeInternal, "failed to read project history")
		return
	}
	if entries == nil {
		entries = []map[string]any{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ProjectHistoryResponse{Project: name, History: entries})
}
