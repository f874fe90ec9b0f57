package editor

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tavtun/docsys/internal/transfer"
	"github.com/tavtun/docsys/pkg/handlers"
	"github.com/tavtun/docsys/pkg/routes"
)

// Handler drives edit sessions over HTTP.
type Handler struct {
	mgr           *Manager
	logger        *slog.Logger
	maxUploadSize int64
	downloadBase  string
}

// OpenRequest starts a session. Department is the editing user's
// department label.
type OpenRequest struct {
	DocumentID uuid.UUID `json:"document_id"`
	Department string    `json:"department,omitempty"`
}

func NewHandler(mgr *Manager, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		mgr:           mgr,
		logger:        logger.With("handler", "sessions"),
		maxUploadSize: maxUploadSize,
		downloadBase:  "/files/download/",
	}
}

// WithDownloadBase sets the URL prefix stored previews redirect under.
func (h *Handler) WithDownloadBase(base string) *Handler {
	h.downloadBase = strings.TrimSuffix(base, "/") + "/"
	return h
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Open},
			{Method: "GET", Pattern: "/{id}", Handler: h.Get},
			{Method: "PATCH", Pattern: "/{id}", Handler: h.Apply},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Cancel},
			{Method: "PUT", Pattern: "/{id}/file", Handler: h.SelectFile},
			{Method: "DELETE", Pattern: "/{id}/file", Handler: h.ClearFile},
			{Method: "GET", Pattern: "/{id}/preview", Handler: h.Preview},
			{Method: "GET", Pattern: "/{id}/code", Handler: h.Code},
			{Method: "POST", Pattern: "/{id}/submit", Handler: h.Submit},
		},
	}
}

func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	s, err := h.mgr.Open(r.Context(), req.DocumentID, req.Department)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, s.View())
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s.View())
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var p Patch
	if err := handlers.DecodeJSON(r, &p); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := s.Apply(p); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s.View())
}

func (h *Handler) SelectFile(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := transfer.ParseUploadForm(w, r, h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, transfer.MapHTTPStatus(err), err)
		return
	}

	file, err := transfer.ReadFormFile(r, "file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := s.SelectFile(file); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s.View())
}

func (h *Handler) ClearFile(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.ClearFile(); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s.View())
}

// Preview serves the staged file behind a transient preview, or redirects
// to the download of the stored file.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	switch p := s.Preview().(type) {
	case TransientPreview:
		f, ok := h.mgr.Handles().Open(p.Handle)
		if !ok {
			handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNoPreview)
			return
		}
		w.Header().Set("Content-Type", f.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
		w.Write(f.Data)
	case StoredPreview:
		http.Redirect(w, r, h.downloadBase+p.Path, http.StatusSeeOther)
	default:
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNoPreview)
	}
}

func (h *Handler) Code(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, map[string]string{"code": s.CodePreview()})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	doc, err := h.mgr.Submit(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, doc)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.mgr.Cancel(id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, ok := h.pathID(w, r)
	if !ok {
		return nil, false
	}

	s, err := h.mgr.Get(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}
	return s, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrSessionNotFound)
		return uuid.Nil, false
	}
	return id, true
}
