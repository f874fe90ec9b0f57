package codes

import (
	"log/slog"
	"net/http"

	"github.com/tavtun/docsys/pkg/handlers"
	"github.com/tavtun/docsys/pkg/routes"
)

// Handler exposes the code configuration over HTTP.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "codes"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/codes",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Config},
			{Method: "PUT", Pattern: "/{kind}", Handler: h.Save},
			{Method: "DELETE", Pattern: "/{kind}/{code}", Handler: h.Delete},
		},
	}
}

func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.sys.Config(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, cfg)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	kind, err := ParseKind(r.PathValue("kind"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var comp Component
	if err := handlers.DecodeJSON(r, &comp); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	saved, err := h.sys.SaveComponent(r.Context(), kind, comp)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, saved)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, err := ParseKind(r.PathValue("kind"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.DeleteComponent(r.Context(), kind, r.PathValue("code")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
