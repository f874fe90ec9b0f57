package api

import (
	"fmt"
	"net/http"

	"github.com/tavtun/docsys/internal/config"
	"github.com/tavtun/docsys/pkg/openapi"
	"github.com/tavtun/docsys/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) error {
	maxUpload := cfg.API.MaxUploadSizeBytes()

	groups := []routes.Group{
		domain.Codes.Handler().Routes(),
		domain.Documents.Handler().Routes(),
		domain.Transfer.Handler(maxUpload).Routes(),
		domain.Editor.Handler(maxUpload).
			WithDownloadBase(cfg.API.BasePath + "/files/download").
			Routes(),
		domain.Hub.Routes(),
	}
	routes.Register(mux, groups...)

	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)
	spec.AddGroups(groups...)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return fmt.Errorf("marshal openapi spec: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(data))
	return nil
}
