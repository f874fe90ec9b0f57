// Package openapi builds an OpenAPI 3.1 document from registered route
// groups and serves it as JSON.
package openapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tavtun/docsys/pkg/routes"
)

// Spec represents an OpenAPI 3.1 specification document.
type Spec struct {
	OpenAPI    string               `json:"openapi"`
	Info       *Info                `json:"info"`
	Servers    []*Server            `json:"servers,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *Components          `json:"components,omitempty"`
}

// NewSpec creates a Spec with the given title, version, and default components.
func NewSpec(title, version string) *Spec {
	return &Spec{
		OpenAPI: "3.1.0",
		Info: &Info{
			Title:   title,
			Version: version,
		},
		Components: NewComponents(),
		Paths:      make(map[string]*PathItem),
	}
}

// AddServer appends a server URL to the document.
func (s *Spec) AddServer(url string) {
	s.Servers = append(s.Servers, &Server{URL: url})
}

// SetDescription sets the API description in the info object.
func (s *Spec) SetDescription(desc string) {
	s.Info.Description = desc
}

// AddGroups adds one operation per route. Operations are tagged with the
// first segment of their path; path parameters are declared from the
// pattern wildcards.
func (s *Spec) AddGroups(groups ...routes.Group) {
	for _, g := range groups {
		for _, pattern := range g.Patterns() {
			method, path, ok := strings.Cut(pattern, " ")
			if !ok {
				continue
			}
			path, params := convertPath(path)

			item, ok := s.Paths[path]
			if !ok {
				item = &PathItem{}
				s.Paths[path] = item
			}
			item.Set(method, &Operation{
				Tags:       []string{tag(path)},
				Parameters: params,
				Responses:  defaultResponses(method),
			})
		}
	}
}

// MarshalJSON serializes the document to indented JSON bytes.
func MarshalJSON(spec *Spec) ([]byte, error) {
	return json.MarshalIndent(spec, "", "  ")
}

// ServeSpec returns a handler that serves pre-serialized JSON spec bytes.
func ServeSpec(specBytes []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(specBytes)
	}
}

// convertPath rewrites ServeMux wildcards ({id}, {path...}) to OpenAPI
// templates and returns the matching path parameters.
func convertPath(path string) (string, []*Parameter) {
	var params []*Parameter
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		name := strings.TrimSuffix(strings.Trim(seg, "{}"), "...")
		segments[i] = "{" + name + "}"
		params = append(params, PathParam(name))
	}
	if path == "" {
		return "/", params
	}
	return strings.Join(segments, "/"), params
}

func tag(path string) string {
	first, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	return first
}

func defaultResponses(method string) map[int]*Response {
	ok := http.StatusOK
	switch method {
	case http.MethodPost:
		ok = http.StatusCreated
	case http.MethodDelete:
		ok = http.StatusNoContent
	}
	return map[int]*Response{
		ok:                             {Description: http.StatusText(ok)},
		http.StatusBadRequest:          ResponseRef("BadRequest"),
		http.StatusNotFound:            ResponseRef("NotFound"),
		http.StatusInternalServerError: ResponseRef("InternalError"),
	}
}
