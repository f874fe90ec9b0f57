package routes_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/tavtun/docsys/pkg/routes"
)

func ok(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func group() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: ok},
			{Method: "GET", Pattern: "/{id}", Handler: ok},
		},
		Children: []routes.Group{{
			Prefix: "/{id}/file",
			Routes: []routes.Route{
				{Method: "PUT", Pattern: "", Handler: ok},
				{Method: "DELETE", Pattern: "", Handler: ok},
			},
		}},
	}
}

func TestPatterns(t *testing.T) {
	want := []string{
		"POST /sessions",
		"GET /sessions/{id}",
		"PUT /sessions/{id}/file",
		"DELETE /sessions/{id}/file",
	}
	if got := group().Patterns(); !slices.Equal(got, want) {
		t.Errorf("Patterns() = %v, want %v", got, want)
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, group())

	tests := []struct {
		method, path string
		want         int
	}{
		{"POST", "/sessions", http.StatusOK},
		{"GET", "/sessions/abc", http.StatusOK},
		{"PUT", "/sessions/abc/file", http.StatusOK},
		{"DELETE", "/sessions/abc/file", http.StatusOK},
		{"PATCH", "/sessions/abc/file", http.StatusMethodNotAllowed},
		{"GET", "/documents", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
