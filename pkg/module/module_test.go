package module_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tavtun/docsys/pkg/module"
)

func echoPath() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, r.URL.Path)
	})
}

func TestNewRejectsInvalidPrefix(t *testing.T) {
	for _, prefix := range []string{"", "api", "/api/v1"} {
		t.Run(prefix, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%q) did not panic", prefix)
				}
			}()
			module.New(prefix, echoPath())
		})
	}
}

func TestRouterDispatch(t *testing.T) {
	router := module.NewRouter()

	api := module.New("/api", echoPath())
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Module", "api")
			next.ServeHTTP(w, r)
		})
	})
	router.Mount(api)
	router.HandleNative("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	}))

	tests := []struct {
		name       string
		path       string
		wantBody   string
		wantModule string
	}{
		{"prefix stripped", "/api/sessions/42", "/sessions/42", "api"},
		{"module root", "/api", "/", "api"},
		{"trailing slash", "/api/documents/", "/documents", "api"},
		{"native fallback", "/healthz", "ok", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if body := rec.Body.String(); body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if got := rec.Header().Get("X-Module"); got != tt.wantModule {
				t.Errorf("X-Module = %q, want %q", got, tt.wantModule)
			}
		})
	}
}
