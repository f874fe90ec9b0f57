package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tavtun/docsys/pkg/handlers"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.RespondJSON(rec, http.StatusCreated, map[string]int{"version": 3})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}

	var body map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["version"] != 3 {
		t.Errorf("version = %d, want 3", body["version"])
	}
}

func TestRespondError(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError} {
		rec := httptest.NewRecorder()
		handlers.RespondError(rec, discard(), status, errors.New("upload failed"))

		if rec.Code != status {
			t.Errorf("status = %d, want %d", rec.Code, status)
		}

		var body map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["error"] != "upload failed" {
			t.Errorf("error = %q, want upload failed", body["error"])
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"valid", `{"title":"Manuel qualité"}`, nil},
		{"empty", ``, handlers.ErrEmptyBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var v struct {
				Title string `json:"title"`
			}
			err := handlers.DecodeJSON(req, &v)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && v.Title != "Manuel qualité" {
				t.Errorf("title = %q", v.Title)
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{bad"))
	var v map[string]any
	if err := handlers.DecodeJSON(req, &v); err == nil {
		t.Error("expected error for malformed body")
	}
}
