package transfer_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/tavtun/docsys/internal/models"
	"github.com/tavtun/docsys/internal/notify"
	"github.com/tavtun/docsys/internal/transfer"
	"github.com/tavtun/docsys/pkg/lifecycle"
	"github.com/tavtun/docsys/pkg/routes"
	"github.com/tavtun/docsys/pkg/storage"
)

type memStore struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	types     map[string]string
	uploadErr error
	uploads   int
}

func newMemStore() *memStore {
	return &memStore{blobs: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Start(*lifecycle.Coordinator) error { return nil }

func (m *memStore) Upload(_ context.Context, key string, r io.Reader, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads++
	if m.uploadErr != nil {
		return m.uploadErr
	}
	data, _ := io.ReadAll(r)
	m.blobs[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memStore) Download(_ context.Context, key string) (*storage.Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Stream{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentType:   m.types[key],
		ContentLength: int64(len(data)),
	}, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.blobs, key)
	return nil
}

func (m *memStore) Find(_ context.Context, key string) (*storage.Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Blob{Key: key, ContentType: m.types[key], ContentLength: int64(len(data))}, nil
}

func (m *memStore) List(_ context.Context, prefix, _ string, _ int32) (*storage.BlobList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := &storage.BlobList{Blobs: []storage.Blob{}}
	for key, data := range m.blobs {
		if strings.HasPrefix(key, prefix) {
			list.Blobs = append(list.Blobs, storage.Blob{Key: key, ContentLength: int64(len(data))})
		}
	}
	return list, nil
}

type recorder struct {
	mu    sync.Mutex
	notes []notify.Notification
}

func (r *recorder) Notify(kind notify.Kind, title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, notify.Notification{Kind: kind, Title: title, Message: message})
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func constraints() transfer.Constraints {
	return transfer.Constraints{
		DocumentType:      models.CategoryQualite,
		ScopeCode:         "ENFIDHA",
		DepartmentCode:    "QLT",
		DocumentTypeCode:  "PR",
		AllowedExtensions: transfer.DefaultAllowedExtensions,
		MaxSizeMB:         transfer.DefaultMaxSizeMB,
	}
}

func TestUpload(t *testing.T) {
	store := newMemStore()
	sink := &recorder{}
	sys := transfer.New(store, sink, discard(), 100)

	file := transfer.File{
		Name:        "Procédure Contrôle.DOCX",
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Data:        []byte("word content"),
	}

	up, err := sys.Upload(context.Background(), file, constraints())
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if !strings.HasPrefix(up.Path, "QUALITE_DOC/ENFIDHA/QLT/PR/") {
		t.Errorf("path = %q, want category/scope/department/type prefix", up.Path)
	}
	if !strings.HasSuffix(up.Path, "-Proc%C3%A9dure%20Contr%C3%B4le.DOCX") {
		t.Errorf("path = %q, want escaped file name suffix", up.Path)
	}
	if up.Size != int64(len(file.Data)) || up.ContentType != file.ContentType {
		t.Errorf("uploaded = %+v", up)
	}
	if up.PageCount != nil {
		t.Errorf("page count = %v, want nil for non-PDF", *up.PageCount)
	}
	if _, ok := store.blobs[up.Path]; !ok {
		t.Error("blob not stored under returned path")
	}
	if len(sink.notes) != 0 {
		t.Errorf("unexpected notifications: %+v", sink.notes)
	}
}

func TestUploadRejections(t *testing.T) {
	tests := []struct {
		name    string
		file    transfer.File
		mutate  func(*transfer.Constraints)
		wantErr error
	}{
		{
			name:    "extension not allowed",
			file:    transfer.File{Name: "macro.exe", Data: []byte("MZ")},
			wantErr: transfer.ErrExtensionNotAllowed,
		},
		{
			name:    "no extension",
			file:    transfer.File{Name: "README", Data: []byte("x")},
			wantErr: transfer.ErrExtensionNotAllowed,
		},
		{
			name:    "too large",
			file:    transfer.File{Name: "big.pdf", Data: make([]byte, 2<<20+1)},
			mutate:  func(c *transfer.Constraints) { c.MaxSizeMB = 2 },
			wantErr: transfer.ErrFileTooLarge,
		},
		{
			name:    "empty",
			file:    transfer.File{Name: "empty.pdf"},
			wantErr: transfer.ErrEmptyFile,
		},
		{
			name:    "missing department",
			file:    transfer.File{Name: "a.pdf", Data: []byte("x")},
			mutate:  func(c *transfer.Constraints) { c.DepartmentCode = "" },
			wantErr: transfer.ErrInvalidConstraints,
		},
		{
			name:    "unknown category",
			file:    transfer.File{Name: "a.pdf", Data: []byte("x")},
			mutate:  func(c *transfer.Constraints) { c.DocumentType = "CORRESPONDANCE" },
			wantErr: transfer.ErrInvalidConstraints,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			sink := &recorder{}
			sys := transfer.New(store, sink, discard(), 100)

			c := constraints()
			if tt.mutate != nil {
				tt.mutate(&c)
			}

			_, err := sys.Upload(context.Background(), tt.file, c)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if store.uploads != 0 {
				t.Error("storage called for rejected file")
			}
			if len(sink.notes) != 1 || sink.notes[0].Kind != notify.KindError || sink.notes[0].Title != transfer.UploadErrorTitle {
				t.Errorf("notifications = %+v, want one upload error", sink.notes)
			}
		})
	}
}

func TestUploadStorageFailureNotifies(t *testing.T) {
	store := newMemStore()
	store.uploadErr = errors.New("container unavailable")
	sink := &recorder{}
	sys := transfer.New(store, sink, discard(), 100)

	_, err := sys.Upload(context.Background(), transfer.File{Name: "a.pdf", Data: []byte("%PDF")}, constraints())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(sink.notes) != 1 || !strings.Contains(sink.notes[0].Message, "a.pdf") {
		t.Errorf("notifications = %+v", sink.notes)
	}
}

func TestUploadExtensionCaseInsensitive(t *testing.T) {
	c := constraints()
	for _, name := range []string{"a.PDF", "b.Docx", "c.xlsx"} {
		if !c.Allows(name) {
			t.Errorf("Allows(%q) = false", name)
		}
	}
	if c.Allows("archive.zip") {
		t.Error("Allows(archive.zip) = true")
	}
}

func TestDelete(t *testing.T) {
	store := newMemStore()
	store.blobs["QUALITE_DOC/x/old.pdf"] = []byte("old")
	sys := transfer.New(store, &recorder{}, discard(), 100)

	if !sys.Delete(context.Background(), "QUALITE_DOC/x/old.pdf") {
		t.Error("Delete(existing) = false")
	}
	if sys.Delete(context.Background(), "QUALITE_DOC/x/old.pdf") {
		t.Error("Delete(missing) = true")
	}
}

func TestBuildKeySanitizesName(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	tests := []struct {
		name string
		want string
	}{
		{"../../etc/passwd", "QUALITE_DOC/ENFIDHA/QLT/PR/11111111-2222-3333-4444-555555555555-passwd"},
		{`C:\Users\me\plan.pdf`, "QUALITE_DOC/ENFIDHA/QLT/PR/11111111-2222-3333-4444-555555555555-plan.pdf"},
		{"..", "QUALITE_DOC/ENFIDHA/QLT/PR/11111111-2222-3333-4444-555555555555-document"},
	}

	for _, tt := range tests {
		if got := transfer.BuildKey(constraints(), id, tt.name); got != tt.want {
			t.Errorf("BuildKey(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func setupMux(sys transfer.System) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler(50<<20).Routes())
	return mux
}

func TestHandlerUploadAndDownload(t *testing.T) {
	store := newMemStore()
	sys := transfer.New(store, &recorder{}, discard(), 100)
	mux := setupMux(sys)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range map[string]string{
		"category":           "FORMULAIRE_DOC",
		"scope_code":         "MONASTIR",
		"department_code":    "OPS",
		"document_type_code": "FO",
	} {
		mw.WriteField(k, v)
	}
	fw, _ := mw.CreateFormFile("file", "checklist.xlsx")
	fw.Write([]byte("spreadsheet"))
	mw.Close()

	req := httptest.NewRequest("POST", "/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d: %s", rec.Code, rec.Body)
	}

	var key string
	for k := range store.blobs {
		key = k
	}
	if !strings.HasPrefix(key, "FORMULAIRE_DOC/MONASTIR/OPS/FO/") {
		t.Fatalf("stored key = %q", key)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/files/download/"+key, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d", rec.Code)
	}
	if rec.Body.String() != "spreadsheet" {
		t.Errorf("body = %q", rec.Body)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "checklist.xlsx") {
		t.Errorf("content disposition = %q", cd)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/files/"+key, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("find status = %d", rec.Code)
	}
}

func TestHandlerRejectsDisallowedUpload(t *testing.T) {
	sys := transfer.New(newMemStore(), &recorder{}, discard(), 100)
	mux := setupMux(sys)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("category", "QUALITE_DOC")
	mw.WriteField("scope_code", "ENFIDHA")
	mw.WriteField("department_code", "QLT")
	mw.WriteField("document_type_code", "PR")
	fw, _ := mw.CreateFormFile("file", "script.sh")
	fw.Write([]byte("#!/bin/sh"))
	mw.Close()

	req := httptest.NewRequest("POST", "/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
}

func TestHandlerUploadFormErrors(t *testing.T) {
	sys := transfer.New(newMemStore(), &recorder{}, discard(), 100)
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler(1<<10).Routes())

	oversized := func() ([]byte, string) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, _ := mw.CreateFormFile("file", "manual.pdf")
		fw.Write(bytes.Repeat([]byte("x"), 2<<20))
		mw.Close()
		return body.Bytes(), mw.FormDataContentType()
	}

	tests := []struct {
		name string
		body func() ([]byte, string)
		want int
	}{
		{"json body", func() ([]byte, string) { return []byte(`{"file":"x"}`), "application/json" }, http.StatusBadRequest},
		{"missing boundary", func() ([]byte, string) { return []byte("--x--"), "multipart/form-data" }, http.StatusBadRequest},
		{"no content type", func() ([]byte, string) { return []byte("data"), "" }, http.StatusBadRequest},
		{"oversized body", oversized, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, ct := tt.body()
			req := httptest.NewRequest("POST", "/files", bytes.NewReader(data))
			if ct != "" {
				req.Header.Set("Content-Type", ct)
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestParseUploadForm(t *testing.T) {
	t.Run("body over limit", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, _ := mw.CreateFormFile("file", "big.pdf")
		fw.Write(bytes.Repeat([]byte("x"), 2<<20))
		mw.Close()

		req := httptest.NewRequest("POST", "/", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		err := transfer.ParseUploadForm(httptest.NewRecorder(), req, 1<<10)
		if !errors.Is(err, transfer.ErrFileTooLarge) {
			t.Errorf("err = %v, want ErrFileTooLarge", err)
		}
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		err := transfer.ParseUploadForm(httptest.NewRecorder(), req, 1<<10)
		if !errors.Is(err, transfer.ErrMalformedForm) {
			t.Errorf("err = %v, want ErrMalformedForm", err)
		}
		if got := transfer.MapHTTPStatus(err); got != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", got)
		}
	})

	t.Run("within limit", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, _ := mw.CreateFormFile("file", "small.pdf")
		fw.Write([]byte("%PDF-1.7"))
		mw.Close()

		req := httptest.NewRequest("POST", "/", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		if err := transfer.ParseUploadForm(httptest.NewRecorder(), req, 1<<10); err != nil {
			t.Fatalf("ParseUploadForm() error = %v", err)
		}
		file, err := transfer.ReadFormFile(req, "file")
		if err != nil || string(file.Data) != "%PDF-1.7" {
			t.Errorf("file = %+v, err = %v", file, err)
		}
	})
}

func TestHandlerListAndMissing(t *testing.T) {
	store := newMemStore()
	store.blobs["GENERAL/a.pdf"] = []byte("a")
	store.blobs["QUALITE_DOC/b.pdf"] = []byte("b")
	mux := setupMux(transfer.New(store, &recorder{}, discard(), 100))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/files?prefix=GENERAL/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "GENERAL/a.pdf") || strings.Contains(rec.Body.String(), "b.pdf") {
		t.Errorf("list = %d %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/files?max_results=-1", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad max_results status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/files/download/missing.pdf", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing download status = %d, want 404", rec.Code)
	}
}
