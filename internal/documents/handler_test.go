package documents_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tavtun/docsys/internal/documents"
	"github.com/tavtun/docsys/internal/models"
	"github.com/tavtun/docsys/pkg/pagination"
)

type mockSystem struct {
	listFn    func(ctx context.Context, page pagination.PageRequest, filters documents.Filters) (*pagination.PageResult[documents.Document], error)
	findFn    func(ctx context.Context, id uuid.UUID) (*documents.Document, error)
	createFn  func(ctx context.Context, cmd documents.CreateCommand) (*documents.Document, error)
	updateFn  func(ctx context.Context, id uuid.UUID, cmd documents.UpdateCommand) (*documents.Document, error)
	deleteFn  func(ctx context.Context, id uuid.UUID) error
	historyFn func(ctx context.Context, id uuid.UUID) ([]models.DocumentHistory, error)
	qrFn      func(ctx context.Context, id uuid.UUID, size int) ([]byte, error)
}

func (m *mockSystem) Handler() *documents.Handler { return newTestHandler(m) }

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters documents.Filters) (*pagination.PageResult[documents.Document], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Create(ctx context.Context, cmd documents.CreateCommand) (*documents.Document, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) Update(ctx context.Context, id uuid.UUID, cmd documents.UpdateCommand) (*documents.Document, error) {
	return m.updateFn(ctx, id, cmd)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockSystem) History(ctx context.Context, id uuid.UUID) ([]models.DocumentHistory, error) {
	return m.historyFn(ctx, id)
}

func (m *mockSystem) QRCode(ctx context.Context, id uuid.UUID, size int) ([]byte, error) {
	return m.qrFn(ctx, id, size)
}

func newTestHandler(sys *mockSystem) *documents.Handler {
	return documents.NewHandler(sys, discard(), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
}

func setupMux(h *documents.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

var docID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

func sampleDoc() documents.Document {
	return documents.Document{
		ID:               docID,
		Title:            "Manuel qualité",
		Airport:          ptr("ENFIDHA"),
		CompanyCode:      ptr("TAVTUN"),
		ScopeCode:        ptr("NBE"),
		DepartmentCode:   ptr("QLT"),
		DocumentTypeCode: ptr("MQ"),
		LanguageCode:     ptr("FR"),
		SequenceNumber:   ptr(1),
		Version:          2,
		Tags:             []string{"iso"},
		FilePath:         ptr("QUALITE_DOC/NBE/QLT/MQ/old.pdf"),
		QRCode:           "TAVTUN-NBE-QLT-MQ-001-FR",
		Type:             models.CategoryQualite,
		Status:           models.StatusActive,
		CreatedAt:        time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		UpdatedAt:        time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestHandlerList(t *testing.T) {
	var captured documents.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, f documents.Filters) (*pagination.PageResult[documents.Document], error) {
			captured = f
			result := pagination.NewPageResult([]documents.Document{sampleDoc()}, 1, 1, 20)
			return &result, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/documents?airport=ENFIDHA&tag=iso", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result pagination.PageResult[documents.Document]
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Total != 1 || result.Data[0].QRCode != "TAVTUN-NBE-QLT-MQ-001-FR" {
		t.Errorf("result = %+v", result)
	}
	if captured.Airport == nil || *captured.Airport != "ENFIDHA" {
		t.Errorf("airport filter = %v", captured.Airport)
	}
	if len(captured.Tags) != 1 || captured.Tags[0] != "iso" {
		t.Errorf("tags filter = %v", captured.Tags)
	}
}

func TestHandlerSearch(t *testing.T) {
	var captured documents.SearchRequest
	sys := &mockSystem{
		listFn: func(_ context.Context, p pagination.PageRequest, f documents.Filters) (*pagination.PageResult[documents.Document], error) {
			captured = documents.SearchRequest{PageRequest: p, Filters: f}
			result := pagination.NewPageResult([]documents.Document{}, 0, p.Page, p.PageSize)
			return &result, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	body := `{"page":2,"page_size":500,"status":"DRAFT","sort":"-updated_at"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/documents/search", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if captured.Page != 2 || captured.PageSize != 100 {
		t.Errorf("page = %d size = %d, want 2 and clamped 100", captured.Page, captured.PageSize)
	}
	if captured.Status == nil || *captured.Status != "DRAFT" {
		t.Errorf("status filter = %v", captured.Status)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/documents/search", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rec.Code)
	}
}

func TestHandlerFind(t *testing.T) {
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*documents.Document, error) {
			if id != docID {
				return nil, documents.ErrNotFound
			}
			d := sampleDoc()
			return &d, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"found", "/documents/" + docID.String(), http.StatusOK},
		{"not found", "/documents/" + uuid.NewString(), http.StatusNotFound},
		{"invalid id", "/documents/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandlerCreate(t *testing.T) {
	var captured documents.CreateCommand
	sys := &mockSystem{
		createFn: func(_ context.Context, cmd documents.CreateCommand) (*documents.Document, error) {
			captured = cmd
			if cmd.DocumentTypeCode == "ZZ" {
				return nil, documents.ErrUnmappedType
			}
			d := sampleDoc()
			return &d, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	body := `{"title":"Manuel","scope_code":"NBE","department_code":"QLT","document_type_code":"MQ","language_code":"FR","tags":["iso"]}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/documents", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}
	if captured.ScopeCode != "NBE" || captured.DocumentTypeCode != "MQ" {
		t.Errorf("command = %+v", captured)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/documents", strings.NewReader(`{"title":"X","document_type_code":"ZZ"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unmapped type status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/documents", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", rec.Code)
	}
}

func TestHandlerUpdate(t *testing.T) {
	var captured documents.UpdateCommand
	sys := &mockSystem{
		updateFn: func(_ context.Context, id uuid.UUID, cmd documents.UpdateCommand) (*documents.Document, error) {
			if id != docID {
				return nil, documents.ErrNotFound
			}
			captured = cmd
			d := sampleDoc()
			d.Version = cmd.Version
			d.FilePath = cmd.FilePath
			return &d, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	body := `{"title":"Manuel qualité","sequence_number":1,"version":3,"file_path":"new.pdf","sub_department_code":null}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("PUT", "/documents/"+docID.String(), strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if captured.Version != 3 || captured.FilePath == nil || *captured.FilePath != "new.pdf" {
		t.Errorf("command = %+v", captured)
	}
	if captured.SubDepartmentCode != nil {
		t.Errorf("sub department = %v, want nil", captured.SubDepartmentCode)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("PUT", "/documents/"+uuid.NewString(), strings.NewReader(body)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing document status = %d, want 404", rec.Code)
	}
}

func TestHandlerDelete(t *testing.T) {
	sys := &mockSystem{
		deleteFn: func(_ context.Context, id uuid.UUID) error {
			if id != docID {
				return documents.ErrNotFound
			}
			return nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("DELETE", "/documents/"+docID.String(), nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("DELETE", "/documents/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerHistory(t *testing.T) {
	sys := &mockSystem{
		historyFn: func(_ context.Context, id uuid.UUID) ([]models.DocumentHistory, error) {
			return []models.DocumentHistory{
				{ID: uuid.New(), DocumentID: id, Action: models.HistoryUpdated, Version: 3},
				{ID: uuid.New(), DocumentID: id, Action: models.HistoryCreated, Version: 0},
			}, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/documents/"+docID.String()+"/history", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var entries []models.DocumentHistory
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 || entries[0].Action != models.HistoryUpdated {
		t.Errorf("entries = %+v", entries)
	}
}

func TestHandlerQRCode(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n")
	var gotSize int
	sys := &mockSystem{
		qrFn: func(_ context.Context, _ uuid.UUID, size int) ([]byte, error) {
			gotSize = size
			return png, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/documents/"+docID.String()+"/qrcode?size=512", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), png) {
		t.Error("body differs from rendered png")
	}
	if gotSize != 512 {
		t.Errorf("size = %d, want 512", gotSize)
	}
}
