package editor_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/tavtun/docsys/internal/codes"
	"github.com/tavtun/docsys/internal/documents"
	"github.com/tavtun/docsys/internal/editor"
	"github.com/tavtun/docsys/internal/notify"
	"github.com/tavtun/docsys/internal/transfer"
)

func ptr[T any](v T) *T { return &v }

type fakeStore struct {
	mu       sync.Mutex
	docs     map[uuid.UUID]documents.Document
	updates  []documents.UpdateCommand
	updateFn func(ctx context.Context, id uuid.UUID, cmd documents.UpdateCommand) (*documents.Document, error)
}

func newFakeStore(docs ...documents.Document) *fakeStore {
	s := &fakeStore{docs: map[uuid.UUID]documents.Document{}}
	for _, d := range docs {
		s.docs[d.ID] = d
	}
	return s
}

func (s *fakeStore) Find(_ context.Context, id uuid.UUID) (*documents.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, documents.ErrNotFound
	}
	return &d, nil
}

func (s *fakeStore) Update(ctx context.Context, id uuid.UUID, cmd documents.UpdateCommand) (*documents.Document, error) {
	s.mu.Lock()
	s.updates = append(s.updates, cmd)
	fn := s.updateFn
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, id, cmd)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.docs[id]
	d.Title = cmd.Title
	d.Version = cmd.Version
	d.FilePath = cmd.FilePath
	d.FileType = cmd.FileType
	s.docs[id] = d
	return &d, nil
}

func (s *fakeStore) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

func (s *fakeStore) lastUpdate(t *testing.T) documents.UpdateCommand {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.updates) == 0 {
		t.Fatal("no update recorded")
	}
	return s.updates[len(s.updates)-1]
}

type fakeConfigs struct {
	cfg *codes.Config
}

func (c fakeConfigs) Config(context.Context) (*codes.Config, error) {
	return c.cfg, nil
}

type fakeFiles struct {
	mu        sync.Mutex
	uploads   []transfer.Constraints
	deletes   []string
	uploadErr error
	deleteOK  bool
	path      string
}

func (f *fakeFiles) Upload(_ context.Context, file transfer.File, c transfer.Constraints) (*transfer.Uploaded, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, c)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	path := f.path
	if path == "" {
		path = string(c.DocumentType) + "/" + file.Name
	}
	return &transfer.Uploaded{Path: path, ContentType: file.ContentType, Size: int64(len(file.Data))}, nil
}

func (f *fakeFiles) Delete(_ context.Context, path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, path)
	return f.deleteOK
}

func (f *fakeFiles) counts() (uploads, deletes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads), len(f.deletes)
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

func (r *recorder) last() notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return notify.Notification{}
	}
	return r.notes[len(r.notes)-1]
}

var errStorageDown = errors.New("storage unavailable")

func testConfig() *codes.Config {
	return &codes.Config{
		DocumentTypes: []codes.Component{{Code: "PR", Label: "Procédure"}, {Code: "FO", Label: "Formulaire"}},
		Departments:   []codes.Component{{Code: "QLT", Label: "Qualité"}, {Code: "OPS", Label: "Opérations"}},
		Languages:     []codes.Component{{Code: "FR", Label: "Français"}},
		Scopes:        []codes.Component{{Code: "ENFIDHA", Label: "Enfidha-Hammamet"}},
	}
}

func loadedDoc() documents.Document {
	return documents.Document{
		ID:               uuid.MustParse("00000000-0000-0000-0000-0000000000d1"),
		Title:            "Procédure de dégivrage",
		Content:          "Contenu",
		Airport:          ptr("ENFIDHA"),
		DepartmentCode:   ptr("QLT"),
		DocumentTypeCode: ptr("PR"),
		LanguageCode:     ptr("FR"),
		SequenceNumber:   ptr(7),
		Version:          2,
		Tags:             []string{"hiver"},
		FilePath:         ptr("old.pdf"),
		FileType:         ptr("application/pdf"),
	}
}

type fixture struct {
	store  *fakeStore
	files  *fakeFiles
	sink   *recorder
	mgr    *editor.Manager
	logs   *bytes.Buffer
	doc    documents.Document
	config *codes.Config
}

func newFixture(t *testing.T, docs ...documents.Document) *fixture {
	t.Helper()
	if len(docs) == 0 {
		docs = []documents.Document{loadedDoc()}
	}

	mapper, err := documents.NewMapper(nil)
	if err != nil {
		t.Fatal(err)
	}

	f := &fixture{
		store:  newFakeStore(docs...),
		files:  &fakeFiles{deleteOK: true},
		sink:   &recorder{},
		logs:   &bytes.Buffer{},
		doc:    docs[0],
		config: testConfig(),
	}
	logger := slog.New(slog.NewTextHandler(f.logs, nil))
	f.mgr = editor.NewManager(f.store, fakeConfigs{cfg: f.config}, f.files, mapper, f.sink, "", logger)
	return f
}

func (f *fixture) open(t *testing.T) *editor.Session {
	t.Helper()
	s, err := f.mgr.Open(context.Background(), f.doc.ID, "")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func pdf(name string) transfer.File {
	return transfer.File{Name: name, ContentType: "application/pdf", Data: []byte("%PDF-1.7")}
}
