package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tavtun/docsys/internal/codes"
	"github.com/tavtun/docsys/internal/documents"
	"github.com/tavtun/docsys/internal/models"
	"github.com/tavtun/docsys/internal/notify"
	"github.com/tavtun/docsys/internal/transfer"
	"github.com/tavtun/docsys/pkg/doccode"
)

// Notification texts shown to the editing user.
const (
	MissingFieldsTitle   = "Champs manquants"
	MissingFieldsMessage = "Veuillez remplir tous les champs obligatoires (Titre, Aéroport, Type de document, Département, Langue, Numéro de document)."
	InvalidSequenceTitle = "Numéro de document invalide"
	UnknownCodeTitle     = "Codes invalides"
	UnknownCodeMessage   = "Un ou plusieurs codes ne figurent pas dans la configuration des codes documentaires."
	UnmappedTypeTitle    = "Type de document inconnu"
	UpdatedTitle         = "Document mis à jour"
	UpdatedMessage       = "Le document a été mis à jour avec succès."
)

// State is the lifecycle position of a session.
type State string

const (
	StateClosed     State = "closed"
	StateLoaded     State = "loaded"
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
)

// Updater persists document edits.
type Updater interface {
	Update(ctx context.Context, id uuid.UUID, cmd documents.UpdateCommand) (*documents.Document, error)
}

// FileTransfer stores replacement files and removes superseded ones.
type FileTransfer interface {
	Upload(ctx context.Context, file transfer.File, c transfer.Constraints) (*transfer.Uploaded, error)
	Delete(ctx context.Context, path string) bool
}

// TypeMapper resolves a document type code to its storage category.
type TypeMapper interface {
	Map(code string) (models.DocumentCategory, error)
}

type deps struct {
	updater Updater
	files   FileTransfer
	mapper  TypeMapper
	sink    notify.Sink
	handles *Handles
	company string
	logger  *slog.Logger

	extensions []string
	maxSizeMB  int
}

// Session is one document edit. Its operations are serialised: a Cancel
// issued during Submit waits for Submit to finish.
type Session struct {
	ID uuid.UUID

	mu         sync.Mutex
	deps       *deps
	state      State
	form       FormState
	pending    *transfer.File
	preview    Preview
	doc        *documents.Document
	config     *codes.Config
	memo       doccode.Memo
	lastActive time.Time
}

func newSession(d *deps) *Session {
	return &Session{
		ID:         uuid.New(),
		deps:       d,
		state:      StateClosed,
		lastActive: time.Now(),
	}
}

// Load resets the session from doc and a configuration snapshot.
func (s *Session) Load(doc *documents.Document, cfg *codes.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseTransient()
	s.doc = doc
	s.config = cfg
	s.form = formFromDocument(doc, s.deps.company)
	s.pending = nil
	s.preview = nil
	if doc.FilePath != nil && *doc.FilePath != "" {
		s.preview = StoredPreview{Path: *doc.FilePath}
	}
	s.memo.Reset()
	s.state = StateLoaded
	s.touch()
}

// Apply edits form fields.
func (s *Session) Apply(p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return ErrSessionClosed
	}
	s.form.apply(p)
	s.state = StateEditing
	s.touch()
	return nil
}

// SelectFile stages f as the replacement file. Images and PDFs get a
// transient preview; other kinds clear the preview.
func (s *Session) SelectFile(f transfer.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return ErrSessionClosed
	}

	s.releaseTransient()
	s.pending = &f
	s.preview = nil
	if previewable(f.ContentType) {
		s.preview = TransientPreview{Handle: s.deps.handles.Create(f)}
	}
	s.state = StateEditing
	s.touch()
	return nil
}

// ClearFile drops the staged file and the preview.
func (s *Session) ClearFile() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return ErrSessionClosed
	}

	s.releaseTransient()
	s.pending = nil
	s.preview = nil
	s.state = StateEditing
	s.touch()
	return nil
}

// CodePreview renders the document code for the current form. Reads count
// as activity for the idle sweep.
func (s *Session) CodePreview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.memo.Get(s.form.Parts())
}

// Submit validates the form, replaces the stored file when one is staged,
// and persists the edit. On success the session closes; on failure it
// returns to Editing with the form intact.
func (s *Session) Submit(ctx context.Context) (*documents.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return nil, ErrSessionClosed
	}
	if s.doc == nil {
		return nil, ErrNoDocument
	}

	s.state = StateSubmitting
	s.touch()

	updated, outcome, err := s.submit(ctx)
	submitTotal.WithLabelValues(outcome).Inc()
	if err != nil {
		s.state = StateEditing
		return nil, err
	}

	s.releaseTransient()
	s.pending = nil
	s.doc = updated
	s.state = StateClosed
	s.deps.sink.Notify(notify.KindSuccess, UpdatedTitle, UpdatedMessage)
	return updated, nil
}

func (s *Session) submit(ctx context.Context) (*documents.Document, string, error) {
	log := s.deps.logger.With("session", s.ID, "document", s.doc.ID)

	if err := s.form.Validate(); err != nil {
		s.deps.sink.Notify(notify.KindError, MissingFieldsTitle, MissingFieldsMessage)
		return nil, outcomeValidationFailed, fmt.Errorf("%w: %v", ErrMissingFields, err)
	}
	seq, err := s.form.Sequence()
	if err != nil {
		s.deps.sink.Notify(notify.KindError, InvalidSequenceTitle, ErrInvalidSequence.Error())
		return nil, outcomeValidationFailed, fmt.Errorf("%w: %q", ErrInvalidSequence, s.form.SequenceNumber)
	}
	if err := s.form.CheckCodes(s.config); err != nil {
		s.deps.sink.Notify(notify.KindError, UnknownCodeTitle, UnknownCodeMessage)
		return nil, outcomeValidationFailed, fmt.Errorf("%w: %v", ErrUnknownCode, err)
	}

	filePath := s.doc.FilePath
	fileType := s.doc.FileType
	version := s.doc.Version

	if s.pending != nil {
		category, err := s.deps.mapper.Map(*s.form.DocumentTypeCode)
		if err != nil {
			s.deps.sink.Notify(notify.KindError, UnmappedTypeTitle, err.Error())
			return nil, outcomeUploadFailed, err
		}

		up, err := s.deps.files.Upload(ctx, *s.pending, transfer.Constraints{
			DocumentType:      category,
			ScopeCode:         *s.form.Airport,
			DepartmentCode:    *s.form.DepartmentCode,
			DocumentTypeCode:  *s.form.DocumentTypeCode,
			AllowedExtensions: s.deps.extensions,
			MaxSizeMB:         s.deps.maxSizeMB,
		})
		if err != nil {
			return nil, outcomeUploadFailed, fmt.Errorf("upload replacement file: %w", err)
		}

		if old := s.doc.FilePath; old != nil && *old != "" {
			if !s.deps.files.Delete(ctx, *old) {
				oldFileDeleteFailures.Inc()
				log.Warn(fmt.Sprintf("Failed to delete old file: %s. Proceeding with document update.", *old))
			}
		}

		contentType := s.pending.ContentType
		if contentType == "" {
			contentType = up.ContentType
		}
		filePath = &up.Path
		fileType = &contentType
		version = s.doc.Version + 1
	}

	cmd := s.updateCommand(seq, version, filePath, fileType)

	updated, err := s.deps.updater.Update(ctx, s.doc.ID, cmd)
	if err != nil {
		log.Error("document update failed", "error", err)
		return nil, outcomeUpdateFailed, fmt.Errorf("update document: %w", err)
	}

	log.Info("document submitted", "version", updated.Version)
	return updated, outcomeSuccess, nil
}

// updateCommand assembles the persisted payload from the form. Callers
// have validated that the required optionals are set.
func (s *Session) updateCommand(seq, version int, filePath, fileType *string) documents.UpdateCommand {
	airport := *s.form.Airport
	scope := airport
	if s.config != nil {
		if comp, ok := s.config.Scope(airport); ok {
			scope = comp.Code
		}
	}

	var company *string
	if s.form.CompanyCode != "" {
		company = &s.form.CompanyCode
	}

	return documents.UpdateCommand{
		Title:             s.form.Title,
		Content:           s.form.Content,
		Airport:           &airport,
		CompanyCode:       company,
		ScopeCode:         &scope,
		DepartmentCode:    s.form.DepartmentCode,
		SubDepartmentCode: nonEmpty(s.form.SubDepartmentCode),
		DocumentTypeCode:  s.form.DocumentTypeCode,
		LanguageCode:      s.form.LanguageCode,
		SequenceNumber:    seq,
		Version:           version,
		Tags:              s.form.Tags,
		FilePath:          filePath,
		FileType:          fileType,
	}
}

// Cancel closes the session, releasing any transient preview.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseTransient()
	s.pending = nil
	s.preview = nil
	s.state = StateClosed
}

// View is a snapshot of the session for clients.
type View struct {
	ID          uuid.UUID    `json:"id"`
	DocumentID  uuid.UUID    `json:"document_id"`
	State       State        `json:"state"`
	Form        FormState    `json:"form"`
	Code        string       `json:"code"`
	Preview     *PreviewView `json:"preview,omitempty"`
	PendingFile *PendingFile `json:"pending_file,omitempty"`
}

// PendingFile describes the staged replacement file.
type PendingFile struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	v := View{
		ID:      s.ID,
		State:   s.state,
		Form:    s.form,
		Code:    s.memo.Get(s.form.Parts()),
		Preview: viewPreview(s.preview),
	}
	if s.doc != nil {
		v.DocumentID = s.doc.ID
	}
	if s.pending != nil {
		v.PendingFile = &PendingFile{
			Name:        s.pending.Name,
			ContentType: s.pending.ContentType,
			Size:        len(s.pending.Data),
		}
	}
	return v
}

// State returns the current lifecycle position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Preview returns the current preview, nil when none.
func (s *Session) Preview() Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.preview
}

func (s *Session) idleSince(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive.Before(t)
}

func (s *Session) releaseTransient() {
	if p, ok := s.preview.(TransientPreview); ok {
		s.deps.handles.Release(p.Handle)
		s.preview = nil
	}
}

func (s *Session) touch() {
	s.lastActive = time.Now()
}

