package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/tavtun/docsys/internal/models"
	"github.com/tavtun/docsys/pkg/doccode"
	"github.com/tavtun/docsys/pkg/pagination"
	"github.com/tavtun/docsys/pkg/query"
	"github.com/tavtun/docsys/pkg/repository"
)

// QR image bounds in pixels.
const (
	DefaultQRSize = 256
	MinQRSize     = 64
	MaxQRSize     = 1024
)

type repo struct {
	db         *sql.DB
	sequences  Sequencer
	files      Files
	mapper     *Mapper
	company    string
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the document store. company is the code written when a
// create command carries none.
func New(
	db *sql.DB,
	sequences Sequencer,
	files Files,
	mapper *Mapper,
	company string,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		sequences:  sequences,
		files:      files,
		mapper:     mapper,
		company:    company,
		logger:     logger.With("system", "documents"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Content", "QRCode")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	category, err := r.mapper.Map(cmd.DocumentTypeCode)
	if err != nil {
		return nil, err
	}

	company := r.company
	if cmd.CompanyCode != nil && *cmd.CompanyCode != "" {
		company = *cmd.CompanyCode
	}
	sub := deref(cmd.SubDepartmentCode)

	// Allocated outside the insert transaction: a failed insert leaves a gap.
	seq, err := r.sequences.NextSequence(ctx, doccode.SequenceKey(
		cmd.ScopeCode, cmd.DepartmentCode, sub, cmd.DocumentTypeCode, cmd.LanguageCode,
	))
	if err != nil {
		return nil, fmt.Errorf("allocate sequence: %w", err)
	}

	code := doccode.Format(doccode.Parts{
		Company:       company,
		Scope:         cmd.ScopeCode,
		Department:    cmd.DepartmentCode,
		SubDepartment: sub,
		DocumentType:  cmd.DocumentTypeCode,
		Language:      cmd.LanguageCode,
		Sequence:      strconv.Itoa(seq),
	})

	changes, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode changes: %w", err)
	}

	q := `
		INSERT INTO documents(id, title, content, airport, company_code, scope_code,
			department_code, sub_department_code, document_type_code, language_code,
			sequence_number, version, tags, file_path, file_type, qr_code, type, status, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, $12::jsonb, NULL, NULL, $13, $14, $15, $16)
		RETURNING ` + returning

	args := []any{
		uuid.New(),
		cmd.Title,
		cmd.Content,
		cmd.Airport,
		company,
		cmd.ScopeCode,
		cmd.DepartmentCode,
		cmd.SubDepartmentCode,
		cmd.DocumentTypeCode,
		cmd.LanguageCode,
		seq,
		encodeTags(cmd.Tags),
		code,
		category,
		models.StatusDraft,
		cmd.AuthorID,
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		d, err := repository.QueryOne(ctx, tx, q, args, scanDocument)
		if err != nil {
			return d, err
		}
		return d, insertHistory(ctx, tx, d.ID, models.HistoryCreated, cmd.AuthorID, changes, d.Version)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document created", "id", d.ID, "code", d.QRCode)
	return &d, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Document, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	changes, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode changes: %w", err)
	}

	q := `
		UPDATE documents SET
			title = $2, content = $3, airport = $4, company_code = $5, scope_code = $6,
			department_code = $7, sub_department_code = $8, document_type_code = $9,
			language_code = $10, sequence_number = $11, version = $12, tags = $13::jsonb,
			file_path = $14, file_type = $15, updated_at = now()
		WHERE id = $1
		RETURNING ` + returning

	args := []any{
		id,
		cmd.Title,
		cmd.Content,
		cmd.Airport,
		cmd.CompanyCode,
		cmd.ScopeCode,
		cmd.DepartmentCode,
		cmd.SubDepartmentCode,
		cmd.DocumentTypeCode,
		cmd.LanguageCode,
		cmd.SequenceNumber,
		cmd.Version,
		encodeTags(cmd.Tags),
		cmd.FilePath,
		cmd.FileType,
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		d, err := repository.QueryOne(ctx, tx, q, args, scanDocument)
		if err != nil {
			return d, err
		}
		return d, insertHistory(ctx, tx, d.ID, models.HistoryUpdated, cmd.UserID, changes, d.Version)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document updated", "id", d.ID, "version", d.Version)
	return &d, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	err = repository.ExecExpectOne(ctx, r.db, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if doc.FilePath != nil && r.files != nil {
		r.files.Delete(ctx, *doc.FilePath)
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}

func (r *repo) History(ctx context.Context, id uuid.UUID) ([]models.DocumentHistory, error) {
	const q = `
		SELECT id, document_id, action, user_id, timestamp, changes, comment, version
		FROM document_history
		WHERE document_id = $1
		ORDER BY timestamp DESC, version DESC`

	entries, err := repository.QueryMany(ctx, r.db, q, []any{id}, scanHistory)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return entries, nil
}

func (r *repo) QRCode(ctx context.Context, id uuid.UUID, size int) ([]byte, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(doc.QRCode, qrcode.Medium, clampQRSize(size))
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	return png, nil
}

func insertHistory(
	ctx context.Context,
	tx *sql.Tx,
	documentID uuid.UUID,
	action models.HistoryAction,
	userID *uuid.UUID,
	changes []byte,
	version int,
) error {
	const q = `
		INSERT INTO document_history(id, document_id, action, user_id, changes, version)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6)`

	_, err := tx.ExecContext(ctx, q, uuid.New(), documentID, action, userID, string(changes), version)
	return err
}

func scanHistory(s repository.Scanner) (models.DocumentHistory, error) {
	var (
		h       models.DocumentHistory
		changes []byte
	)
	err := s.Scan(&h.ID, &h.DocumentID, &h.Action, &h.UserID, &h.Timestamp, &changes, &h.Comment, &h.Version)
	h.Changes = changes
	return h, err
}

func clampQRSize(size int) int {
	if size <= 0 {
		return DefaultQRSize
	}
	return min(max(size, MinQRSize), MaxQRSize)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
