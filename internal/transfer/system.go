package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tavtun/docsys/internal/notify"
	"github.com/tavtun/docsys/pkg/formatting"
	"github.com/tavtun/docsys/pkg/storage"
)

// UploadErrorTitle heads the notification sent when an upload fails.
const UploadErrorTitle = "Erreur de téléversement"

var uploadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "docsys_upload_duration_seconds",
	Help:    "Duration of document file uploads.",
	Buckets: prometheus.DefBuckets,
}, []string{"outcome"})

// System stores and retrieves document files.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Upload stores file under constraints. Failures are reported to the
	// notification sink before being returned.
	Upload(ctx context.Context, file File, c Constraints) (*Uploaded, error)
	// Delete removes the file at path and reports whether it succeeded.
	Delete(ctx context.Context, path string) bool
	Download(ctx context.Context, path string) (*storage.Stream, error)
	Find(ctx context.Context, path string) (*storage.Blob, error)
	List(ctx context.Context, prefix, marker string, maxResults int32) (*storage.BlobList, error)
}

type service struct {
	store       storage.System
	sink        notify.Sink
	logger      *slog.Logger
	maxListSize int32
}

func New(store storage.System, sink notify.Sink, logger *slog.Logger, maxListSize int32) System {
	return &service{
		store:       store,
		sink:        sink,
		logger:      logger.With("system", "transfer"),
		maxListSize: maxListSize,
	}
}

func (s *service) Handler(maxUploadSize int64) *Handler {
	return NewHandler(s, s.logger, s.maxListSize, maxUploadSize)
}

func (s *service) Upload(ctx context.Context, file File, c Constraints) (*Uploaded, error) {
	start := time.Now()

	up, err := s.upload(ctx, file, c)
	if err != nil {
		uploadDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		s.sink.Notify(notify.KindError, UploadErrorTitle, uploadMessage(file, c, err))
		return nil, err
	}

	uploadDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
	s.logger.Info("file uploaded", "path", up.Path, "size", up.Size)
	return up, nil
}

func (s *service) upload(ctx context.Context, file File, c Constraints) (*Uploaded, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConstraints, err)
	}
	if len(file.Data) == 0 {
		return nil, ErrEmptyFile
	}
	if !c.Allows(file.Name) {
		return nil, fmt.Errorf("%w: %s", ErrExtensionNotAllowed, filepath.Ext(file.Name))
	}
	if int64(len(file.Data)) > c.MaxBytes() {
		return nil, fmt.Errorf("%w: %s > %d MB",
			ErrFileTooLarge, formatting.FormatBytes(int64(len(file.Data)), 1), c.MaxSizeMB)
	}

	contentType := detectContentType(file.ContentType, file.Data)
	key := BuildKey(c, uuid.New(), file.Name)

	if err := s.store.Upload(ctx, key, bytes.NewReader(file.Data), contentType); err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	return &Uploaded{
		Path:        key,
		ContentType: contentType,
		Size:        int64(len(file.Data)),
		PageCount:   extractPDFPageCount(s.logger, file.Data, contentType),
	}, nil
}

func (s *service) Delete(ctx context.Context, path string) bool {
	if err := s.store.Delete(ctx, path); err != nil {
		s.logger.Warn("file delete failed", "path", path, "error", err)
		return false
	}
	s.logger.Info("file deleted", "path", path)
	return true
}

func (s *service) Download(ctx context.Context, path string) (*storage.Stream, error) {
	return s.store.Download(ctx, path)
}

func (s *service) Find(ctx context.Context, path string) (*storage.Blob, error) {
	return s.store.Find(ctx, path)
}

func (s *service) List(ctx context.Context, prefix, marker string, maxResults int32) (*storage.BlobList, error) {
	return s.store.List(ctx, prefix, marker, maxResults)
}

// BuildKey files an upload as
// <category>/<scope>/<department>/<doctype>/<id>-<name>.
func BuildKey(c Constraints, id uuid.UUID, name string) string {
	return strings.Join([]string{
		string(c.DocumentType),
		c.ScopeCode,
		c.DepartmentCode,
		c.DocumentTypeCode,
		id.String() + "-" + sanitizeFilename(name),
	}, "/")
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == ".." || name == "/" || name == "" {
		name = "document"
	}
	return url.PathEscape(name)
}

func uploadMessage(file File, c Constraints, err error) string {
	switch {
	case errors.Is(err, ErrExtensionNotAllowed):
		return fmt.Sprintf("Type de fichier non autorisé pour %s. Formats acceptés : %s.",
			file.Name, strings.Join(c.AllowedExtensions, ", "))
	case errors.Is(err, ErrFileTooLarge):
		return fmt.Sprintf("%s dépasse la taille maximale de %d Mo.", file.Name, c.MaxSizeMB)
	case errors.Is(err, ErrEmptyFile):
		return fmt.Sprintf("%s est vide.", file.Name)
	default:
		return fmt.Sprintf("Le fichier %s n'a pas pu être téléversé : %v", file.Name, err)
	}
}

func detectContentType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(data)
}

func extractPDFPageCount(logger *slog.Logger, data []byte, contentType string) *int {
	if contentType != "application/pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}
	return &count
}
