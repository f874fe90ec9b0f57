package transfer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/tavtun/docsys/internal/models"
	"github.com/tavtun/docsys/pkg/handlers"
	"github.com/tavtun/docsys/pkg/routes"
	"github.com/tavtun/docsys/pkg/storage"
)

// Handler exposes stored files over HTTP.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxListSize   int32
	maxUploadSize int64
}

func NewHandler(sys System, logger *slog.Logger, maxListSize int32, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "files"),
		maxListSize:   maxListSize,
		maxUploadSize: maxUploadSize,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/files",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "GET", Pattern: "/download/{path...}", Handler: h.Download},
			{Method: "GET", Pattern: "/{path...}", Handler: h.Find},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	maxResults, err := storage.ParseMaxResults(q.Get("max_results"), h.maxListSize)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.List(r.Context(), q.Get("prefix"), q.Get("marker"), maxResults)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	meta, err := h.sys.Find(r.Context(), r.PathValue("path"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, meta)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("path")

	result, err := h.sys.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer result.Body.Close()

	w.Header().Set("Content-Type", result.ContentType)
	if result.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.ContentLength, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, result.Body)
}

// Upload stores a multipart file. The form carries the file plus the
// category, scope_code, department_code and document_type_code fields;
// the default extension and size limits apply.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := ParseUploadForm(w, r, h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	file, err := ReadFormFile(r, "file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	c := Constraints{
		DocumentType:      models.DocumentCategory(r.FormValue("category")),
		ScopeCode:         r.FormValue("scope_code"),
		DepartmentCode:    r.FormValue("department_code"),
		DocumentTypeCode:  r.FormValue("document_type_code"),
		AllowedExtensions: DefaultAllowedExtensions,
		MaxSizeMB:         DefaultMaxSizeMB,
	}

	up, err := h.sys.Upload(r.Context(), file, c)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, up)
}

// formOverhead is the body allowance above the file limit for multipart
// boundaries and the other form fields.
const formOverhead = 1 << 20

// ParseUploadForm caps the request body near limit and parses it as a
// multipart form. A body over the cap yields ErrFileTooLarge; anything else
// that fails to parse yields ErrMalformedForm.
func ParseUploadForm(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)
	if err := r.ParseMultipartForm(limit); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return fmt.Errorf("%w: body exceeds %d bytes", ErrFileTooLarge, mbe.Limit)
		}
		return fmt.Errorf("%w: %v", ErrMalformedForm, err)
	}
	return nil
}

// ReadFormFile reads the named multipart file of a parsed form.
func ReadFormFile(r *http.Request, field string) (File, error) {
	f, header, err := r.FormFile(field)
	if err != nil {
		return File{}, fmt.Errorf("%w: %v", ErrEmptyFile, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", header.Filename, err)
	}

	return File{
		Name:        header.Filename,
		ContentType: detectContentType(header.Header.Get("Content-Type"), data),
		Data:        data,
	}, nil
}
