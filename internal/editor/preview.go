package editor

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tavtun/docsys/internal/transfer"
)

// Preview is what the session shows for the document's file: either the
// stored file or a transient handle on the pending selection. A nil
// Preview shows nothing.
type Preview interface {
	preview()
}

// StoredPreview points at the persisted file. The session never releases it.
type StoredPreview struct {
	Path string
}

// TransientPreview is a handle the session created and must release.
type TransientPreview struct {
	Handle string
}

func (StoredPreview) preview()    {}
func (TransientPreview) preview() {}

// PreviewView is the wire form of a Preview.
type PreviewView struct {
	Kind string `json:"kind"`
	Ref  string `json:"ref"`
}

func viewPreview(p Preview) *PreviewView {
	switch p := p.(type) {
	case StoredPreview:
		return &PreviewView{Kind: "stored", Ref: p.Path}
	case TransientPreview:
		return &PreviewView{Kind: "transient", Ref: p.Handle}
	}
	return nil
}

// previewable reports whether a file of contentType can be previewed.
func previewable(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || contentType == "application/pdf"
}

const handlePrefix = "blob:"

// Handles holds the files behind transient previews until released.
type Handles struct {
	mu    sync.Mutex
	files map[string]transfer.File
}

func NewHandles() *Handles {
	return &Handles{files: make(map[string]transfer.File)}
}

// Create registers f and returns a blob:<uuid> handle for it.
func (h *Handles) Create(f transfer.File) string {
	handle := handlePrefix + uuid.NewString()
	h.mu.Lock()
	h.files[handle] = f
	h.mu.Unlock()
	return handle
}

// Release frees handle. It reports false for unknown handles.
func (h *Handles) Release(handle string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.files[handle]; !ok {
		return false
	}
	delete(h.files, handle)
	return true
}

func (h *Handles) Open(handle string) (transfer.File, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.files[handle]
	return f, ok
}

// Live counts unreleased handles.
func (h *Handles) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.files)
}
