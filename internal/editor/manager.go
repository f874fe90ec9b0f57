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
	"github.com/tavtun/docsys/internal/notify"
	"github.com/tavtun/docsys/internal/transfer"
	"github.com/tavtun/docsys/pkg/doccode"
	"github.com/tavtun/docsys/pkg/lifecycle"
)

// DocumentStore reads and updates documents.
type DocumentStore interface {
	Updater
	Find(ctx context.Context, id uuid.UUID) (*documents.Document, error)
}

// ConfigProvider supplies code configuration snapshots.
type ConfigProvider interface {
	Config(ctx context.Context) (*codes.Config, error)
}

// Manager owns the open edit sessions.
type Manager struct {
	docs    DocumentStore
	configs ConfigProvider
	deps    *deps
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a session manager. company is the default company
// code for documents that carry none; empty selects doccode.DefaultCompany.
func NewManager(
	docs DocumentStore,
	configs ConfigProvider,
	files FileTransfer,
	mapper TypeMapper,
	sink notify.Sink,
	company string,
	logger *slog.Logger,
) *Manager {
	if company == "" {
		company = doccode.DefaultCompany
	}
	logger = logger.With("system", "editor")

	return &Manager{
		docs:    docs,
		configs: configs,
		deps: &deps{
			updater: docs,
			files:   files,
			mapper:  mapper,
			sink:    sink,
			handles: NewHandles(),
			company: company,
			logger:  logger,

			extensions: transfer.DefaultAllowedExtensions,
			maxSizeMB:  transfer.DefaultMaxSizeMB,
		},
		logger:   logger,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// WithUploadLimits replaces the constraints applied to replacement files.
// Empty or non-positive values keep the defaults. Call before opening
// sessions.
func (m *Manager) WithUploadLimits(extensions []string, maxSizeMB int) *Manager {
	if len(extensions) > 0 {
		m.deps.extensions = extensions
	}
	if maxSizeMB > 0 {
		m.deps.maxSizeMB = maxSizeMB
	}
	return m
}

func (m *Manager) Handler(maxUploadSize int64) *Handler {
	return NewHandler(m, m.logger, maxUploadSize)
}

// Handles exposes the transient preview registry.
func (m *Manager) Handles() *Handles {
	return m.deps.handles
}

// Open loads documentID into a new session. When the document has no
// department, department names the editing user's department by label and
// preselects its code.
func (m *Manager) Open(ctx context.Context, documentID uuid.UUID, department string) (*Session, error) {
	doc, err := m.docs.Find(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}

	cfg, err := m.configs.Config(ctx)
	if err != nil {
		return nil, fmt.Errorf("load code configuration: %w", err)
	}

	s := newSession(m.deps)
	s.Load(doc, cfg)

	if department != "" && s.form.DepartmentCode == nil {
		if comp, ok := cfg.DepartmentByLabel(department); ok {
			s.form.DepartmentCode = &comp.Code
		}
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	openSessions.Inc()

	m.logger.Info("edit session opened", "session", s.ID, "document", documentID)
	return s, nil
}

func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Submit submits the session and forgets it once it closes.
func (m *Manager) Submit(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	doc, err := s.Submit(ctx)
	if err != nil {
		return nil, err
	}

	m.forget(id)
	return doc, nil
}

// Cancel closes the session and forgets it.
func (m *Manager) Cancel(id uuid.UUID) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}

	s.Cancel()
	m.forget(id)
	m.logger.Info("edit session cancelled", "session", id)
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep cancels sessions idle for longer than idle and returns how many it
// closed.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	m.mu.Lock()
	var stale []*Session
	for _, s := range m.sessions {
		if s.idleSince(cutoff) {
			stale = append(stale, s)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Cancel()
		m.forget(s.ID)
	}
	return len(stale)
}

// Start sweeps idle sessions every interval until shutdown.
func (m *Manager) Start(lc *lifecycle.Coordinator, idle, interval time.Duration) {
	lc.Go(func(ctx context.Context) {
		m.Run(ctx, idle, interval)
	})
}

func (m *Manager) Run(ctx context.Context, idle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(idle); n > 0 {
				m.logger.Info("idle edit sessions closed", "count", n)
			}
		}
	}
}

func (m *Manager) forget(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		openSessions.Dec()
	}
}
