package api

import (
	"fmt"

	"github.com/tavtun/docsys/internal/codes"
	"github.com/tavtun/docsys/internal/documents"
	"github.com/tavtun/docsys/internal/editor"
	"github.com/tavtun/docsys/internal/notify"
	"github.com/tavtun/docsys/internal/transfer"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Codes     codes.System
	Documents documents.System
	Transfer  transfer.System
	Hub       *notify.Hub
	Editor    *editor.Manager
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	mapper, err := documents.NewMapper(runtime.Documents.TypeCategories)
	if err != nil {
		return nil, fmt.Errorf("document type mapping: %w", err)
	}

	var codeCache *codes.Cache
	if runtime.Cache != nil {
		codeCache = codes.NewCache(runtime.Cache.Client(), runtime.Cache.TTL())
	}

	codesSystem := codes.New(
		runtime.Database.Connection(),
		codeCache,
		runtime.Logger,
	)

	hub := notify.NewHub(runtime.Logger)

	transferSystem := transfer.New(
		runtime.Storage,
		hub,
		runtime.Logger,
		runtime.MaxListSize,
	)

	docsSystem := documents.New(
		runtime.Database.Connection(),
		codesSystem,
		transferSystem,
		mapper,
		runtime.Documents.DefaultCompany,
		runtime.Logger,
		runtime.Pagination,
	)

	manager := editor.NewManager(
		docsSystem,
		codesSystem,
		transferSystem,
		mapper,
		hub,
		runtime.Documents.DefaultCompany,
		runtime.Logger,
	).WithUploadLimits(
		runtime.Documents.AllowedExtensions,
		runtime.Documents.MaxFileSizeMB(),
	)

	return &Domain{
		Codes:     codesSystem,
		Documents: docsSystem,
		Transfer:  transferSystem,
		Hub:       hub,
		Editor:    manager,
	}, nil
}

// Start runs the notification hub and the idle session sweep under the
// runtime lifecycle.
func (d *Domain) Start(runtime *Runtime) {
	d.Hub.Start(runtime.Lifecycle)
	d.Editor.Start(
		runtime.Lifecycle,
		runtime.Documents.SessionIdleTimeoutDuration(),
		runtime.Documents.SessionSweepIntervalDuration(),
	)
}
