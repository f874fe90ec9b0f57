package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/tavtun/docsys/internal/models"
	"github.com/tavtun/docsys/pkg/pagination"
)

// System defines the document store operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)
	// Update writes every field of cmd and records an UPDATED history entry.
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	History(ctx context.Context, id uuid.UUID) ([]models.DocumentHistory, error)
	// QRCode renders the document code as a size x size PNG.
	QRCode(ctx context.Context, id uuid.UUID, size int) ([]byte, error)
}

// Sequencer allocates document sequence numbers per component combination.
type Sequencer interface {
	NextSequence(ctx context.Context, key string) (int, error)
}

// Files removes stored document files. Delete reports success and never
// fails the caller.
type Files interface {
	Delete(ctx context.Context, path string) bool
}
