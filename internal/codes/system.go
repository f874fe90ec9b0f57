package codes

import "context"

// System provides the code configuration and allocates sequence numbers.
type System interface {
	Handler() *Handler

	// Config returns a snapshot. Callers must not mutate it.
	Config(ctx context.Context) (*Config, error)
	// NextSequence atomically increments and returns the counter for key.
	NextSequence(ctx context.Context, key string) (int, error)
	SaveComponent(ctx context.Context, kind Kind, comp Component) (*Component, error)
	DeleteComponent(ctx context.Context, kind Kind, code string) error
}
