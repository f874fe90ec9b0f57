package codes

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tavtun/docsys/pkg/repository"
)

type repo struct {
	db     *sql.DB
	cache  *Cache
	loads  singleflight.Group
	logger *slog.Logger
}

// New creates the code configuration system. cache may be nil.
func New(db *sql.DB, cache *Cache, logger *slog.Logger) System {
	return &repo{
		db:     db,
		cache:  cache,
		logger: logger.With("system", "codes"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Config(ctx context.Context) (*Config, error) {
	cfg, err := r.cache.Get(ctx)
	if err != nil {
		r.logger.Warn("config cache read failed", "error", err)
	}
	if cfg != nil {
		return cfg, nil
	}

	v, err, shared := r.loads.Do(CacheKey, func() (any, error) {
		gen, genErr := r.cache.Generation(ctx)
		cfg, err := r.load(ctx)
		if err != nil {
			return nil, err
		}
		if genErr != nil {
			r.logger.Warn("config cache generation read failed", "error", genErr)
			return cfg, nil
		}
		written, err := r.cache.SetIfCurrent(ctx, cfg, gen)
		if err != nil {
			r.logger.Warn("config cache write failed", "error", err)
		} else if !written && r.cache != nil {
			r.logger.Debug("config snapshot superseded, not cached", "generation", gen)
		}
		return cfg, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.logger.Debug("config load shared with concurrent caller")
	}
	return v.(*Config), nil
}

func (r *repo) load(ctx context.Context) (*Config, error) {
	const componentsSQL = `
		SELECT kind, code, label, description, updated_at
		FROM code_components
		ORDER BY kind, position, code`

	rows, err := r.db.QueryContext(ctx, componentsSQL)
	if err != nil {
		return nil, fmt.Errorf("query code components: %w", err)
	}
	defer rows.Close()

	cfg := &Config{SequenceCounters: make(map[string]int)}
	for rows.Next() {
		var (
			kind    Kind
			comp    Component
			updated time.Time
		)
		if err := rows.Scan(&kind, &comp.Code, &comp.Label, &comp.Description, &updated); err != nil {
			return nil, fmt.Errorf("scan code component: %w", err)
		}
		cfg.add(kind, comp)
		if updated.After(cfg.UpdatedAt) {
			cfg.UpdatedAt = updated
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate code components: %w", err)
	}

	counters, err := repository.QueryMany(ctx, r.db,
		"SELECT key, value FROM sequence_counters", nil, scanCounter)
	if err != nil {
		return nil, fmt.Errorf("query sequence counters: %w", err)
	}
	for _, c := range counters {
		cfg.SequenceCounters[c.key] = c.value
	}

	return cfg, nil
}

type counter struct {
	key   string
	value int
}

func scanCounter(s repository.Scanner) (counter, error) {
	var c counter
	err := s.Scan(&c.key, &c.value)
	return c, err
}

func (r *repo) NextSequence(ctx context.Context, key string) (int, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}

	const q = `
		INSERT INTO sequence_counters (key, value, updated_at)
		VALUES ($1, 1, now())
		ON CONFLICT (key) DO UPDATE
		SET value = sequence_counters.value + 1, updated_at = now()
		RETURNING value`

	var n int
	if err := r.db.QueryRowContext(ctx, q, key).Scan(&n); err != nil {
		return 0, fmt.Errorf("increment sequence %s: %w", key, err)
	}

	r.invalidate(ctx)
	return n, nil
}

func (r *repo) SaveComponent(ctx context.Context, kind Kind, comp Component) (*Component, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if err := comp.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidComponent, err)
	}

	const q = `
		INSERT INTO code_components (kind, code, label, description, position, updated_at)
		VALUES ($1, $2, $3, $4,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM code_components WHERE kind = $1),
			now())
		ON CONFLICT (kind, code) DO UPDATE
		SET label = EXCLUDED.label, description = EXCLUDED.description, updated_at = now()
		RETURNING code, label, description`

	saved, err := repository.QueryOne(ctx, r.db, q,
		[]any{kind, comp.Code, comp.Label, comp.Description}, scanComponent)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.invalidate(ctx)
	r.logger.Info("code component saved", "kind", kind, "code", saved.Code)
	return &saved, nil
}

func (r *repo) DeleteComponent(ctx context.Context, kind Kind, code string) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}

	err := repository.ExecExpectOne(ctx, r.db,
		"DELETE FROM code_components WHERE kind = $1 AND code = $2", kind, code)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.invalidate(ctx)
	r.logger.Info("code component deleted", "kind", kind, "code", code)
	return nil
}

func (r *repo) invalidate(ctx context.Context) {
	if err := r.cache.Invalidate(ctx); err != nil {
		r.logger.Warn("config cache invalidation failed", "error", err)
	}
}

func scanComponent(s repository.Scanner) (Component, error) {
	var c Component
	err := s.Scan(&c.Code, &c.Label, &c.Description)
	return c, err
}
