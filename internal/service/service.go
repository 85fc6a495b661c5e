// Package service holds the business rules: access checks, task lifecycle,
// membership and scoped listings. It depends on storage only through
// Repository.
package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/policy"
)

// Services bundles every use-case service over one repository.
type Services struct {
	Projects  *Projects
	Tasks     *Tasks
	Comments  *Comments
	Users     *Users
	Analytics *Analytics
}

// Option customizes the services.
type Option func(*base)

// WithLogger sets the logger used for mutation events.
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithClock replaces time.Now, used to stamp completion times.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		if now != nil {
			b.now = now
		}
	}
}

// New wires all services to repo.
func New(repo Repository, opts ...Option) *Services {
	b := &base{
		repo:   repo,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	return &Services{
		Projects:  &Projects{base: b},
		Tasks:     &Tasks{base: b},
		Comments:  &Comments{base: b},
		Users:     &Users{base: b},
		Analytics: &Analytics{base: b},
	}
}

type base struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func (b *base) roster(ctx context.Context, projectID int64) (policy.Roster, error) {
	ids, err := b.repo.ProjectMemberIDs(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return policy.NewRoster(ids...), nil
}

// listing turns store rows into a page. Unpaginated listings come back as a
// single page holding every row.
func listing[T any](rows []T, total int64, req models.PageRequest) models.Page[T] {
	if !req.Enabled() {
		return models.NewPage(rows, models.PageRequest{Page: 1, PerPage: len(rows)}, int64(len(rows)))
	}
	return models.NewPage(rows, req, total)
}
