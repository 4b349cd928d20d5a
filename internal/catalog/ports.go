package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrCategoryNameTaken = errors.New("category name taken")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidRange      = errors.New("invalid date range")
)

// ValidationError reports the set of required fields that were missing or
// empty. The request never reaches the store when validation fails.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or empty required fields: %s", strings.Join(e.Fields, ", "))
}

type LinkRepository interface {
	Insert(ctx context.Context, link *Link) error
	FindAll(ctx context.Context) ([]Link, error)
	FindFeatured(ctx context.Context, limit int) ([]Link, error)
	FindByCategory(ctx context.Context, categoryID string) ([]Link, error)
	FindByID(ctx context.Context, id string) (*Link, error)
	Update(ctx context.Context, link *Link) error
	DeleteByID(ctx context.Context, id string) error
	// IncrementClicks performs the increment atomically at the store and
	// returns the updated link.
	IncrementClicks(ctx context.Context, id string, at time.Time) (*Link, error)
	Summary(ctx context.Context, topN int) (*Summary, error)
}

type CategoryRepository interface {
	Insert(ctx context.Context, category *Category) error
	FindAll(ctx context.Context) ([]Category, error)
	FindByID(ctx context.Context, id string) (*Category, error)
	Update(ctx context.Context, category *Category) error
	DeleteByID(ctx context.Context, id string) error
}

// ImageStore persists uploaded binaries and returns a stable reference.
type ImageStore interface {
	Store(ctx context.Context, upload *ImageUpload) (string, error)
}

// ClickStatsRepository holds per-day click aggregates, written by the click
// consumer and read by the admin stats endpoint.
type ClickStatsRepository interface {
	IncDaily(ctx context.Context, linkID string, at time.Time) error
	GetDaily(ctx context.Context, linkID string, from, to time.Time) ([]DailyCount, error)
}

// ClickPublisher emits click events for downstream aggregation. Publishing is
// best-effort; the links collection remains the source of truth.
type ClickPublisher interface {
	PublishClick(ctx context.Context, linkID string, at time.Time) error
}
