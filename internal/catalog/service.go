package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/linkatalog/linkatalog/internal/auth"
	"github.com/linkatalog/linkatalog/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const DefaultFeaturedLimit = 10

// Service owns the link and category entities, all query policy, the click
// counter, and the admin gate on mutations. It holds no state between calls;
// every operation reads and writes through the repositories.
type Service struct {
	links      LinkRepository
	categories CategoryRepository
	images     ImageStore
	stats      ClickStatsRepository
	clicks     ClickPublisher
	now        func() time.Time
}

func NewService(links LinkRepository, categories CategoryRepository, images ImageStore, stats ClickStatsRepository, clicks ClickPublisher) *Service {
	return &Service{
		links:      links,
		categories: categories,
		images:     images,
		stats:      stats,
		clicks:     clicks,
		now:        time.Now,
	}
}

// --- Read operations (public) ---

func (s *Service) ListLinks(ctx context.Context) ([]Link, error) {
	return s.links.FindAll(ctx)
}

func (s *Service) ListFeaturedLinks(ctx context.Context, limit int) ([]Link, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	return s.links.FindFeatured(ctx, limit)
}

func (s *Service) ListLinksByCategory(ctx context.Context, categoryID string) ([]Link, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return []Link{}, nil
	}
	return s.links.FindByCategory(ctx, categoryID)
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.categories.FindAll(ctx)
}

// --- Click tracking (public) ---

// RecordClick increments the click counter by exactly one. The increment is
// atomic at the store, so concurrent calls against the same id never lose
// updates. The click event is published best-effort after the counter moves.
func (s *Service) RecordClick(ctx context.Context, id string) (*Link, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}

	at := s.now().UTC()
	link, err := s.links.IncrementClicks(ctx, id, at)
	if err != nil {
		return nil, err
	}

	if s.clicks != nil {
		if err := s.clicks.PublishClick(ctx, link.ID, at); err != nil {
			logger.Warn("failed to publish click event", zap.Error(err), zap.String("link_id", link.ID))
		}
	}

	return link, nil
}

// --- Admin write operations ---

func (s *Service) CreateLink(ctx context.Context, p *auth.Principal, in CreateLinkInput) (*Link, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.URL) == "" {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	link := &Link{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		URL:         strings.TrimSpace(in.URL),
		CategoryID:  strings.TrimSpace(in.CategoryID),
		Tags:        NormalizeTags(in.Tags),
		IsFeatured:  in.IsFeatured,
		Order:       in.Order,
		Clicks:      0,
	}

	if in.Image != nil {
		ref, err := s.images.Store(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		link.ImageRef = ref
	}

	now := s.now().UTC()
	link.CreatedAt = now
	link.UpdatedAt = now

	if err := s.links.Insert(ctx, link); err != nil {
		return nil, err
	}

	s.attachCategory(ctx, link)
	return link, nil
}

func (s *Service) UpdateLink(ctx context.Context, p *auth.Principal, id string, patch LinkPatch) (*Link, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	link, err := s.links.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var invalid []string
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			invalid = append(invalid, "title")
		} else {
			link.Title = strings.TrimSpace(*patch.Title)
		}
	}
	if patch.URL != nil {
		if strings.TrimSpace(*patch.URL) == "" {
			invalid = append(invalid, "url")
		} else {
			link.URL = strings.TrimSpace(*patch.URL)
		}
	}
	if patch.Clicks != nil && *patch.Clicks < 0 {
		invalid = append(invalid, "clicks")
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}

	if patch.Description != nil {
		link.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.CategoryID != nil {
		link.CategoryID = strings.TrimSpace(*patch.CategoryID)
	}
	if patch.Tags != nil {
		link.Tags = NormalizeTags(*patch.Tags)
	}
	if patch.IsFeatured != nil {
		link.IsFeatured = *patch.IsFeatured
	}
	if patch.Order != nil {
		link.Order = *patch.Order
	}
	if patch.Clicks != nil {
		link.Clicks = *patch.Clicks
	}

	// The new reference replaces the old one; the previous stored image is
	// left in place (no retention policy is defined).
	if patch.Image != nil {
		ref, err := s.images.Store(ctx, patch.Image)
		if err != nil {
			return nil, err
		}
		link.ImageRef = ref
	}

	link.UpdatedAt = s.now().UTC()

	if err := s.links.Update(ctx, link); err != nil {
		return nil, err
	}

	link.Category = nil
	s.attachCategory(ctx, link)
	return link, nil
}

func (s *Service) DeleteLink(ctx context.Context, p *auth.Principal, id string) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	return s.links.DeleteByID(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, p *auth.Principal, name string) (*Category, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Fields: []string{"name"}}
	}

	category := &Category{
		Name:      name,
		CreatedAt: s.now().UTC(),
	}
	if err := s.categories.Insert(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, p *auth.Principal, id, name string) (*Category, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Fields: []string{"name"}}
	}

	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = name
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// DeleteCategory removes the category only. Links that reference it keep the
// dangling reference, which read paths resolve to a nil category.
func (s *Service) DeleteCategory(ctx context.Context, p *auth.Principal, id string) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	return s.categories.DeleteByID(ctx, id)
}

// --- Admin stats ---

func (s *Service) Stats(ctx context.Context, p *auth.Principal, topN int) (*Summary, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = 5
	}
	return s.links.Summary(ctx, topN)
}

// LinkClickStats returns one entry per day in [from, to], zero-filled for days
// without clicks.
func (s *Service) LinkClickStats(ctx context.Context, p *auth.Principal, id string, from, to time.Time) ([]DailyCount, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	if _, err := s.links.FindByID(ctx, id); err != nil {
		return nil, err
	}

	from = from.UTC()
	to = to.UTC()
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	counts, err := s.stats.GetDaily(ctx, id, from, to)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]int64, len(counts))
	for _, c := range counts {
		byDate[c.Date] = c.Count
	}

	out := make([]DailyCount, 0, int(to.Sub(from).Hours()/24)+1)
	for day := dateOnly(from); !day.After(dateOnly(to)); day = day.AddDate(0, 0, 1) {
		ds := day.Format(time.DateOnly)
		out = append(out, DailyCount{Date: ds, Count: byDate[ds]})
	}

	return out, nil
}

func requireAdmin(p *auth.Principal) error {
	if p == nil {
		return ErrUnauthorized
	}
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (s *Service) attachCategory(ctx context.Context, link *Link) {
	if link.CategoryID == "" {
		return
	}
	category, err := s.categories.FindByID(ctx, link.CategoryID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("failed to resolve category", zap.Error(err), zap.String("category_id", link.CategoryID))
		}
		return
	}
	link.Category = category
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
