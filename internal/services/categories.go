package services

import (
	"context"
	"strings"
	"time"

	"github.com/apexlaps/pitwall/internal/logger"
	"github.com/apexlaps/pitwall/pkg/iracing"
)

// DefaultCategoryTTL bounds the staleness of the cached category reference
// data. The list changes only when iRacing introduces a discipline, so a day
// is generous.
const DefaultCategoryTTL = 24 * time.Hour

// CategoryStore defines the repository methods needed by CategoryService
type CategoryStore interface {
	CachedCategories(ctx context.Context) ([]iracing.Category, time.Time, error)
	SaveCategories(ctx context.Context, categories []iracing.Category) error
}

// CategoryService resolves the static category list, caching it through the
// repository with bounded staleness. The upstream endpoint needs no session,
// so this service is independent of authentication entirely.
type CategoryService struct {
	log    logger.Logger
	client iracing.Client
	store  CategoryStore
	ttl    time.Duration
}

// NewCategoryService creates a new CategoryService. store may be nil, in
// which case every call refetches from upstream.
func NewCategoryService(log logger.Logger, client iracing.Client, store CategoryStore) *CategoryService {
	return &CategoryService{log: log, client: client, store: store, ttl: DefaultCategoryTTL}
}

// SetTTL overrides the cache staleness bound. Used in tests.
func (s *CategoryService) SetTTL(ttl time.Duration) {
	s.ttl = ttl
}

// List returns the category list, never nil. A fresh cache entry is served
// directly; otherwise upstream is fetched and the cache refreshed. When
// upstream fails but a stale cache exists, the stale copy is served rather
// than failing the caller.
func (s *CategoryService) List(ctx context.Context) ([]iracing.Category, error) {
	var cached []iracing.Category
	var refreshedAt time.Time
	if s.store != nil {
		var err error
		cached, refreshedAt, err = s.store.CachedCategories(ctx)
		if err != nil {
			s.log.Warn("Category cache read failed", "error", err)
		} else if !refreshedAt.IsZero() && time.Since(refreshedAt) < s.ttl {
			return cached, nil
		}
	}

	categories, err := s.client.Categories(ctx)
	if err != nil {
		if !refreshedAt.IsZero() {
			s.log.Warn("Category fetch failed, serving stale cache", "error", err)
			return cached, nil
		}
		return nil, classifyUpstream(err, "category list")
	}
	if categories == nil {
		categories = []iracing.Category{}
	}

	if s.store != nil && len(categories) > 0 {
		if err := s.store.SaveCategories(ctx, categories); err != nil {
			s.log.Warn("Category cache write failed", "error", err)
		}
	}
	return categories, nil
}

// NormalizeCategoryKey lowercases a category label and replaces every space
// with an underscore. Race category fields and category labels both go
// through this so the two vocabularies join on exact string equality.
func NormalizeCategoryKey(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "_")
}
