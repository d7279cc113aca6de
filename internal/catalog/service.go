package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/prakira-pmo/prakira-pmo/internal/shared"
)

// Service coordinates catalog reads through the cache and audited writes.
type Service struct {
	repo  Repository
	cache *Cache
	audit *shared.AuditLogger
}

// NewService constructs a catalog Service.
func NewService(repo Repository, cache *Cache, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, cache: cache, audit: audit}
}

// ListBlp returns personnel rates matching query. The full listing is cached;
// the text filter runs in-process over the cached entries.
func (s *Service) ListBlp(ctx context.Context, query string, includeInactive bool) ([]BlpRate, error) {
	key, err := s.cache.BuildKey(ctx, "catalog", "blp", scopeToken(includeInactive))
	if err != nil {
		return nil, err
	}
	var entries []BlpRate
	err = s.cache.FetchJSON(ctx, key, &entries, func(ctx context.Context) (interface{}, error) {
		return s.repo.ListBlp(ctx, includeInactive)
	})
	if err != nil {
		return nil, err
	}
	return FilterBlp(entries, query), nil
}

// ListBlnp returns non-personnel rates matching query.
func (s *Service) ListBlnp(ctx context.Context, query string, includeInactive bool) ([]BlnpRate, error) {
	key, err := s.cache.BuildKey(ctx, "catalog", "blnp", scopeToken(includeInactive))
	if err != nil {
		return nil, err
	}
	var entries []BlnpRate
	err = s.cache.FetchJSON(ctx, key, &entries, func(ctx context.Context) (interface{}, error) {
		return s.repo.ListBlnp(ctx, includeInactive)
	})
	if err != nil {
		return nil, err
	}
	return FilterBlnp(entries, query), nil
}

// GetBlp resolves a single personnel rate. Inactive entries still resolve:
// they remain valid to reference from existing estimate lines.
func (s *Service) GetBlp(ctx context.Context, id int64) (*BlpRate, error) {
	return s.repo.GetBlp(ctx, id)
}

// GetBlnp resolves a single non-personnel rate.
func (s *Service) GetBlnp(ctx context.Context, id int64) (*BlnpRate, error) {
	return s.repo.GetBlnp(ctx, id)
}

// CreateBlp inserts a personnel rate entry.
func (s *Service) CreateBlp(ctx context.Context, req CreateBlpRequest, actor string) (*BlpRate, error) {
	rate := BlpRate{
		Specification: req.Specification,
		Reference:     req.Reference,
		MonthlyRate:   req.MonthlyRate,
		DailyRate:     req.DailyRate,
		IsActive:      true,
	}
	id, err := s.repo.CreateBlp(ctx, rate)
	if err != nil {
		return nil, fmt.Errorf("create blp rate: %w", err)
	}
	s.afterWrite(ctx, actor, "catalog.blp.create", id, map[string]any{"reference": req.Reference})
	return s.repo.GetBlp(ctx, id)
}

// CreateBlnp inserts a non-personnel rate entry. At-cost entries carry no
// fixed price.
func (s *Service) CreateBlnp(ctx context.Context, req CreateBlnpRequest, actor string) (*BlnpRate, error) {
	rate := BlnpRate{
		ItemDescription: req.ItemDescription,
		Reference:       req.Reference,
		FixedValue:      req.FixedValue,
		IsAtCost:        req.IsAtCost,
		Note:            req.Note,
		IsActive:        true,
	}
	if rate.IsAtCost {
		rate.FixedValue = 0
	}
	id, err := s.repo.CreateBlnp(ctx, rate)
	if err != nil {
		return nil, fmt.Errorf("create blnp rate: %w", err)
	}
	s.afterWrite(ctx, actor, "catalog.blnp.create", id, map[string]any{"reference": req.Reference})
	return s.repo.GetBlnp(ctx, id)
}

// UpdateBlp replaces a personnel rate entry.
func (s *Service) UpdateBlp(ctx context.Context, id int64, req UpdateBlpRequest, actor string) (*BlpRate, error) {
	rate := BlpRate{
		ID:            id,
		Specification: req.Specification,
		Reference:     req.Reference,
		MonthlyRate:   req.MonthlyRate,
		DailyRate:     req.DailyRate,
		IsActive:      req.IsActive,
	}
	if err := s.repo.UpdateBlp(ctx, rate); err != nil {
		return nil, fmt.Errorf("update blp rate: %w", err)
	}
	s.afterWrite(ctx, actor, "catalog.blp.update", id, nil)
	return s.repo.GetBlp(ctx, id)
}

// UpdateBlnp replaces a non-personnel rate entry.
func (s *Service) UpdateBlnp(ctx context.Context, id int64, req UpdateBlnpRequest, actor string) (*BlnpRate, error) {
	rate := BlnpRate{
		ID:              id,
		ItemDescription: req.ItemDescription,
		Reference:       req.Reference,
		FixedValue:      req.FixedValue,
		IsAtCost:        req.IsAtCost,
		Note:            req.Note,
		IsActive:        req.IsActive,
	}
	if rate.IsAtCost {
		rate.FixedValue = 0
	}
	if err := s.repo.UpdateBlnp(ctx, rate); err != nil {
		return nil, fmt.Errorf("update blnp rate: %w", err)
	}
	s.afterWrite(ctx, actor, "catalog.blnp.update", id, nil)
	return s.repo.GetBlnp(ctx, id)
}

// DeactivateBlp hides a personnel rate from catalog listings. Existing lines
// keep their reference.
func (s *Service) DeactivateBlp(ctx context.Context, id int64, actor string) error {
	if err := s.repo.SetBlpActive(ctx, id, false); err != nil {
		return err
	}
	s.afterWrite(ctx, actor, "catalog.blp.deactivate", id, nil)
	return nil
}

// DeactivateBlnp hides a non-personnel rate from catalog listings.
func (s *Service) DeactivateBlnp(ctx context.Context, id int64, actor string) error {
	if err := s.repo.SetBlnpActive(ctx, id, false); err != nil {
		return err
	}
	s.afterWrite(ctx, actor, "catalog.blnp.deactivate", id, nil)
	return nil
}

// Warmup pre-fills the listing caches, used by the background worker.
func (s *Service) Warmup(ctx context.Context) error {
	for _, includeInactive := range []bool{false, true} {
		if _, err := s.ListBlp(ctx, "", includeInactive); err != nil {
			return err
		}
		if _, err := s.ListBlnp(ctx, "", includeInactive); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) afterWrite(ctx context.Context, actor, action string, id int64, meta map[string]any) {
	_ = s.cache.Bump(ctx)
	_ = s.audit.Record(ctx, shared.AuditEntry{
		Actor:    actor,
		Action:   action,
		Entity:   "rate",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}

func scopeToken(includeInactive bool) string {
	if includeInactive {
		return "all"
	}
	return "active"
}
