package estimate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prakira-pmo/prakira-pmo/internal/catalog"
	"github.com/prakira-pmo/prakira-pmo/internal/estimate/pricing"
	"github.com/prakira-pmo/prakira-pmo/internal/shared"
)

// RateSource resolves catalog rates during line construction. Inactive rates
// resolve too; only listings hide them.
type RateSource interface {
	GetBlp(ctx context.Context, id int64) (*catalog.BlpRate, error)
	GetBlnp(ctx context.Context, id int64) (*catalog.BlnpRate, error)
}

// Service owns the estimate aggregate. Every write recomputes the totals
// cascade from the current line list before persisting; stored totals are a
// read model, never an input.
type Service struct {
	repo  Repository
	rates RateSource
	audit *shared.AuditLogger
}

// NewService constructs an estimate Service.
func NewService(repo Repository, rates RateSource, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, rates: rates, audit: audit}
}

// Create builds a draft estimate from the request, prices it and persists it.
func (s *Service) Create(ctx context.Context, req CreateEstimateRequest, actor string) (*Estimate, error) {
	settings := DefaultSettings()
	if req.Settings != nil {
		settings = *req.Settings
	}

	docNumber, err := s.repo.GenerateNumber(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate doc number: %w", err)
	}

	e := Estimate{
		ProjectID: req.ProjectID,
		DocNumber: docNumber,
		Title:     req.Title,
		Status:    EstimateStatusDraft,
		Notes:     req.Notes,
		Settings:  settings,
	}
	for _, lineReq := range req.Lines {
		e.Lines = AppendLine(e.Lines, lineReq.toLine())
	}
	e.Recompute()

	var estimateID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, e)
		if err != nil {
			return err
		}
		estimateID = id
		return repo.ReplaceLines(ctx, id, e.Lines)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, "estimate.create", estimateID, map[string]any{"docNumber": docNumber})
	return s.repo.Get(ctx, estimateID)
}

// Get loads an estimate with its lines.
func (s *Service) Get(ctx context.Context, id int64) (*Estimate, error) {
	return s.repo.Get(ctx, id)
}

// List returns estimate headers plus pagination metadata.
func (s *Service) List(ctx context.Context, req ListEstimatesRequest) ([]Estimate, shared.Pagination, error) {
	estimates, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return estimates, shared.NewPagination(req.Page, req.PerPage, total), nil
}

// Update mutates a draft estimate's header, settings and (optionally) full
// line list, then reprices it.
func (s *Service) Update(ctx context.Context, id int64, req UpdateEstimateRequest, actor string) (*Estimate, error) {
	e, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Notes != nil {
		e.Notes = req.Notes
	}
	if req.Settings != nil {
		e.Settings = *req.Settings
	}
	if req.Lines != nil {
		e.Lines = nil
		for _, lineReq := range *req.Lines {
			e.Lines = AppendLine(e.Lines, lineReq.toLine())
		}
	}

	if err := s.save(ctx, e); err != nil {
		return nil, err
	}
	s.record(ctx, actor, "estimate.update", id, nil)
	return s.repo.Get(ctx, id)
}

// AddLine appends a line built from a catalog rate, or a blank custom row.
func (s *Service) AddLine(ctx context.Context, id int64, req AddLineRequest, actor string) (*Estimate, error) {
	e, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}

	var line EstimateLine
	switch req.Kind {
	case LineKindBLP:
		if req.RateID == nil {
			return nil, fmt.Errorf("%w: rateId required for BLP lines", shared.ErrValidation)
		}
		rate, err := s.rates.GetBlp(ctx, *req.RateID)
		if err != nil {
			return nil, fmt.Errorf("resolve blp rate: %w", err)
		}
		line = NewLineFromBlp(*rate)
	case LineKindBLNP:
		if req.RateID == nil {
			return nil, fmt.Errorf("%w: rateId required for BLNP lines", shared.ErrValidation)
		}
		rate, err := s.rates.GetBlnp(ctx, *req.RateID)
		if err != nil {
			return nil, fmt.Errorf("resolve blnp rate: %w", err)
		}
		line = NewLineFromBlnp(*rate)
	case LineKindCustom:
		line = NewCustomLine()
	default:
		return nil, fmt.Errorf("%w: unknown line kind %q", shared.ErrValidation, req.Kind)
	}

	ApplyLineUpdate(&line, LineUpdate{Quantity: req.Quantity, UnitPrice: req.UnitPrice})
	e.Lines = AppendLine(e.Lines, line)

	if err := s.save(ctx, e); err != nil {
		return nil, err
	}
	s.record(ctx, actor, "estimate.line.add", id, map[string]any{"kind": string(req.Kind)})
	return s.repo.Get(ctx, id)
}

// UpdateLine patches the line at the given list position.
func (s *Service) UpdateLine(ctx context.Context, id int64, index int, patch LineUpdate, actor string) (*Estimate, error) {
	e, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(e.Lines) {
		return nil, fmt.Errorf("%w: line %d", shared.ErrNotFound, index)
	}

	ApplyLineUpdate(&e.Lines[index], patch)

	if err := s.save(ctx, e); err != nil {
		return nil, err
	}
	s.record(ctx, actor, "estimate.line.update", id, map[string]any{"index": index})
	return s.repo.Get(ctx, id)
}

// RemoveLine deletes the line at the given list position.
func (s *Service) RemoveLine(ctx context.Context, id int64, index int, actor string) (*Estimate, error) {
	e, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(e.Lines) {
		return nil, fmt.Errorf("%w: line %d", shared.ErrNotFound, index)
	}

	e.Lines = RemoveLine(e.Lines, index)

	if err := s.save(ctx, e); err != nil {
		return nil, err
	}
	s.record(ctx, actor, "estimate.line.remove", id, map[string]any{"index": index})
	return s.repo.Get(ctx, id)
}

// Finalize freezes a draft estimate after a last recompute.
func (s *Service) Finalize(ctx context.Context, id int64, actor string) (*Estimate, error) {
	e, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}

	e.Status = EstimateStatusFinal
	if err := s.save(ctx, e); err != nil {
		return nil, err
	}
	s.record(ctx, actor, "estimate.finalize", id, map[string]any{"grandTotal": e.Totals.GrandTotal})
	return s.repo.Get(ctx, id)
}

// Delete removes a draft estimate and its lines.
func (s *Service) Delete(ctx context.Context, id int64, actor string) error {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !e.Editable() {
		return shared.ErrImmutable
	}
	if err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.Delete(ctx, id)
	}); err != nil {
		return err
	}
	s.record(ctx, actor, "estimate.delete", id, map[string]any{"docNumber": e.DocNumber})
	return nil
}

// RecostResult reports what a recost run found for one estimate.
type RecostResult struct {
	EstimateID int64          `json:"estimateId"`
	DocNumber  string         `json:"docNumber"`
	Before     pricing.Totals `json:"before"`
	After      pricing.Totals `json:"after"`
	Drifted    bool           `json:"drifted"`
}

// Recost replays the totals cascade over the stored lines and repairs any
// drifted persisted totals or line totals. Finalized estimates are recosted
// too: the operation never changes inputs, only repairs derived state.
func (s *Service) Recost(ctx context.Context, id int64, actor string) (*RecostResult, error) {
	var result *RecostResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		e, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		before := e.Totals
		storedLineTotals := make([]float64, len(e.Lines))
		for i := range e.Lines {
			storedLineTotals[i] = e.Lines[i].LineTotal
		}
		e.Recompute()
		drifted := before != e.Totals
		for i := range e.Lines {
			if e.Lines[i].LineTotal != storedLineTotals[i] {
				drifted = true
			}
		}
		result = &RecostResult{
			EstimateID: e.ID,
			DocNumber:  e.DocNumber,
			Before:     before,
			After:      e.Totals,
			Drifted:    drifted,
		}
		if !result.Drifted {
			return nil
		}
		if err := repo.UpdateHeader(ctx, *e); err != nil {
			return err
		}
		return repo.ReplaceLines(ctx, e.ID, e.Lines)
	})
	if err != nil {
		return nil, err
	}
	if result.Drifted {
		s.record(ctx, actor, "estimate.recost", id, map[string]any{
			"before": result.Before.GrandTotal,
			"after":  result.After.GrandTotal,
		})
	}
	return result, nil
}

func (s *Service) editable(ctx context.Context, id int64) (*Estimate, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.Editable() {
		return nil, shared.ErrImmutable
	}
	return e, nil
}

func (s *Service) save(ctx context.Context, e *Estimate) error {
	e.Recompute()
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.UpdateHeader(ctx, *e); err != nil {
			return err
		}
		return repo.ReplaceLines(ctx, e.ID, e.Lines)
	})
}

func (s *Service) record(ctx context.Context, actor, action string, id int64, meta map[string]any) {
	_ = s.audit.Record(ctx, shared.AuditEntry{
		Actor:    actor,
		Action:   action,
		Entity:   "estimate",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}
