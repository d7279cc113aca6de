package projects

import (
	"context"
	"strconv"

	"github.com/prakira-pmo/prakira-pmo/internal/shared"
)

// Service owns project master data.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService constructs a projects Service.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns projects matching the filter.
func (s *Service) List(ctx context.Context, req ListProjectsRequest) ([]Project, error) {
	return s.repo.List(ctx, req)
}

// Get loads one project.
func (s *Service) Get(ctx context.Context, id int64) (*Project, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a project. New projects start active.
func (s *Service) Create(ctx context.Context, req CreateProjectRequest, actor string) (*Project, error) {
	id, err := s.repo.Create(ctx, Project{
		Code:       req.Code,
		Name:       req.Name,
		ClientName: req.ClientName,
		IsActive:   true,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, "project.create", id, map[string]any{"code": req.Code})
	return s.repo.Get(ctx, id)
}

// Update mutates a project's editable fields. Deactivating a project hides
// it from listings; existing estimates keep referencing it.
func (s *Service) Update(ctx context.Context, id int64, req UpdateProjectRequest, actor string) (*Project, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.ClientName != nil {
		p.ClientName = *req.ClientName
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, *p); err != nil {
		return nil, err
	}
	s.record(ctx, actor, "project.update", id, nil)
	return s.repo.Get(ctx, id)
}

func (s *Service) record(ctx context.Context, actor, action string, id int64, meta map[string]any) {
	_ = s.audit.Record(ctx, shared.AuditEntry{
		Actor:    actor,
		Action:   action,
		Entity:   "project",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}
