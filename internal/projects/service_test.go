package projects

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prakira-pmo/prakira-pmo/internal/shared"
)

type memoryProjectRepo struct {
	nextID   int64
	projects map[int64]*Project
}

func newMemoryProjectRepo() *memoryProjectRepo {
	return &memoryProjectRepo{projects: map[int64]*Project{}}
}

func (m *memoryProjectRepo) List(_ context.Context, req ListProjectsRequest) ([]Project, error) {
	var out []Project
	q := strings.ToLower(strings.TrimSpace(req.Query))
	for _, p := range m.projects {
		if !req.IncludeInactive && !p.IsActive {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Code), q) &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.ClientName), q) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *memoryProjectRepo) Get(_ context.Context, id int64) (*Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *memoryProjectRepo) Create(_ context.Context, p Project) (int64, error) {
	for _, existing := range m.projects {
		if existing.Code == p.Code {
			return 0, shared.ErrConflict
		}
	}
	m.nextID++
	p.ID = m.nextID
	m.projects[p.ID] = &p
	return p.ID, nil
}

func (m *memoryProjectRepo) Update(_ context.Context, p Project) error {
	if _, ok := m.projects[p.ID]; !ok {
		return shared.ErrNotFound
	}
	m.projects[p.ID] = &p
	return nil
}

func TestCreateProjectStartsActive(t *testing.T) {
	svc := NewService(newMemoryProjectRepo(), nil)

	p, err := svc.Create(context.Background(), CreateProjectRequest{Code: "PRJ-01", Name: "Rollout", ClientName: "Acme"}, "tester")
	require.NoError(t, err)
	require.True(t, p.IsActive)
	require.Equal(t, "PRJ-01", p.Code)
}

func TestCreateProjectDuplicateCode(t *testing.T) {
	svc := NewService(newMemoryProjectRepo(), nil)

	_, err := svc.Create(context.Background(), CreateProjectRequest{Code: "PRJ-01", Name: "one"}, "tester")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateProjectRequest{Code: "PRJ-01", Name: "two"}, "tester")
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestDeactivatedProjectHiddenFromDefaultListing(t *testing.T) {
	svc := NewService(newMemoryProjectRepo(), nil)

	p, err := svc.Create(context.Background(), CreateProjectRequest{Code: "PRJ-01", Name: "Rollout"}, "tester")
	require.NoError(t, err)

	inactive := false
	p, err = svc.Update(context.Background(), p.ID, UpdateProjectRequest{IsActive: &inactive}, "tester")
	require.NoError(t, err)
	require.False(t, p.IsActive)

	visible, err := svc.List(context.Background(), ListProjectsRequest{})
	require.NoError(t, err)
	require.Empty(t, visible)

	all, err := svc.List(context.Background(), ListProjectsRequest{IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, all, 1)

	// Still resolvable by id for existing estimates.
	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, "Rollout", got.Name)
}
