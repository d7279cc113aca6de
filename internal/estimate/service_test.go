package estimate

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prakira-pmo/prakira-pmo/internal/catalog"
	"github.com/prakira-pmo/prakira-pmo/internal/shared"
)

type memoryEstimateRepo struct {
	nextID    int64
	nextSeq   int64
	estimates map[int64]*Estimate
}

func newMemoryEstimateRepo() *memoryEstimateRepo {
	return &memoryEstimateRepo{estimates: map[int64]*Estimate{}}
}

func (m *memoryEstimateRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *memoryEstimateRepo) Get(_ context.Context, id int64) (*Estimate, error) {
	e, ok := m.estimates[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *e
	clone.Lines = append([]EstimateLine(nil), e.Lines...)
	return &clone, nil
}

func (m *memoryEstimateRepo) List(_ context.Context, req ListEstimatesRequest) ([]Estimate, int, error) {
	var out []Estimate
	for _, e := range m.estimates {
		if req.ProjectID != nil && e.ProjectID != *req.ProjectID {
			continue
		}
		if req.Status != nil && e.Status != *req.Status {
			continue
		}
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (m *memoryEstimateRepo) ListIDsByStatus(_ context.Context, status EstimateStatus) ([]int64, error) {
	var ids []int64
	for id, e := range m.estimates {
		if e.Status == status {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memoryEstimateRepo) Create(_ context.Context, e Estimate) (int64, error) {
	m.nextID++
	e.ID = m.nextID
	stored := e
	stored.Lines = nil
	m.estimates[e.ID] = &stored
	return e.ID, nil
}

func (m *memoryEstimateRepo) UpdateHeader(_ context.Context, e Estimate) error {
	stored, ok := m.estimates[e.ID]
	if !ok {
		return shared.ErrNotFound
	}
	lines := stored.Lines
	*stored = e
	stored.Lines = lines
	return nil
}

func (m *memoryEstimateRepo) ReplaceLines(_ context.Context, estimateID int64, lines []EstimateLine) error {
	stored, ok := m.estimates[estimateID]
	if !ok {
		return shared.ErrNotFound
	}
	stored.Lines = append([]EstimateLine(nil), lines...)
	return nil
}

func (m *memoryEstimateRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.estimates[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.estimates, id)
	return nil
}

func (m *memoryEstimateRepo) GenerateNumber(_ context.Context, date time.Time) (string, error) {
	m.nextSeq++
	return fmt.Sprintf("EST-%s-%04d", date.Format("0601"), m.nextSeq), nil
}

type fakeRateSource struct {
	blp  map[int64]catalog.BlpRate
	blnp map[int64]catalog.BlnpRate
}

func (f *fakeRateSource) GetBlp(_ context.Context, id int64) (*catalog.BlpRate, error) {
	rate, ok := f.blp[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &rate, nil
}

func (f *fakeRateSource) GetBlnp(_ context.Context, id int64) (*catalog.BlnpRate, error) {
	rate, ok := f.blnp[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &rate, nil
}

func newTestEstimateService() (*Service, *memoryEstimateRepo) {
	repo := newMemoryEstimateRepo()
	rates := &fakeRateSource{
		blp: map[int64]catalog.BlpRate{
			1: {ID: 1, Specification: "Senior Engineer", MonthlyRate: 40_000_000, DailyRate: 2_000_000, IsActive: true},
		},
		blnp: map[int64]catalog.BlnpRate{
			7: {ID: 7, ItemDescription: "Travel allowance", FixedValue: 750_000, IsActive: true},
			8: {ID: 8, ItemDescription: "Permit fee", IsAtCost: true, IsActive: true},
		},
	}
	return NewService(repo, rates, nil), repo
}

func TestCreateAppliesDefaultsAndComputesTotals(t *testing.T) {
	svc, _ := newTestEstimateService()

	e, err := svc.Create(context.Background(), CreateEstimateRequest{
		ProjectID: 10,
		Title:     "Network rollout",
		Lines: []LineRequest{
			{Kind: LineKindCustom, Description: "Cabling", Quantity: 4, UnitPrice: 250_000, LineTotal: 1},
		},
	}, "tester")
	require.NoError(t, err)

	require.Equal(t, EstimateStatusDraft, e.Status)
	require.NotEmpty(t, e.DocNumber)
	require.Equal(t, 11.0, e.Settings.TaxPct)
	require.Len(t, e.Lines, 1)
	require.Equal(t, 1_000_000.0, e.Lines[0].LineTotal, "submitted lineTotal must be ignored")
	require.Equal(t, 1_000_000.0, e.Totals.Subtotal)
	require.Equal(t, 1_110_000.0, e.Totals.GrandTotal)
}

func TestAddLineFromBlpUsesDailyRate(t *testing.T) {
	svc, _ := newTestEstimateService()
	e, err := svc.Create(context.Background(), CreateEstimateRequest{ProjectID: 1, Title: "t"}, "tester")
	require.NoError(t, err)

	rateID := int64(1)
	qty := 10.0
	e, err = svc.AddLine(context.Background(), e.ID, AddLineRequest{Kind: LineKindBLP, RateID: &rateID, Quantity: &qty}, "tester")
	require.NoError(t, err)

	require.Len(t, e.Lines, 1)
	line := e.Lines[0]
	require.Equal(t, LineKindBLP, line.Kind)
	require.Equal(t, "Senior Engineer", line.Description)
	require.Equal(t, 2_000_000.0, line.UnitPrice)
	require.Equal(t, 20_000_000.0, line.LineTotal)
	require.Equal(t, 20_000_000.0, e.Totals.Subtotal)
}

func TestAddLineAtCostBlnpRequiresExplicitPrice(t *testing.T) {
	svc, _ := newTestEstimateService()
	e, err := svc.Create(context.Background(), CreateEstimateRequest{ProjectID: 1, Title: "t"}, "tester")
	require.NoError(t, err)

	rateID := int64(8)
	e, err = svc.AddLine(context.Background(), e.ID, AddLineRequest{Kind: LineKindBLNP, RateID: &rateID}, "tester")
	require.NoError(t, err)
	require.True(t, e.Lines[0].IsAtCost)
	require.Equal(t, 0.0, e.Lines[0].UnitPrice)

	price := 300_000.0
	e, err = svc.AddLine(context.Background(), e.ID, AddLineRequest{Kind: LineKindBLNP, RateID: &rateID, UnitPrice: &price}, "tester")
	require.NoError(t, err)
	require.Equal(t, 300_000.0, e.Lines[1].UnitPrice)
	require.Equal(t, 300_000.0, e.Totals.Subtotal)
}

func TestAddLineMissingRateID(t *testing.T) {
	svc, _ := newTestEstimateService()
	e, err := svc.Create(context.Background(), CreateEstimateRequest{ProjectID: 1, Title: "t"}, "tester")
	require.NoError(t, err)

	_, err = svc.AddLine(context.Background(), e.ID, AddLineRequest{Kind: LineKindBLP}, "tester")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateLineAndRemoveLineByPosition(t *testing.T) {
	svc, _ := newTestEstimateService()
	e, err := svc.Create(context.Background(), CreateEstimateRequest{
		ProjectID: 1,
		Title:     "t",
		Lines: []LineRequest{
			{Kind: LineKindCustom, Description: "first", Quantity: 1, UnitPrice: 100},
			{Kind: LineKindCustom, Description: "second", Quantity: 1, UnitPrice: 200},
			{Kind: LineKindCustom, Description: "third", Quantity: 1, UnitPrice: 300},
		},
	}, "tester")
	require.NoError(t, err)

	qty := 3.0
	e, err = svc.UpdateLine(context.Background(), e.ID, 1, LineUpdate{Quantity: &qty}, "tester")
	require.NoError(t, err)
	require.Equal(t, 600.0, e.Lines[1].LineTotal)

	e, err = svc.RemoveLine(context.Background(), e.ID, 0, "tester")
	require.NoError(t, err)
	require.Len(t, e.Lines, 2)
	require.Equal(t, "second", e.Lines[0].Description)
	require.Equal(t, 0, e.Lines[0].SortOrder)
	require.Equal(t, 1, e.Lines[1].SortOrder)
	require.Equal(t, 900.0, e.Totals.Subtotal)

	_, err = svc.RemoveLine(context.Background(), e.ID, 5, "tester")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestFinalizedEstimateRejectsWrites(t *testing.T) {
	svc, _ := newTestEstimateService()
	e, err := svc.Create(context.Background(), CreateEstimateRequest{ProjectID: 1, Title: "t"}, "tester")
	require.NoError(t, err)

	e, err = svc.Finalize(context.Background(), e.ID, "tester")
	require.NoError(t, err)
	require.Equal(t, EstimateStatusFinal, e.Status)

	title := "renamed"
	_, err = svc.Update(context.Background(), e.ID, UpdateEstimateRequest{Title: &title}, "tester")
	require.ErrorIs(t, err, shared.ErrImmutable)

	_, err = svc.AddLine(context.Background(), e.ID, AddLineRequest{Kind: LineKindCustom}, "tester")
	require.ErrorIs(t, err, shared.ErrImmutable)

	err = svc.Delete(context.Background(), e.ID, "tester")
	require.ErrorIs(t, err, shared.ErrImmutable)
}

func TestRecostRepairsDriftedTotals(t *testing.T) {
	svc, repo := newTestEstimateService()
	e, err := svc.Create(context.Background(), CreateEstimateRequest{
		ProjectID: 1,
		Title:     "t",
		Lines:     []LineRequest{{Kind: LineKindCustom, Quantity: 2, UnitPrice: 500}},
	}, "tester")
	require.NoError(t, err)

	// Corrupt the persisted read model behind the service's back.
	stored := repo.estimates[e.ID]
	stored.Totals.GrandTotal = 1
	stored.Lines[0].LineTotal = 999

	res, err := svc.Recost(context.Background(), e.ID, "cron")
	require.NoError(t, err)
	require.True(t, res.Drifted)
	require.Equal(t, 1.0, res.Before.GrandTotal)
	require.Equal(t, 1110.0, res.After.GrandTotal)

	e, err = svc.Get(context.Background(), e.ID)
	require.NoError(t, err)
	require.Equal(t, 1110.0, e.Totals.GrandTotal)
	require.Equal(t, 1000.0, e.Lines[0].LineTotal)

	res, err = svc.Recost(context.Background(), e.ID, "cron")
	require.NoError(t, err)
	require.False(t, res.Drifted)
}

func TestUpdateReplacesLineListAndReprices(t *testing.T) {
	svc, _ := newTestEstimateService()
	e, err := svc.Create(context.Background(), CreateEstimateRequest{
		ProjectID: 1,
		Title:     "t",
		Lines:     []LineRequest{{Kind: LineKindCustom, Quantity: 1, UnitPrice: 100}},
	}, "tester")
	require.NoError(t, err)

	lines := []LineRequest{
		{Kind: LineKindCustom, Description: "replacement", Quantity: 2, UnitPrice: 400},
	}
	settings := DefaultSettings()
	settings.DiscountPct = 10
	e, err = svc.Update(context.Background(), e.ID, UpdateEstimateRequest{Settings: &settings, Lines: &lines}, "tester")
	require.NoError(t, err)

	require.Len(t, e.Lines, 1)
	require.Equal(t, "replacement", e.Lines[0].Description)
	require.Equal(t, 800.0, e.Totals.Subtotal)
	require.Equal(t, 80.0, e.Totals.Discount)
	require.Equal(t, 720.0, e.Totals.DPP)
	require.InDelta(t, 799.2, e.Totals.GrandTotal, 1e-9)
}
