package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farxc/budget_engine/internal/apperrors"
	"github.com/farxc/budget_engine/internal/reference"
	"github.com/farxc/budget_engine/internal/store"
)

type fakeScenarioRepo struct {
	scenarios map[int64]*store.ForecastScenario
	entries   map[int64][]store.ForecastEntry
	nextID    int64
}

func newFakeScenarioRepo() *fakeScenarioRepo {
	return &fakeScenarioRepo{
		scenarios: make(map[int64]*store.ForecastScenario),
		entries:   make(map[int64][]store.ForecastEntry),
		nextID:    1,
	}
}

func (r *fakeScenarioRepo) InsertScenario(ctx context.Context, s *store.ForecastScenario) error {
	s.ID = r.nextID
	r.nextID++
	clone := *s
	r.scenarios[s.ID] = &clone
	return nil
}

func (r *fakeScenarioRepo) GetScenario(ctx context.Context, id int64) (*store.ForecastScenario, error) {
	s, ok := r.scenarios[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *fakeScenarioRepo) ListScenarios(ctx context.Context, ano int) ([]store.ForecastScenario, error) {
	var out []store.ForecastScenario
	for _, s := range r.scenarios {
		if ano != 0 && s.Ano != ano {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeScenarioRepo) DeleteScenario(ctx context.Context, id int64) error {
	if _, ok := r.scenarios[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.scenarios, id)
	delete(r.entries, id)
	return nil
}

func (r *fakeScenarioRepo) InsertEntries(ctx context.Context, entries []store.ForecastEntry) error {
	for _, e := range entries {
		r.entries[e.CenarioID] = append(r.entries[e.CenarioID], e)
	}
	return nil
}

func (r *fakeScenarioRepo) ListEntries(ctx context.Context, cenarioID int64) ([]store.ForecastEntry, error) {
	return r.entries[cenarioID], nil
}

type fakeHistory struct {
	rows []store.AccountMonthTotal
}

func (f *fakeHistory) MonthlySeriesByAccount(ctx context.Context, anoInicial, anoFinal int) ([]store.AccountMonthTotal, error) {
	var out []store.AccountMonthTotal
	for _, row := range f.rows {
		if row.Ano >= anoInicial && row.Ano <= anoFinal {
			out = append(out, row)
		}
	}
	return out, nil
}

func historyFor(conta string, ano int, totals ...float64) []store.AccountMonthTotal {
	rows := make([]store.AccountMonthTotal, 0, len(totals))
	for i, total := range totals {
		rows = append(rows, store.AccountMonthTotal{
			ContaContabilCodigo: conta,
			Ano:                 ano,
			Mes:                 reference.MonthOrder[i],
			Total:               total,
		})
	}
	return rows
}

func TestBuildAutomaticPredictsTargetYear(t *testing.T) {
	repo := newFakeScenarioRepo()
	history := &fakeHistory{rows: historyFor("3010101", 2025,
		100, 110, 120, 130, 140, 150, 160, 170, 180, 190, 200, 210)}
	svc := NewScenarioService(repo, history, nil)
	svc.SetClock(func() time.Time {
		return time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	})

	scenario, err := svc.BuildAutomatic(context.Background(), BuildInput{
		Nome:      "Projeção 2026",
		AnoAlvo:   2026,
		Metodo:    MethodLinear,
		CriadoPor: "ana",
	})
	require.NoError(t, err)
	assert.NotZero(t, scenario.ID)
	assert.Equal(t, MethodLinear, scenario.Metodo)

	entries, err := svc.Entries(context.Background(), scenario.ID)
	require.NoError(t, err)
	require.Len(t, entries, 12)

	assert.Equal(t, "JAN", entries[0].Mes)
	assert.Equal(t, 2026, entries[0].Ano)
	assert.InDelta(t, 220, entries[0].ValorPrevisto, 0.5)
	assert.Equal(t, "DEZ", entries[11].Mes)
	assert.InDelta(t, 330, entries[11].ValorPrevisto, 0.5)
	for _, e := range entries {
		assert.Less(t, e.LimiteInferior, e.ValorPrevisto)
		assert.Greater(t, e.LimiteSuperior, e.ValorPrevisto)
	}
}

func TestBuildAutomaticSkipsShortSeries(t *testing.T) {
	repo := newFakeScenarioRepo()
	rows := historyFor("3010101", 2025, 100, 110, 120, 130)
	rows = append(rows, historyFor("3010102", 2025, 999, 888)...)
	svc := NewScenarioService(repo, &fakeHistory{rows: rows}, nil)

	scenario, err := svc.BuildAutomatic(context.Background(), BuildInput{
		Nome:    "Parcial",
		AnoAlvo: 2026,
		Metodo:  MethodLinear,
	})
	require.NoError(t, err)

	entries, err := svc.Entries(context.Background(), scenario.ID)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, "3010101", e.ContaContabilCodigo)
	}
	assert.NotEmpty(t, entries)
}

func TestBuildAutomaticValidation(t *testing.T) {
	svc := NewScenarioService(newFakeScenarioRepo(), &fakeHistory{}, nil)

	_, err := svc.BuildAutomatic(context.Background(), BuildInput{AnoAlvo: 2026})
	assert.Error(t, err)

	_, err = svc.BuildAutomatic(context.Background(), BuildInput{Nome: "x"})
	assert.Error(t, err)
}

func TestBuildAutomaticEmptyHistory(t *testing.T) {
	repo := newFakeScenarioRepo()
	svc := NewScenarioService(repo, &fakeHistory{}, nil)

	scenario, err := svc.BuildAutomatic(context.Background(), BuildInput{
		Nome:    "Vazio",
		AnoAlvo: 2026,
	})
	require.NoError(t, err)

	entries, err := svc.Entries(context.Background(), scenario.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEntriesUnknownScenario(t *testing.T) {
	svc := NewScenarioService(newFakeScenarioRepo(), &fakeHistory{}, nil)

	_, err := svc.Entries(context.Background(), 404)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteScenario(t *testing.T) {
	repo := newFakeScenarioRepo()
	svc := NewScenarioService(repo, &fakeHistory{}, nil)

	scenario, err := svc.BuildAutomatic(context.Background(), BuildInput{Nome: "Tmp", AnoAlvo: 2026})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), scenario.ID))
	err = svc.Delete(context.Background(), scenario.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
