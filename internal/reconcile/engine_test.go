package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farxc/budget_engine/internal/cache"
	"github.com/farxc/budget_engine/internal/hierarchy"
	"github.com/farxc/budget_engine/internal/reference"
	"github.com/farxc/budget_engine/internal/store"
)

type fakeActuals struct {
	byMonth   []store.MonthTotal
	byCenter  []store.CenterTotal
	byAccount []store.AccountTotal
}

func (f *fakeActuals) TotalsByMonth(ctx context.Context, ano int) ([]store.MonthTotal, error) {
	return f.byMonth, nil
}

func (f *fakeActuals) TotalsByCenter(ctx context.Context, ano int, mes string) ([]store.CenterTotal, error) {
	return f.byCenter, nil
}

func (f *fakeActuals) TotalsByAccount(ctx context.Context, ano int, mes string) ([]store.AccountTotal, error) {
	return f.byAccount, nil
}

type fakeProvisions struct {
	byMonth  []store.MonthTotal
	byCenter []store.CenterTotal
}

func (f *fakeProvisions) PendingTotalsByMonth(ctx context.Context, ano int) ([]store.MonthTotal, error) {
	return f.byMonth, nil
}

func (f *fakeProvisions) PendingTotalsByCenter(ctx context.Context, ano int, mes string) ([]store.CenterTotal, error) {
	return f.byCenter, nil
}

type fakeTransfers struct {
	adjustments []store.CenterAdjustment
}

func (f *fakeTransfers) NetAdjustments(ctx context.Context, ano int, mes string) ([]store.CenterAdjustment, error) {
	return f.adjustments, nil
}

func refStore(budget []reference.BudgetLine) *reference.Store {
	centers := []reference.CostCenter{
		reference.NewCostCenter("01020500001", "GASCOM", "Instalação Caçu", "Centro-Oeste", "Caçu"),
		reference.NewCostCenter("01020504001", "GASCOM", "Base Caçu", "Centro-Oeste", "Caçu"),
		reference.NewCostCenter("09090900001", "COS", "Custos Administrativos", "Sede", "Sede"),
	}
	accounts := []reference.Account{
		{Codigo: "3010101", Descricao: "Serviços de Manutenção"},
	}
	return reference.NewStore(centers, accounts, budget, cache.New(), nil)
}

func budgetLine(centro, ativo, conta string, valores [12]float64) reference.BudgetLine {
	return reference.BudgetLine{
		CentroGastoCodigo:   centro,
		Ativo:               ativo,
		ContaContabilCodigo: conta,
		ContaDescricao:      "Serviços de Manutenção",
		Valores:             valores,
	}
}

func newEngine(ref *reference.Store, actuals *fakeActuals, provisions *fakeProvisions, transfers *fakeTransfers) *Engine {
	return NewEngine(ref, actuals, provisions, transfers, cache.New(), nil)
}

func TestMonthlyComparisonZeroFillsAllMonths(t *testing.T) {
	valores := [12]float64{}
	valores[0] = 1000
	ref := refStore([]reference.BudgetLine{budgetLine("01020504001", "GASCOM", "3010101", valores)})

	actuals := &fakeActuals{byMonth: []store.MonthTotal{{Mes: "JAN", Total: 800}}}
	provisions := &fakeProvisions{byMonth: []store.MonthTotal{{Mes: "JAN", Total: 100}}}
	engine := newEngine(ref, actuals, provisions, &fakeTransfers{})

	rows, err := engine.MonthlyComparison(context.Background(), 2026)
	require.NoError(t, err)
	require.Len(t, rows, 12)

	jan := rows[0]
	assert.Equal(t, "JAN", jan.Mes)
	assert.Equal(t, 1000.0, jan.Orcado)
	assert.Equal(t, 800.0, jan.Realizado)
	assert.Equal(t, 100.0, jan.Provisionado)
	assert.Equal(t, 900.0, jan.Executado)
	assert.Equal(t, -100.0, jan.Desvio)
	assert.InDelta(t, -10.0, jan.DesvioPct, 0.001)
	assert.Equal(t, StatusAbaixo, jan.Status)

	// Months with nothing on either side come back zero filled and equal.
	fev := rows[1]
	assert.Equal(t, "FEV", fev.Mes)
	assert.Equal(t, 0.0, fev.Realizado)
	assert.Equal(t, 0.0, fev.Provisionado)
	assert.Equal(t, StatusIgual, fev.Status)
}

func TestZeroBudgetPoliciesDiverge(t *testing.T) {
	ref := refStore(nil)
	actuals := &fakeActuals{
		byMonth:  []store.MonthTotal{{Mes: "JAN", Total: 150}},
		byCenter: []store.CenterTotal{{CentroGastoCodigo: "01020504001", Ativo: "GASCOM", Total: 150}},
	}
	engine := newEngine(ref, actuals, &fakeProvisions{}, &fakeTransfers{})

	monthly, err := engine.MonthlyComparison(context.Background(), 2026)
	require.NoError(t, err)
	assert.Equal(t, 0.0, monthly[0].DesvioPct)
	assert.Equal(t, StatusAcima, monthly[0].Status)

	centers, err := engine.ComparisonByCenter(context.Background(), 2026, "")
	require.NoError(t, err)
	require.Len(t, centers, 1)
	assert.Equal(t, 100.0, centers[0].DesvioPct)
}

func TestComparisonByCenterAppliesTransferAdjustments(t *testing.T) {
	valores := [12]float64{}
	valores[0] = 1000
	ref := refStore([]reference.BudgetLine{budgetLine("01020504001", "GASCOM", "3010101", valores)})

	actuals := &fakeActuals{byCenter: []store.CenterTotal{
		{CentroGastoCodigo: "01020504001", Ativo: "GASCOM", Total: 700},
	}}
	transfers := &fakeTransfers{adjustments: []store.CenterAdjustment{
		{CentroGastoCodigo: "01020504001", Valor: -200},
		{CentroGastoCodigo: "01020500001", Valor: 200},
	}}
	engine := newEngine(ref, actuals, &fakeProvisions{}, transfers)

	rows, err := engine.ComparisonByCenter(context.Background(), 2026, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byCode := map[string]CenterRow{}
	for _, row := range rows {
		byCode[row.CentroGastoCodigo] = row
	}
	assert.Equal(t, 800.0, byCode["01020504001"].Orcado)
	assert.Equal(t, -100.0, byCode["01020504001"].Desvio)
	assert.Equal(t, 200.0, byCode["01020500001"].Orcado)
	assert.Equal(t, "GASCOM", byCode["01020500001"].Ativo)
}

func TestComparisonByCenterUnknownAdjustmentCenter(t *testing.T) {
	transfers := &fakeTransfers{adjustments: []store.CenterAdjustment{
		{CentroGastoCodigo: "77777777001", Valor: 500},
	}}
	engine := newEngine(refStore(nil), &fakeActuals{}, &fakeProvisions{}, transfers)

	rows, err := engine.ComparisonByCenter(context.Background(), 2026, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "77777777001", rows[0].CentroGastoCodigo)
	assert.Equal(t, hierarchy.UnknownClassName, rows[0].Ativo)
	assert.Equal(t, 500.0, rows[0].Orcado)
}

func TestMonthlyComparisonIgnoresTransferAdjustments(t *testing.T) {
	valores := [12]float64{}
	valores[0] = 1000
	budget := []reference.BudgetLine{budgetLine("01020504001", "GASCOM", "3010101", valores)}
	actuals := &fakeActuals{byMonth: []store.MonthTotal{{Mes: "JAN", Total: 800}}}
	transfers := &fakeTransfers{adjustments: []store.CenterAdjustment{
		{CentroGastoCodigo: "01020504001", Valor: -200},
		{CentroGastoCodigo: "01020500001", Valor: 200},
	}}

	// Transfers move budget between centers within the same month, so the
	// monthly totals already net to zero and the rollup stays untouched.
	with := newEngine(refStore(budget), actuals, &fakeProvisions{}, transfers)
	without := newEngine(refStore(budget), actuals, &fakeProvisions{}, &fakeTransfers{})

	adjusted, err := with.MonthlyComparison(context.Background(), 2026)
	require.NoError(t, err)
	plain, err := without.MonthlyComparison(context.Background(), 2026)
	require.NoError(t, err)
	assert.Equal(t, plain, adjusted)
	assert.Equal(t, 1000.0, adjusted[0].Orcado)
}

func TestComparisonByCenterOrdersByAbsoluteVariance(t *testing.T) {
	ref := refStore(nil)
	actuals := &fakeActuals{byCenter: []store.CenterTotal{
		{CentroGastoCodigo: "01020500001", Ativo: "GASCOM", Total: 50},
		{CentroGastoCodigo: "01020504001", Ativo: "GASCOM", Total: -300},
	}}
	engine := newEngine(ref, actuals, &fakeProvisions{}, &fakeTransfers{})

	rows, err := engine.ComparisonByCenter(context.Background(), 2026, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "01020504001", rows[0].CentroGastoCodigo)
	assert.Equal(t, "01020500001", rows[1].CentroGastoCodigo)
}

func TestComparisonByAccountFillsDescriptions(t *testing.T) {
	valores := [12]float64{}
	valores[0] = 500
	ref := refStore([]reference.BudgetLine{budgetLine("01020504001", "GASCOM", "3010101", valores)})

	actuals := &fakeActuals{byAccount: []store.AccountTotal{
		{ContaContabilCodigo: "3010101", Descricao: "Serviços de Manutenção", Total: 400},
		{ContaContabilCodigo: "9999999", Descricao: "", Total: 50},
	}}
	engine := newEngine(ref, actuals, &fakeProvisions{}, &fakeTransfers{})

	rows, err := engine.ComparisonByAccount(context.Background(), 2026, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Sorted by realized descending.
	assert.Equal(t, "3010101", rows[0].ContaContabilCodigo)
	assert.Equal(t, "Serviços de Manutenção", rows[0].Descricao)
	assert.Equal(t, NoDescription, rows[1].Descricao)
	assert.Equal(t, 100.0, rows[1].DesvioPct)
}

func TestAssetGroupSummary(t *testing.T) {
	valores := [12]float64{}
	valores[0] = 1000
	ref := refStore([]reference.BudgetLine{budgetLine("01020504001", "GASCOM", "3010101", valores)})

	actuals := &fakeActuals{byCenter: []store.CenterTotal{
		{CentroGastoCodigo: "01020504001", Ativo: "GASCOM", Total: 300},
		{CentroGastoCodigo: "01020500001", Ativo: "GASCOM", Total: 200},
		{CentroGastoCodigo: "09090900001", Ativo: "COS", Total: 100},
	}}
	engine := newEngine(ref, actuals, &fakeProvisions{}, &fakeTransfers{})

	rows, err := engine.AssetGroupSummary(context.Background(), 2026, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "GASCOM", rows[0].Ativo)
	assert.Equal(t, 1000.0, rows[0].Orcado)
	assert.Equal(t, 500.0, rows[0].Realizado)
	assert.Equal(t, 2, rows[0].CentrosCount)
	assert.False(t, rows[0].SemHierarquia)

	assert.Equal(t, "COS", rows[1].Ativo)
	assert.True(t, rows[1].SemHierarquia)
	// Summary level keeps the zero budget percentage at zero.
	assert.Equal(t, 0.0, rows[1].DesvioPct)
}

func TestDrillDownOrdersParentsFirst(t *testing.T) {
	ref := refStore(nil)
	actuals := &fakeActuals{byCenter: []store.CenterTotal{
		{CentroGastoCodigo: "01020504001", Ativo: "GASCOM", Total: 300},
		{CentroGastoCodigo: "01020500001", Ativo: "GASCOM", Total: 100},
		{CentroGastoCodigo: "09090900001", Ativo: "COS", Total: 50},
	}}
	engine := newEngine(ref, actuals, &fakeProvisions{}, &fakeTransfers{})

	rows, err := engine.DrillDown(context.Background(), "GASCOM", 2026, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "01020500001", rows[0].CentroGastoCodigo)
	assert.Equal(t, "0", rows[0].Classe)
	assert.Equal(t, "Instalação Principal", rows[0].ClasseNome)
	assert.Equal(t, "01020504001", rows[1].CentroGastoCodigo)
	assert.Equal(t, rows[0].CodigoPai, rows[1].CodigoPai)
}

func TestTopVariances(t *testing.T) {
	ref := refStore(nil)
	actuals := &fakeActuals{byCenter: []store.CenterTotal{
		{CentroGastoCodigo: "01020500001", Ativo: "GASCOM", Total: 10},
		{CentroGastoCodigo: "01020504001", Ativo: "GASCOM", Total: 500},
		{CentroGastoCodigo: "09090900001", Ativo: "COS", Total: 40},
	}}
	engine := newEngine(ref, actuals, &fakeProvisions{}, &fakeTransfers{})

	rows, err := engine.TopVariances(context.Background(), 2, 2026, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "01020504001", rows[0].CentroGastoCodigo)
	assert.Equal(t, "09090900001", rows[1].CentroGastoCodigo)
}

func TestYearKPIsBelowTolerance(t *testing.T) {
	valores := [12]float64{}
	for i := range valores {
		valores[i] = 100000
	}
	ref := refStore([]reference.BudgetLine{budgetLine("01020504001", "GASCOM", "3010101", valores)})

	byMonth := make([]store.MonthTotal, 0, 11)
	for i, mes := range reference.MonthOrder {
		if i == 11 {
			break
		}
		byMonth = append(byMonth, store.MonthTotal{Mes: mes, Total: 100000})
	}
	engine := newEngine(ref, &fakeActuals{byMonth: byMonth}, &fakeProvisions{}, &fakeTransfers{})

	kpis, err := engine.YearKPIs(context.Background(), 2026)
	require.NoError(t, err)

	assert.Equal(t, 1200000.0, kpis.OrcadoTotal)
	assert.Equal(t, 1100000.0, kpis.ExecutadoTotal)
	assert.InDelta(t, 91.666, kpis.ExecucaoPct, 0.01)
	assert.InDelta(t, -8.333, kpis.DesvioPct, 0.01)
	assert.Equal(t, 11, kpis.MesesComDados)
	// -8.3% falls outside the ±5% band.
	assert.Equal(t, StatusGeralAbaixo, kpis.StatusGeral)
}

func TestYearKPIsSemDados(t *testing.T) {
	engine := newEngine(refStore(nil), &fakeActuals{}, &fakeProvisions{}, &fakeTransfers{})

	kpis, err := engine.YearKPIs(context.Background(), 2026)
	require.NoError(t, err)
	assert.Equal(t, StatusGeralSemDados, kpis.StatusGeral)
	assert.Equal(t, 0, kpis.MesesComDados)
}

func TestComparisonByCenterIsIdempotent(t *testing.T) {
	ref := refStore(nil)
	actuals := &fakeActuals{byCenter: []store.CenterTotal{
		{CentroGastoCodigo: "01020504001", Ativo: "GASCOM", Total: 100},
	}}
	engine := newEngine(ref, actuals, &fakeProvisions{}, &fakeTransfers{})

	first, err := engine.ComparisonByCenter(context.Background(), 2026, "")
	require.NoError(t, err)
	second, err := engine.ComparisonByCenter(context.Background(), 2026, "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
