// Package reconcile joins budget baseline aggregates with realized and
// provisioned ledger totals to produce the three way comparison served by
// the dashboards.
package reconcile

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/farxc/budget_engine/internal/cache"
	"github.com/farxc/budget_engine/internal/hierarchy"
	"github.com/farxc/budget_engine/internal/reference"
	"github.com/farxc/budget_engine/internal/store"
)

// DefaultTTL bounds staleness of ledger aggregations. It is shorter than
// the reference TTL because actuals change more often than budget files.
const DefaultTTL = 60 * time.Second

// Variance status buckets per row.
const (
	StatusAbaixo = "abaixo"
	StatusAcima  = "acima"
	StatusIgual  = "igual"
)

// Overall KPI buckets. The tolerance band is ±5% around the budget.
const (
	StatusGeralNormal   = "normal"
	StatusGeralAcima    = "acima"
	StatusGeralAbaixo   = "abaixo"
	StatusGeralSemDados = "sem_dados"

	toleranceBandPct = 5.0
)

type ActualsReader interface {
	TotalsByMonth(ctx context.Context, ano int) ([]store.MonthTotal, error)
	TotalsByCenter(ctx context.Context, ano int, mes string) ([]store.CenterTotal, error)
	TotalsByAccount(ctx context.Context, ano int, mes string) ([]store.AccountTotal, error)
}

type ProvisionsReader interface {
	PendingTotalsByMonth(ctx context.Context, ano int) ([]store.MonthTotal, error)
	PendingTotalsByCenter(ctx context.Context, ano int, mes string) ([]store.CenterTotal, error)
}

type TransfersReader interface {
	NetAdjustments(ctx context.Context, ano int, mes string) ([]store.CenterAdjustment, error)
}

// MonthlyRow is one month of the budget vs. executed comparison.
type MonthlyRow struct {
	Mes          string  `json:"mes"`
	Orcado       float64 `json:"orcado"`
	Realizado    float64 `json:"realizado"`
	Provisionado float64 `json:"provisionado"`
	Executado    float64 `json:"executado"`
	Desvio       float64 `json:"desvio"`
	DesvioPct    float64 `json:"desvio_pct"`
	Status       string  `json:"status"`
}

// CenterRow is the comparison keyed by (cost center, asset group).
type CenterRow struct {
	CentroGastoCodigo string  `json:"centro_gasto_codigo"`
	Ativo             string  `json:"ativo"`
	Orcado            float64 `json:"orcado"`
	Realizado         float64 `json:"realizado"`
	Provisionado      float64 `json:"provisionado"`
	Executado         float64 `json:"executado"`
	Desvio            float64 `json:"desvio"`
	DesvioPct         float64 `json:"desvio_pct"`
	Status            string  `json:"status"`
}

// AccountRow is the comparison keyed by account. Provisions are not
// tracked per account, so there is no provisioned column here.
type AccountRow struct {
	ContaContabilCodigo string  `json:"conta_contabil_codigo"`
	Descricao           string  `json:"descricao"`
	Orcado              float64 `json:"orcado"`
	Realizado           float64 `json:"realizado"`
	Desvio              float64 `json:"desvio"`
	DesvioPct           float64 `json:"desvio_pct"`
	Status              string  `json:"status"`
}

// NoDescription fills accounts the chart of accounts does not know.
const NoDescription = "Sem descrição"

// AssetGroupRow aggregates the per-center comparison one level up.
type AssetGroupRow struct {
	Ativo         string  `json:"ativo"`
	Orcado        float64 `json:"orcado"`
	Realizado     float64 `json:"realizado"`
	Provisionado  float64 `json:"provisionado"`
	Executado     float64 `json:"executado"`
	Desvio        float64 `json:"desvio"`
	DesvioPct     float64 `json:"desvio_pct"`
	CentrosCount  int     `json:"centros_count"`
	SemHierarquia bool    `json:"is_sem_hierarquia"`
	Status        string  `json:"status"`
}

// DrillDownRow enriches a center row with hierarchy fields so the caller
// can indent children under their parent installation.
type DrillDownRow struct {
	CenterRow
	Descricao     string `json:"descricao"`
	CodigoPai     string `json:"codigo_pai"`
	Classe        string `json:"classe"`
	ClasseNome    string `json:"classe_nome"`
	SemHierarquia bool   `json:"is_sem_hierarquia"`
}

// KPIs summarizes the full year.
type KPIs struct {
	OrcadoTotal       float64 `json:"orcado_total"`
	RealizadoTotal    float64 `json:"realizado_total"`
	ProvisionadoTotal float64 `json:"provisionado_total"`
	ExecutadoTotal    float64 `json:"executado_total"`
	Desvio            float64 `json:"desvio"`
	DesvioPct         float64 `json:"desvio_pct"`
	ExecucaoPct       float64 `json:"execucao_pct"`
	MesesComDados     int     `json:"meses_com_dados"`
	StatusGeral       string  `json:"status_geral"`
}

type Engine struct {
	reference  *reference.Store
	actuals    ActualsReader
	provisions ProvisionsReader
	transfers  TransfersReader
	cache      *cache.Cache
	ttl        time.Duration
	logger     *zap.Logger
}

func NewEngine(ref *reference.Store, actuals ActualsReader, provisions ProvisionsReader, transfers TransfersReader, c *cache.Cache, logger *zap.Logger) *Engine {
	if c == nil {
		c = cache.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		reference:  ref,
		actuals:    actuals,
		provisions: provisions,
		transfers:  transfers,
		cache:      c,
		ttl:        DefaultTTL,
		logger:     logger,
	}
}

// SetTTL overrides the aggregation cache TTL.
func (e *Engine) SetTTL(ttl time.Duration) { e.ttl = ttl }

// MonthlyComparison always yields 12 rows, one per month in calendar
// order, with missing sides zero filled. A month with zero budget keeps
// desvio_pct at 0 whatever the executed amount is.
func (e *Engine) MonthlyComparison(ctx context.Context, ano int) ([]MonthlyRow, error) {
	key := fmt.Sprintf("reconcile:monthly:%d", ano)
	if cached, ok := e.cache.Get(key); ok {
		return cached.([]MonthlyRow), nil
	}

	realized, err := e.actuals.TotalsByMonth(ctx, ano)
	if err != nil {
		return nil, err
	}
	provisioned, err := e.provisions.PendingTotalsByMonth(ctx, ano)
	if err != nil {
		return nil, err
	}

	realizedByMonth := make(map[string]float64, len(realized))
	for _, row := range realized {
		realizedByMonth[row.Mes] += row.Total
	}
	provisionedByMonth := make(map[string]float64, len(provisioned))
	for _, row := range provisioned {
		provisionedByMonth[row.Mes] += row.Total
	}
	budgetByMonth := make(map[string]float64, 12)
	for _, row := range e.reference.BudgetByMonth() {
		budgetByMonth[row.Mes] = row.ValorOrcado
	}

	rows := make([]MonthlyRow, 0, len(reference.MonthOrder))
	for _, mes := range reference.MonthOrder {
		row := MonthlyRow{
			Mes:          mes,
			Orcado:       budgetByMonth[mes],
			Realizado:    realizedByMonth[mes],
			Provisionado: provisionedByMonth[mes],
		}
		row.Executado = row.Realizado + row.Provisionado
		row.Desvio = row.Executado - row.Orcado
		row.DesvioPct = monthlyVariancePct(row.Orcado, row.Desvio)
		row.Status = varianceStatus(row.Desvio)
		rows = append(rows, row)
	}

	e.cache.Set(key, rows, e.ttl)
	return rows, nil
}

// ComparisonByCenter outer joins budget, realized and pending provisioned
// totals keyed by (center, asset group). Approved transfers shift the
// effective budget between centers before variance is computed. Rows come
// back ordered by absolute variance, largest first.
//
// The zero budget policy here differs from the monthly one: unplanned
// spend against a zero budget reads as a 100% variance.
func (e *Engine) ComparisonByCenter(ctx context.Context, ano int, mes string) ([]CenterRow, error) {
	key := fmt.Sprintf("reconcile:center:%d:%s", ano, mes)
	if cached, ok := e.cache.Get(key); ok {
		return cached.([]CenterRow), nil
	}

	realized, err := e.actuals.TotalsByCenter(ctx, ano, mes)
	if err != nil {
		return nil, err
	}
	provisioned, err := e.provisions.PendingTotalsByCenter(ctx, ano, mes)
	if err != nil {
		return nil, err
	}
	adjustments, err := e.transfers.NetAdjustments(ctx, ano, mes)
	if err != nil {
		return nil, err
	}

	type centerKey struct {
		codigo string
		ativo  string
	}
	merged := make(map[centerKey]*CenterRow)
	rowFor := func(codigo, ativo string) *CenterRow {
		k := centerKey{codigo, ativo}
		if row, ok := merged[k]; ok {
			return row
		}
		row := &CenterRow{CentroGastoCodigo: codigo, Ativo: ativo}
		merged[k] = row
		return row
	}

	for _, b := range e.reference.BudgetByCenter(mes) {
		rowFor(b.CentroGastoCodigo, b.Ativo).Orcado += b.ValorOrcado
	}
	for _, r := range realized {
		rowFor(r.CentroGastoCodigo, r.Ativo).Realizado += r.Total
	}
	for _, p := range provisioned {
		rowFor(p.CentroGastoCodigo, p.Ativo).Provisionado += p.Total
	}
	for _, adj := range adjustments {
		ativo := hierarchy.UnknownClassName
		if center, ok := e.reference.CenterByCode(adj.CentroGastoCodigo); ok {
			ativo = center.Ativo
		}
		rowFor(adj.CentroGastoCodigo, ativo).Orcado += adj.Valor
	}

	rows := make([]CenterRow, 0, len(merged))
	for _, row := range merged {
		row.Executado = row.Realizado + row.Provisionado
		row.Desvio = row.Executado - row.Orcado
		row.DesvioPct = centerVariancePct(row.Orcado, row.Executado, row.Desvio)
		row.Status = varianceStatus(row.Desvio)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		di, dj := math.Abs(rows[i].Desvio), math.Abs(rows[j].Desvio)
		if di != dj {
			return di > dj
		}
		return rows[i].CentroGastoCodigo < rows[j].CentroGastoCodigo
	})

	e.cache.Set(key, rows, e.ttl)
	return rows, nil
}

// ComparisonByAccount joins budget and realized totals keyed by account.
// Accounts missing from the chart of accounts get the explicit
// "Sem descrição" sentinel. Uses the same zero budget policy as the
// per-center comparison.
func (e *Engine) ComparisonByAccount(ctx context.Context, ano int, mes string) ([]AccountRow, error) {
	key := fmt.Sprintf("reconcile:account:%d:%s", ano, mes)
	if cached, ok := e.cache.Get(key); ok {
		return cached.([]AccountRow), nil
	}

	realized, err := e.actuals.TotalsByAccount(ctx, ano, mes)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]*AccountRow)
	rowFor := func(codigo string) *AccountRow {
		if row, ok := merged[codigo]; ok {
			return row
		}
		row := &AccountRow{ContaContabilCodigo: codigo}
		merged[codigo] = row
		return row
	}

	for _, b := range e.reference.BudgetByAccount(mes) {
		row := rowFor(b.ContaContabilCodigo)
		row.Orcado += b.ValorOrcado
		row.Descricao = b.Descricao
	}
	for _, r := range realized {
		row := rowFor(r.ContaContabilCodigo)
		row.Realizado += r.Total
		if row.Descricao == "" {
			row.Descricao = r.Descricao
		}
	}

	rows := make([]AccountRow, 0, len(merged))
	for _, row := range merged {
		if row.Descricao == "" {
			if account, ok := e.reference.AccountByCode(row.ContaContabilCodigo); ok {
				row.Descricao = account.Descricao
			}
		}
		if row.Descricao == "" {
			row.Descricao = NoDescription
		}
		row.Desvio = row.Realizado - row.Orcado
		row.DesvioPct = centerVariancePct(row.Orcado, row.Realizado, row.Desvio)
		row.Status = varianceStatus(row.Desvio)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Realizado != rows[j].Realizado {
			return rows[i].Realizado > rows[j].Realizado
		}
		return rows[i].ContaContabilCodigo < rows[j].ContaContabilCodigo
	})

	e.cache.Set(key, rows, e.ttl)
	return rows, nil
}

// AssetGroupSummary rolls the per-center comparison up by asset group,
// sorted by budget descending. The summary level keeps the monthly zero
// budget policy (0%, not 100%).
func (e *Engine) AssetGroupSummary(ctx context.Context, ano int, mes string) ([]AssetGroupRow, error) {
	centers, err := e.ComparisonByCenter(ctx, ano, mes)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]*AssetGroupRow)
	for _, c := range centers {
		row, ok := merged[c.Ativo]
		if !ok {
			row = &AssetGroupRow{
				Ativo:         c.Ativo,
				SemHierarquia: isNoHierarchyGroup(c.Ativo),
			}
			merged[c.Ativo] = row
		}
		row.Orcado += c.Orcado
		row.Realizado += c.Realizado
		row.Provisionado += c.Provisionado
		row.CentrosCount++
	}

	rows := make([]AssetGroupRow, 0, len(merged))
	for _, row := range merged {
		row.Executado = row.Realizado + row.Provisionado
		row.Desvio = row.Executado - row.Orcado
		row.DesvioPct = monthlyVariancePct(row.Orcado, row.Desvio)
		row.Status = varianceStatus(row.Desvio)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Orcado != rows[j].Orcado {
			return rows[i].Orcado > rows[j].Orcado
		}
		return rows[i].Ativo < rows[j].Ativo
	})
	return rows, nil
}

// DrillDown filters the per-center comparison to one asset group and
// enriches it with hierarchy fields. Rows are grouped by parent code with
// the parent installation (class digit '0') first inside each family, so
// downstream indentation renders correctly.
func (e *Engine) DrillDown(ctx context.Context, ativo string, ano int, mes string) ([]DrillDownRow, error) {
	centers, err := e.ComparisonByCenter(ctx, ano, mes)
	if err != nil {
		return nil, err
	}

	rows := make([]DrillDownRow, 0)
	for _, c := range centers {
		if c.Ativo != ativo {
			continue
		}
		row := DrillDownRow{CenterRow: c}
		if center, ok := e.reference.CenterByCode(c.CentroGastoCodigo); ok {
			row.Descricao = center.Descricao
			row.CodigoPai = center.CodigoPai
			row.Classe = center.Classe
			row.ClasseNome = center.ClasseNome
			row.SemHierarquia = center.SemHierarquia
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CodigoPai != rows[j].CodigoPai {
			return rows[i].CodigoPai < rows[j].CodigoPai
		}
		iParent, jParent := rows[i].Classe == "0", rows[j].Classe == "0"
		if iParent != jParent {
			return iParent
		}
		return rows[i].CentroGastoCodigo < rows[j].CentroGastoCodigo
	})
	return rows, nil
}

// TopVariances returns the n centers with the largest absolute variance.
func (e *Engine) TopVariances(ctx context.Context, n int, ano int, mes string) ([]CenterRow, error) {
	rows, err := e.ComparisonByCenter(ctx, ano, mes)
	if err != nil {
		return nil, err
	}
	if n > 0 && n < len(rows) {
		rows = rows[:n]
	}
	return rows, nil
}

// YearKPIs sums the monthly comparison into the year's headline numbers.
func (e *Engine) YearKPIs(ctx context.Context, ano int) (KPIs, error) {
	monthly, err := e.MonthlyComparison(ctx, ano)
	if err != nil {
		return KPIs{}, err
	}

	var kpis KPIs
	for _, row := range monthly {
		kpis.OrcadoTotal += row.Orcado
		kpis.RealizadoTotal += row.Realizado
		kpis.ProvisionadoTotal += row.Provisionado
		if row.Realizado != 0 {
			kpis.MesesComDados++
		}
	}
	kpis.ExecutadoTotal = kpis.RealizadoTotal + kpis.ProvisionadoTotal
	kpis.Desvio = kpis.ExecutadoTotal - kpis.OrcadoTotal
	if kpis.OrcadoTotal != 0 {
		kpis.DesvioPct = kpis.Desvio / kpis.OrcadoTotal * 100
		kpis.ExecucaoPct = kpis.ExecutadoTotal / kpis.OrcadoTotal * 100
	}

	switch {
	case kpis.OrcadoTotal == 0 && kpis.ExecutadoTotal == 0:
		kpis.StatusGeral = StatusGeralSemDados
	case kpis.DesvioPct > toleranceBandPct:
		kpis.StatusGeral = StatusGeralAcima
	case kpis.DesvioPct < -toleranceBandPct:
		kpis.StatusGeral = StatusGeralAbaixo
	default:
		kpis.StatusGeral = StatusGeralNormal
	}
	return kpis, nil
}

// monthlyVariancePct keeps the percentage at zero when there is no budget.
func monthlyVariancePct(orcado, desvio float64) float64 {
	if orcado == 0 {
		return 0
	}
	return desvio / orcado * 100
}

// centerVariancePct reads spend against a zero budget as a 100% variance.
// This intentionally diverges from the monthly policy.
func centerVariancePct(orcado, executado, desvio float64) float64 {
	if orcado == 0 {
		if executado != 0 {
			return 100
		}
		return 0
	}
	return desvio / orcado * 100
}

func varianceStatus(desvio float64) string {
	switch {
	case desvio < 0:
		return StatusAbaixo
	case desvio > 0:
		return StatusAcima
	default:
		return StatusIgual
	}
}

func isNoHierarchyGroup(ativo string) bool {
	for _, group := range reference.NoHierarchyAssetGroups {
		if ativo == group {
			return true
		}
	}
	return false
}
