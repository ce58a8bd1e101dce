package forecast

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/farxc/budget_engine/internal/reference"
	"github.com/farxc/budget_engine/internal/store"
)

// MinHistoryPoints is the shortest series worth fitting. Accounts below
// it are skipped when generating a scenario, since the engine itself does
// not enforce a minimum.
const MinHistoryPoints = 3

type ScenarioRepo interface {
	InsertScenario(ctx context.Context, scenario *store.ForecastScenario) error
	GetScenario(ctx context.Context, id int64) (*store.ForecastScenario, error)
	ListScenarios(ctx context.Context, ano int) ([]store.ForecastScenario, error)
	DeleteScenario(ctx context.Context, id int64) error
	InsertEntries(ctx context.Context, entries []store.ForecastEntry) error
	ListEntries(ctx context.Context, cenarioID int64) ([]store.ForecastEntry, error)
}

type HistoryReader interface {
	MonthlySeriesByAccount(ctx context.Context, anoInicial, anoFinal int) ([]store.AccountMonthTotal, error)
}

type ScenarioService struct {
	repo    ScenarioRepo
	history HistoryReader
	now     func() time.Time
	logger  *zap.Logger
}

func NewScenarioService(repo ScenarioRepo, history HistoryReader, logger *zap.Logger) *ScenarioService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScenarioService{repo: repo, history: history, now: time.Now, logger: logger}
}

// SetClock injects a deterministic clock.
func (s *ScenarioService) SetClock(now func() time.Time) { s.now = now }

// BuildInput describes an automatic scenario request.
type BuildInput struct {
	Nome       string
	Descricao  string
	AnoAlvo    int
	AnoInicial int
	Metodo     string
	Window     int
	Alpha      float64
	CriadoPor  string
}

// BuildAutomatic fits the chosen method to each account's historical
// series and persists one scenario with the target year's projected
// months. Accounts with fewer than MinHistoryPoints observed months are
// skipped rather than fitted on noise.
func (s *ScenarioService) BuildAutomatic(ctx context.Context, input BuildInput) (*store.ForecastScenario, error) {
	if input.Nome == "" {
		return nil, fmt.Errorf("nome do cenário é obrigatório")
	}
	if input.AnoAlvo == 0 {
		return nil, fmt.Errorf("ano alvo é obrigatório")
	}
	if input.Metodo == "" {
		input.Metodo = MethodHybrid
	}
	if input.AnoInicial == 0 {
		input.AnoInicial = input.AnoAlvo - 2
	}

	history, err := s.history.MonthlySeriesByAccount(ctx, input.AnoInicial, input.AnoAlvo-1)
	if err != nil {
		return nil, err
	}

	series := groupSeries(history)
	accounts := make([]string, 0, len(series))
	for conta := range series {
		accounts = append(accounts, conta)
	}
	sort.Strings(accounts)

	var entries []store.ForecastEntry
	skipped := 0
	forecaster := New()
	params := Params{Window: input.Window, Alpha: input.Alpha}

	for _, conta := range accounts {
		points := series[conta]
		if len(points) < MinHistoryPoints {
			skipped++
			continue
		}

		if err := forecaster.Fit(points, input.Metodo, params); err != nil {
			return nil, err
		}

		last := points[len(points)-1].Month
		horizon := monthsUntilYearEnd(last, input.AnoAlvo)
		predictions, err := forecaster.Predict(horizon)
		if err != nil {
			return nil, err
		}

		for _, p := range predictions {
			if p.Month.Year() != input.AnoAlvo {
				continue
			}
			entries = append(entries, store.ForecastEntry{
				ContaContabilCodigo: conta,
				Ano:                 p.Month.Year(),
				Mes:                 reference.MonthCode(p.Month.Month()),
				ValorPrevisto:       p.Forecast,
				LimiteInferior:      p.Lower,
				LimiteSuperior:      p.Upper,
			})
		}
	}

	scenario := &store.ForecastScenario{
		Nome:        input.Nome,
		Descricao:   input.Descricao,
		Ano:         input.AnoAlvo,
		Metodo:      input.Metodo,
		CriadoPor:   input.CriadoPor,
		DataCriacao: s.now(),
	}
	if err := s.repo.InsertScenario(ctx, scenario); err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].CenarioID = scenario.ID
	}
	if err := s.repo.InsertEntries(ctx, entries); err != nil {
		return nil, err
	}

	s.logger.Info("forecast scenario built",
		zap.String("op", "forecast.BuildAutomatic"),
		zap.Int64("cenario_id", scenario.ID),
		zap.String("metodo", input.Metodo),
		zap.Int("contas_previstas", len(accounts)-skipped),
		zap.Int("contas_puladas", skipped),
		zap.Int("lancamentos", len(entries)))
	return scenario, nil
}

func (s *ScenarioService) Get(ctx context.Context, id int64) (*store.ForecastScenario, error) {
	return s.repo.GetScenario(ctx, id)
}

func (s *ScenarioService) List(ctx context.Context, ano int) ([]store.ForecastScenario, error) {
	return s.repo.ListScenarios(ctx, ano)
}

func (s *ScenarioService) Entries(ctx context.Context, cenarioID int64) ([]store.ForecastEntry, error) {
	if _, err := s.repo.GetScenario(ctx, cenarioID); err != nil {
		return nil, err
	}
	return s.repo.ListEntries(ctx, cenarioID)
}

func (s *ScenarioService) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteScenario(ctx, id)
}

// groupSeries turns aggregation rows into chronologically ordered series
// keyed by account. Months with no spend are absent from the input and
// stay absent here; the fit works on observed points only.
func groupSeries(rows []store.AccountMonthTotal) map[string][]Point {
	series := make(map[string][]Point)
	for _, row := range rows {
		idx := reference.MonthIndex(row.Mes)
		if idx < 0 {
			continue
		}
		month := time.Date(row.Ano, time.Month(idx+1), 1, 0, 0, 0, 0, time.UTC)
		series[row.ContaContabilCodigo] = append(series[row.ContaContabilCodigo], Point{Month: month, Value: row.Total})
	}
	for conta := range series {
		sort.Slice(series[conta], func(i, j int) bool {
			return series[conta][i].Month.Before(series[conta][j].Month)
		})
	}
	return series
}

// monthsUntilYearEnd counts the monthly steps from the month after last
// through December of the target year.
func monthsUntilYearEnd(last time.Time, anoAlvo int) int {
	end := time.Date(anoAlvo, time.December, 1, 0, 0, 0, 0, time.UTC)
	if !last.Before(end) {
		return 0
	}
	months := (end.Year()-last.Year())*12 + int(end.Month()) - int(last.Month())
	return months
}
