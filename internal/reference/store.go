package reference

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/farxc/budget_engine/internal/cache"
	"github.com/farxc/budget_engine/internal/hierarchy"
	"go.uber.org/zap"
)

// DefaultTTL bounds the staleness of cached aggregations. Reference files
// change rarely, so this is longer than the ledger-side TTL.
const DefaultTTL = 5 * time.Minute

// Store serves cached read queries over the three reference datasets. Every
// read returns empty results, never an error, when the underlying dataset is
// absent: downstream merges treat "no budget loaded" and "zero budget"
// uniformly by zero-filling.
type Store struct {
	centers       []CostCenter
	centerByCode  map[string]int
	accounts      []Account
	accountByCode map[string]int
	budget        []BudgetLine

	cache  *cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewStore(centers []CostCenter, accounts []Account, budget []BudgetLine, c *cache.Cache, logger *zap.Logger) *Store {
	if c == nil {
		c = cache.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		centers:       centers,
		centerByCode:  make(map[string]int, len(centers)),
		accounts:      accounts,
		accountByCode: make(map[string]int, len(accounts)),
		budget:        budget,
		cache:         c,
		ttl:           DefaultTTL,
		logger:        logger,
	}
	for i, cc := range centers {
		s.centerByCode[cc.Codigo] = i
	}
	for i, a := range accounts {
		s.accountByCode[a.Codigo] = i
	}

	logger.Info("reference store loaded",
		zap.String("op", "reference.NewStore"),
		zap.Int("centers", len(centers)),
		zap.Int("accounts", len(accounts)),
		zap.Int("budget_lines", len(budget)),
	)
	return s
}

// SetTTL overrides the aggregation cache TTL.
func (s *Store) SetTTL(ttl time.Duration) { s.ttl = ttl }

// CenterByCode looks up a cost center by (possibly unpadded) code.
func (s *Store) CenterByCode(codigo string) (CostCenter, bool) {
	i, ok := s.centerByCode[hierarchy.Normalize(codigo)]
	if !ok {
		return CostCenter{}, false
	}
	return s.centers[i], true
}

// AccountByCode looks up an account by code.
func (s *Store) AccountByCode(codigo string) (Account, bool) {
	i, ok := s.accountByCode[codigo]
	if !ok {
		return Account{}, false
	}
	return s.accounts[i], true
}

// HierarchyDetail describes a center together with its position in the
// parent/child hierarchy.
type HierarchyDetail struct {
	CostCenter
	PaiDescricao string `json:"pai_descricao"`
	FilhosCount  int    `json:"filhos_count"`
}

// HierarchyDetail resolves the hierarchy view of a center. Centers in the
// no-hierarchy asset groups report no parent and zero children.
func (s *Store) HierarchyDetail(codigo string) (HierarchyDetail, bool) {
	center, ok := s.CenterByCode(codigo)
	if !ok {
		return HierarchyDetail{}, false
	}

	detail := HierarchyDetail{CostCenter: center}
	if center.SemHierarquia {
		detail.PaiDescricao = "N/A (Sem hierarquia)"
		return detail, true
	}

	detail.PaiDescricao = "N/A"
	for _, cc := range s.centers {
		if cc.CodigoPai != center.CodigoPai {
			continue
		}
		if cc.Classe == "0" {
			detail.PaiDescricao = cc.Descricao
		} else {
			detail.FilhosCount++
		}
	}
	return detail, true
}

// CenterFilter narrows a cost-center search. Zero values mean "no filter".
type CenterFilter struct {
	Termo      string
	Ativo      string
	Classe     string
	Regional   string
	Base       string
	ExcluirCOS bool
}

// SearchCenters returns the centers matching the filter, in code order.
func (s *Store) SearchCenters(f CenterFilter) []CostCenter {
	termo := strings.ToLower(f.Termo)

	var result []CostCenter
	for _, cc := range s.centers {
		if termo != "" &&
			!strings.Contains(strings.ToLower(cc.Codigo), termo) &&
			!strings.Contains(strings.ToLower(cc.Descricao), termo) {
			continue
		}
		if f.Ativo != "" && cc.Ativo != f.Ativo {
			continue
		}
		if f.Classe != "" && cc.Classe != f.Classe {
			continue
		}
		if f.Regional != "" && cc.Regional != f.Regional {
			continue
		}
		if f.Base != "" && cc.Base != f.Base {
			continue
		}
		if f.ExcluirCOS && cc.IsCOS {
			continue
		}
		result = append(result, cc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Codigo < result[j].Codigo })
	return result
}

// SearchAccounts returns the accounts whose code or description contains the
// term (case-insensitive). An empty term returns all accounts.
func (s *Store) SearchAccounts(termo string) []Account {
	termo = strings.ToLower(termo)

	var result []Account
	for _, a := range s.accounts {
		if termo != "" &&
			!strings.Contains(strings.ToLower(a.Codigo), termo) &&
			!strings.Contains(strings.ToLower(a.Descricao), termo) {
			continue
		}
		result = append(result, a)
	}
	return result
}

// Ativos returns the distinct asset groups present in the cost-center base,
// sorted.
func (s *Store) Ativos() []string {
	seen := make(map[string]bool)
	var ativos []string
	for _, cc := range s.centers {
		if !seen[cc.Ativo] {
			seen[cc.Ativo] = true
			ativos = append(ativos, cc.Ativo)
		}
	}
	sort.Strings(ativos)
	return ativos
}

// MonthBudget is the budget baseline total of one month.
type MonthBudget struct {
	Mes         string  `json:"mes"`
	ValorOrcado float64 `json:"valor_orcado"`
}

// CenterBudget is the budget baseline total of one center.
type CenterBudget struct {
	CentroGastoCodigo string  `json:"centro_gasto_codigo"`
	Ativo             string  `json:"ativo"`
	ValorOrcado       float64 `json:"valor_orcado"`
}

// AccountBudget is the budget baseline total of one account.
type AccountBudget struct {
	ContaContabilCodigo string  `json:"conta_contabil_codigo"`
	Descricao           string  `json:"descricao"`
	ValorOrcado         float64 `json:"valor_orcado"`
}

// BudgetByMonth aggregates the baseline per month, in calendar order.
func (s *Store) BudgetByMonth() []MonthBudget {
	if cached, ok := s.cache.Get("budget:month"); ok {
		return cached.([]MonthBudget)
	}
	if len(s.budget) == 0 {
		return nil
	}

	result := make([]MonthBudget, len(MonthOrder))
	for i, mes := range MonthOrder {
		result[i].Mes = mes
	}
	for _, line := range s.budget {
		for i, v := range line.Valores {
			result[i].ValorOrcado += v
		}
	}

	s.cache.Set("budget:month", result, s.ttl)
	return result
}

// BudgetByCenter aggregates the baseline per (center, asset group). An empty
// mes sums the whole year; an unknown mes yields no rows.
func (s *Store) BudgetByCenter(mes string) []CenterBudget {
	key := "budget:center:" + mes
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]CenterBudget)
	}

	idx := -1
	if mes != "" {
		if idx = MonthIndex(mes); idx < 0 {
			return nil
		}
	}

	type centerKey struct{ codigo, ativo string }
	totals := make(map[centerKey]float64)
	for _, line := range s.budget {
		k := centerKey{line.CentroGastoCodigo, line.Ativo}
		if idx >= 0 {
			totals[k] += line.Valores[idx]
		} else {
			totals[k] += line.AnnualTotal()
		}
	}

	result := make([]CenterBudget, 0, len(totals))
	for k, v := range totals {
		result = append(result, CenterBudget{CentroGastoCodigo: k.codigo, Ativo: k.ativo, ValorOrcado: v})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CentroGastoCodigo < result[j].CentroGastoCodigo
	})

	s.cache.Set(key, result, s.ttl)
	return result
}

// BudgetByAccount aggregates the baseline per account. An empty mes sums the
// whole year; an unknown mes yields no rows.
func (s *Store) BudgetByAccount(mes string) []AccountBudget {
	key := "budget:account:" + mes
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]AccountBudget)
	}

	idx := -1
	if mes != "" {
		if idx = MonthIndex(mes); idx < 0 {
			return nil
		}
	}

	totals := make(map[string]AccountBudget)
	for _, line := range s.budget {
		entry := totals[line.ContaContabilCodigo]
		entry.ContaContabilCodigo = line.ContaContabilCodigo
		entry.Descricao = line.ContaDescricao
		if idx >= 0 {
			entry.ValorOrcado += line.Valores[idx]
		} else {
			entry.ValorOrcado += line.AnnualTotal()
		}
		totals[line.ContaContabilCodigo] = entry
	}

	result := make([]AccountBudget, 0, len(totals))
	for _, v := range totals {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ContaContabilCodigo < result[j].ContaContabilCodigo
	})

	s.cache.Set(key, result, s.ttl)
	return result
}

// ValidateCenter reports whether a center code exists in the reference base,
// with a display message either way.
func (s *Store) ValidateCenter(codigo string) (bool, string) {
	center, ok := s.CenterByCode(codigo)
	if !ok {
		return false, fmt.Sprintf("centro de gasto %q não encontrado na base de referência", codigo)
	}
	return true, fmt.Sprintf("%s (%s)", center.Descricao, center.Ativo)
}

// ValidateAccount reports whether an account code exists in the chart of
// accounts, with a display message either way.
func (s *Store) ValidateAccount(codigo string) (bool, string) {
	account, ok := s.AccountByCode(codigo)
	if !ok {
		return false, fmt.Sprintf("conta contábil %q não encontrada na base de referência", codigo)
	}
	return true, account.Descricao
}
