// Package reference holds the read-mostly reference datasets of the budget
// year: the budget baseline, the cost-center base and the chart of accounts.
// Datasets are loaded wholesale and immutable for the lifetime of a Store;
// derived aggregations are cached with a short TTL.
package reference

import (
	"time"

	"github.com/farxc/budget_engine/internal/hierarchy"
)

// Asset groups that do not participate in parent/child rollups.
// COS = administrative costs, G&A = support costs.
var NoHierarchyAssetGroups = []string{"COS", "G&A"}

// MonthOrder lists the twelve competency month codes in calendar order.
var MonthOrder = [12]string{"JAN", "FEV", "MAR", "ABR", "MAI", "JUN", "JUL", "AGO", "SET", "OUT", "NOV", "DEZ"}

// MonthIndex returns the zero-based calendar position of a month code, or -1
// for an unknown code.
func MonthIndex(mes string) int {
	for i, m := range MonthOrder {
		if m == mes {
			return i
		}
	}
	return -1
}

// IsMonth reports whether mes is a valid competency month code.
func IsMonth(mes string) bool {
	return MonthIndex(mes) >= 0
}

// MonthCode maps a calendar month to its competency code.
func MonthCode(m time.Month) string {
	return MonthOrder[int(m)-1]
}

// CostCenter is one row of the cost-center base, enriched with the fields
// derived from its code.
type CostCenter struct {
	Codigo        string `json:"codigo"`
	CodigoPai     string `json:"codigo_pai"`
	Classe        string `json:"classe"`
	ClasseNome    string `json:"classe_nome"`
	Ativo         string `json:"ativo"`
	Regional      string `json:"regional"`
	Base          string `json:"base"`
	Descricao     string `json:"descricao"`
	IsCOS         bool   `json:"is_cos"`
	IsGA          bool   `json:"is_ga"`
	SemHierarquia bool   `json:"is_sem_hierarquia"`
}

// Account is one row of the chart of accounts.
type Account struct {
	Codigo    string `json:"codigo"`
	Descricao string `json:"descricao"`
}

// BudgetLine is one budget-baseline row: the twelve planned monthly amounts
// for a cost center and account.
type BudgetLine struct {
	CentroGastoCodigo   string      `json:"centro_gasto_codigo"`
	Ativo               string      `json:"ativo"`
	ContaContabilCodigo string      `json:"conta_contabil_codigo"`
	ContaDescricao      string      `json:"conta_descricao"`
	Valores             [12]float64 `json:"valores"`
}

// AnnualTotal sums the twelve monthly amounts of the line.
func (l BudgetLine) AnnualTotal() float64 {
	var total float64
	for _, v := range l.Valores {
		total += v
	}
	return total
}

// NewCostCenter builds a CostCenter from raw reference fields, normalizing
// the code and deriving the hierarchy attributes.
func NewCostCenter(codigo, ativo, descricao, regional, base string) CostCenter {
	code := hierarchy.Normalize(codigo)
	classe := string(hierarchy.ClassDigitOf(code))
	return CostCenter{
		Codigo:        code,
		CodigoPai:     hierarchy.ParentOf(code),
		Classe:        classe,
		ClasseNome:    hierarchy.ClassNameOf(code),
		Ativo:         ativo,
		Regional:      regional,
		Base:          base,
		Descricao:     descricao,
		IsCOS:         ativo == "COS",
		IsGA:          ativo == "G&A",
		SemHierarquia: isNoHierarchy(ativo),
	}
}

func isNoHierarchy(ativo string) bool {
	for _, a := range NoHierarchyAssetGroups {
		if ativo == a {
			return true
		}
	}
	return false
}
