package reference

import (
	"strings"
	"testing"
	"time"

	"github.com/farxc/budget_engine/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCenters() []CostCenter {
	return []CostCenter{
		NewCostCenter("01020500001", "GASCOM", "Instalação Caçu", "Centro-Oeste", "Caçu"),
		NewCostCenter("01020501001", "GASCOM", "Gasoduto Caçu", "Centro-Oeste", "Caçu"),
		NewCostCenter("01020504001", "GASCOM", "Base Caçu", "Centro-Oeste", "Caçu"),
		NewCostCenter("09090900001", "COS", "Custos Administrativos TI", "Sede", "Sede"),
	}
}

func testAccounts() []Account {
	return []Account{
		{Codigo: "3010101", Descricao: "Serviços de Manutenção"},
		{Codigo: "3010102", Descricao: "Materiais"},
	}
}

func testBudget() []BudgetLine {
	jan := [12]float64{}
	jan[0] = 1000
	jan[1] = 2000
	other := [12]float64{}
	other[0] = 500
	return []BudgetLine{
		{CentroGastoCodigo: "01020504001", Ativo: "GASCOM", ContaContabilCodigo: "3010101", ContaDescricao: "Serviços de Manutenção", Valores: jan},
		{CentroGastoCodigo: "09090900001", Ativo: "COS", ContaContabilCodigo: "3010102", ContaDescricao: "Materiais", Valores: other},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(testCenters(), testAccounts(), testBudget(), cache.New(), nil)
}

func TestCenterByCodePadsInput(t *testing.T) {
	s := newTestStore(t)

	center, ok := s.CenterByCode("1020504001")
	require.True(t, ok)
	assert.Equal(t, "01020504001", center.Codigo)
	assert.Equal(t, "01020504", center.CodigoPai)
	assert.Equal(t, "4", center.Classe)
	assert.Equal(t, "Base", center.ClasseNome)
	assert.False(t, center.SemHierarquia)
}

func TestHierarchyDetail(t *testing.T) {
	s := newTestStore(t)

	detail, ok := s.HierarchyDetail("01020504001")
	require.True(t, ok)
	assert.Equal(t, "Instalação Caçu", detail.PaiDescricao)
	assert.Equal(t, 2, detail.FilhosCount) // gasoduto + base share the parent

	_, ok = s.HierarchyDetail("99999999999")
	assert.False(t, ok)
}

func TestHierarchyDetailNoHierarchyGroup(t *testing.T) {
	s := newTestStore(t)

	detail, ok := s.HierarchyDetail("09090900001")
	require.True(t, ok)
	assert.True(t, detail.SemHierarquia)
	assert.Equal(t, 0, detail.FilhosCount)
	assert.Equal(t, "N/A (Sem hierarquia)", detail.PaiDescricao)
}

func TestSearchCenters(t *testing.T) {
	s := newTestStore(t)

	assert.Len(t, s.SearchCenters(CenterFilter{}), 4)
	assert.Len(t, s.SearchCenters(CenterFilter{Ativo: "GASCOM"}), 3)
	assert.Len(t, s.SearchCenters(CenterFilter{Termo: "caçu"}), 3)
	assert.Len(t, s.SearchCenters(CenterFilter{Classe: "1"}), 1)
	assert.Len(t, s.SearchCenters(CenterFilter{ExcluirCOS: true}), 3)
	assert.Empty(t, s.SearchCenters(CenterFilter{Termo: "inexistente"}))
}

func TestAtivos(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, []string{"COS", "GASCOM"}, s.Ativos())
}

func TestBudgetByMonth(t *testing.T) {
	s := newTestStore(t)

	result := s.BudgetByMonth()
	require.Len(t, result, 12)
	assert.Equal(t, "JAN", result[0].Mes)
	assert.Equal(t, 1500.0, result[0].ValorOrcado)
	assert.Equal(t, 2000.0, result[1].ValorOrcado)
	assert.Equal(t, 0.0, result[11].ValorOrcado)
}

func TestBudgetByCenter(t *testing.T) {
	s := newTestStore(t)

	annual := s.BudgetByCenter("")
	require.Len(t, annual, 2)
	assert.Equal(t, "01020504001", annual[0].CentroGastoCodigo)
	assert.Equal(t, 3000.0, annual[0].ValorOrcado)

	jan := s.BudgetByCenter("JAN")
	require.Len(t, jan, 2)
	assert.Equal(t, 1000.0, jan[0].ValorOrcado)

	assert.Empty(t, s.BudgetByCenter("XXX"))
}

func TestBudgetByAccount(t *testing.T) {
	s := newTestStore(t)

	result := s.BudgetByAccount("")
	require.Len(t, result, 2)
	assert.Equal(t, "3010101", result[0].ContaContabilCodigo)
	assert.Equal(t, "Serviços de Manutenção", result[0].Descricao)
	assert.Equal(t, 3000.0, result[0].ValorOrcado)
}

func TestEmptyDatasetsReturnEmptyResults(t *testing.T) {
	s := NewStore(nil, nil, nil, cache.New(), nil)

	assert.Empty(t, s.BudgetByMonth())
	assert.Empty(t, s.BudgetByCenter(""))
	assert.Empty(t, s.BudgetByAccount("FEV"))
	assert.Empty(t, s.SearchCenters(CenterFilter{}))
	assert.Empty(t, s.Ativos())
}

func TestValidation(t *testing.T) {
	s := newTestStore(t)

	ok, msg := s.ValidateCenter("01020504001")
	assert.True(t, ok)
	assert.Contains(t, msg, "Base Caçu")

	ok, msg = s.ValidateCenter("123")
	assert.False(t, ok)
	assert.Contains(t, msg, "não encontrado")

	ok, _ = s.ValidateAccount("3010101")
	assert.True(t, ok)
	ok, _ = s.ValidateAccount("999")
	assert.False(t, ok)
}

func TestAggregationCacheRespectsTTL(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := cache.NewWithClock(func() time.Time { return clock })
	s := NewStore(testCenters(), testAccounts(), testBudget(), c, nil)

	first := s.BudgetByMonth()
	second := s.BudgetByMonth()
	assert.Equal(t, first, second)

	// Within the TTL the cached slice is reused.
	_, cached := c.Get("budget:month")
	assert.True(t, cached)

	clock = clock.Add(DefaultTTL + time.Second)
	_, cached = c.Get("budget:month")
	assert.False(t, cached)
}

func TestDecodeCSVAndDatasets(t *testing.T) {
	csv := strings.Join([]string{
		"CENTRO DE GASTO;ATIVO;DESCRIÇÃO CENTRO DE GASTO;REGIONAL;BASE",
		"01020504001;GASCOM;Base Caçu;Centro-Oeste;Caçu",
		"1020500001;GASCOM;Instalação Caçu;Centro-Oeste;Caçu",
	}, "\n")

	df, err := DecodeCSV(strings.NewReader(csv))
	require.NoError(t, err)

	centers := DecodeCenters(df)
	require.Len(t, centers, 2)
	assert.Equal(t, "01020504001", centers[0].Codigo)
	// Codes are zero-padded during decoding.
	assert.Equal(t, "01020500001", centers[1].Codigo)
	assert.Equal(t, "Instalação Principal", centers[1].ClasseNome)
}

func TestDecodeBudgetReadsMonthColumns(t *testing.T) {
	csv := strings.Join([]string{
		"CENTRO DE GASTO;ATIVO CONTRATUAL;CÓDIGO CONTA CONTÁBIL;DESCRIÇÃO CONTA CONTÁBIL;jan/26;fev/26",
		"01020504001;GASCOM;3010101;Serviços;1000.50;2000",
	}, "\n")

	df, err := DecodeCSV(strings.NewReader(csv))
	require.NoError(t, err)

	lines := DecodeBudget(df, 2026)
	require.Len(t, lines, 1)
	assert.InDelta(t, 1000.50, lines[0].Valores[0], 0.001)
	assert.InDelta(t, 2000.0, lines[0].Valores[1], 0.001)
	// Columns absent from the file read as zero.
	assert.Equal(t, 0.0, lines[0].Valores[2])
}

func TestParseAmount(t *testing.T) {
	assert.InDelta(t, 1234.56, ParseAmount("1.234,56"), 0.001)
	assert.InDelta(t, -42.5, ParseAmount("-42.5"), 0.001)
	assert.Equal(t, 0.0, ParseAmount(""))
	assert.Equal(t, 0.0, ParseAmount("abc"))
}

func TestMonthHelpers(t *testing.T) {
	assert.Equal(t, 0, MonthIndex("JAN"))
	assert.Equal(t, 11, MonthIndex("DEZ"))
	assert.Equal(t, -1, MonthIndex("XYZ"))
	assert.True(t, IsMonth("SET"))
	assert.Equal(t, "ABR", MonthCode(time.April))
}
