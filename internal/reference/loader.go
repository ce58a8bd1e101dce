package reference

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"
)

// Reference CSV column names, as exported from the budget workbooks.
const (
	colCentroGasto    = "CENTRO DE GASTO"
	colCentroDesc     = "DESCRIÇÃO CENTRO DE GASTO"
	colAtivo          = "ATIVO"
	colAtivoContrato  = "ATIVO CONTRATUAL"
	colRegional       = "REGIONAL"
	colBase           = "BASE"
	colContaCodigo    = "CÓDIGO CONTA CONTÁBIL"
	colContaDescricao = "DESCRIÇÃO CONTA CONTÁBIL"
)

var monthColumnNames = [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// Datasets carries the three reference datasets loaded from disk.
type Datasets struct {
	Centers  []CostCenter
	Accounts []Account
	Budget   []BudgetLine
}

// LoadDatasets reads the three reference CSVs and builds the enriched
// datasets for a Store. year selects the budget month columns (jan/26 for
// 2026 and so on).
func LoadDatasets(budgetPath, centersPath, accountsPath string, year int, logger *zap.Logger) (Datasets, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var ds Datasets

	centersDf, err := openAndDecode(centersPath)
	if err != nil {
		return ds, fmt.Errorf("loading cost centers: %w", err)
	}
	ds.Centers = DecodeCenters(centersDf)

	accountsDf, err := openAndDecode(accountsPath)
	if err != nil {
		return ds, fmt.Errorf("loading accounts: %w", err)
	}
	ds.Accounts = DecodeAccounts(accountsDf)

	budgetDf, err := openAndDecode(budgetPath)
	if err != nil {
		return ds, fmt.Errorf("loading budget baseline: %w", err)
	}
	ds.Budget = DecodeBudget(budgetDf, year)

	logger.Info("reference datasets loaded",
		zap.String("op", "reference.LoadDatasets"),
		zap.Int("centers", len(ds.Centers)),
		zap.Int("accounts", len(ds.Accounts)),
		zap.Int("budget_lines", len(ds.Budget)),
	)
	return ds, nil
}

func openAndDecode(path string) (dataframe.DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	return DecodeCSV(file)
}

// DecodeCSV reads a reference CSV into a dataframe.
func DecodeCSV(r io.Reader) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r, dataframe.WithDelimiter(';'), dataframe.WithLazyQuotes(true))
	if df.Error() != nil {
		return dataframe.DataFrame{}, df.Error()
	}
	if df.Nrow() == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("dataframe is empty")
	}
	return df, nil
}

// DecodeCenters converts a cost-center dataframe to enriched records.
func DecodeCenters(df dataframe.DataFrame) []CostCenter {
	centers := make([]CostCenter, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		centers = append(centers, NewCostCenter(
			getStr(colCentroGasto, i, &df),
			getStr(colAtivo, i, &df),
			getStr(colCentroDesc, i, &df),
			getStr(colRegional, i, &df),
			getStr(colBase, i, &df),
		))
	}
	return centers
}

// DecodeAccounts converts a chart-of-accounts dataframe to records.
func DecodeAccounts(df dataframe.DataFrame) []Account {
	accounts := make([]Account, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		accounts = append(accounts, Account{
			Codigo:    getStr(colContaCodigo, i, &df),
			Descricao: getStr(colContaDescricao, i, &df),
		})
	}
	return accounts
}

// DecodeBudget converts a budget-baseline dataframe to records, reading the
// twelve month columns of the given year.
func DecodeBudget(df dataframe.DataFrame, year int) []BudgetLine {
	months := BudgetMonthColumns(year)

	lines := make([]BudgetLine, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		line := BudgetLine{
			CentroGastoCodigo:   NewCostCenter(getStr(colCentroGasto, i, &df), "", "", "", "").Codigo,
			Ativo:               getStr(colAtivoContrato, i, &df),
			ContaContabilCodigo: getStr(colContaCodigo, i, &df),
			ContaDescricao:      getStr(colContaDescricao, i, &df),
		}
		for m, col := range months {
			line.Valores[m] = getFloat(col, i, &df)
		}
		lines = append(lines, line)
	}
	return lines
}

// BudgetMonthColumns returns the baseline column names for a budget year,
// jan/NN through dez/NN.
func BudgetMonthColumns(year int) [12]string {
	var cols [12]string
	for i, m := range monthColumnNames {
		cols[i] = fmt.Sprintf("%s/%02d", m, year%100)
	}
	return cols
}

func getStr(col string, rowIdx int, df *dataframe.DataFrame) string {
	if df == nil {
		return ""
	}
	if containsString(df.Names(), col) {
		return strings.TrimSpace(df.Col(col).Elem(rowIdx).String())
	}
	return ""
}

func getFloat(col string, rowIdx int, df *dataframe.DataFrame) float64 {
	if df == nil {
		return 0
	}
	if containsString(df.Names(), col) {
		val := df.Col(col).Elem(rowIdx).Float()
		if val != val { // NaN
			return 0
		}
		return val
	}
	return 0
}

// ParseAmount reads amounts in Brazilian notation (1.234,56) as well as
// plain decimals.
func ParseAmount(valStr string) float64 {
	if valStr == "" {
		return 0
	}
	if strings.Contains(valStr, ",") {
		valStr = strings.ReplaceAll(valStr, ".", "")
		valStr = strings.ReplaceAll(valStr, ",", ".")
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		return 0
	}
	return val
}

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
