package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"github.com/farxc/budget_engine/internal/reference"
)

// Expected columns of an actuals export. The file is semicolon separated
// like the reference datasets.
const (
	colCentroGasto = "CENTRO DE GASTO"
	colConta       = "CONTA CONTÁBIL"
	colContaDesc   = "DESCRIÇÃO CONTA CONTÁBIL"
	colMes         = "MÊS"
	colValor       = "VALOR"
	colFornecedor  = "FORNECEDOR"
	colDocumento   = "DOCUMENTO"
)

type actualRow struct {
	Ano                 int
	Mes                 string
	CentroGastoCodigo   string
	ContaContabilCodigo string
	ContaDescricao      string
	Valor               float64
	Fornecedor          string
	Documento           string
}

func readActuals(path string, ano int) ([]actualRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	df, err := reference.DecodeCSV(file)
	if err != nil {
		return nil, err
	}

	for _, required := range []string{colCentroGasto, colConta, colMes, colValor} {
		if !containsString(df.Names(), required) {
			return nil, fmt.Errorf("missing column %q in %s", required, path)
		}
	}

	rows := make([]actualRow, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		rows = append(rows, actualRow{
			Ano:                 ano,
			Mes:                 strings.ToUpper(cell(&df, colMes, i)),
			CentroGastoCodigo:   cell(&df, colCentroGasto, i),
			ContaContabilCodigo: cell(&df, colConta, i),
			ContaDescricao:      cell(&df, colContaDesc, i),
			Valor:               reference.ParseAmount(cell(&df, colValor, i)),
			Fornecedor:          cell(&df, colFornecedor, i),
			Documento:           cell(&df, colDocumento, i),
		})
	}
	return rows, nil
}

func cell(df *dataframe.DataFrame, col string, rowIdx int) string {
	if !containsString(df.Names(), col) {
		return ""
	}
	return strings.TrimSpace(df.Col(col).Elem(rowIdx).String())
}

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
