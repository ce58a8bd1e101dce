package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/farxc/budget_engine/internal/apperrors"
)

type EntriesStore struct {
	db *sqlx.DB
}

func (es *EntriesStore) Insert(ctx context.Context, entry *ActualEntry) error {
	query := `INSERT INTO lancamentos_realizados (
		ano,
		mes,
		centro_gasto_codigo,
		centro_descricao,
		codigo_pai,
		classe,
		ativo,
		regional,
		base,
		conta_contabil_codigo,
		conta_descricao,
		valor,
		fornecedor,
		documento,
		usuario,
		data_criacao,
		data_atualizacao
	) VALUES (
		:ano,
		:mes,
		:centro_gasto_codigo,
		:centro_descricao,
		:codigo_pai,
		:classe,
		:ativo,
		:regional,
		:base,
		:conta_contabil_codigo,
		:conta_descricao,
		:valor,
		:fornecedor,
		:documento,
		:usuario,
		:data_criacao,
		:data_atualizacao
	) RETURNING id`

	rows, err := es.db.NamedQueryContext(ctx, query, entry)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&entry.ID); err != nil {
			return fmt.Errorf("failed to scan entry id: %w", err)
		}
	}
	return rows.Err()
}

func (es *EntriesStore) GetByID(ctx context.Context, id int64) (*ActualEntry, error) {
	query := `SELECT * FROM lancamentos_realizados WHERE id = $1`

	var entry ActualEntry
	err := es.db.GetContext(ctx, &entry, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query entry %d: %w", id, err)
	}
	return &entry, nil
}

func (es *EntriesStore) Update(ctx context.Context, entry *ActualEntry) error {
	query := `UPDATE lancamentos_realizados SET
		valor = :valor,
		fornecedor = :fornecedor,
		documento = :documento,
		conta_descricao = :conta_descricao,
		data_atualizacao = :data_atualizacao
	WHERE id = :id`

	result, err := es.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return fmt.Errorf("failed to update entry %d: %w", entry.ID, err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (es *EntriesStore) Delete(ctx context.Context, id int64) error {
	result, err := es.db.ExecContext(ctx, `DELETE FROM lancamentos_realizados WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry %d: %w", id, err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteMonth clears a competency month ahead of a re-import and returns
// how many rows were removed.
func (es *EntriesStore) DeleteMonth(ctx context.Context, ano int, mes string) (int64, error) {
	result, err := es.db.ExecContext(ctx,
		`DELETE FROM lancamentos_realizados WHERE ano = $1 AND mes = $2`, ano, mes)
	if err != nil {
		return 0, fmt.Errorf("failed to delete month %s/%d: %w", mes, ano, err)
	}
	affected, _ := result.RowsAffected()
	return affected, nil
}

func (es *EntriesStore) List(ctx context.Context, filter EntryFilter) ([]ActualEntry, error) {
	where, args := entryFilterClauses(filter)
	query := fmt.Sprintf(`
	SELECT *
	FROM lancamentos_realizados
	WHERE %s
	ORDER BY centro_gasto_codigo, conta_contabil_codigo, id`, where)

	var entries []ActualEntry
	if err := es.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

func (es *EntriesStore) TotalsByMonth(ctx context.Context, ano int) ([]MonthTotal, error) {
	query := `
	SELECT
		mes,
		COALESCE(SUM(valor), 0) AS total
	FROM
		lancamentos_realizados
	WHERE
		ano = $1
	GROUP BY
		mes`

	var totals []MonthTotal
	if err := es.db.SelectContext(ctx, &totals, query, ano); err != nil {
		return nil, fmt.Errorf("failed to query monthly totals: %w", err)
	}
	return totals, nil
}

func (es *EntriesStore) TotalsByCenter(ctx context.Context, ano int, mes string) ([]CenterTotal, error) {
	query := `
	SELECT
		centro_gasto_codigo,
		ativo,
		COALESCE(SUM(valor), 0) AS total
	FROM
		lancamentos_realizados
	WHERE
		ano = $1
		AND ($2 = '' OR mes = $2)
	GROUP BY
		centro_gasto_codigo, ativo
	ORDER BY
		centro_gasto_codigo`

	var totals []CenterTotal
	if err := es.db.SelectContext(ctx, &totals, query, ano, mes); err != nil {
		return nil, fmt.Errorf("failed to query center totals: %w", err)
	}
	return totals, nil
}

func (es *EntriesStore) TotalsByAccount(ctx context.Context, ano int, mes string) ([]AccountTotal, error) {
	query := `
	SELECT
		conta_contabil_codigo,
		MAX(conta_descricao) AS descricao,
		COALESCE(SUM(valor), 0) AS total
	FROM
		lancamentos_realizados
	WHERE
		ano = $1
		AND ($2 = '' OR mes = $2)
	GROUP BY
		conta_contabil_codigo
	ORDER BY
		total DESC`

	var totals []AccountTotal
	if err := es.db.SelectContext(ctx, &totals, query, ano, mes); err != nil {
		return nil, fmt.Errorf("failed to query account totals: %w", err)
	}
	return totals, nil
}

func (es *EntriesStore) TotalsByAtivo(ctx context.Context, ano int, mes string) ([]AtivoTotal, error) {
	query := `
	SELECT
		ativo,
		COALESCE(SUM(valor), 0) AS total
	FROM
		lancamentos_realizados
	WHERE
		ano = $1
		AND ($2 = '' OR mes = $2)
	GROUP BY
		ativo
	ORDER BY
		total DESC`

	var totals []AtivoTotal
	if err := es.db.SelectContext(ctx, &totals, query, ano, mes); err != nil {
		return nil, fmt.Errorf("failed to query ativo totals: %w", err)
	}
	return totals, nil
}

func (es *EntriesStore) Stats(ctx context.Context, ano int) (*EntryStats, error) {
	query := `
	SELECT
		COUNT(*) AS total_lancamentos,
		COALESCE(SUM(valor), 0) AS valor_total,
		COUNT(DISTINCT mes) AS meses_com_dados,
		COUNT(DISTINCT centro_gasto_codigo) AS centros_distintos,
		COUNT(DISTINCT conta_contabil_codigo) AS contas_distintas
	FROM
		lancamentos_realizados
	WHERE
		ano = $1`

	var stats EntryStats
	if err := es.db.GetContext(ctx, &stats, query, ano); err != nil {
		return nil, fmt.Errorf("failed to query entry stats: %w", err)
	}
	return &stats, nil
}

func (es *EntriesStore) MonthlySeriesByAccount(ctx context.Context, anoInicial, anoFinal int) ([]AccountMonthTotal, error) {
	query := `
	SELECT
		conta_contabil_codigo,
		ano,
		mes,
		COALESCE(SUM(valor), 0) AS total
	FROM
		lancamentos_realizados
	WHERE
		ano BETWEEN $1 AND $2
	GROUP BY
		conta_contabil_codigo, ano, mes
	ORDER BY
		conta_contabil_codigo, ano`

	var series []AccountMonthTotal
	if err := es.db.SelectContext(ctx, &series, query, anoInicial, anoFinal); err != nil {
		return nil, fmt.Errorf("failed to query account series: %w", err)
	}
	return series, nil
}

func entryFilterClauses(filter EntryFilter) (string, []any) {
	clauses := []string{"ano = $1"}
	args := []any{filter.Ano}

	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("mes", filter.Mes)
	add("centro_gasto_codigo", filter.CentroGastoCodigo)
	add("ativo", filter.Ativo)
	add("conta_contabil_codigo", filter.ContaContabilCodigo)

	if filter.ApenasCOS != nil {
		if *filter.ApenasCOS {
			clauses = append(clauses, "ativo = 'COS'")
		} else {
			clauses = append(clauses, "ativo <> 'COS'")
		}
	}

	return strings.Join(clauses, " AND "), args
}
