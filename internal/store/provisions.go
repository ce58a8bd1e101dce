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

type ProvisionsStore struct {
	db *sqlx.DB
}

func (ps *ProvisionsStore) Insert(ctx context.Context, provision *Provision) error {
	query := `INSERT INTO provisoes (
		ano,
		mes_competencia,
		centro_gasto_codigo,
		ativo,
		conta_contabil_codigo,
		valor_estimado,
		status,
		justificativa_obz,
		tipo_despesa,
		numero_contrato,
		cadastrado_sistema,
		numero_registro,
		regional,
		base,
		usuario,
		lancamento_realizado_id,
		data_criacao,
		data_atualizacao
	) VALUES (
		:ano,
		:mes_competencia,
		:centro_gasto_codigo,
		:ativo,
		:conta_contabil_codigo,
		:valor_estimado,
		:status,
		:justificativa_obz,
		:tipo_despesa,
		:numero_contrato,
		:cadastrado_sistema,
		:numero_registro,
		:regional,
		:base,
		:usuario,
		:lancamento_realizado_id,
		:data_criacao,
		:data_atualizacao
	) RETURNING id`

	rows, err := ps.db.NamedQueryContext(ctx, query, provision)
	if err != nil {
		return fmt.Errorf("failed to insert provision: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&provision.ID); err != nil {
			return fmt.Errorf("failed to scan provision id: %w", err)
		}
	}
	return rows.Err()
}

func (ps *ProvisionsStore) GetByID(ctx context.Context, id int64) (*Provision, error) {
	query := `SELECT * FROM provisoes WHERE id = $1`

	var provision Provision
	err := ps.db.GetContext(ctx, &provision, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query provision %d: %w", id, err)
	}
	return &provision, nil
}

const provisionUpdateQuery = `UPDATE provisoes SET
	mes_competencia = :mes_competencia,
	valor_estimado = :valor_estimado,
	status = :status,
	justificativa_obz = :justificativa_obz,
	tipo_despesa = :tipo_despesa,
	numero_contrato = :numero_contrato,
	cadastrado_sistema = :cadastrado_sistema,
	numero_registro = :numero_registro,
	usuario = :usuario,
	lancamento_realizado_id = :lancamento_realizado_id,
	data_atualizacao = :data_atualizacao
WHERE id = :id`

func (ps *ProvisionsStore) Update(ctx context.Context, provision *Provision) error {
	result, err := ps.db.NamedExecContext(ctx, provisionUpdateQuery, provision)
	if err != nil {
		return fmt.Errorf("failed to update provision %d: %w", provision.ID, err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ApplyUpdates writes a batch of already validated provisions in a single
// transaction. Either every row lands or none does.
func (ps *ProvisionsStore) ApplyUpdates(ctx context.Context, provisions []*Provision) error {
	if len(provisions) == 0 {
		return nil
	}

	tx, err := ps.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch update: %w", err)
	}
	defer tx.Rollback()

	for _, provision := range provisions {
		if _, err := tx.NamedExecContext(ctx, provisionUpdateQuery, provision); err != nil {
			return fmt.Errorf("failed to update provision %d: %w", provision.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch update: %w", err)
	}
	return nil
}

func (ps *ProvisionsStore) List(ctx context.Context, filter ProvisionFilter) ([]Provision, error) {
	clauses := []string{"TRUE"}
	args := []any{}
	if filter.Ano != 0 {
		args = append(args, filter.Ano)
		clauses = append(clauses, fmt.Sprintf("ano = $%d", len(args)))
	}

	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("mes_competencia", filter.Mes)
	add("status", filter.Status)
	add("centro_gasto_codigo", filter.CentroGastoCodigo)
	add("ativo", filter.Ativo)
	add("regional", filter.Regional)

	query := fmt.Sprintf(`
	SELECT *
	FROM provisoes
	WHERE %s
	ORDER BY data_criacao DESC, id DESC`, strings.Join(clauses, " AND "))

	var provisions []Provision
	if err := ps.db.SelectContext(ctx, &provisions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list provisions: %w", err)
	}
	return provisions, nil
}

func (ps *ProvisionsStore) PendingTotalsByMonth(ctx context.Context, ano int) ([]MonthTotal, error) {
	query := `
	SELECT
		mes_competencia AS mes,
		COALESCE(SUM(valor_estimado), 0) AS total
	FROM
		provisoes
	WHERE
		ano = $1
		AND status = $2
	GROUP BY
		mes_competencia`

	var totals []MonthTotal
	if err := ps.db.SelectContext(ctx, &totals, query, ano, ProvisionPendente); err != nil {
		return nil, fmt.Errorf("failed to query pending totals by month: %w", err)
	}
	return totals, nil
}

func (ps *ProvisionsStore) PendingTotalsByCenter(ctx context.Context, ano int, mes string) ([]CenterTotal, error) {
	query := `
	SELECT
		centro_gasto_codigo,
		ativo,
		COALESCE(SUM(valor_estimado), 0) AS total
	FROM
		provisoes
	WHERE
		ano = $1
		AND status = $2
		AND ($3 = '' OR mes_competencia = $3)
	GROUP BY
		centro_gasto_codigo, ativo
	ORDER BY
		centro_gasto_codigo`

	var totals []CenterTotal
	if err := ps.db.SelectContext(ctx, &totals, query, ano, ProvisionPendente, mes); err != nil {
		return nil, fmt.Errorf("failed to query pending totals by center: %w", err)
	}
	return totals, nil
}
