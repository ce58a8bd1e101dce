package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/farxc/budget_engine/internal/apperrors"
)

type TransfersStore struct {
	db *sqlx.DB
}

func (ts *TransfersStore) Insert(ctx context.Context, transfer *Transfer) error {
	query := `INSERT INTO remanejamentos (
		ano,
		centro_origem_codigo,
		centro_destino_codigo,
		ativo,
		conta_contabil_codigo,
		valor,
		mes_competencia,
		justificativa,
		status,
		usuario_solicitante,
		usuario_decisor,
		data_solicitacao,
		data_decisao
	) VALUES (
		:ano,
		:centro_origem_codigo,
		:centro_destino_codigo,
		:ativo,
		:conta_contabil_codigo,
		:valor,
		:mes_competencia,
		:justificativa,
		:status,
		:usuario_solicitante,
		:usuario_decisor,
		:data_solicitacao,
		:data_decisao
	) RETURNING id`

	rows, err := ts.db.NamedQueryContext(ctx, query, transfer)
	if err != nil {
		return fmt.Errorf("failed to insert transfer: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&transfer.ID); err != nil {
			return fmt.Errorf("failed to scan transfer id: %w", err)
		}
	}
	return rows.Err()
}

func (ts *TransfersStore) GetByID(ctx context.Context, id int64) (*Transfer, error) {
	query := `SELECT * FROM remanejamentos WHERE id = $1`

	var transfer Transfer
	err := ts.db.GetContext(ctx, &transfer, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer %d: %w", id, err)
	}
	return &transfer, nil
}

func (ts *TransfersStore) Update(ctx context.Context, transfer *Transfer) error {
	query := `UPDATE remanejamentos SET
		justificativa = :justificativa,
		status = :status,
		usuario_decisor = :usuario_decisor,
		data_decisao = :data_decisao
	WHERE id = :id`

	result, err := ts.db.NamedExecContext(ctx, query, transfer)
	if err != nil {
		return fmt.Errorf("failed to update transfer %d: %w", transfer.ID, err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (ts *TransfersStore) List(ctx context.Context, ano int, status string) ([]Transfer, error) {
	query := `
	SELECT *
	FROM remanejamentos
	WHERE ano = $1
		AND ($2 = '' OR status = $2)
	ORDER BY data_solicitacao DESC, id DESC`

	var transfers []Transfer
	if err := ts.db.SelectContext(ctx, &transfers, query, ano, status); err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, nil
}

// NetAdjustments returns, per cost center, the approved amounts received
// minus the approved amounts given up. An empty mes covers the whole year.
func (ts *TransfersStore) NetAdjustments(ctx context.Context, ano int, mes string) ([]CenterAdjustment, error) {
	query := `
	WITH movimentos AS (
		SELECT centro_destino_codigo AS centro_gasto_codigo, valor
		FROM remanejamentos
		WHERE ano = $1 AND status = $2 AND ($3 = '' OR mes_competencia = $3)
		UNION ALL
		SELECT centro_origem_codigo AS centro_gasto_codigo, -valor
		FROM remanejamentos
		WHERE ano = $1 AND status = $2 AND ($3 = '' OR mes_competencia = $3)
	)
	SELECT
		centro_gasto_codigo,
		COALESCE(SUM(valor), 0) AS valor
	FROM
		movimentos
	GROUP BY
		centro_gasto_codigo
	ORDER BY
		centro_gasto_codigo`

	var adjustments []CenterAdjustment
	if err := ts.db.SelectContext(ctx, &adjustments, query, ano, TransferAprovado, mes); err != nil {
		return nil, fmt.Errorf("failed to query net adjustments: %w", err)
	}
	return adjustments, nil
}
