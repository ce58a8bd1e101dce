package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/farxc/budget_engine/internal/apperrors"
)

type ForecastsStore struct {
	db *sqlx.DB
}

func (fs *ForecastsStore) InsertScenario(ctx context.Context, scenario *ForecastScenario) error {
	query := `INSERT INTO forecast_cenarios (
		nome,
		descricao,
		ano,
		metodo,
		criado_por,
		data_criacao
	) VALUES (
		:nome,
		:descricao,
		:ano,
		:metodo,
		:criado_por,
		:data_criacao
	) RETURNING id`

	rows, err := fs.db.NamedQueryContext(ctx, query, scenario)
	if err != nil {
		return fmt.Errorf("failed to insert scenario: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&scenario.ID); err != nil {
			return fmt.Errorf("failed to scan scenario id: %w", err)
		}
	}
	return rows.Err()
}

func (fs *ForecastsStore) GetScenario(ctx context.Context, id int64) (*ForecastScenario, error) {
	query := `SELECT * FROM forecast_cenarios WHERE id = $1`

	var scenario ForecastScenario
	err := fs.db.GetContext(ctx, &scenario, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query scenario %d: %w", id, err)
	}
	return &scenario, nil
}

func (fs *ForecastsStore) ListScenarios(ctx context.Context, ano int) ([]ForecastScenario, error) {
	query := `
	SELECT *
	FROM forecast_cenarios
	WHERE $1 = 0 OR ano = $1
	ORDER BY data_criacao DESC, id DESC`

	var scenarios []ForecastScenario
	if err := fs.db.SelectContext(ctx, &scenarios, query, ano); err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	return scenarios, nil
}

// DeleteScenario removes a scenario and its entries.
func (fs *ForecastsStore) DeleteScenario(ctx context.Context, id int64) error {
	tx, err := fs.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin scenario delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM forecast_lancamentos WHERE cenario_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete scenario entries: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM forecast_cenarios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario %d: %w", id, err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scenario delete: %w", err)
	}
	return nil
}

func (fs *ForecastsStore) InsertEntries(ctx context.Context, entries []ForecastEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `INSERT INTO forecast_lancamentos (
		cenario_id,
		conta_contabil_codigo,
		ano,
		mes,
		valor_previsto,
		limite_inferior,
		limite_superior
	) VALUES (
		:cenario_id,
		:conta_contabil_codigo,
		:ano,
		:mes,
		:valor_previsto,
		:limite_inferior,
		:limite_superior
	)`

	tx, err := fs.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin entries insert: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, query, entries); err != nil {
		return fmt.Errorf("failed to insert forecast entries: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entries insert: %w", err)
	}
	return nil
}

func (fs *ForecastsStore) ListEntries(ctx context.Context, cenarioID int64) ([]ForecastEntry, error) {
	query := `
	SELECT *
	FROM forecast_lancamentos
	WHERE cenario_id = $1
	ORDER BY conta_contabil_codigo, ano, id`

	var entries []ForecastEntry
	if err := fs.db.SelectContext(ctx, &entries, query, cenarioID); err != nil {
		return nil, fmt.Errorf("failed to list forecast entries: %w", err)
	}
	return entries, nil
}
