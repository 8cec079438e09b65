package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/globalenglish-api/internal/models"
)

// lockIntervalRow reads an interval row with FOR UPDATE so a concurrent close waits.
func lockIntervalRow(ctx context.Context, q sqlx.QueryerContext, table, id string) (*models.IntervalRow, error) {
	query := fmt.Sprintf(`SELECT id, valid_from, valid_to FROM %s WHERE id = $1 FOR UPDATE`, table)
	var row models.IntervalRow
	if err := sqlx.GetContext(ctx, q, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock %s row: %w", table, err)
	}
	return &row, nil
}

// closeIntervalRow sets valid_to on an open row, returning sql.ErrNoRows when it was already closed.
func closeIntervalRow(ctx context.Context, exec sqlx.ExecerContext, table string, params models.IntervalClose) error {
	query := fmt.Sprintf(`UPDATE %s SET valid_to = $2 WHERE id = $1 AND valid_to IS NULL`, table)
	result, err := exec.ExecContext(ctx, query, params.ID, params.End)
	if err != nil {
		return fmt.Errorf("close %s row: %w", table, err)
	}
	return checkAffected(result, table)
}

func checkAffected(result sql.Result, table string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s rows: %w", table, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
