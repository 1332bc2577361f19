package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jakechorley/ad-distributor/pkg/db"
)

// GetBalanceAdjustments retrieves the adjustments of one employee, or all when employeeID is empty
func (d *DB) GetBalanceAdjustments(ctx context.Context, employeeID string) ([]db.BalanceAdjustment, error) {
	query := psql.Select("id", "employee_id", "delta", "reason", "cycle_start", "created_at").
		From("balance_adjustment").
		OrderBy("seq")
	if employeeID != "" {
		query = query.Where(sq.Eq{"employee_id": employeeID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build balance adjustment query: %w", err)
	}

	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance adjustments: %w", err)
	}
	defer rows.Close()

	adjustments := []db.BalanceAdjustment{}
	for rows.Next() {
		var a db.BalanceAdjustment
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.Delta, &a.Reason, &a.CycleStart, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan balance adjustment: %w", err)
		}
		a.CycleStart = a.CycleStart.UTC()
		a.CreatedAt = a.CreatedAt.UTC()
		adjustments = append(adjustments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance adjustments: %w", err)
	}

	return adjustments, nil
}

// InsertBalanceAdjustments inserts the adjustments atomically
func (d *DB) InsertBalanceAdjustments(ctx context.Context, adjustments []db.BalanceAdjustment) error {
	if len(adjustments) == 0 {
		return nil
	}

	insert := psql.Insert("balance_adjustment").
		Columns("id", "employee_id", "delta", "reason", "cycle_start", "created_at")
	for _, a := range adjustments {
		insert = insert.Values(a.ID, a.EmployeeID, a.Delta, a.Reason, a.CycleStart, a.CreatedAt)
	}

	return d.execInTx(ctx, "balance adjustments", insert)
}

// GetBudgetAdjustments retrieves every global budget adjustment
func (d *DB) GetBudgetAdjustments(ctx context.Context) ([]db.BudgetAdjustment, error) {
	sql, args, err := psql.Select("id", "delta", "reason", "note", "created_at").
		From("budget_adjustment").
		OrderBy("seq").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build budget adjustment query: %w", err)
	}

	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget adjustments: %w", err)
	}
	defer rows.Close()

	adjustments := []db.BudgetAdjustment{}
	for rows.Next() {
		var a db.BudgetAdjustment
		if err := rows.Scan(&a.ID, &a.Delta, &a.Reason, &a.Note, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget adjustment: %w", err)
		}
		a.CreatedAt = a.CreatedAt.UTC()
		adjustments = append(adjustments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget adjustments: %w", err)
	}

	return adjustments, nil
}

// InsertBudgetAdjustment appends one global budget adjustment
func (d *DB) InsertBudgetAdjustment(ctx context.Context, adjustment db.BudgetAdjustment) error {
	insert := psql.Insert("budget_adjustment").
		Columns("id", "delta", "reason", "note", "created_at").
		Values(adjustment.ID, adjustment.Delta, adjustment.Reason, adjustment.Note, adjustment.CreatedAt)

	return d.execInTx(ctx, "budget adjustment", insert)
}
