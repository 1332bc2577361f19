package postgres

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/jakechorley/ad-distributor/pkg/db"
)

var distributionLogColumns = []string{
	"distribution_id", "employee_id", "project_id", "region_name",
	"unit_type_name", "ads_allocated", "distribution_date",
}

// distributionLogQuery builds the filtered listing; rows come back in insertion order
func distributionLogQuery(filter db.LogFilter) (string, []interface{}, error) {
	query := psql.Select(distributionLogColumns...).From("distribution_log").OrderBy("seq")

	if employeeID := strings.TrimSpace(filter.EmployeeID); employeeID != "" {
		query = query.Where(sq.Eq{"employee_id": employeeID})
	}
	if region := strings.TrimSpace(filter.Region); region != "" {
		query = query.Where("LOWER(TRIM(region_name)) = LOWER(?)", region)
	}

	return query.ToSql()
}

// GetDistributionLog retrieves the distribution log rows that match filter
func (d *DB) GetDistributionLog(ctx context.Context, filter db.LogFilter) ([]db.DistributionLog, error) {
	sql, args, err := distributionLogQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build distribution log query: %w", err)
	}

	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query distribution log: %w", err)
	}
	defer rows.Close()

	logRows := []db.DistributionLog{}
	for rows.Next() {
		var l db.DistributionLog
		if err := rows.Scan(&l.DistributionID, &l.EmployeeID, &l.ProjectID, &l.RegionName,
			&l.UnitTypeName, &l.AdsAllocated, &l.DistributionDate); err != nil {
			return nil, fmt.Errorf("failed to scan distribution log row: %w", err)
		}
		l.DistributionDate = l.DistributionDate.UTC()
		logRows = append(logRows, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating distribution log: %w", err)
	}

	return logRows, nil
}

// InsertDistributionLog inserts every row in a single statement inside a transaction
func (d *DB) InsertDistributionLog(ctx context.Context, logRows []db.DistributionLog) error {
	if len(logRows) == 0 {
		return nil
	}

	insert := psql.Insert("distribution_log").Columns(distributionLogColumns...)
	for _, l := range logRows {
		insert = insert.Values(l.DistributionID, l.EmployeeID, l.ProjectID, l.RegionName,
			l.UnitTypeName, l.AdsAllocated, l.DistributionDate)
	}

	return d.execInTx(ctx, "distribution log", insert)
}

// execInTx runs one built statement in its own transaction
func (d *DB) execInTx(ctx context.Context, what string, stmt sq.Sqlizer) error {
	sql, args, err := stmt.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s insert: %w", what, err)
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to insert %s: %w", what, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
