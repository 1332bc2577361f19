package db

import (
	"context"
	"fmt"

	"github.com/jakechorley/ad-distributor/pkg/sheetssql"
)

// DB provides database operations using SheetsSQL
type DB struct {
	ssql *sheetssql.DB
}

var _ Database = (*DB)(nil)

// Schema returns the SheetsSQL schema of every ledger table
func Schema() (*sheetssql.Schema, error) {
	return sheetssql.SchemaFromModels(
		DistributionLog{},
		BalanceAdjustment{},
		BudgetAdjustment{},
	)
}

// Open connects to the ledger spreadsheet, creating any missing tables
func Open(client sheetssql.SheetsClient, spreadsheetID string) (*DB, error) {
	schema, err := Schema()
	if err != nil {
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}

	ssql, err := sheetssql.NewDB(client, spreadsheetID, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &DB{ssql: ssql}, nil
}

// GetDistributionLog retrieves the distribution log rows that match filter, in insertion order
func (db *DB) GetDistributionLog(ctx context.Context, filter LogFilter) ([]DistributionLog, error) {
	rows, err := sheetssql.GetTableAs[DistributionLog](db.ssql, sheetssql.TableName[DistributionLog]())
	if err != nil {
		return nil, fmt.Errorf("failed to get distribution log: %w", err)
	}

	filtered := make([]DistributionLog, 0, len(rows))
	for _, row := range rows {
		if filter.Matches(row) {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

// InsertDistributionLog appends rows to the distribution log in one request
func (db *DB) InsertDistributionLog(ctx context.Context, rows []DistributionLog) error {
	if err := sheetssql.InsertModels(db.ssql, rows); err != nil {
		return fmt.Errorf("failed to insert distribution log: %w", err)
	}
	return nil
}

func (db *DB) GetBalanceAdjustments(ctx context.Context, employeeID string) ([]BalanceAdjustment, error) {
	all, err := sheetssql.GetTableAs[BalanceAdjustment](db.ssql, sheetssql.TableName[BalanceAdjustment]())
	if err != nil {
		return nil, fmt.Errorf("failed to get balance adjustments: %w", err)
	}
	if employeeID == "" {
		return all, nil
	}

	adjustments := make([]BalanceAdjustment, 0)
	for _, a := range all {
		if a.EmployeeID == employeeID {
			adjustments = append(adjustments, a)
		}
	}
	return adjustments, nil
}

func (db *DB) InsertBalanceAdjustments(ctx context.Context, adjustments []BalanceAdjustment) error {
	if err := sheetssql.InsertModels(db.ssql, adjustments); err != nil {
		return fmt.Errorf("failed to insert balance adjustments: %w", err)
	}
	return nil
}

func (db *DB) GetBudgetAdjustments(ctx context.Context) ([]BudgetAdjustment, error) {
	adjustments, err := sheetssql.GetTableAs[BudgetAdjustment](db.ssql, sheetssql.TableName[BudgetAdjustment]())
	if err != nil {
		return nil, fmt.Errorf("failed to get budget adjustments: %w", err)
	}
	return adjustments, nil
}

func (db *DB) InsertBudgetAdjustment(ctx context.Context, adjustment BudgetAdjustment) error {
	if err := sheetssql.InsertModel(db.ssql, adjustment); err != nil {
		return fmt.Errorf("failed to insert budget adjustment: %w", err)
	}
	return nil
}
