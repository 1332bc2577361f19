package db

import "context"

// DistributionLogStore defines the interface for distribution ledger operations
type DistributionLogStore interface {
	GetDistributionLog(ctx context.Context, filter LogFilter) ([]DistributionLog, error)
	InsertDistributionLog(ctx context.Context, rows []DistributionLog) error
}

// BalanceStore defines the interface for employee balance and global budget ledgers
type BalanceStore interface {
	// GetBalanceAdjustments returns the adjustments of one employee, or of everyone when employeeID is empty
	GetBalanceAdjustments(ctx context.Context, employeeID string) ([]BalanceAdjustment, error)
	InsertBalanceAdjustments(ctx context.Context, adjustments []BalanceAdjustment) error
	GetBudgetAdjustments(ctx context.Context) ([]BudgetAdjustment, error)
	InsertBudgetAdjustment(ctx context.Context, adjustment BudgetAdjustment) error
}

// Database defines the interface for all database operations.
// Both the SheetsSQL-backed db.DB and postgres.DB implement this interface.
type Database interface {
	DistributionLogStore
	BalanceStore
}
