package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/ad-distributor/internal/config"
	"github.com/jakechorley/ad-distributor/pkg/core/model"
	"github.com/jakechorley/ad-distributor/pkg/db"
)

// BalanceGrant is the cycle reset applied to one employee
type BalanceGrant struct {
	Employee  model.Employee
	Previous  int
	Allowance int
}

// InitBalancesResult reports what InitEmployeeBalances did
type InitBalancesResult struct {
	CycleStart time.Time
	Granted    []BalanceGrant

	// AlreadyGranted lists employees who already had a grant for the cycle
	AlreadyGranted []string
}

// EmployeeBalance is one row of the balances overview
type EmployeeBalance struct {
	EmployeeID string
	Name       string
	Allowance  int
	Balance    int

	// Listed is false for ledger entries whose employee is no longer in the Employees tab
	Listed bool
}

// BalancesOverview is the global budget together with every employee balance
type BalancesOverview struct {
	GlobalBudget int
	CycleStart   time.Time
	Employees    []EmployeeBalance
}

// Allowance returns the per cycle allowance of an employee
func Allowance(cfg *config.Config, e model.Employee) int {
	if e.AdsAllowance != nil {
		return *e.AdsAllowance
	}
	return cfg.DefaultAdsAllowance
}

// InitEmployeeBalances resets every employee's balance to their allowance for the current cycle.
// Employees who already received a grant for the cycle are left alone, so running it twice is harmless.
func InitEmployeeBalances(
	ctx context.Context,
	store db.BalanceStore,
	employeeClient EmployeeClient,
	cfg *config.Config,
	logger *zap.Logger,
	now time.Time,
) (*InitBalancesResult, error) {
	cycleStart, err := cfg.CurrentCycleStart(now)
	if err != nil {
		return nil, fmt.Errorf("failed to determine balance cycle: %w", err)
	}

	logger.Info("Starting initEmployeeBalances", zap.Time("cycle_start", cycleStart))

	employees, err := employeeClient.ListEmployees(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch employees: %w", err)
	}

	adjustments, err := store.GetBalanceAdjustments(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance adjustments: %w", err)
	}

	balances := db.SumBalances(adjustments)
	granted := make(map[string]bool)
	for _, a := range adjustments {
		if a.Reason == db.ReasonCycleGrant && a.CycleStart.Equal(cycleStart) {
			granted[a.EmployeeID] = true
		}
	}

	result := &InitBalancesResult{CycleStart: cycleStart}
	var newAdjustments []db.BalanceAdjustment
	for _, e := range employees {
		if granted[e.ID] {
			result.AlreadyGranted = append(result.AlreadyGranted, e.ID)
			continue
		}

		allowance := Allowance(cfg, e)
		previous := balances[e.ID]
		newAdjustments = append(newAdjustments, db.BalanceAdjustment{
			ID:         uuid.New().String(),
			EmployeeID: e.ID,
			Delta:      allowance - previous,
			Reason:     db.ReasonCycleGrant,
			CycleStart: cycleStart,
			CreatedAt:  now,
		})
		result.Granted = append(result.Granted, BalanceGrant{Employee: e, Previous: previous, Allowance: allowance})
	}

	if len(newAdjustments) == 0 {
		logger.Info("All employees already initialised for this cycle")
		return result, nil
	}

	if err := store.InsertBalanceAdjustments(ctx, newAdjustments); err != nil {
		return nil, fmt.Errorf("failed to insert balance adjustments: %w", err)
	}

	logger.Info("Employee balances initialised",
		zap.Int("granted", len(result.Granted)),
		zap.Int("already_granted", len(result.AlreadyGranted)))

	return result, nil
}

// ViewBalances returns the global budget and the balance of every employee
func ViewBalances(
	ctx context.Context,
	store db.BalanceStore,
	employeeClient EmployeeClient,
	cfg *config.Config,
	logger *zap.Logger,
	now time.Time,
) (*BalancesOverview, error) {
	logger.Debug("Starting viewBalances")

	cycleStart, err := cfg.CurrentCycleStart(now)
	if err != nil {
		return nil, fmt.Errorf("failed to determine balance cycle: %w", err)
	}

	employees, err := employeeClient.ListEmployees(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch employees: %w", err)
	}

	adjustments, err := store.GetBalanceAdjustments(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance adjustments: %w", err)
	}

	budgetAdjustments, err := store.GetBudgetAdjustments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch global budget: %w", err)
	}

	balances := db.SumBalances(adjustments)
	overview := &BalancesOverview{
		GlobalBudget: db.SumBudget(budgetAdjustments),
		CycleStart:   cycleStart,
		Employees:    make([]EmployeeBalance, 0, len(balances)),
	}

	listed := make(map[string]bool, len(employees))
	for _, e := range employees {
		listed[e.ID] = true
		overview.Employees = append(overview.Employees, EmployeeBalance{
			EmployeeID: e.ID,
			Name:       e.Name,
			Allowance:  Allowance(cfg, e),
			Balance:    balances[e.ID],
			Listed:     true,
		})
	}

	var orphans []string
	for id := range balances {
		if !listed[id] {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	for _, id := range orphans {
		logger.Debug("Balance ledger has an employee missing from the Employees tab", zap.String("employee_id", id))
		overview.Employees = append(overview.Employees, EmployeeBalance{
			EmployeeID: id,
			Balance:    balances[id],
		})
	}

	return overview, nil
}

// TopUpBudget credits the global budget and returns the new total
func TopUpBudget(
	ctx context.Context,
	store db.BalanceStore,
	logger *zap.Logger,
	amount int,
	note string,
	now time.Time,
) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("top up amount must be positive, got %d", amount)
	}

	adjustment := db.BudgetAdjustment{
		ID:        uuid.New().String(),
		Delta:     amount,
		Reason:    db.ReasonTopUp,
		Note:      strings.TrimSpace(note),
		CreatedAt: now,
	}
	if err := store.InsertBudgetAdjustment(ctx, adjustment); err != nil {
		return 0, fmt.Errorf("failed to insert budget adjustment: %w", err)
	}

	adjustments, err := store.GetBudgetAdjustments(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch global budget: %w", err)
	}
	total := db.SumBudget(adjustments)

	logger.Info("Global budget topped up", zap.Int("amount", amount), zap.Int("global_budget", total))

	return total, nil
}
