package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/ad-distributor/internal/config"
	"github.com/jakechorley/ad-distributor/pkg/core/distribution"
	"github.com/jakechorley/ad-distributor/pkg/core/model"
	"github.com/jakechorley/ad-distributor/pkg/db"
)

var (
	ErrInvalidRequest  = errors.New("invalid distribution request")
	ErrUnknownEmployee = errors.New("unknown employee")
	ErrUnknownRegion   = errors.New("unknown region")
)

// InsufficientBalanceError is returned when an employee asks for more ads than their balance holds
type InsufficientBalanceError struct {
	EmployeeID   string
	Requested    int
	Balance      int
	GlobalBudget int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("employee %s requested %d ads but only has %d available", e.EmployeeID, e.Requested, e.Balance)
}

// Suggested is the largest quantity that fits both the employee balance and the global budget
func (e *InsufficientBalanceError) Suggested() int {
	return max(0, min(e.Balance, e.GlobalBudget))
}

// EmployeeClient defines the operations needed to fetch employees
type EmployeeClient interface {
	ListEmployees(cfg *config.Config) ([]model.Employee, error)
}

// RegionClient defines the operations needed to fetch regions
type RegionClient interface {
	ListRegions(cfg *config.Config) ([]string, error)
}

// ProjectClient defines the operations needed to read and update the projects tab
type ProjectClient interface {
	GetProjectSnapshot(cfg *config.Config) (model.Snapshot, error)
	AddProjectAdsDistributed(cfg *config.Config, deltas map[string]int) ([]string, error)
}

// MarketingWorkbook is every workbook operation a distribution needs
type MarketingWorkbook interface {
	EmployeeClient
	RegionClient
	ProjectClient
}

// Mailer sends plain text emails
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// DistributeAdsStore defines the database operations needed to record a distribution
type DistributeAdsStore interface {
	InsertDistributionLog(ctx context.Context, rows []db.DistributionLog) error
	db.BalanceStore
}

// DistributeRequest is one operator request
type DistributeRequest struct {
	EmployeeID string
	Region     string
	Quantity   int
}

// DistributeOptions tunes a single DistributeAds call
type DistributeOptions struct {
	// DryRun computes the distribution without writing anything or sending email
	DryRun bool

	// NoEmail skips the employee notification even when notifications are enabled
	NoEmail bool

	// IDs generates distribution IDs; nil means random UUIDs
	IDs distribution.IDGenerator

	// Now overrides the distribution time; zero means the current UTC time
	Now time.Time
}

// DistributeAdsResult is what a distribution did
type DistributeAdsResult struct {
	Employee model.Employee
	Region   string

	Result *distribution.Result

	BalanceBefore int
	BudgetBefore  int

	// Persisted is true when every write succeeded
	Persisted bool

	// EmployeeDebited is true once the employee balance debit is written, even if another write failed
	EmployeeDebited bool

	// UnmatchedProjects are awarded projects that could not be found in the projects tab on write back
	UnmatchedProjects []string

	Notified  bool
	NotifyErr error
}

// BalanceAfter is the employee balance after the distribution, counting the debit only if it was written
func (r *DistributeAdsResult) BalanceAfter() int {
	if !r.EmployeeDebited {
		return r.BalanceBefore
	}
	return r.BalanceBefore - r.Result.TotalAllocated
}

// DistributeAds runs one distribution end to end.
// It validates the request against the workbook and the employee balance, allocates ads across the region's
// projects, records the ledger rows, debits the balances, updates AdsDistributed and notifies the employee.
func DistributeAds(
	ctx context.Context,
	store DistributeAdsStore,
	workbook MarketingWorkbook,
	mailer Mailer,
	cfg *config.Config,
	logger *zap.Logger,
	req DistributeRequest,
	opts DistributeOptions,
) (*DistributeAdsResult, error) {
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	req.Region = strings.TrimSpace(req.Region)

	logger.Info("Starting distributeAds",
		zap.String("employee_id", req.EmployeeID),
		zap.String("region", req.Region),
		zap.Int("requested", req.Quantity),
		zap.Bool("dry_run", opts.DryRun))

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	employees, err := workbook.ListEmployees(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch employees: %w", err)
	}
	employee, ok := findEmployee(employees, req.EmployeeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEmployee, req.EmployeeID)
	}

	regions, err := workbook.ListRegions(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch regions: %w", err)
	}
	region, ok := findRegion(regions, req.Region)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRegion, req.Region)
	}

	balanceAdjustments, err := store.GetBalanceAdjustments(ctx, employee.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch employee balance: %w", err)
	}
	balance := db.SumBalances(balanceAdjustments)[employee.ID]

	budgetAdjustments, err := store.GetBudgetAdjustments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch global budget: %w", err)
	}
	budget := db.SumBudget(budgetAdjustments)

	if req.Quantity > balance {
		return nil, &InsufficientBalanceError{
			EmployeeID:   employee.ID,
			Requested:    req.Quantity,
			Balance:      balance,
			GlobalBudget: budget,
		}
	}
	if req.Quantity > budget {
		logger.Warn("Request exceeds the global budget",
			zap.Int("requested", req.Quantity),
			zap.Int("global_budget", budget))
	}

	snapshot, err := workbook.GetProjectSnapshot(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}

	result, err := distribution.Distribute(snapshot, distribution.Request{
		Region:     region,
		EmployeeID: employee.ID,
		Quantity:   req.Quantity,
		At:         now,
	}, opts.IDs)
	if err != nil {
		return nil, fmt.Errorf("failed to distribute ads: %w", err)
	}

	out := &DistributeAdsResult{
		Employee:      employee,
		Region:        region,
		Result:        result,
		BalanceBefore: balance,
		BudgetBefore:  budget,
	}

	for _, projectID := range result.ProjectsWithoutUnitTypes {
		logger.Warn("Project received ads but lists no unit types",
			zap.String("project_id", projectID),
			zap.Int("ads", result.ProjectUpdates[projectID]))
	}

	if result.TotalAllocated == 0 {
		logger.Warn("No ads allocated", zap.String("outcome", string(result.Outcome)))
		return out, nil
	}

	if opts.DryRun {
		logger.Info("Dry run, nothing recorded", zap.Int("allocated", result.TotalAllocated))
		return out, nil
	}

	unmatched, debited, err := recordDistribution(ctx, store, workbook, cfg, employee, region, result, now)
	out.UnmatchedProjects = unmatched
	out.EmployeeDebited = debited
	for _, projectID := range unmatched {
		logger.Warn("Awarded project not found in projects tab", zap.String("project_id", projectID))
	}
	if err != nil {
		return out, err
	}
	out.Persisted = true

	logger.Info("Distribution recorded",
		zap.Int("allocated", result.TotalAllocated),
		zap.Int("log_rows", len(result.Log)),
		zap.Int("balance_after", out.BalanceAfter()))

	if opts.NoEmail || !cfg.NotifyEmployees || mailer == nil {
		return out, nil
	}
	if employee.Email == "" {
		logger.Info("Employee has no email address, skipping notification", zap.String("employee_id", employee.ID))
		return out, nil
	}

	subject, body := distributionEmail(out)
	if err := mailer.SendEmail(employee.Email, subject, body); err != nil {
		logger.Warn("Failed to notify employee", zap.String("email", employee.Email), zap.Error(err))
		out.NotifyErr = err
		return out, nil
	}
	out.Notified = true

	return out, nil
}

func validateRequest(req DistributeRequest) error {
	if req.EmployeeID == "" {
		return fmt.Errorf("%w: employee ID is required", ErrInvalidRequest)
	}
	if req.Region == "" {
		return fmt.Errorf("%w: region is required", ErrInvalidRequest)
	}
	if req.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidRequest, req.Quantity)
	}
	return nil
}

func findEmployee(employees []model.Employee, id string) (model.Employee, bool) {
	for _, e := range employees {
		if e.ID == id {
			return e, true
		}
	}
	return model.Employee{}, false
}

// findRegion returns the Regions tab spelling of region
func findRegion(regions []string, region string) (string, bool) {
	for _, r := range regions {
		if strings.EqualFold(strings.TrimSpace(r), region) {
			return r, true
		}
	}
	return "", false
}

// recordDistribution attempts every write and joins the failures.
// It also reports whether the employee debit was written.
func recordDistribution(
	ctx context.Context,
	store DistributeAdsStore,
	projects ProjectClient,
	cfg *config.Config,
	employee model.Employee,
	region string,
	result *distribution.Result,
	now time.Time,
) ([]string, bool, error) {
	var errs []error

	if len(result.Log) > 0 {
		if err := store.InsertDistributionLog(ctx, db.LogRowsFromEntries(result.Log)); err != nil {
			errs = append(errs, fmt.Errorf("failed to append distribution log: %w", err))
		}
	}

	cycleStart, err := cfg.CurrentCycleStart(now)
	if err != nil {
		errs = append(errs, err)
		cycleStart = now
	}
	debit := db.BalanceAdjustment{
		ID:         uuid.New().String(),
		EmployeeID: employee.ID,
		Delta:      -result.TotalAllocated,
		Reason:     db.ReasonDistribution,
		CycleStart: cycleStart,
		CreatedAt:  now,
	}
	debited := true
	if err := store.InsertBalanceAdjustments(ctx, []db.BalanceAdjustment{debit}); err != nil {
		errs = append(errs, fmt.Errorf("failed to debit employee balance: %w", err))
		debited = false
	}

	unmatched, err := projects.AddProjectAdsDistributed(cfg, result.ProjectUpdates)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to update AdsDistributed: %w", err))
	}

	budgetDebit := db.BudgetAdjustment{
		ID:        uuid.New().String(),
		Delta:     -result.TotalAllocated,
		Reason:    db.ReasonDistribution,
		Note:      fmt.Sprintf("%s %s", employee.ID, region),
		CreatedAt: now,
	}
	if err := store.InsertBudgetAdjustment(ctx, budgetDebit); err != nil {
		errs = append(errs, fmt.Errorf("failed to debit global budget: %w", err))
	}

	if len(errs) > 0 {
		return unmatched, debited, fmt.Errorf("one or more updates failed: %w", errors.Join(errs...))
	}
	return unmatched, debited, nil
}

func distributionEmail(r *DistributeAdsResult) (string, string) {
	subject := fmt.Sprintf("%d ads distributed in %s", r.Result.TotalAllocated, r.Region)

	name := r.Employee.Name
	if name == "" {
		name = r.Employee.ID
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "%d ads have been distributed to you in %s:\n\n", r.Result.TotalAllocated, r.Region)
	for _, entry := range r.Result.Log {
		fmt.Fprintf(&b, "  %s / %s: %d\n", entry.ProjectID, entry.UnitTypeName, entry.AdsAllocated)
	}
	fmt.Fprintf(&b, "\nRemaining balance: %d\n", r.BalanceAfter())

	return subject, b.String()
}
