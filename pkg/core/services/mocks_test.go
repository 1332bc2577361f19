package services

import (
	"context"
	"errors"
	"time"

	"github.com/jakechorley/ad-distributor/internal/config"
	"github.com/jakechorley/ad-distributor/pkg/core/model"
	"github.com/jakechorley/ad-distributor/pkg/db"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

var marchCycle = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		MarketingSheetID:    "marketing-sheet",
		ProjectsTab:         "Projects",
		EmployeesTab:        "Employees",
		RegionsTab:          "Regions",
		Database:            config.DatabaseConfig{Backend: config.BackendSheets, SheetID: "ledger-sheet"},
		DefaultAdsAllowance: 100,
		BalanceCycle:        "FREQ=MONTHLY;BYMONTHDAY=1",
		BalanceCycleAnchor:  "2025-01-01",
		NotifyEmployees:     true,
		GmailSender:         "marketing@example.com",
	}
}

func intPtr(v int) *int {
	return &v
}

// mockStore implements db.Database in memory
type mockStore struct {
	log     []db.DistributionLog
	balance []db.BalanceAdjustment
	budget  []db.BudgetAdjustment

	getLogErr       error
	insertLogErr    error
	getBalanceErr   error
	insertBalErr    error
	getBudgetErr    error
	insertBudgetErr error
}

func (m *mockStore) GetDistributionLog(ctx context.Context, filter db.LogFilter) ([]db.DistributionLog, error) {
	if m.getLogErr != nil {
		return nil, m.getLogErr
	}
	var rows []db.DistributionLog
	for _, row := range m.log {
		if filter.Matches(row) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (m *mockStore) InsertDistributionLog(ctx context.Context, rows []db.DistributionLog) error {
	if m.insertLogErr != nil {
		return m.insertLogErr
	}
	m.log = append(m.log, rows...)
	return nil
}

func (m *mockStore) GetBalanceAdjustments(ctx context.Context, employeeID string) ([]db.BalanceAdjustment, error) {
	if m.getBalanceErr != nil {
		return nil, m.getBalanceErr
	}
	var out []db.BalanceAdjustment
	for _, a := range m.balance {
		if employeeID == "" || a.EmployeeID == employeeID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockStore) InsertBalanceAdjustments(ctx context.Context, adjustments []db.BalanceAdjustment) error {
	if m.insertBalErr != nil {
		return m.insertBalErr
	}
	m.balance = append(m.balance, adjustments...)
	return nil
}

func (m *mockStore) GetBudgetAdjustments(ctx context.Context) ([]db.BudgetAdjustment, error) {
	if m.getBudgetErr != nil {
		return nil, m.getBudgetErr
	}
	return m.budget, nil
}

func (m *mockStore) InsertBudgetAdjustment(ctx context.Context, adjustment db.BudgetAdjustment) error {
	if m.insertBudgetErr != nil {
		return m.insertBudgetErr
	}
	m.budget = append(m.budget, adjustment)
	return nil
}

var _ db.Database = (*mockStore)(nil)

// mockWorkbook implements MarketingWorkbook
type mockWorkbook struct {
	snapshot  model.Snapshot
	employees []model.Employee
	regions   []string

	// deltas records every AddProjectAdsDistributed call
	deltas    []map[string]int
	unmatched []string

	snapshotErr  error
	employeesErr error
	regionsErr   error
	updateErr    error
}

func (m *mockWorkbook) GetProjectSnapshot(cfg *config.Config) (model.Snapshot, error) {
	if m.snapshotErr != nil {
		return model.Snapshot{}, m.snapshotErr
	}
	return m.snapshot, nil
}

func (m *mockWorkbook) ListEmployees(cfg *config.Config) ([]model.Employee, error) {
	if m.employeesErr != nil {
		return nil, m.employeesErr
	}
	return m.employees, nil
}

func (m *mockWorkbook) ListRegions(cfg *config.Config) ([]string, error) {
	if m.regionsErr != nil {
		return nil, m.regionsErr
	}
	return m.regions, nil
}

func (m *mockWorkbook) AddProjectAdsDistributed(cfg *config.Config, deltas map[string]int) ([]string, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.deltas = append(m.deltas, deltas)
	return m.unmatched, nil
}

type sentEmail struct {
	to      string
	subject string
	body    string
}

// mockMailer implements Mailer
type mockMailer struct {
	sent []sentEmail
	err  error
}

func (m *mockMailer) SendEmail(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}

var errBoom = errors.New("boom")
