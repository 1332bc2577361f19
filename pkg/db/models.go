package db

import (
	"strings"
	"time"

	"github.com/jakechorley/ad-distributor/pkg/core/distribution"
)

// DistributionLog is one row of the distribution ledger. Headers match distribution.LogColumns.
type DistributionLog struct {
	DistributionID   string    `ssql_header:"DistributionID" ssql_type:"text"`
	EmployeeID       string    `ssql_header:"EmployeeID" ssql_type:"text"`
	ProjectID        string    `ssql_header:"ProjectID" ssql_type:"text"`
	RegionName       string    `ssql_header:"RegionName" ssql_type:"text"`
	UnitTypeName     string    `ssql_header:"UnitTypeName" ssql_type:"text"`
	AdsAllocated     int       `ssql_header:"AdsAllocated" ssql_type:"int"`
	DistributionDate time.Time `ssql_header:"DistributionDate" ssql_type:"datetime"`
}

// Reasons recorded on balance adjustments
const (
	ReasonCycleGrant   = "cycle_grant"
	ReasonDistribution = "distribution"
	ReasonTopUp        = "top_up"
)

// BalanceAdjustment credits (positive Delta) or debits an employee's ad balance
type BalanceAdjustment struct {
	ID         string    `ssql_header:"id" ssql_type:"uuid"`
	EmployeeID string    `ssql_header:"employee_id" ssql_type:"text"`
	Delta      int       `ssql_header:"delta" ssql_type:"int"`
	Reason     string    `ssql_header:"reason" ssql_type:"text"`
	CycleStart time.Time `ssql_header:"cycle_start" ssql_type:"datetime"`
	CreatedAt  time.Time `ssql_header:"created_at" ssql_type:"datetime"`
}

// BudgetAdjustment credits or debits the global ad budget
type BudgetAdjustment struct {
	ID        string    `ssql_header:"id" ssql_type:"uuid"`
	Delta     int       `ssql_header:"delta" ssql_type:"int"`
	Reason    string    `ssql_header:"reason" ssql_type:"text"`
	Note      string    `ssql_header:"note" ssql_type:"text"`
	CreatedAt time.Time `ssql_header:"created_at" ssql_type:"datetime"`
}

// LogFilter narrows a distribution log listing. Empty fields match everything.
type LogFilter struct {
	EmployeeID string
	Region     string
}

// Matches reports whether a row passes the filter. Regions compare case-insensitively.
func (f LogFilter) Matches(row DistributionLog) bool {
	if f.EmployeeID != "" && strings.TrimSpace(row.EmployeeID) != strings.TrimSpace(f.EmployeeID) {
		return false
	}
	if f.Region != "" && !strings.EqualFold(strings.TrimSpace(row.RegionName), strings.TrimSpace(f.Region)) {
		return false
	}
	return true
}

// LogRowsFromEntries converts core ledger entries to storage rows
func LogRowsFromEntries(entries []distribution.LogEntry) []DistributionLog {
	rows := make([]DistributionLog, len(entries))
	for i, e := range entries {
		rows[i] = DistributionLog{
			DistributionID:   e.DistributionID,
			EmployeeID:       e.EmployeeID,
			ProjectID:        e.ProjectID,
			RegionName:       e.RegionName,
			UnitTypeName:     e.UnitTypeName,
			AdsAllocated:     e.AdsAllocated,
			DistributionDate: e.DistributionDate,
		}
	}
	return rows
}

// Entry converts a storage row back to a core ledger entry
func (l DistributionLog) Entry() distribution.LogEntry {
	return distribution.LogEntry{
		DistributionID:   l.DistributionID,
		EmployeeID:       l.EmployeeID,
		ProjectID:        l.ProjectID,
		RegionName:       l.RegionName,
		UnitTypeName:     l.UnitTypeName,
		AdsAllocated:     l.AdsAllocated,
		DistributionDate: l.DistributionDate,
	}
}

// SumBalances totals adjustments per employee
func SumBalances(adjustments []BalanceAdjustment) map[string]int {
	totals := make(map[string]int)
	for _, a := range adjustments {
		totals[a.EmployeeID] += a.Delta
	}
	return totals
}

// SumBudget totals the global budget adjustments
func SumBudget(adjustments []BudgetAdjustment) int {
	total := 0
	for _, a := range adjustments {
		total += a.Delta
	}
	return total
}
