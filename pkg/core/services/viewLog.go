package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/jakechorley/ad-distributor/pkg/core/distribution"
	"github.com/jakechorley/ad-distributor/pkg/db"
)

// ViewLogResult is a filtered listing of the distribution log
type ViewLogResult struct {
	Entries  []distribution.LogEntry
	TotalAds int

	// AdsByProject totals the listed entries per project
	AdsByProject map[string]int
}

// ViewLogStore defines the database operations needed to list the distribution log
type ViewLogStore interface {
	GetDistributionLog(ctx context.Context, filter db.LogFilter) ([]db.DistributionLog, error)
}

// ProjectIDs returns the projects in AdsByProject, sorted
func (r *ViewLogResult) ProjectIDs() []string {
	ids := make([]string, 0, len(r.AdsByProject))
	for id := range r.AdsByProject {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ViewLog lists the distribution log, oldest first, narrowed by filter
func ViewLog(
	ctx context.Context,
	store ViewLogStore,
	logger *zap.Logger,
	filter db.LogFilter,
) (*ViewLogResult, error) {
	logger.Debug("Starting viewLog",
		zap.String("employee_id", filter.EmployeeID),
		zap.String("region", filter.Region))

	rows, err := store.GetDistributionLog(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch distribution log: %w", err)
	}

	result := &ViewLogResult{
		Entries:      make([]distribution.LogEntry, 0, len(rows)),
		AdsByProject: make(map[string]int),
	}
	for _, row := range rows {
		result.Entries = append(result.Entries, row.Entry())
		result.TotalAds += row.AdsAllocated
		result.AdsByProject[row.ProjectID] += row.AdsAllocated
	}

	sort.SliceStable(result.Entries, func(i, j int) bool {
		return result.Entries[i].DistributionDate.Before(result.Entries[j].DistributionDate)
	})

	logger.Debug("viewLog completed", zap.Int("rows", len(result.Entries)), zap.Int("total_ads", result.TotalAds))

	return result, nil
}

// WriteLogCSV writes entries as CSV with the distribution log column order
func WriteLogCSV(w io.Writer, entries []distribution.LogEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(distribution.LogColumns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, entry := range entries {
		if err := cw.Write(entry.Values()); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
