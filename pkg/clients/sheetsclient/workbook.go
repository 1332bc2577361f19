package sheetsclient

import (
	"fmt"
	"sort"
	"strconv"

	"google.golang.org/api/sheets/v4"

	"github.com/jakechorley/ad-distributor/internal/config"
	"github.com/jakechorley/ad-distributor/pkg/core/model"
)

// Marketing workbook columns read or written outside the projects snapshot
const (
	colEmployeeID     = "EmployeeID"
	colEmployeeName   = "EmployeeName"
	colEmployeeEmail  = "Email"
	colAdsAllowance   = "AdsAllowance"
	colRegionName     = "RegionName"
	colProjectID      = "ProjectID"
	colAdsDistributed = "AdsDistributed"
)

// GetProjectSnapshot reads the Projects tab as text cells. Column checks are left to the distribution core.
func (c *Client) GetProjectSnapshot(cfg *config.Config) (model.Snapshot, error) {
	values, err := c.GetValues(cfg.MarketingSheetID, cfg.ProjectsTab)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to get projects data: %w", err)
	}

	return parseSnapshot(values), nil
}

// ListEmployees reads the Employees tab
func (c *Client) ListEmployees(cfg *config.Config) ([]model.Employee, error) {
	values, err := c.GetValues(cfg.MarketingSheetID, cfg.EmployeesTab)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee data: %w", err)
	}

	employees, err := parseEmployees(values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse employees: %w", err)
	}
	return employees, nil
}

// ListRegions reads the distinct region names of the Regions tab, sorted
func (c *Client) ListRegions(cfg *config.Config) ([]string, error) {
	values, err := c.GetValues(cfg.MarketingSheetID, cfg.RegionsTab)
	if err != nil {
		return nil, fmt.Errorf("failed to get region data: %w", err)
	}

	regions, err := parseRegions(values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regions: %w", err)
	}
	return regions, nil
}

// AddProjectAdsDistributed adds each delta to the AdsDistributed cell of the matching project rows.
// The tab is re-read first so concurrent edits by operators are not overwritten with stale totals.
// Returns the project IDs that were not found.
func (c *Client) AddProjectAdsDistributed(cfg *config.Config, deltas map[string]int) ([]string, error) {
	if len(deltas) == 0 {
		return nil, nil
	}

	values, err := c.GetValues(cfg.MarketingSheetID, cfg.ProjectsTab)
	if err != nil {
		return nil, fmt.Errorf("failed to get projects data: %w", err)
	}

	data, unmatched, err := planAdsDistributedUpdates(cfg.ProjectsTab, values, deltas)
	if err != nil {
		return nil, err
	}

	if err := c.UpdateCells(cfg.MarketingSheetID, data); err != nil {
		return nil, fmt.Errorf("failed to update AdsDistributed: %w", err)
	}
	return unmatched, nil
}

func parseSnapshot(values [][]interface{}) model.Snapshot {
	if len(values) == 0 {
		return model.Snapshot{Columns: []string{}, Rows: [][]string{}}
	}

	rows := make([][]string, 0, len(values)-1)
	for _, row := range values[1:] {
		rows = append(rows, rowStrings(row))
	}

	return model.Snapshot{
		Columns: rowStrings(values[0]),
		Rows:    rows,
	}
}

func parseEmployees(values [][]interface{}) ([]model.Employee, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no header row found")
	}

	indexes := headerIndex(values[0])
	cols, err := requireColumns(indexes, "Employees", colEmployeeID, colEmployeeName)
	if err != nil {
		return nil, err
	}
	idCol, nameCol := cols[0], cols[1]

	emailCol, hasEmail := indexes[colEmployeeEmail]
	allowanceCol, hasAllowance := indexes[colAdsAllowance]

	employees := make([]model.Employee, 0, len(values)-1)
	seen := make(map[string]bool)
	for i, row := range values[1:] {
		id := cellAt(row, idCol)
		if id == "" {
			continue
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate EmployeeID %s in row %d", id, i+2)
		}
		seen[id] = true

		employee := model.Employee{
			ID:   id,
			Name: cellAt(row, nameCol),
		}
		if hasEmail {
			employee.Email = cellAt(row, emailCol)
		}
		if hasAllowance {
			if raw := cellAt(row, allowanceCol); raw != "" {
				allowance, err := strconv.Atoi(raw)
				if err != nil || allowance < 0 {
					return nil, fmt.Errorf("invalid AdsAllowance %q for employee %s", raw, id)
				}
				employee.AdsAllowance = &allowance
			}
		}

		employees = append(employees, employee)
	}

	return employees, nil
}

func parseRegions(values [][]interface{}) ([]string, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no header row found")
	}

	cols, err := requireColumns(headerIndex(values[0]), "Regions", colRegionName)
	if err != nil {
		return nil, err
	}

	unique := make(map[string]bool)
	for _, row := range values[1:] {
		if name := cellAt(row, cols[0]); name != "" {
			unique[name] = true
		}
	}

	regions := make([]string, 0, len(unique))
	for name := range unique {
		regions = append(regions, name)
	}
	sort.Strings(regions)
	return regions, nil
}

// planAdsDistributedUpdates builds one cell write per matching project row. An empty AdsDistributed cell
// counts as 0; any other value that is not a number fails the whole plan so no counter is overwritten.
func planAdsDistributedUpdates(tab string, values [][]interface{}, deltas map[string]int) ([]*sheets.ValueRange, []string, error) {
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("no header row found in %s", tab)
	}

	cols, err := requireColumns(headerIndex(values[0]), tab, colProjectID, colAdsDistributed)
	if err != nil {
		return nil, nil, err
	}
	idCol, adsCol := cols[0], cols[1]

	matched := make(map[string]bool, len(deltas))
	var data []*sheets.ValueRange
	for i, row := range values[1:] {
		id := cellAt(row, idCol)
		delta, ok := deltas[id]
		if !ok {
			continue
		}
		matched[id] = true

		// header is sheet row 1, so values[1+i] is sheet row i+2
		cell := fmt.Sprintf("%s!%s%d", quoteTab(tab), columnLetter(adsCol), i+2)

		current := 0.0
		if raw := cellAt(row, adsCol); raw != "" {
			current, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s for project %s is not a number: %q", cell, id, raw)
			}
		}
		data = append(data, &sheets.ValueRange{
			Range:  cell,
			Values: [][]interface{}{{formatCount(current + float64(delta))}},
		})
	}

	var unmatched []string
	for id := range deltas {
		if !matched[id] {
			unmatched = append(unmatched, id)
		}
	}
	sort.Strings(unmatched)

	return data, unmatched, nil
}

// formatCount writes whole numbers as integers so the sheet does not show "21.0"
func formatCount(v float64) interface{} {
	if v == float64(int64(v)) {
		return int64(v)
	}
	return v
}
