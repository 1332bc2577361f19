package sheetsclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSnapshot(t *testing.T) {
	values := [][]interface{}{
		{"ProjectID", "RegionName", "MarketingSize", "Req"},
		{"P1", "North", "100", "Yes"},
		{"P2", "South", float64(80)},
		{},
	}

	snapshot := parseSnapshot(values)

	assert.Equal(t, []string{"ProjectID", "RegionName", "MarketingSize", "Req"}, snapshot.Columns)
	require.Len(t, snapshot.Rows, 3)
	assert.Equal(t, []string{"P1", "North", "100", "Yes"}, snapshot.Rows[0])
	assert.Equal(t, []string{"P2", "South", "80"}, snapshot.Rows[1])
	assert.Empty(t, snapshot.Rows[2])
	assert.Equal(t, "", snapshot.Cell(snapshot.Rows[1], 3))
}

func TestParseSnapshot_EmptyTab(t *testing.T) {
	snapshot := parseSnapshot(nil)

	assert.Empty(t, snapshot.Columns)
	assert.Empty(t, snapshot.Rows)
}

func TestParseEmployees(t *testing.T) {
	values := [][]interface{}{
		{"EmployeeID", "EmployeeName", "Email", "AdsAllowance"},
		{"E101", "Lina Haddad", "lina@example.com", "120"},
		{" E102 ", "Omar Saleh", "", ""},
		{"", "Blank row"},
		{"E103", "Sara Nasser"},
	}

	employees, err := parseEmployees(values)
	require.NoError(t, err)
	require.Len(t, employees, 3)

	assert.Equal(t, "E101", employees[0].ID)
	assert.Equal(t, "Lina Haddad", employees[0].Name)
	assert.Equal(t, "lina@example.com", employees[0].Email)
	require.NotNil(t, employees[0].AdsAllowance)
	assert.Equal(t, 120, *employees[0].AdsAllowance)

	assert.Equal(t, "E102", employees[1].ID)
	assert.Empty(t, employees[1].Email)
	assert.Nil(t, employees[1].AdsAllowance)

	assert.Equal(t, "E103", employees[2].ID)
	assert.Equal(t, "Sara Nasser (ID: E103)", employees[2].DisplayName())
}

func TestParseEmployees_OptionalColumnsAbsent(t *testing.T) {
	values := [][]interface{}{
		{"EmployeeName", "EmployeeID"},
		{"Lina Haddad", "E101"},
	}

	employees, err := parseEmployees(values)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "E101", employees[0].ID)
	assert.Empty(t, employees[0].Email)
	assert.Nil(t, employees[0].AdsAllowance)
}

func TestParseEmployees_Errors(t *testing.T) {
	tests := []struct {
		name        string
		values      [][]interface{}
		errContains string
	}{
		{"empty tab", nil, "no header row"},
		{"missing name column", [][]interface{}{{"EmployeeID"}}, "EmployeeName"},
		{"duplicate id", [][]interface{}{
			{"EmployeeID", "EmployeeName"},
			{"E1", "A"},
			{"E1", "B"},
		}, "duplicate EmployeeID E1 in row 3"},
		{"bad allowance", [][]interface{}{
			{"EmployeeID", "EmployeeName", "AdsAllowance"},
			{"E1", "A", "lots"},
		}, "invalid AdsAllowance"},
		{"negative allowance", [][]interface{}{
			{"EmployeeID", "EmployeeName", "AdsAllowance"},
			{"E1", "A", "-5"},
		}, "invalid AdsAllowance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseEmployees(tt.values)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestParseRegions(t *testing.T) {
	values := [][]interface{}{
		{"RegionID", "RegionName"},
		{"1", "North"},
		{"2", " East "},
		{"3", "North"},
		{"4", ""},
	}

	regions, err := parseRegions(values)
	require.NoError(t, err)
	assert.Equal(t, []string{"East", "North"}, regions)
}

func TestParseRegions_MissingColumn(t *testing.T) {
	_, err := parseRegions([][]interface{}{{"Name"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RegionName")
}

func TestPlanAdsDistributedUpdates(t *testing.T) {
	values := [][]interface{}{
		{"ProjectID", "ProjectName", "AdsDistributed"},
		{"P1", "Sky Tower", "20"},
		{"P2", "Ocean View", "30"},
		{"P3", "Green Hills", ""},
		{"P2", "Ocean View (phase 2)", float64(1500)},
	}

	data, unmatched, err := planAdsDistributedUpdates("Projects", values, map[string]int{"P2": 29, "P3": 4, "P9": 1})
	require.NoError(t, err)

	require.Len(t, data, 3)
	assert.Equal(t, "'Projects'!C3", data[0].Range)
	assert.Equal(t, [][]interface{}{{int64(59)}}, data[0].Values)
	assert.Equal(t, "'Projects'!C4", data[1].Range)
	assert.Equal(t, [][]interface{}{{int64(4)}}, data[1].Values)
	assert.Equal(t, "'Projects'!C5", data[2].Range)
	assert.Equal(t, [][]interface{}{{int64(1529)}}, data[2].Values)

	assert.Equal(t, []string{"P9"}, unmatched)
}

func TestPlanAdsDistributedUpdates_RefusesUnparsableCount(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
	}{
		{"thousands separator", "1,500"},
		{"text", "n/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := [][]interface{}{
				{"ProjectID", "AdsDistributed"},
				{"P1", tt.value},
				{"P2", "30"},
			}

			data, _, err := planAdsDistributedUpdates("Projects", values, map[string]int{"P1": 21, "P2": 5})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "'Projects'!B2")
			assert.Contains(t, err.Error(), "P1")
			assert.Empty(t, data)
		})
	}
}

func TestPlanAdsDistributedUpdates_MissingColumn(t *testing.T) {
	values := [][]interface{}{{"ProjectID", "ProjectName"}}

	_, _, err := planAdsDistributedUpdates("Projects", values, map[string]int{"P1": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AdsDistributed")
}

func TestColumnLetter(t *testing.T) {
	tests := map[int]string{0: "A", 2: "C", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA", 701: "ZZ", 702: "AAA"}
	for index, expected := range tests {
		assert.Equal(t, expected, columnLetter(index), "index %d", index)
	}
}

func TestQuoteTab(t *testing.T) {
	assert.Equal(t, "'Projects'", quoteTab("Projects"))
	assert.Equal(t, "'Owner''s tab'", quoteTab("Owner's tab"))
}
