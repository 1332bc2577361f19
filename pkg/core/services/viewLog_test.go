package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/ad-distributor/pkg/core/distribution"
	"github.com/jakechorley/ad-distributor/pkg/db"
)

func loggedStore() *mockStore {
	early := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	late := time.Date(2025, 3, 9, 16, 45, 0, 0, time.UTC)
	return &mockStore{
		log: []db.DistributionLog{
			{DistributionID: "d3", EmployeeID: "E102", ProjectID: "P3", RegionName: "South", UnitTypeName: "Townhouse", AdsAllocated: 7, DistributionDate: late},
			{DistributionID: "d1", EmployeeID: "E101", ProjectID: "P1", RegionName: "North", UnitTypeName: "Apt", AdsAllocated: 11, DistributionDate: early},
			{DistributionID: "d2", EmployeeID: "E101", ProjectID: "P1", RegionName: "North", UnitTypeName: "Studio", AdsAllocated: 10, DistributionDate: early},
			{DistributionID: "d4", EmployeeID: "E101", ProjectID: "P2", RegionName: "north", UnitTypeName: "Villa", AdsAllocated: 4, DistributionDate: late},
		},
	}
}

func TestViewLog_All(t *testing.T) {
	result, err := ViewLog(context.Background(), loggedStore(), zap.NewNop(), db.LogFilter{})
	require.NoError(t, err)

	require.Len(t, result.Entries, 4)
	assert.Equal(t, "d1", result.Entries[0].DistributionID)
	assert.Equal(t, "d2", result.Entries[1].DistributionID)
	assert.Equal(t, "d3", result.Entries[2].DistributionID)
	assert.Equal(t, 32, result.TotalAds)
	assert.Equal(t, []string{"P1", "P2", "P3"}, result.ProjectIDs())
	assert.Equal(t, 21, result.AdsByProject["P1"])
}

func TestViewLog_Filters(t *testing.T) {
	tests := []struct {
		name     string
		filter   db.LogFilter
		expected []string
	}{
		{"by employee", db.LogFilter{EmployeeID: "E102"}, []string{"d3"}},
		{"by region ignores case", db.LogFilter{Region: "NORTH"}, []string{"d1", "d2", "d4"}},
		{"by employee and region", db.LogFilter{EmployeeID: "E102", Region: "North"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ViewLog(context.Background(), loggedStore(), zap.NewNop(), tt.filter)
			require.NoError(t, err)

			ids := make([]string, 0, len(result.Entries))
			for _, e := range result.Entries {
				ids = append(ids, e.DistributionID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestViewLog_StoreError(t *testing.T) {
	_, err := ViewLog(context.Background(), &mockStore{getLogErr: errBoom}, zap.NewNop(), db.LogFilter{})
	assert.ErrorIs(t, err, errBoom)
}

func TestWriteLogCSV(t *testing.T) {
	entries := []distribution.LogEntry{
		{DistributionID: "d1", EmployeeID: "E101", ProjectID: "P1", RegionName: "North", UnitTypeName: "Apt, large", AdsAllocated: 11, DistributionDate: testNow},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLogCSV(&buf, entries))

	expected := "DistributionID,EmployeeID,ProjectID,RegionName,UnitTypeName,AdsAllocated,DistributionDate\n" +
		"d1,E101,P1,North,\"Apt, large\",11,2025-03-14 09:30:00\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteLogCSV_HeaderOnlyWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLogCSV(&buf, nil))

	assert.Equal(t, "DistributionID,EmployeeID,ProjectID,RegionName,UnitTypeName,AdsAllocated,DistributionDate\n", buf.String())
}
