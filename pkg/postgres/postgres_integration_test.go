package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jakechorley/ad-distributor/pkg/db"
)

// startPostgres runs a throwaway PostgreSQL container and returns a migrated DB
func startPostgres(t *testing.T) *DB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "ads",
				"POSTGRES_USER":     "ads",
				"POSTGRES_PASSWORD": "test_password",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://ads:test_password@%s:%s/ads?sslmode=disable", host, port.Port())

	var database *DB
	for i := 0; i < 10; i++ {
		if database, err = NewDB(ctx, connStr); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	require.NoError(t, err)
	t.Cleanup(database.Close)

	require.NoError(t, database.RunMigrations(ctx))
	return database
}

func TestPostgres_Ledger(t *testing.T) {
	database := startPostgres(t)
	ctx := context.Background()

	t.Run("migrations are idempotent", func(t *testing.T) {
		require.NoError(t, database.RunMigrations(ctx))
	})

	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	t.Run("distribution log", func(t *testing.T) {
		rows := []db.DistributionLog{
			{DistributionID: "d1", EmployeeID: "E101", ProjectID: "P1", RegionName: "North", UnitTypeName: "Apt", AdsAllocated: 11, DistributionDate: at},
			{DistributionID: "d2", EmployeeID: "E101", ProjectID: "P1", RegionName: "North", UnitTypeName: "Studio", AdsAllocated: 10, DistributionDate: at},
			{DistributionID: "d3", EmployeeID: "E102", ProjectID: "P3", RegionName: "South", UnitTypeName: "Townhouse", AdsAllocated: 4, DistributionDate: at},
		}
		require.NoError(t, database.InsertDistributionLog(ctx, rows))

		all, err := database.GetDistributionLog(ctx, db.LogFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "d1", all[0].DistributionID)
		assert.True(t, at.Equal(all[0].DistributionDate))

		north, err := database.GetDistributionLog(ctx, db.LogFilter{Region: "NORTH"})
		require.NoError(t, err)
		assert.Len(t, north, 2)

		mine, err := database.GetDistributionLog(ctx, db.LogFilter{EmployeeID: "E102", Region: "south"})
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, "Townhouse", mine[0].UnitTypeName)
	})

	t.Run("duplicate ids roll back the whole insert", func(t *testing.T) {
		err := database.InsertDistributionLog(ctx, []db.DistributionLog{
			{DistributionID: "d9", EmployeeID: "E1", ProjectID: "P1", RegionName: "North", UnitTypeName: "Apt", AdsAllocated: 1, DistributionDate: at},
			{DistributionID: "d1", EmployeeID: "E1", ProjectID: "P1", RegionName: "North", UnitTypeName: "Apt", AdsAllocated: 1, DistributionDate: at},
		})
		require.Error(t, err)

		all, err := database.GetDistributionLog(ctx, db.LogFilter{EmployeeID: "E1"})
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("balances and budget", func(t *testing.T) {
		cycle := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, database.InsertBalanceAdjustments(ctx, []db.BalanceAdjustment{
			{ID: "b1", EmployeeID: "E101", Delta: 100, Reason: db.ReasonCycleGrant, CycleStart: cycle, CreatedAt: at},
			{ID: "b2", EmployeeID: "E101", Delta: -21, Reason: db.ReasonDistribution, CycleStart: cycle, CreatedAt: at},
			{ID: "b3", EmployeeID: "E102", Delta: 60, Reason: db.ReasonCycleGrant, CycleStart: cycle, CreatedAt: at},
		}))

		mine, err := database.GetBalanceAdjustments(ctx, "E101")
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.True(t, cycle.Equal(mine[0].CycleStart))

		all, err := database.GetBalanceAdjustments(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"E101": 79, "E102": 60}, db.SumBalances(all))

		require.NoError(t, database.InsertBudgetAdjustment(ctx, db.BudgetAdjustment{ID: "g1", Delta: 500, Reason: db.ReasonTopUp, Note: "March", CreatedAt: at}))
		require.NoError(t, database.InsertBudgetAdjustment(ctx, db.BudgetAdjustment{ID: "g2", Delta: -21, Reason: db.ReasonDistribution, CreatedAt: at}))

		budget, err := database.GetBudgetAdjustments(ctx)
		require.NoError(t, err)
		require.Len(t, budget, 2)
		assert.Equal(t, "March", budget[0].Note)
		assert.Equal(t, 479, db.SumBudget(budget))
	})
}
