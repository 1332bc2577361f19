package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/ad-distributor/pkg/core/distribution"
	"github.com/jakechorley/ad-distributor/pkg/core/model"
	"github.com/jakechorley/ad-distributor/pkg/core/services"
)

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []string
	}{
		{"plain words", "distribute E101 North 50", []string{"distribute", "E101", "North", "50"}},
		{"double quoted region", `distribute E101 "North East" 50`, []string{"distribute", "E101", "North East", "50"}},
		{"single quoted note", `topUpBudget 100 --note 'spring campaign'`, []string{"topUpBudget", "100", "--note", "spring campaign"}},
		{"empty quotes kept", `topUpBudget 100 --note ""`, []string{"topUpBudget", "100", "--note", ""}},
		{"extra spaces", "  listRegions   ", []string{"listRegions"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := parseCommandLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, args)
		})
	}
}

func TestParseCommandLine_UnclosedQuote(t *testing.T) {
	_, err := parseCommandLine(`distribute E101 "North 50`)
	assert.Error(t, err)
}

func TestRunInteractive(t *testing.T) {
	var calls []string
	var notes []string

	root := &cobra.Command{Use: "cli"}
	echo := &cobra.Command{
		Use:   "echo <word>",
		Short: "Echo a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, _ := cmd.Flags().GetString("note")
			calls = append(calls, args[0])
			notes = append(notes, note)
			return nil
		},
	}
	echo.Flags().String("note", "", "")
	root.AddCommand(echo)

	in := strings.NewReader("help\necho one --note first\necho two\necho\nbogus\nexit\necho never\n")
	var out bytes.Buffer

	require.NoError(t, runInteractive(root, in, &out))

	assert.Equal(t, []string{"one", "two"}, calls)
	// flags are reset between runs
	assert.Equal(t, []string{"first", ""}, notes)
	assert.Contains(t, out.String(), "echo <word>")
	assert.Contains(t, out.String(), "Unknown command: bogus")
	assert.Contains(t, out.String(), "accepts 1 arg(s)")
	assert.Contains(t, out.String(), "Goodbye")
}

func TestPrintInsufficientBalance(t *testing.T) {
	var out bytes.Buffer
	printInsufficientBalance(&out, &services.InsufficientBalanceError{
		EmployeeID: "E101", Requested: 80, Balance: 50, GlobalBudget: 40,
	})

	assert.Contains(t, out.String(), "Insufficient balance for E101")
	assert.Contains(t, out.String(), "You can distribute up to 40 ads.")
}

func TestPrintDistribution(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	result := &services.DistributeAdsResult{
		Employee: model.Employee{ID: "E101", Name: "Alice Smith", Email: "alice@example.com"},
		Region:   "North",
		Result: &distribution.Result{
			Outcome: distribution.OutcomeAllocated,
			Projects: []distribution.ScoredProject{
				{ProjectID: "P1", TotalScore: 95, AllocatedAdsProject: 21},
				{ProjectID: "P2", TotalScore: 135.5, AllocatedAdsProject: 29},
			},
			Log: []distribution.LogEntry{
				{ProjectID: "P1", UnitTypeName: "Apt", AdsAllocated: 21, DistributionDate: at},
			},
			ProjectUpdates:           map[string]int{"P1": 21, "P2": 29},
			TotalAllocated:           50,
			ProjectsWithoutUnitTypes: []string{"P2"},
		},
		BalanceBefore:   100,
		Persisted:       true,
		EmployeeDebited: true,
		Notified:        true,
	}

	var out bytes.Buffer
	printDistribution(&out, result, false)

	text := out.String()
	assert.Contains(t, text, "50 ads distributed to Alice Smith (ID: E101) in North")
	assert.Contains(t, text, "P2 (29 ads)")
	assert.Contains(t, text, "Balance: 100 -> 50")
	assert.Contains(t, text, "Notified alice@example.com")
}

func TestPrintDistribution_PartialFailureShowsDebit(t *testing.T) {
	result := &services.DistributeAdsResult{
		Employee: model.Employee{ID: "E101", Name: "Alice Smith"},
		Region:   "North",
		Result: &distribution.Result{
			Outcome:        distribution.OutcomeAllocated,
			Projects:       []distribution.ScoredProject{{ProjectID: "P1", TotalScore: 95, AllocatedAdsProject: 20}},
			ProjectUpdates: map[string]int{"P1": 20},
			TotalAllocated: 20,
		},
		BalanceBefore:   100,
		EmployeeDebited: true,
	}

	var out bytes.Buffer
	printDistribution(&out, result, false)

	assert.Contains(t, out.String(), "not every update was recorded")
	assert.Contains(t, out.String(), "Balance: 100 -> 80")
}

func TestPrintDistribution_NoEligibleProjects(t *testing.T) {
	result := &services.DistributeAdsResult{
		Region: "East",
		Result: &distribution.Result{Outcome: distribution.OutcomeNoEligibleProjects},
	}

	var out bytes.Buffer
	printDistribution(&out, result, false)

	assert.Contains(t, out.String(), "No projects in East need marketing")
	assert.NotContains(t, out.String(), "Balance")
}

func TestPrintPreview(t *testing.T) {
	preview := &services.ScorePreview{
		Region:     "North",
		Quantity:   10,
		TotalScore: 20,
		Projects: []services.PreviewProject{
			{
				ScoredProject: distribution.ScoredProject{ProjectID: "P1", TotalScore: 20, AllocatedAdsProject: 10},
				UnitTypes:     []services.UnitTypeAward{{UnitType: "Apt", Ads: 5}, {UnitType: "Studio", Ads: 5}},
			},
			{ScoredProject: distribution.ScoredProject{ProjectID: "P9"}},
		},
	}

	var out bytes.Buffer
	printPreview(&out, preview)

	assert.Contains(t, out.String(), "Scores for North (total 20.00)")
	assert.Contains(t, out.String(), "Apt=5, Studio=5")
	assert.Contains(t, out.String(), "(no unit types)")
}

func TestPrintLog(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	result := &services.ViewLogResult{
		Entries: []distribution.LogEntry{
			{EmployeeID: "E101", ProjectID: "P1", RegionName: "North", UnitTypeName: "Apt", AdsAllocated: 11, DistributionDate: at},
		},
		TotalAds:     11,
		AdsByProject: map[string]int{"P1": 11},
	}

	var out bytes.Buffer
	printLog(&out, result)

	assert.Contains(t, out.String(), "2025-03-14 09:30:00")
	assert.Contains(t, out.String(), "Total: 11 ads in 1 rows")

	out.Reset()
	printLog(&out, &services.ViewLogResult{})
	assert.Contains(t, out.String(), "No distributions found.")
}

func TestPrintBalances(t *testing.T) {
	overview := &services.BalancesOverview{
		GlobalBudget: 480,
		CycleStart:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Employees: []services.EmployeeBalance{
			{EmployeeID: "E101", Name: "Alice Smith", Allowance: 100, Balance: 80, Listed: true},
			{EmployeeID: "E900", Balance: 5},
		},
	}

	var out bytes.Buffer
	printBalances(&out, overview)

	assert.Contains(t, out.String(), "Global budget: 480")
	assert.Contains(t, out.String(), "Cycle start:   2025-03-01")
	assert.Contains(t, out.String(), "Alice Smith")
	assert.Contains(t, out.String(), "(not in employees tab)")
}
