package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/ad-distributor/pkg/core/distribution"
	"github.com/jakechorley/ad-distributor/pkg/core/services"
)

// DistributeCmd creates the distribute command
func DistributeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distribute <employee_id> <region> <quantity>",
		Short: "Distribute ads to an employee across a region's projects",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("quantity must be a number: %w", err)
			}

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			noEmail, _ := cmd.Flags().GetBool("no-email")
			csvPath, _ := cmd.Flags().GetString("csv")

			result, err := services.DistributeAds(
				app.Ctx,
				app.Database,
				app.SheetsClient,
				app.Mailer(),
				app.Cfg,
				app.Logger,
				services.DistributeRequest{EmployeeID: args[0], Region: args[1], Quantity: quantity},
				services.DistributeOptions{DryRun: dryRun, NoEmail: noEmail},
			)

			var balanceErr *services.InsufficientBalanceError
			if errors.As(err, &balanceErr) {
				printInsufficientBalance(cmd.OutOrStdout(), balanceErr)
				return err
			}
			if result == nil {
				return err
			}

			printDistribution(cmd.OutOrStdout(), result, dryRun)
			if err != nil {
				return err
			}

			if csvPath != "" && len(result.Result.Log) > 0 {
				if err := writeCSVFile(csvPath, result.Result.Log); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Distribution log written to %s\n", csvPath)
				app.Logger.Info("Distribution log exported", zap.String("path", csvPath))
			}

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Show the distribution without recording it")
	cmd.Flags().Bool("no-email", false, "Do not email the employee")
	cmd.Flags().String("csv", "", "Also write this distribution's log rows to a CSV file")

	return cmd
}

func printInsufficientBalance(w io.Writer, err *services.InsufficientBalanceError) {
	fmt.Fprintf(w, "\n✗ Insufficient balance for %s\n\n", err.EmployeeID)
	fmt.Fprintf(w, "Requested:      %d\n", err.Requested)
	fmt.Fprintf(w, "Balance:        %d\n", err.Balance)
	fmt.Fprintf(w, "Global budget:  %d\n", err.GlobalBudget)
	if suggested := err.Suggested(); suggested > 0 {
		fmt.Fprintf(w, "\nYou can distribute up to %d ads.\n\n", suggested)
	} else {
		fmt.Fprintln(w, "\nNo ads can be distributed until balances are topped up.")
		fmt.Fprintln(w)
	}
}

func printDistribution(w io.Writer, result *services.DistributeAdsResult, dryRun bool) {
	res := result.Result

	switch res.Outcome {
	case distribution.OutcomeNoEligibleProjects:
		fmt.Fprintf(w, "\nNo projects in %s need marketing. Nothing was distributed.\n\n", result.Region)
		return
	case distribution.OutcomeNoPositiveScore:
		fmt.Fprintf(w, "\nNo project in %s has a positive score. Nothing was distributed.\n\n", result.Region)
		return
	case distribution.OutcomeNothingAllocated:
		fmt.Fprintf(w, "\nNo ads were allocated in %s.\n\n", result.Region)
		return
	}

	switch {
	case dryRun:
		fmt.Fprintf(w, "\nDry run: %d ads would be distributed to %s in %s\n\n",
			res.TotalAllocated, result.Employee.DisplayName(), result.Region)
	case result.Persisted:
		fmt.Fprintf(w, "\n✓ %d ads distributed to %s in %s\n\n",
			res.TotalAllocated, result.Employee.DisplayName(), result.Region)
	default:
		fmt.Fprintf(w, "\n⚠️  %d ads allocated to %s in %s but not every update was recorded\n\n",
			res.TotalAllocated, result.Employee.DisplayName(), result.Region)
	}

	writeScoreTable(w, res.Projects)

	fmt.Fprintln(w, "\nUnit type split:")
	for _, entry := range res.Log {
		fmt.Fprintf(w, "  %-12s %-20s %5d\n", entry.ProjectID, entry.UnitTypeName, entry.AdsAllocated)
	}

	if len(res.ProjectsWithoutUnitTypes) > 0 {
		fmt.Fprintln(w, "\n⚠️  Projects without unit types (counted but not logged):")
		for _, id := range res.ProjectsWithoutUnitTypes {
			fmt.Fprintf(w, "  %s (%d ads)\n", id, res.ProjectUpdates[id])
		}
	}

	if len(result.UnmatchedProjects) > 0 {
		fmt.Fprintln(w, "\n⚠️  Projects not found when updating AdsDistributed:")
		for _, id := range result.UnmatchedProjects {
			fmt.Fprintf(w, "  %s\n", id)
		}
	}

	fmt.Fprintf(w, "\nBalance: %d -> %d\n", result.BalanceBefore, result.BalanceAfter())

	if result.Notified {
		fmt.Fprintf(w, "✓ Notified %s\n", result.Employee.Email)
	} else if result.NotifyErr != nil {
		fmt.Fprintf(w, "✗ Failed to notify %s: %v\n", result.Employee.Email, result.NotifyErr)
	}
	fmt.Fprintln(w)
}

// writeScoreTable prints one row per scored project with its score components and award
func writeScoreTable(w io.Writer, projects []distribution.ScoredProject) {
	fmt.Fprintf(w, "%-12s %8s %8s %10s %10s %10s %10s %6s\n",
		"Project", "Priority", "Demand", "Excellence", "Remaining", "Total", "Share", "Ads")
	for _, p := range projects {
		fmt.Fprintf(w, "%-12s %8.1f %8.1f %10.2f %10.1f %10.2f %10.2f %6d\n",
			p.ProjectID,
			p.PriorityScore,
			p.DemandScore,
			p.ExcellenceScoreCalc,
			p.RemainingSizeScore,
			p.TotalScore,
			p.CalculatedAds,
			p.AllocatedAdsProject,
		)
	}
}

func writeCSVFile(path string, entries []distribution.LogEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	if err := services.WriteLogCSV(f, entries); err != nil {
		return err
	}
	return f.Close()
}
