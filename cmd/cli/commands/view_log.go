package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/ad-distributor/pkg/core/distribution"
	"github.com/jakechorley/ad-distributor/pkg/core/services"
	"github.com/jakechorley/ad-distributor/pkg/db"
)

// ViewLogCmd creates the viewLog command
func ViewLogCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewLog",
		Short: "List the distribution log, optionally filtered by employee or region",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			employeeID, _ := cmd.Flags().GetString("employee")
			region, _ := cmd.Flags().GetString("region")
			csvPath, _ := cmd.Flags().GetString("csv")

			result, err := services.ViewLog(app.Ctx, app.Database, app.Logger, db.LogFilter{
				EmployeeID: employeeID,
				Region:     region,
			})
			if err != nil {
				return err
			}

			if csvPath != "" {
				if err := writeCSVFile(csvPath, result.Entries); err != nil {
					return err
				}
				app.Logger.Info("Distribution log exported", zap.String("path", csvPath), zap.Int("rows", len(result.Entries)))
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d rows to %s\n", len(result.Entries), csvPath)
				return nil
			}

			printLog(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().String("employee", "", "Only show rows for this employee ID")
	cmd.Flags().String("region", "", "Only show rows for this region")
	cmd.Flags().String("csv", "", "Write the rows to a CSV file instead of printing them")

	return cmd
}

func printLog(w io.Writer, result *services.ViewLogResult) {
	if len(result.Entries) == 0 {
		fmt.Fprintln(w, "\nNo distributions found.")
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "\n%-19s %-10s %-10s %-14s %-18s %5s\n", "Date", "Employee", "Project", "Region", "Unit type", "Ads")
	for _, e := range result.Entries {
		fmt.Fprintf(w, "%-19s %-10s %-10s %-14s %-18s %5d\n",
			e.DistributionDate.Format(distribution.DateLayout),
			e.EmployeeID,
			e.ProjectID,
			e.RegionName,
			e.UnitTypeName,
			e.AdsAllocated,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d ads in %d rows\n", result.TotalAds, len(result.Entries))
	for _, id := range result.ProjectIDs() {
		fmt.Fprintf(w, "  %-10s %5d\n", id, result.AdsByProject[id])
	}
	fmt.Fprintln(w)
}
