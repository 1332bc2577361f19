package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ListRegionsCmd creates the listRegions command
func ListRegionsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listRegions",
		Short: "List the regions from the regions tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			regions, err := app.SheetsClient.ListRegions(app.Cfg)
			if err != nil {
				return fmt.Errorf("failed to list regions: %w", err)
			}

			app.Logger.Debug("Regions fetched successfully", zap.Int("count", len(regions)))

			fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d regions:\n\n", len(regions))
			for _, r := range regions {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", r)
			}
			fmt.Fprintln(cmd.OutOrStdout())

			return nil
		},
	}
}

// ListEmployeesCmd creates the listEmployees command
func ListEmployeesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listEmployees",
		Short: "List the employees from the employees tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			employees, err := app.SheetsClient.ListEmployees(app.Cfg)
			if err != nil {
				return fmt.Errorf("failed to list employees: %w", err)
			}

			app.Logger.Debug("Employees fetched successfully", zap.Int("count", len(employees)))

			fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d employees:\n\n", len(employees))
			for _, e := range employees {
				email := e.Email
				if email == "" {
					email = "no email"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "- %s - %s\n", e.DisplayName(), email)
			}
			fmt.Fprintln(cmd.OutOrStdout())

			return nil
		},
	}
}
