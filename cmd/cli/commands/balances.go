package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/ad-distributor/pkg/core/services"
)

// InitBalancesCmd creates the initBalances command
func InitBalancesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "initBalances",
		Short: "Reset every employee's balance to their allowance for the current cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.InitEmployeeBalances(app.Ctx, app.Database, app.SheetsClient, app.Cfg, app.Logger, time.Now().UTC())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "\nBalance cycle starting %s\n\n", result.CycleStart.Format("2006-01-02"))
			if len(result.Granted) == 0 {
				fmt.Fprintln(w, "Every employee already has this cycle's allowance.")
				fmt.Fprintln(w)
				return nil
			}

			fmt.Fprintf(w, "✓ Initialised %d employees:\n", len(result.Granted))
			for _, g := range result.Granted {
				fmt.Fprintf(w, "  %-40s %5d -> %d\n", g.Employee.DisplayName(), g.Previous, g.Allowance)
			}
			if len(result.AlreadyGranted) > 0 {
				fmt.Fprintf(w, "\nAlready initialised: %s\n", strings.Join(result.AlreadyGranted, ", "))
			}
			fmt.Fprintln(w)

			return nil
		},
	}
}

// ViewBalancesCmd creates the viewBalances command
func ViewBalancesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "viewBalances",
		Short: "Show the global budget and every employee's balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overview, err := services.ViewBalances(app.Ctx, app.Database, app.SheetsClient, app.Cfg, app.Logger, time.Now().UTC())
			if err != nil {
				return err
			}

			printBalances(cmd.OutOrStdout(), overview)
			return nil
		},
	}
}

func printBalances(w io.Writer, overview *services.BalancesOverview) {
	const (
		colorReset = "\033[0m"
		colorRed   = "\033[31m"
		colorDim   = "\033[2m"
	)

	fmt.Fprintf(w, "\nGlobal budget: %d\n", overview.GlobalBudget)
	fmt.Fprintf(w, "Cycle start:   %s\n\n", overview.CycleStart.Format("2006-01-02"))

	fmt.Fprintf(w, "%-10s %-28s %9s %8s\n", "ID", "Name", "Allowance", "Balance")
	fmt.Fprintln(w, strings.Repeat("-", 58))
	for _, e := range overview.Employees {
		switch {
		case !e.Listed:
			fmt.Fprintf(w, "%s%-10s %-28s %9s %8d%s\n", colorDim, e.EmployeeID, "(not in employees tab)", "-", e.Balance, colorReset)
		case e.Balance <= 0:
			fmt.Fprintf(w, "%-10s %-28s %9d %s%8d%s\n", e.EmployeeID, e.Name, e.Allowance, colorRed, e.Balance, colorReset)
		default:
			fmt.Fprintf(w, "%-10s %-28s %9d %8d\n", e.EmployeeID, e.Name, e.Allowance, e.Balance)
		}
	}
	fmt.Fprintln(w)
}

// TopUpBudgetCmd creates the topUpBudget command
func TopUpBudgetCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topUpBudget <amount>",
		Short: "Add ads to the global budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("amount must be a number: %w", err)
			}
			note, _ := cmd.Flags().GetString("note")

			total, err := services.TopUpBudget(app.Ctx, app.Database, app.Logger, amount, note, time.Now().UTC())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Added %d ads. Global budget is now %d\n\n", amount, total)
			return nil
		},
	}

	cmd.Flags().String("note", "", "Note recorded with the top up")

	return cmd
}
