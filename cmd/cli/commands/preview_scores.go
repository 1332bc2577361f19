package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/ad-distributor/pkg/core/distribution"
	"github.com/jakechorley/ad-distributor/pkg/core/services"
)

// PreviewScoresCmd creates the previewScores command
func PreviewScoresCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "previewScores <region> [quantity]",
		Short: "Show project scores for a region and what a quantity would give each project",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity := 0
			if len(args) > 1 {
				q, err := strconv.Atoi(args[1])
				if err != nil || q < 0 {
					return fmt.Errorf("quantity must be a non-negative integer, got: %s", args[1])
				}
				quantity = q
			}

			preview, err := services.PreviewScores(app.SheetsClient, app.Cfg, app.Logger, args[0], quantity)
			if err != nil {
				return err
			}

			printPreview(cmd.OutOrStdout(), preview)
			return nil
		},
	}
}

func printPreview(w io.Writer, preview *services.ScorePreview) {
	if len(preview.Projects) == 0 {
		fmt.Fprintf(w, "\nNo projects in %s need marketing.\n\n", preview.Region)
		return
	}

	fmt.Fprintf(w, "\nScores for %s (total %.2f)\n\n", preview.Region, preview.TotalScore)

	scored := make([]distribution.ScoredProject, len(preview.Projects))
	for i, p := range preview.Projects {
		scored[i] = p.ScoredProject
	}
	writeScoreTable(w, scored)

	if preview.Quantity == 0 {
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "\nSplit of %d ads by unit type:\n", preview.Quantity)
	for _, p := range preview.Projects {
		if len(p.UnitTypes) == 0 {
			fmt.Fprintf(w, "  %-12s (no unit types)\n", p.ProjectID)
			continue
		}
		parts := make([]string, len(p.UnitTypes))
		for i, u := range p.UnitTypes {
			parts[i] = fmt.Sprintf("%s=%d", u.UnitType, u.Ads)
		}
		fmt.Fprintf(w, "  %-12s %s\n", p.ProjectID, strings.Join(parts, ", "))
	}
	fmt.Fprintln(w)
}
