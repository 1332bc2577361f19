package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/ad-distributor/internal/config"
	"github.com/jakechorley/ad-distributor/pkg/core/distribution"
	"github.com/jakechorley/ad-distributor/pkg/core/model"
)

// SnapshotClient defines the operations needed to read the projects tab
type SnapshotClient interface {
	GetProjectSnapshot(cfg *config.Config) (model.Snapshot, error)
}

// UnitTypeAward is the share of a project's award one unit type would receive
type UnitTypeAward struct {
	UnitType string
	Ads      int
}

// PreviewProject is a scored project with its would-be unit type split
type PreviewProject struct {
	distribution.ScoredProject
	UnitTypes []UnitTypeAward
}

// ScorePreview shows how a region's projects score and what a quantity would give each of them
type ScorePreview struct {
	Region     string
	Quantity   int
	TotalScore float64
	Projects   []PreviewProject
}

// PreviewScores scores the eligible projects of region and, when quantity is positive, apportions it
// without recording anything
func PreviewScores(
	snapshotClient SnapshotClient,
	cfg *config.Config,
	logger *zap.Logger,
	region string,
	quantity int,
) (*ScorePreview, error) {
	logger.Debug("Starting previewScores", zap.String("region", region), zap.Int("quantity", quantity))

	snapshot, err := snapshotClient.GetProjectSnapshot(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}

	projects, err := distribution.SelectEligible(snapshot, region)
	if err != nil {
		return nil, err
	}

	preview := &ScorePreview{
		Region:     region,
		Quantity:   quantity,
		TotalScore: distribution.ScoreProjects(projects),
		Projects:   make([]PreviewProject, 0, len(projects)),
	}

	if quantity > 0 && preview.TotalScore > 0 {
		distribution.AllocateProjects(projects, quantity)
	}

	for _, p := range projects {
		pp := PreviewProject{ScoredProject: p}
		unitTypes := distribution.ParseUnitTypes(p.UnitTypesInProject)
		for i, ads := range distribution.EqualSplit(p.AllocatedAdsProject, len(unitTypes)) {
			pp.UnitTypes = append(pp.UnitTypes, UnitTypeAward{UnitType: unitTypes[i], Ads: ads})
		}
		preview.Projects = append(preview.Projects, pp)
	}

	logger.Debug("previewScores completed",
		zap.Int("eligible", len(preview.Projects)),
		zap.Float64("total_score", preview.TotalScore))

	return preview, nil
}
