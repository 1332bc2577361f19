package distribution

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jakechorley/ad-distributor/pkg/core/model"
)

// Project snapshot column names
const (
	ColProjectID              = "ProjectID"
	ColRegionName             = "RegionName"
	ColReq                    = "Req"
	ColProjectOrder           = "ProjectOrder"
	ColProjectExcellenceScore = "ProjectExcellenceScore"
	ColMarketingSize          = "MarketingSize"
	ColAdsDistributed         = "AdsDistributed"
	ColUnitTypesInProject     = "UnitTypesInProject"
)

// RequiredColumns lists the columns a project snapshot must contain
var RequiredColumns = []string{
	ColProjectID,
	ColRegionName,
	ColReq,
	ColProjectOrder,
	ColProjectExcellenceScore,
	ColMarketingSize,
	ColAdsDistributed,
	ColUnitTypesInProject,
}

// DemandScore is the flat bonus every eligible project receives
const DemandScore = 5.0

// SchemaError reports required columns that are absent from a project snapshot
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns in projects data: %s", strings.Join(e.Missing, ", "))
}

// ScoredProject is an eligible project together with its importance score components.
// Values are owned by the caller of SelectEligible and never alias the snapshot.
type ScoredProject struct {
	ProjectID          string
	RegionName         string
	UnitTypesInProject string

	ProjectOrder           float64
	ProjectExcellenceScore float64
	MarketingSize          float64
	AdsDistributed         float64

	PriorityScore       float64
	DemandScore         float64
	ExcellenceScoreCalc float64
	RemainingSizeScore  float64
	TotalScore          float64

	// CalculatedAds is the continuous share before rounding
	CalculatedAds float64

	// AllocatedAdsProject is the integer award from the project pass
	AllocatedAdsProject int
}

// columnIndexes maps every required column to its position in the header
func columnIndexes(snapshot model.Snapshot) (map[string]int, error) {
	indexes := make(map[string]int, len(RequiredColumns))
	var missing []string
	for _, col := range RequiredColumns {
		idx := snapshot.ColumnIndex(col)
		if idx == -1 {
			missing = append(missing, col)
			continue
		}
		indexes[col] = idx
	}

	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return indexes, nil
}

// normalize lowercases and trims a text cell for comparison
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// parseNumber coerces a cell to a finite number, falling back to 0
func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// SelectEligible returns the projects in region whose Req flag is "yes".
// Region and Req comparisons ignore case and surrounding whitespace.
// Numeric columns are parsed only for rows that pass the filter.
func SelectEligible(snapshot model.Snapshot, region string) ([]ScoredProject, error) {
	cols, err := columnIndexes(snapshot)
	if err != nil {
		return nil, err
	}

	target := normalize(region)
	eligible := make([]ScoredProject, 0)
	for _, row := range snapshot.Rows {
		if normalize(snapshot.Cell(row, cols[ColRegionName])) != target {
			continue
		}
		if normalize(snapshot.Cell(row, cols[ColReq])) != "yes" {
			continue
		}

		eligible = append(eligible, ScoredProject{
			ProjectID:              strings.TrimSpace(snapshot.Cell(row, cols[ColProjectID])),
			RegionName:             snapshot.Cell(row, cols[ColRegionName]),
			UnitTypesInProject:     snapshot.Cell(row, cols[ColUnitTypesInProject]),
			ProjectOrder:           parseNumber(snapshot.Cell(row, cols[ColProjectOrder])),
			ProjectExcellenceScore: parseNumber(snapshot.Cell(row, cols[ColProjectExcellenceScore])),
			MarketingSize:          parseNumber(snapshot.Cell(row, cols[ColMarketingSize])),
			AdsDistributed:         parseNumber(snapshot.Cell(row, cols[ColAdsDistributed])),
		})
	}

	return eligible, nil
}

// ScoreProjects fills in the score components of each project and returns the total importance score.
// A TotalScore that overflows is capped at the largest float64.
func ScoreProjects(projects []ScoredProject) float64 {
	if len(projects) == 0 {
		return 0
	}

	maxOrder := projects[0].ProjectOrder
	for _, p := range projects[1:] {
		if p.ProjectOrder > maxOrder {
			maxOrder = p.ProjectOrder
		}
	}

	scores := make([]float64, len(projects))
	for i := range projects {
		p := &projects[i]
		p.PriorityScore = maxOrder - p.ProjectOrder + 1
		p.DemandScore = DemandScore
		p.ExcellenceScoreCalc = p.ProjectExcellenceScore / 10
		p.RemainingSizeScore = math.Max(p.MarketingSize-p.AdsDistributed, 0)
		p.TotalScore = math.Min(math.Max(p.PriorityScore+p.DemandScore+p.ExcellenceScoreCalc+p.RemainingSizeScore, 0), math.MaxFloat64)
		scores[i] = p.TotalScore
	}

	return pairwiseSum(scores)
}
