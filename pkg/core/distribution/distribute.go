package distribution

import (
	"time"

	"github.com/jakechorley/ad-distributor/pkg/core/model"
)

// Request describes one distribution: a quantity of ads for one employee in one region
type Request struct {
	Region     string
	EmployeeID string
	Quantity   int

	// At is the distribution time shared by every log entry of the call
	At time.Time
}

// Outcome classifies how a distribution finished
type Outcome string

const (
	OutcomeAllocated          Outcome = "allocated"
	OutcomeNothingAllocated   Outcome = "nothing_allocated"
	OutcomeNoEligibleProjects Outcome = "no_eligible_projects"
	OutcomeNoPositiveScore    Outcome = "no_positive_score"
	OutcomeSchemaError        Outcome = "schema_error"
)

// Result is the output of Distribute
type Result struct {
	Outcome Outcome

	// Projects are the eligible projects with scores and awards (empty unless allocation ran)
	Projects []ScoredProject

	// Log holds one entry per unit type with a positive award, in project then unit type order
	Log []LogEntry

	// ProjectUpdates maps ProjectID to ads added, for projects with a positive award
	ProjectUpdates map[string]int

	// TotalAllocated is the sum of project awards, including projects that produced no log rows
	TotalAllocated int

	// ProjectsWithoutUnitTypes lists projects that received ads but list no unit types
	ProjectsWithoutUnitTypes []string
}

func emptyResult(outcome Outcome) *Result {
	return &Result{
		Outcome:        outcome,
		Log:            []LogEntry{},
		ProjectUpdates: map[string]int{},
	}
}

// Distribute allocates req.Quantity ads across the eligible projects of req.Region and splits each
// project's award across its unit types.
//
// The snapshot is never modified. A snapshot missing required columns yields an empty result and a
// *SchemaError; an empty eligible set or a non-positive total score yields an empty result and a nil error.
// If newID is nil, random UUID based identities are used.
func Distribute(snapshot model.Snapshot, req Request, newID IDGenerator) (*Result, error) {
	projects, err := SelectEligible(snapshot, req.Region)
	if err != nil {
		return emptyResult(OutcomeSchemaError), err
	}

	if len(projects) == 0 {
		return emptyResult(OutcomeNoEligibleProjects), nil
	}

	if totalScore := ScoreProjects(projects); totalScore <= 0 {
		return emptyResult(OutcomeNoPositiveScore), nil
	}

	total := AllocateProjects(projects, req.Quantity)

	if newID == nil {
		newID = NewUUIDGenerator()
	}
	led := assembleLedger(projects, req, newID)

	outcome := OutcomeAllocated
	if total == 0 {
		outcome = OutcomeNothingAllocated
	}

	return &Result{
		Outcome:                  outcome,
		Projects:                 projects,
		Log:                      led.entries,
		ProjectUpdates:           led.projectUpdates,
		TotalAllocated:           total,
		ProjectsWithoutUnitTypes: led.withoutUnitTypes,
	}, nil
}

// AllocateProjects apportions quantity across scored projects by TotalScore, setting CalculatedAds and
// AllocatedAdsProject on each, and returns the total allocated
func AllocateProjects(projects []ScoredProject, quantity int) int {
	weights := make([]float64, len(projects))
	for i, p := range projects {
		weights[i] = p.TotalScore
	}

	split := LargestRemainder(weights, quantity)

	total := 0
	for i := range projects {
		projects[i].CalculatedAds = split.Shares[i]
		projects[i].AllocatedAdsProject = split.Awards[i]
		total += split.Awards[i]
	}
	return total
}
