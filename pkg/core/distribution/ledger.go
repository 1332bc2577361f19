package distribution

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the format used for DistributionDate values
const DateLayout = "2006-01-02 15:04:05"

// LogColumns is the fixed column order of the distribution log table
var LogColumns = []string{
	"DistributionID",
	"EmployeeID",
	"ProjectID",
	"RegionName",
	"UnitTypeName",
	"AdsAllocated",
	"DistributionDate",
}

// LogEntry is one ledger row: ads awarded to a unit type within a project
type LogEntry struct {
	DistributionID   string
	EmployeeID       string
	ProjectID        string
	RegionName       string
	UnitTypeName     string
	AdsAllocated     int
	DistributionDate time.Time
}

// Values returns the entry as text cells in LogColumns order
func (e LogEntry) Values() []string {
	return []string{
		e.DistributionID,
		e.EmployeeID,
		e.ProjectID,
		e.RegionName,
		e.UnitTypeName,
		strconv.Itoa(e.AdsAllocated),
		e.DistributionDate.Format(DateLayout),
	}
}

// IDGenerator produces a unique identity for each log entry
type IDGenerator func() string

// NewUUIDGenerator returns a generator of random "dist_<uuid>" identities
func NewUUIDGenerator() IDGenerator {
	return func() string {
		return "dist_" + uuid.NewString()
	}
}

// SequentialIDs returns a generator of prefix1, prefix2, ... Not safe for concurrent use.
func SequentialIDs(prefix string) IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

// ParseUnitTypes splits a comma separated unit type list, trimming names and dropping empty ones
func ParseUnitTypes(raw string) []string {
	parts := strings.Split(raw, ",")
	unitTypes := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			unitTypes = append(unitTypes, name)
		}
	}
	return unitTypes
}

// ledger holds the output of expanding project awards into unit type rows
type ledger struct {
	entries          []LogEntry
	projectUpdates   map[string]int
	withoutUnitTypes []string
}

// assembleLedger expands project awards into per unit type rows.
// Projects with an award but no unit types keep their project update and produce no rows.
func assembleLedger(projects []ScoredProject, req Request, newID IDGenerator) ledger {
	out := ledger{
		entries:        make([]LogEntry, 0),
		projectUpdates: make(map[string]int),
	}

	for _, p := range projects {
		if p.AllocatedAdsProject <= 0 {
			continue
		}

		out.projectUpdates[p.ProjectID] += p.AllocatedAdsProject

		unitTypes := ParseUnitTypes(p.UnitTypesInProject)
		if len(unitTypes) == 0 {
			out.withoutUnitTypes = append(out.withoutUnitTypes, p.ProjectID)
			continue
		}

		for i, ads := range EqualSplit(p.AllocatedAdsProject, len(unitTypes)) {
			if ads <= 0 {
				continue
			}
			out.entries = append(out.entries, LogEntry{
				DistributionID:   newID(),
				EmployeeID:       req.EmployeeID,
				ProjectID:        p.ProjectID,
				RegionName:       req.Region,
				UnitTypeName:     unitTypes[i],
				AdsAllocated:     ads,
				DistributionDate: req.At,
			})
		}
	}

	return out
}
