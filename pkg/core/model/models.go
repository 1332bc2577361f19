package model

import "strings"

// Snapshot is a point-in-time copy of a spreadsheet tab: a header row plus data rows of text cells
type Snapshot struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the index of the named column, or -1 if the header does not contain it
func (s Snapshot) ColumnIndex(name string) int {
	for i, col := range s.Columns {
		if strings.TrimSpace(col) == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row/column, or "" when the row is shorter than the header
func (s Snapshot) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// Employee represents a marketing employee who receives ad distribution tasks
type Employee struct {
	ID           string
	Name         string
	Email        string // Empty if not provided
	AdsAllowance *int   // nil means use the configured default
}

// DisplayName returns "Name (ID: x)" the way employees are listed to operators
func (e Employee) DisplayName() string {
	if e.Name == "" {
		return e.ID
	}
	return e.Name + " (ID: " + e.ID + ")"
}
