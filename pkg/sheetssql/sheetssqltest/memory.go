// Package sheetssqltest provides an in-memory spreadsheet for tests of Sheets-backed storage
package sheetssqltest

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// MemoryClient stores tabs in memory. Reads return cells as strings, like formatted reads from the API.
type MemoryClient struct {
	mu     sync.Mutex
	titles []string
	tabs   map[string][][]interface{}

	// AppendErr, when set, is returned by every AppendRows call
	AppendErr error
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{tabs: make(map[string][][]interface{})}
}

func key(spreadsheetID, title string) string {
	return spreadsheetID + "/" + title
}

// GetValues supports a bare tab name or "tab!A1:ZZn", which limits the result to n rows
func (m *MemoryClient) GetValues(spreadsheetID, sheetRange string) ([][]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	title, cells, _ := strings.Cut(sheetRange, "!")
	rows, ok := m.tabs[key(spreadsheetID, title)]
	if !ok {
		return nil, fmt.Errorf("unable to parse range: %s", sheetRange)
	}

	limit := len(rows)
	if _, end, found := strings.Cut(cells, ":"); found {
		digits := strings.TrimLeft(end, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
		if n, err := strconv.Atoi(digits); err == nil && n < limit {
			limit = n
		}
	}

	out := make([][]interface{}, 0, limit)
	for _, row := range rows[:limit] {
		formatted := make([]interface{}, len(row))
		for i, cell := range row {
			formatted[i] = fmt.Sprint(cell)
		}
		out = append(out, formatted)
	}
	return out, nil
}

func (m *MemoryClient) AppendRows(spreadsheetID, sheetRange string, values [][]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AppendErr != nil {
		return m.AppendErr
	}

	k := key(spreadsheetID, sheetRange)
	if _, ok := m.tabs[k]; !ok {
		return fmt.Errorf("unable to parse range: %s", sheetRange)
	}
	for _, row := range values {
		m.tabs[k] = append(m.tabs[k], append([]interface{}(nil), row...))
	}
	return nil
}

func (m *MemoryClient) CreateSheet(spreadsheetID, sheetTitle string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(spreadsheetID, sheetTitle)
	if _, ok := m.tabs[k]; ok {
		return 0, fmt.Errorf("a sheet with the name %q already exists", sheetTitle)
	}
	m.tabs[k] = [][]interface{}{}
	m.titles = append(m.titles, k)
	return int64(len(m.titles)), nil
}

func (m *MemoryClient) SheetTitles(spreadsheetID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := spreadsheetID + "/"
	var titles []string
	for _, k := range m.titles {
		if title, ok := strings.CutPrefix(k, prefix); ok {
			titles = append(titles, title)
		}
	}
	return titles, nil
}

// SetTab replaces a tab's contents, creating it if needed
func (m *MemoryClient) SetTab(spreadsheetID, title string, rows [][]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(spreadsheetID, title)
	if _, ok := m.tabs[k]; !ok {
		m.titles = append(m.titles, k)
	}
	m.tabs[k] = rows
}

// Rows returns the raw rows of a tab, including header and type rows
func (m *MemoryClient) Rows(spreadsheetID, title string) [][]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.tabs[key(spreadsheetID, title)]
}
