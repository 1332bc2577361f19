package sheetsclient

import (
	"fmt"
	"strconv"
	"strings"
)

// cellString renders a cell returned by the API as text. Formatted reads return strings,
// but unformatted reads and RAW writes can carry numbers and booleans.
func cellString(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func rowStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = cellString(cell)
	}
	return out
}

// headerIndex maps trimmed header names to their column index. The first occurrence wins.
func headerIndex(header []interface{}) map[string]int {
	indexes := make(map[string]int, len(header))
	for i, cell := range header {
		name := strings.TrimSpace(cellString(cell))
		if _, seen := indexes[name]; !seen && name != "" {
			indexes[name] = i
		}
	}
	return indexes
}

// requireColumns returns the indexes of the named columns or an error naming every missing one
func requireColumns(indexes map[string]int, tab string, names ...string) ([]int, error) {
	cols := make([]int, len(names))
	var missing []string
	for i, name := range names {
		idx, ok := indexes[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[i] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s tab is missing required columns: %s", tab, strings.Join(missing, ", "))
	}
	return cols, nil
}

func cellAt(row []interface{}, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(cellString(row[col]))
}

// columnLetter converts a zero based column index to A1 notation (0 -> A, 26 -> AA)
func columnLetter(index int) string {
	letters := ""
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		letters = string(rune('A'+(n-1)%26)) + letters
	}
	return letters
}

// quoteTab quotes a tab name for use in an A1 range
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}
