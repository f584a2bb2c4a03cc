package metrics

import "sort"

// CodeCount is one row of the outcome-code histogram.
type CodeCount struct {
	Code  string
	Count int
}

// SortCounts converts an outcome-code map into rows sorted by descending
// count, then by code for stability.
func SortCounts(counts map[string]int) []CodeCount {
	if len(counts) == 0 {
		return nil
	}
	rows := make([]CodeCount, 0, len(counts))
	for code, count := range counts {
		rows = append(rows, CodeCount{Code: code, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Code < rows[j].Code
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}
