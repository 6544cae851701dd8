// Package ranking orders scored candidates.
package ranking

import "sort"

// Scored pairs a candidate with its score and diagnostics.
type Scored[T any, D any] struct {
	Candidate   T   `json:"candidate"`
	Score       int `json:"score"`
	Diagnostics D   `json:"diagnostics"`
}

// SortDescending orders results by score, highest first. Equal scores keep
// their input order.
func SortDescending[T any, D any](results []Scored[T, D]) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

// Top returns at most n leading results. n <= 0 returns all of them.
func Top[T any, D any](results []Scored[T, D], n int) []Scored[T, D] {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}

// Best returns the first result and false when results is empty.
func Best[T any, D any](results []Scored[T, D]) (Scored[T, D], bool) {
	if len(results) == 0 {
		var zero Scored[T, D]
		return zero, false
	}
	return results[0], true
}
