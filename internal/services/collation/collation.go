// Package collation orders strings the way a Japanese-locale user expects.
package collation

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	mu       sync.Mutex
	collator = collate.New(language.Japanese)
)

// Compare returns -1, 0 or 1 comparing a and b in locale order
func Compare(a, b string) int {
	mu.Lock()
	defer mu.Unlock()
	return collator.CompareString(a, b)
}

// Sort sorts values in ascending locale order, in place
func Sort(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		return Compare(values[i], values[j]) < 0
	})
}

// SortDesc sorts values in descending locale order, in place
func SortDesc(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		return Compare(values[i], values[j]) > 0
	})
}

// Sorted returns an ascending copy of values
func Sorted(values []string) []string {
	out := append([]string{}, values...)
	Sort(out)
	return out
}
