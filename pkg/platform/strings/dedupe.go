// Package strings provides string set helpers for request normalisation.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each element and drops empties and exact duplicates.
// Order of first occurrence is preserved.
func DedupeAndTrim(values []string) []string {
	return dedupe(values, func(s string) string { return s })
}

// DedupeAndTrimFold is like DedupeAndTrim but treats values that differ only by
// case as duplicates. The first spelling wins, so "Ana@Example.com" stays as
// written when "ana@example.com" follows it.
func DedupeAndTrimFold(values []string) []string {
	return dedupe(values, strings.ToLower)
}

func dedupe(values []string, key func(string) string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		k := key(trimmed)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
