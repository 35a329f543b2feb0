package service

import "strings"

// SplitList splits a comma-delimited form value into trimmed items.
// Empty items are dropped; order and duplicates are kept.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
