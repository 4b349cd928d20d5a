package catalog

import "strings"

// NormalizeTags splits a comma-delimited tag string into an ordered sequence
// of trimmed labels, discarding empty entries.
func NormalizeTags(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
