package domain

import "strings"

// SanitizeSegment makes a string safe as a single path segment: characters
// illegal on common filesystems are removed, whitespace is collapsed, and
// leading/trailing dots and spaces are trimmed.
func SanitizeSegment(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < 0x20:
			b.WriteRune(' ')
		case strings.ContainsRune(`/\:*?"<>|`, r):
			// drop
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	return strings.Trim(out, ". ")
}
