package utils

import "fmt"

// ShortenString truncates s to l characters, marking the cut with an
// ellipsis. l == 0 means no limit.
func ShortenString(s string, l int) string {
	if len(s) > l && l != 0 {
		return fmt.Sprintf("%s...", s[:l])
	}
	return s
}
