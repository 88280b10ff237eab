package utils

import "strings"

// MaskPhone keeps only the last four characters of a phone number for logs.
func MaskPhone(p string) string {
	p = strings.TrimSpace(p)
	if len(p) <= 4 {
		return strings.Repeat("*", len(p))
	}
	return "***" + p[len(p)-4:]
}
