package helpers

import "strings"

func Contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// NormalizeURL trims surrounding whitespace and lower-cases the whole URL.
func NormalizeURL(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
