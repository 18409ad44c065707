package market

import "strings"

// IsValidEmail reports whether s contains '@'. No further checks are made.
func IsValidEmail(s string) bool {
	return strings.Contains(s, "@")
}

// IsValidPhone reports whether s is non-empty and made only of ASCII digits.
func IsValidPhone(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
