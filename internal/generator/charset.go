package generator

import "strings"

// IsAllowedRune reports whether r belongs to the free-text charset
// [A-Za-z0-9.&/- ].
func IsAllowedRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '&', r == '/', r == '-', r == ' ':
		return true
	}
	return false
}

// HasOnlyAllowed reports whether every rune of s is in the free-text charset.
func HasOnlyAllowed(s string) bool {
	for _, r := range s {
		if !IsAllowedRune(r) {
			return false
		}
	}
	return true
}

// Sanitize drops every rune outside the free-text charset.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if IsAllowedRune(r) {
			return r
		}
		return -1
	}, s)
}

// SanitizeToSpaces replaces every rune outside the free-text charset with a space.
func SanitizeToSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if IsAllowedRune(r) {
			return r
		}
		return ' '
	}, s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isUpperLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func allSameRune(s string) bool {
	if s == "" {
		return false
	}
	first := []rune(s)[0]
	for _, r := range s {
		if r != first {
			return false
		}
	}
	return true
}
