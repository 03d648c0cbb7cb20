package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims leading/trailing whitespace and collapses any run
// of internal whitespace into a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeEmail lowercases the address so that uniqueness checks are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(TrimAndNormalize(email))
}

func NormalizeLocation(location string) string {
	return TrimAndNormalize(location)
}

// NormalizeSeatNumbers lowercases seat identifiers ("A1" and "a1" name the
// same seat) and drops empties and duplicates while preserving order.
func NormalizeSeatNumbers(seats []string) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, s := range seats {
		n := strings.ToLower(TrimAndNormalize(s))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}

	return out
}

// NormalizeTags lowercases and dedupes enum-style tags (amenities, bus types).
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, t := range tags {
		n := strings.ToLower(TrimAndNormalize(t))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}

	return out
}
