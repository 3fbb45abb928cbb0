package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	minNameLen = 2
	maxNameLen = 20
)

// allowedNameRune permits CJK ideographs, ASCII letters, digits, space,
// underscore and hyphen.
func allowedNameRune(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF:
		return true
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == ' ', r == '_', r == '-':
		return true
	}
	return false
}

// ValidateEventName returns a user-facing error message for an invalid event
// name, or "" when the name is acceptable. The message for a bad character
// set lists the distinct offending characters in first-seen order.
func ValidateEventName(name string) string {
	n := utf8.RuneCountInString(name)
	if n < minNameLen {
		return fmt.Sprintf("that name is too short, it needs at least %d characters", minNameLen)
	}
	if n > maxNameLen {
		return fmt.Sprintf("that name is too long, %d characters at most", maxNameLen)
	}

	seen := make(map[rune]bool)
	var bad []string
	for _, r := range name {
		if allowedNameRune(r) || seen[r] {
			continue
		}
		seen[r] = true
		bad = append(bad, fmt.Sprintf("%q", string(r)))
	}
	if len(bad) > 0 {
		return "these characters are not allowed: " + strings.Join(bad, ", ")
	}
	return ""
}
