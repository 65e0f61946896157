// Package textutil holds small string helpers shared by the formatter and
// the section parsers.
package textutil

import "strings"

// Truncate returns s unchanged if len(s) <= maxLen (measured in bytes).
// Otherwise it cuts at maxLen, walks back to avoid splitting a multi-byte
// UTF-8 sequence, and appends suffix.
func Truncate(s string, maxLen int, suffix string) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && s[cut]>>6 == 0b10 {
		cut--
	}
	return s[:cut] + suffix
}

// StripListMarker removes a leading bullet ("-", "*", "•", "+") or ordinal
// ("1.", "2)", "(3)") from a single line and trims surrounding space.
func StripListMarker(line string) string {
	s := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(s, "•"):
		s = strings.TrimPrefix(s, "•")
	case s == "-", s == "*", s == "+":
		return ""
	case strings.HasPrefix(s, "- "), strings.HasPrefix(s, "* "), strings.HasPrefix(s, "+ "):
		s = s[2:]
	default:
		s = stripOrdinal(s)
	}
	return strings.TrimSpace(s)
}

func stripOrdinal(s string) string {
	rest := strings.TrimPrefix(s, "(")
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(rest) {
		return s
	}
	switch rest[i] {
	case '.', ')':
		return rest[i+1:]
	}
	return s
}
