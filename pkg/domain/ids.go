package domain

import (
	"fmt"
	"strings"
)

// AuditIDPrefix precedes the zero-padded sequence of every audit identifier.
const AuditIDPrefix = "AUD"

// FormatAuditID renders an audit sequence number as AUD plus at least three digits.
func FormatAuditID(seq int) string {
	return fmt.Sprintf("%s%03d", AuditIDPrefix, seq)
}

// AuditSequence extracts the numeric suffix from an audit identifier.
// The first AUD marker is dropped and the remainder is read as a leading
// integer, so "AUD007" yields 7 and "AUD12x" yields 12.
func AuditSequence(id string) (int, bool) {
	return ParseNumericID(strings.Replace(id, AuditIDPrefix, "", 1))
}

// ParseNumericID coerces a raw identifier to an integer by reading its leading
// integer: optional surrounding whitespace, an optional sign, then digits.
// A 0x or 0X prefix switches to hexadecimal, so "0x6" is 6. Trailing garbage
// is ignored ("6abc" is 6); input without leading digits does not parse.
func ParseNumericID(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	neg := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}
	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}
	n, digits := 0, 0
	for digits < len(s) {
		d, ok := digitValue(s[digits], base)
		if !ok {
			break
		}
		n = n*base + d
		digits++
		if n > 1<<31 {
			return 0, false
		}
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

func digitValue(c byte, base int) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case base == 16 && c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case base == 16 && c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}
