// Package identity canonicalizes counterpart identifiers and resolves
// display names. A counterpart key is the stable matching key for one
// relationship: a lowercased bare address, or the trailing ten digits of a
// phone number.
package identity

import (
	"strings"
)

// Normalize canonicalizes a raw address or phone number into a matching key.
//
// Address-like inputs are lowercased and stripped of display-name wrapping
// ("Name <addr>" becomes "addr"). Phone-like inputs keep digits only; a
// leading country digit 1 on an 11-digit number is dropped so +1 (555)
// 867-5309 and 5558675309 land on the same key.
//
// Fails soft: an unparseable input becomes its own key verbatim. The pipeline
// must never drop a record over ambiguous identity — over-segmenting
// relationships beats silently losing history.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}

	if strings.Contains(trimmed, "@") {
		return normalizeAddress(trimmed)
	}

	if digits := digitsOf(trimmed); digits != "" {
		return normalizePhone(digits)
	}

	return trimmed
}

func normalizeAddress(s string) string {
	// "Jane Doe <jane@example.com>" → "jane@example.com"
	if open := strings.LastIndexByte(s, '<'); open >= 0 {
		if close := strings.IndexByte(s[open:], '>'); close > 0 {
			s = s[open+1 : open+close]
		}
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizePhone(digits string) string {
	if len(digits) == 11 && digits[0] == '1' {
		return digits[1:]
	}
	return digits
}

func digitsOf(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
