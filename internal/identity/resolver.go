package identity

import (
	"context"
	"strings"
)

// Resolver looks up a human display name for an identifier. Implementations
// wrap platform contact books; a lookup miss returns "" with a nil error.
// Resolution failures never abort ingestion — callers degrade to
// FallbackDisplayName.
type Resolver interface {
	ResolveDisplayName(ctx context.Context, identifier string) (string, error)
}

// NoopResolver always misses. Used when no contact integration is configured.
type NoopResolver struct{}

func (NoopResolver) ResolveDisplayName(ctx context.Context, identifier string) (string, error) {
	return "", nil
}

// MockResolver is a test double backed by a fixed map.
type MockResolver struct {
	Names map[string]string
	Err   error
}

func (m *MockResolver) ResolveDisplayName(ctx context.Context, identifier string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Names[identifier], nil
}

// FallbackDisplayName derives a best-effort name from the identifier itself:
// the title-cased local part of an address, or the digits of a phone number
// formatted for display. Used when resolution is unavailable or misses.
func FallbackDisplayName(identifier string) string {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return id
	}

	if at := strings.IndexByte(id, '@'); at > 0 {
		return titleCaseLocalPart(id[:at])
	}

	if digits := digitsOf(id); len(digits) == 10 {
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	}

	return id
}

// titleCaseLocalPart turns "jane.doe" or "jane_doe" into "Jane Doe".
func titleCaseLocalPart(local string) string {
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	return strings.Join(parts, " ")
}
