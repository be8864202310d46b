package llm

import (
	"context"
	"strings"
)

// MockClient is a test double for the Client interface. With no canned
// Response it synthesizes a one-line synopsis from the prompt's SUBJECT
// line, so summary-tier paths see plausible content without a provider.
type MockClient struct {
	Response *Response
	Err      error
	Calls    []string // records prompts sent
}

// Complete records the call and returns the canned or synthesized response.
func (m *MockClient) Complete(ctx context.Context, prompt string) (*Response, error) {
	m.Calls = append(m.Calls, prompt)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Response != nil {
		return m.Response, nil
	}

	subject := "the message"
	for _, line := range strings.Split(prompt, "\n") {
		if s, ok := strings.CutPrefix(line, "SUBJECT: "); ok && strings.TrimSpace(s) != "" {
			subject = strings.TrimSpace(s)
			break
		}
	}
	return &Response{Content: "Discussed " + subject + ".", Provider: "mock"}, nil
}
