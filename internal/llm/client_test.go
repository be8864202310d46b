package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/emberworks/rekindle/internal/config"
)

func TestNewClient(t *testing.T) {
	cases := []struct {
		name    string
		cfg     config.LLMConfig
		wantErr bool
	}{
		{"anthropic with key", config.LLMConfig{Provider: "anthropic", AnthropicKey: "sk-test"}, false},
		{"anthropic without key", config.LLMConfig{Provider: "anthropic"}, true},
		{"openai with key", config.LLMConfig{Provider: "openai", OpenAIKey: "sk-test"}, false},
		{"openai without key", config.LLMConfig{Provider: "openai"}, true},
		{"ollama needs no key", config.LLMConfig{Provider: "ollama"}, false},
		{"unknown provider", config.LLMConfig{Provider: "bard"}, true},
		{"empty provider", config.LLMConfig{}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewClient(tc.cfg)
			if tc.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			if c == nil {
				t.Error("expected client")
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	mock := &MockClient{Response: &Response{Content: "  caught up about the move  \n"}}

	got, err := Summarize(context.Background(), mock, "moving day", "long body text")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "caught up about the move" {
		t.Errorf("summary = %q, want trimmed content", got)
	}

	if len(mock.Calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(mock.Calls))
	}
	if !strings.Contains(mock.Calls[0], "moving day") || !strings.Contains(mock.Calls[0], "long body text") {
		t.Error("prompt should carry subject and body")
	}
}

func TestMockClientSynthesizesSynopsis(t *testing.T) {
	// With no canned response the mock builds one from the prompt's subject.
	mock := &MockClient{}

	got, err := Summarize(context.Background(), mock, "dinner plans", "long body text")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "Discussed dinner plans." {
		t.Errorf("summary = %q, want synthesized synopsis", got)
	}
}

func TestSummarizeError(t *testing.T) {
	wantErr := errors.New("rate limited")
	mock := &MockClient{Err: wantErr}

	_, err := Summarize(context.Background(), mock, "s", "b")
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want wrapped %v", err, wantErr)
	}
}
