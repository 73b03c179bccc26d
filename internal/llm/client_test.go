package llm

import (
	"errors"
	"testing"
)

var routeTargets = []string{"orthodontics", "periodontics", "front_desk"}

func TestParsePersonaID(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"bare id", "periodontics", "periodontics"},
		{"bare id with whitespace", "  front_desk\n", "front_desk"},
		{"json verdict", `{"persona": "orthodontics"}`, "orthodontics"},
		{"json with prose", "Routing decision follows.\n{\"persona\": \"front_desk\"}\nDone.", "front_desk"},
		{"single mention in prose", "The periodontics specialist should take this.", "periodontics"},
		{"unknown id", `{"persona": "dermatology"}`, ""},
		{"malformed json", `{"persona": `, ""},
		{"ambiguous mentions", "Either orthodontics or periodontics would fit.", ""},
		{"empty output", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parsePersonaID(tt.output, routeTargets); got != tt.want {
				t.Errorf("parsePersonaID(%q) = %q, want %q", tt.output, got, tt.want)
			}
		})
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{Model: "gpt-4o"}); err == nil {
		t.Error("expected an error without an API key")
	}
	if _, err := NewClient(Config{APIKey: "sk-test"}); err == nil {
		t.Error("expected an error without a model")
	}
	c, err := NewClient(Config{APIKey: "sk-test", Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if c.model != "gpt-4o" {
		t.Errorf("unexpected model %q", c.model)
	}
}

func TestErrorTypes(t *testing.T) {
	cause := errors.New("connection reset")

	var err error = &ServiceError{Op: "classify", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("ServiceError should unwrap to its cause")
	}

	err = &StreamError{Received: 42, Err: cause}
	var se *StreamError
	if !errors.As(err, &se) {
		t.Fatal("expected a StreamError")
	}
	if se.Received != 42 {
		t.Errorf("expected 42 received chars, got %d", se.Received)
	}
	if !errors.Is(err, cause) {
		t.Error("StreamError should unwrap to its cause")
	}
}

func TestStreamFailureClassification(t *testing.T) {
	cause := errors.New("server error")

	// A failure before any text arrived is a service failure, no matter
	// which path in the stream loop observed it.
	err := streamFailure("generate", 0, cause)
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("failure with no text should be a ServiceError, got %T", err)
	}
	if svcErr.Op != "generate" {
		t.Errorf("expected op %q, got %q", "generate", svcErr.Op)
	}

	err = streamFailure("generate", 12, cause)
	var strErr *StreamError
	if !errors.As(err, &strErr) {
		t.Fatalf("failure after text should be a StreamError, got %T", err)
	}
	if strErr.Received != 12 {
		t.Errorf("expected 12 received chars, got %d", strErr.Received)
	}
}

func TestIsAuthError(t *testing.T) {
	if IsAuthError(nil) {
		t.Error("nil is not an auth error")
	}
	if !IsAuthError(errors.New("401 unauthorized")) {
		t.Error("401 should be an auth error")
	}
	if IsAuthError(errors.New("connection refused")) {
		t.Error("network failure is not an auth error")
	}
}
