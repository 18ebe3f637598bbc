// Package llm defines the completion capability the agent depends on and an
// OpenAI-compatible implementation of it.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Roles used in chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    string
	Content string
}

// Request is the input for one completion.
type Request struct {
	// Model overrides the client default when non-empty.
	Model       string
	Messages    []Message
	Temperature float32
}

// Client generates a completion for a request.
// Implementations must honor ctx cancellation.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Kind classifies completion failures.
type Kind string

const (
	// Transient failures may succeed on retry (rate limits, 5xx, network).
	Transient Kind = "transient"
	// Permanent failures will not succeed on retry (bad key, bad request).
	Permanent Kind = "permanent"
)

// ErrEmptyResponse is returned when the provider answers without content.
var ErrEmptyResponse = errors.New("empty completion response")

// Error wraps a provider failure with its classification.
type Error struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s completion error (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s completion error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransient reports whether err is worth retrying. Errors that carry no
// classification are treated as transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var le *Error
	if errors.As(err, &le) {
		return le.Kind == Transient
	}
	return !errors.Is(err, context.Canceled)
}

// KindOf returns the classification of err, defaulting to Transient.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return Transient
}
