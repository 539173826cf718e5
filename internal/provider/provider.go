// Package provider abstracts the external completion provider. The
// orchestrator treats every decision as untrusted; proposals still pass
// the authorization gate and argument validation before any effect.
package provider

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

// ErrUnavailable wraps transport failures and timeouts. The turn aborts
// cleanly and the caller may retry the whole turn.
var ErrUnavailable = errors.New("completion provider unavailable")

// Proposal is one action the provider wants executed.
type Proposal struct {
	ID   string
	Name string
	Args map[string]any
}

// Decision is the provider's answer for one request: free text, or one
// or more proposed actions, or both.
type Decision struct {
	Text      string
	Proposals []Proposal
}

// Request carries the grounding context and the filtered action
// catalog for one decision.
type Request struct {
	System       string
	History      []*genai.Content
	Declarations []*genai.FunctionDeclaration
}

// Provider produces decisions.
type Provider interface {
	Decide(ctx context.Context, req *Request) (*Decision, error)
	Close() error
}

// Ptr returns a pointer to the given value.
func Ptr[T any](v T) *T {
	return &v
}
