package providers

import (
	"context"

	"github.com/microstack/microstack/pkg/llm"
	"github.com/microstack/microstack/pkg/structure"
)

// Request carries one structure generation request.
type Request struct {
	// Params is the parsed request. Providers read it, never mutate it.
	Params *llm.ParsedQuery

	// Query is the original natural-language request, available to
	// providers that synthesize build scripts from it.
	Query string
}

// Provider produces an atomic structure for a request or fails. A nil
// structure with a nil error is a contract violation the orchestrator does
// not recover from; implementations must return one or the other.
type Provider interface {
	// Name identifies the provider in diagnostics.
	Name() string

	// Generate builds the structure described by the request.
	Generate(ctx context.Context, req Request) (*structure.Structure, error)
}
