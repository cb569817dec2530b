// Package llm is the generation gateway: a single Generator interface with
// interchangeable backends. The pipeline never talks to a provider directly;
// it hands a prompt pair to a Generator and gets back raw text or a typed
// error, so backends can be swapped by configuration without touching any
// caller.
package llm

import "context"

// PromptPair is the two-part prompt every backend sends: the system message
// carrying the output contract and the user message carrying the clinical
// free text.
type PromptPair struct {
	System string
	User   string
}

// Params are the per-request generation knobs.
type Params struct {
	Temperature float64
	MaxTokens   int
}

// Generator produces raw model output for a prompt. Implementations must
// honor context cancellation and return one of the error types in this
// package on failure.
type Generator interface {
	Generate(ctx context.Context, prompt PromptPair, params Params) (string, error)
}
