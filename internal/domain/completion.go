package domain

import "context"

// SamplingParams are the generation settings of one call site.
type SamplingParams struct {
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// CompletionRequest is a single system+user exchange with the generative model.
type CompletionRequest struct {
	System   string
	User     string
	Sampling SamplingParams
}

// CompletionResult is the raw model reply with token usage.
type CompletionResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Completer produces a chat completion.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}
