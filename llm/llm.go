// Package llm defines the boundary to a validator's local
// text-generation model. The inference engine itself lives outside
// this repository; validators plug any Model implementation into
// the generation capability.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Parameters of the model family validators currently run.
const (
	// ModelName identifies the model family.
	ModelName = "LLaMA-2 7B"
	// ModelVersion is reported alongside generated text.
	ModelVersion = "2.0.1"
	// ModelRelease is the model's release date.
	ModelRelease = "2023-12"
	// ContextLength is the model's context window in tokens.
	ContextLength = 4096
)

// ErrPromptTooLong rejects prompts exceeding the context window.
var ErrPromptTooLong = errors.New("llm: prompt too long for model context window")

// ModelInfo describes a model.
type ModelInfo struct {
	Name          string
	Version       string
	Release       string
	ContextLength int
}

// DefaultInfo returns the ModelInfo for the current model family.
func DefaultInfo() ModelInfo {
	return ModelInfo{
		Name:          ModelName,
		Version:       ModelVersion,
		Release:       ModelRelease,
		ContextLength: ContextLength,
	}
}

func (i ModelInfo) String() string {
	return fmt.Sprintf("%s v%s (released %s, context %d tokens)",
		i.Name, i.Version, i.Release, i.ContextLength)
}

// Model is a text-generation engine. Implementations are expected
// to be safe for concurrent use.
type Model interface {
	// Generate produces text from prompt. maxTokens bounds the
	// output length, zero meaning the model default; temperature is
	// the sampling temperature.
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)

	// Info describes the model.
	Info() ModelInfo
}

// Bounded wraps a Model and enforces the context window on input:
// prompts longer than the window fail with ErrPromptTooLong before
// the model runs.
type Bounded struct {
	Inner Model
}

func (b Bounded) Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	if len(prompt) > b.Inner.Info().ContextLength {
		return "", fmt.Errorf("%w: %d bytes", ErrPromptTooLong, len(prompt))
	}
	return b.Inner.Generate(ctx, prompt, maxTokens, temperature)
}

func (b Bounded) Info() ModelInfo {
	return b.Inner.Info()
}

var _ Model = Bounded{}
