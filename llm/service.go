package llm

import (
	"context"

	dadbs "github.com/DADBSLabs/DADBS-TESTNET"
	"github.com/DADBSLabs/DADBS-TESTNET/types"
)

// Service adapts a Model to the generation capability of the
// validator boundary. The model is bounded to its context window,
// so oversized prompts fail without running inference.
type Service struct {
	model Model
}

// NewService wraps m for use as a node's Generator.
func NewService(m Model) *Service {
	return &Service{model: Bounded{Inner: m}}
}

// Generate implements dadbs.Generator.
func (s *Service) Generate(ctx context.Context, req types.RequestGenerate) (types.ResponseGenerate, error) {
	temperature := float32(req.TemperatureMilli) / 1000
	text, err := s.model.Generate(ctx, req.Prompt, int(req.MaxTokens), temperature)
	if err != nil {
		return types.ResponseGenerate{}, err
	}
	return types.ResponseGenerate{
		Text:         text,
		ModelVersion: s.model.Info().Version,
	}, nil
}

var _ dadbs.Generator = (*Service)(nil)
