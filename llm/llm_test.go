package llm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DADBSLabs/DADBS-TESTNET/llm"
	"github.com/DADBSLabs/DADBS-TESTNET/types"
)

// recordingModel captures the arguments of the last Generate call.
type recordingModel struct {
	calls       int
	prompt      string
	maxTokens   int
	temperature float32
}

func (m *recordingModel) Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	m.calls++
	m.prompt = prompt
	m.maxTokens = maxTokens
	m.temperature = temperature
	return "generated text", nil
}

func (m *recordingModel) Info() llm.ModelInfo { return llm.DefaultInfo() }

func TestBounded(t *testing.T) {
	model := &recordingModel{}
	bounded := llm.Bounded{Inner: model}
	ctx := context.Background()

	atLimit := strings.Repeat("a", llm.ContextLength)
	if _, err := bounded.Generate(ctx, atLimit, 16, 0.7); err != nil {
		t.Fatalf("Generate at the context limit failed: %v", err)
	}

	over := strings.Repeat("a", llm.ContextLength+1)
	_, err := bounded.Generate(ctx, over, 16, 0.7)
	if !errors.Is(err, llm.ErrPromptTooLong) {
		t.Fatalf("error = %v, want ErrPromptTooLong", err)
	}
	if model.calls != 1 {
		t.Fatalf("model ran %d times, want 1: the oversized prompt must not reach it", model.calls)
	}

	if bounded.Info() != llm.DefaultInfo() {
		t.Errorf("Info = %+v, want the inner model's", bounded.Info())
	}
}

func TestDefaultInfo(t *testing.T) {
	info := llm.DefaultInfo()
	if info.Version != "2.0.1" || info.Release != "2023-12" || info.ContextLength != 4096 {
		t.Fatalf("DefaultInfo = %+v", info)
	}
	s := info.String()
	for _, want := range []string{"LLaMA-2 7B", "2.0.1", "2023-12", "4096"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestService_Generate(t *testing.T) {
	model := &recordingModel{}
	svc := llm.NewService(model)

	resp, err := svc.Generate(context.Background(), types.RequestGenerate{
		Prompt:           "tell me about stakes",
		MaxTokens:        32,
		TemperatureMilli: 700,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Text != "generated text" {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.ModelVersion != llm.ModelVersion {
		t.Errorf("ModelVersion = %q, want %q", resp.ModelVersion, llm.ModelVersion)
	}
	if model.prompt != "tell me about stakes" || model.maxTokens != 32 {
		t.Errorf("model saw prompt %q maxTokens %d", model.prompt, model.maxTokens)
	}
	if model.temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", model.temperature)
	}
}

func TestService_BoundsPrompts(t *testing.T) {
	model := &recordingModel{}
	svc := llm.NewService(model)

	_, err := svc.Generate(context.Background(), types.RequestGenerate{
		Prompt: strings.Repeat("x", llm.ContextLength+1),
	})
	if !errors.Is(err, llm.ErrPromptTooLong) {
		t.Fatalf("error = %v, want ErrPromptTooLong", err)
	}
	if model.calls != 0 {
		t.Fatal("oversized prompt reached the model through the service")
	}
}
