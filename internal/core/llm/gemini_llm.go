package llm

import (
	"context"

	"github.com/google/generative-ai-go/genai"

	"github.com/Shivamm1101/doc-ai/internal/core"
)

var _ core.LLMProvider = (*GeminiLLM)(nil)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiLLM answers prompts deterministically (temperature 0).
type GeminiLLM struct {
	client *genai.Client
	model  string
}

func NewGeminiLLM(ctx context.Context, apiKey, model string) (*GeminiLLM, error) {
	cl, err := newGeminiClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiLLM{client: cl, model: model}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *GeminiLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(0)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", generateError(err)
	}
	return candidateText(resp), nil
}
