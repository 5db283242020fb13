package ai

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini is the fallback text provider, used when Perplexity fails and
// a GEMINI_API_KEY is configured.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

func (g *Gemini) Generate(ctx context.Context, topic string) (string, error) {
	return g.generate(ctx, fmt.Sprintf(promptFormat, topic))
}

func (g *Gemini) GenerateWithKeyword(ctx context.Context, topic string) (Post, error) {
	raw, err := g.generate(ctx, fmt.Sprintf(keywordPromptFormat, topic))
	if err != nil {
		return Post{}, err
	}
	text, keyword := splitKeyword(raw, topic)
	return Post{Text: text, Keyword: keyword}, nil
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("received an empty response from AI")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response format from AI")
	}
	return string(text), nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}
