package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

const perplexityEndpoint = "https://api.perplexity.ai/chat/completions"

// Perplexity generates text through the chat/completions API.
type Perplexity struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	endpoint    string
	httpClient  *http.Client
}

func NewPerplexity(apiKey, model string, maxTokens int, temperature float64, timeout time.Duration) *Perplexity {
	return &Perplexity{
		apiKey:      apiKey,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		endpoint:    perplexityEndpoint,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *Perplexity) Generate(ctx context.Context, topic string) (string, error) {
	return p.complete(ctx, fmt.Sprintf(promptFormat, topic))
}

func (p *Perplexity) GenerateWithKeyword(ctx context.Context, topic string) (Post, error) {
	raw, err := p.complete(ctx, fmt.Sprintf(keywordPromptFormat, topic))
	if err != nil {
		return Post{}, err
	}
	text, keyword := splitKeyword(raw, topic)
	log.Printf("Generated content with keyword: '%s' for topic: '%s'", keyword, topic)
	return Post{Text: text, Keyword: keyword}, nil
}

func (p *Perplexity) complete(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Model:       p.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("perplexity: could not encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("perplexity: could not build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("perplexity: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		log.Println("Invalid Perplexity API key!")
		return "", fmt.Errorf("perplexity: %w", ErrInvalidAPIKey)
	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		if retryAfter == "" {
			retryAfter = "5"
		}
		log.Printf("Perplexity API rate limited, retry after %ss", retryAfter)
		return "", fmt.Errorf("perplexity: %w (retry after %ss)", ErrRateLimited, retryAfter)
	default:
		return "", fmt.Errorf("perplexity: API error: %d", resp.StatusCode)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("perplexity: could not decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("perplexity: received an empty response")
	}
	return decoded.Choices[0].Message.Content, nil
}
