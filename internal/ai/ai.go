// Package ai generates channel-ready post text. Perplexity is the
// primary provider, Gemini the optional fallback; Chain glues them.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrInvalidAPIKey = errors.New("ai: invalid API key")
	ErrRateLimited   = errors.New("ai: rate limited")
)

// Post is one generated piece of content plus the keyword used to find
// a matching stock photo.
type Post struct {
	Text    string
	Keyword string
}

type Generator interface {
	Generate(ctx context.Context, topic string) (string, error)
	GenerateWithKeyword(ctx context.Context, topic string) (Post, error)
}

const promptFormat = "Generate a post about: %s"

const keywordPromptFormat = `Generate a post about: %s

After the post content, on a new line, provide exactly ONE keyword (in English) that would be best for finding a relevant photo. Format:

POST CONTENT HERE

KEYWORD: <single keyword>`

var (
	keywordPattern = regexp.MustCompile(`(?i)KEYWORD:\s*([^\n]+)`)
	keywordLine    = regexp.MustCompile(`(?i)\n*KEYWORD:\s*[^\n]+\s*$`)
)

// splitKeyword separates the KEYWORD trailer from generated text. When
// the model ignored the format, the keyword falls back to the first
// meaningful word of the topic.
func splitKeyword(raw, topic string) (string, string) {
	if m := keywordPattern.FindStringSubmatch(raw); m != nil {
		keyword := strings.TrimSpace(m[1])
		text := strings.TrimSpace(keywordLine.ReplaceAllString(raw, ""))
		return text, keyword
	}
	return strings.TrimSpace(raw), fallbackKeyword(topic)
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true,
}

func fallbackKeyword(topic string) string {
	fields := strings.Fields(topic)
	for _, w := range fields {
		if utf8.RuneCountInString(w) > 2 && !stopWords[strings.ToLower(w)] {
			return w
		}
	}
	if len(fields) > 0 {
		return fields[0]
	}
	return "abstract"
}

// Chain tries each provider in order and returns the first success.
type Chain struct {
	providers []Generator
}

func NewChain(providers ...Generator) *Chain {
	return &Chain{providers: providers}
}

func (c *Chain) Generate(ctx context.Context, topic string) (string, error) {
	var lastErr error
	for i, p := range c.providers {
		text, err := p.Generate(ctx, topic)
		if err == nil {
			return text, nil
		}
		lastErr = err
		log.Printf("Text provider %d/%d failed, trying next: %v", i+1, len(c.providers), err)
	}
	if lastErr == nil {
		return "", fmt.Errorf("ai: no providers configured")
	}
	return "", lastErr
}

func (c *Chain) GenerateWithKeyword(ctx context.Context, topic string) (Post, error) {
	var lastErr error
	for i, p := range c.providers {
		post, err := p.GenerateWithKeyword(ctx, topic)
		if err == nil {
			return post, nil
		}
		lastErr = err
		log.Printf("Text provider %d/%d failed, trying next: %v", i+1, len(c.providers), err)
	}
	if lastErr == nil {
		return Post{}, fmt.Errorf("ai: no providers configured")
	}
	return Post{}, lastErr
}
