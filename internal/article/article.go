// Package article turns a URL into readable text for link-based post
// generation.
package article

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
)

// DefaultLimit caps how much extracted text goes into a generation
// prompt.
const DefaultLimit = 3000

const fetchTimeout = 30 * time.Second

type Article struct {
	Title    string
	Text     string
	ImageURL string
	URL      string
}

func Extract(rawURL string) (*Article, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse link: %w", err)
	}

	page, err := readability.FromURL(parsed.String(), fetchTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to process with readability: %w", err)
	}

	return &Article{
		Title:    page.Title,
		Text:     strings.TrimSpace(page.TextContent),
		ImageURL: page.Image,
		URL:      rawURL,
	}, nil
}

// Clip truncates text to at most max runes, marking the cut.
func Clip(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max])) + "..."
}
