package images

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const pixabayBaseURL = "https://pixabay.com/api/"

// Pixabay is the fallback photo source. Its API rejects per_page values
// below 3, so requests always ask for at least that many.
type Pixabay struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewPixabay(apiKey string, timeout time.Duration) *Pixabay {
	return &Pixabay{
		apiKey:     apiKey,
		baseURL:    pixabayBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type pixabayResponse struct {
	Hits []struct {
		LargeImageURL string `json:"largeImageURL"`
	} `json:"hits"`
}

func (p *Pixabay) Search(ctx context.Context, query string, n int) ([]string, error) {
	perPage := n
	if perPage < 3 {
		perPage = 3
	}
	params := url.Values{}
	params.Set("key", p.apiKey)
	params.Set("q", query)
	params.Set("image_type", "photo")
	params.Set("orientation", "horizontal")
	params.Set("per_page", strconv.Itoa(perPage))

	urls, err := p.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	if n < len(urls) {
		urls = urls[:n]
	}
	log.Printf("Found %d images for query: %s", len(urls), query)
	return urls, nil
}

func (p *Pixabay) Random(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("key", p.apiKey)
	params.Set("image_type", "photo")
	params.Set("editors_choice", "true")
	params.Set("per_page", "3")

	urls, err := p.fetch(ctx, params)
	if err != nil {
		return "", err
	}
	if len(urls) == 0 {
		return "", ErrNoResults
	}
	return urls[0], nil
}

func (p *Pixabay) fetch(ctx context.Context, params url.Values) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("pixabay: could not build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pixabay: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		return nil, fmt.Errorf("pixabay: %w", ErrInvalidAPIKey)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pixabay: API error: %d", resp.StatusCode)
	}

	var decoded pixabayResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("pixabay: could not decode response: %w", err)
	}

	var urls []string
	for _, hit := range decoded.Hits {
		if hit.LargeImageURL != "" {
			urls = append(urls, hit.LargeImageURL)
		}
	}
	return urls, nil
}
