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

const pexelsBaseURL = "https://api.pexels.com/v1"

// Pexels fetches photos from the Pexels API. The API key goes into the
// Authorization header as is, without a Bearer prefix.
type Pexels struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewPexels(apiKey string, timeout time.Duration) *Pexels {
	return &Pexels{
		apiKey:     apiKey,
		baseURL:    pexelsBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type pexelsResponse struct {
	Photos []struct {
		Src struct {
			Large string `json:"large"`
		} `json:"src"`
	} `json:"photos"`
}

func (p *Pexels) Search(ctx context.Context, query string, n int) ([]string, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(n))
	params.Set("orientation", "landscape")

	urls, err := p.fetch(ctx, p.baseURL+"/search?"+params.Encode())
	if err != nil {
		return nil, err
	}
	log.Printf("Found %d images for query: %s", len(urls), query)
	return urls, nil
}

func (p *Pexels) Random(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("per_page", "1")

	urls, err := p.fetch(ctx, p.baseURL+"/curated?"+params.Encode())
	if err != nil {
		return "", err
	}
	if len(urls) == 0 {
		return "", ErrNoResults
	}
	return urls[0], nil
}

func (p *Pexels) fetch(ctx context.Context, endpoint string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("pexels: could not build request: %w", err)
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("pexels: %w", ErrInvalidAPIKey)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pexels: API error: %d", resp.StatusCode)
	}

	var decoded pexelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("pexels: could not decode response: %w", err)
	}

	var urls []string
	for _, photo := range decoded.Photos {
		if photo.Src.Large != "" {
			urls = append(urls, photo.Src.Large)
		}
	}
	return urls, nil
}
