// Package seo scrapes monthly search statistics for a keyword and
// serves repeat lookups from the storage cache.
package seo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"contentbot/internal/storage"
)

const (
	DefaultTTL = 24 * time.Hour

	defaultBaseURL = "https://wordstat.yandex.ru"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	volumeSelector = ".b-word-statistics__td_type_shows"
	phraseSelector = ".b-word-statistics__phrase"

	maxRelated = 10
)

var numberPattern = regexp.MustCompile(`\d[\d\s]*\d|\d+`)

type Related struct {
	Keyword string `json:"keyword"`
	Volume  string `json:"volume"`
}

type KeywordData struct {
	Keyword string    `json:"keyword"`
	Volume  string    `json:"volume"`
	Related []Related `json:"related"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *storage.Storage
	ttl        time.Duration
}

func NewClient(store *storage.Storage, timeout time.Duration) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		store:      store,
		ttl:        DefaultTTL,
	}
}

// Lookup returns keyword statistics, scraping the statistics page only
// when the cache has no fresh entry.
func (c *Client) Lookup(ctx context.Context, keyword string) (*KeywordData, error) {
	key := strings.ToLower(strings.TrimSpace(keyword))

	if payload, err := c.store.CachedSEO(key, c.ttl); err == nil {
		var data KeywordData
		if err := json.Unmarshal([]byte(payload), &data); err == nil {
			log.Printf("Using cached data for keyword: %s", key)
			return &data, nil
		}
	}

	log.Printf("Scraping fresh data for keyword: %s", key)
	data, err := c.scrape(ctx, keyword)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(data); err == nil {
		if err := c.store.CacheSEO(key, string(payload)); err != nil {
			log.Printf("Could not cache keyword data for '%s': %v", key, err)
		}
	}
	return data, nil
}

func (c *Client) scrape(ctx context.Context, keyword string) (*KeywordData, error) {
	endpoint := c.baseURL + "?text=" + url.QueryEscape(keyword)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("seo: could not build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("seo: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("seo: failed to fetch page: status code %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("seo: could not parse page: %w", err)
	}

	data := &KeywordData{Keyword: keyword, Volume: "N/A"}

	if text := strings.TrimSpace(doc.Find(volumeSelector).First().Text()); text != "" {
		if v := formatVolume(text); v != "" {
			data.Volume = v
		} else {
			data.Volume = text
		}
	} else if m := numberPattern.FindString(doc.Text()); m != "" {
		if v := formatVolume(m); v != "" {
			data.Volume = v
		}
	}

	doc.Find(phraseSelector).Each(func(_ int, sel *goquery.Selection) {
		if len(data.Related) >= maxRelated {
			return
		}
		kw := strings.TrimSpace(sel.Text())
		if kw == "" || kw == keyword {
			return
		}
		volume := formatVolume(sel.Closest("tr").Find(volumeSelector).First().Text())
		if volume == "" {
			volume = "N/A"
		}
		data.Related = append(data.Related, Related{Keyword: kw, Volume: volume})
	})
	log.Printf("Found %d related keywords", len(data.Related))

	return data, nil
}

// formatVolume turns raw show counts into the compact report form:
// thousands "150k/мес", millions "1.5M/мес", small values verbatim.
// Text without digits yields "".
func formatVolume(text string) string {
	var digits strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	volume, err := strconv.Atoi(digits.String())
	if err != nil {
		return ""
	}

	switch {
	case volume >= 1_000_000:
		return fmt.Sprintf("%.1fM/мес", float64(volume)/1_000_000)
	case volume >= 1_000:
		return fmt.Sprintf("%.0fk/мес", float64(volume)/1_000)
	default:
		return fmt.Sprintf("%d/мес", volume)
	}
}
