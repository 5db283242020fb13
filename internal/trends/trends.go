// Package trends supplies autopost topic candidates from RSS feeds.
package trends

import (
	"context"
	"log"
	"strings"

	"github.com/mmcdole/gofeed"
)

const topicsPerFeed = 5

type Source struct {
	parser *gofeed.Parser
	feeds  []string
}

func NewSource(feeds []string) *Source {
	return &Source{
		parser: gofeed.NewParser(),
		feeds:  feeds,
	}
}

// Topics returns the newest item titles across the configured feeds,
// deduplicated, up to topicsPerFeed per feed. Unreachable feeds are
// logged and skipped; an empty result means the caller should use its
// static topic list.
func (s *Source) Topics(ctx context.Context) ([]string, error) {
	var topics []string
	seen := make(map[string]bool)

	for _, feedURL := range s.feeds {
		feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			log.Printf("Warning: Failed to fetch trend feed %s: %v", feedURL, err)
			continue
		}

		taken := 0
		for _, item := range feed.Items {
			title := strings.TrimSpace(item.Title)
			if title == "" || seen[title] {
				continue
			}
			topics = append(topics, title)
			seen[title] = true
			taken++
			if taken >= topicsPerFeed {
				break
			}
		}
	}
	return topics, nil
}
