// Package stats tracks post generation counters in a JSON file that
// survives restarts and feeds the /stats report.
package stats

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	PostTypeText   = "text"
	PostTypeImages = "images"
)

type TopicEntry struct {
	Topic     string    `json:"topic"`
	Timestamp time.Time `json:"timestamp"`
	UserID    int64     `json:"user_id"`
}

type TopicCount struct {
	Topic string
	Count int
}

type snapshot struct {
	TotalPosts      int                  `json:"total_posts"`
	TextOnlyPosts   int                  `json:"text_only_posts"`
	PostsWithImages int                  `json:"posts_with_images"`
	ActiveUsers     map[string]time.Time `json:"active_users"`
	Topics          []TopicEntry         `json:"topics"`
	CreatedAt       time.Time            `json:"created_at"`
	LastUpdated     time.Time            `json:"last_updated"`
}

type Tracker struct {
	mu   sync.Mutex
	path string
	data snapshot
	now  func() time.Time
}

// NewTracker loads existing statistics from path. A missing or
// unreadable file starts a fresh record rather than failing the bot.
func NewTracker(path string) *Tracker {
	t := &Tracker{path: path, now: time.Now}
	t.data = t.load()
	return t
}

func (t *Tracker) load() snapshot {
	fresh := snapshot{
		ActiveUsers: make(map[string]time.Time),
		Topics:      make([]TopicEntry, 0),
		CreatedAt:   t.now(),
		LastUpdated: t.now(),
	}

	raw, err := os.ReadFile(t.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Error loading statistics: %v", err)
		}
		return fresh
	}

	var loaded snapshot
	if err := json.Unmarshal(raw, &loaded); err != nil {
		log.Printf("Error loading statistics: %v", err)
		return fresh
	}
	if loaded.ActiveUsers == nil {
		loaded.ActiveUsers = make(map[string]time.Time)
	}
	if loaded.Topics == nil {
		loaded.Topics = make([]TopicEntry, 0)
	}
	return loaded
}

func (t *Tracker) save() {
	t.data.LastUpdated = t.now()
	raw, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		log.Printf("Error saving statistics: %v", err)
		return
	}
	if err := os.WriteFile(t.path, raw, 0o644); err != nil {
		log.Printf("Error saving statistics: %v", err)
	}
}

// RecordPost counts one generated post. postType is PostTypeText or
// PostTypeImages.
func (t *Tracker) RecordPost(userID int64, topic, postType string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.TotalPosts++
	switch postType {
	case PostTypeText:
		t.data.TextOnlyPosts++
	case PostTypeImages:
		t.data.PostsWithImages++
	}
	t.data.ActiveUsers[strconv.FormatInt(userID, 10)] = t.now()
	t.data.Topics = append(t.data.Topics, TopicEntry{
		Topic:     topic,
		Timestamp: t.now(),
		UserID:    userID,
	})

	t.save()
	log.Printf("Recorded %s post for user %d: %s", postType, userID, topic)
}

func (t *Tracker) TotalPosts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data.TotalPosts
}

func (t *Tracker) ActiveUsers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.data.ActiveUsers)
}

// PopularTopics returns up to n topics ordered by request count, ties
// keeping first-seen order.
func (t *Tracker) PopularTopics(n int) []TopicCount {
	t.mu.Lock()
	defer t.mu.Unlock()

	counts := make(map[string]int)
	var order []string
	for _, entry := range t.data.Topics {
		if counts[entry.Topic] == 0 {
			order = append(order, entry.Topic)
		}
		counts[entry.Topic]++
	}

	ranked := make([]TopicCount, 0, len(order))
	for _, topic := range order {
		ranked = append(ranked, TopicCount{Topic: topic, Count: counts[topic]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Report renders the Russian HTML statistics summary sent by /stats.
func (t *Tracker) Report() string {
	popular := t.PopularTopics(5)

	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	b.WriteString("📊 <b>Статистика бота</b>\n\n")
	fmt.Fprintf(&b, "📝 <b>Общее количество постов:</b> %d\n", t.data.TotalPosts)
	fmt.Fprintf(&b, "  • Только текст: %d\n", t.data.TextOnlyPosts)
	fmt.Fprintf(&b, "  • С изображениями: %d\n\n", t.data.PostsWithImages)
	fmt.Fprintf(&b, "👥 <b>Активные пользователи:</b> %d\n\n", len(t.data.ActiveUsers))
	b.WriteString("🔥 <b>Популярные темы:</b>\n")

	if len(popular) > 0 {
		for i, tc := range popular {
			fmt.Fprintf(&b, "  %d. %s (%d раз)\n", i+1, tc.Topic, tc.Count)
		}
	} else {
		b.WriteString("  Пока нет данных\n")
	}

	fmt.Fprintf(&b, "\n📅 Последнее обновление: %s", t.data.LastUpdated.Format("2006-01-02T15:04:05"))
	return b.String()
}
