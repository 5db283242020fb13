package bot

import (
	"context"
	"log"
	"math/rand/v2"
	"strconv"
	"strings"

	"contentbot/internal/images"
	"contentbot/internal/seo"
	"contentbot/internal/stats"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

func (b *Bot) autopostJob() {
	requestID := uuid.NewString()
	log.Printf("[%s] Scheduler fired: Generating autopost...", requestID)
	ctx, cancel := context.WithTimeout(context.Background(), generationTimeout)
	defer cancel()

	topic := b.pickAutopostTopic(ctx)
	if topic == "" {
		log.Printf("[%s] No autopost topics configured, skipping run.", requestID)
		return
	}

	post, err := b.generator.GenerateWithKeyword(ctx, topic)
	if err != nil {
		log.Printf("[%s] Autopost generation failed for topic %q: %v", requestID, topic, err)
		return
	}

	postType := stats.PostTypeText
	var imageURL string
	if b.images != nil && rand.IntN(2) == 0 {
		if urls, err := b.images.Search(ctx, post.Keyword, 1); err == nil && len(urls) > 0 {
			imageURL = urls[0]
			postType = stats.PostTypeImages
		}
	}

	if err := b.sendToChannel(post.Text, imageURL); err != nil {
		log.Printf("[%s] Failed to send autopost to channel: %v", requestID, err)
		return
	}
	b.stats.RecordPost(0, topic, postType)
	b.auditGeneration(0, requestID, topic, postType)
	log.Printf("[%s] Autopost delivered to channel %s, topic: %s", requestID, b.cfg.ChannelID, topic)
}

// pickAutopostTopic prefers a fresh headline from the trend feeds and
// falls back to the static topic list.
func (b *Bot) pickAutopostTopic(ctx context.Context) string {
	if b.trends != nil {
		if topics, err := b.trends.Topics(ctx); err == nil && len(topics) > 0 {
			topic := topics[rand.IntN(len(topics))]
			log.Printf("Autopost topic picked from trend feeds: %s", topic)
			return topic
		}
	}
	if len(b.cfg.AutopostTopics) == 0 {
		return ""
	}
	return b.cfg.AutopostTopics[rand.IntN(len(b.cfg.AutopostTopics))]
}

// sendToChannel posts to the configured channel, which may be a
// public @username or a numeric chat id. A failed photo send falls
// back to text.
func (b *Bot) sendToChannel(text, imageURL string) error {
	channel := b.cfg.ChannelID
	var chatID int64
	var username string
	if strings.HasPrefix(channel, "@") {
		username = channel
	} else {
		id, err := strconv.ParseInt(channel, 10, 64)
		if err != nil {
			log.Printf("Invalid CHANNEL_ID, must be @username or a numeric chat id: %s", channel)
			return err
		}
		chatID = id
	}

	if imageURL != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(imageURL))
		photo.ChannelUsername = username
		photo.Caption = clipCaption(text)
		_, err := b.api.Send(photo)
		if err == nil {
			return nil
		}
		log.Printf("Failed to send photo to channel: %v. Trying to send as text.", err)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ChannelUsername = username
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) cacheCleanupJob() {
	if err := b.storage.CleanupExpired(seo.DefaultTTL, images.DefaultCacheTTL); err != nil {
		log.Printf("Cache cleanup failed: %v", err)
		return
	}
	log.Println("Expired cache entries cleaned up.")
}
