package bot

import (
	"context"
	"fmt"
	"log"

	"contentbot/internal/article"
	"contentbot/internal/stats"

	"github.com/google/uuid"
)

// auditGeneration records a delivered post in the audit trail under
// the request id that tags the log lines of the same generation.
func (b *Bot) auditGeneration(userID int64, requestID, topic, postType string) {
	action := fmt.Sprintf("Post generated: request=%s, topic='%s', type=%s", requestID, topic, postType)
	if err := b.storage.AppendAudit(userID, action); err != nil {
		log.Printf("[%s] Could not write audit entry: %v", requestID, err)
	}
}

func (b *Bot) generatePost(chatID, userID int64, topic string, withImage bool) {
	requestID := uuid.NewString()
	log.Printf("[%s] Generating post for user %d, topic: %s", requestID, userID, topic)
	b.sendMessage(chatID, b.localizer.Getf("generating_post", topic))

	ctx, cancel := context.WithTimeout(context.Background(), generationTimeout)
	defer cancel()

	post, err := b.generator.GenerateWithKeyword(ctx, topic)
	if err != nil {
		log.Printf("[%s] Generation failed: %v", requestID, err)
		b.sendMessage(chatID, b.localizer.Get("generation_failed"))
		return
	}

	postType := stats.PostTypeText
	var imageURL string
	if withImage {
		imageURL = b.findImage(ctx, requestID, post.Keyword)
		if imageURL == "" {
			b.sendMessage(chatID, b.localizer.Get("image_not_found"))
		} else {
			postType = stats.PostTypeImages
		}
	}

	b.sendPost(chatID, post.Text, imageURL, b.regenerateKeyboard(topic, withImage))
	b.stats.RecordPost(userID, topic, postType)
	b.auditGeneration(userID, requestID, topic, postType)
	log.Printf("[%s] Post delivered, type: %s, keyword: %s", requestID, postType, post.Keyword)
}

func (b *Bot) findImage(ctx context.Context, requestID, keyword string) string {
	if b.images == nil {
		return ""
	}
	urls, err := b.images.Search(ctx, keyword, 1)
	if err != nil {
		log.Printf("[%s] Image search failed for %q: %v", requestID, keyword, err)
		return ""
	}
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

// generateFromLink turns an article link into a post: the readable
// text is clipped and fed to the generator, the article's own lead
// image is preferred over a stock photo.
func (b *Bot) generateFromLink(chatID, userID int64, link string) {
	requestID := uuid.NewString()
	log.Printf("[%s] Generating post from link for user %d: %s", requestID, userID, link)
	b.sendMessage(chatID, b.localizer.Get("generating_from_link"))

	extracted, err := article.Extract(link)
	if err != nil {
		log.Printf("[%s] Article extraction failed: %v", requestID, err)
		b.sendMessage(chatID, b.localizer.Get("article_failed"))
		return
	}

	topic := extracted.Title
	if topic == "" {
		topic = link
	}
	prompt := topic
	if extracted.Text != "" {
		prompt = topic + "\n\n" + article.Clip(extracted.Text, article.DefaultLimit)
	}

	ctx, cancel := context.WithTimeout(context.Background(), generationTimeout)
	defer cancel()

	post, err := b.generator.GenerateWithKeyword(ctx, prompt)
	if err != nil {
		log.Printf("[%s] Generation failed: %v", requestID, err)
		b.sendMessage(chatID, b.localizer.Get("generation_failed"))
		return
	}

	imageURL := extracted.ImageURL
	if imageURL == "" {
		imageURL = b.findImage(ctx, requestID, post.Keyword)
	}
	postType := stats.PostTypeText
	if imageURL != "" {
		postType = stats.PostTypeImages
	}

	b.sendPost(chatID, post.Text, imageURL, nil)
	b.stats.RecordPost(userID, topic, postType)
	b.auditGeneration(userID, requestID, topic, postType)
	log.Printf("[%s] Article post delivered, type: %s, source: %s", requestID, postType, link)
}

func (b *Bot) runKeywordLookup(chatID int64, keyword string) {
	b.sendMessage(chatID, b.localizer.Getf("seo_progress", keyword))

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	data, err := b.seo.Lookup(ctx, keyword)
	if err != nil {
		log.Printf("Keyword lookup failed for %q: %v", keyword, err)
		b.sendMessage(chatID, b.localizer.Get("seo_failed"))
		return
	}
	b.sendHTML(chatID, b.formatKeywordReport(data), b.relatedKeywordsKeyboard(data.Related))
}
