package bot

import (
	"log"
	"net/url"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func (b *Bot) isAdmin(userID int64) bool {
	if b.cfg.IsAdminID(userID) {
		return true
	}
	return b.users.IsAdmin(userID)
}

func (b *Bot) setUserState(userID int64, state *ConversationState) {
	b.stateMutex.Lock()
	defer b.stateMutex.Unlock()
	b.userStates[userID] = state
}

func (b *Bot) clearUserState(userID int64) {
	b.stateMutex.Lock()
	defer b.stateMutex.Unlock()
	delete(b.userStates, userID)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (b *Bot) sendHTML(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

// sendPost delivers generated content, as a photo with a caption when
// imageURL is set and as plain text otherwise. A failed photo send
// falls back to text so the content is not lost.
func (b *Bot) sendPost(chatID int64, text, imageURL string, markup *tgbotapi.InlineKeyboardMarkup) {
	if imageURL != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(imageURL))
		photo.Caption = clipCaption(text)
		if markup != nil {
			photo.ReplyMarkup = markup
		}
		_, err := b.api.Send(photo)
		if err == nil {
			return
		}
		log.Printf("Failed to send photo message: %v. Trying to send as text.", err)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send post: %v", err)
	}
}

func clipCaption(text string) string {
	if utf8.RuneCountInString(text) <= captionLimit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:captionLimit-3])) + "..."
}

// callbackData joins an action with its payload and trims the result
// to the 64 byte limit Telegram enforces on callback data, cutting on
// a rune boundary.
func callbackData(action, payload string) string {
	data := action + ":" + payload
	for len(data) > callbackDataLimit {
		_, size := utf8.DecodeLastRuneInString(data)
		data = data[:len(data)-size]
	}
	return data
}

func isURL(text string) bool {
	if len(strings.Fields(text)) != 1 {
		return false
	}
	if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
		return false
	}
	parsed, err := url.Parse(text)
	return err == nil && parsed.Host != ""
}

func displayName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	if user.UserName != "" {
		return user.UserName
	}
	name := user.FirstName
	if user.LastName != "" {
		name += " " + user.LastName
	}
	return name
}
