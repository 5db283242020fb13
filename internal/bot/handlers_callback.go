package bot

import (
	"log"
	"strings"

	"contentbot/internal/users"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	callbackAns := tgbotapi.NewCallback(callback.ID, "")
	defer func() {
		if _, err := b.api.Request(callbackAns); err != nil {
			log.Printf("Failed to answer callback query: %v", err)
		}
	}()
	if callback.Message == nil {
		return
	}
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID
	if err := b.users.Register(userID, displayName(callback.From), users.RoleUser); err != nil {
		log.Printf("Could not register user %d: %v", userID, err)
	}
	if b.users.IsBanned(userID) {
		callbackAns.Text = b.localizer.Get("banned_message")
		return
	}
	parts := strings.SplitN(callback.Data, ":", 2)
	action := parts[0]
	var data string
	if len(parts) > 1 {
		data = parts[1]
	}
	if data == "" {
		return
	}
	switch action {
	case callbackRegenerate:
		b.generatePost(chatID, userID, data, false)
	case callbackRegenerateImage:
		b.generatePost(chatID, userID, data, true)
	case callbackKeyword:
		b.runKeywordLookup(chatID, data)
	}
}
