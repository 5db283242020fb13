package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleStatefulMessage(message *tgbotapi.Message, state *ConversationState) {
	userID := message.From.ID
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}
	b.clearUserState(userID)
	switch state.Step {
	case StateAwaitingTopic:
		if isURL(text) {
			b.generateFromLink(chatID, userID, text)
			return
		}
		b.generatePost(chatID, userID, text, false)
	case StateAwaitingImageTopic:
		b.generatePost(chatID, userID, text, true)
	case StateAwaitingKeyword:
		b.runKeywordLookup(chatID, text)
	}
}

// handleMenuMessage routes plain text that is not part of a
// conversation: the persistent keyboard buttons and bare article
// links.
func (b *Bot) handleMenuMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)
	switch text {
	case b.localizer.Get("btn_generate"):
		b.setUserState(message.From.ID, &ConversationState{Step: StateAwaitingTopic})
		b.sendMessage(chatID, b.localizer.Get("ask_topic"))
	case b.localizer.Get("btn_generate_image"):
		b.setUserState(message.From.ID, &ConversationState{Step: StateAwaitingImageTopic})
		b.sendMessage(chatID, b.localizer.Get("ask_image_topic"))
	case b.localizer.Get("btn_status"):
		b.handleStatusCommand(message)
	case b.localizer.Get("btn_stats"):
		b.handleStatsRequest(message)
	case b.localizer.Get("btn_help"):
		b.sendHTML(chatID, b.localizer.Get("help_message"), nil)
	default:
		if isURL(text) {
			b.generateFromLink(chatID, message.From.ID, text)
			return
		}
		if text != "" {
			b.sendMessage(chatID, b.localizer.Get("unknown_input"))
		}
	}
}
