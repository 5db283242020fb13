package bot

import (
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	cmd := message.Command()
	protectedCommands := map[string]bool{"stats": true, "role": true, "ban": true, "unban": true, "user": true}
	if protectedCommands[cmd] && !b.isAdmin(message.From.ID) {
		b.sendMessage(chatID, b.localizer.Get("permission_denied"))
		return
	}
	switch cmd {
	case "start":
		b.handleStartCommand(message)
	case "help":
		b.sendHTML(chatID, b.localizer.Get("help_message"), nil)
	case "generate":
		b.handleGenerateCommand(message)
	case "seo":
		b.handleSEOCommand(message)
	case "stats":
		b.handleStatsRequest(message)
	case "status":
		b.handleStatusCommand(message)
	case "role":
		b.handleRoleCommand(message)
	case "ban":
		b.handleBanCommand(message, true)
	case "unban":
		b.handleBanCommand(message, false)
	case "user":
		b.handleUserCommand(message)
	case "cancel":
		b.handleCancelCommand(message)
	default:
		b.sendMessage(chatID, b.localizer.Get("unknown_command"))
	}
}

func (b *Bot) handleStartCommand(message *tgbotapi.Message) {
	b.clearUserState(message.From.ID)
	msg := tgbotapi.NewMessage(message.Chat.ID, b.localizer.Getf("welcome_message", displayName(message.From)))
	msg.ReplyMarkup = b.mainKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send welcome message: %v", err)
	}
}

func (b *Bot) handleGenerateCommand(message *tgbotapi.Message) {
	topic := strings.TrimSpace(message.CommandArguments())
	if topic == "" {
		b.setUserState(message.From.ID, &ConversationState{Step: StateAwaitingTopic})
		b.sendMessage(message.Chat.ID, b.localizer.Get("ask_topic"))
		return
	}
	if isURL(topic) {
		b.generateFromLink(message.Chat.ID, message.From.ID, topic)
		return
	}
	b.generatePost(message.Chat.ID, message.From.ID, topic, false)
}

func (b *Bot) handleSEOCommand(message *tgbotapi.Message) {
	keyword := strings.TrimSpace(message.CommandArguments())
	if keyword == "" {
		b.setUserState(message.From.ID, &ConversationState{Step: StateAwaitingKeyword})
		b.sendMessage(message.Chat.ID, b.localizer.Get("ask_seo_keyword"))
		return
	}
	b.runKeywordLookup(message.Chat.ID, keyword)
}

func (b *Bot) handleCancelCommand(message *tgbotapi.Message) {
	userID := message.From.ID
	b.stateMutex.Lock()
	_, inState := b.userStates[userID]
	if inState {
		delete(b.userStates, userID)
	}
	b.stateMutex.Unlock()
	if inState {
		b.sendMessage(message.Chat.ID, b.localizer.Get("input_cancelled"))
	}
}
