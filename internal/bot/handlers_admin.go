package bot

import (
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleStatsRequest(message *tgbotapi.Message) {
	if !b.isAdmin(message.From.ID) {
		b.sendMessage(message.Chat.ID, b.localizer.Get("permission_denied"))
		return
	}
	b.sendHTML(message.Chat.ID, b.stats.Report(), nil)
}

func (b *Bot) handleStatusCommand(message *tgbotapi.Message) {
	uptime := time.Since(b.startedAt).Round(time.Second)
	autopost := b.localizer.Get("autopost_off")
	if b.cfg.AutopostEnabled() && b.cfg.ChannelID != "" {
		autopost = b.localizer.Getf("autopost_on", b.cfg.AutopostInterval())
	}
	text := b.localizer.Getf("status_message", uptime, autopost, b.stats.TotalPosts())
	b.sendHTML(message.Chat.ID, text, nil)
}

func (b *Bot) handleRoleCommand(message *tgbotapi.Message) {
	parts := strings.Fields(message.CommandArguments())
	if len(parts) != 2 {
		b.sendMessage(message.Chat.ID, b.localizer.Get("role_usage"))
		return
	}
	targetID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		b.sendMessage(message.Chat.ID, b.localizer.Get("role_usage"))
		return
	}
	role := strings.ToLower(parts[1])
	if err := b.users.ChangeRole(targetID, role, message.From.ID); err != nil {
		log.Printf("Failed to change role for user %d: %v", targetID, err)
		b.sendMessage(message.Chat.ID, b.localizer.Get("role_change_failed"))
		return
	}
	b.sendMessage(message.Chat.ID, b.localizer.Getf("role_changed", targetID, role))
}

func (b *Bot) handleBanCommand(message *tgbotapi.Message, ban bool) {
	usageKey, successKey := "ban_usage", "user_banned"
	if !ban {
		usageKey, successKey = "unban_usage", "user_unbanned"
	}
	parts := strings.Fields(message.CommandArguments())
	if len(parts) != 1 {
		b.sendMessage(message.Chat.ID, b.localizer.Get(usageKey))
		return
	}
	targetID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		b.sendMessage(message.Chat.ID, b.localizer.Get(usageKey))
		return
	}
	adminID := message.From.ID
	var actionErr error
	if ban {
		actionErr = b.users.Ban(targetID, adminID)
	} else {
		actionErr = b.users.Unban(targetID, adminID)
	}
	if actionErr != nil {
		log.Printf("Failed to update status for user %d: %v", targetID, actionErr)
		b.sendMessage(message.Chat.ID, b.localizer.Get("user_not_found"))
		return
	}
	b.sendMessage(message.Chat.ID, b.localizer.Getf(successKey, targetID))
}

func (b *Bot) handleUserCommand(message *tgbotapi.Message) {
	parts := strings.Fields(message.CommandArguments())
	if len(parts) != 1 {
		b.sendMessage(message.Chat.ID, b.localizer.Get("user_usage"))
		return
	}
	targetID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		b.sendMessage(message.Chat.ID, b.localizer.Get("user_usage"))
		return
	}
	info, err := b.users.Info(targetID)
	if err != nil {
		b.sendMessage(message.Chat.ID, b.localizer.Get("user_not_found"))
		return
	}
	text := b.localizer.Getf("user_info", info.ID, htmlEscaper.Replace(info.Name), info.Role, info.Status, info.CreatedAt.Format("02.01.2006"))
	b.sendHTML(message.Chat.ID, text, nil)
}
