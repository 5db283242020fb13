package bot

import (
	"fmt"
	"strings"

	"contentbot/internal/seo"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(b.localizer.Get("btn_generate")),
			tgbotapi.NewKeyboardButton(b.localizer.Get("btn_generate_image")),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(b.localizer.Get("btn_status")),
			tgbotapi.NewKeyboardButton(b.localizer.Get("btn_stats")),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(b.localizer.Get("btn_help")),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func (b *Bot) regenerateKeyboard(topic string, withImage bool) *tgbotapi.InlineKeyboardMarkup {
	action := callbackRegenerate
	if withImage {
		action = callbackRegenerateImage
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(b.localizer.Get("btn_regenerate"), callbackData(action, topic))))
	return &keyboard
}

func (b *Bot) relatedKeywordsKeyboard(related []seo.Related) *tgbotapi.InlineKeyboardMarkup {
	if len(related) == 0 {
		return nil
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, rel := range related {
		label := rel.Keyword
		if rel.Volume != "" {
			label = fmt.Sprintf("%s (%s)", rel.Keyword, rel.Volume)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, callbackData(callbackKeyword, rel.Keyword))))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &keyboard
}

func (b *Bot) formatKeywordReport(data *seo.KeywordData) string {
	var builder strings.Builder
	builder.WriteString(b.localizer.Getf("seo_report_title", htmlEscaper.Replace(data.Keyword)))
	builder.WriteString("\n")
	builder.WriteString(b.localizer.Getf("seo_volume_line", data.Volume))
	if len(data.Related) > 0 {
		builder.WriteString("\n\n")
		builder.WriteString(b.localizer.Get("seo_related_title"))
		for _, rel := range data.Related {
			if rel.Volume != "" {
				builder.WriteString(fmt.Sprintf("\n• %s (%s)", htmlEscaper.Replace(rel.Keyword), rel.Volume))
			} else {
				builder.WriteString(fmt.Sprintf("\n• %s", htmlEscaper.Replace(rel.Keyword)))
			}
		}
	}
	return builder.String()
}
