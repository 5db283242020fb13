package bot

import (
	"strings"
	"testing"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestClipCaptionKeepsShortText(t *testing.T) {
	assert.Equal(t, "короткий текст", clipCaption("короткий текст"))
}

func TestClipCaptionTrimsLongText(t *testing.T) {
	long := strings.Repeat("ж", captionLimit+100)

	clipped := clipCaption(long)

	assert.LessOrEqual(t, utf8.RuneCountInString(clipped), captionLimit)
	assert.True(t, strings.HasSuffix(clipped, "..."))
}

func TestCallbackDataFitsLimit(t *testing.T) {
	data := callbackData(callbackRegenerate, "питание")

	assert.Equal(t, "regen:питание", data)
}

func TestCallbackDataTruncatesOnRuneBoundary(t *testing.T) {
	topic := strings.Repeat("ы", 100)

	data := callbackData(callbackRegenerate, topic)

	assert.LessOrEqual(t, len(data), callbackDataLimit)
	assert.True(t, utf8.ValidString(data))
	assert.True(t, strings.HasPrefix(data, "regen:"))
}

func TestIsURL(t *testing.T) {
	assert.True(t, isURL("https://example.com/article"))
	assert.True(t, isURL("http://example.com"))
	assert.False(t, isURL("фитнес"))
	assert.False(t, isURL("смотри https://example.com"))
	assert.False(t, isURL("https://"))
	assert.False(t, isURL("ftp://example.com/file"))
}

func TestDisplayNamePrefersUsername(t *testing.T) {
	user := &tgbotapi.User{UserName: "alice", FirstName: "Алиса", LastName: "Иванова"}

	assert.Equal(t, "alice", displayName(user))
}

func TestDisplayNameFallsBackToFullName(t *testing.T) {
	user := &tgbotapi.User{FirstName: "Алиса", LastName: "Иванова"}

	assert.Equal(t, "Алиса Иванова", displayName(user))
	assert.Equal(t, "Алиса", displayName(&tgbotapi.User{FirstName: "Алиса"}))
	assert.Equal(t, "", displayName(nil))
}
