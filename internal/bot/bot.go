package bot

import (
	"contentbot/config"
	"contentbot/internal/ai"
	"contentbot/internal/images"
	"contentbot/internal/localization"
	"contentbot/internal/polling"
	"contentbot/internal/scheduler"
	"contentbot/internal/seo"
	"contentbot/internal/stats"
	"contentbot/internal/storage"
	"contentbot/internal/trends"
	"contentbot/internal/users"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type ConversationState struct {
	Step string
}

// Deps collects everything the bot needs to serve updates. Images and
// Trends may be nil when the matching API keys or feeds are not
// configured; the handlers degrade to text-only behavior.
type Deps struct {
	Config    *config.Config
	Localizer *localization.Localizer
	Generator ai.Generator
	Images    images.Fetcher
	SEO       *seo.Client
	Trends    *trends.Source
	Users     *users.Manager
	Stats     *stats.Tracker
	Storage   *storage.Storage
	Scheduler *scheduler.Scheduler
}

type Bot struct {
	api        *tgbotapi.BotAPI
	cfg        *config.Config
	localizer  *localization.Localizer
	generator  ai.Generator
	images     images.Fetcher
	seo        *seo.Client
	trends     *trends.Source
	users      *users.Manager
	stats      *stats.Tracker
	storage    *storage.Storage
	scheduler  *scheduler.Scheduler
	startedAt  time.Time
	offset     int
	userStates map[int64]*ConversationState
	stateMutex sync.Mutex
}

func NewBot(deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(deps.Config.TelegramBotToken)
	if err != nil {
		return nil, err
	}
	api.Debug = false
	log.Printf("Authorized on account %s", api.Self.UserName)
	return &Bot{
		api:        api,
		cfg:        deps.Config,
		localizer:  deps.Localizer,
		generator:  deps.Generator,
		images:     deps.Images,
		seo:        deps.SEO,
		trends:     deps.Trends,
		users:      deps.Users,
		stats:      deps.Stats,
		storage:    deps.Storage,
		scheduler:  deps.Scheduler,
		startedAt:  time.Now(),
		userStates: make(map[int64]*ConversationState),
	}, nil
}

// ScheduleJobs registers the recurring jobs on the shared scheduler.
// The scheduler itself is started by the caller.
func (b *Bot) ScheduleJobs() {
	if b.cfg.AutopostEnabled() && b.cfg.ChannelID != "" {
		interval := b.cfg.AutopostInterval()
		log.Printf("Scheduling autopost job. Interval: %s", interval)
		b.scheduler.AddJob(autopostJobTag, interval, b.autopostJob)
	} else {
		log.Println("Autopost is disabled.")
	}
	b.scheduler.AddJob(cacheCleanupJobTag, cacheCleanupInterval, b.cacheCleanupJob)
}

// Poll runs one long-polling session against the Telegram API. It
// returns nil when ctx is cancelled, wraps a 409 response in
// polling.ErrConflict so the caller can retry with backoff, and keeps
// going through transient transport errors on its own.
func (b *Bot) Poll(ctx context.Context) error {
	u := tgbotapi.NewUpdate(b.offset)
	u.Timeout = int(b.cfg.PollTimeout / time.Second)
	for {
		select {
		case <-ctx.Done():
			log.Println("Polling stopped.")
			return nil
		default:
		}
		updates, err := b.api.GetUpdates(u)
		if err != nil {
			var apiErr *tgbotapi.Error
			if errors.As(err, &apiErr) {
				if apiErr.Code == conflictStatusCode {
					return fmt.Errorf("getUpdates rejected with 409: %w", polling.ErrConflict)
				}
				return fmt.Errorf("getUpdates failed: %w", err)
			}
			log.Printf("Transient error while fetching updates, retrying: %v", err)
			if waitErr := polling.WaitContext(ctx, transientRetryDelay); waitErr != nil {
				log.Println("Polling stopped.")
				return nil
			}
			continue
		}
		for _, update := range updates {
			if update.UpdateID >= u.Offset {
				u.Offset = update.UpdateID + 1
				b.offset = u.Offset
			}
			go b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallbackQuery(update.CallbackQuery)
		return
	}
	if update.Message == nil || update.Message.From == nil {
		return
	}
	message := update.Message
	userID := message.From.ID
	if err := b.users.Register(userID, displayName(message.From), users.RoleUser); err != nil {
		log.Printf("Could not register user %d: %v", userID, err)
	}
	if b.users.IsBanned(userID) {
		b.sendMessage(message.Chat.ID, b.localizer.Get("banned_message"))
		return
	}
	if message.IsCommand() {
		b.handleCommand(message)
		return
	}
	b.stateMutex.Lock()
	state, ok := b.userStates[userID]
	b.stateMutex.Unlock()
	if ok {
		b.handleStatefulMessage(message, state)
		return
	}
	b.handleMenuMessage(message)
}
