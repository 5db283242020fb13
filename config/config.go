package config

import (
	"log"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	PerplexityAPIKey string `envconfig:"PERPLEXITY_API_KEY" required:"true"`
	GeminiAPIKey     string `envconfig:"GEMINI_API_KEY"`
	GeminiModel      string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`

	ChannelID   string        `envconfig:"CHANNEL_ID"`
	APIModel    string        `envconfig:"API_MODEL"   default:"sonar"`
	APITimeout  time.Duration `envconfig:"API_TIMEOUT" default:"30s"`
	MaxTokens   int           `envconfig:"MAX_TOKENS"  default:"800"`
	Temperature float64       `envconfig:"TEMPERATURE" default:"0.7"`

	AutopostIntervalHours int      `envconfig:"AUTOPOST_INTERVAL_HOURS" default:"6"`
	AutopostTopics        []string `envconfig:"AUTOPOST_TOPICS" default:"SMM Москва,фитнес,питание,мотивация,бизнес"`
	TrendFeeds            []string `envconfig:"TREND_FEEDS"`

	AdminUserIDs []int64 `envconfig:"ADMIN_USER_IDS"`

	PexelsAPIKey  string `envconfig:"PEXELS_API_KEY"`
	PixabayAPIKey string `envconfig:"PIXABAY_API_KEY"`

	DatabasePath string `envconfig:"DATABASE_PATH"`
	StatsPath    string `envconfig:"STATS_PATH"`

	HealthAddr  string        `envconfig:"HEALTH_ADDR"`
	LockName    string        `envconfig:"LOCK_NAME"    default:"contentbot"`
	PollTimeout time.Duration `envconfig:"POLL_TIMEOUT" default:"60s"`
	BotLanguage string        `envconfig:"BOT_LANGUAGE" default:"ru"`
}

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	var cfg Config
	err = envconfig.Process("", &cfg)
	if err != nil {
		log.Fatalf("Failed to process configuration: %v", err)
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath, err = xdg.DataFile("contentbot/contentbot.db")
		if err != nil {
			log.Fatalf("Failed to resolve database path: %v", err)
		}
	}
	if cfg.StatsPath == "" {
		cfg.StatsPath, err = xdg.DataFile("contentbot/stats.json")
		if err != nil {
			log.Fatalf("Failed to resolve stats path: %v", err)
		}
	}

	return cfg
}

// AutopostEnabled reports whether scheduled channel posting is on.
// AUTOPOST_INTERVAL_HOURS=0 turns it off.
func (c Config) AutopostEnabled() bool {
	return c.AutopostIntervalHours > 0
}

func (c Config) AutopostInterval() time.Duration {
	return time.Duration(c.AutopostIntervalHours) * time.Hour
}

func (c Config) IsAdminID(id int64) bool {
	for _, admin := range c.AdminUserIDs {
		if admin == id {
			return true
		}
	}
	return false
}
