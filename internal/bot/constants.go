package bot

import "time"

const (
	StateAwaitingTopic      = "awaiting_topic"
	StateAwaitingImageTopic = "awaiting_image_topic"
	StateAwaitingKeyword    = "awaiting_keyword"

	callbackRegenerate      = "regen"
	callbackRegenerateImage = "regen_img"
	callbackKeyword         = "seo"

	autopostJobTag     = "autopost_job"
	cacheCleanupJobTag = "cache_cleanup_job"

	conflictStatusCode = 409

	captionLimit      = 1024
	callbackDataLimit = 64

	generationTimeout    = 2 * time.Minute
	lookupTimeout        = 45 * time.Second
	transientRetryDelay  = 3 * time.Second
	cacheCleanupInterval = 24 * time.Hour
)
