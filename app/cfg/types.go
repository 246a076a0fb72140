package cfg

import "time"

type Cfg struct {
	// Storage and profile
	DBPath      string
	ProfilePath string

	// Upstream API
	APIKey         string
	APIBaseURL     string
	RateLimit      time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	RequestTimeout time.Duration

	// Fetch limits
	MaxArticlesPerRun      int
	MaxArticlesPerCategory int
	MaxArticlesPerTopic    int

	// Processing
	BatchSize           int
	PositiveThreshold   float64
	NegativeThreshold   float64
	ConfidenceThreshold float64
	MaxKeywords         int
	DetectLanguage      bool
	TrendWindowHours    int

	// Quality
	MinTitleLength       int
	MaxTitleLength       int
	MinDescriptionLength int
	MaxDescriptionLength int
	DuplicateThreshold   float64

	// Runtime
	Realtime              bool
	RealtimeInterval      time.Duration
	MaxConcurrentRequests int
	MaxWorkers            int
	RetentionDays         int
	CleanupInterval       time.Duration
	Once                  bool

	// HTTP surface
	Port         string
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
