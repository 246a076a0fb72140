package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage and profile
	DBPath      string `long:"db-path" env:"DB_PATH" default:"./news.db" description:"SQLite database file path"`
	ProfilePath string `long:"profile" env:"PROFILE_PATH" default:"./profile.yml" description:"Pipeline profile (categories, search topics, feeds)"`

	// Upstream API
	APIKey         string  `long:"news-api-key" env:"GNEWS_API_KEY" description:"News API key"`
	APIBaseURL     string  `long:"news-api-url" env:"NEWS_API_URL" default:"https://gnews.io/api/v4" description:"News API base URL"`
	RateLimit      float64 `long:"rate-limit" env:"API_RATE_LIMIT" default:"1.0" description:"Minimum seconds between upstream requests"`
	MaxRetries     int     `long:"max-retries" env:"MAX_RETRIES" default:"3" description:"Retries per upstream request"`
	RetryDelay     float64 `long:"retry-delay" env:"RETRY_DELAY" default:"2.0" description:"Base retry delay in seconds"`
	RequestTimeout int     `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"30" description:"Upstream request timeout in seconds"`

	// Fetch limits
	MaxArticlesPerRun      int `long:"max-articles-per-run" env:"MAX_ARTICLES_PER_RUN" default:"500" description:"Cap on articles per fetch run"`
	MaxArticlesPerCategory int `long:"max-articles-per-category" env:"MAX_ARTICLES_PER_CATEGORY" default:"50" description:"Cap on articles per category request"`
	MaxArticlesPerTopic    int `long:"max-articles-per-topic" env:"MAX_ARTICLES_PER_TOPIC" default:"30" description:"Cap on articles per topic search"`

	// Processing
	BatchSize           int     `long:"batch-size" env:"SENTIMENT_BATCH_SIZE" default:"100" description:"Articles per processing batch"`
	PositiveThreshold   float64 `long:"positive-threshold" env:"POSITIVE_THRESHOLD" default:"0.1" description:"Polarity above which sentiment is positive"`
	NegativeThreshold   float64 `long:"negative-threshold" env:"NEGATIVE_THRESHOLD" default:"-0.1" description:"Polarity below which sentiment is negative"`
	ConfidenceThreshold float64 `long:"confidence-threshold" env:"CONFIDENCE_THRESHOLD" default:"0.5" description:"Sentiment confidence below which the label is neutral"`
	MaxKeywords         int     `long:"max-keywords" env:"MAX_KEYWORDS" default:"10" description:"Keywords kept per article"`
	DetectLanguage      bool    `long:"detect-language" env:"DETECT_LANGUAGE" description:"Detect article language"`
	TrendWindowHours    int     `long:"trend-window" env:"TREND_WINDOW_HOURS" default:"24" description:"Trending topic window in hours"`

	// Quality
	MinTitleLength       int     `long:"min-title-length" env:"MIN_TITLE_LENGTH" default:"10" description:"Minimum title length"`
	MaxTitleLength       int     `long:"max-title-length" env:"MAX_TITLE_LENGTH" default:"200" description:"Maximum title length"`
	MinDescriptionLength int     `long:"min-description-length" env:"MIN_DESCRIPTION_LENGTH" default:"20" description:"Minimum description length"`
	MaxDescriptionLength int     `long:"max-description-length" env:"MAX_DESCRIPTION_LENGTH" default:"500" description:"Maximum description length"`
	DuplicateThreshold   float64 `long:"duplicate-threshold" env:"DUPLICATE_THRESHOLD" default:"0.8" description:"Title/description overlap ratio penalised as duplicate text"`

	// Runtime
	Realtime              bool `long:"realtime" env:"REALTIME_ENABLED" description:"Run the periodic fetch loop"`
	RealtimeInterval      int  `long:"realtime-interval" env:"REALTIME_INTERVAL" default:"15" description:"Fetch loop interval in minutes"`
	MaxConcurrentRequests int  `long:"max-concurrent-requests" env:"MAX_CONCURRENT_REQUESTS" default:"5" description:"Concurrent upstream requests"`
	MaxWorkers            int  `long:"max-workers" env:"MAX_WORKERS" default:"4" description:"Worker pool size"`
	RetentionDays         int  `long:"retention-days" env:"RETENTION_DAYS" default:"30" description:"Days of data kept by cleanup"`
	CleanupInterval       int  `long:"cleanup-interval" env:"CLEANUP_INTERVAL" default:"24" description:"Cleanup interval in hours"`
	Once                  bool `long:"once" env:"ONCE" description:"Run one fetch/process/store pass and exit"`

	// HTTP surface
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"NewsIntelligence/1.0 (Professional Data Pipeline)" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return load(nil)
}

// load parses args (os.Args when nil) and environment into the global config.
func load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:                 raw.DBPath,
		ProfilePath:            raw.ProfilePath,
		APIKey:                 raw.APIKey,
		APIBaseURL:             raw.APIBaseURL,
		RateLimit:              seconds(raw.RateLimit),
		MaxRetries:             raw.MaxRetries,
		RetryDelay:             seconds(raw.RetryDelay),
		RequestTimeout:         time.Duration(raw.RequestTimeout) * time.Second,
		MaxArticlesPerRun:      raw.MaxArticlesPerRun,
		MaxArticlesPerCategory: raw.MaxArticlesPerCategory,
		MaxArticlesPerTopic:    raw.MaxArticlesPerTopic,
		BatchSize:              raw.BatchSize,
		PositiveThreshold:      raw.PositiveThreshold,
		NegativeThreshold:      raw.NegativeThreshold,
		ConfidenceThreshold:    raw.ConfidenceThreshold,
		MaxKeywords:            raw.MaxKeywords,
		DetectLanguage:         raw.DetectLanguage,
		TrendWindowHours:       raw.TrendWindowHours,
		MinTitleLength:         raw.MinTitleLength,
		MaxTitleLength:         raw.MaxTitleLength,
		MinDescriptionLength:   raw.MinDescriptionLength,
		MaxDescriptionLength:   raw.MaxDescriptionLength,
		DuplicateThreshold:     raw.DuplicateThreshold,
		Realtime:               raw.Realtime,
		RealtimeInterval:       time.Duration(raw.RealtimeInterval) * time.Minute,
		MaxConcurrentRequests:  raw.MaxConcurrentRequests,
		MaxWorkers:             raw.MaxWorkers,
		RetentionDays:          raw.RetentionDays,
		CleanupInterval:        time.Duration(raw.CleanupInterval) * time.Hour,
		Once:                   raw.Once,
		Port:                   raw.Port,
		APIAccessKey:           raw.APIAccessKey,
		UserAgent:              raw.UserAgent,
		Timezone:               raw.Timezone,
		Debug:                  raw.Debug,
		Version:                GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func validate(cfg *Cfg) error {
	positiveFields := map[string]int{
		"max workers":               cfg.MaxWorkers,
		"max concurrent requests":   cfg.MaxConcurrentRequests,
		"batch size":                cfg.BatchSize,
		"max articles per run":      cfg.MaxArticlesPerRun,
		"max articles per category": cfg.MaxArticlesPerCategory,
		"max articles per topic":    cfg.MaxArticlesPerTopic,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	nonNegativeFields := map[string]float64{
		"rate limit":     cfg.RateLimit.Seconds(),
		"max retries":    float64(cfg.MaxRetries),
		"retry delay":    cfg.RetryDelay.Seconds(),
		"max keywords":   float64(cfg.MaxKeywords),
		"retention days": float64(cfg.RetentionDays),
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if cfg.MinTitleLength > cfg.MaxTitleLength {
		return fmt.Errorf("min title length %d exceeds max title length %d", cfg.MinTitleLength, cfg.MaxTitleLength)
	}
	if cfg.NegativeThreshold > cfg.PositiveThreshold {
		return fmt.Errorf("negative threshold %.2f exceeds positive threshold %.2f", cfg.NegativeThreshold, cfg.PositiveThreshold)
	}

	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
