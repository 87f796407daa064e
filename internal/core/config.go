package core

import (
	"time"
)

type Config struct {
	Telegram TelegramConfig
	Spotify  SpotifyConfig
	YouTube  YouTubeConfig
	Server   ServerConfig
	Log      LogConfig
	App      AppConfig
}

type TelegramConfig struct {
	BotToken string
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
}

type YouTubeConfig struct {
	APIKey string
	Region string
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	Language            string
	MaxResults          int
	MaxInlineResults    int
	CacheSize           int
	FloodLimitPerMinute int
	ConvertTimeoutSecs  int
}

const (
	// DefaultMaxResults caps how many candidate matches a conversion keeps.
	DefaultMaxResults = 10
	// DefaultMaxInlineResults caps how many cards an inline query shows.
	DefaultMaxInlineResults = 3
	// DefaultCacheSize bounds the conversion cache.
	DefaultCacheSize = 10000
	// DefaultFloodLimitPerMinute is the per-user message budget.
	DefaultFloodLimitPerMinute = 6
	// DefaultConvertTimeoutSecs bounds a single conversion end to end.
	DefaultConvertTimeoutSecs = 15
)

func DefaultConfig() *Config {
	return &Config{
		YouTube: YouTubeConfig{
			Region: "US",
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		App: AppConfig{
			Language:            "en",
			MaxResults:          DefaultMaxResults,
			MaxInlineResults:    DefaultMaxInlineResults,
			CacheSize:           DefaultCacheSize,
			FloodLimitPerMinute: DefaultFloodLimitPerMinute,
			ConvertTimeoutSecs:  DefaultConvertTimeoutSecs,
		},
	}
}
