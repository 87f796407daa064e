// Package main provides the tunelink CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"tunelink/internal/chat/telegram"
	"tunelink/internal/core"
	"tunelink/internal/flood"
	httpserver "tunelink/internal/http"
	"tunelink/internal/i18n"
	"tunelink/internal/spotify"
	"tunelink/internal/store"
	"tunelink/internal/youtube"
	"tunelink/pkg/services"
)

const (
	defaultServerHost = "0.0.0.0"
	envPrefix         = "TUNELINK"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tunelink",
	Short: "tunelink - Spotify ↔ YouTube Music link converter bot",
	Long: `tunelink is a Telegram bot that converts music track links between
Spotify and YouTube Music. Send it a link from either service and it
replies with the matching track on the other one; it also answers inline
queries with the top candidate matches.`,
	RunE: runTunelink,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("telegram-bot-token", "", "Telegram bot token")
	rootCmd.PersistentFlags().String("spotify-client-id", "", "Spotify client ID")
	rootCmd.PersistentFlags().String("spotify-client-secret", "", "Spotify client secret")
	rootCmd.PersistentFlags().String("youtube-api-key", "", "YouTube Data API key")
	rootCmd.PersistentFlags().String("youtube-region", "US", "Region code for YouTube searches")
	rootCmd.PersistentFlags().String("server-host", defaultServerHost, "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", 8080, "HTTP server port")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	rootCmd.PersistentFlags().String("language", i18n.DefaultLanguage, fmt.Sprintf("Bot language (%s)", supportedLangs))
	rootCmd.PersistentFlags().Int("max-results", core.DefaultMaxResults, "Maximum search candidates per conversion")
	rootCmd.PersistentFlags().Int("max-inline-results", core.DefaultMaxInlineResults, "Maximum inline query result cards")
	rootCmd.PersistentFlags().Int("cache-size", core.DefaultCacheSize, "Conversion cache capacity")
	rootCmd.PersistentFlags().Int("flood-limit-per-minute", core.DefaultFloodLimitPerMinute, "Maximum updates per user per minute")
	rootCmd.PersistentFlags().Int("convert-timeout-secs", core.DefaultConvertTimeoutSecs, "Per-conversion timeout in seconds")
	rootCmd.PersistentFlags().Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	// Load .env file explicitly using gotenv
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		// Don't exit if .env file doesn't exist, just warn
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	cfg.Telegram.BotToken = viper.GetString("telegram-bot-token")

	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")

	cfg.YouTube.APIKey = viper.GetString("youtube-api-key")
	if region := viper.GetString("youtube-region"); region != "" {
		cfg.YouTube.Region = region
	}

	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Log.Level = viper.GetString("log-level")

	configureApp(cfg)

	return cfg
}

func configureApp(cfg *core.Config) {
	// Language configuration with validation
	cfg.App.Language = viper.GetString("language")
	if cfg.App.Language == "" {
		cfg.App.Language = i18n.DefaultLanguage
	}

	supported := false
	for _, lang := range i18n.GetSupportedLanguages() {
		if cfg.App.Language == lang {
			supported = true
			break
		}
	}
	if !supported {
		fmt.Fprintf(os.Stderr, "Warning: Unsupported language '%s', falling back to '%s'. Supported languages: %s\n",
			cfg.App.Language, i18n.DefaultLanguage, strings.Join(i18n.GetSupportedLanguages(), ", "))
		cfg.App.Language = i18n.DefaultLanguage
	}

	cfg.App.MaxResults = viper.GetInt("max-results")
	if cfg.App.MaxResults <= 0 {
		cfg.App.MaxResults = core.DefaultMaxResults
	}

	cfg.App.MaxInlineResults = viper.GetInt("max-inline-results")
	if cfg.App.MaxInlineResults <= 0 {
		cfg.App.MaxInlineResults = core.DefaultMaxInlineResults
	}

	cfg.App.CacheSize = viper.GetInt("cache-size")
	if cfg.App.CacheSize <= 0 {
		cfg.App.CacheSize = core.DefaultCacheSize
	}

	cfg.App.FloodLimitPerMinute = viper.GetInt("flood-limit-per-minute")
	if cfg.App.FloodLimitPerMinute < 0 {
		cfg.App.FloodLimitPerMinute = core.DefaultFloodLimitPerMinute
	}

	cfg.App.ConvertTimeoutSecs = viper.GetInt("convert-timeout-secs")
	if cfg.App.ConvertTimeoutSecs <= 0 {
		cfg.App.ConvertTimeoutSecs = core.DefaultConvertTimeoutSecs
	}
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runTunelink(cmd *cobra.Command, _ []string) error {
	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := validateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logger.Info("Starting tunelink",
		zap.String("language", config.App.Language),
		zap.String("youtube_region", config.YouTube.Region))

	return run(ctx)
}

func run(ctx context.Context) error {
	spotifyClient, err := spotify.NewClient(ctx, config.Spotify, logger.Named("spotify"))
	if err != nil {
		return fmt.Errorf("failed to initialize Spotify client: %w", err)
	}

	youtubeClient, err := youtube.NewClient(ctx, config.YouTube, logger.Named("youtube"))
	if err != nil {
		return fmt.Errorf("failed to initialize YouTube client: %w", err)
	}

	registry := services.NewRegistry()
	cache := store.NewConversionCache(config.App.CacheSize, 0.01)

	httpServer := httpserver.NewServer(config.Server, logger.Named("http"))
	metrics := httpServer.GetMetrics()

	converter := core.NewConverter(
		registry,
		map[services.Name]core.CatalogClient{
			services.Spotify:      spotifyClient,
			services.YouTubeMusic: youtubeClient,
		},
		cache,
		metrics,
		logger.Named("converter"),
		config.App.MaxResults,
	)

	gate := flood.New(config.App.FloodLimitPerMinute)
	defer gate.Stop()

	frontend := telegram.NewFrontend(
		telegram.Config{
			BotToken:         config.Telegram.BotToken,
			Language:         config.App.Language,
			MaxInlineResults: config.App.MaxInlineResults,
			ConvertTimeout:   time.Duration(config.App.ConvertTimeoutSecs) * time.Second,
		},
		converter,
		registry,
		gate,
		metrics,
		logger.Named("telegram"),
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.Start(gCtx)
	})

	g.Go(func() error {
		return frontend.Run(gCtx)
	})

	logger.Info("tunelink started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("tunelink stopped with error", zap.Error(err))
		return err
	}

	logger.Info("tunelink stopped gracefully")
	return nil
}

func validateConfig() error {
	if config.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required")
	}
	if config.Spotify.ClientID == "" {
		return fmt.Errorf("spotify client ID is required")
	}
	if config.Spotify.ClientSecret == "" {
		return fmt.Errorf("spotify client secret is required")
	}
	if config.YouTube.APIKey == "" {
		return fmt.Errorf("youtube API key is required")
	}
	return nil
}

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)

	if err := os.WriteFile(".env.example", []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("✅ Successfully generated .env.example file")
	return nil
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString("# =============================================================================\n")
	content.WriteString("# tunelink Configuration\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	content.WriteString("# Format: TUNELINK_<SETTING>=value\n")
	content.WriteString("# CLI equivalent: --<setting>\n")
	content.WriteString("#\n\n")

	content.WriteString("# -----------------------------------------------------------------------------\n")
	content.WriteString("# Telegram (Required) - bot token from @BotFather\n")
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(&content, "%s=123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11\n\n",
		flagToEnvVar("telegram-bot-token"))

	content.WriteString("# -----------------------------------------------------------------------------\n")
	content.WriteString("# Spotify (Required) - from https://developer.spotify.com/dashboard\n")
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(&content, "%s=your_spotify_client_id_here\n", flagToEnvVar("spotify-client-id"))
	fmt.Fprintf(&content, "%s=your_spotify_client_secret_here\n\n", flagToEnvVar("spotify-client-secret"))

	content.WriteString("# -----------------------------------------------------------------------------\n")
	content.WriteString("# YouTube (Required) - Data API v3 key from Google Cloud console\n")
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(&content, "%s=your_youtube_api_key_here\n", flagToEnvVar("youtube-api-key"))
	fmt.Fprintf(&content, "%s=%s  # Region code for searches (default: %s)\n\n",
		flagToEnvVar("youtube-region"), defaultValueString(cmd, "youtube-region"), defaultValueString(cmd, "youtube-region"))

	content.WriteString("# -----------------------------------------------------------------------------\n")
	content.WriteString("# Application settings (Optional)\n")
	content.WriteString("# -----------------------------------------------------------------------------\n")
	for _, flag := range []string{
		"language", "max-results", "max-inline-results", "cache-size",
		"flood-limit-per-minute", "convert-timeout-secs",
	} {
		fmt.Fprintf(&content, "%s=%s\n", flagToEnvVar(flag), defaultValueString(cmd, flag))
	}
	content.WriteString("\n")

	content.WriteString("# -----------------------------------------------------------------------------\n")
	content.WriteString("# HTTP server and logging (Optional)\n")
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(&content, "%s=%s\n", flagToEnvVar("server-host"), defaultValueString(cmd, "server-host"))
	fmt.Fprintf(&content, "%s=%s\n", flagToEnvVar("server-port"), defaultValueString(cmd, "server-port"))
	fmt.Fprintf(&content, "%s=%s  # debug, info, warn, error\n", flagToEnvVar("log-level"), defaultValueString(cmd, "log-level"))

	return content.String()
}

func flagToEnvVar(flagName string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

func defaultValueString(cmd *cobra.Command, flagName string) string {
	if f := cmd.PersistentFlags().Lookup(flagName); f != nil {
		return f.DefValue
	}
	return ""
}
