// Package telegram provides Telegram Bot API integration using go-telegram/bot library.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tunelink/internal/chat"
	"tunelink/internal/core"
	"tunelink/internal/flood"
	"tunelink/internal/i18n"
	"tunelink/pkg/services"
	"tunelink/pkg/text"
)

const (
	chatTypePrivate = "private"

	updateKindCommand     = "command"
	updateKindMessage     = "message"
	updateKindInlineQuery = "inline_query"

	// inlineCacheSeconds is how long Telegram may cache inline answers.
	// Conversions are stable so a few minutes is safe.
	inlineCacheSeconds = 300

	// inlineThrottleCacheSeconds keeps flood-gated empty answers from
	// being cached past the gate's window.
	inlineThrottleCacheSeconds = 5
)

// Config holds Telegram-specific configuration
type Config struct {
	BotToken         string
	Language         string
	MaxInlineResults int
	ConvertTimeout   time.Duration
}

// Frontend implements the chat.Frontend interface for Telegram.
type Frontend struct {
	config    Config
	logger    *zap.Logger
	bot       *bot.Bot
	converter *core.Converter
	registry  *services.Registry
	parser    *text.Parser
	localizer *i18n.Localizer
	gate      *flood.Gate
	recorder  chat.UpdateRecorder

	// discovered at startup, used in the /start greeting
	username string
}

// NewFrontend creates a new Telegram frontend. gate and recorder may be nil.
func NewFrontend(
	config Config,
	converter *core.Converter,
	registry *services.Registry,
	gate *flood.Gate,
	recorder chat.UpdateRecorder,
	logger *zap.Logger,
) *Frontend {
	language := config.Language
	if language == "" {
		language = i18n.DefaultLanguage
	}
	if config.MaxInlineResults <= 0 {
		config.MaxInlineResults = core.DefaultMaxInlineResults
	}
	if config.ConvertTimeout <= 0 {
		config.ConvertTimeout = core.DefaultConvertTimeoutSecs * time.Second
	}

	return &Frontend{
		config:    config,
		logger:    logger,
		converter: converter,
		registry:  registry,
		parser:    text.NewParser(),
		localizer: i18n.NewLocalizer(language),
		gate:      gate,
		recorder:  recorder,
	}
}

// Run connects to the Bot API and processes updates until ctx is done.
func (f *Frontend) Run(ctx context.Context) error {
	opts := []bot.Option{
		bot.WithDefaultHandler(f.handleUpdate),
		bot.WithMessageTextHandler("/start", bot.MatchTypeExact, f.handleStart),
		bot.WithErrorsHandler(func(err error) {
			f.logger.Error("Telegram bot error", zap.Error(err))
		}),
	}

	b, err := bot.New(f.config.BotToken, opts...)
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}
	f.bot = b

	me, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to identify bot: %w", err)
	}
	f.username = me.Username

	f.logger.Info("Telegram frontend started",
		zap.String("username", me.Username))

	b.Start(ctx)

	return nil
}

// handleStart greets the user and explains both ways to use the bot.
func (f *Frontend) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	f.record(updateKindCommand)

	f.reply(ctx, b, update.Message, f.localizer.T("bot.welcome", f.username))
}

// handleUpdate dispatches non-command updates to the message and inline
// query handlers.
func (f *Frontend) handleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message != nil {
		f.handleMessage(ctx, b, update.Message)
	}
	if update.InlineQuery != nil {
		f.handleInlineQuery(ctx, b, update.InlineQuery)
	}
}

// handleMessage converts the first link found in a message and replies
// with the counterpart. In group chats messages without links are ignored
// so the bot stays quiet; in private chats it explains what it accepts.
func (f *Frontend) handleMessage(ctx context.Context, b *bot.Bot, msg *models.Message) {
	if msg.From == nil || msg.From.IsBot {
		return
	}

	f.record(updateKindMessage)

	if f.gate != nil && !f.gate.Allow(msg.From.ID) {
		f.logger.Debug("Message dropped by flood gate",
			zap.Int64("user_id", msg.From.ID))
		return
	}

	link := f.parser.FirstLink(msg.Text)
	if link == "" {
		if msg.Chat.Type == chatTypePrivate {
			f.reply(ctx, b, msg, f.localizer.T("error.unsupported"))
		}
		return
	}

	convertCtx, cancel := context.WithTimeout(ctx, f.config.ConvertTimeout)
	defer cancel()

	conversion, err := f.converter.Convert(convertCtx, link)

	replyText, send := f.messageText(conversion, err, link, string(msg.Chat.Type))
	if !send {
		return
	}

	f.reply(ctx, b, msg, replyText)
}

// messageText picks the reply for a conversion attempt and whether it
// should be sent at all. A successful conversion replies with exactly the
// best match's URL; unsupported links stay silent outside private chats.
func (f *Frontend) messageText(conversion *core.Conversion, err error, link, chatType string) (string, bool) {
	if err != nil {
		if chatType != chatTypePrivate && errors.Is(err, core.ErrUnsupportedLink) {
			return "", false
		}
		return f.errorText(err, link), true
	}
	return conversion.Items[0].URL, true
}

// handleInlineQuery answers with up to MaxInlineResults candidate cards.
// Empty queries are ignored; every other query gets an answer so the
// popup never hangs.
func (f *Frontend) handleInlineQuery(ctx context.Context, b *bot.Bot, query *models.InlineQuery) {
	if strings.TrimSpace(query.Query) == "" {
		return
	}

	f.record(updateKindInlineQuery)

	answer := f.inlineAnswer(ctx, query)
	f.answerInline(ctx, b, query.ID, answer.results, answer.cacheSeconds)
}

// inlineAnswer holds what an inline query is answered with.
type inlineAnswer struct {
	results      []models.InlineQueryResult
	cacheSeconds int
}

func (f *Frontend) inlineAnswer(ctx context.Context, query *models.InlineQuery) inlineAnswer {
	if f.gate != nil && query.From != nil && !f.gate.Allow(query.From.ID) {
		f.logger.Debug("Inline query dropped by flood gate",
			zap.Int64("user_id", query.From.ID))
		// Closing the popup with zero cards beats leaving it spinning.
		return inlineAnswer{
			results:      []models.InlineQueryResult{},
			cacheSeconds: inlineThrottleCacheSeconds,
		}
	}

	link := f.parser.FirstLink(query.Query)
	if link == "" {
		return inlineAnswer{
			results:      f.errorCard("inline.unsupported.title", f.localizer.T("error.unsupported")),
			cacheSeconds: inlineCacheSeconds,
		}
	}

	convertCtx, cancel := context.WithTimeout(ctx, f.config.ConvertTimeout)
	defer cancel()

	conversion, err := f.converter.Convert(convertCtx, link)
	if err != nil {
		return inlineAnswer{
			results:      f.errorCard(f.inlineErrorTitle(err), f.errorText(err, link)),
			cacheSeconds: inlineCacheSeconds,
		}
	}

	return inlineAnswer{
		results:      f.buildInlineResults(conversion.Items),
		cacheSeconds: inlineCacheSeconds,
	}
}

// buildInlineResults turns candidate matches into inline article cards,
// capped at MaxInlineResults. Selecting a card sends the bare track URL.
func (f *Frontend) buildInlineResults(items []core.MusicItem) []models.InlineQueryResult {
	if len(items) > f.config.MaxInlineResults {
		items = items[:f.config.MaxInlineResults]
	}

	results := make([]models.InlineQueryResult, 0, len(items))
	for _, item := range items {
		results = append(results, &models.InlineQueryResultArticle{
			ID:          uuid.NewString(),
			Title:       item.Title,
			Description: itemDescription(item),
			InputMessageContent: &models.InputTextMessageContent{
				MessageText: item.URL,
			},
			ThumbnailURL: item.ArtworkURL,
		})
	}

	return results
}

func (f *Frontend) answerInline(ctx context.Context, b *bot.Bot, queryID string, results []models.InlineQueryResult, cacheSeconds int) {
	if _, err := b.AnswerInlineQuery(ctx, &bot.AnswerInlineQueryParams{
		InlineQueryID: queryID,
		Results:       results,
		CacheTime:     cacheSeconds,
	}); err != nil {
		f.logger.Warn("Failed to answer inline query", zap.Error(err))
	}
}

// errorCard builds the single inline result shown when a query cannot be
// converted. Selecting it sends the explanation as plain text.
func (f *Frontend) errorCard(titleKey, message string) []models.InlineQueryResult {
	return []models.InlineQueryResult{
		&models.InlineQueryResultArticle{
			ID:          uuid.NewString(),
			Title:       f.localizer.T(titleKey),
			Description: message,
			InputMessageContent: &models.InputTextMessageContent{
				MessageText: message,
			},
		},
	}
}

func (f *Frontend) inlineErrorTitle(err error) string {
	switch core.ClassifyError(err) {
	case core.OutcomeUnsupported:
		return "inline.unsupported.title"
	case core.OutcomeNoResults:
		return "inline.no_results.title"
	default:
		return "inline.error.title"
	}
}

// errorText maps a conversion failure to the sentence shown to the user.
func (f *Frontend) errorText(err error, link string) string {
	switch core.ClassifyError(err) {
	case core.OutcomeUnsupported:
		return f.localizer.T("error.unsupported")
	case core.OutcomeNoResults:
		return f.localizer.T("error.no_results", f.targetDisplayName(link))
	default:
		return f.localizer.T("error.transient")
	}
}

// targetDisplayName names the service a link would have been converted to.
func (f *Frontend) targetDisplayName(link string) string {
	source, ok := f.registry.Detect(link)
	if !ok {
		return f.localizer.T("service.other")
	}
	target, ok := f.registry.TargetFor(source.Name())
	if !ok {
		return f.localizer.T("service.other")
	}
	return target.DisplayName()
}

func (f *Frontend) reply(ctx context.Context, b *bot.Bot, msg *models.Message, replyText string) {
	params := &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   replyText,
	}

	// Music links unfurl into oversized players, so previews stay off.
	disabled := true
	params.LinkPreviewOptions = &models.LinkPreviewOptions{
		IsDisabled: &disabled,
	}

	if msg.Chat.Type != chatTypePrivate {
		params.ReplyParameters = &models.ReplyParameters{
			MessageID: msg.ID,
		}
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		f.logger.Warn("Failed to send reply",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Error(err))
	}
}

func (f *Frontend) record(kind string) {
	if f.recorder != nil {
		f.recorder.RecordUpdate(kind)
	}
}

// itemDescription renders the secondary line of an inline card.
func itemDescription(item core.MusicItem) string {
	switch {
	case item.Artist != "" && item.Album != "":
		return item.Artist + " - " + item.Album
	case item.Artist != "":
		return item.Artist
	default:
		return item.Album
	}
}
