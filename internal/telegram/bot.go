package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"diet-wizard/internal/config"
	"diet-wizard/internal/diet"
	"diet-wizard/internal/history"
	"diet-wizard/internal/metrics"
	"diet-wizard/internal/nutrition"
	"diet-wizard/internal/telemetry"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// messenger is the subset of *tgbotapi.BotAPI the bot uses.
type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// RateLimiter bounds how often a user may start a new wizard session.
type RateLimiter interface {
	IsRateLimited(ctx context.Context, userID string) bool
}

// Archive stores generated diets per user.
type Archive interface {
	Save(ctx context.Context, userID, sessionID string, plan *diet.Plan) error
	ListRecent(ctx context.Context, userID string, limit int) ([]history.Entry, error)
}

// Bot runs the diet wizard over Telegram: one chat is one wizard user.
type Bot struct {
	api          messenger
	controller   *nutrition.Controller
	archive      Archive
	metricsStore *metrics.Store
	limiter      RateLimiter
	cfg          *config.Config

	mu            sync.Mutex
	conversations map[int64]*conversation
	now           func() time.Time

	// background result renderers
	wg sync.WaitGroup
}

// NewBot initializes the Telegram Bot and sets the Webhook.
// archive, metricsStore and limiter may be nil.
func NewBot(
	cfg *config.Config,
	controller *nutrition.Controller,
	archive Archive,
	metricsStore *metrics.Store,
	limiter RateLimiter,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	webhookURL := cfg.TelegramWebhookURL
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", webhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return newBot(api, cfg, controller, archive, metricsStore, limiter), nil
}

func newBot(
	api messenger,
	cfg *config.Config,
	controller *nutrition.Controller,
	archive Archive,
	metricsStore *metrics.Store,
	limiter RateLimiter,
) *Bot {
	return &Bot{
		api:           api,
		controller:    controller,
		archive:       archive,
		metricsStore:  metricsStore,
		limiter:       limiter,
		cfg:           cfg,
		conversations: make(map[int64]*conversation),
		now:           time.Now,
	}
}

// RegisterHandlers registers the webhook and health handlers on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", telemetry.Middleware("/webhook", b.handleWebhook))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// Wait blocks until background result renderers have finished.
func (b *Bot) Wait() {
	b.wg.Wait()
}

// RunJanitor evicts idle conversations every interval until ctx is done.
func (b *Bot) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := b.evictIdle(); n > 0 {
				log.Printf("Evicted %d idle conversations", n)
			}
		}
	}
}

// evictIdle drops conversations untouched for longer than the configured TTL,
// along with their fetch sessions. Conversations awaiting a result are kept.
func (b *Bot) evictIdle() int {
	if b.cfg.ConversationTTL <= 0 {
		return 0
	}
	cutoff := b.now().Add(-b.cfg.ConversationTTL)

	b.mu.Lock()
	defer b.mu.Unlock()

	evicted := 0
	for chatID, conv := range b.conversations {
		if conv.lastActive.After(cutoff) {
			continue
		}
		if !conv.mu.TryLock() {
			// in use right now
			continue
		}
		busy := conv.awaiting != ""
		sessionID := conv.store.SessionID()
		conv.mu.Unlock()
		if busy {
			continue
		}
		b.controller.Discard(sessionID)
		delete(b.conversations, chatID)
		evicted++
	}
	return evicted
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	go b.handleUpdate(*update)
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	var from *tgbotapi.User
	switch {
	case update.CallbackQuery != nil:
		from = update.CallbackQuery.From
	case update.Message != nil:
		from = update.Message.From
	default:
		return
	}

	if from == nil || !b.cfg.IsAllowed(from.ID) {
		if from != nil {
			log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", from.ID, from.UserName)
		}
		return
	}

	if update.CallbackQuery != nil {
		b.handleCallbackQuery(update.CallbackQuery)
		return
	}
	b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	if cmd := command(msg.Text); cmd != "" {
		switch cmd {
		case "start", "novadieta":
			b.startWizard(chatID, msg.From.ID)
		case "dieta":
			b.showResult(chatID, msg.From.ID)
		case "historico":
			b.handleHistoryCommand(chatID, msg.From.ID)
		case "metrics":
			b.handleMetricsRequest(chatID, msg.From.ID)
		default:
			b.sendText(chatID, helpText)
		}
		return
	}

	b.handleAnswer(chatID, msg.From.ID, msg.Text)
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	// Answer callback to remove spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Printf("Failed to answer callback %s: %v", query.ID, err)
	}
	if query.Message == nil || query.Message.Chat == nil {
		return
	}
	chatID := query.Message.Chat.ID
	userID := query.From.ID

	parts := strings.Split(query.Data, "|")
	switch parts[0] {
	case actionOption:
		if len(parts) != 3 {
			return
		}
		b.handleOption(chatID, userID, parts[1], parts[2])
	case actionShare:
		b.handleShare(chatID)
	case actionRestart:
		b.startWizard(chatID, userID)
	}
}

func (b *Bot) handleMetricsRequest(chatID, userID int64) {
	if userID != b.cfg.AdminTelegramID || b.cfg.AdminTelegramID == 0 {
		b.sendMarkdown(chatID, "⛔ *Access Denied*: Admin only.", nil)
		return
	}
	if b.metricsStore == nil {
		b.sendText(chatID, "Metrics are disabled.")
		return
	}

	usage, err := b.metricsStore.GetDailyUsage(7)
	if err != nil {
		log.Printf("Error fetching metrics: %v", err)
		b.sendText(chatID, "❌ Error fetching metrics.")
		return
	}
	health := metrics.GetSysHealth(dataDir(b.cfg.DatabasePath), b.controller.Len())
	b.sendMarkdown(chatID, formatMetricsReport(usage, health), nil)
}

func (b *Bot) handleHistoryCommand(chatID, userID int64) {
	if b.archive == nil {
		b.sendText(chatID, "Histórico indisponível.")
		return
	}
	entries, err := b.archive.ListRecent(context.Background(), userKey(userID), 5)
	if err != nil {
		log.Printf("Error listing diets for user %d: %v", userID, err)
		b.sendText(chatID, "❌ Erro ao carregar histórico.")
		return
	}
	b.sendMarkdown(chatID, formatHistory(entries), nil)
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		log.Printf("Warning: markdown send to chat %d failed, retrying as plain text: %v", chatID, err)
		msg.ParseMode = ""
		sent, err = b.api.Send(msg)
	}
	if err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
		return 0, err
	}
	return sent.MessageID, nil
}

func (b *Bot) editMarkdown(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	var edit tgbotapi.EditMessageTextConfig
	if keyboard != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *keyboard)
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	edit.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(edit)
	if err == nil {
		return
	}
	log.Printf("Warning: markdown edit of message %d failed, retrying as plain text: %v", messageID, err)
	edit.ParseMode = ""
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit message %d in chat %d: %v", messageID, chatID, err)
	}
}

// command extracts "start" from "/start" or "/start@diet_bot".
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd)
}

func userKey(userID int64) string {
	return fmt.Sprintf("%d", userID)
}
