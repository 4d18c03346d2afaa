package telegram

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/insightlabs/naomi/internal/adapters/config"
	"github.com/insightlabs/naomi/internal/conversation"
	"github.com/insightlabs/naomi/pkg/logger"
	"github.com/insightlabs/naomi/pkg/models"
)

// TurnHandler runs one conversational exchange for a session.
type TurnHandler interface {
	HandleTurn(ctx context.Context, window *conversation.Window, utterance string) *models.TurnResult
}

// Bot bridges Telegram chats to the assistant. Each chat gets its own
// conversation window; messages within a chat are handled sequentially
// so the window stays coherent.
type Bot struct {
	api          *tgbotapi.BotAPI
	handler      TurnHandler
	historyLimit int

	mu       sync.Mutex
	sessions map[int64]*session
}

type session struct {
	mu     sync.Mutex
	window *conversation.Window
}

// NewBot creates the Telegram gateway.
func NewBot(cfg *config.TelegramConfig, handler TurnHandler, historyLimit int) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("telegram bot initialized",
		zap.String("username", api.Self.UserName),
	)

	return &Bot{
		api:          api,
		handler:      handler,
		historyLimit: historyLimit,
		sessions:     map[int64]*session{},
	}, nil
}

// Start listens for messages until the context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	logger.Info("telegram bot started, listening for messages")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage runs one exchange. The per-session lock serializes
// turns within a chat while keeping chats independent.
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	logger.Debug("received telegram message",
		zap.Int64("chat_id", chatID),
		zap.Int("chars", len(message.Text)),
	)

	if message.IsCommand() {
		b.handleCommand(chatID, message.Command())
		return
	}

	s := b.session(chatID)
	s.mu.Lock()
	result := b.handler.HandleTurn(ctx, s.window, message.Text)
	s.mu.Unlock()

	b.send(chatID, result.Text)
	if result.Chart != "" {
		b.send(chatID, result.Chart)
	}
}

func (b *Bot) handleCommand(chatID int64, command string) {
	switch command {
	case "start":
		b.send(chatID, "Hey, I'm Naomi! Ask me about any coin's price, performance, social sentiment, or what smart money is doing with it.")
	case "help":
		b.send(chatID, "Try things like:\n"+
			"price of $SOL\n"+
			"how is ethereum doing\n"+
			"smart money flow for bonk\n"+
			"sentiment on dogecoin")
	case "reset":
		b.session(chatID).window.Reset()
		b.send(chatID, "Fresh start! What are we looking at?")
	default:
		b.send(chatID, "Unknown command. Try /help.")
	}
}

func (b *Bot) session(chatID int64) *session {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.sessions[chatID]
	if !ok {
		s = &session{window: conversation.NewWindow(b.historyLimit)}
		b.sessions[chatID] = s
	}
	return s
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		logger.Error("failed to send telegram message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
