package telegram

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/bnema/followcheck/internal/application"
	"github.com/bnema/followcheck/internal/domain"
	"github.com/bnema/followcheck/internal/ports"
)

const (
	DefaultPollTimeout = 60
	DefaultMaxFileSize = 5 << 20
	maxMessageLen      = 4000

	msgUnauthorized = "This bot is private."
	msgFileTooLarge = "That file is too large. Send a file under %d KB."
)

var (
	ErrMissingToken = errors.New("telegram token is not configured")
	errFileTooLarge = errors.New("file exceeds size limit")
)

type Config struct {
	Token        string
	AllowedUsers []int64
	PollTimeout  int
	MaxFileSize  int64
	// APIEndpoint and FileEndpoint are format strings taking the token and the method or file path.
	APIEndpoint  string
	FileEndpoint string
	HTTPTimeout  time.Duration
}

// Sink receives inbound events; application.Dispatcher satisfies it.
type Sink interface {
	Dispatch(ctx context.Context, event application.Event)
}

// Bot is the Telegram transport: it long-polls for updates and delivers replies.
type Bot struct {
	api    *tgbotapi.BotAPI
	files  *resty.Client
	cfg    Config
	logger *zap.Logger
}

var _ ports.Transport = (*Bot)(nil)

func New(cfg Config, logger *zap.Logger) (*Bot, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, ErrMissingToken
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.APIEndpoint == "" {
		cfg.APIEndpoint = tgbotapi.APIEndpoint
	}
	if cfg.FileEndpoint == "" {
		cfg.FileEndpoint = tgbotapi.FileEndpoint
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Token, cfg.APIEndpoint)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}

	files := resty.New().SetTimeout(cfg.HTTPTimeout)
	instrument(files)

	logger.Info("telegram bot connected", zap.String("username", api.Self.UserName))
	return &Bot{api: api, files: files, cfg: cfg, logger: logger}, nil
}

// Run polls for updates until ctx is done and hands every accepted message to sink.
func (b *Bot) Run(ctx context.Context, sink Sink) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.PollTimeout
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			event, ok := b.eventFrom(ctx, update)
			if !ok {
				continue
			}
			sink.Dispatch(ctx, event)
		}
	}
}

func (b *Bot) eventFrom(ctx context.Context, update tgbotapi.Update) (application.Event, bool) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return application.Event{}, false
	}
	conversation := domain.ConversationID(msg.Chat.ID)
	messageID := domain.MessageID(msg.MessageID)

	if !b.allowed(msg.From) {
		b.logger.Warn("unauthorized telegram user", zap.Int64("chat", msg.Chat.ID))
		b.notify(ctx, conversation, msgUnauthorized)
		return application.Event{}, false
	}

	if doc := msg.Document; doc != nil {
		if int64(doc.FileSize) > b.cfg.MaxFileSize {
			b.notify(ctx, conversation, fmt.Sprintf(msgFileTooLarge, b.cfg.MaxFileSize>>10))
			return application.Event{}, false
		}
		fileID := doc.FileID
		fetch := func(ctx context.Context) ([]byte, error) {
			return b.download(ctx, fileID)
		}
		return application.NewFileEvent(conversation, messageID, doc.FileName, fetch), true
	}

	if strings.TrimSpace(msg.Text) == "" {
		return application.Event{}, false
	}
	return application.NewTextEvent(conversation, messageID, msg.Text), true
}

func (b *Bot) allowed(user *tgbotapi.User) bool {
	if len(b.cfg.AllowedUsers) == 0 {
		return true
	}
	return user != nil && slices.Contains(b.cfg.AllowedUsers, user.ID)
}

func (b *Bot) notify(ctx context.Context, conversation domain.ConversationID, text string) {
	if _, err := b.SendText(ctx, conversation, text); err != nil {
		b.logger.Warn("send telegram notice", zap.Error(err))
	}
}

// SendText splits long texts on line boundaries and returns the id of the last message sent.
func (b *Bot) SendText(ctx context.Context, conversation domain.ConversationID, text string) (domain.MessageID, error) {
	var last domain.MessageID
	for _, chunk := range splitMessage(text, maxMessageLen) {
		if err := ctx.Err(); err != nil {
			return last, err
		}
		sent, err := b.api.Send(tgbotapi.NewMessage(int64(conversation), chunk))
		if err != nil {
			return last, fmt.Errorf("send message: %w", err)
		}
		last = domain.MessageID(sent.MessageID)
	}
	return last, nil
}

func (b *Bot) SendFile(ctx context.Context, conversation domain.ConversationID, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(int64(conversation), tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := b.api.Send(doc); err != nil {
		return fmt.Errorf("send document %s: %w", name, err)
	}
	return nil
}

func (b *Bot) Retract(ctx context.Context, conversation domain.ConversationID, message domain.MessageID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(int64(conversation), int(message))); err != nil {
		return fmt.Errorf("delete message %d: %w", message, err)
	}
	return nil
}

func splitMessage(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	flush := func() {
		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			flush()
			cut := limit
			for cut > 0 && !utf8Start(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if current.Len()+len(line) > limit {
			flush()
		}
		current.WriteString(line)
	}
	flush()
	return chunks
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}
