package telegram

import (
	"context"
	"html"
	"log"
	"regexp"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"voice-assistant/internal/auth"
	"voice-assistant/internal/session"
)

const (
	startCmd = "assistant_start"
	stopCmd  = "assistant_stop"

	// Telegram rejects messages longer than this.
	maxMessageLen = 4096
	emptyChat     = "💬 Waiting for the conversation…"
)

var boldRe = regexp.MustCompile(`\*\*(.+?)\*\*`)

// Controller starts and stops the assistant session.
type Controller interface {
	Start() string
	Stop() error
}

type transcriptMessage struct {
	messageID int
	text      string
}

// Bot exposes the assistant controls in Telegram. Each chat that sent /start
// gets one transcript message that is edited in place on every refresh.
type Bot struct {
	api     *tgbotapi.BotAPI
	s       sender
	authSvc *auth.Service
	ctrl    Controller

	mu          sync.Mutex
	transcripts map[int64]*transcriptMessage
}

func New(botToken string, authSvc *auth.Service, ctrl Controller) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:         api,
		s:           botAPISender{api: api},
		authSvc:     authSvc,
		ctrl:        ctrl,
		transcripts: make(map[int64]*transcriptMessage),
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	log.Printf("🤖 Telegram bot @%s started", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleIncomingMessage(update.Message)
				continue
			}
			if update.CallbackQuery != nil {
				b.handleCallback(update.CallbackQuery)
			}
		}
	}
}

func (b *Bot) handleIncomingMessage(msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	if !b.authSvc.IsAllowed(msg.From.ID) {
		log.Printf("Unauthorized access attempt by user ID: %d, username: @%s", msg.From.ID, msg.From.UserName)
		b.sendMessage(msg.Chat.ID, "⛔ Access denied.")
		return
	}
	if !msg.IsCommand() || msg.Command() != "start" {
		return
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("▶️ Start Assistant", startCmd),
			tgbotapi.NewInlineKeyboardButtonData("⏹ Stop Assistant", stopCmd),
		),
	)
	out := tgbotapi.NewMessage(msg.Chat.ID, "🎤 Real-Time Voice Assistant")
	out.ReplyMarkup = kb
	if _, err := b.s.Send(out); err != nil {
		log.Printf("failed to send controls: %v", err)
		return
	}
	b.ensureTranscript(msg.Chat.ID)
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	if _, err := b.s.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("failed to answer callback: %v", err)
	}
	chatID := cb.Message.Chat.ID
	if !b.authSvc.IsAllowed(cb.From.ID) {
		b.sendMessage(chatID, "⛔ Access denied.")
		return
	}

	switch cb.Data {
	case startCmd:
		runID := b.ctrl.Start()
		log.Printf("▶️ session %s requested from Telegram by %d", runID, cb.From.ID)
		b.sendMessage(chatID, "✅ "+session.NoticeStarted)
		b.ensureTranscript(chatID)
	case stopCmd:
		if err := b.ctrl.Stop(); err != nil {
			b.sendMessage(chatID, "❌ "+session.NoticeNotRunning)
			return
		}
		b.sendMessage(chatID, "⚠️ "+session.NoticeStopped)
	}
}

// ensureTranscript creates the chat's transcript message once.
func (b *Bot) ensureTranscript(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.transcripts[chatID]; ok {
		return
	}
	sent, err := b.s.Send(tgbotapi.NewMessage(chatID, emptyChat))
	if err != nil {
		log.Printf("failed to create transcript message: %v", err)
		return
	}
	b.transcripts[chatID] = &transcriptMessage{messageID: sent.MessageID, text: emptyChat}
}

// Replace edits every chat's transcript message to show lines. Unchanged
// content is not re-sent.
func (b *Bot) Replace(lines []string) {
	text := formatTranscript(lines)

	b.mu.Lock()
	defer b.mu.Unlock()
	for chatID, tm := range b.transcripts {
		if tm.text == text {
			continue
		}
		edit := tgbotapi.NewEditMessageText(chatID, tm.messageID, text)
		edit.ParseMode = tgbotapi.ModeHTML
		if _, err := b.s.Send(edit); err != nil {
			log.Printf("⚠️ Failed to update transcript message: %v", err)
			continue
		}
		tm.text = text
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

// formatTranscript renders lines as Telegram HTML, dropping the oldest lines
// when the result would not fit in one message.
func formatTranscript(lines []string) string {
	if len(lines) == 0 {
		return emptyChat
	}
	rendered := make([]string, len(lines))
	for i, l := range lines {
		rendered[i] = boldRe.ReplaceAllString(html.EscapeString(l), "<b>$1</b>")
	}
	for len(rendered) > 1 && len(strings.Join(rendered, "\n")) > maxMessageLen {
		rendered = rendered[1:]
	}
	text := strings.Join(rendered, "\n")
	if len(text) > maxMessageLen {
		text = html.EscapeString(truncateRunes(lines[len(lines)-1], maxMessageLen/2))
	}
	return text
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
