package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Client wraps the Bot API. Messages are sent as HTML without link previews.
type Client struct {
	bot     *tgbotapi.BotAPI
	timeout time.Duration
	log     *slog.Logger
}

func New(log *slog.Logger, token string, timeout time.Duration, debug bool) (*Client, error) {
	const op = "clients.telegram.New"

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	bot.Debug = debug

	log.Info("telegram bot authorized", slog.String("username", bot.Self.UserName))

	return &Client{bot: bot, timeout: timeout, log: log}, nil
}

// Button is an inline keyboard button that opens a URL.
type Button struct {
	Text string
	URL  string
}

func (c *Client) SendMessage(chatID int64, text string) error {
	return c.send(newHTMLMessage(chatID, text))
}

func (c *Client) SendMessageWithButton(chatID int64, text string, btn Button) error {
	msg := newHTMLMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL)),
	)
	return c.send(msg)
}

// SendMarkdown is used for replies that embed a Markdown link.
func (c *Client) SendMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	return c.send(msg)
}

func (c *Client) send(msg tgbotapi.MessageConfig) error {
	const op = "clients.telegram.send"

	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("%s: chat %d: %w", op, msg.ChatID, err)
	}
	return nil
}

func newHTMLMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	return msg
}

// Message is the part of an incoming update the bot reacts to.
type Message struct {
	ChatID   int64
	UserID   int64
	Text     string
	Command  string
	Username string
}

// Updates long-polls the Bot API until ctx is done. The returned channel is
// closed after polling stops.
func (c *Client) Updates(ctx context.Context) <-chan Message {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(c.timeout.Seconds())
	updates := c.bot.GetUpdatesChan(u)

	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				c.bot.StopReceivingUpdates()
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				msg, ok := convertUpdate(upd)
				if !ok {
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					c.bot.StopReceivingUpdates()
					return
				}
			}
		}
	}()

	return out
}

func convertUpdate(upd tgbotapi.Update) (Message, bool) {
	if upd.Message == nil || upd.Message.Chat == nil {
		return Message{}, false
	}

	msg := Message{
		ChatID:  upd.Message.Chat.ID,
		Text:    upd.Message.Text,
		Command: upd.Message.Command(),
	}
	if upd.Message.From != nil {
		msg.UserID = upd.Message.From.ID
		msg.Username = upd.Message.From.UserName
	}

	return msg, true
}
