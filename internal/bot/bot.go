package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Surf-N-Code/padel-booking/internal/clients/telegram"
	"github.com/Surf-N-Code/padel-booking/internal/models"
	"github.com/Surf-N-Code/padel-booking/internal/notify"
	"github.com/Surf-N-Code/padel-booking/internal/storage"
)

const (
	msgNoGames = "No upcoming games found for your favorite venues. " +
		"Visit our website to join or create a game or subscribe to more venues!"
	msgUnknown = "Unknown command. Try /listgames or /register."
	msgFailed  = "Something went wrong, please try again later."
)

type Replier interface {
	SendMessage(chatID int64, text string) error
	SendMarkdown(chatID int64, text string) error
}

type Users interface {
	UserByTelegramID(ctx context.Context, chatID int64) (*models.UserProfile, error)
}

type Games interface {
	ListUpcoming(ctx context.Context, horizon time.Duration) ([]models.Game, error)
}

// Bot answers chat commands.
type Bot struct {
	replier   Replier
	users     Users
	games     Games
	formatter *notify.Formatter
	horizon   time.Duration
	log       *slog.Logger
}

func New(replier Replier, users Users, games Games, formatter *notify.Formatter, horizon time.Duration, log *slog.Logger) *Bot {
	return &Bot{
		replier:   replier,
		users:     users,
		games:     games,
		formatter: formatter,
		horizon:   horizon,
		log:       log,
	}
}

// Run handles messages until the channel is closed or ctx is done.
func (b *Bot) Run(ctx context.Context, updates <-chan telegram.Message) {
	b.log.Info("telegram bot started")
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-updates:
			if !ok {
				return
			}
			b.Handle(ctx, msg)
		}
	}
}

func (b *Bot) Handle(ctx context.Context, msg telegram.Message) {
	const op = "bot.Handle"

	var err error
	switch msg.Command {
	case "start":
		err = b.start(ctx, msg)
	case "register", "linkaccount":
		err = b.register(ctx, msg)
	case "listgames":
		err = b.listGames(ctx, msg)
	case "":
		return
	default:
		err = b.replier.SendMessage(msg.ChatID, msgUnknown)
	}

	if err != nil {
		b.log.Error("command failed",
			slog.String("operation", op),
			slog.String("command", msg.Command),
			slog.Int64("chat_id", msg.ChatID),
			slog.String("error", err.Error()),
		)
	}
}

func (b *Bot) start(ctx context.Context, msg telegram.Message) error {
	u, err := b.linkedUser(ctx, msg.ChatID)
	if err != nil {
		return err
	}
	if u == nil {
		return b.replyNotRegistered(msg.ChatID)
	}

	name := u.Name
	if name == "" {
		name = "there"
	}

	text := fmt.Sprintf("Hi %s! 🎾\n\n"+
		"/listgames - upcoming games at your favorite venues\n"+
		"/register - link this chat to your account", name)

	return b.replier.SendMessage(msg.ChatID, text)
}

func (b *Bot) register(ctx context.Context, msg telegram.Message) error {
	u, err := b.linkedUser(ctx, msg.ChatID)
	if err != nil {
		return err
	}
	if u == nil {
		return b.replyNotRegistered(msg.ChatID)
	}

	return b.replier.SendMessage(msg.ChatID,
		fmt.Sprintf("This chat is already linked to %s ✅", u.Email))
}

func (b *Bot) listGames(ctx context.Context, msg telegram.Message) error {
	u, err := b.linkedUser(ctx, msg.ChatID)
	if err != nil {
		return err
	}
	if u == nil {
		return b.replyNotRegistered(msg.ChatID)
	}

	favorites := make(map[string]struct{}, len(u.FavoriteVenues))
	for _, id := range u.FavoriteVenueIDs() {
		favorites[id] = struct{}{}
	}

	games, err := b.games.ListUpcoming(ctx, b.horizon)
	if err != nil {
		_ = b.replier.SendMessage(msg.ChatID, msgFailed)
		return err
	}

	matching := make([]models.Game, 0, len(games))
	for _, g := range games {
		if _, ok := favorites[g.Venue.ID]; ok {
			matching = append(matching, g)
		}
	}

	if len(matching) == 0 {
		return b.replier.SendMessage(msg.ChatID, msgNoGames)
	}

	return b.replier.SendMessage(msg.ChatID, b.formatter.Upcoming(matching))
}

// linkedUser returns nil without error when the chat is not linked.
func (b *Bot) linkedUser(ctx context.Context, chatID int64) (*models.UserProfile, error) {
	u, err := b.users.UserByTelegramID(ctx, chatID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		_ = b.replier.SendMessage(chatID, msgFailed)
		return nil, err
	}
	return u, nil
}

func (b *Bot) replyNotRegistered(chatID int64) error {
	url := b.formatter.RegisterURL(chatID)
	text := fmt.Sprintf("You are not registered yet. Please register [here](%s)", escapeMarkdownURL(url))
	return b.replier.SendMarkdown(chatID, text)
}

func escapeMarkdownURL(u string) string {
	return strings.NewReplacer(")", "%29", "(", "%28").Replace(u)
}
