package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Surf-N-Code/padel-booking/internal/clients/telegram"
	"github.com/Surf-N-Code/padel-booking/internal/models"

	"github.com/redis/go-redis/v9"
)

type Sender interface {
	SendMessage(chatID int64, text string) error
	SendMessageWithButton(chatID int64, text string, btn telegram.Button) error
}

type UserDirectory interface {
	UsersFavoring(ctx context.Context, venueID string) ([]models.UserProfile, error)
	UsersByIDs(ctx context.Context, ids []int64) ([]models.UserProfile, error)
}

// Worker consumes game events from Redis and delivers chat messages to the
// accounts interested in them.
type Worker struct {
	client    *redis.Client
	users     UserDirectory
	sender    Sender
	formatter *Formatter
	log       *slog.Logger
}

func NewWorker(client *redis.Client, users UserDirectory, sender Sender, formatter *Formatter, log *slog.Logger) *Worker {
	return &Worker{
		client:    client,
		users:     users,
		sender:    sender,
		formatter: formatter,
		log:       log,
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	const op = "notify.worker.Run"

	pubsub := w.client.Subscribe(ctx, Channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	w.log.Info("notification worker started", slog.String("channel", Channel))

	msgs := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("notification worker stopped")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handle(ctx, msg.Payload)
		}
	}
}

func (w *Worker) handle(ctx context.Context, payload string) {
	const op = "notify.worker.handle"

	var e models.Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		w.log.Error("malformed event", slog.String("operation", op), slog.String("error", err.Error()))
		return
	}

	if err := w.Dispatch(ctx, e); err != nil {
		w.log.Error("notification delivery failed",
			slog.String("operation", op),
			slog.String("event", string(e.Type)),
			slog.String("game_id", e.Game.ID),
			slog.String("error", err.Error()),
		)
	}
}

// Dispatch resolves the recipients of e and sends them the message. Every
// recipient is tried; failures are joined into the returned error.
func (w *Worker) Dispatch(ctx context.Context, e models.Event) error {
	const op = "notify.worker.Dispatch"

	switch e.Type {
	case models.EventGameCreated:
		return w.gameCreated(ctx, &e.Game)
	case models.EventPlayerJoined:
		if e.Player == nil {
			return fmt.Errorf("%s: player joined event without player", op)
		}
		return w.playerJoined(ctx, &e.Game, e.Player)
	default:
		return fmt.Errorf("%s: unknown event type %q", op, e.Type)
	}
}

func (w *Worker) gameCreated(ctx context.Context, g *models.Game) error {
	const op = "notify.worker.gameCreated"

	if g.Venue.ID == "" {
		return nil
	}

	users, err := w.users.UsersFavoring(ctx, g.Venue.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	text := w.formatter.NewGame(g)
	btn := telegram.Button{Text: "Join Game", URL: w.formatter.JoinURL(g)}

	var errs []error
	for _, chatID := range recipients(users, g.CreatedBy) {
		if err := w.sender.SendMessageWithButton(chatID, text, btn); err != nil {
			errs = append(errs, err)
		}
	}

	w.log.Debug("game created notification sent",
		slog.String("game_id", g.ID),
		slog.Int("recipients", len(users)),
		slog.Int("failed", len(errs)),
	)

	return errors.Join(errs...)
}

func (w *Worker) playerJoined(ctx context.Context, g *models.Game, p *models.Player) error {
	const op = "notify.worker.playerJoined"

	ids := make([]int64, 0, len(g.Players)+1)
	seen := make(map[int64]struct{}, len(g.Players)+1)
	add := func(userID string) {
		id, err := strconv.ParseInt(userID, 10, 64)
		if err != nil {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	add(g.CreatedBy)
	for _, pl := range g.Players {
		add(pl.UserID)
	}

	users, err := w.users.UsersByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	text := w.formatter.PlayerJoined(g, p)

	var errs []error
	for _, chatID := range recipients(users, p.UserID) {
		if err := w.sender.SendMessage(chatID, text); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// recipients returns the linked chats of users that opted into notifications,
// skipping the account that caused the event.
func recipients(users []models.UserProfile, skipUserID string) []int64 {
	chats := make([]int64, 0, len(users))
	for i := range users {
		u := &users[i]
		if u.TelegramID == nil || !u.NotificationsEnabled || u.RosterID() == skipUserID {
			continue
		}
		chats = append(chats, *u.TelegramID)
	}
	return chats
}
