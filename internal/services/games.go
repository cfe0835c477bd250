package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Surf-N-Code/padel-booking/internal/models"
	"github.com/Surf-N-Code/padel-booking/internal/storage"
	"github.com/Surf-N-Code/padel-booking/internal/storage/redis"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// listConcurrency bounds the number of games loaded in parallel for a listing.
const listConcurrency = 8

const defaultNotifyTimeout = 2 * time.Second

type GameStore interface {
	CreateGame(ctx context.Context, g *models.Game) error
	GetGame(ctx context.Context, id string) (*models.Game, error)
	Schedule(ctx context.Context, from, to time.Time) ([]redis.ScheduledGame, error)
	LoadScheduled(ctx context.Context, sg redis.ScheduledGame) (*models.Game, error)
	JoinGame(ctx context.Context, id string, p models.Player) (bool, error)
	LeaveGame(ctx context.Context, id, playerID, requesterID string) (bool, error)
	IsPlayer(ctx context.Context, id, userID string) (bool, error)
}

type VenueLookup interface {
	Venue(ctx context.Context, id string) (*models.Venue, error)
}

// Notifier receives committed game events. Delivery is best effort.
type Notifier interface {
	Publish(ctx context.Context, e models.Event) error
}

type GameService struct {
	store    GameStore
	venues   VenueLookup
	notifier Notifier
	log      *slog.Logger

	notifyTimeout time.Duration
	now           func() time.Time
	wg            sync.WaitGroup
}

func NewGameService(store GameStore, venues VenueLookup, notifier Notifier, log *slog.Logger, notifyTimeout time.Duration) *GameService {
	if notifyTimeout <= 0 {
		notifyTimeout = defaultNotifyTimeout
	}
	return &GameService{
		store:         store,
		venues:        venues,
		notifier:      notifier,
		log:           log,
		notifyTimeout: notifyTimeout,
		now:           time.Now,
	}
}

type CreateGameInput struct {
	DateTime       string
	Level          models.Level
	Venue          models.Venue
	CreatedBy      string
	CreatorEmail   string
	InitialPlayers []models.Player
}

func (s *GameService) Create(ctx context.Context, in CreateGameInput) (*models.Game, error) {
	const op = "services.games.Create"

	if strings.TrimSpace(in.DateTime) == "" {
		return nil, &ValidationError{Field: "dateTime", Reason: "is required"}
	}

	at, err := parseDateTime(in.DateTime)
	if err != nil {
		return nil, &ValidationError{Field: "dateTime", Reason: "is not a valid date"}
	}

	if in.Level != "" && !in.Level.Valid() {
		return nil, &ValidationError{Field: "level", Reason: fmt.Sprintf("unknown level %q", in.Level)}
	}

	if len(in.InitialPlayers) > models.MaxPlayers {
		return nil, &ValidationError{
			Field:  "initialPlayers",
			Reason: fmt.Sprintf("at most %d players", models.MaxPlayers),
		}
	}

	g := &models.Game{
		ID:           uuid.NewString(),
		DateTime:     at.UTC().Truncate(time.Millisecond),
		Level:        in.Level,
		Venue:        s.resolveVenue(ctx, in.Venue),
		CreatedAt:    s.now().UTC(),
		CreatedBy:    in.CreatedBy,
		CreatorEmail: in.CreatorEmail,
		Players:      make([]models.Player, 0, len(in.InitialPlayers)),
	}

	for _, p := range in.InitialPlayers {
		p.ID = uuid.NewString()
		if p.UserID == "" {
			p.UserID = models.AnonymousUserID
		}
		g.Players = append(g.Players, p)
	}

	if err := s.store.CreateGame(ctx, g); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.notify(models.Event{Type: models.EventGameCreated, Game: *g})

	return g, nil
}

func (s *GameService) Get(ctx context.Context, id string) (*models.Game, error) {
	const op = "services.games.Get"

	g, err := s.store.GetGame(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return g, nil
}

// List returns the games scheduled in [from, to] ordered by time. Games whose
// attributes disappeared between the index read and the load are skipped.
func (s *GameService) List(ctx context.Context, from, to time.Time) ([]models.Game, error) {
	const op = "services.games.List"

	scheduled, err := s.store.Schedule(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	loaded := make([]*models.Game, len(scheduled))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(listConcurrency)
	for i, sg := range scheduled {
		eg.Go(func() error {
			g, err := s.store.LoadScheduled(egCtx, sg)
			if errors.Is(err, storage.ErrNotFound) {
				s.log.Warn("scheduled game has no attributes",
					slog.String("operation", op),
					slog.String("game_id", sg.ID),
				)
				return nil
			}
			if err != nil {
				return err
			}
			loaded[i] = g
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	games := make([]models.Game, 0, len(loaded))
	for _, g := range loaded {
		if g != nil {
			games = append(games, *g)
		}
	}

	sort.SliceStable(games, func(i, j int) bool {
		return games[i].DateTime.Before(games[j].DateTime)
	})

	return games, nil
}

// ListUpcoming returns games from now on within horizon.
func (s *GameService) ListUpcoming(ctx context.Context, horizon time.Duration) ([]models.Game, error) {
	now := s.now()
	return s.List(ctx, now, now.Add(horizon))
}

// Join puts p on the roster of game id. A player without id gets a fresh one;
// resending the same id is a successful no-op.
func (s *GameService) Join(ctx context.Context, id string, p models.Player) (*models.Player, error) {
	const op = "services.games.Join"

	if strings.TrimSpace(p.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.UserID == "" {
		p.UserID = models.AnonymousUserID
	}

	added, err := s.store.JoinGame(ctx, id, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if added {
		s.notifyJoined(ctx, id, p)
	}

	return &p, nil
}

// Leave removes playerID from game id. requesterID must be the player's own
// user or the game's creator.
func (s *GameService) Leave(ctx context.Context, id, playerID, requesterID string) error {
	const op = "services.games.Leave"

	if strings.TrimSpace(playerID) == "" {
		return &ValidationError{Field: "playerId", Reason: "is required"}
	}
	if strings.TrimSpace(requesterID) == "" {
		return &ValidationError{Field: "userId", Reason: "is required"}
	}

	removed, err := s.store.LeaveGame(ctx, id, playerID, requesterID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !removed {
		s.log.Debug("player was not on the roster",
			slog.String("operation", op),
			slog.String("game_id", id),
			slog.String("player_id", playerID),
		)
	}

	return nil
}

func (s *GameService) IsPlayer(ctx context.Context, id, userID string) (bool, error) {
	const op = "services.games.IsPlayer"

	ok, err := s.store.IsPlayer(ctx, id, userID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

// Wait blocks until in-flight notifications are handed off.
func (s *GameService) Wait() {
	s.wg.Wait()
}

func (s *GameService) resolveVenue(ctx context.Context, v models.Venue) models.Venue {
	if v.ID == "" || s.venues == nil {
		return v
	}

	known, err := s.venues.Venue(ctx, v.ID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("venue lookup failed",
				slog.String("venue_id", v.ID),
				slog.String("error", err.Error()),
			)
		}
		return v
	}

	return *known
}

func (s *GameService) notifyJoined(ctx context.Context, id string, p models.Player) {
	const op = "services.games.notifyJoined"

	g, err := s.store.GetGame(ctx, id)
	if err != nil {
		s.log.Warn("load game for notification",
			slog.String("operation", op),
			slog.String("game_id", id),
			slog.String("error", err.Error()),
		)
		return
	}

	s.notify(models.Event{Type: models.EventPlayerJoined, Game: *g, Player: &p})
}

// notify publishes e in the background. The originating request never waits
// for it and never sees its error.
func (s *GameService) notify(e models.Event) {
	const op = "services.games.notify"

	if s.notifier == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		if err := s.notifier.Publish(ctx, e); err != nil {
			s.log.Error("notification failed",
				slog.String("operation", op),
				slog.String("event", string(e.Type)),
				slog.String("game_id", e.Game.ID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

func parseDateTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
