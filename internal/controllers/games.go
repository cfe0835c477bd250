package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Surf-N-Code/padel-booking/internal/middleware"
	"github.com/Surf-N-Code/padel-booking/internal/models"
	"github.com/Surf-N-Code/padel-booking/internal/services"
	"github.com/Surf-N-Code/padel-booking/internal/storage"

	"github.com/go-chi/chi/v5"
)

type GameServicer interface {
	Create(ctx context.Context, in services.CreateGameInput) (*models.Game, error)
	Get(ctx context.Context, id string) (*models.Game, error)
	List(ctx context.Context, from, to time.Time) ([]models.Game, error)
	Join(ctx context.Context, id string, p models.Player) (*models.Player, error)
	Leave(ctx context.Context, id, playerID, requesterID string) error
	IsPlayer(ctx context.Context, id, userID string) (bool, error)
}

type ProfileGetter interface {
	GetProfile(ctx context.Context, id int64) (*models.UserProfile, error)
}

type PlayerRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	UserID   string `json:"userId"`
}

type CreateGameRequest struct {
	DateTime       string          `json:"dateTime"`
	Level          models.Level    `json:"level"`
	Venue          models.Venue    `json:"venue"`
	Location       string          `json:"location"`
	Players        []PlayerRequest `json:"players"`
	InitialPlayers []string        `json:"initialPlayers"`
}

type JoinRequest struct {
	GameID string        `json:"gameId"`
	Player PlayerRequest `json:"player"`
}

type LeaveRequest struct {
	GameID   string        `json:"gameId"`
	PlayerID string        `json:"playerId"`
	Player   PlayerRequest `json:"player"`
}

// GameResponse adds the derived roster fields to a game.
type GameResponse struct {
	models.Game
	Full           bool `json:"full"`
	AvailableSpots int  `json:"availableSpots"`
}

type IsPlayerResponse struct {
	IsPlayer bool `json:"isPlayer"`
}

func toResponse(g *models.Game) GameResponse {
	if g.Players == nil {
		g.Players = []models.Player{}
	}
	return GameResponse{Game: *g, Full: g.IsFull(), AvailableSpots: g.AvailableSpots()}
}

type GameController struct {
	service     GameServicer
	profiles    ProfileGetter
	listHorizon time.Duration
	log         *slog.Logger
	now         func() time.Time
}

func NewGameController(s GameServicer, profiles ProfileGetter, listHorizon time.Duration, log *slog.Logger) *GameController {
	return &GameController{
		service:     s,
		profiles:    profiles,
		listHorizon: listHorizon,
		log:         log,
		now:         time.Now,
	}
}

func (c *GameController) List(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.List"

	query := r.URL.Query()

	if id := query.Get("id"); id != "" {
		g, err := c.service.Get(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, c.log, op, http.StatusOK, []GameResponse{})
			return
		}
		if err != nil {
			writeError(w, c.log, op, err, ErrGetGames)
			return
		}
		writeJSON(w, c.log, op, http.StatusOK, []GameResponse{toResponse(g)})
		return
	}

	from := c.now()
	if v := query.Get("from"); v != "" {
		t, err := parseQueryTime(v)
		if err != nil {
			http.Error(w, "invalid from", http.StatusBadRequest)
			return
		}
		from = t
	}

	to := from.Add(c.listHorizon)
	if v := query.Get("to"); v != "" {
		t, err := parseQueryTime(v)
		if err != nil {
			http.Error(w, "invalid to", http.StatusBadRequest)
			return
		}
		to = t
	}

	if to.Before(from) {
		http.Error(w, "to is before from", http.StatusBadRequest)
		return
	}

	games, err := c.service.List(r.Context(), from, to)
	if err != nil {
		writeError(w, c.log, op, err, ErrGetGames)
		return
	}

	res := make([]GameResponse, 0, len(games))
	for i := range games {
		res = append(res, toResponse(&games[i]))
	}

	writeJSON(w, c.log, op, http.StatusOK, res)
}

func (c *GameController) GetByID(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.GetByID"

	g, err := c.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, c.log, op, err, ErrGetGames)
		return
	}

	writeJSON(w, c.log, op, http.StatusOK, toResponse(g))
}

func (c *GameController) Create(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Create"

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.log.Error(ErrParsingJSON.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrParsingJSON.Error(), http.StatusBadRequest)
		return
	}

	venue := req.Venue
	if venue.ID == "" && venue.Label == "" && req.Location != "" {
		venue = models.Venue{ID: req.Location, Label: req.Location}
	}

	in := services.CreateGameInput{
		DateTime:  req.DateTime,
		Level:     req.Level,
		Venue:     venue,
		CreatedBy: models.UserRosterID(userID),
	}

	if profile := c.profile(r.Context(), userID); profile != nil {
		in.CreatorEmail = profile.Email
	}

	for _, p := range req.Players {
		in.InitialPlayers = append(in.InitialPlayers, models.Player{
			Name:     strings.TrimSpace(p.Name),
			LastName: strings.TrimSpace(p.LastName),
			UserID:   p.UserID,
		})
	}
	for _, name := range req.InitialPlayers {
		if name = strings.TrimSpace(name); name != "" {
			in.InitialPlayers = append(in.InitialPlayers, models.Player{Name: name})
		}
	}

	g, err := c.service.Create(r.Context(), in)
	if err != nil {
		writeError(w, c.log, op, err, ErrCreate)
		return
	}

	c.log.Info("game created",
		slog.String("game_id", g.ID),
		slog.String("created_by", g.CreatedBy),
		slog.Time("date_time", g.DateTime),
	)

	writeJSON(w, c.log, op, http.StatusCreated, toResponse(g))
}

// Join handles both /games/{id}/join and /games/join with gameId in the body.
func (c *GameController) Join(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Join"

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.log.Error(ErrParsingJSON.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrParsingJSON.Error(), http.StatusBadRequest)
		return
	}

	gameID := gameIDFrom(r, req.GameID)
	if gameID == "" {
		http.Error(w, "game id is required", http.StatusBadRequest)
		return
	}

	p := models.Player{
		ID:       req.Player.ID,
		Name:     strings.TrimSpace(req.Player.Name),
		LastName: strings.TrimSpace(req.Player.LastName),
		UserID:   models.UserRosterID(userID),
	}
	// guests added by a signed-in user stay anonymous
	if req.Player.UserID == models.AnonymousUserID {
		p.UserID = models.AnonymousUserID
	}

	if p.Name == "" && p.UserID != models.AnonymousUserID {
		if profile := c.profile(r.Context(), userID); profile != nil {
			p.Name = profile.Name
			p.LastName = profile.LastName
		}
	}

	joined, err := c.service.Join(r.Context(), gameID, p)
	if err != nil {
		writeError(w, c.log, op, err, ErrJoin)
		return
	}

	g, err := c.service.Get(r.Context(), gameID)
	if err != nil {
		writeError(w, c.log, op, err, ErrJoin)
		return
	}

	writeJSON(w, c.log, op, http.StatusOK, struct {
		Player models.Player `json:"player"`
		Game   GameResponse  `json:"game"`
	}{Player: *joined, Game: toResponse(g)})
}

func (c *GameController) Leave(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Leave"

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	var req LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.log.Error(ErrParsingJSON.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrParsingJSON.Error(), http.StatusBadRequest)
		return
	}

	gameID := gameIDFrom(r, req.GameID)
	if gameID == "" {
		http.Error(w, "game id is required", http.StatusBadRequest)
		return
	}

	playerID := req.PlayerID
	if playerID == "" {
		playerID = req.Player.ID
	}

	if err := c.service.Leave(r.Context(), gameID, playerID, models.UserRosterID(userID)); err != nil {
		writeError(w, c.log, op, err, ErrLeave)
		return
	}

	writeJSON(w, c.log, op, http.StatusOK, map[string]bool{"success": true})
}

func (c *GameController) IsPlayer(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.IsPlayer"

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	isPlayer, err := c.service.IsPlayer(r.Context(), chi.URLParam(r, "id"), models.UserRosterID(userID))
	if err != nil {
		writeError(w, c.log, op, err, ErrGetGames)
		return
	}

	writeJSON(w, c.log, op, http.StatusOK, IsPlayerResponse{IsPlayer: isPlayer})
}

// profile is used for display defaults only; a missing profile is not an error.
func (c *GameController) profile(ctx context.Context, userID int64) *models.UserProfile {
	if c.profiles == nil {
		return nil
	}

	p, err := c.profiles.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.log.Warn("profile lookup failed", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		}
		return nil
	}

	return p
}

func gameIDFrom(r *http.Request, bodyID string) string {
	if id := chi.URLParam(r, "id"); id != "" {
		return id
	}
	return strings.TrimSpace(bodyID)
}

func parseQueryTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, v)
}
