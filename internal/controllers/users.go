package controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Surf-N-Code/padel-booking/internal/middleware"
	"github.com/Surf-N-Code/padel-booking/internal/models"
	"github.com/Surf-N-Code/padel-booking/internal/services"
)

type UserServicer interface {
	GetProfile(ctx context.Context, id int64) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, id int64, upd services.ProfileUpdate) (*models.UserProfile, error)
}

type UserController struct {
	service UserServicer
	log     *slog.Logger
}

func NewUserController(s UserServicer, log *slog.Logger) *UserController {
	return &UserController{service: s, log: log}
}

type ProfileResponse struct {
	*models.UserProfile
	FavoriteVenues []string `json:"favoriteVenues"`
}

type UpdateProfileRequest struct {
	Name                 string       `json:"name"`
	LastName             string       `json:"lastName"`
	PadelLevel           models.Level `json:"padelLevel"`
	FavoriteVenues       []string     `json:"favoriteVenues"`
	TelegramID           *int64       `json:"telegramId"`
	NotificationsEnabled *bool        `json:"notificationsEnabled"`
}

func (c *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.users.GetProfile"

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	u, err := c.service.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, c.log, op, err, ErrGetProfile)
		return
	}

	writeJSON(w, c.log, op, http.StatusOK, ProfileResponse{UserProfile: u, FavoriteVenues: u.FavoriteVenueIDs()})
}

func (c *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.users.UpdateProfile"

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.log.Error(ErrParsingJSON.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrParsingJSON.Error(), http.StatusBadRequest)
		return
	}

	u, err := c.service.UpdateProfile(r.Context(), userID, services.ProfileUpdate{
		Name:                 req.Name,
		LastName:             req.LastName,
		PadelLevel:           req.PadelLevel,
		TelegramID:           req.TelegramID,
		NotificationsEnabled: req.NotificationsEnabled,
		FavoriteVenues:       req.FavoriteVenues,
	})
	if err != nil {
		writeError(w, c.log, op, err, ErrUpdate)
		return
	}

	writeJSON(w, c.log, op, http.StatusOK, ProfileResponse{UserProfile: u, FavoriteVenues: u.FavoriteVenueIDs()})
}
