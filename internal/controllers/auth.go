package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Surf-N-Code/padel-booking/internal/models"
	"github.com/Surf-N-Code/padel-booking/internal/storage"
)

type SSOClient interface {
	Register(ctx context.Context, email, password string) (int64, error)
	Login(ctx context.Context, email, password string) (string, string, error)
}

type ProfileCreator interface {
	CreateProfile(ctx context.Context, u *models.UserProfile) error
}

type AuthController struct {
	log      *slog.Logger
	client   SSOClient
	profiles ProfileCreator
}

func NewAuthController(log *slog.Logger, client SSOClient, profiles ProfileCreator) *AuthController {
	return &AuthController{log: log, client: client, profiles: profiles}
}

type RegisterRequest struct {
	Email      string       `json:"email"`
	Password   string       `json:"password"`
	Name       string       `json:"name"`
	LastName   string       `json:"lastName"`
	PadelLevel models.Level `json:"padelLevel"`
	TelegramID *int64       `json:"telegramId"`
}

type RegisterResponse struct {
	UserID int64 `json:"userId"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.auth.Register"

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.log.Error(ErrParsingJSON.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrParsingJSON.Error(), http.StatusBadRequest)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		http.Error(w, ErrMissingEmail.Error(), http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		http.Error(w, ErrMissingPass.Error(), http.StatusBadRequest)
		return
	}

	userID, err := c.client.Register(r.Context(), email, req.Password)
	if err != nil {
		c.log.Error("sso.Register failed", slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrRegister.Error(), http.StatusInternalServerError)
		return
	}

	profile := &models.UserProfile{
		ID:                   userID,
		Email:                email,
		Name:                 strings.TrimSpace(req.Name),
		LastName:             strings.TrimSpace(req.LastName),
		PadelLevel:           req.PadelLevel,
		TelegramID:           req.TelegramID,
		NotificationsEnabled: true,
	}

	if err := c.profiles.CreateProfile(r.Context(), profile); err != nil {
		if errors.Is(err, storage.ErrExists) {
			http.Error(w, "user already exists", http.StatusConflict)
			return
		}
		writeError(w, c.log, op, err, ErrRegister)
		return
	}

	c.log.Info("user registered", slog.Int64("user_id", userID), slog.Bool("telegram_linked", req.TelegramID != nil))

	writeJSON(w, c.log, op, http.StatusCreated, RegisterResponse{UserID: userID})
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.auth.Login"

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.log.Error(ErrParsingJSON.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrLogin.Error(), http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		c.log.Error(ErrInvalidRequest.Error(), slog.String("operation", op))
		http.Error(w, ErrLogin.Error(), http.StatusBadRequest)
		return
	}

	cleanedEmail := strings.ToLower(strings.TrimSpace(req.Email))

	accessToken, refreshToken, err := c.client.Login(r.Context(), cleanedEmail, req.Password)
	if err != nil {
		c.log.Error("sso.Login failed", slog.String("error", err.Error()), slog.String("operation", op))
		http.Error(w, ErrLogin.Error(), http.StatusUnauthorized)
		return
	}

	writeJSON(w, c.log, op, http.StatusOK, LoginResponse{AccessToken: accessToken, RefreshToken: refreshToken})
}
