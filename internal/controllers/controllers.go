package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Surf-N-Code/padel-booking/internal/services"
	"github.com/Surf-N-Code/padel-booking/internal/storage"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrBadRequest     = errors.New("bad request")
	ErrParsingJSON    = errors.New("invalid JSON")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrGetGames       = errors.New("failed to get games")
	ErrGameFull       = errors.New("game is full")
	ErrAlreadyJoined  = errors.New("you already joined this game")
	ErrExists         = errors.New("already exists")
	ErrPlayerIDTaken  = errors.New("player id is already in use")
	ErrForbidden      = errors.New("forbidden")
	ErrCreate         = errors.New("failed to create")
	ErrUpdate         = errors.New("failed to update")
	ErrJoin           = errors.New("failed to join game")
	ErrLeave          = errors.New("failed to leave game")
	ErrRegister       = errors.New("failed to register")
	ErrLogin          = errors.New("failed to login")
	ErrGetProfile     = errors.New("failed to get profile")
	ErrGetVenues      = errors.New("failed to get venues")
	ErrMissingEmail   = errors.New("missing email")
	ErrMissingPass    = errors.New("missing password")
	ErrEncoding       = errors.New("failed to encode")
	ErrInvalidRequest = errors.New("invalid request")
)

// writeError maps a service error to a status code and writes fallback as
// the body for server side failures. Client errors carry their own message.
func writeError(w http.ResponseWriter, log *slog.Logger, op string, err error, fallback error) {
	var vErr *services.ValidationError

	switch {
	case errors.As(err, &vErr):
		http.Error(w, vErr.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, ErrNotFound.Error(), http.StatusNotFound)
		return
	case errors.Is(err, storage.ErrGameFull):
		http.Error(w, ErrGameFull.Error(), http.StatusConflict)
		return
	case errors.Is(err, storage.ErrAlreadyJoined):
		http.Error(w, ErrAlreadyJoined.Error(), http.StatusConflict)
		return
	case errors.Is(err, storage.ErrPlayerIDTaken):
		http.Error(w, ErrPlayerIDTaken.Error(), http.StatusConflict)
		return
	case errors.Is(err, storage.ErrForbidden):
		http.Error(w, ErrForbidden.Error(), http.StatusForbidden)
		return
	case errors.Is(err, storage.ErrExists):
		http.Error(w, ErrExists.Error(), http.StatusConflict)
		return
	}

	log.Error(fallback.Error(), slog.String("operation", op), slog.String("error", err.Error()))
	http.Error(w, fallback.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, op string, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error(ErrEncoding.Error(), slog.String("operation", op), slog.String("error", err.Error()))
	}
}
