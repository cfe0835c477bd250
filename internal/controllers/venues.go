package controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Surf-N-Code/padel-booking/internal/models"

	"github.com/go-chi/chi/v5"
)

type VenueServicer interface {
	List(ctx context.Context) ([]models.Venue, error)
	Import(ctx context.Context, venues []models.Venue) error
	Rename(ctx context.Context, id, label string) (*models.Venue, error)
}

type VenueController struct {
	service VenueServicer
	log     *slog.Logger
}

func NewVenueController(s VenueServicer, log *slog.Logger) *VenueController {
	return &VenueController{service: s, log: log}
}

type RenameVenueRequest struct {
	Label string `json:"label"`
}

func (c *VenueController) List(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.venues.List"

	venues, err := c.service.List(r.Context())
	if err != nil {
		writeError(w, c.log, op, err, ErrGetVenues)
		return
	}

	writeJSON(w, c.log, op, http.StatusOK, venues)
}

// Import replaces the venue directory with the posted list.
func (c *VenueController) Import(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.venues.Import"

	var venues []models.Venue
	if err := json.NewDecoder(r.Body).Decode(&venues); err != nil {
		c.log.Error(ErrParsingJSON.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrParsingJSON.Error(), http.StatusBadRequest)
		return
	}

	if err := c.service.Import(r.Context(), venues); err != nil {
		writeError(w, c.log, op, err, ErrUpdate)
		return
	}

	writeJSON(w, c.log, op, http.StatusOK, venues)
}

func (c *VenueController) Rename(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.venues.Rename"

	var req RenameVenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.log.Error(ErrParsingJSON.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrParsingJSON.Error(), http.StatusBadRequest)
		return
	}

	v, err := c.service.Rename(r.Context(), chi.URLParam(r, "id"), req.Label)
	if err != nil {
		writeError(w, c.log, op, err, ErrUpdate)
		return
	}

	writeJSON(w, c.log, op, http.StatusOK, v)
}
