package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Surf-N-Code/padel-booking/internal/models"
)

type VenueStore interface {
	Venues(ctx context.Context) ([]models.Venue, error)
	Venue(ctx context.Context, id string) (*models.Venue, error)
	SaveVenues(ctx context.Context, venues []models.Venue) error
	RenameVenue(ctx context.Context, id, label string) (*models.Venue, error)
}

type VenueService struct {
	store VenueStore
	log   *slog.Logger
}

func NewVenueService(store VenueStore, log *slog.Logger) *VenueService {
	return &VenueService{store: store, log: log}
}

func (s *VenueService) List(ctx context.Context) ([]models.Venue, error) {
	const op = "services.venues.List"

	venues, err := s.store.Venues(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return venues, nil
}

func (s *VenueService) Get(ctx context.Context, id string) (*models.Venue, error) {
	const op = "services.venues.Get"

	v, err := s.store.Venue(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

// Import replaces the directory. Ids must be present and unique.
func (s *VenueService) Import(ctx context.Context, venues []models.Venue) error {
	const op = "services.venues.Import"

	seen := make(map[string]struct{}, len(venues))
	for i := range venues {
		venues[i].ID = strings.TrimSpace(venues[i].ID)
		venues[i].Label = strings.TrimSpace(venues[i].Label)
		if venues[i].ID == "" {
			return &ValidationError{Field: fmt.Sprintf("venues[%d].id", i), Reason: "is required"}
		}
		if venues[i].Label == "" {
			venues[i].Label = venues[i].ID
		}
		if _, ok := seen[venues[i].ID]; ok {
			return &ValidationError{Field: fmt.Sprintf("venues[%d].id", i), Reason: "is duplicated"}
		}
		seen[venues[i].ID] = struct{}{}
	}

	if err := s.store.SaveVenues(ctx, venues); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("venue directory replaced", slog.Int("count", len(venues)))

	return nil
}

func (s *VenueService) Rename(ctx context.Context, id, label string) (*models.Venue, error) {
	const op = "services.venues.Rename"

	label = strings.TrimSpace(label)
	if label == "" {
		return nil, &ValidationError{Field: "label", Reason: "is required"}
	}

	v, err := s.store.RenameVenue(ctx, id, label)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}
