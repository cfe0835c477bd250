package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Surf-N-Code/padel-booking/internal/models"
	"github.com/Surf-N-Code/padel-booking/internal/storage"
)

func (s *Storage) Venues(ctx context.Context) ([]models.Venue, error) {
	const op = "storage.redis.Venues"

	raw, err := s.Client.Get(ctx, venuesKey).Result()
	if isNil(err) {
		return []models.Venue{}, nil
	}
	if err != nil {
		return nil, unavailable(op, err)
	}

	var venues []models.Venue
	if err := json.Unmarshal([]byte(raw), &venues); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return venues, nil
}

func (s *Storage) Venue(ctx context.Context, id string) (*models.Venue, error) {
	const op = "storage.redis.Venue"

	venues, err := s.Venues(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range venues {
		if venues[i].ID == id {
			return &venues[i], nil
		}
	}

	return nil, fmt.Errorf("%s: venue %s: %w", op, id, storage.ErrNotFound)
}

// SaveVenues replaces the whole venue directory.
func (s *Storage) SaveVenues(ctx context.Context, venues []models.Venue) error {
	const op = "storage.redis.SaveVenues"

	raw, err := json.Marshal(venues)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.Client.Set(ctx, venuesKey, raw, 0).Err(); err != nil {
		return unavailable(op, err)
	}

	return nil
}

// RenameVenue changes the label of one venue. The read and the write are not
// atomic; the directory is only edited by admins.
func (s *Storage) RenameVenue(ctx context.Context, id, label string) (*models.Venue, error) {
	const op = "storage.redis.RenameVenue"

	venues, err := s.Venues(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	idx := -1
	for i := range venues {
		if venues[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%s: venue %s: %w", op, id, storage.ErrNotFound)
	}

	venues[idx].Label = label
	if err := s.SaveVenues(ctx, venues); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &venues[idx], nil
}
