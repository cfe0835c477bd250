package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Surf-N-Code/padel-booking/internal/models"
	"github.com/Surf-N-Code/padel-booking/internal/storage"
	"github.com/Surf-N-Code/padel-booking/internal/storage/mariadb"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

type UserService struct {
	storage *mariadb.Storage
	log     *slog.Logger
}

func NewUserService(s *mariadb.Storage, log *slog.Logger) *UserService {
	return &UserService{
		storage: s,
		log:     log,
	}
}

// ProfileUpdate carries the editable profile fields. Zero values keep the
// stored value; FavoriteVenues replaces the list when not nil.
type ProfileUpdate struct {
	Name                 string
	LastName             string
	PadelLevel           models.Level
	TelegramID           *int64
	NotificationsEnabled *bool
	FavoriteVenues       []string
}

func (s *UserService) CreateProfile(ctx context.Context, u *models.UserProfile) error {
	const op = "services.users.CreateProfile"

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Email == "" {
		return &ValidationError{Field: "email", Reason: "is required"}
	}
	if u.PadelLevel != "" && !u.PadelLevel.Valid() {
		return &ValidationError{Field: "padelLevel", Reason: fmt.Sprintf("unknown level %q", u.PadelLevel)}
	}

	if err := s.storage.DB.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrExists)
		}
		return fmt.Errorf("%s: %w: %w", op, storage.ErrCreateFailed, err)
	}

	return nil
}

func (s *UserService) GetProfile(ctx context.Context, id int64) (*models.UserProfile, error) {
	const op = "services.users.GetProfile"

	var u models.UserProfile
	if err := s.storage.DB.WithContext(ctx).Preload("FavoriteVenues").First(&u, id).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return &u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (*models.UserProfile, error) {
	const op = "services.users.UpdateProfile"

	if upd.PadelLevel != "" && !upd.PadelLevel.Valid() {
		return nil, &ValidationError{Field: "padelLevel", Reason: fmt.Sprintf("unknown level %q", upd.PadelLevel)}
	}

	var u models.UserProfile
	err := s.storage.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, id).Error; err != nil {
			return notFound(err)
		}

		if upd.Name != "" {
			u.Name = upd.Name
		}
		if upd.LastName != "" {
			u.LastName = upd.LastName
		}
		if upd.PadelLevel != "" {
			u.PadelLevel = upd.PadelLevel
		}
		if upd.TelegramID != nil {
			u.TelegramID = upd.TelegramID
		}
		if upd.NotificationsEnabled != nil {
			u.NotificationsEnabled = *upd.NotificationsEnabled
		}

		if err := tx.Omit("FavoriteVenues").Save(&u).Error; err != nil {
			if isDuplicate(err) {
				return storage.ErrExists
			}
			return fmt.Errorf("%w: %w", storage.ErrUpdateFailed, err)
		}

		if upd.FavoriteVenues == nil {
			return tx.Where("user_id = ?", id).Find(&u.FavoriteVenues).Error
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.FavoriteVenue{}).Error; err != nil {
			return fmt.Errorf("%w: %w", storage.ErrUpdateFailed, err)
		}

		u.FavoriteVenues = favoritesFor(id, upd.FavoriteVenues)
		if len(u.FavoriteVenues) == 0 {
			return nil
		}

		if err := tx.Create(&u.FavoriteVenues).Error; err != nil {
			return fmt.Errorf("%w: %w", storage.ErrUpdateFailed, err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &u, nil
}

// LinkTelegram attaches a chat id to the account.
func (s *UserService) LinkTelegram(ctx context.Context, id, chatID int64) error {
	const op = "services.users.LinkTelegram"

	res := s.storage.DB.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("id = ?", id).
		Update("telegram_id", chatID)
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return fmt.Errorf("%s: %w", op, storage.ErrExists)
		}
		return fmt.Errorf("%s: %w: %w", op, storage.ErrUpdateFailed, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

func (s *UserService) FavoriteVenueIDs(ctx context.Context, id int64) ([]string, error) {
	const op = "services.users.FavoriteVenueIDs"

	var ids []string
	if err := s.storage.DB.WithContext(ctx).
		Model(&models.FavoriteVenue{}).
		Where("user_id = ?", id).
		Pluck("venue_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ids, nil
}

// UsersFavoring returns the accounts that marked venueID as favorite.
func (s *UserService) UsersFavoring(ctx context.Context, venueID string) ([]models.UserProfile, error) {
	const op = "services.users.UsersFavoring"

	var users []models.UserProfile
	if err := s.storage.DB.WithContext(ctx).
		Joins("JOIN favorite_venues ON favorite_venues.user_id = user_profiles.id").
		Where("favorite_venues.venue_id = ?", venueID).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

func (s *UserService) UsersByIDs(ctx context.Context, ids []int64) ([]models.UserProfile, error) {
	const op = "services.users.UsersByIDs"

	if len(ids) == 0 {
		return nil, nil
	}

	var users []models.UserProfile
	if err := s.storage.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

func (s *UserService) UserByTelegramID(ctx context.Context, chatID int64) (*models.UserProfile, error) {
	const op = "services.users.UserByTelegramID"

	var u models.UserProfile
	if err := s.storage.DB.WithContext(ctx).
		Preload("FavoriteVenues").
		Where("telegram_id = ?", chatID).
		First(&u).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return &u, nil
}

func favoritesFor(userID int64, venueIDs []string) []models.FavoriteVenue {
	seen := make(map[string]struct{}, len(venueIDs))
	res := make([]models.FavoriteVenue, 0, len(venueIDs))
	for _, id := range venueIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, models.FavoriteVenue{UserID: userID, VenueID: id})
	}
	return res
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	return err
}

func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
