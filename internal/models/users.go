package models

import (
	"strconv"
	"time"
)

// UserProfile keeps the padel specific part of an account. Credentials live in
// the SSO service, ID is the SSO user id.
type UserProfile struct {
	ID                   int64           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Email                string          `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name                 string          `json:"name" gorm:"type:varchar(100)"`
	LastName             string          `json:"lastName" gorm:"type:varchar(100)"`
	PadelLevel           Level           `json:"padelLevel" gorm:"type:varchar(20)"`
	TelegramID           *int64          `json:"telegramId,omitempty" gorm:"uniqueIndex"`
	NotificationsEnabled bool            `json:"notificationsEnabled" gorm:"default:true"`
	FavoriteVenues       []FavoriteVenue `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// RosterID is the value stored as Player.UserID for this account.
func (u *UserProfile) RosterID() string {
	return UserRosterID(u.ID)
}

func UserRosterID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (u *UserProfile) FavoriteVenueIDs() []string {
	ids := make([]string, 0, len(u.FavoriteVenues))
	for _, fv := range u.FavoriteVenues {
		ids = append(ids, fv.VenueID)
	}
	return ids
}

type FavoriteVenue struct {
	ID      int    `json:"id" gorm:"primary_key"`
	UserID  int64  `json:"user_id" gorm:"uniqueIndex:idx_user_venue;not null"`
	VenueID string `json:"venue_id" gorm:"type:varchar(255);uniqueIndex:idx_user_venue;not null"`
}
