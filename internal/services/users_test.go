package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/Surf-N-Code/padel-booking/internal/models"
	"github.com/Surf-N-Code/padel-booking/internal/storage"
	"github.com/Surf-N-Code/padel-booking/internal/storage/mariadb"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*mariadb.Storage, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return &mariadb.Storage{DB: gormDB}, mock
}

var profileColumns = []string{
	"id", "email", "name", "last_name", "padel_level", "telegram_id",
	"notifications_enabled", "created_at", "updated_at",
}

func TestUserService_GetProfile(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	service := NewUserService(db, discardLogger())
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `user_profiles` WHERE `user_profiles`.`id` = ?")).
			WithArgs(7, 1).
			WillReturnRows(sqlmock.NewRows(profileColumns).
				AddRow(7, "ana@example.com", "Ana", "Lopez", "advanced", 1234, true, now, now))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `favorite_venues` WHERE `favorite_venues`.`user_id` = ?")).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "venue_id"}).
				AddRow(1, 7, "court-one").
				AddRow(2, 7, "padel-city"))

		u, err := service.GetProfile(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, "Ana", u.Name)
		assert.Equal(t, models.LevelAdvanced, u.PadelLevel)
		require.NotNil(t, u.TelegramID)
		assert.Equal(t, int64(1234), *u.TelegramID)
		assert.Equal(t, []string{"court-one", "padel-city"}, u.FavoriteVenueIDs())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `user_profiles`")).
			WillReturnError(gorm.ErrRecordNotFound)

		u, err := service.GetProfile(context.Background(), 8)

		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.Nil(t, u)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserService_CreateProfile(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	service := NewUserService(db, discardLogger())

	t.Run("success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `user_profiles`")).
			WillReturnResult(sqlmock.NewResult(3, 1))
		mock.ExpectCommit()

		u := &models.UserProfile{ID: 3, Email: "  Ana@Example.com ", NotificationsEnabled: true}
		err := service.CreateProfile(context.Background(), u)

		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", u.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `user_profiles`")).
			WillReturnError(&mysqldrv.MySQLError{Number: 1062, Message: "Duplicate entry"})
		mock.ExpectRollback()

		err := service.CreateProfile(context.Background(), &models.UserProfile{ID: 4, Email: "ana@example.com"})

		assert.ErrorIs(t, err, storage.ErrExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `user_profiles`")).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		err := service.CreateProfile(context.Background(), &models.UserProfile{ID: 5, Email: "bob@example.com"})

		assert.ErrorIs(t, err, storage.ErrCreateFailed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("validation", func(t *testing.T) {
		var vErr *ValidationError

		err := service.CreateProfile(context.Background(), &models.UserProfile{ID: 6})
		assert.ErrorAs(t, err, &vErr)

		err = service.CreateProfile(context.Background(), &models.UserProfile{ID: 6, Email: "x@y.z", PadelLevel: "pro"})
		assert.ErrorAs(t, err, &vErr)
		assert.Equal(t, "padelLevel", vErr.Field)
	})
}

func TestUserService_UserByTelegramID(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	service := NewUserService(db, discardLogger())
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `user_profiles` WHERE telegram_id = ?")).
			WithArgs(555, 1).
			WillReturnRows(sqlmock.NewRows(profileColumns).
				AddRow(9, "ana@example.com", "Ana", "", "mixed", 555, true, now, now))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `favorite_venues`")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "venue_id"}))

		u, err := service.UserByTelegramID(context.Background(), 555)

		require.NoError(t, err)
		assert.Equal(t, int64(9), u.ID)
		assert.Empty(t, u.FavoriteVenueIDs())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unlinked chat", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `user_profiles` WHERE telegram_id = ?")).
			WithArgs(556, 1).
			WillReturnRows(sqlmock.NewRows(profileColumns))

		_, err := service.UserByTelegramID(context.Background(), 556)

		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserService_UsersFavoring(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	service := NewUserService(db, discardLogger())
	now := time.Now()

	mock.ExpectQuery("FROM `user_profiles` JOIN favorite_venues ON favorite_venues.user_id = user_profiles.id WHERE favorite_venues.venue_id = \\?").
		WithArgs("court-one").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow(1, "a@example.com", "A", "", "", 11, true, now, now).
			AddRow(2, "b@example.com", "B", "", "", nil, false, now, now))

	users, err := service.UsersFavoring(context.Background(), "court-one")

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Nil(t, users[1].TelegramID)
	assert.False(t, users[1].NotificationsEnabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_UsersByIDs(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	service := NewUserService(db, discardLogger())

	t.Run("empty input skips the query", func(t *testing.T) {
		users, err := service.UsersByIDs(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, users)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `user_profiles` WHERE id IN (?,?)")).
			WithArgs(1, 2).
			WillReturnError(errors.New("boom"))

		_, err := service.UsersByIDs(context.Background(), []int64{1, 2})

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserService_LinkTelegram(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	service := NewUserService(db, discardLogger())

	t.Run("success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE `user_profiles` SET `telegram_id`=?")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := service.LinkTelegram(context.Background(), 1, 777)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE `user_profiles` SET `telegram_id`=?")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := service.LinkTelegram(context.Background(), 2, 777)

		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFavoritesFor(t *testing.T) {
	got := favoritesFor(3, []string{"a", " b ", "", "a"})

	require.Len(t, got, 2)
	assert.Equal(t, models.FavoriteVenue{UserID: 3, VenueID: "a"}, got[0])
	assert.Equal(t, "b", got[1].VenueID)
}

func TestUserService_UpdateProfile(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	service := NewUserService(db, discardLogger())
	now := time.Now()

	t.Run("keeps empty fields and replaces favorites", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `user_profiles` WHERE `user_profiles`.`id` = ?")).
			WithArgs(7, 1).
			WillReturnRows(sqlmock.NewRows(profileColumns).
				AddRow(7, "ana@example.com", "Ana", "Lopez", "advanced", nil, true, now, now))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE `user_profiles` SET")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `favorite_venues` WHERE user_id = ?")).
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `favorite_venues`")).
			WillReturnResult(sqlmock.NewResult(1, 2))
		mock.ExpectCommit()

		u, err := service.UpdateProfile(context.Background(), 7, ProfileUpdate{
			LastName:       "García",
			FavoriteVenues: []string{"court-one", "padel-city"},
		})

		require.NoError(t, err)
		assert.Equal(t, "Ana", u.Name)
		assert.Equal(t, "García", u.LastName)
		assert.Equal(t, models.LevelAdvanced, u.PadelLevel)
		assert.Equal(t, []string{"court-one", "padel-city"}, u.FavoriteVenueIDs())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `user_profiles`")).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectRollback()

		_, err := service.UpdateProfile(context.Background(), 9, ProfileUpdate{Name: "X"})

		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := service.UpdateProfile(context.Background(), 7, ProfileUpdate{PadelLevel: "pro"})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "padelLevel", vErr.Field)
	})
}

func TestUserService_FavoriteVenueIDs(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	service := NewUserService(db, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `venue_id` FROM `favorite_venues` WHERE user_id = ?")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"venue_id"}).AddRow("court-one").AddRow("padel-city"))

	ids, err := service.FavoriteVenueIDs(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, []string{"court-one", "padel-city"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
