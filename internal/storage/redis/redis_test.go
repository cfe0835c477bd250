package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Surf-N-Code/padel-booking/internal/models"
	"github.com/Surf-N-Code/padel-booking/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStorage(t *testing.T) (*Storage, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewWithClient(client), mr
}

func testGame(id string, at time.Time, players ...models.Player) *models.Game {
	return &models.Game{
		ID:        id,
		DateTime:  at,
		Level:     models.LevelIntermediate,
		Venue:     models.Venue{ID: "padel-city", Label: "Padel City"},
		CreatedAt: at.Add(-24 * time.Hour),
		CreatedBy: "1",
		Players:   players,
	}
}

func player(id, userID string) models.Player {
	return models.Player{ID: id, Name: "Player " + id, UserID: userID}
}

func TestStorage_CreateGame(t *testing.T) {
	s, mr := setupStorage(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		g := testGame("g1", at, player("p1", "1"))

		require.NoError(t, s.CreateGame(ctx, g))

		assert.True(t, mr.Exists("game:g1"))
		assert.Equal(t, "intermediate", mr.HGet("game:g1", "level"))

		score, err := mr.ZScore(scheduleKey, "g1")
		require.NoError(t, err)
		assert.Equal(t, float64(at.UnixMilli()), score)

		members, err := mr.SMembers("game:g1:players")
		require.NoError(t, err)
		assert.Len(t, members, 1)
	})

	t.Run("without players", func(t *testing.T) {
		require.NoError(t, s.CreateGame(ctx, testGame("g2", at)))
		assert.False(t, mr.Exists("game:g2:players"))
	})

	t.Run("too many players", func(t *testing.T) {
		g := testGame("g3", at,
			player("a", "1"), player("b", "2"), player("c", "3"), player("d", "4"), player("e", "5"))

		err := s.CreateGame(ctx, g)

		assert.ErrorIs(t, err, storage.ErrGameFull)
		assert.False(t, mr.Exists("game:g3"))
	})

	t.Run("display time agrees with the index", func(t *testing.T) {
		g := testGame("g4", at.Add(1234567*time.Nanosecond))

		require.NoError(t, s.CreateGame(ctx, g))

		assert.Equal(t, "2025-03-01T18:00:00.001Z", mr.HGet("game:g4", "dateTime"))
		score, err := mr.ZScore(scheduleKey, "g4")
		require.NoError(t, err)
		assert.Equal(t, float64(at.UnixMilli()+1), score)

		stored, err := time.Parse(time.RFC3339Nano, mr.HGet("game:g4", "dateTime"))
		require.NoError(t, err)
		got, err := s.GetGame(ctx, "g4")
		require.NoError(t, err)
		assert.True(t, stored.Equal(got.DateTime))
	})
}

func TestStorage_GetGame(t *testing.T) {
	s, mr := setupStorage(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

	t.Run("round trip", func(t *testing.T) {
		g := testGame("g1", at, player("p1", "1"), player("p2", models.AnonymousUserID))
		require.NoError(t, s.CreateGame(ctx, g))

		got, err := s.GetGame(ctx, "g1")

		require.NoError(t, err)
		assert.Equal(t, "g1", got.ID)
		assert.True(t, at.Equal(got.DateTime))
		assert.Equal(t, g.Venue, got.Venue)
		assert.Equal(t, g.Level, got.Level)
		assert.True(t, g.CreatedAt.Equal(got.CreatedAt))
		assert.ElementsMatch(t, g.Players, got.Players)
	})

	t.Run("index is the time authority", func(t *testing.T) {
		require.NoError(t, s.CreateGame(ctx, testGame("g2", at)))
		moved := at.Add(2 * time.Hour)
		_, err := mr.ZAdd(scheduleKey, float64(moved.UnixMilli()), "g2")
		require.NoError(t, err)

		got, err := s.GetGame(ctx, "g2")

		require.NoError(t, err)
		assert.True(t, moved.Equal(got.DateTime))
	})

	t.Run("missing attributes", func(t *testing.T) {
		_, err := s.GetGame(ctx, "unknown")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("missing index entry", func(t *testing.T) {
		require.NoError(t, s.CreateGame(ctx, testGame("g3", at)))
		_, err := mr.ZRem(scheduleKey, "g3")
		require.NoError(t, err)

		_, err = s.GetGame(ctx, "g3")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("legacy location attribute", func(t *testing.T) {
		mr.HSet("game:old", "id", "old", "location", "Padel Club", "level", "mixed")
		_, err := mr.ZAdd(scheduleKey, float64(at.UnixMilli()), "old")
		require.NoError(t, err)

		got, err := s.GetGame(ctx, "old")

		require.NoError(t, err)
		assert.Equal(t, "Padel Club", got.Venue.Label)
		assert.Empty(t, got.Players)
	})
}

func TestStorage_Schedule(t *testing.T) {
	s, _ := setupStorage(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	// inserted out of order on purpose
	for _, h := range []int{5, 1, 3, 48} {
		id := fmt.Sprintf("g%d", h)
		require.NoError(t, s.CreateGame(ctx, testGame(id, base.Add(time.Duration(h)*time.Hour))))
	}

	got, err := s.Schedule(ctx, base, base.Add(24*time.Hour))

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "g1", got[0].ID)
	assert.Equal(t, "g3", got[1].ID)
	assert.Equal(t, "g5", got[2].ID)
	assert.True(t, base.Add(time.Hour).Equal(got[0].DateTime))

	t.Run("load scheduled", func(t *testing.T) {
		g, err := s.LoadScheduled(ctx, got[1])
		require.NoError(t, err)
		assert.Equal(t, "g3", g.ID)
		assert.True(t, got[1].DateTime.Equal(g.DateTime))
	})

	t.Run("empty range", func(t *testing.T) {
		got, err := s.Schedule(ctx, base.Add(-48*time.Hour), base.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestStorage_JoinGame(t *testing.T) {
	s, _ := setupStorage(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

	t.Run("fills up to capacity", func(t *testing.T) {
		require.NoError(t, s.CreateGame(ctx, testGame("g1", at, player("p1", "1"), player("p2", "2"))))

		added, err := s.JoinGame(ctx, "g1", player("p3", "3"))
		require.NoError(t, err)
		assert.True(t, added)

		added, err = s.JoinGame(ctx, "g1", player("p4", "4"))
		require.NoError(t, err)
		assert.True(t, added)

		_, err = s.JoinGame(ctx, "g1", player("p5", "5"))
		assert.ErrorIs(t, err, storage.ErrGameFull)

		players, err := s.Players(ctx, "g1")
		require.NoError(t, err)
		assert.Len(t, players, models.MaxPlayers)
	})

	t.Run("unknown game", func(t *testing.T) {
		_, err := s.JoinGame(ctx, "missing", player("p1", "1"))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("same player id is a no-op", func(t *testing.T) {
		require.NoError(t, s.CreateGame(ctx, testGame("g2", at)))
		p := player("p1", "1")

		added, err := s.JoinGame(ctx, "g2", p)
		require.NoError(t, err)
		assert.True(t, added)

		added, err = s.JoinGame(ctx, "g2", p)
		require.NoError(t, err)
		assert.False(t, added)

		players, err := s.Players(ctx, "g2")
		require.NoError(t, err)
		assert.Len(t, players, 1)
	})

	t.Run("same user twice", func(t *testing.T) {
		require.NoError(t, s.CreateGame(ctx, testGame("g3", at)))

		_, err := s.JoinGame(ctx, "g3", player("p1", "7"))
		require.NoError(t, err)

		_, err = s.JoinGame(ctx, "g3", player("p2", "7"))
		assert.ErrorIs(t, err, storage.ErrAlreadyJoined)

		players, err := s.Players(ctx, "g3")
		require.NoError(t, err)
		assert.Len(t, players, 1)
	})

	t.Run("anonymous players may repeat", func(t *testing.T) {
		require.NoError(t, s.CreateGame(ctx, testGame("g4", at)))

		for _, id := range []string{"a1", "a2"} {
			added, err := s.JoinGame(ctx, "g4", player(id, models.AnonymousUserID))
			require.NoError(t, err)
			assert.True(t, added)
		}
	})

	t.Run("player id held by another user", func(t *testing.T) {
		require.NoError(t, s.CreateGame(ctx, testGame("g5", at)))
		alice := models.Player{ID: "p1", Name: "Alice", UserID: "1"}
		bob := models.Player{ID: "p1", Name: "Bob", UserID: "2"}

		_, err := s.JoinGame(ctx, "g5", alice)
		require.NoError(t, err)

		added, err := s.JoinGame(ctx, "g5", bob)
		assert.ErrorIs(t, err, storage.ErrPlayerIDTaken)
		assert.False(t, added)

		players, err := s.Players(ctx, "g5")
		require.NoError(t, err)
		assert.Equal(t, []models.Player{alice}, players)

		ok, err := s.IsPlayer(ctx, "g5", "2")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("guest player id taken by a user", func(t *testing.T) {
		require.NoError(t, s.CreateGame(ctx, testGame("g6", at)))

		_, err := s.JoinGame(ctx, "g6", player("a1", models.AnonymousUserID))
		require.NoError(t, err)

		_, err = s.JoinGame(ctx, "g6", player("a1", "3"))
		assert.ErrorIs(t, err, storage.ErrPlayerIDTaken)
	})

	t.Run("guest retry with the same id is a no-op", func(t *testing.T) {
		require.NoError(t, s.CreateGame(ctx, testGame("g7", at)))
		guest := player("a1", models.AnonymousUserID)

		added, err := s.JoinGame(ctx, "g7", guest)
		require.NoError(t, err)
		assert.True(t, added)

		added, err = s.JoinGame(ctx, "g7", guest)
		require.NoError(t, err)
		assert.False(t, added)

		players, err := s.Players(ctx, "g7")
		require.NoError(t, err)
		assert.Len(t, players, 1)
	})
}

// Many clients racing for the last spots: exactly the free spots are taken.
func TestStorage_JoinGame_Concurrent(t *testing.T) {
	s, _ := setupStorage(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateGame(ctx, testGame("race", at, player("p0", "0"))))

	const clients = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		added   int
		full    int
		unknown []error
	)

	for i := 1; i <= clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := s.JoinGame(ctx, "race", player(fmt.Sprintf("p%d", i), fmt.Sprint(i)))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && ok:
				added++
			case errors.Is(err, storage.ErrGameFull):
				full++
			default:
				unknown = append(unknown, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, unknown)
	assert.Equal(t, models.MaxPlayers-1, added)
	assert.Equal(t, clients-(models.MaxPlayers-1), full)

	players, err := s.Players(ctx, "race")
	require.NoError(t, err)
	assert.Len(t, players, models.MaxPlayers)
}

func TestStorage_LeaveGame(t *testing.T) {
	s, _ := setupStorage(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateGame(ctx, testGame("g1", at,
		player("p1", "1"), player("p2", "2"), player("p3", "3"), player("p4", "4"))))

	t.Run("frees a spot", func(t *testing.T) {
		removed, err := s.LeaveGame(ctx, "g1", "p2", "2")
		require.NoError(t, err)
		assert.True(t, removed)

		added, err := s.JoinGame(ctx, "g1", player("p5", "5"))
		require.NoError(t, err)
		assert.True(t, added)
	})

	t.Run("non member is a no-op", func(t *testing.T) {
		removed, err := s.LeaveGame(ctx, "g1", "nobody", "9")
		require.NoError(t, err)
		assert.False(t, removed)

		players, err := s.Players(ctx, "g1")
		require.NoError(t, err)
		assert.Len(t, players, models.MaxPlayers)
	})

	t.Run("other users are refused", func(t *testing.T) {
		removed, err := s.LeaveGame(ctx, "g1", "p4", "9")
		assert.ErrorIs(t, err, storage.ErrForbidden)
		assert.False(t, removed)

		ok, err := s.IsPlayer(ctx, "g1", "4")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("creator removes another player", func(t *testing.T) {
		removed, err := s.LeaveGame(ctx, "g1", "p3", "1")
		require.NoError(t, err)
		assert.True(t, removed)
	})

	t.Run("repeated leave", func(t *testing.T) {
		removed, err := s.LeaveGame(ctx, "g1", "p1", "1")
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = s.LeaveGame(ctx, "g1", "p1", "1")
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("unknown game", func(t *testing.T) {
		removed, err := s.LeaveGame(ctx, "missing", "p1", "1")
		require.NoError(t, err)
		assert.False(t, removed)
	})
}

func TestStorage_IsPlayer(t *testing.T) {
	s, _ := setupStorage(t)
	ctx := context.Background()

	require.NoError(t, s.CreateGame(ctx, testGame("g1", time.Now(), player("p1", "42"))))

	ok, err := s.IsPlayer(ctx, "g1", "42")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsPlayer(ctx, "g1", "43")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorage_Unavailable(t *testing.T) {
	s, mr := setupStorage(t)
	mr.Close()

	_, err := s.GetGame(context.Background(), "g1")
	assert.ErrorIs(t, err, storage.ErrUnavailable)

	_, err = s.JoinGame(context.Background(), "g1", player("p1", "1"))
	assert.ErrorIs(t, err, storage.ErrUnavailable)
}

func TestStorage_Venues(t *testing.T) {
	s, _ := setupStorage(t)
	ctx := context.Background()

	t.Run("empty directory", func(t *testing.T) {
		venues, err := s.Venues(ctx)
		require.NoError(t, err)
		assert.Empty(t, venues)
	})

	venues := []models.Venue{
		{ID: "padel-city", Label: "Padel City", Link: "https://example.com/pc", AddressLines: []string{"Main St 1"}},
		{ID: "court-one", Label: "Court One"},
	}
	require.NoError(t, s.SaveVenues(ctx, venues))

	t.Run("list", func(t *testing.T) {
		got, err := s.Venues(ctx)
		require.NoError(t, err)
		assert.Equal(t, venues, got)
	})

	t.Run("by id", func(t *testing.T) {
		v, err := s.Venue(ctx, "court-one")
		require.NoError(t, err)
		assert.Equal(t, "Court One", v.Label)

		_, err = s.Venue(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("rename", func(t *testing.T) {
		v, err := s.RenameVenue(ctx, "court-one", "Court Number One")
		require.NoError(t, err)
		assert.Equal(t, "Court Number One", v.Label)

		got, err := s.Venue(ctx, "court-one")
		require.NoError(t, err)
		assert.Equal(t, "Court Number One", got.Label)

		_, err = s.RenameVenue(ctx, "missing", "x")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
