package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Surf-N-Code/padel-booking/internal/models"
	"github.com/Surf-N-Code/padel-booking/internal/storage"

	"github.com/redis/go-redis/v9"
)

// ScheduledGame is one entry of the schedule index.
type ScheduledGame struct {
	ID       string
	DateTime time.Time
}

// CreateGame writes the attribute hash, the schedule index entry and the
// initial roster in a single MULTI/EXEC block.
func (s *Storage) CreateGame(ctx context.Context, g *models.Game) error {
	const op = "storage.redis.CreateGame"

	if len(g.Players) > models.MaxPlayers {
		return fmt.Errorf("%s: %w", op, storage.ErrGameFull)
	}

	venue, err := json.Marshal(g.Venue)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	members := make([]any, 0, len(g.Players))
	for _, p := range g.Players {
		raw, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		members = append(members, string(raw))
	}

	// the score keeps milliseconds, the display copy must not say more
	at := g.DateTime.UTC().Truncate(time.Millisecond)

	fields := map[string]any{
		"id":           g.ID,
		"dateTime":     at.Format(time.RFC3339Nano),
		"level":        string(g.Level),
		"venue":        string(venue),
		"createdAt":    g.CreatedAt.UTC().Format(time.RFC3339Nano),
		"createdBy":    g.CreatedBy,
		"creatorEmail": g.CreatorEmail,
	}

	_, err = s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, gameKey(g.ID), fields)
		pipe.ZAdd(ctx, scheduleKey, redis.Z{
			Score:  float64(at.UnixMilli()),
			Member: g.ID,
		})
		if len(members) > 0 {
			pipe.SAdd(ctx, playersKey(g.ID), members...)
		}
		return nil
	})
	if err != nil {
		return unavailable(op, err)
	}

	return nil
}

// GetGame returns the game with the schedule index as the authority for its
// time. A game missing either its attributes or its index entry is not found.
func (s *Storage) GetGame(ctx context.Context, id string) (*models.Game, error) {
	const op = "storage.redis.GetGame"

	pipe := s.Client.Pipeline()
	attrsCmd := pipe.HGetAll(ctx, gameKey(id))
	scoreCmd := pipe.ZScore(ctx, scheduleKey, id)
	playersCmd := pipe.SMembers(ctx, playersKey(id))
	if _, err := pipe.Exec(ctx); err != nil && !isNil(err) {
		return nil, unavailable(op, err)
	}

	attrs := attrsCmd.Val()
	if len(attrs) == 0 {
		return nil, fmt.Errorf("%s: game %s: %w", op, id, storage.ErrNotFound)
	}

	score, err := scoreCmd.Result()
	if isNil(err) {
		return nil, fmt.Errorf("%s: game %s has no schedule entry: %w", op, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, unavailable(op, err)
	}

	g, err := decodeGame(id, attrs, score, playersCmd.Val())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return g, nil
}

// LoadScheduled reads attributes and roster for a game found in the schedule
// index. The index score is passed in and used as the game time.
func (s *Storage) LoadScheduled(ctx context.Context, sg ScheduledGame) (*models.Game, error) {
	const op = "storage.redis.LoadScheduled"

	pipe := s.Client.Pipeline()
	attrsCmd := pipe.HGetAll(ctx, gameKey(sg.ID))
	playersCmd := pipe.SMembers(ctx, playersKey(sg.ID))
	if _, err := pipe.Exec(ctx); err != nil && !isNil(err) {
		return nil, unavailable(op, err)
	}

	attrs := attrsCmd.Val()
	if len(attrs) == 0 {
		return nil, fmt.Errorf("%s: game %s: %w", op, sg.ID, storage.ErrNotFound)
	}

	g, err := decodeGame(sg.ID, attrs, float64(sg.DateTime.UnixMilli()), playersCmd.Val())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return g, nil
}

// Schedule returns the ids of games whose time lies in [from, to], as stored
// in the schedule index.
func (s *Storage) Schedule(ctx context.Context, from, to time.Time) ([]ScheduledGame, error) {
	const op = "storage.redis.Schedule"

	zs, err := s.Client.ZRangeByScoreWithScores(ctx, scheduleKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(from.UnixMilli(), 10),
		Max: strconv.FormatInt(to.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, unavailable(op, err)
	}

	res := make([]ScheduledGame, 0, len(zs))
	for _, z := range zs {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		res = append(res, ScheduledGame{ID: id, DateTime: scoreToTime(z.Score)})
	}

	return res, nil
}

func decodeGame(id string, attrs map[string]string, score float64, members []string) (*models.Game, error) {
	g := &models.Game{
		ID:           id,
		DateTime:     scoreToTime(score),
		Level:        models.Level(attrs["level"]),
		CreatedBy:    attrs["createdBy"],
		CreatorEmail: attrs["creatorEmail"],
		Players:      make([]models.Player, 0, len(members)),
	}

	if raw := attrs["venue"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &g.Venue); err != nil {
			// Older records kept the plain venue name.
			g.Venue = models.Venue{ID: raw, Label: raw}
		}
	} else if loc := attrs["location"]; loc != "" {
		g.Venue = models.Venue{ID: loc, Label: loc}
	}

	if raw := attrs["createdAt"]; raw != "" {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			g.CreatedAt = t
		}
	}

	players, err := decodePlayers(members)
	if err != nil {
		return nil, err
	}
	g.Players = append(g.Players, players...)

	return g, nil
}

func decodePlayers(members []string) ([]models.Player, error) {
	players := make([]models.Player, 0, len(members))
	for _, raw := range members {
		var p models.Player
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("decode player %q: %w", raw, err)
		}
		players = append(players, p)
	}
	return players, nil
}

func scoreToTime(score float64) time.Time {
	return time.UnixMilli(int64(score)).UTC()
}
