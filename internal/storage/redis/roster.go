package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Surf-N-Code/padel-booking/internal/models"
	"github.com/Surf-N-Code/padel-booking/internal/storage"

	"github.com/redis/go-redis/v9"
)

// Join result codes returned by joinScript.
const (
	joinAdded         = 1
	joinAlreadyMember = 2
	joinNoGame        = -1
	joinFull          = -2
	joinUserTaken     = -3
	joinIDTaken       = -4
)

// joinScript runs the existence check, the duplicate checks, the capacity
// check and the insert as one server side step, so no other roster mutation
// of the same game can interleave.
//
// KEYS[1] game hash, KEYS[2] roster set
// ARGV[1] capacity, ARGV[2] serialized player, ARGV[3] player id,
// ARGV[4] user id, ARGV[5] anonymous user id
var joinScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
local members = redis.call('SMEMBERS', KEYS[2])
for _, raw in ipairs(members) do
  local ok, p = pcall(cjson.decode, raw)
  if ok and type(p) == 'table' then
    if p['id'] == ARGV[3] then
      if p['userId'] == ARGV[4] then
        return 2
      end
      return -4
    end
    if ARGV[4] ~= '' and ARGV[4] ~= ARGV[5] and p['userId'] == ARGV[4] then
      return -3
    end
  end
end
if #members >= tonumber(ARGV[1]) then
  return -2
end
redis.call('SADD', KEYS[2], ARGV[2])
return 1
`)

// JoinGame adds p to the roster of game id. It returns true when the player
// was added and false when the same player (id and user) was already there.
// A player id held by another user is a conflict.
func (s *Storage) JoinGame(ctx context.Context, id string, p models.Player) (bool, error) {
	const op = "storage.redis.JoinGame"

	raw, err := json.Marshal(p)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	code, err := joinScript.Run(ctx, s.Client,
		[]string{gameKey(id), playersKey(id)},
		strconv.Itoa(models.MaxPlayers), string(raw), p.ID, p.UserID, models.AnonymousUserID,
	).Int()
	if err != nil {
		return false, unavailable(op, err)
	}

	switch code {
	case joinAdded:
		return true, nil
	case joinAlreadyMember:
		return false, nil
	case joinNoGame:
		return false, fmt.Errorf("%s: game %s: %w", op, id, storage.ErrNotFound)
	case joinFull:
		return false, fmt.Errorf("%s: game %s: %w", op, id, storage.ErrGameFull)
	case joinUserTaken:
		return false, fmt.Errorf("%s: game %s: %w", op, id, storage.ErrAlreadyJoined)
	case joinIDTaken:
		return false, fmt.Errorf("%s: game %s: player %s: %w", op, id, p.ID, storage.ErrPlayerIDTaken)
	default:
		return false, fmt.Errorf("%s: unexpected script result %d", op, code)
	}
}

// leaveScript removes every roster entry carrying the given player id. Only
// the player's own user or the game's creator may remove an entry; any other
// requester gets -1 and the roster is left untouched.
//
// KEYS[1] game hash, KEYS[2] roster set
// ARGV[1] player id, ARGV[2] requesting user id
var leaveScript = redis.NewScript(`
local creator = redis.call('HGET', KEYS[1], 'createdBy')
local members = redis.call('SMEMBERS', KEYS[2])
local matched = {}
for _, raw in ipairs(members) do
  local ok, p = pcall(cjson.decode, raw)
  if ok and type(p) == 'table' and p['id'] == ARGV[1] then
    if p['userId'] ~= ARGV[2] and creator ~= ARGV[2] then
      return -1
    end
    table.insert(matched, raw)
  end
end
local removed = 0
for _, raw in ipairs(matched) do
  removed = removed + redis.call('SREM', KEYS[2], raw)
end
return removed
`)

// LeaveGame removes the player with playerID from the roster on behalf of
// requesterID, who must be that player's user or the game's creator.
// Removing a player that is not on the roster is not an error.
func (s *Storage) LeaveGame(ctx context.Context, id, playerID, requesterID string) (bool, error) {
	const op = "storage.redis.LeaveGame"

	n, err := leaveScript.Run(ctx, s.Client, []string{gameKey(id), playersKey(id)}, playerID, requesterID).Int()
	if err != nil {
		return false, unavailable(op, err)
	}
	if n < 0 {
		return false, fmt.Errorf("%s: game %s: player %s: %w", op, id, playerID, storage.ErrForbidden)
	}

	return n > 0, nil
}

func (s *Storage) Players(ctx context.Context, id string) ([]models.Player, error) {
	const op = "storage.redis.Players"

	members, err := s.Client.SMembers(ctx, playersKey(id)).Result()
	if err != nil {
		return nil, unavailable(op, err)
	}

	players, err := decodePlayers(members)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return players, nil
}

// IsPlayer reports whether userID holds a spot in game id.
func (s *Storage) IsPlayer(ctx context.Context, id, userID string) (bool, error) {
	const op = "storage.redis.IsPlayer"

	players, err := s.Players(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	for _, p := range players {
		if p.UserID == userID {
			return true, nil
		}
	}

	return false, nil
}
