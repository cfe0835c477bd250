package models

import "time"

// MaxPlayers is the roster capacity of a padel game.
const MaxPlayers = 4

// AnonymousUserID marks roster entries that do not belong to an account,
// e.g. names typed in by the creator when the game is set up.
const AnonymousUserID = "anonymous"

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelExpert       Level = "expert"
	LevelMixed        Level = "mixed"
)

var levelLabels = map[Level]string{
	LevelBeginner:     "Beginner (0-2.0)",
	LevelIntermediate: "Intermediate (2.5-3.5)",
	LevelAdvanced:     "Advanced (4.0-4.5)",
	LevelExpert:       "Expert (5.0+)",
	LevelMixed:        "Mixed Levels",
}

func (l Level) Valid() bool {
	_, ok := levelLabels[l]
	return ok
}

func (l Level) Label() string {
	if label, ok := levelLabels[l]; ok {
		return label
	}
	return string(l)
}

type Venue struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Link         string   `json:"link,omitempty"`
	AddressLines []string `json:"addressLines,omitempty"`
}

type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"lastName,omitempty"`
	UserID   string `json:"userId"`
}

type Game struct {
	ID           string    `json:"id"`
	DateTime     time.Time `json:"dateTime"`
	Level        Level     `json:"level"`
	Venue        Venue     `json:"venue"`
	CreatedAt    time.Time `json:"createdAt"`
	CreatedBy    string    `json:"createdBy"`
	CreatorEmail string    `json:"creatorEmail,omitempty"`
	Players      []Player  `json:"players"`
}

// IsFull is derived from the roster on every call and never stored.
func (g *Game) IsFull() bool {
	return len(g.Players) >= MaxPlayers
}

func (g *Game) AvailableSpots() int {
	if n := MaxPlayers - len(g.Players); n > 0 {
		return n
	}
	return 0
}

func (g *Game) HasUser(userID string) bool {
	for _, p := range g.Players {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
