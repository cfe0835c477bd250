package models

type EventType string

const (
	EventGameCreated  EventType = "gameCreated"
	EventPlayerJoined EventType = "playerJoined"
)

// Event is what the game service hands to the notification dispatcher after a
// roster or schedule change has been committed.
type Event struct {
	Type   EventType `json:"type"`
	Game   Game      `json:"game"`
	Player *Player   `json:"player,omitempty"`
}
