package storage

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrExists        = errors.New("already exists")
	ErrGameFull      = errors.New("game is full")
	ErrAlreadyJoined = errors.New("user already joined the game")
	ErrPlayerIDTaken = errors.New("player id belongs to another user")
	ErrForbidden     = errors.New("not allowed")
	ErrCreateFailed  = errors.New("failed to create")
	ErrUpdateFailed  = errors.New("failed to update")
	ErrDeleteFailed  = errors.New("failed to delete")
	ErrUnavailable   = errors.New("store unavailable")
)
