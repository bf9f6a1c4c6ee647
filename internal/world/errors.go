package world

import "errors"

var (
	ErrActorExists   = errors.New("actor already exists")
	ErrActorNotFound = errors.New("actor not found")
	ErrRoomNotFound  = errors.New("room not found")
)
