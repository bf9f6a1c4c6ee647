package command

import (
	"fmt"

	"github.com/punsta/punsta-world/internal/storage"
	"github.com/punsta/punsta-world/internal/world"
)

type RoomsConfig struct {
	// AssetPath points at a directory of room asset files. Empty uses the
	// built-in presets.
	AssetPath string `json:"asset_path"`
	StartRoom string `json:"start_room"`
}

func (c *RoomsConfig) validate() error {
	return nil
}

func (c *RoomsConfig) startRoom() string {
	if c.StartRoom == "" {
		return "lobby"
	}
	return c.StartRoom
}

func (c *RoomsConfig) buildRooms() (map[string]*world.Room, error) {
	rooms := world.DefaultRooms()

	if c.AssetPath != "" {
		store, err := storage.NewFileStore[*world.Room](c.AssetPath)
		if err != nil {
			return nil, fmt.Errorf("loading room assets: %w", err)
		}
		rooms = store.GetAll()
	}

	if len(rooms) == 0 {
		return nil, fmt.Errorf("no rooms configured")
	}
	return rooms, nil
}
