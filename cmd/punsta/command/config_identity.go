package command

import (
	"fmt"

	"github.com/punsta/punsta-world/internal/identity"
	"github.com/punsta/punsta-world/internal/storage"
)

type IdentityConfig struct {
	Path string `json:"path"`
}

func (c *IdentityConfig) validate() error {
	return nil
}

func (c *IdentityConfig) buildIdentity() (*identity.Identity, error) {
	path := c.Path
	if path == "" {
		path = "identity"
	}

	store, err := storage.NewFileStore[*identity.Identity](path)
	if err != nil {
		return nil, fmt.Errorf("opening identity store: %w", err)
	}

	id, err := identity.LoadOrCreate(store)
	if err != nil {
		return nil, fmt.Errorf("loading identity: %w", err)
	}

	return id, nil
}
