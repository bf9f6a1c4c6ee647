package identity

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/pixil98/go-errors"
	"github.com/punsta/punsta-world/internal/storage"
)

// storeKey is the single record id: one identity per client installation.
const storeKey = "local"

// Identity is the persisted local participant: a stable id surviving
// reconnects plus a display name. Customization holds opaque avatar data
// owned by the render layer.
type Identity struct {
	UserId        string                 `json:"user_id"`
	DisplayName   string                 `json:"display_name"`
	Customization storage.ExtensionState `json:"customization,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (i *Identity) Validate() error {
	el := errors.NewErrorList()

	if i.UserId == "" {
		el.Add(fmt.Errorf("user_id is required"))
	}
	if i.DisplayName == "" {
		el.Add(fmt.Errorf("display_name is required"))
	}

	return el.Err()
}

// LoadOrCreate reads the local identity from the store, generating and
// persisting a fresh one on first run.
func LoadOrCreate(store storage.Storer[*Identity]) (*Identity, error) {
	if id := store.Get(storeKey); id != nil {
		return id, nil
	}

	id := &Identity{
		UserId:      uuid.NewString(),
		DisplayName: fmt.Sprintf("Guest_%03d", rand.Intn(1000)),
	}
	if err := store.Save(storeKey, id); err != nil {
		return nil, fmt.Errorf("saving identity: %w", err)
	}
	return id, nil
}
