package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	Mode         string           `json:"mode"` // online or offline
	TickInterval string           `json:"tick_interval"`
	Nats         NatsConfig       `json:"nats"`
	Rooms        RoomsConfig      `json:"rooms"`
	Identity     IdentityConfig   `json:"identity"`
	Presence     PresenceConfig   `json:"presence"`
	Bots         BotsConfig       `json:"bots"`
	Gateway      GatewayConfig    `json:"gateway"`
	Simulation   SimulationConfig `json:"simulation"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	switch c.Mode {
	case "", "online", "offline":
	default:
		el.Add(fmt.Errorf("mode must be online or offline"))
	}

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d < 100*time.Millisecond {
			el.Add(fmt.Errorf("tick_interval must be at least 100ms"))
		}
	}

	el.Add(c.Nats.validate())
	el.Add(c.Rooms.validate())
	el.Add(c.Identity.validate())
	el.Add(c.Presence.validate())
	el.Add(c.Gateway.validate())

	return el.Err()
}

// Online reports whether a presence transport should be run. Offline is the
// default: it is a first-class mode, not an error state.
func (c *Config) Online() bool {
	return c.Mode == "online"
}
