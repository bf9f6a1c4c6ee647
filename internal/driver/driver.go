package driver

import (
	"context"
	"time"
)

const (
	// DefaultTickInterval matches the bot scheduler cadence: managers are
	// checked every second and gate themselves on their own intervals.
	DefaultTickInterval = time.Second
)

// Manager is anything driven by the shared tick: the bot simulator, the
// presence sweep, the capacity generators.
type Manager interface {
	Tick(context.Context) error
}

type Driver struct {
	tickInterval time.Duration
	managers     []Manager
}

func NewDriver(managers []Manager, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickInterval: DefaultTickInterval,
		managers:     managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

func (d *Driver) Tick(ctx context.Context) error {
	for _, m := range d.managers {
		if err := m.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}
