package driver

import "time"

type DriverOpt func(*Driver)

func WithTickInterval(tickInterval time.Duration) DriverOpt {
	return func(d *Driver) {
		d.tickInterval = tickInterval
	}
}
