package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-service"
	"github.com/punsta/punsta-world/internal/bots"
	"github.com/punsta/punsta-world/internal/driver"
	"github.com/punsta/punsta-world/internal/gateway"
	"github.com/punsta/punsta-world/internal/presence"
	"github.com/punsta/punsta-world/internal/simulation"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	workers := service.WorkerList{}

	// Load the local identity
	id, err := cfg.Identity.buildIdentity()
	if err != nil {
		return nil, fmt.Errorf("building identity: %w", err)
	}

	// Load room definitions
	rooms, err := cfg.Rooms.buildRooms()
	if err != nil {
		return nil, fmt.Errorf("building rooms: %w", err)
	}

	syncOpts, err := cfg.Presence.opts()
	if err != nil {
		return nil, fmt.Errorf("building presence options: %w", err)
	}

	// Online mode runs an embedded message server and wires it in as the
	// presence transport. Offline mode skips both.
	if cfg.Online() {
		nats, err := cfg.Nats.buildNatsServer()
		if err != nil {
			return nil, fmt.Errorf("creating nats server: %w", err)
		}
		workers["nats"] = nats
		syncOpts = append(syncOpts, presence.WithTransport(nats))
	}

	sync, err := presence.NewSynchronizer(id.UserId, id.DisplayName, cfg.Rooms.startRoom(), rooms, nil, syncOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating synchronizer: %w", err)
	}

	managers := []driver.Manager{}
	if !cfg.Bots.Disabled {
		sim := bots.NewSimulator(sync)
		sync.SetSimulator(sim)
		managers = append(managers, sim)
	}
	managers = append(managers, sync)

	gwOpts := []gateway.GatewayOpt{}
	if !cfg.Simulation.Disabled {
		capacity := simulation.NewCapacityService()
		polls := simulation.NewPollHub()
		players := simulation.NewPlayerStatsService()
		managers = append(managers, capacity, polls, players)
		gwOpts = append(gwOpts,
			gateway.WithCapacity(capacity),
			gateway.WithPolls(polls),
			gateway.WithPlayers(players),
		)
	}

	var driverOpts []driver.DriverOpt
	if cfg.TickInterval != "" {
		d, err := time.ParseDuration(cfg.TickInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing tick_interval: %w", err)
		}
		driverOpts = append(driverOpts, driver.WithTickInterval(d))
	}

	workers["presence"] = sync
	workers["driver"] = driver.NewDriver(managers, driverOpts...)
	workers["gateway"] = gateway.NewGateway(cfg.Gateway.Port, sync, gwOpts...)

	return workers, nil
}
