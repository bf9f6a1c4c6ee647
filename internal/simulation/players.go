package simulation

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// GlobalStats is the synthetic worldwide player count used by the client's
// dashboards.
type GlobalStats struct {
	TotalOnline     int            `json:"total_online"`
	PeakToday       int            `json:"peak_today"`
	Trend           string         `json:"trend"` // up, down, stable
	RegionBreakdown map[string]int `json:"region_breakdown"`
	LastUpdate      int64          `json:"last_update"` // unix milliseconds
}

var playerRegions = []string{
	"North America",
	"Europe",
	"Asia Pacific",
	"South America",
	"Africa",
	"Oceania",
}

const (
	basePlayerCount = 200_000
	maxPlayerCount  = 147_000_000
)

// PlayerStatsService random-walks a global online count between fixed
// bounds, with a time-of-day multiplier peaking in the evening.
type PlayerStatsService struct {
	mu      sync.Mutex
	rng     *rand.Rand
	current int
	stats   GlobalStats

	updateEvery time.Duration
	lastUpdate  time.Time
	now         func() time.Time
}

type PlayerStatsOpt func(*PlayerStatsService)

func WithPlayerRand(rng *rand.Rand) PlayerStatsOpt {
	return func(s *PlayerStatsService) {
		s.rng = rng
	}
}

func WithPlayerNow(now func() time.Time) PlayerStatsOpt {
	return func(s *PlayerStatsService) {
		s.now = now
	}
}

func NewPlayerStatsService(opts ...PlayerStatsOpt) *PlayerStatsService {
	s := &PlayerStatsService{
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		updateEvery: 30 * time.Second,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.stats = GlobalStats{
		Trend:           "stable",
		RegionBreakdown: map[string]int{},
	}
	s.update(s.now())
	return s
}

// Tick refreshes the stats on its internal cadence.
func (s *PlayerStatsService) Tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastUpdate) < s.updateEvery {
		return nil
	}
	s.update(now)
	return nil
}

// Stats returns a copy of the current global stats.
func (s *PlayerStatsService) Stats() GlobalStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.stats
	out.RegionBreakdown = make(map[string]int, len(s.stats.RegionBreakdown))
	for k, v := range s.stats.RegionBreakdown {
		out.RegionBreakdown[k] = v
	}
	return out
}

func (s *PlayerStatsService) update(now time.Time) {
	s.lastUpdate = now

	multiplier := 1.0
	switch hour := now.Hour(); {
	case hour >= 18 && hour <= 23:
		multiplier = 1.8 // Evening peak
	case hour >= 12 && hour < 18:
		multiplier = 1.4
	case hour >= 6 && hour < 12:
		multiplier = 1.1
	default:
		multiplier = 0.7
	}

	previous := s.current
	target := int(float64(basePlayerCount) * multiplier * (1 + s.rng.Float64()*50))
	if target > maxPlayerCount {
		target = maxPlayerCount
	}
	if previous == 0 {
		s.current = target
	} else {
		// Walk toward the target rather than jumping.
		s.current += (target - previous) / 10
	}
	if s.current < basePlayerCount {
		s.current = basePlayerCount
	}

	s.stats.TotalOnline = s.current
	if s.current > s.stats.PeakToday {
		s.stats.PeakToday = s.current
	}

	switch {
	case s.current > previous+previous/100:
		s.stats.Trend = "up"
	case s.current < previous-previous/100:
		s.stats.Trend = "down"
	default:
		s.stats.Trend = "stable"
	}

	// Distribute the total across regions, last region takes the remainder.
	remaining := s.current
	for i, region := range playerRegions {
		if i == len(playerRegions)-1 {
			s.stats.RegionBreakdown[region] = remaining
			break
		}
		count := int(float64(s.current) * (0.1 + s.rng.Float64()*0.3))
		if count > remaining {
			count = remaining
		}
		s.stats.RegionBreakdown[region] = count
		remaining -= count
	}

	s.stats.LastUpdate = now.UnixMilli()
}
