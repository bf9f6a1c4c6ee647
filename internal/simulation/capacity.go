package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"
)

var ErrServerFull = errors.New("server is full")
var ErrNodeNotFound = errors.New("node not found")

// Node is one simulated capacity node in a region.
type Node struct {
	Id         string  `json:"id"`
	Name       string  `json:"name"`
	Region     string  `json:"region"`
	Tier       string  `json:"tier"`
	MaxPlayers int     `json:"max_players"`
	Load       int     `json:"load"`
	CpuUsage   float64 `json:"cpu_usage"`
	MemUsage   float64 `json:"mem_usage"`
	LatencyMs  float64 `json:"latency_ms"`
	Status     string  `json:"status"`
}

var capacityRegions = []struct {
	id      string
	name    string
	latency float64
}{
	{"us-east", "US East", 20},
	{"us-west", "US West", 35},
	{"eu-west", "EU West", 45},
	{"eu-central", "EU Central", 50},
	{"asia-pacific", "Asia Pacific", 80},
	{"south-america", "South America", 95},
}

// CapacityService random-walks simulated server load for display. It stands
// in for a real fleet API behind the same query surface, so a real backend
// can later substitute without touching callers.
type CapacityService struct {
	mu    sync.Mutex
	rng   *rand.Rand
	nodes []*Node

	updateEvery time.Duration
	lastUpdate  time.Time
	now         func() time.Time
}

type CapacityOpt func(*CapacityService)

func WithCapacityRand(rng *rand.Rand) CapacityOpt {
	return func(s *CapacityService) {
		s.rng = rng
	}
}

func WithCapacityNow(now func() time.Time) CapacityOpt {
	return func(s *CapacityService) {
		s.now = now
	}
}

func NewCapacityService(opts ...CapacityOpt) *CapacityService {
	s := &CapacityService{
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		updateEvery: 5 * time.Second,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	for _, region := range capacityRegions {
		for i := 0; i < 3; i++ {
			s.nodes = append(s.nodes, &Node{
				Id:         fmt.Sprintf("%s-std-%d", region.id, i+1),
				Name:       fmt.Sprintf("%s Standard %d", region.name, i+1),
				Region:     region.name,
				Tier:       "standard",
				MaxPlayers: 1000,
				Load:       s.rng.Intn(800) + 100,
				CpuUsage:   s.rng.Float64()*60 + 20,
				MemUsage:   s.rng.Float64()*70 + 15,
				LatencyMs:  region.latency + s.rng.Float64()*20,
				Status:     s.initialStatus(),
			})
		}
		for i := 0; i < 2; i++ {
			s.nodes = append(s.nodes, &Node{
				Id:         fmt.Sprintf("%s-prem-%d", region.id, i+1),
				Name:       fmt.Sprintf("%s Premium %d", region.name, i+1),
				Region:     region.name,
				Tier:       "premium",
				MaxPlayers: 2000,
				Load:       s.rng.Intn(1500) + 200,
				CpuUsage:   s.rng.Float64()*50 + 15,
				MemUsage:   s.rng.Float64()*60 + 20,
				LatencyMs:  region.latency + s.rng.Float64()*10,
				Status:     "online",
			})
		}
		s.nodes = append(s.nodes, &Node{
			Id:         fmt.Sprintf("%s-ultra-1", region.id),
			Name:       fmt.Sprintf("%s Ultra", region.name),
			Region:     region.name,
			Tier:       "ultra",
			MaxPlayers: 5000,
			Load:       s.rng.Intn(3000) + 500,
			CpuUsage:   s.rng.Float64()*40 + 10,
			MemUsage:   s.rng.Float64()*50 + 25,
			LatencyMs:  region.latency + s.rng.Float64()*5,
			Status:     "online",
		})
	}

	return s
}

func (s *CapacityService) initialStatus() string {
	if s.rng.Float64() > 0.95 {
		return "maintenance"
	}
	return "online"
}

// Tick random-walks each node's load and usage. Gated internally so driver
// cadence does not matter.
func (s *CapacityService) Tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastUpdate) < s.updateEvery {
		return nil
	}
	s.lastUpdate = now

	for _, n := range s.nodes {
		if n.Status != "online" {
			// Maintenance windows end eventually.
			if s.rng.Float64() < 0.1 {
				n.Status = "online"
			}
			continue
		}

		n.Load += s.rng.Intn(101) - 50
		if n.Load < 0 {
			n.Load = 0
		}
		if n.Load > n.MaxPlayers {
			n.Load = n.MaxPlayers
		}
		n.CpuUsage = clampFloat(n.CpuUsage+s.rng.Float64()*10-5, 5, 98)
		n.MemUsage = clampFloat(n.MemUsage+s.rng.Float64()*8-4, 10, 95)

		if s.rng.Float64() > 0.995 {
			n.Status = "maintenance"
		}
	}
	return nil
}

// Nodes returns a stable-ordered copy of the fleet.
func (s *CapacityService) Nodes() []Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

// Join reserves a slot on a node. Full or offline nodes reject the join.
func (s *CapacityService) Join(nodeId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.nodes {
		if n.Id != nodeId {
			continue
		}
		if n.Status != "online" || n.Load >= n.MaxPlayers {
			return ErrServerFull
		}
		n.Load++
		return nil
	}
	return ErrNodeNotFound
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
