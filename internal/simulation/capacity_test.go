package simulation

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestCapacityServiceFleetShape(t *testing.T) {
	s := NewCapacityService(WithCapacityRand(rand.New(rand.NewSource(1))))

	nodes := s.Nodes()
	// Six regions, six nodes each.
	testutil.AssertEqual(t, "fleet size", len(nodes), 36)

	tiers := map[string]int{}
	for _, n := range nodes {
		tiers[n.Tier]++
		if n.Load < 0 || n.Load > n.MaxPlayers {
			t.Errorf("node %s load %d outside [0, %d]", n.Id, n.Load, n.MaxPlayers)
		}
		if n.LatencyMs <= 0 {
			t.Errorf("node %s has non-positive latency", n.Id)
		}
	}
	testutil.AssertEqual(t, "standard nodes", tiers["standard"], 18)
	testutil.AssertEqual(t, "premium nodes", tiers["premium"], 12)
	testutil.AssertEqual(t, "ultra nodes", tiers["ultra"], 6)
}

func TestCapacityServiceTickKeepsBounds(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	s := NewCapacityService(
		WithCapacityRand(rand.New(rand.NewSource(2))),
		WithCapacityNow(func() time.Time { return now }))

	for i := 1; i <= 100; i++ {
		now = base.Add(time.Duration(i) * 5 * time.Second)
		if err := s.Tick(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	for _, n := range s.Nodes() {
		if n.Load < 0 || n.Load > n.MaxPlayers {
			t.Errorf("node %s load %d outside [0, %d]", n.Id, n.Load, n.MaxPlayers)
		}
		if n.CpuUsage < 5 || n.CpuUsage > 98 {
			t.Errorf("node %s cpu %.1f outside [5, 98]", n.Id, n.CpuUsage)
		}
		if n.MemUsage < 10 || n.MemUsage > 95 {
			t.Errorf("node %s mem %.1f outside [10, 95]", n.Id, n.MemUsage)
		}
	}
}

func TestCapacityServiceTickGated(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base.Add(time.Hour)
	s := NewCapacityService(
		WithCapacityRand(rand.New(rand.NewSource(3))),
		WithCapacityNow(func() time.Time { return now }))

	if err := s.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := s.Nodes()

	// A second tick within the update window changes nothing.
	now = now.Add(time.Second)
	if err := s.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after := s.Nodes()
	for i := range before {
		testutil.AssertEqual(t, "load", after[i].Load, before[i].Load)
		testutil.AssertEqual(t, "status", after[i].Status, before[i].Status)
	}
}

func TestCapacityServiceJoin(t *testing.T) {
	s := NewCapacityService(WithCapacityRand(rand.New(rand.NewSource(4))))

	var online Node
	for _, n := range s.Nodes() {
		if n.Status == "online" && n.Load < n.MaxPlayers {
			online = n
			break
		}
	}
	if online.Id == "" {
		t.Fatal("expected at least one joinable node")
	}

	if err := s.Join(online.Id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, n := range s.Nodes() {
		if n.Id == online.Id {
			testutil.AssertEqual(t, "load after join", n.Load, online.Load+1)
		}
	}

	err := s.Join("no-such-node")
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}
