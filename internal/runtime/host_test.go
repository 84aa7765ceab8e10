package runtime_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/infoton-run/actorhost/actor"
	"github.com/infoton-run/actorhost/internal/runtime"
)

func TestHost_SchedulersIndexZeroIsRoot(t *testing.T) {
	cfg := runtime.DefaultConfig()
	cfg.SchedulerCount = 3
	h := runtime.NewHost(cfg, nil, nil, runtime.WithNetworkHost("test-host"))

	scheds := h.Schedulers()
	require.Len(t, scheds, 3)
	require.True(t, scheds[0].IsRoot())
	for _, s := range scheds[1:] {
		require.False(t, s.IsRoot())
	}
}

func TestHost_SpawnRootAndDeliverRoutesThroughScheduler0(t *testing.T) {
	cfg := runtime.DefaultConfig()
	cfg.SchedulerCount = 2
	h := runtime.NewHost(cfg, nil, nil, runtime.WithNetworkHost("test-host"))

	a := &recorderActor{}
	addr, err := h.SpawnRoot(a)
	require.NoError(t, err)
	require.Equal(t, h.Schedulers()[0].PostCode(), addr.PostCode)

	h.Deliver(actor.Message{Target: addr, Body: actor.UserBody{Payload: "hello"}})
	h.Schedulers()[0].Run(false, true)

	received := a.Received()
	require.Len(t, received, 2)
	require.Equal(t, actor.UserBody{Payload: "hello"}, received[1])
}

func TestHost_RunExitsWhenAllSchedulersDrainAndShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := runtime.DefaultConfig()
	cfg.SchedulerCount = 2
	h := runtime.NewHost(cfg, nil, nil, runtime.WithNetworkHost("test-host"))

	var started atomic.Bool
	done := make(chan struct{})
	go func() {
		started.Store(true)
		h.Run(false, false)
		close(done)
	}()

	require.Eventually(t, started.Load, time.Second, time.Millisecond)
	// Give the run loops a moment to actually start looping before asking
	// them to stop.
	time.Sleep(10 * time.Millisecond)
	h.Shutdown()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Host.Run did not return after Shutdown")
	}
}

func TestHost_SchedulerPositionsAreDistinct(t *testing.T) {
	cfg := runtime.DefaultConfig()
	cfg.SchedulerCount = 4
	h := runtime.NewHost(cfg, nil, nil, runtime.WithNetworkHost("test-host"))

	seen := make(map[actor.Position]actor.PostCode)
	for _, s := range h.Schedulers() {
		pos := s.Position()
		if other, ok := seen[pos]; ok {
			t.Fatalf("schedulers %s and %s share position %v", other, s.PostCode(), pos)
		}
		seen[pos] = s.PostCode()
	}
}
