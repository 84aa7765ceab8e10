package runtime_test

import (
	"sync"

	"github.com/infoton-run/actorhost/actor"
)

// recorderActor records every body it receives, guarded by a mutex since the
// test goroutine reads it concurrently with the scheduler's own run loop.
type recorderActor struct {
	core actor.Core

	mu       sync.Mutex
	received []actor.Body
	schedule int
}

func (a *recorderActor) Core() *actor.Core { return &a.core }

func (a *recorderActor) OnMessage(svc actor.Service, body actor.Body) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.received = append(a.received, body)
	return nil
}

func (a *recorderActor) OnSchedule(svc actor.Service) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.schedule++
	return nil
}

func (a *recorderActor) Received() []actor.Body {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]actor.Body, len(a.received))
	copy(out, a.received)
	return out
}

func (a *recorderActor) ScheduleCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.schedule
}

var (
	_ actor.Actor       = (*recorderActor)(nil)
	_ actor.Schedulable = (*recorderActor)(nil)
)
