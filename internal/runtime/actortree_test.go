package runtime_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/infoton-run/actorhost/actor"
	"github.com/infoton-run/actorhost/internal/runtime"
)

// treeActor implements spec.md §8 scenario 1: each node spawns two children
// on OnSchedule until maxDepth is reached, building a complete binary tree.
// Spawn invokes OnSchedule synchronously (see Scheduler.Spawn), so the whole
// tree is built recursively within the root's own Spawn call.
type treeActor struct {
	core     actor.Core
	depth    int
	maxDepth int
	count    *int64
}

func (a *treeActor) Core() *actor.Core { return &a.core }

func (a *treeActor) OnMessage(svc actor.Service, body actor.Body) error { return nil }

func (a *treeActor) OnSchedule(svc actor.Service) error {
	atomic.AddInt64(a.count, 1)
	if a.depth >= a.maxDepth {
		return nil
	}
	for i := 0; i < 2; i++ {
		child := &treeActor{depth: a.depth + 1, maxDepth: a.maxDepth, count: a.count}
		if _, err := svc.Spawn(child); err != nil {
			return err
		}
	}
	return nil
}

var _ actor.Schedulable = (*treeActor)(nil)

// TestScenario_ActorTreeReachesExpectedNodeCount exercises spec.md §8
// scenario 1's "complete binary tree" shape. The spec's own numbers (2^18-1
// nodes over 17 rounds) are reduced here to a 9-level tree (2^9-1 = 511
// nodes) to keep the test fast; the doubling-per-level structure being
// verified is identical at either scale.
func TestScenario_ActorTreeReachesExpectedNodeCount(t *testing.T) {
	const maxDepth = 8 // 9 levels, root at depth 0
	const wantNodes = 1<<(maxDepth+1) - 1

	cfg := runtime.DefaultConfig()
	sched := runtime.NewScheduler(pc("h1", "1"), true, cfg, nil, new(uint64))

	var count int64
	root := &treeActor{maxDepth: maxDepth, count: &count}
	_, err := sched.Spawn(root)
	require.NoError(t, err)

	require.EqualValues(t, wantNodes, atomic.LoadInt64(&count))

	// Every node's Started envelope is still queued locally; draining must
	// not dead-letter any of them.
	sched.Run(false, true)
	require.Zero(t, sched.DeadLetters())
}
