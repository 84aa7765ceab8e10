package runtime

import (
	"sync"

	"github.com/gammazero/deque"

	"github.com/infoton-run/actorhost/actor"
)

// HostService routes messages whose target lives on another scheduler in
// the same process, and drains its own inbound queue on behalf of its
// scheduler (spec.md §4.2). The inbound queue is the only mutable state
// shared across scheduler goroutines; it is protected by a single mutex per
// HostService. The locking rule from spec.md §5 — never hold one peer's
// lock while acquiring another's — is enforced structurally here: every
// method that touches hs.mu returns before calling into any other
// HostService or Scheduler.
type HostService struct {
	postcode actor.PostCode
	bound    int // 0 = unbounded

	mu      sync.Mutex
	inbound deque.Deque[actor.Message]

	// peers is populated once by AddPeers and never mutated afterward, so
	// it needs no lock of its own (spec.md §3: "Populated once during
	// host startup; immutable thereafter").
	peers map[actor.PostCode]*HostService

	clusterHelper actor.Address // zero value if no cluster plugin installed
	rootDeclared  bool

	dropped uint64 // routing-failure count due to a full bounded queue
}

// NewHostService returns a HostService for the scheduler at postcode.
// bound <= 0 means unbounded.
func NewHostService(postcode actor.PostCode, bound int) *HostService {
	return &HostService{
		postcode: postcode,
		bound:    bound,
		peers:    make(map[actor.PostCode]*HostService),
	}
}

// AddPeers wires the full peer list, skipping self; idempotent. When
// clusterHelper is non-null and this HostService is not the zygote and no
// root has been declared yet, the first peer's PostCode is declared root by
// injecting a ForceAddRoot envelope addressed to clusterHelper (spec.md
// §4.2's addpeers! contract). isZygote and clusterHelper are supplied by
// the Host, which knows the cluster plugin's presence and the zygote
// assignment; the core itself never constructs a cluster plugin.
func (hs *HostService) AddPeers(all []*HostService, isZygote bool, clusterHelper actor.Address) {
	hs.clusterHelper = clusterHelper

	first := true
	for _, peer := range all {
		if peer.postcode == hs.postcode {
			continue
		}
		if _, exists := hs.peers[peer.postcode]; exists {
			continue
		}
		hs.peers[peer.postcode] = peer

		if first && !isZygote && !clusterHelper.IsNull() && !hs.rootDeclared {
			hs.rootDeclared = true
			hs.pushLocal(actor.Message{
				Target: clusterHelper,
				Body:   actor.ForceAddRoot{PostCode: peer.postcode},
			})
		}
		first = false
	}
}

// RemoteRoutes implements spec.md §4.2: returns true if msg was accepted
// for cross-thread delivery to its target's scheduler, false otherwise.
func (hs *HostService) RemoteRoutes(msg actor.Message) bool {
	target := msg.Target

	if !target.PostCode.SameHost(hs.postcode) {
		// Cross-host delivery is a transport plugin's job, out of core
		// scope (spec.md §1).
		return false
	}

	peer, ok := hs.peers[target.PostCode]
	if !ok {
		return false
	}

	return peer.pushLocal(msg)
}

// pushLocal acquires hs.mu, appends msg if under the bound, and releases
// the lock before returning — never calling back into routing while held.
func (hs *HostService) pushLocal(msg actor.Message) bool {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if hs.bound > 0 && hs.inbound.Len() >= hs.bound {
		hs.dropped++
		return false
	}

	hs.inbound.PushBack(msg)
	return true
}

// LetInRemote implements spec.md §4.2's letin_remote: if the inbound queue
// is empty, returns false. Otherwise it acquires the lock, pops up to
// DrainBatch messages into a local buffer, releases the lock, then
// delivers each through scheduler.Deliver — the mandatory two-phase
// pop-then-deliver, so no lock is ever held across a call that can re-enter
// routing.
func (hs *HostService) LetInRemote(sched *Scheduler) bool {
	hs.mu.Lock()
	if hs.inbound.Len() == 0 {
		hs.mu.Unlock()
		return false
	}

	n := hs.inbound.Len()
	if n > DrainBatch {
		n = DrainBatch
	}

	buf := make([]actor.Message, 0, n)
	for i := 0; i < n; i++ {
		buf = append(buf, hs.inbound.PopFront())
	}
	hs.mu.Unlock()

	for _, msg := range buf {
		sched.Deliver(msg)
	}

	// The scheduler does not use the return value: any nonempty inbound
	// implies further polling on a later loop iteration (spec.md §4.2).
	return false
}

// PostCode returns the owning scheduler's PostCode.
func (hs *HostService) PostCode() actor.PostCode {
	return hs.postcode
}

// Dropped reports how many messages were rejected for routing because the
// bounded inbound queue was full.
func (hs *HostService) Dropped() uint64 {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return hs.dropped
}

// Len reports how many messages are currently queued, awaiting the next
// drain. Safe to call from any goroutine.
func (hs *HostService) Len() int {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return hs.inbound.Len()
}
