package runtime

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/infoton-run/actorhost/actor"

	"github.com/google/uuid"
)

// PluginFactory builds the plugin stack for the scheduler at the given
// index (0 is always the zygote). Host calls it once per scheduler during
// construction.
type PluginFactory func(postcode actor.PostCode, index int) []actor.Plugin

// Host is the top-level coordinator: it constructs N schedulers, wires
// them as peers, pins each to its own OS thread, and runs them to
// completion (spec.md §4.3).
type Host struct {
	cfg        Config
	logger     *slog.Logger
	schedulers []*Scheduler

	boxCounter uint64

	wg sync.WaitGroup
}

// HostOpt configures a Host at construction.
type HostOpt func(*hostOpts)

type hostOpts struct {
	clusterHelper actor.Address
	networkHost   string
}

// WithClusterHelper wires the address of a cluster-membership plugin's
// helper actor, used by addpeers! to declare a root when this host is not
// the zygote (spec.md §4.2). Omit it if no cluster plugin is installed.
func WithClusterHelper(addr actor.Address) HostOpt {
	return func(o *hostOpts) { o.clusterHelper = addr }
}

// WithNetworkHost overrides the process identifier used in every minted
// PostCode; if omitted, cfg.NetworkHost is used, and if that is also empty
// a random identifier is generated with github.com/google/uuid, the same
// convention Roasbeef-substrate and
// zjrosen-perles use for process/session identifiers.
func WithNetworkHost(host string) HostOpt {
	return func(o *hostOpts) { o.networkHost = host }
}

// NewHost constructs cfg.SchedulerCount schedulers, the first flagged as
// zygote, wires every scheduler's HostService to every other as a peer, and
// returns the assembled Host. It does not start any scheduler loop — call
// Run for that.
func NewHost(cfg Config, logger *slog.Logger, factory PluginFactory, opt ...HostOpt) *Host {
	if logger == nil {
		logger = slog.Default()
	}

	var o hostOpts
	for _, fn := range opt {
		fn(&o)
	}
	if o.networkHost == "" {
		o.networkHost = cfg.NetworkHost
	}
	if o.networkHost == "" {
		o.networkHost = uuid.NewString()
	}

	h := &Host{cfg: cfg, logger: logger}

	schedulers := make([]*Scheduler, cfg.SchedulerCount)
	for i := 0; i < cfg.SchedulerCount; i++ {
		postcode := actor.PostCode{Host: o.networkHost, Scheduler: strconv.Itoa(basePort + i)}
		isRoot := i == 0

		var plugins []actor.Plugin
		if factory != nil {
			plugins = factory(postcode, i)
		}

		sched := NewScheduler(postcode, isRoot, cfg, logger, &h.boxCounter, WithPlugins(plugins...))
		schedulers[i] = sched
	}
	h.schedulers = schedulers

	for i, sched := range schedulers {
		idx := i
		sched.peerPositions = func() []actor.MigrationAlternative {
			alts := make([]actor.MigrationAlternative, 0, len(schedulers)-1)
			for j, peer := range schedulers {
				if j == idx {
					continue
				}
				alts = append(alts, actor.MigrationAlternative{
					PostCode: peer.PostCode(),
					Position: peer.Position(),
				})
			}
			return alts
		}
	}

	all := make([]*HostService, len(schedulers))
	for i, sched := range schedulers {
		all[i] = sched.HostService()
	}
	for i, hs := range all {
		hs.AddPeers(all, i == 0, o.clusterHelper)
	}

	return h
}

// Schedulers returns the Host's schedulers in construction order; index 0
// is always the zygote.
func (h *Host) Schedulers() []*Scheduler {
	return h.schedulers
}

// Deliver forwards msg to schedulers[0], the entry point for messages sent
// from outside the scheduler pool (spec.md §4.3).
func (h *Host) Deliver(msg actor.Message) {
	h.schedulers[0].Deliver(msg)
}

// SpawnRoot spawns a on the zygote scheduler (schedulers[0]) and returns
// its Address. Used to seed the host's initial root-actor set at startup
// (spec.md §4.3 step 1).
func (h *Host) SpawnRoot(a actor.Actor) (actor.Address, error) {
	return h.schedulers[0].Spawn(a)
}

// Run dispatches every scheduler to its own goroutine pinned to an OS
// thread (via runtime.LockOSThread inside Scheduler.Run) and blocks until
// all of them return. A small stagger is applied between starts if
// cfg.StartupStagger is positive — a documented concession to a cluster
// plugin race (spec.md §4.3 step 3, §9); otherwise (the default) no delay
// is applied and a ready barrier releases every scheduler loop together
// once all of their goroutines have started.
func (h *Host) Run(processExternal bool, exitWhenDone bool) {
	h.wg.Add(len(h.schedulers))

	useBarrier := h.cfg.StartupStagger <= 0
	var ready sync.WaitGroup
	release := make(chan struct{})
	if useBarrier {
		ready.Add(len(h.schedulers))
	}

	for i, sched := range h.schedulers {
		go func(i int, sched *Scheduler) {
			defer h.wg.Done()
			if useBarrier {
				ready.Done()
				<-release
			}
			sched.Run(processExternal, exitWhenDone)
		}(i, sched)

		if !useBarrier && i > 0 {
			time.Sleep(h.staggerFor(i))
		}
	}

	ready.Wait()
	close(release)

	h.wg.Wait()
}

// staggerFor mirrors the original convention of a smaller stagger for
// middle-index schedulers and a larger one at the edges (spec.md §4.3
// step 3): Run sleeps staggerFor(i) after starting scheduler i (i > 0),
// 10x cfg.StartupStagger for the last index and cfg.StartupStagger for the
// others. Run always applies this shape when cfg.StartupStagger is
// positive; there is no flat-delay mode.
func (h *Host) staggerFor(i int) time.Duration {
	n := len(h.schedulers)
	if i == 0 || i == n-1 {
		return h.cfg.StartupStagger * 10
	}
	return h.cfg.StartupStagger
}

// Shutdown forwards Shutdown to every scheduler (spec.md §4.3).
func (h *Host) Shutdown() {
	for _, sched := range h.schedulers {
		sched.Shutdown()
	}
}
