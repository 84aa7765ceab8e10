package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	osruntime "runtime"
	"sync"
	"sync/atomic"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/infoton-run/actorhost/actor"
	"github.com/infoton-run/actorhost/internal/telemetry"
)

// Sentinel errors for the routing/dispatch taxonomy in spec.md §7.
var (
	ErrSchedulerClosed = errors.New("runtime: scheduler is shutting down")
	ErrActorNotFound   = errors.New("runtime: actor not found")
)

// resident is the scheduler's directory entry for one locally-hosted actor.
type resident struct {
	a actor.Actor
}

// Scheduler is one per worker thread: it owns a set of actors, a mailbox, a
// position, and a plugin stack, and runs a single cooperative loop over
// them (spec.md §4.1). No two OnMessage invocations for actors on the same
// Scheduler ever execute concurrently — the directory, forwarding table,
// and mailbox are all touched only from the scheduler's own run loop
// goroutine and need no lock. The Position is the one field read from other
// goroutines (by peers building migration alternatives), so it alone is
// guarded by a small RWMutex.
type Scheduler struct {
	postcode   actor.PostCode
	cfg        Config
	logger     *slog.Logger
	positioner Positioner
	plugins    []actor.Plugin

	mailbox     *actor.Mailbox
	hostService *HostService

	directory  map[actor.Box]*resident
	forwarding map[actor.Box]actor.Address

	// boxCounter is shared by every Scheduler in a Host so that Box
	// values are unique across the whole process, not merely within one
	// scheduler. spec.md §3 allows either convention ("if scheduler-local
	// boxes are globally unique" an actor keeps its Box across a
	// migration); this implementation picks that option, which lets a
	// migrated actor's new Address be computed synchronously on the
	// source scheduler instead of waiting on an acknowledgement from the
	// destination (see DESIGN.md).
	boxCounter *uint64

	posMu    sync.RWMutex
	position actor.Position

	isRoot bool

	// peerPositions returns the current positions of every other
	// scheduler in the host, used by the default migration check. The
	// Host supplies this at construction time so the Scheduler never
	// needs a back-reference to the Host itself.
	peerPositions func() []actor.MigrationAlternative

	closing atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc

	deadLetters atomic.Uint64

	// tracer is nil unless an embedder opts in via WithTracer; dispatch
	// tracing is an ambient concern, not a spec requirement.
	tracer oteltrace.Tracer
}

// SchedulerOpt configures a Scheduler at construction.
type SchedulerOpt func(*Scheduler)

// WithPositioner overrides the default positioning policy.
func WithPositioner(p Positioner) SchedulerOpt {
	return func(s *Scheduler) { s.positioner = p }
}

// WithPlugins installs a plugin stack, invoked in the given order.
func WithPlugins(plugins ...actor.Plugin) SchedulerOpt {
	return func(s *Scheduler) { s.plugins = plugins }
}

// WithPeerPositions wires the callback the migration policy uses to list
// alternative destinations.
func WithPeerPositions(fn func() []actor.MigrationAlternative) SchedulerOpt {
	return func(s *Scheduler) { s.peerPositions = fn }
}

// WithTracer enables OpenTelemetry spans around message dispatch.
func WithTracer(tracer oteltrace.Tracer) SchedulerOpt {
	return func(s *Scheduler) { s.tracer = tracer }
}

// NewScheduler constructs a Scheduler bound to postcode. isRoot marks the
// zygote scheduler, which always sits at the origin (spec.md §4.4).
// boxCounter must be shared (the same pointer) across every Scheduler in a
// Host, so Box allocation is globally unique.
func NewScheduler(postcode actor.PostCode, isRoot bool, cfg Config, logger *slog.Logger, boxCounter *uint64, opt ...SchedulerOpt) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		postcode:   postcode,
		cfg:        cfg,
		logger:     logger.With("postcode", postcode.String()),
		positioner: DefaultPositioner{},
		mailbox:    actor.NewMailbox(),
		directory:  make(map[actor.Box]*resident),
		forwarding: make(map[actor.Box]actor.Address),
		boxCounter: boxCounter,
		isRoot:     isRoot,
		ctx:        ctx,
		cancel:     cancel,
	}
	s.hostService = NewHostService(postcode, cfg.InboundQueueBound)

	for _, o := range opt {
		o(s)
	}

	s.position = s.positioner.SchedulerPosition(postcode, isRoot, cfg)

	for _, p := range s.plugins {
		if hook, ok := p.(actor.PluginSetup); ok {
			if err := hook.Setup(s); err != nil {
				s.logger.Error("plugin Setup failed", "plugin", p.Name(), "error", err)
			}
		}
	}

	return s
}

// PostCode returns the scheduler's own PostCode.
func (s *Scheduler) PostCode() actor.PostCode {
	return s.postcode
}

// IsRoot reports whether this scheduler is the host's zygote.
func (s *Scheduler) IsRoot() bool {
	return s.isRoot
}

// HostService returns the scheduler's cross-thread router.
func (s *Scheduler) HostService() *HostService {
	return s.hostService
}

// Position returns the scheduler's current Position. Safe to call from any
// goroutine.
func (s *Scheduler) Position() actor.Position {
	s.posMu.RLock()
	defer s.posMu.RUnlock()
	return s.position
}

// Context is canceled when the scheduler starts shutting down.
func (s *Scheduler) Context() context.Context {
	return s.ctx
}

// DeadLetters reports how many messages had a target that could not be
// resolved anywhere, whether or not a RecipientMoved went back to the
// sender.
func (s *Scheduler) DeadLetters() uint64 {
	return s.deadLetters.Load()
}

// MailboxLen reports how many messages are currently queued locally,
// awaiting dispatch. Only safe to call from the scheduler's own goroutine
// or while Run is not executing, since the Mailbox is unsynchronized.
func (s *Scheduler) MailboxLen() int {
	return s.mailbox.Len()
}

// ResidentCount reports how many actors are currently resident on this
// scheduler. Only safe to call from the scheduler's own goroutine, since the
// directory is unsynchronized (spec.md §5's single-writer design).
func (s *Scheduler) ResidentCount() int {
	return len(s.directory)
}

// ---- actor.Service ----

var _ actor.Service = (*Scheduler)(nil)

// Spawn implements spec.md §4.1's spawn operation: allocates a fresh Box,
// installs the actor in the directory, asks the plugin stack (then the
// default Positioner) for an initial position, and invokes OnSchedule if
// implemented.
func (s *Scheduler) Spawn(a actor.Actor) (actor.Address, error) {
	if s.closing.Load() {
		return actor.Address{}, ErrSchedulerClosed
	}

	box := actor.Box(atomic.AddUint64(s.boxCounter, 1))
	addr := actor.Address{PostCode: s.postcode, Box: box}

	pos, ok := s.pluginSpawnPos(a)
	if !ok {
		pos = s.positioner.ActorPosition(s.Position(), s.cfg)
	}

	core := a.Core()
	core.SetAddress(addr)
	core.SetPosition(pos)

	s.directory[box] = &resident{a: a}

	for _, p := range s.plugins {
		if hook, ok := p.(actor.PluginOnSchedule); ok {
			if err := hook.OnSchedule(a, s); err != nil {
				s.logger.Error("plugin OnSchedule failed", "plugin", p.Name(), "error", err)
			}
		}
	}

	if hook, ok := a.(actor.Schedulable); ok {
		if err := hook.OnSchedule(s); err != nil {
			s.logger.Error("actor OnSchedule failed", "address", addr, "error", err)
		}
	}

	s.mailbox.Push(actor.Message{Target: addr, Body: actor.Started{}})

	return addr, nil
}

func (s *Scheduler) pluginSpawnPos(a actor.Actor) (actor.Position, bool) {
	for _, p := range s.plugins {
		if hook, ok := p.(actor.PluginSpawnPos); ok {
			if pos, ok := hook.SpawnPos(a, s.Position()); ok {
				return pos, true
			}
		}
	}
	return actor.Position{}, false
}

// Send implements the actor.Service Send operation.
func (s *Scheduler) Send(me actor.Address, target actor.Address, body actor.Body, energyOverride ...float32) {
	msg := actor.Message{Sender: me, Target: target, Body: body}
	if len(energyOverride) > 0 {
		e := energyOverride[0]
		msg.EnergyOverride = &e
	}
	s.Deliver(msg)
}

// Addr implements the actor.Service Addr operation.
func (s *Scheduler) Addr(me actor.Address) actor.Address {
	return me
}

// Pos implements the actor.Service Pos operation.
func (s *Scheduler) Pos() actor.Position {
	return s.Position()
}

// MigrateToNearest implements the actor.Service MigrateToNearest operation,
// exposed to user actor code in addition to the scheduler's own automatic
// check_migration step.
func (s *Scheduler) MigrateToNearest(me actor.Address, alternatives []actor.MigrationAlternative) error {
	res, ok := s.directory[me.Box]
	if !ok {
		return fmt.Errorf("runtime: %w: %s", ErrActorNotFound, me)
	}
	return s.checkMigration(res.a, alternatives)
}

// ---- message delivery & dispatch ----

// Deliver implements spec.md §4.1's deliver! operation: enqueues the
// message locally if its target is resident on this scheduler's postcode,
// otherwise hands it to the HostService for cross-thread delivery. A
// cross-thread routing failure is converted to RecipientMoved(old, null,
// original) back to the sender, if the sender is known and local.
func (s *Scheduler) Deliver(msg actor.Message) {
	if msg.Target.PostCode == s.postcode {
		s.mailbox.Push(msg)
		return
	}

	if s.hostService.RemoteRoutes(msg) {
		return
	}

	s.routingFailure(msg)
}

// routingFailure implements the RecipientMoved-synthesis half of spec.md
// §4.1 step 3 and §7's routing-failure taxonomy: the target is unknown and
// never was a resident actor anywhere this scheduler has a record of.
func (s *Scheduler) routingFailure(msg actor.Message) {
	s.deadLetters.Add(1)
	s.sendRecipientMoved(msg, actor.Address{})
}

// sendRecipientMoved implements spec.md §4.5 step 4: any message arriving
// at a Box this scheduler no longer (or never) hosts is transformed into a
// RecipientMoved addressed back to the sender, instead of being forwarded
// on the sender's behalf. If the sender is unknown, not resident here, or
// null, there is nowhere to deliver the notification and it is dropped.
func (s *Scheduler) sendRecipientMoved(msg actor.Message, newAddr actor.Address) {
	sender := msg.Sender
	if sender.IsNull() || sender.PostCode != s.postcode {
		return
	}
	if _, ok := s.directory[sender.Box]; !ok {
		return
	}

	s.mailbox.Push(actor.Message{
		Target: sender,
		Body: actor.RecipientMoved{
			Old:      msg.Target,
			New:      newAddr,
			Original: msg,
		},
	})
}

// dispatchOne implements spec.md §4.1's per-message dispatch algorithm for
// a message popped from the local mailbox. By construction every such
// message already has Target.PostCode == s.postcode (Deliver only enqueues
// local-target messages), so the algorithm's step 3 ("cross-scheduler")
// reduces here to "the box is not — and never was forwarded from — a
// resident actor", i.e. a permanently unknown target.
func (s *Scheduler) dispatchOne(msg actor.Message) {
	if env, ok := msg.Body.(actor.MigrationEnvelope); ok {
		s.migrateIn(env)
		return
	}

	target := msg.Target

	if res, ok := s.directory[target.Box]; ok {
		s.invokeOnMessage(res, msg)
		return
	}

	if newAddr, ok := s.forwarding[target.Box]; ok {
		s.sendRecipientMoved(msg, newAddr)
		return
	}

	s.routingFailure(msg)
}

// invokeOnMessage runs the user/plugin OnMessage hooks for one resident
// actor, recovering from a panicking hook per spec.md §7's "Dispatch
// error" taxonomy (logged, scheduler continues, actor remains resident),
// then applies the post-dispatch infoton and migration check.
func (s *Scheduler) invokeOnMessage(res *resident, msg actor.Message) {
	_, endSpan := telemetry.StartDispatchSpan(s.ctx, s.tracer, actor.BodyKind(msg.Body))
	defer endSpan()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("actor panicked handling message",
				"box", res.a.Core().Address().Box,
				"msg_kind", actor.BodyKind(msg.Body),
				"panic", r,
			)
		}
	}()

	if err := res.a.OnMessage(s, msg.Body); err != nil {
		s.logger.Warn("actor OnMessage returned error",
			"box", res.a.Core().Address().Box,
			"msg_kind", actor.BodyKind(msg.Body),
			"error", err,
		)
	}

	for _, p := range s.plugins {
		if hook, ok := p.(actor.PluginOnMessage); ok {
			if err := hook.OnMessage(res.a, msg.Body, s); err != nil {
				s.logger.Error("plugin OnMessage failed", "plugin", p.Name(), "error", err)
			}
		}
	}

	if _, isDie := msg.Body.(actor.Die); isDie {
		return
	}

	s.applyPostDispatchInfoton(res, msg)
	s.runMigrationCheck(res)
}

// applyPostDispatchInfoton implements spec.md §4.4's default
// scheduler_infoton: energy = (target - current) * 2e-3, sourced from the
// scheduler's own position, applied to the actor that just handled a
// message — unless the send carried an EnergyOverride, or a plugin
// overrides the policy outright.
func (s *Scheduler) applyPostDispatchInfoton(res *resident, msg actor.Message) {
	core := res.a.Core()
	pos := s.Position()

	var inf actor.Infoton
	switch {
	case msg.EnergyOverride != nil:
		inf = actor.Infoton{SourcePos: pos, Energy: *msg.EnergyOverride}
	default:
		inf = s.schedulerInfoton(pos)
	}

	if applier, ok := res.a.(actor.InfotonApplier); ok {
		core.SetPosition(applier.ApplyInfoton(inf))
		return
	}

	core.SetPosition(inf.Apply(core.Position()))
}

func (s *Scheduler) schedulerInfoton(pos actor.Position) actor.Infoton {
	current := len(s.directory)

	for _, p := range s.plugins {
		if hook, ok := p.(actor.PluginSchedulerInfoton); ok {
			return hook.SchedulerInfoton(current, s.cfg.TargetActorCount, pos)
		}
	}

	energy := float32(s.cfg.TargetActorCount-current) * 2e-3
	return actor.Infoton{SourcePos: pos, Energy: energy}
}

// runMigrationCheck applies spec.md §4.4's migration policy after an
// infoton application.
func (s *Scheduler) runMigrationCheck(res *resident) {
	if s.peerPositions == nil {
		return
	}
	if err := s.checkMigration(res.a, s.peerPositions()); err != nil {
		s.logger.Warn("migration check failed", "address", res.a.Core().Address(), "error", err)
	}
}

// checkMigration implements spec.md §4.4: if the actor drifted more than
// MigrationDistanceThreshold from this scheduler, find the nearest
// alternative strictly closer to the actor than self, and migrate to it.
func (s *Scheduler) checkMigration(a actor.Actor, alternatives []actor.MigrationAlternative) error {
	if checker, ok := a.(actor.MigrationChecker); ok {
		return checker.CheckMigration(s, alternatives)
	}

	core := a.Core()
	selfDist := s.Position().Distance(core.Position())
	if selfDist <= MigrationDistanceThreshold {
		return nil
	}

	var (
		best     *actor.MigrationAlternative
		bestDist float32
	)
	for i := range alternatives {
		d := alternatives[i].Position.Distance(core.Position())
		if d < selfDist && (best == nil || d < bestDist) {
			best = &alternatives[i]
			bestDist = d
		}
	}
	if best == nil {
		return nil
	}

	return s.migrateOut(a, best.PostCode)
}

// ---- run loop ----

// Run executes the cooperative loop of spec.md §4.1: pop one mailbox
// message, dispatch it, periodically drain the HostService inbound queue.
// If exitWhenDone, the loop exits once the mailbox and inbound queue are
// both empty; otherwise it runs until ctx is canceled or Shutdown is
// called. processExternal is reserved for embedders that poll additional
// event sources alongside message dispatch (spec.md §4.1 step 5); the core
// itself does not define any such source.
func (s *Scheduler) Run(processExternal bool, exitWhenDone bool) {
	osruntime.LockOSThread()
	defer osruntime.UnlockOSThread()

	drainTick := 0

	for {
		select {
		case <-s.ctx.Done():
			s.drainOnShutdown()
			return
		default:
		}

		if msg, ok := s.mailbox.Pop(); ok {
			s.dispatchOne(msg)
		}

		drainTick++
		if drainTick >= 8 {
			drainTick = 0
			s.hostService.LetInRemote(s)
		}

		if exitWhenDone && s.mailbox.IsEmpty() && s.hostServiceIdle() {
			return
		}

		osruntime.Gosched()
	}
}

func (s *Scheduler) hostServiceIdle() bool {
	s.hostService.mu.Lock()
	defer s.hostService.mu.Unlock()
	return s.hostService.inbound.Len() == 0
}

// Shutdown implements spec.md §4.1's shutdown! operation: every resident
// actor receives a synthetic Die message (arbitrary order), then the run
// loop is signaled to drain and exit.
func (s *Scheduler) Shutdown() {
	if !s.closing.CompareAndSwap(false, true) {
		return
	}

	for box, res := range s.directory {
		func(box actor.Box, res *resident) {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("actor panicked handling Die", "box", box, "panic", r)
				}
			}()
			_ = res.a.OnMessage(s, actor.Die{Reason: "host shutdown"})
		}(box, res)
	}

	s.cancel()
}

// drainOnShutdown processes whatever is already queued before the loop
// exits, per spec.md §7: "the current message completes; subsequent
// messages are discarded after Die is delivered to each actor." Since Die
// has already been delivered to every actor by Shutdown, anything still
// queued here is discarded rather than dispatched.
func (s *Scheduler) drainOnShutdown() {
	for {
		if _, ok := s.mailbox.Pop(); !ok {
			break
		}
	}
}
