package actor

import "context"

// Service is the handle passed to every actor hook. It is the only way
// hooks reach the scheduler; there is no implicit "current scheduler"
// context (spec.md §9 eliminates that pattern deliberately).
type Service interface {
	// Spawn installs a new actor on the owning scheduler and returns its
	// Address.
	Spawn(a Actor) (Address, error)

	// Send delivers body from sender me to target. energyOverride, if
	// present, replaces the scheduler's default post-dispatch infoton
	// energy computation for this send (service API extension named in
	// spec.md §6).
	Send(me Address, target Address, body Body, energyOverride ...float32)

	// Addr returns the Address of the actor currently executing a hook.
	Addr(me Address) Address

	// Pos returns the owning scheduler's current Position.
	Pos() Position

	// MigrateToNearest evaluates alternatives and, if me has drifted
	// beyond the scheduler's migration distance threshold and one
	// alternative is strictly nearer to me's position than the current
	// scheduler, starts migration toward the nearest such alternative.
	MigrateToNearest(me Address, alternatives []MigrationAlternative) error

	// Context is bound to the owning scheduler's lifetime; it is canceled
	// on shutdown.
	Context() context.Context
}

// MigrationAlternative is a candidate destination scheduler considered by
// the migration policy: a peer PostCode and its Position.
type MigrationAlternative struct {
	PostCode PostCode
	Position Position
}

// Actor is the minimal contract every user-defined actor must satisfy.
// Additional optional hooks (OnSchedule, MonitorExtra, CheckMigration,
// ApplyInfoton) are probed via type assertion rather than folded into one
// fat interface, matching the capability-set pattern used across the
// pack's actor-engine examples.
type Actor interface {
	// OnMessage handles one message body. The scheduler invokes this with
	// at most one in-flight call per actor at a time.
	OnMessage(svc Service, body Body) error

	// Core returns the embeddable runtime bookkeeping slot every actor
	// must carry.
	Core() *Core
}

// Schedulable is implemented by actors that want a hook right after
// installation (on initial spawn and again after migration-in).
type Schedulable interface {
	OnSchedule(svc Service) error
}

// MonitorExtra is implemented by actors that want to expose extra state to
// observability tooling outside the core.
type MonitorExtra interface {
	MonitorExtra() map[string]any
}

// MigrationChecker lets an actor override the default migration policy
// (spec.md §4.4's "optionally override check_migration").
type MigrationChecker interface {
	CheckMigration(svc Service, alternatives []MigrationAlternative) error
}

// InfotonApplier lets an actor override how an Infoton is applied to its
// own position (spec.md §6's "optionally override apply_infoton").
type InfotonApplier interface {
	ApplyInfoton(inf Infoton) Position
}

// AddressHolder is implemented by actors that declare which of their own
// fields store Addresses of other actors, enabling the default
// RecipientMoved handler (spec.md §6) to rewrite stale references
// automatically instead of requiring a hand-written handler.
type AddressHolder interface {
	// StoredAddresses returns pointers to every Address field the actor
	// wants rewritten when it receives RecipientMoved for that value.
	StoredAddresses() []*Address
}

// Core is the runtime bookkeeping every actor embeds. It is intentionally
// opaque to plugins beyond the accessors below: actors never hold a raw
// scheduler reference, only the PostCode it is currently resident on,
// consistent with spec.md §9's "actors carry the scheduler's PostCode, not
// a raw reference" redesign note.
type Core struct {
	address  Address
	position Position
}

// Address returns the actor's current Address.
func (c *Core) Address() Address {
	return c.address
}

// Position returns the actor's current Position.
func (c *Core) Position() Position {
	return c.position
}

// SetAddress is called by the scheduler on spawn and on migration-in. Not
// for plugin use.
func (c *Core) SetAddress(addr Address) {
	c.address = addr
}

// SetPosition is called by the scheduler after spawn and after every
// infoton application. Not for plugin use.
func (c *Core) SetPosition(pos Position) {
	c.position = pos
}

// Plugin is a hook bundle installed on a scheduler. The scheduler invokes
// each installed plugin's implemented hooks in registration order; for
// SpawnPos the first plugin returning true wins. All methods are optional:
// a plugin implements only the subset interfaces below that it cares about.
type Plugin interface {
	// Name identifies the plugin for logging and the per-plugin side
	// table described in spec.md §9.
	Name() string
}

// PluginSetup is implemented by plugins that need one-time initialization
// when installed on a scheduler.
type PluginSetup interface {
	Plugin
	Setup(svc Service) error
}

// PluginOnSchedule is implemented by plugins that want a callback whenever
// any actor is installed (spawned or migrated-in) on the scheduler.
type PluginOnSchedule interface {
	Plugin
	OnSchedule(a Actor, svc Service) error
}

// PluginOnMessage is implemented by plugins that want a callback alongside
// (not instead of) the actor's own OnMessage, e.g. for metrics.
type PluginOnMessage interface {
	Plugin
	OnMessage(a Actor, body Body, svc Service) error
}

// PluginSchedulerInfoton lets a plugin override the default post-dispatch
// infoton energy computation (spec.md §4.4's scheduler_infoton policy).
type PluginSchedulerInfoton interface {
	Plugin
	SchedulerInfoton(currentActorCount, targetActorCount int, schedulerPos Position) Infoton
}

// PluginSpawnPos lets a plugin supply an actor's initial Position. The
// scheduler invokes installed plugins' SpawnPos in registration order; the
// first to return true wins.
type PluginSpawnPos interface {
	Plugin
	SpawnPos(a Actor, schedulerPos Position) (Position, bool)
}
