package actor

// Body is the payload carried by a Message. It is a closed variant over the
// built-in kinds below plus an escape hatch (UserBody) for opaque
// user-defined payloads; Body is otherwise treated as opaque by the core.
type Body interface {
	bodyKind() string
}

// BodyKind returns the short name of b's concrete kind ("Spawn", "Die",
// "User", ...), for logging and tracing — the one piece of bodyKind the
// core exposes outside itself.
func BodyKind(b Body) string {
	if b == nil {
		return "nil"
	}
	return b.bodyKind()
}

// Message is the envelope routed by schedulers and HostServices.
type Message struct {
	Sender Address
	Target Address
	Body   Body

	// EnergyOverride, when non-nil, replaces the scheduler's default
	// post-dispatch infoton energy computation for the receiving actor
	// (the "energyOverride" parameter of the service Send API in
	// spec.md §6).
	EnergyOverride *float32
}

// Spawn requests that the receiving scheduler instantiate a new actor. The
// core does not construct actors from wire data itself (that is a plugin's
// job via spawnpos/onschedule); Spawn exists as a signal kind for plugins
// that implement remote-spawn semantics.
type Spawn struct {
	Requested Address
}

func (Spawn) bodyKind() string { return "Spawn" }

// Die tells an actor to terminate. Delivered synthetically to every
// resident actor during scheduler shutdown, and usable by user code to ask
// an actor to stop on its own.
type Die struct {
	Reason string
}

func (Die) bodyKind() string { return "Die" }

// RecipientMoved is synthesized when a message targets an actor that has
// migrated away (New is the null address if the target is unknown entirely,
// not merely relocated).
type RecipientMoved struct {
	Old      Address
	New      Address
	Original Message
}

func (RecipientMoved) bodyKind() string { return "RecipientMoved" }

// ForceAddRoot asks the cluster-membership helper actor to treat the given
// PostCode as a root/zygote. The core only forwards this; interpreting it is
// a cluster plugin's responsibility (out of core scope per spec.md §1).
type ForceAddRoot struct {
	PostCode PostCode
}

func (ForceAddRoot) bodyKind() string { return "ForceAddRoot" }

// InfotonMessage carries an Infoton force packet as a message body, for
// plugins and user actors that want to inject infoton effects explicitly
// (distinct from the post-dispatch infoton application the scheduler always
// performs).
type InfotonMessage struct {
	Infoton Infoton
}

func (InfotonMessage) bodyKind() string { return "Infoton" }

// Started is delivered to an actor immediately after spawn installs it,
// before any user message. Mirrors the lifecycle-message convention common
// to actor engines in the broader ecosystem; spec.md's mandatory kinds are
// Spawn/Die, this supplements them.
type Started struct{}

func (Started) bodyKind() string { return "Started" }

// UserBody wraps an arbitrary user-defined payload. The core never inspects
// Payload; user onmessage implementations type-switch on it.
type UserBody struct {
	Payload any
}

func (UserBody) bodyKind() string { return "User" }

// MigrationEnvelope carries a migrating actor's live value from the source
// scheduler's HostService to the destination's inbound queue (spec.md
// §4.5, step 2). Since migration here is always in-process, the actor
// itself — not a serialized snapshot — crosses the goroutine boundary;
// user-defined payload serialization for a cross-host transport plugin is
// explicitly out of core scope (spec.md §1).
type MigrationEnvelope struct {
	OldAddress Address
	NewAddress Address
	Actor      Actor
}

func (MigrationEnvelope) bodyKind() string { return "MigrationEnvelope" }
