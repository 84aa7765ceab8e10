package runtime

import "time"

// DrainBatch is K from spec.md §4.1: the maximum number of messages a
// scheduler pulls from its HostService inbound queue in one drain step.
const DrainBatch = 30

// DefaultInboundQueueBound is MSG_BUFFER_SIZE from spec.md §5.
const DefaultInboundQueueBound = 100_000

// MigrationDistanceThreshold is the distance (in Position units) an actor
// must drift from its scheduler before check_migration looks for a nearer
// alternative (spec.md §4.4).
const MigrationDistanceThreshold float32 = 700

// Config bundles the tunables a Host and its Schedulers are built from.
type Config struct {
	// SchedulerCount is the number of schedulers the Host constructs.
	SchedulerCount int

	// NetworkHost identifies this OS process in every PostCode minted
	// here; schedulers sharing NetworkHost are co-located (spec.md §3).
	NetworkHost string

	// ViewSize scales the positioning space (spec.md §4.4).
	ViewSize float32

	// TargetActorCount is the steady-state actor count the default
	// scheduler_infoton policy balances toward.
	TargetActorCount int

	// InboundQueueBound caps each HostService's inbound queue; 0 means
	// unbounded (spec.md §5 treats the bound as optional).
	InboundQueueBound int

	// StartupStagger, when nonzero, is applied between scheduler starts
	// as a concession to a documented (but unspecified) race in cluster
	// plugins; 0 disables staggering in favor of a ready-barrier
	// protocol (spec.md §9 prefers this).
	StartupStagger time.Duration
}

// DefaultConfig returns a Config with the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		SchedulerCount:    4,
		NetworkHost:       "localhost",
		ViewSize:          1000,
		TargetActorCount:  1000,
		InboundQueueBound: DefaultInboundQueueBound,
		StartupStagger:    0,
	}
}
