package runtime

import (
	"hash/fnv"
	"math/rand/v2"
	"strconv"

	"github.com/infoton-run/actorhost/actor"
)

// basePort..basePort+5 are the six PostCode ports the default Positioner
// recognizes as axis-aligned unit directions (spec.md §4.4).
const basePort = 24721

var axisDirections = [6]actor.Position{
	{X: 1}, {X: -1},
	{Y: 1}, {Y: -1},
	{Z: 1}, {Z: -1},
}

// Positioner assigns initial positions to schedulers and spawned actors
// (spec.md §2, §4.4).
type Positioner interface {
	// SchedulerPosition returns the position assigned to the scheduler at
	// postcode; isRoot schedulers always sit at the origin.
	SchedulerPosition(postcode actor.PostCode, isRoot bool, cfg Config) actor.Position

	// ActorPosition returns the initial position for an actor spawned on
	// a scheduler currently at schedulerPos.
	ActorPosition(schedulerPos actor.Position, cfg Config) actor.Position
}

// DefaultPositioner implements spec.md §4.4's deterministic-root /
// pseudo-random-offset / port-based-axis scheme.
type DefaultPositioner struct{}

var _ Positioner = DefaultPositioner{}

// SchedulerPosition implements Positioner.
func (DefaultPositioner) SchedulerPosition(postcode actor.PostCode, isRoot bool, cfg Config) actor.Position {
	if isRoot {
		return actor.NullPosition
	}

	view := cfg.ViewSize
	hostPos := deterministicHostPosition(postcode.Host, view)
	offset := portOffset(postcode, view)

	return hostPos.Add(offset)
}

// ActorPosition implements Positioner: scheduler position plus uniform
// noise in [-view/2, view/2]^3. Unlike the scheduler's own position, this
// is genuinely random per spawn, not derived deterministically from
// anything the caller already knows.
func (DefaultPositioner) ActorPosition(schedulerPos actor.Position, cfg Config) actor.Position {
	view := cfg.ViewSize
	half := view / 2
	return schedulerPos.Add(actor.Position{
		X: (rand.Float32()*2 - 1) * half,
		Y: (rand.Float32()*2 - 1) * half,
		Z: (rand.Float32()*2 - 1) * half,
	})
}

// deterministicHostPosition derives a position from a host identifier,
// scaled by 5x the view size, using a PRNG seeded from the identifier so
// the same host always maps to the same base position.
func deterministicHostPosition(host string, view float32) actor.Position {
	r := newSeededRand(seedFor(host))
	return uniformCube(view*5, r)
}

// portOffset implements the port-to-direction mapping: ports
// basePort..basePort+5 map to the six axis-aligned unit directions times
// view size; any other (or non-numeric) scheduler part gets a uniformly
// random offset in [-view/2, view/2]^3.
func portOffset(postcode actor.PostCode, view float32) actor.Position {
	port, err := strconv.Atoi(postcode.Scheduler)
	if err == nil && port >= basePort && port < basePort+len(axisDirections) {
		return axisDirections[port-basePort].Scale(view)
	}

	return uniformCube(view, newSeededRand(seedFor(postcode.String())))
}

// uniformCube returns a uniform random Position in [-side/2, side/2]^3.
func uniformCube(side float32, r *rand.Rand) actor.Position {
	half := side / 2
	return actor.Position{
		X: (r.Float32()*2 - 1) * half,
		Y: (r.Float32()*2 - 1) * half,
		Z: (r.Float32()*2 - 1) * half,
	}
}

func seedFor(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

func newSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
