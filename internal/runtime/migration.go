package runtime

import (
	"errors"
	"fmt"

	"github.com/infoton-run/actorhost/actor"
)

// ErrRouteFailed is returned by migrateOut when the destination scheduler
// is unreachable (spec.md §4.5's "if D is unreachable at step 2, migration
// aborts").
var ErrRouteFailed = errors.New("runtime: route to destination failed")

// ErrMigrationAborted is the taxonomy-level sentinel for any migration that
// did not complete; migrateOut always wraps the more specific ErrRouteFailed
// underneath it, so callers can match on either the general or the precise
// cause with errors.Is.
var ErrMigrationAborted = errors.New("runtime: migration aborted")

// migrateOut implements spec.md §4.5's migration protocol from the source
// scheduler's side. Because Box allocation is host-wide unique (see the
// Scheduler.boxCounter comment), the actor's new Address is known
// synchronously — no acknowledgement round-trip with the destination is
// needed, which also sidesteps the ordering spec.md leaves open for when a
// forwarding entry's target address becomes known.
//
// Unlike the literal step order in spec.md §4.5 (remove from directory,
// *then* attempt the cross-thread send, reinserting on failure), this
// attempts the send first and only mutates the directory on success. Both
// orders satisfy the stated invariant — the actor is never observably
// absent from every directory — and attempting first avoids a window where
// a concurrent dispatch could see the actor missing from the source
// without yet being routable to the destination.
func (s *Scheduler) migrateOut(a actor.Actor, destPostCode actor.PostCode) error {
	oldAddr := a.Core().Address()
	newAddr := actor.Address{PostCode: destPostCode, Box: oldAddr.Box}

	msg := actor.Message{
		Target: newAddr,
		Body: actor.MigrationEnvelope{
			OldAddress: oldAddr,
			NewAddress: newAddr,
			Actor:      a,
		},
	}

	if !s.hostService.RemoteRoutes(msg) {
		s.logger.Warn("migration aborted: destination unreachable",
			"box", oldAddr.Box, "destination", destPostCode)
		return fmt.Errorf("%w: %w: %s", ErrMigrationAborted, ErrRouteFailed, destPostCode)
	}

	delete(s.directory, oldAddr.Box)
	s.forwarding[oldAddr.Box] = newAddr

	s.logger.Info("migrated actor out", "box", oldAddr.Box, "destination", destPostCode)

	return nil
}

// migrateIn implements spec.md §4.5 step 3 on the destination scheduler:
// reconstruct the actor in the local directory at its new Address and
// invoke OnSchedule if implemented, exactly as a fresh spawn does except
// the actor's position and state carry over unchanged.
func (s *Scheduler) migrateIn(env actor.MigrationEnvelope) {
	a := env.Actor
	core := a.Core()
	core.SetAddress(env.NewAddress)

	s.directory[env.NewAddress.Box] = &resident{a: a}

	for _, p := range s.plugins {
		if hook, ok := p.(actor.PluginOnSchedule); ok {
			if err := hook.OnSchedule(a, s); err != nil {
				s.logger.Error("plugin OnSchedule failed on migration-in", "plugin", p.Name(), "error", err)
			}
		}
	}

	if hook, ok := a.(actor.Schedulable); ok {
		if err := hook.OnSchedule(s); err != nil {
			s.logger.Error("actor OnSchedule failed on migration-in", "address", env.NewAddress, "error", err)
		}
	}

	s.logger.Info("migrated actor in", "box", env.NewAddress.Box, "from", env.OldAddress.PostCode)
}
