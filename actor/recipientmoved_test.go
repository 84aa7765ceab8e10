package actor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/infoton-run/actorhost/actor"
)

// holderActor is a minimal Actor that stores one Address field, exercising
// the AddressHolder rewrite path of actor.HandleRecipientMoved.
type holderActor struct {
	core   actor.Core
	friend actor.Address
}

func (a *holderActor) Core() *actor.Core                   { return &a.core }
func (a *holderActor) OnMessage(actor.Service, actor.Body) error { return nil }
func (a *holderActor) StoredAddresses() []*actor.Address    { return []*actor.Address{&a.friend} }

var _ actor.AddressHolder = (*holderActor)(nil)

// recordingService records every Send call instead of actually routing it.
type recordingService struct {
	sent []actor.Message
}

func (s *recordingService) Spawn(actor.Actor) (actor.Address, error) { return actor.Address{}, nil }

func (s *recordingService) Send(me, target actor.Address, body actor.Body, energyOverride ...float32) {
	msg := actor.Message{Sender: me, Target: target, Body: body}
	if len(energyOverride) > 0 {
		e := energyOverride[0]
		msg.EnergyOverride = &e
	}
	s.sent = append(s.sent, msg)
}

func (s *recordingService) Addr(me actor.Address) actor.Address { return me }
func (s *recordingService) Pos() actor.Position                 { return actor.Position{} }
func (s *recordingService) MigrateToNearest(actor.Address, []actor.MigrationAlternative) error {
	return nil
}
func (s *recordingService) Context() context.Context { return context.Background() }

func TestHandleRecipientMoved_RewritesStoredAddressAndResends(t *testing.T) {
	oldAddr := actor.Address{PostCode: actor.PostCode{Host: "h", Scheduler: "1"}, Box: 1}
	newAddr := actor.Address{PostCode: actor.PostCode{Host: "h", Scheduler: "2"}, Box: 1}
	me := actor.Address{PostCode: actor.PostCode{Host: "h", Scheduler: "1"}, Box: 2}

	a := &holderActor{friend: oldAddr}
	a.core.SetAddress(me)

	original := actor.Message{Sender: me, Target: oldAddr, Body: actor.UserBody{Payload: "ping"}}
	svc := &recordingService{}

	actor.HandleRecipientMoved(a, svc, actor.RecipientMoved{Old: oldAddr, New: newAddr, Original: original})

	require.Equal(t, newAddr, a.friend)
	require.Len(t, svc.sent, 1)
	require.Equal(t, newAddr, svc.sent[0].Target)
	require.Equal(t, original.Body, svc.sent[0].Body)
}

func TestHandleRecipientMoved_NullNewAddressDoesNotResend(t *testing.T) {
	oldAddr := actor.Address{PostCode: actor.PostCode{Host: "h", Scheduler: "1"}, Box: 1}
	a := &holderActor{friend: oldAddr}

	svc := &recordingService{}
	actor.HandleRecipientMoved(a, svc, actor.RecipientMoved{Old: oldAddr, New: actor.NullAddress})

	require.Equal(t, actor.NullAddress, a.friend)
	require.Empty(t, svc.sent)
}

func TestHandleRecipientMoved_PreservesEnergyOverride(t *testing.T) {
	oldAddr := actor.Address{PostCode: actor.PostCode{Host: "h", Scheduler: "1"}, Box: 1}
	newAddr := actor.Address{PostCode: actor.PostCode{Host: "h", Scheduler: "2"}, Box: 1}

	a := &holderActor{friend: oldAddr}
	e := float32(2.5)
	original := actor.Message{Target: oldAddr, Body: actor.UserBody{Payload: "x"}, EnergyOverride: &e}

	svc := &recordingService{}
	actor.HandleRecipientMoved(a, svc, actor.RecipientMoved{Old: oldAddr, New: newAddr, Original: original})

	require.Len(t, svc.sent, 1)
	require.NotNil(t, svc.sent[0].EnergyOverride)
	require.Equal(t, float32(2.5), *svc.sent[0].EnergyOverride)
}
