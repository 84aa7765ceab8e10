package actor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/infoton-run/actorhost/actor"
)

func TestPostCode_SameHost(t *testing.T) {
	a := actor.PostCode{Host: "h1", Scheduler: "24721"}
	b := actor.PostCode{Host: "h1", Scheduler: "24722"}
	c := actor.PostCode{Host: "h2", Scheduler: "24721"}

	require.True(t, a.SameHost(b))
	require.False(t, a.SameHost(c))
}

func TestPostCode_IsNull(t *testing.T) {
	require.True(t, actor.NullPostCode.IsNull())
	require.False(t, actor.PostCode{Host: "h1"}.IsNull())
}

func TestPostCode_String(t *testing.T) {
	require.Equal(t, "h1/24721", actor.PostCode{Host: "h1", Scheduler: "24721"}.String())
}

func TestAddress_IsNull(t *testing.T) {
	require.True(t, actor.NullAddress.IsNull())

	addr := actor.Address{PostCode: actor.PostCode{Host: "h1", Scheduler: "24721"}, Box: 1}
	require.False(t, addr.IsNull())
}

func TestAddress_StringAndParseRoundTrip(t *testing.T) {
	addr := actor.Address{PostCode: actor.PostCode{Host: "h1", Scheduler: "24721"}, Box: 42}

	parsed, err := actor.ParseAddress(addr.String())
	require.NoError(t, err)
	require.Equal(t, addr, parsed)
}

func TestParseAddress_Malformed(t *testing.T) {
	_, err := actor.ParseAddress("no-at-sign")
	require.Error(t, err)

	_, err = actor.ParseAddress("h1/24721@notanumber")
	require.Error(t, err)

	_, err = actor.ParseAddress("noslash@1")
	require.Error(t, err)
}

func TestNewPostCode(t *testing.T) {
	pc := actor.NewPostCode("h1", 3)
	require.Equal(t, actor.PostCode{Host: "h1", Scheduler: "3"}, pc)
}
