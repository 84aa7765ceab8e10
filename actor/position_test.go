package actor_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/infoton-run/actorhost/actor"
)

func TestPosition_AddSub(t *testing.T) {
	a := actor.Position{X: 1, Y: 2, Z: 3}
	b := actor.Position{X: 4, Y: 5, Z: 6}

	require.Equal(t, actor.Position{X: 5, Y: 7, Z: 9}, a.Add(b))
	require.Equal(t, actor.Position{X: -3, Y: -3, Z: -3}, a.Sub(b))
}

func TestPosition_Distance(t *testing.T) {
	a := actor.Position{}
	b := actor.Position{X: 3, Y: 4}

	require.InDelta(t, 5.0, a.Distance(b), 1e-6)
}

func TestInfoton_Apply_NoopAtZeroDistance(t *testing.T) {
	pos := actor.Position{X: 1, Y: 2, Z: 3}
	inf := actor.Infoton{SourcePos: pos, Energy: 5}

	require.Equal(t, pos, inf.Apply(pos))
}

func TestInfoton_Apply_NoopInsideTargetDistanceWithPositiveEnergy(t *testing.T) {
	pos := actor.Position{}
	inf := actor.Infoton{SourcePos: actor.Position{X: actor.TargetDistance - 1}, Energy: 1}

	require.Equal(t, pos, inf.Apply(pos))
}

func TestInfoton_Apply_MovesTowardSourceOutsideTargetDistance(t *testing.T) {
	pos := actor.Position{}
	inf := actor.Infoton{SourcePos: actor.Position{X: actor.TargetDistance + 10}, Energy: 1}

	result := inf.Apply(pos)

	require.Greater(t, result.X, pos.X)
	require.LessOrEqual(t, result.X, inf.SourcePos.X)
}

func TestInfoton_Apply_NegativeEnergyRepels(t *testing.T) {
	pos := actor.Position{}
	inf := actor.Infoton{SourcePos: actor.Position{X: 10}, Energy: -1}

	result := inf.Apply(pos)

	require.Less(t, result.X, pos.X)
}

func TestPosition_DistanceIsSymmetric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gen := rapid.Float32Range(-1000, 1000)
		a := actor.Position{X: gen.Draw(t, "ax"), Y: gen.Draw(t, "ay"), Z: gen.Draw(t, "az")}
		b := actor.Position{X: gen.Draw(t, "bx"), Y: gen.Draw(t, "by"), Z: gen.Draw(t, "bz")}

		require.InDelta(t, a.Distance(b), b.Distance(a), 1e-3)
	})
}
