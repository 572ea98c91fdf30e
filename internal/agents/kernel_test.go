package agents

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/talgya/contagent/internal/entity"
)

func newTestAgent(nDays, nBeliefs, nBehaviours int) *Agent {
	return NewWithGeneratedID(uint32(nDays), nBeliefs, nBehaviours)
}

// S1: a lone agent with no friends and zero relationships only decays by
// its delta term, and with a single behaviour it always performs that one.
func TestPerceiveActSingleAgentDecay(t *testing.T) {
	belief := entity.NewBeliefWithGeneratedID("b")
	behaviour := entity.NewBehaviourWithGeneratedID("h")

	a := newTestAgent(2, 1, 1)
	a.Deltas[0] = 0.5
	a.PerformanceRelationships[0][0] = 1.0
	a.Activations[0][0] = 0.8

	err := Perceive(a, []*Agent{a}, 1, []*entity.Belief{belief})
	require.NoError(t, err)
	require.InDelta(t, 0.4, a.Activations[1][0], 1e-9)

	rng := rand.New(rand.NewSource(1))
	err = Act(a, 1, []*entity.Behaviour{behaviour}, []*entity.Belief{belief}, rng)
	require.NoError(t, err)
	require.Equal(t, 0, a.Actions[1])
}

// S2: mutual friends whose behaviour positively reinforces a belief push its
// activation up.
func TestPerceivePositivePressure(t *testing.T) {
	belief := entity.NewBeliefWithGeneratedID("b")
	belief.SetRelationship(0, 1.0)
	belief.SetPerception(0, 1.0)

	a := newTestAgent(2, 1, 1)
	b := newTestAgent(2, 1, 1)
	a.Deltas[0], b.Deltas[0] = 1.0, 1.0
	a.Activations[0][0], b.Activations[0][0] = 0.5, 0.5
	a.Actions[0], b.Actions[0] = 0, 0
	a.Friends = []Friend{{Index: 1, Weight: 1.0}}
	b.Friends = []Friend{{Index: 0, Weight: 1.0}}

	population := []*Agent{a, b}
	beliefs := []*entity.Belief{belief}

	require.NoError(t, Perceive(a, population, 1, beliefs))
	require.InDelta(t, 1.0, a.Activations[1][0], 1e-9)
}

// S3: the same setup with a negative perception still increases activation
// (scaled down rather than reversed by context) — the documented sign
// behaviour of activationChange.
func TestPerceiveNegativePerceptionSignFlip(t *testing.T) {
	belief := entity.NewBeliefWithGeneratedID("b")
	belief.SetRelationship(0, 1.0)
	belief.SetPerception(0, -1.0)

	a := newTestAgent(2, 1, 1)
	b := newTestAgent(2, 1, 1)
	a.Deltas[0], b.Deltas[0] = 1.0, 1.0
	a.Activations[0][0], b.Activations[0][0] = 0.5, 0.5
	a.Actions[0], b.Actions[0] = 0, 0
	a.Friends = []Friend{{Index: 1, Weight: 1.0}}
	b.Friends = []Friend{{Index: 0, Weight: 1.0}}

	population := []*Agent{a, b}
	beliefs := []*entity.Belief{belief}

	require.NoError(t, Perceive(a, population, 1, beliefs))
	require.InDelta(t, 0.75, a.Activations[1][0], 1e-9)
}

// S4: with two behaviours both scoring non-negative, selection is a
// categorical draw over the normalised scores, deterministic for a fixed
// seed.
func TestActCategoricalSamplingIsDeterministic(t *testing.T) {
	beliefs := []*entity.Belief{entity.NewBeliefWithGeneratedID("b")}
	behaviours := []*entity.Behaviour{
		entity.NewBehaviourWithGeneratedID("h0"),
		entity.NewBehaviourWithGeneratedID("h1"),
	}

	a := newTestAgent(1, 1, 2)
	a.Activations[0][0] = 1.0
	a.PerformanceRelationships[0][0] = 1.0
	a.PerformanceRelationships[0][1] = 1.0

	rng1 := rand.New(rand.NewSource(42))
	require.NoError(t, Act(a, 0, behaviours, beliefs, rng1))
	first := a.Actions[0]

	rng2 := rand.New(rand.NewSource(42))
	require.NoError(t, Act(a, 0, behaviours, beliefs, rng2))
	require.Equal(t, first, a.Actions[0])
}

// S5: when every score is negative, the least-negative (closest to zero)
// behaviour is chosen deterministically, with no randomness involved.
func TestActAllNegativeScoresPicksLeastNegative(t *testing.T) {
	beliefs := []*entity.Belief{entity.NewBeliefWithGeneratedID("b")}
	behaviours := []*entity.Behaviour{
		entity.NewBehaviourWithGeneratedID("h0"),
		entity.NewBehaviourWithGeneratedID("h1"),
		entity.NewBehaviourWithGeneratedID("h2"),
	}

	a := newTestAgent(1, 1, 3)
	a.Activations[0][0] = 1.0
	a.PerformanceRelationships[0][0] = -0.9
	a.PerformanceRelationships[0][1] = -0.1
	a.PerformanceRelationships[0][2] = -0.5

	rng := rand.New(rand.NewSource(7))
	require.NoError(t, Act(a, 0, behaviours, beliefs, rng))
	require.Equal(t, 1, a.Actions[0])
}

// With exactly one non-negative score, that behaviour is chosen without
// consuming randomness.
func TestActSingleNonNegativeScoreIsChosenOutright(t *testing.T) {
	beliefs := []*entity.Belief{entity.NewBeliefWithGeneratedID("b")}
	behaviours := []*entity.Behaviour{
		entity.NewBehaviourWithGeneratedID("h0"),
		entity.NewBehaviourWithGeneratedID("h1"),
	}

	a := newTestAgent(1, 1, 2)
	a.Activations[0][0] = 1.0
	a.PerformanceRelationships[0][0] = -0.2
	a.PerformanceRelationships[0][1] = 0.3

	rng := rand.New(rand.NewSource(99))
	require.NoError(t, Act(a, 0, behaviours, beliefs, rng))
	require.Equal(t, 1, a.Actions[0])
}

// With no friends at all, activations decay by delta alone regardless of
// the belief relationship/perception tables.
func TestPerceiveNoFriendsDecaysOnly(t *testing.T) {
	belief := entity.NewBeliefWithGeneratedID("b")
	belief.SetRelationship(0, 0.9)
	belief.SetPerception(0, 0.9)

	a := newTestAgent(2, 1, 1)
	a.Deltas[0] = 0.3
	a.Activations[0][0] = -0.6

	require.NoError(t, Perceive(a, []*Agent{a}, 1, []*entity.Belief{belief}))
	require.InDelta(t, 0.3*-0.6, a.Activations[1][0], 1e-9)
}

// With all relationships and perceptions at zero, activations decay by
// delta alone even with friends present.
func TestPerceiveZeroTablesDecaysOnly(t *testing.T) {
	belief := entity.NewBeliefWithGeneratedID("b")

	a := newTestAgent(2, 1, 1)
	b := newTestAgent(2, 1, 1)
	a.Deltas[0] = 0.4
	a.Activations[0][0] = 0.5
	b.Actions[0] = 0
	a.Friends = []Friend{{Index: 1, Weight: 1.0}}

	population := []*Agent{a, b}
	require.NoError(t, Perceive(a, population, 1, []*entity.Belief{belief}))
	require.InDelta(t, 0.2, a.Activations[1][0], 1e-9)
}

// Activations always clamp into [-1, 1] even when the raw update would
// overshoot.
func TestPerceiveClampsToUnitRange(t *testing.T) {
	belief := entity.NewBeliefWithGeneratedID("b")
	belief.SetRelationship(0, 1.0)
	belief.SetPerception(0, 1.0)

	a := newTestAgent(2, 1, 1)
	b := newTestAgent(2, 1, 1)
	a.Deltas[0], b.Deltas[0] = 1.0, 1.0
	a.Activations[0][0], b.Activations[0][0] = 1.0, 1.0
	a.Actions[0], b.Actions[0] = 0, 0
	a.Friends = []Friend{{Index: 1, Weight: 1.0}}
	b.Friends = []Friend{{Index: 0, Weight: 1.0}}

	population := []*Agent{a, b}
	require.NoError(t, Perceive(a, population, 1, []*entity.Belief{belief}))
	require.LessOrEqual(t, a.Activations[1][0], 1.0)
	require.GreaterOrEqual(t, a.Activations[1][0], -1.0)
}

// A missing delta entry for a configured belief is a fatal KernelError, not
// a silently-assumed zero.
func TestPerceiveMissingDeltaIsFatal(t *testing.T) {
	beliefs := []*entity.Belief{
		entity.NewBeliefWithGeneratedID("b0"),
		entity.NewBeliefWithGeneratedID("b1"),
	}
	a := newTestAgent(2, 1, 1)
	a.Deltas = a.Deltas[:1]

	err := Perceive(a, []*Agent{a}, 1, beliefs)
	require.Error(t, err)
	var kerr *KernelError
	require.ErrorAs(t, err, &kerr)
}

func TestAgentConstructorPreallocatesRows(t *testing.T) {
	id := uuid.New()
	a := New(id, 3, 2, 4)
	require.Equal(t, id, a.ID)
	require.Len(t, a.Activations, 3)
	require.Len(t, a.Activations[0], 2)
	require.Len(t, a.PerformanceRelationships, 2)
	require.Len(t, a.PerformanceRelationships[0], 4)
	require.Len(t, a.Actions, 3)
	require.Len(t, a.Deltas, 2)
}
