// Package agents holds the per-agent mutable state and the kernel that
// advances it: the four numeric primitives and the perceive/act operations
// built from them. See design doc Sections 3 and 4.2.
package agents

import "github.com/google/uuid"

// Friend is a weighted, weak back-reference to another agent in the arena.
// The weight is not required to be normalised, and the edge may be
// asymmetric or self-referential. "Weak" here means the edge is skipped
// silently by the kernel if Index no longer resolves to a live agent — see
// design doc Section 4.2, "actions-of-friends".
type Friend struct {
	Index  int
	Weight float64
}

// Agent is a single member of the simulated population. Beliefs and
// Behaviours are shared read-only across all agents for the run; an Agent
// owns its own mutable state exclusively.
type Agent struct {
	ID    uuid.UUID
	NDays uint32

	// Activations[t][beliefIndex] is the activation vector at day t.
	// Row 0 is the initial condition.
	Activations [][]float64

	// Actions[t] is the arena index of the chosen behaviour for day t.
	// Row 0 is the initial action.
	Actions []int

	// Friends is the social neighbourhood used to compute pressure.
	Friends []Friend

	// Deltas[beliefIndex] is the per-belief memory/decay coefficient
	// applied to the previous day's activation.
	Deltas []float64

	// PerformanceRelationships[beliefIndex][behaviourIndex] is how strongly
	// holding a belief favours performing a behaviour.
	PerformanceRelationships [][]float64
}

// New constructs an Agent with pre-allocated per-day rows for nDays, with an
// explicit id, for loading.
func New(id uuid.UUID, nDays uint32, nBeliefs, nBehaviours int) *Agent {
	a := &Agent{
		ID:                       id,
		NDays:                    nDays,
		Activations:              make([][]float64, nDays),
		Actions:                  make([]int, nDays),
		Deltas:                   make([]float64, nBeliefs),
		PerformanceRelationships: make([][]float64, nBeliefs),
	}
	for t := range a.Activations {
		a.Activations[t] = make([]float64, nBeliefs)
	}
	for b := range a.PerformanceRelationships {
		a.PerformanceRelationships[b] = make([]float64, nBehaviours)
	}
	return a
}

// NewWithGeneratedID constructs an Agent with a fresh random id, for tests.
func NewWithGeneratedID(nDays uint32, nBeliefs, nBehaviours int) *Agent {
	return New(uuid.New(), nDays, nBeliefs, nBehaviours)
}
