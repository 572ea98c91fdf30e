package agents

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/talgya/contagent/internal/entity"
)

// KernelError reports a fatal invariant violation encountered while
// advancing an agent: a missing delta/performance entry, or a NaN/Inf
// produced during an update. See design doc Section 7.
type KernelError struct {
	AgentID string
	Day     int
	Belief  int
	Reason  string
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("agent %s day %d belief %d: %s", e.AgentID, e.Day, e.Belief, e.Reason)
}

// weightedRelationship is P1: how much holding b1 at day t pulls toward b2.
// Returns 0.0 if b1 has zero activation weight from the table (absence is
// "no contribution", not an error — design doc Section 4.1).
func weightedRelationship(a *Agent, t, b1Index, b2Index int, beliefs []*entity.Belief) float64 {
	return a.Activations[t][b1Index] * beliefs[b1Index].Relationship(b2Index)
}

// contextualize is P2: the mean weighted relationship from b to every
// belief in the run, given activations at day t.
func contextualize(a *Agent, t, bIndex int, beliefs []*entity.Belief) float64 {
	if len(beliefs) == 0 {
		return 0.0
	}
	var sum float64
	for b2 := range beliefs {
		sum += weightedRelationship(a, t, bIndex, b2, beliefs)
	}
	return sum / float64(len(beliefs))
}

// actionsOfFriends is P3: for agent a at day t, the sum of friend weights
// grouped by the behaviour each friend performed. Friends whose index no
// longer resolves into allAgents are skipped silently.
func actionsOfFriends(allAgents []*Agent, a *Agent, t int) map[int]float64 {
	result := make(map[int]float64)
	for _, f := range a.Friends {
		if f.Index < 0 || f.Index >= len(allAgents) {
			continue
		}
		friend := allAgents[f.Index]
		if friend == nil || t < 0 || t >= len(friend.Actions) {
			continue
		}
		result[friend.Actions[t]] += f.Weight
	}
	return result
}

// pressure is P4: the mean of perception·weight over the behaviours
// performed by an agent's friends.
func pressure(belief *entity.Belief, friendActions map[int]float64) float64 {
	if len(friendActions) == 0 {
		return 0.0
	}
	var sum float64
	for behaviourIndex, w := range friendActions {
		sum += belief.Perception(behaviourIndex) * w
	}
	return sum / float64(len(friendActions))
}

// activationChange composes P2 and P4 into the core social-influence
// equation: ΔA = ((1 ± C) / 2) · |P|, with the C term taking the sign of P
// (added when P > 0, subtracted otherwise) and the result always carrying
// the magnitude of the pressure rather than its sign. When P == 0, the
// value is 0.0. This matches the worked boundary scenarios exactly — a
// negative pressure still produces a positive ΔA (scaled down, rather than
// reversed, by context) — and is the "sign flip" the design doc calls out.
func activationChange(a *Agent, t, bIndex int, beliefs []*entity.Belief, friendActions map[int]float64) float64 {
	belief := beliefs[bIndex]
	p := pressure(belief, friendActions)
	if p == 0.0 {
		return 0.0
	}
	c := contextualize(a, t, bIndex, beliefs)
	if p > 0 {
		return (1.0 + c) / 2.0 * p
	}
	return (1.0 - c) / 2.0 * (-p)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Perceive updates a's activation row at day t from day t-1: the memory
// term deltas[b]·prev plus the activation change, clamped to [-1, 1]. t must
// be >= 1 and row t-1 must already be complete.
func Perceive(a *Agent, allAgents []*Agent, t int, beliefs []*entity.Belief) error {
	friendActions := actionsOfFriends(allAgents, a, t-1)

	for bIndex := range beliefs {
		if bIndex >= len(a.Deltas) {
			return &KernelError{AgentID: a.ID.String(), Day: t, Belief: bIndex, Reason: "missing delta entry"}
		}
		prev := a.Activations[t-1][bIndex]
		raw := a.Deltas[bIndex]*prev + activationChange(a, t-1, bIndex, beliefs, friendActions)
		if math.IsNaN(raw) || math.IsInf(raw, 0) {
			return &KernelError{AgentID: a.ID.String(), Day: t, Belief: bIndex, Reason: "non-finite activation"}
		}
		a.Activations[t][bIndex] = clamp(raw, -1.0, 1.0)
	}
	return nil
}

// Act chooses actions[t] for a by scoring every behaviour against a's
// activations at day t and performance relationships, then selecting per
// design doc Section 4.2: the least-negative score if all scores are
// negative, the sole non-negative score if exactly one qualifies, or a
// categorical sample over the normalised non-negative scores otherwise.
// Scores for every behaviour are computed up front, before any branch on
// the maximum — see design doc Section 9, Open Question 5.
func Act(a *Agent, t int, behaviours []*entity.Behaviour, beliefs []*entity.Belief, rng *rand.Rand) error {
	scores := make([]float64, len(behaviours))

	for h := range behaviours {
		var s float64
		for b := range beliefs {
			if b >= len(a.PerformanceRelationships) || h >= len(a.PerformanceRelationships[b]) {
				return &KernelError{AgentID: a.ID.String(), Day: t, Belief: b, Reason: "missing performance relationship entry"}
			}
			s += a.PerformanceRelationships[b][h] * a.Activations[t][b]
		}
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return &KernelError{AgentID: a.ID.String(), Day: t, Belief: -1, Reason: "non-finite action score"}
		}
		scores[h] = s
	}

	chosen := selectBehaviour(scores, rng)
	a.Actions[t] = chosen
	return nil
}

// selectBehaviour implements the action-selection procedure of design doc
// Section 4.2 over a precomputed score table.
func selectBehaviour(scores []float64, rng *rand.Rand) int {
	maxIndex := 0
	for h, s := range scores {
		if s > scores[maxIndex] {
			maxIndex = h
		}
	}

	if scores[maxIndex] < 0 {
		return maxIndex
	}

	type candidate struct {
		index int
		score float64
	}
	var positive []candidate
	for h, s := range scores {
		if s >= 0 {
			positive = append(positive, candidate{h, s})
		}
	}

	if len(positive) == 1 {
		return positive[0].index
	}

	var total float64
	for _, c := range positive {
		total += c.score
	}

	rv := rng.Float64() * total
	for _, c := range positive {
		rv -= c.score
		if rv <= 0 {
			return c.index
		}
	}
	return positive[len(positive)-1].index
}
