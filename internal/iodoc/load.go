package iodoc

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/contagent/internal/agents"
	"github.com/talgya/contagent/internal/entity"
)

// LoadBehaviours constructs the behaviour arena and an index by uuid
// string, in document order (bundle order, design doc Section 4.5).
func LoadBehaviours(docs []BehaviourDoc) ([]*entity.Behaviour, map[string]int, error) {
	behaviours := make([]*entity.Behaviour, len(docs))
	index := make(map[string]int, len(docs))
	for i, d := range docs {
		id, err := uuid.Parse(d.UUID)
		if err != nil {
			return nil, nil, fmt.Errorf("iodoc: behaviour %d: invalid uuid %q: %w", i, d.UUID, err)
		}
		behaviours[i] = entity.NewBehaviour(id, d.Name)
		index[d.UUID] = i
	}
	return behaviours, index, nil
}

// LoadBeliefs constructs the belief arena, then resolves every
// relationship and perception reference — references may only be resolved
// once every belief (for relationships) and every behaviour (for
// perceptions) exists, per design doc Section 6.2.
func LoadBeliefs(docs []BeliefDoc, behaviourIndex map[string]int) ([]*entity.Belief, map[string]int, error) {
	beliefs := make([]*entity.Belief, len(docs))
	index := make(map[string]int, len(docs))

	for i, d := range docs {
		id, err := uuid.Parse(d.UUID)
		if err != nil {
			return nil, nil, fmt.Errorf("iodoc: belief %d: invalid uuid %q: %w", i, d.UUID, err)
		}
		beliefs[i] = entity.NewBelief(id, d.Name)
		index[d.UUID] = i
	}

	for i, d := range docs {
		for targetUUID, weight := range d.Relationships {
			targetIndex, ok := index[targetUUID]
			if !ok {
				return nil, nil, fmt.Errorf("iodoc: belief %s: unresolvable relationship reference %q", d.UUID, targetUUID)
			}
			beliefs[i].SetRelationship(targetIndex, weight)
		}
		for behaviourUUID, weight := range d.Perceptions {
			behaviourIdx, ok := behaviourIndex[behaviourUUID]
			if !ok {
				return nil, nil, fmt.Errorf("iodoc: belief %s: unresolvable perception reference %q", d.UUID, behaviourUUID)
			}
			if weight < -1.0 || weight > 1.0 {
				return nil, nil, fmt.Errorf("iodoc: belief %s: perception %q = %v out of [-1, 1]", d.UUID, behaviourUUID, weight)
			}
			beliefs[i].SetPerception(behaviourIdx, weight)
		}
	}

	return beliefs, index, nil
}

// LoadAgents constructs the agent arena, then resolves every friend
// reference — friends may only be resolved once every agent exists, per
// design doc Section 6.2. nDays is the run's horizon (end_time - start_time
// + 1) used only to validate day-indexed sequence lengths; the document's
// own sequences determine the stored row count.
func LoadAgents(docs []AgentDoc, beliefIndex, behaviourIndex map[string]int, nDays int) ([]*agents.Agent, error) {
	arena := make([]*agents.Agent, len(docs))
	agentIndex := make(map[string]int, len(docs))

	for i, d := range docs {
		id, err := uuid.Parse(d.UUID)
		if err != nil {
			return nil, fmt.Errorf("iodoc: agent %d: invalid uuid %q: %w", i, d.UUID, err)
		}
		if len(d.Activations) < nDays || len(d.Actions) < nDays {
			return nil, fmt.Errorf("iodoc: agent %s: day-indexed sequences shorter than horizon %d", d.UUID, nDays)
		}

		a := agents.New(id, uint32(len(d.Activations)), len(beliefIndex), len(behaviourIndex))

		for t, row := range d.Activations {
			for beliefUUID, v := range row {
				bi, ok := beliefIndex[beliefUUID]
				if !ok {
					return nil, fmt.Errorf("iodoc: agent %s: unresolvable belief reference %q in activations[%d]", d.UUID, beliefUUID, t)
				}
				a.Activations[t][bi] = v
			}
		}

		for t, actionUUID := range d.Actions {
			hi, ok := behaviourIndex[actionUUID]
			if !ok {
				return nil, fmt.Errorf("iodoc: agent %s: unresolvable behaviour reference %q in actions[%d]", d.UUID, actionUUID, t)
			}
			a.Actions[t] = hi
		}

		for beliefUUID, delta := range d.Deltas {
			bi, ok := beliefIndex[beliefUUID]
			if !ok {
				return nil, fmt.Errorf("iodoc: agent %s: unresolvable belief reference %q in deltas", d.UUID, beliefUUID)
			}
			a.Deltas[bi] = delta
		}

		for beliefUUID, row := range d.PerformanceRelationships {
			bi, ok := beliefIndex[beliefUUID]
			if !ok {
				return nil, fmt.Errorf("iodoc: agent %s: unresolvable belief reference %q in performance_relationships", d.UUID, beliefUUID)
			}
			for behaviourUUID, weight := range row {
				hi, ok := behaviourIndex[behaviourUUID]
				if !ok {
					return nil, fmt.Errorf("iodoc: agent %s: unresolvable behaviour reference %q in performance_relationships", d.UUID, behaviourUUID)
				}
				a.PerformanceRelationships[bi][hi] = weight
			}
		}

		arena[i] = a
		agentIndex[d.UUID] = i
	}

	for i, d := range docs {
		for friendUUID, weight := range d.Friends {
			fi, ok := agentIndex[friendUUID]
			if !ok {
				return nil, fmt.Errorf("iodoc: agent %s: unresolvable friend reference %q", d.UUID, friendUUID)
			}
			arena[i].Friends = append(arena[i].Friends, agents.Friend{Index: fi, Weight: weight})
		}
	}

	return arena, nil
}
