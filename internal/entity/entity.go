// Package entity holds the immutable Belief and Behaviour graphs shared
// read-only across a run. See design doc Sections 3 and 4.1.
package entity

import "github.com/google/uuid"

// Behaviour is an externally observable action type. Immutable after load.
type Behaviour struct {
	ID   uuid.UUID
	Name string
}

// NewBehaviour constructs a Behaviour with an explicit id, for loading.
func NewBehaviour(id uuid.UUID, name string) *Behaviour {
	return &Behaviour{ID: id, Name: name}
}

// NewBehaviourWithGeneratedID constructs a Behaviour with a fresh random id,
// for tests.
func NewBehaviourWithGeneratedID(name string) *Behaviour {
	return &Behaviour{ID: uuid.New(), Name: name}
}

// Belief is an internal disposition that influences action choice and other
// beliefs. Immutable after load; its tables are populated once by the loader
// and read-only for the rest of the run.
type Belief struct {
	ID   uuid.UUID
	Name string

	// relationships maps a belief's arena index to the weight this belief
	// exerts on the adoption of that belief. 1.0 is neutral.
	relationships map[int]float64

	// perceptions maps a behaviour's arena index to how strongly observing
	// it can be attributed to holding this belief, in [-1, 1].
	perceptions map[int]float64
}

// NewBelief constructs a Belief with an explicit id, for loading.
func NewBelief(id uuid.UUID, name string) *Belief {
	return &Belief{
		ID:            id,
		Name:          name,
		relationships: make(map[int]float64),
		perceptions:   make(map[int]float64),
	}
}

// NewBeliefWithGeneratedID constructs a Belief with a fresh random id, for
// tests.
func NewBeliefWithGeneratedID(name string) *Belief {
	return NewBelief(uuid.New(), name)
}

// SetRelationship records this belief's influence on beliefIndex's adoption.
func (b *Belief) SetRelationship(beliefIndex int, weight float64) {
	b.relationships[beliefIndex] = weight
}

// SetPerception records how strongly observing behaviourIndex signals this
// belief.
func (b *Belief) SetPerception(behaviourIndex int, weight float64) {
	b.perceptions[behaviourIndex] = weight
}

// Relationship returns this belief's influence on beliefIndex's adoption, or
// 0.0 (neutral/no contribution) if absent. Absence is a loader bug under
// invariant 3, but the primitive treats it as "no contribution" — see
// design doc Section 4.1.
func (b *Belief) Relationship(beliefIndex int) float64 {
	return b.relationships[beliefIndex]
}

// Perception returns how strongly observing behaviourIndex signals this
// belief, or 0.0 if absent.
func (b *Belief) Perception(behaviourIndex int) float64 {
	return b.perceptions[behaviourIndex]
}
