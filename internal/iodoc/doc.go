// Package iodoc defines the JSON document shapes exchanged with the
// outside world (design doc Section 6.2/6.3) and the loaders/writers that
// translate between them and the internal arena representation. Parsing
// itself is encoding/json; reference resolution (belief-to-belief,
// belief-to-behaviour, agent-to-agent) happens here because it requires
// every entity of the referenced kind to already exist.
package iodoc

// BehaviourDoc is the wire shape of a Behaviour.
type BehaviourDoc struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// BeliefDoc is the wire shape of a Belief. Relationships and Perceptions
// are keyed by the referenced entity's uuid string; they are resolved into
// arena indices after every Belief and Behaviour has been constructed.
type BeliefDoc struct {
	UUID          string             `json:"uuid"`
	Name          string             `json:"name"`
	Relationships map[string]float64 `json:"relationships"`
	Perceptions   map[string]float64 `json:"perceptions"`
}

// AgentDoc is the wire shape of an Agent. Friends are keyed by the
// referenced agent's uuid string and resolved after every Agent has been
// constructed.
type AgentDoc struct {
	UUID                     string                         `json:"uuid"`
	Actions                  []string                       `json:"actions"`
	Activations              []map[string]float64           `json:"activations"`
	Deltas                   map[string]float64             `json:"deltas"`
	Friends                  map[string]float64              `json:"friends"`
	PerformanceRelationships map[string]map[string]float64  `json:"performance_relationships"`
}

// SummaryDayDoc is the wire shape of one day's summary record.
type SummaryDayDoc struct {
	MeanActivations    map[string]float64 `json:"mean_activations"`
	SDActivations      map[string]float64 `json:"sd_activations"`
	MedianActivations  map[string]float64 `json:"median_activations"`
	NonzeroActivations map[string]int     `json:"nonzero_activations"`
	NPerformers        map[string]int     `json:"n_performers"`
}
