package iodoc

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/talgya/contagent/internal/agents"
	"github.com/talgya/contagent/internal/entity"
	"github.com/talgya/contagent/internal/summary"
)

// WriteFullTrace serialises every agent's complete per-day activation and
// action trace, mirroring the agent input document shape (design doc
// Section 6.3, full mode).
func WriteFullTrace(w io.Writer, behaviours []*entity.Behaviour, beliefs []*entity.Belief, population []*agents.Agent) error {
	docs := make([]AgentDoc, len(population))
	for i, a := range population {
		docs[i] = toAgentDoc(a, beliefs, behaviours, population)
	}
	return encode(w, docs)
}

func toAgentDoc(a *agents.Agent, beliefs []*entity.Belief, behaviours []*entity.Behaviour, population []*agents.Agent) AgentDoc {
	d := AgentDoc{
		UUID:                     a.ID.String(),
		Actions:                  make([]string, len(a.Actions)),
		Activations:              make([]map[string]float64, len(a.Activations)),
		Deltas:                   make(map[string]float64, len(a.Deltas)),
		Friends:                  make(map[string]float64, len(a.Friends)),
		PerformanceRelationships: make(map[string]map[string]float64, len(a.PerformanceRelationships)),
	}

	for t, h := range a.Actions {
		if h >= 0 && h < len(behaviours) {
			d.Actions[t] = behaviours[h].ID.String()
		}
	}
	for t, row := range a.Activations {
		m := make(map[string]float64, len(row))
		for b, v := range row {
			if b < len(beliefs) {
				m[beliefs[b].ID.String()] = v
			}
		}
		d.Activations[t] = m
	}
	for b, v := range a.Deltas {
		if b < len(beliefs) {
			d.Deltas[beliefs[b].ID.String()] = v
		}
	}
	for _, f := range a.Friends {
		if f.Index >= 0 && f.Index < len(population) {
			d.Friends[population[f.Index].ID.String()] = f.Weight
		}
	}
	for b, row := range a.PerformanceRelationships {
		if b >= len(beliefs) {
			continue
		}
		rm := make(map[string]float64, len(row))
		for h, v := range row {
			if h < len(behaviours) {
				rm[behaviours[h].ID.String()] = v
			}
		}
		d.PerformanceRelationships[beliefs[b].ID.String()] = rm
	}

	return d
}

// WriteSummary serialises the per-day summary records (design doc Section
// 6.3, summary mode).
func WriteSummary(w io.Writer, beliefs []*entity.Belief, behaviours []*entity.Behaviour, days []summary.Day) error {
	docs := make([]SummaryDayDoc, len(days))
	for i, day := range days {
		docs[i] = toSummaryDayDoc(day, beliefs, behaviours)
	}
	return encode(w, docs)
}

func toSummaryDayDoc(day summary.Day, beliefs []*entity.Belief, behaviours []*entity.Behaviour) SummaryDayDoc {
	doc := SummaryDayDoc{
		MeanActivations:    make(map[string]float64, len(beliefs)),
		SDActivations:      make(map[string]float64, len(beliefs)),
		MedianActivations:  make(map[string]float64, len(beliefs)),
		NonzeroActivations: make(map[string]int, len(beliefs)),
		NPerformers:        make(map[string]int, len(behaviours)),
	}
	for b, belief := range beliefs {
		key := belief.ID.String()
		doc.MeanActivations[key] = day.MeanActivations[b]
		doc.SDActivations[key] = day.SDActivations[b]
		doc.MedianActivations[key] = day.MedianActivations[b]
		doc.NonzeroActivations[key] = day.NonzeroActivations[b]
	}
	for h, behaviour := range behaviours {
		doc.NPerformers[behaviour.ID.String()] = day.NPerformers[h]
	}
	return doc
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("iodoc: encode: %w", err)
	}
	return nil
}
