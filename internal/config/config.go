// Package config bundles the fixed inputs to a run: the behaviour, belief,
// and agent lists, the time window, and the output surface. See design doc
// Section 4.5.
package config

import (
	"fmt"
	"io"

	"github.com/talgya/contagent/internal/agents"
	"github.com/talgya/contagent/internal/entity"
	"github.com/talgya/contagent/internal/iodoc"
	"github.com/talgya/contagent/internal/summary"
)

// Config is the simulation bundle. Field order is fixed and determines
// iteration order throughout the engine.
type Config struct {
	Behaviours []*entity.Behaviour
	Beliefs    []*entity.Belief
	Agents     []*agents.Agent

	StartTime int
	EndTime   int

	Output     io.Writer
	FullOutput bool
}

// Validate checks the configuration-level invariants that must hold before
// a run starts: end_time > start_time, and every agent carries a delta and
// a performance-relationship row for every belief/behaviour in the run
// (design doc invariant 3).
func (c *Config) Validate() error {
	if c.EndTime <= c.StartTime {
		return fmt.Errorf("config: end_time (%d) must be greater than start_time (%d)", c.EndTime, c.StartTime)
	}

	nBeliefs := len(c.Beliefs)
	nBehaviours := len(c.Behaviours)

	for _, a := range c.Agents {
		if len(a.Deltas) != nBeliefs {
			return fmt.Errorf("config: agent %s has %d deltas, want %d", a.ID, len(a.Deltas), nBeliefs)
		}
		if len(a.PerformanceRelationships) != nBeliefs {
			return fmt.Errorf("config: agent %s has %d performance-relationship rows, want %d", a.ID, len(a.PerformanceRelationships), nBeliefs)
		}
		for b, row := range a.PerformanceRelationships {
			if len(row) != nBehaviours {
				return fmt.Errorf("config: agent %s belief %d has %d performance entries, want %d", a.ID, b, len(row), nBehaviours)
			}
		}
		need := c.EndTime - c.StartTime + 1
		if len(a.Activations) < need {
			return fmt.Errorf("config: agent %s has %d activation rows, want >= %d", a.ID, len(a.Activations), need)
		}
		if len(a.Actions) < need {
			return fmt.Errorf("config: agent %s has %d action rows, want >= %d", a.ID, len(a.Actions), need)
		}
	}
	return nil
}

// WriteFullTrace serialises every agent's full activation/action trace to
// Output.
func (c *Config) WriteFullTrace() error {
	return iodoc.WriteFullTrace(c.Output, c.Behaviours, c.Beliefs, c.Agents)
}

// WriteSummary serialises the per-day summary records to Output.
func (c *Config) WriteSummary(days []summary.Day) error {
	return iodoc.WriteSummary(c.Output, c.Beliefs, c.Behaviours, days)
}
