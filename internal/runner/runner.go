// Package runner implements the Runner state machine: Starting →
// Ticking(t) → Serialising → Done. See design doc Section 4.3.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/talgya/contagent/internal/agents"
	"github.com/talgya/contagent/internal/checkpoint"
	"github.com/talgya/contagent/internal/config"
	"github.com/talgya/contagent/internal/summary"
)

// Runner drives the tick loop over a Config's agent arena.
type Runner struct {
	Config *config.Config

	// Seed is the base action-selection seed. Each agent draws from its
	// own independent stream derived from Seed and its arena index (the
	// same seed + offset pattern the world/spawner generators use), so a
	// trace is reproducible for a given seed regardless of Workers or
	// goroutine scheduling order — no two agents ever touch the same
	// *rand.Rand.
	Seed int64

	// Workers bounds how many agents are processed concurrently within a
	// single perceive or act pass. 1 (the default) is strictly sequential;
	// values > 1 fan out under a WaitGroup barrier joined before the next
	// pass — see design doc Section 5.
	Workers int

	// Checkpoint, if non-nil, is consulted after every tick to persist
	// resumable state. Optional; nil disables checkpointing entirely.
	Checkpoint *checkpoint.Store

	// CheckpointEvery, if > 0, checkpoints every N ticks.
	CheckpointEvery int

	agentRNGs []*rand.Rand
}

// New constructs a Runner with the given action-selection seed and
// sequential (Workers=1) execution. The per-agent RNGs are built from the
// seed when Run starts.
func New(cfg *config.Config, seed int64) *Runner {
	return &Runner{
		Config:  cfg,
		Seed:    seed,
		Workers: 1,
	}
}

// initAgentRNGs builds one private action-selection stream per agent,
// seeded from Seed plus the agent's arena index. Called once, before any
// concurrent pass starts, so no goroutine ever races another to populate
// agentRNGs; afterwards agentRNG only reads the slice.
func (r *Runner) initAgentRNGs() {
	r.agentRNGs = make([]*rand.Rand, len(r.Config.Agents))
	for j := range r.agentRNGs {
		r.agentRNGs[j] = rand.New(rand.NewSource(r.Seed + int64(j)))
	}
}

func (r *Runner) agentRNG(i int) *rand.Rand {
	return r.agentRNGs[i]
}

// Run executes Starting → Ticking(start..end) → Serialising → Done and
// writes the configured output. ctx is checked once per tick boundary for
// external cancellation (design doc Section 5); cancellation aborts with
// ctx.Err() and performs no serialisation.
func (r *Runner) Run(ctx context.Context) error {
	cfg := r.Config
	if cfg.EndTime <= cfg.StartTime {
		return fmt.Errorf("runner: end_time (%d) must be greater than start_time (%d)", cfg.EndTime, cfg.StartTime)
	}

	r.initAgentRNGs()

	slog.Info("simulation starting",
		"agents", len(cfg.Agents),
		"beliefs", len(cfg.Beliefs),
		"behaviours", len(cfg.Behaviours),
		"start_time", cfg.StartTime,
		"end_time", cfg.EndTime,
	)

	for t := cfg.StartTime; t < cfg.EndTime; t++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Day-indexed rows are relative to StartTime: row 0 is the initial
		// condition, regardless of what absolute day StartTime names, and
		// tick t fills row t-StartTime+1 from the row before it.
		row := t - cfg.StartTime + 1

		if err := r.perceiveAll(row); err != nil {
			return fmt.Errorf("perceive day %d: %w", t, err)
		}
		if err := r.actAll(row); err != nil {
			return fmt.Errorf("act day %d: %w", t, err)
		}

		slog.Info("tick complete", "day", t)

		if r.Checkpoint != nil && r.CheckpointEvery > 0 && (t+1)%r.CheckpointEvery == 0 {
			if err := r.Checkpoint.Save(t, cfg.Agents); err != nil {
				slog.Warn("checkpoint failed", "day", t, "error", err)
			}
		}
	}

	slog.Info("simulation ticking complete, serialising", "full_output", cfg.FullOutput)

	if cfg.FullOutput {
		return cfg.WriteFullTrace()
	}
	return r.writeSummary()
}

// perceiveAll calls Agent.perceive(row, beliefs) on every agent in bundle
// order, where row is the day index relative to StartTime. row must be >=
// 1 (row == 0 leaves the initial condition in place).
func (r *Runner) perceiveAll(row int) error {
	if row == 0 {
		return nil
	}
	return r.forEachAgent(func(i int, a *agents.Agent) error {
		return agents.Perceive(a, r.Config.Agents, row, r.Config.Beliefs)
	})
}

// actAll calls Agent.act(row, behaviours, beliefs) on every agent in
// bundle order, after perceiveAll for the same row has completed for every
// agent. Each agent draws from its own RNG stream so a parallel pass never
// shares mutable state across goroutines.
func (r *Runner) actAll(row int) error {
	return r.forEachAgent(func(i int, a *agents.Agent) error {
		return agents.Act(a, row, r.Config.Behaviours, r.Config.Beliefs, r.agentRNG(i))
	})
}

// forEachAgent applies fn to every configured agent, in bundle order, with
// each call given the agent's arena index. With Workers <= 1 this is
// strictly sequential. With Workers > 1 it fans out under a bounded
// semaphore and joins before returning — callers must not rely on any
// particular completion order, only that all agents are done when
// forEachAgent returns.
func (r *Runner) forEachAgent(fn func(int, *agents.Agent) error) error {
	workers := r.Workers
	if workers <= 1 {
		for i, a := range r.Config.Agents {
			if err := fn(i, a); err != nil {
				return err
			}
		}
		return nil
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, a := range r.Config.Agents {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, a *agents.Agent) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := fn(i, a); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(i, a)
	}
	wg.Wait()
	return firstErr
}

// writeSummary invokes the summary aggregator once per recorded row and
// writes the result to the configured output sink.
func (r *Runner) writeSummary() error {
	cfg := r.Config
	nDays := int(maxNDays(cfg.Agents))
	days := make([]summary.Day, 0, cfg.EndTime-cfg.StartTime+1)
	for t := cfg.StartTime; t <= cfg.EndTime; t++ {
		row := t - cfg.StartTime
		if row >= nDays {
			break
		}
		days = append(days, summary.Summarize(cfg.Agents, cfg.Beliefs, cfg.Behaviours, row))
	}
	return cfg.WriteSummary(days)
}

func maxNDays(as []*agents.Agent) uint32 {
	var max uint32
	for _, a := range as {
		if a.NDays > max {
			max = a.NDays
		}
	}
	return max
}
