// Command contagent runs a belief/behaviour diffusion simulation over a
// fixed population, reading JSON input documents and emitting either a
// full per-day trace or a compact per-day summary. See design doc
// Section 6.1.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/talgya/contagent/internal/checkpoint"
	"github.com/talgya/contagent/internal/config"
	"github.com/talgya/contagent/internal/iodoc"
	"github.com/talgya/contagent/internal/runner"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := newRootCmd().Execute(); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		fullOutput      bool
		compressLevel   int
		seed            int64
		workers         int
		checkpointPath  string
		checkpointEvery int
	)

	cmd := &cobra.Command{
		Use:   "contagent start-time end-time agents-path beliefs-path behaviours-path output-path",
		Short: "Simulate belief/behaviour diffusion across a fixed population",
		Args:  cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			startTime, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("start-time: %w", err)
			}
			endTime, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("end-time: %w", err)
			}
			if endTime <= startTime {
				return fmt.Errorf("end-time (%d) must be greater than start-time (%d)", endTime, startTime)
			}
			if compressLevel < 1 || compressLevel > 22 {
				return fmt.Errorf("compression level %d out of range [1, 22]", compressLevel)
			}

			agentsPath, beliefsPath, behavioursPath, outputPath := args[2], args[3], args[4], args[5]

			cfg, err := loadConfig(startTime, endTime, agentsPath, beliefsPath, behavioursPath, fullOutput)
			if err != nil {
				return err
			}

			outFile, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("open output %s: %w", outputPath, err)
			}
			defer outFile.Close()

			compressed, err := iodoc.CompressedWriter(outFile, compressLevel)
			if err != nil {
				return err
			}
			defer compressed.Close()
			cfg.Output = compressed

			if err := cfg.Validate(); err != nil {
				return err
			}

			r := runner.New(cfg, seed)
			r.Workers = workers

			if checkpointPath != "" {
				store, err := checkpoint.Open(checkpointPath)
				if err != nil {
					return fmt.Errorf("open checkpoint store: %w", err)
				}
				defer store.Close()
				r.Checkpoint = store
				r.CheckpointEvery = checkpointEvery
			}

			return r.Run(context.Background())
		},
	}

	cmd.Flags().BoolVarP(&fullOutput, "full-output", "f", false, "emit the full per-day per-agent trace instead of the summary")
	cmd.Flags().IntVarP(&compressLevel, "compress-level", "Z", 3, "output zstd compression level, 1-22")
	cmd.Flags().Int64Var(&seed, "seed", 1, "action-selection RNG seed")
	cmd.Flags().IntVar(&workers, "workers", 1, "number of agents processed concurrently within a perceive/act pass")
	cmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "optional SQLite path for resumable-run checkpointing")
	cmd.Flags().IntVar(&checkpointEvery, "checkpoint-every", 1, "checkpoint interval in ticks")

	return cmd
}

func loadConfig(startTime, endTime int, agentsPath, beliefsPath, behavioursPath string, fullOutput bool) (*config.Config, error) {
	behaviourDocs, err := readJSON[[]iodoc.BehaviourDoc](behavioursPath)
	if err != nil {
		return nil, fmt.Errorf("read behaviours: %w", err)
	}
	beliefDocs, err := readJSON[[]iodoc.BeliefDoc](beliefsPath)
	if err != nil {
		return nil, fmt.Errorf("read beliefs: %w", err)
	}
	agentDocs, err := readJSON[[]iodoc.AgentDoc](agentsPath)
	if err != nil {
		return nil, fmt.Errorf("read agents: %w", err)
	}

	behaviours, behaviourIndex, err := iodoc.LoadBehaviours(*behaviourDocs)
	if err != nil {
		return nil, err
	}
	beliefs, beliefIndex, err := iodoc.LoadBeliefs(*beliefDocs, behaviourIndex)
	if err != nil {
		return nil, err
	}
	population, err := iodoc.LoadAgents(*agentDocs, beliefIndex, behaviourIndex, endTime-startTime+1)
	if err != nil {
		return nil, err
	}

	return &config.Config{
		Behaviours: behaviours,
		Beliefs:    beliefs,
		Agents:     population,
		StartTime:  startTime,
		EndTime:    endTime,
		FullOutput: fullOutput,
	}, nil
}

func readJSON[T any](path string) (*T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var v T
	if err := json.NewDecoder(f).Decode(&v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &v, nil
}
