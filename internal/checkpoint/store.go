// Package checkpoint provides SQLite-based resumable-run storage, adapted
// from a prior world-state persistence layer. Checkpointing is opt-in and
// never mutates the agent/belief/behaviour sets — it only
// persists and restores activation/action/delta/performance-relationship
// state for the same fixed population between process runs, consistent
// with the engine's Non-goal against mid-run entity mutation.
package checkpoint

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/contagent/internal/agents"
)

// Store wraps a SQLite connection for agent-state checkpointing.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates a checkpoint database at path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open db: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("checkpoint: migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS checkpoint_meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agent_state (
		agent_uuid      TEXT PRIMARY KEY,
		n_days          INTEGER NOT NULL,
		activations_json TEXT NOT NULL,
		actions_json     TEXT NOT NULL,
		deltas_json      TEXT NOT NULL,
		performance_json TEXT NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Save persists the given tick and the full agent arena's mutable state.
func (s *Store) Save(tick int, population []*agents.Agent) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return fmt.Errorf("checkpoint: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO checkpoint_meta (key, value) VALUES ('last_tick', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		fmt.Sprintf("%d", tick),
	); err != nil {
		return fmt.Errorf("checkpoint: save tick: %w", err)
	}

	for _, a := range population {
		activationsJSON, err := json.Marshal(a.Activations)
		if err != nil {
			return fmt.Errorf("checkpoint: marshal activations for %s: %w", a.ID, err)
		}
		actionsJSON, err := json.Marshal(a.Actions)
		if err != nil {
			return fmt.Errorf("checkpoint: marshal actions for %s: %w", a.ID, err)
		}
		deltasJSON, err := json.Marshal(a.Deltas)
		if err != nil {
			return fmt.Errorf("checkpoint: marshal deltas for %s: %w", a.ID, err)
		}
		perfJSON, err := json.Marshal(a.PerformanceRelationships)
		if err != nil {
			return fmt.Errorf("checkpoint: marshal performance relationships for %s: %w", a.ID, err)
		}

		if _, err := tx.Exec(
			`INSERT INTO agent_state (agent_uuid, n_days, activations_json, actions_json, deltas_json, performance_json)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(agent_uuid) DO UPDATE SET
			   n_days = excluded.n_days,
			   activations_json = excluded.activations_json,
			   actions_json = excluded.actions_json,
			   deltas_json = excluded.deltas_json,
			   performance_json = excluded.performance_json`,
			a.ID.String(), a.NDays, string(activationsJSON), string(actionsJSON), string(deltasJSON), string(perfJSON),
		); err != nil {
			return fmt.Errorf("checkpoint: save agent %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// LastTick returns the most recently checkpointed tick, or -1 if no
// checkpoint has been saved yet.
func (s *Store) LastTick() (int, error) {
	var value string
	err := s.conn.Get(&value, `SELECT value FROM checkpoint_meta WHERE key = 'last_tick'`)
	if err != nil {
		return -1, nil
	}
	var tick int
	if _, err := fmt.Sscanf(value, "%d", &tick); err != nil {
		return -1, fmt.Errorf("checkpoint: parse last tick: %w", err)
	}
	return tick, nil
}

// Restore loads saved state back into population, matching by agent uuid.
// Agents present in population but absent from the checkpoint are left
// untouched.
func (s *Store) Restore(population []*agents.Agent) error {
	byUUID := make(map[string]*agents.Agent, len(population))
	for _, a := range population {
		byUUID[a.ID.String()] = a
	}

	rows, err := s.conn.Queryx(`SELECT agent_uuid, activations_json, actions_json, deltas_json, performance_json FROM agent_state`)
	if err != nil {
		return fmt.Errorf("checkpoint: query agent_state: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var agentUUID, activationsJSON, actionsJSON, deltasJSON, perfJSON string
		if err := rows.Scan(&agentUUID, &activationsJSON, &actionsJSON, &deltasJSON, &perfJSON); err != nil {
			return fmt.Errorf("checkpoint: scan row: %w", err)
		}
		a, ok := byUUID[agentUUID]
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(activationsJSON), &a.Activations); err != nil {
			return fmt.Errorf("checkpoint: unmarshal activations for %s: %w", agentUUID, err)
		}
		if err := json.Unmarshal([]byte(actionsJSON), &a.Actions); err != nil {
			return fmt.Errorf("checkpoint: unmarshal actions for %s: %w", agentUUID, err)
		}
		if err := json.Unmarshal([]byte(deltasJSON), &a.Deltas); err != nil {
			return fmt.Errorf("checkpoint: unmarshal deltas for %s: %w", agentUUID, err)
		}
		if err := json.Unmarshal([]byte(perfJSON), &a.PerformanceRelationships); err != nil {
			return fmt.Errorf("checkpoint: unmarshal performance relationships for %s: %w", agentUUID, err)
		}
	}

	return rows.Err()
}
