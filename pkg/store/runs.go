package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dwheatley/hygrid/pkg/model"
	"github.com/dwheatley/hygrid/pkg/network"
	"github.com/dwheatley/hygrid/pkg/registry"
)

// flowEps filters numerical noise out of the persisted flow set.
const flowEps = 1e-6

// RunRecord is the persisted header of one optimization run.
type RunRecord struct {
	ID             string
	CreatedAt      time.Time
	Status         string
	Objective      float64
	NetworkNodes   int
	NetworkEdges   int
	ProblemColumns int
	ProblemRows    int
	BuildDuration  time.Duration
	SolveDuration  time.Duration
	Settings       registry.Settings
}

// FlowRecord is one persisted nonzero flow.
type FlowRecord struct {
	From       string
	To         string
	TonsPerDay float64
}

// PlantRecord is one persisted production decision.
type PlantRecord struct {
	NodeID     string
	Hub        string
	Technology string
	Built      bool
	Capacity   float64
	Output     float64
}

// CollectFlows extracts the nonzero flows of a solved network in edge order.
func CollectFlows(sn *model.SolvedNetwork) []FlowRecord {
	var out []FlowRecord
	for _, e := range sn.Graph.Edges() {
		f := sn.Flow(e.From, e.To)
		if f > flowEps {
			out = append(out, FlowRecord{From: e.From, To: e.To, TonsPerDay: f})
		}
	}
	return out
}

// CollectPlants extracts the production decisions of a solved network in node
// order. Existing base plants count as built; retrofit variants and new
// builds carry their solver decision.
func CollectPlants(sn *model.SolvedNetwork) []PlantRecord {
	var out []PlantRecord
	for _, n := range sn.Graph.Nodes() {
		if n.Role != network.RoleProduction {
			continue
		}
		built := sn.Built(n.ID)
		capacity := sn.Capacity(n.ID)
		if n.Existing && n.RetrofitOf == "" {
			built = true
		}
		out = append(out, PlantRecord{
			NodeID:     n.ID,
			Hub:        n.Hub,
			Technology: n.Technology,
			Built:      built,
			Capacity:   capacity,
			Output:     sn.Production(n.ID),
		})
	}
	return out
}

// SaveRun persists a run header with its flows and plant decisions in one
// transaction.
func (s *PGStore) SaveRun(ctx context.Context, rec RunRecord, sn *model.SolvedNetwork) error {
	settingsJSON, err := json.Marshal(rec.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO runs (id, created_at, status, objective_usd_per_day, network_nodes, network_edges,
			problem_columns, problem_rows, build_ms, solve_ms, settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		rec.ID,
		rec.CreatedAt,
		rec.Status,
		rec.Objective,
		rec.NetworkNodes,
		rec.NetworkEdges,
		rec.ProblemColumns,
		rec.ProblemRows,
		rec.BuildDuration.Milliseconds(),
		rec.SolveDuration.Milliseconds(),
		settingsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, f := range CollectFlows(sn) {
		_, err = tx.Exec(ctx, `
			INSERT INTO run_flows (run_id, from_node, to_node, tons_per_day)
			VALUES ($1, $2, $3, $4)
		`, rec.ID, f.From, f.To, f.TonsPerDay)
		if err != nil {
			return fmt.Errorf("failed to insert flow %s->%s: %w", f.From, f.To, err)
		}
	}

	for _, p := range CollectPlants(sn) {
		_, err = tx.Exec(ctx, `
			INSERT INTO run_plants (run_id, node_id, hub, technology, built, capacity_tons_per_day, output_tons_per_day)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, rec.ID, p.NodeID, p.Hub, p.Technology, p.Built, p.Capacity, p.Output)
		if err != nil {
			return fmt.Errorf("failed to insert plant %s: %w", p.NodeID, err)
		}
	}

	return tx.Commit(ctx)
}

// GetRun retrieves a run header by ID
func (s *PGStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	query := `
		SELECT id, created_at, status, objective_usd_per_day, network_nodes, network_edges,
			problem_columns, problem_rows, build_ms, solve_ms, settings
		FROM runs
		WHERE id = $1
	`

	rec := &RunRecord{}
	var settingsJSON []byte
	var buildMS, solveMS int64

	err := s.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.CreatedAt,
		&rec.Status,
		&rec.Objective,
		&rec.NetworkNodes,
		&rec.NetworkEdges,
		&rec.ProblemColumns,
		&rec.ProblemRows,
		&buildMS,
		&solveMS,
		&settingsJSON,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	rec.BuildDuration = time.Duration(buildMS) * time.Millisecond
	rec.SolveDuration = time.Duration(solveMS) * time.Millisecond
	if len(settingsJSON) > 0 {
		if err := json.Unmarshal(settingsJSON, &rec.Settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
		}
	}

	return rec, nil
}

// ListRuns returns the most recent run headers, newest first.
func (s *PGStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
		SELECT id, created_at, status, objective_usd_per_day, network_nodes, network_edges,
			problem_columns, problem_rows, build_ms, solve_ms
		FROM runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var buildMS, solveMS int64
		if err := rows.Scan(
			&rec.ID,
			&rec.CreatedAt,
			&rec.Status,
			&rec.Objective,
			&rec.NetworkNodes,
			&rec.NetworkEdges,
			&rec.ProblemColumns,
			&rec.ProblemRows,
			&buildMS,
			&solveMS,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.BuildDuration = time.Duration(buildMS) * time.Millisecond
		rec.SolveDuration = time.Duration(solveMS) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}
