// Package pipeline chains the run stages: build the network from the
// catalogs, encode the program, solve it and decode the result. It owns the
// run identifier, logging, metrics and optional persistence.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dwheatley/hygrid/pkg/logging"
	"github.com/dwheatley/hygrid/pkg/metrics"
	"github.com/dwheatley/hygrid/pkg/model"
	"github.com/dwheatley/hygrid/pkg/network"
	"github.com/dwheatley/hygrid/pkg/registry"
	"github.com/dwheatley/hygrid/pkg/solver"
	"github.com/dwheatley/hygrid/pkg/store"
)

// RunStore is the slice of the persistence layer the pipeline needs.
type RunStore interface {
	SaveRun(ctx context.Context, rec store.RunRecord, sn *model.SolvedNetwork) error
}

// Pipeline executes optimization runs over one set of catalogs. It is safe
// to call Run repeatedly; every call builds from scratch.
type Pipeline struct {
	reg      *registry.Registry
	hubs     *registry.HubCatalog
	arcs     *registry.ArcCatalog
	settings registry.Settings

	solver  solver.Solver
	logger  logging.Logger
	metrics *metrics.Registry
	store   RunStore
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger replaces the default logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithMetrics replaces the default metrics registry.
func WithMetrics(m *metrics.Registry) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithSolver replaces the solver selected by the settings.
func WithSolver(s solver.Solver) Option {
	return func(p *Pipeline) { p.solver = s }
}

// WithStore persists each completed run.
func WithStore(s RunStore) Option {
	return func(p *Pipeline) { p.store = s }
}

// New wires a pipeline over validated catalogs.
func New(reg *registry.Registry, hubs *registry.HubCatalog, arcs *registry.ArcCatalog, settings registry.Settings, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		reg:      reg,
		hubs:     hubs,
		arcs:     arcs,
		settings: settings,
		logger:   logging.NewDefaultLogger(),
		metrics:  metrics.DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.solver == nil {
		s, err := solver.New(settings.Solver)
		if err != nil {
			return nil, err
		}
		p.solver = s
	}
	return p, nil
}

// Result is one completed run.
type Result struct {
	RunID   string
	Network *model.SolvedNetwork
	Problem *model.Problem

	BuildDuration time.Duration
	SolveDuration time.Duration
}

// Run executes one full optimization. A time-limited solve that produced an
// incumbent returns the Result together with model.ErrSolverTimeout.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	log := p.logger.With(logging.RunID(runID))

	buildStart := time.Now()
	g, err := network.NewBuilder(p.reg, p.hubs, p.arcs, p.settings).Build()
	buildDur := time.Since(buildStart)
	if err != nil {
		p.metrics.RecordBuild("error", buildDur, 0, 0)
		log.Error("network build failed", logging.Error(err))
		return nil, err
	}
	p.metrics.RecordBuild("ok", buildDur, g.NumNodes(), g.NumEdges())
	log.Info("network built",
		logging.Nodes(g.NumNodes()),
		logging.Edges(g.NumEdges()),
		logging.Latency(buildDur))

	prob := model.Encode(g, p.settings)
	p.metrics.RecordProblemSize(prob.NumVars(), prob.NumConstraints(), prob.NumIntegers())
	log.Info("problem encoded",
		logging.Columns(prob.NumVars()),
		logging.Rows(prob.NumConstraints()),
		logging.Int("integer_columns", prob.NumIntegers()))

	solveStart := time.Now()
	sol, err := p.solver.Solve(ctx, prob)
	solveDur := time.Since(solveStart)
	if err != nil {
		p.metrics.RecordSolve("error", solveDur)
		log.Error("solve failed", logging.Error(err), logging.Latency(solveDur))
		return nil, err
	}
	p.metrics.RecordSolve(sol.Status.String(), solveDur)

	sn, decodeErr := model.Decode(g, prob, sol)
	if sn == nil {
		// Infeasible, unbounded, or a time limit with no incumbent in hand.
		log.Error("solve unusable",
			logging.SolveStatus(sol.Status.String()),
			logging.Error(decodeErr),
			logging.Latency(solveDur))
		return nil, decodeErr
	}
	log.Info("solve finished",
		logging.SolveStatus(sol.Status.String()),
		logging.Objective(sn.Objective),
		logging.Latency(solveDur))
	p.metrics.ObjectiveUSD.Set(sn.Objective)

	res := &Result{
		RunID:         runID,
		Network:       sn,
		Problem:       prob,
		BuildDuration: buildDur,
		SolveDuration: solveDur,
	}

	if p.store != nil {
		rec := store.RunRecord{
			ID:             runID,
			CreatedAt:      time.Now().UTC(),
			Status:         sol.Status.String(),
			Objective:      sn.Objective,
			NetworkNodes:   g.NumNodes(),
			NetworkEdges:   g.NumEdges(),
			ProblemColumns: prob.NumVars(),
			ProblemRows:    prob.NumConstraints(),
			BuildDuration:  buildDur,
			SolveDuration:  solveDur,
			Settings:       p.settings,
		}
		if err := p.store.SaveRun(ctx, rec, sn); err != nil {
			// Persistence is best effort; the result is already in hand.
			log.Warn("run persistence failed", logging.Error(err))
		}
	}

	return res, decodeErr
}
