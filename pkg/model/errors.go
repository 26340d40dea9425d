package model

import "errors"

// Solve outcome errors. ErrSolverTimeout is returned alongside the incumbent
// solution when the solver hit its time limit with a feasible point in hand.
var (
	ErrInfeasible    = errors.New("model is infeasible")
	ErrUnbounded     = errors.New("model is unbounded")
	ErrSolverTimeout = errors.New("solver hit time limit")
	ErrNoSolution    = errors.New("solver returned no solution")

	ErrPriceTracking = errors.New("price tracking was not enabled for this run")
)
