package solver

import (
	"context"

	highs "github.com/bartolsthoorn/gohighs/highs"

	"github.com/dwheatley/hygrid/pkg/model"
	"github.com/dwheatley/hygrid/pkg/registry"
)

// Highs solves problems with the HiGHS MIP solver.
type Highs struct {
	cfg registry.SolverConfig
}

// NewHighs returns a HiGHS-backed solver with the given limits.
func NewHighs(cfg registry.SolverConfig) *Highs {
	return &Highs{cfg: cfg}
}

// Solve translates the problem into a HiGHS model and runs it. The solve
// itself cannot be interrupted mid-run; cancellation abandons the result.
func (h *Highs) Solve(ctx context.Context, p *model.Problem) (*model.Solution, error) {
	m := translate(p)

	opts := []highs.SolveOption{highs.WithOutput(false)}
	if h.cfg.TimeLimit > 0 {
		opts = append(opts, highs.WithTimeLimit(h.cfg.TimeLimit.Std().Seconds()))
	}
	if h.cfg.MIPGap > 0 {
		opts = append(opts, highs.WithMIPRelGap(h.cfg.MIPGap))
	}

	type result struct {
		sol *highs.Solution
		err error
	}
	done := make(chan result, 1)
	go func() {
		sol, err := m.Solve(opts...)
		done <- result{sol, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return &model.Solution{
			Status:    mapStatus(r.sol.Status),
			Objective: r.sol.Objective,
			Values:    r.sol.ColValues,
		}, nil
	}
}

// translate builds the HiGHS column/row arrays from the encoded problem.
func translate(p *model.Problem) *highs.Model {
	n := len(p.Vars)
	m := &highs.Model{
		Maximize: p.Maximize,
		ColCosts: make([]float64, n),
		ColLower: make([]float64, n),
		ColUpper: make([]float64, n),
	}

	integral := false
	types := make([]highs.VariableType, n)
	for i, v := range p.Vars {
		m.ColCosts[i] = v.Obj
		m.ColLower[i] = v.Lower
		m.ColUpper[i] = v.Upper
		if v.Kind == model.Continuous {
			types[i] = highs.Continuous
		} else {
			types[i] = highs.Integer
			integral = true
		}
	}
	if integral {
		m.VarTypes = types
	}

	for row, c := range p.Constraints {
		m.RowLower = append(m.RowLower, c.Lo)
		m.RowUpper = append(m.RowUpper, c.Hi)
		for _, t := range c.Terms {
			m.ConstMatrix = append(m.ConstMatrix, highs.Nonzero{Row: row, Col: t.Col, Val: t.Coef})
		}
	}
	return m
}

// mapStatus normalizes the HiGHS model status. UnboundedOrInfeasible is
// reported as infeasible; with a bounded profit objective that is the common
// cause.
func mapStatus(st highs.ModelStatus) model.Status {
	switch st {
	case highs.ModelStatusOptimal:
		return model.StatusOptimal
	case highs.ModelStatusInfeasible, highs.ModelStatusUnboundedOrInfeasible:
		return model.StatusInfeasible
	case highs.ModelStatusUnbounded:
		return model.StatusUnbounded
	case highs.ModelStatusTimeLimit:
		return model.StatusTimeLimit
	default:
		return model.StatusUnknown
	}
}
