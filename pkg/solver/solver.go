// Package solver runs an encoded problem through a MIP backend. The only
// backend today is HiGHS; the interface keeps the pipeline testable with a
// stub.
package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/dwheatley/hygrid/pkg/model"
	"github.com/dwheatley/hygrid/pkg/registry"
)

// ErrUnknownSolver is returned for a solver name no backend answers to.
var ErrUnknownSolver = errors.New("unknown solver")

// Solver executes one encoded problem. Implementations honor context
// cancellation by abandoning the solve.
type Solver interface {
	Solve(ctx context.Context, p *model.Problem) (*model.Solution, error)
}

// New returns the backend selected by the run settings.
func New(cfg registry.SolverConfig) (Solver, error) {
	switch cfg.Name {
	case "highs":
		return NewHighs(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSolver, cfg.Name)
	}
}
