package model

import (
	"fmt"
	"math"

	"github.com/dwheatley/hygrid/pkg/network"
)

// SolvedNetwork joins a solution back onto the graph it was encoded from.
// All accessors return zero for names the problem never created a column for.
type SolvedNetwork struct {
	Graph     *network.Graph
	Status    Status
	Objective float64

	problem *Problem
	values  []float64
}

// Decode validates the solve outcome and wraps the solution for graph-keyed
// access. A time-limited solve with an incumbent returns the incumbent
// alongside ErrSolverTimeout so callers can choose to keep it.
func Decode(g *network.Graph, p *Problem, sol *Solution) (*SolvedNetwork, error) {
	switch sol.Status {
	case StatusInfeasible:
		return nil, ErrInfeasible
	case StatusUnbounded:
		return nil, ErrUnbounded
	case StatusTimeLimit:
		if len(sol.Values) != len(p.Vars) {
			return nil, fmt.Errorf("%w: %w", ErrSolverTimeout, ErrNoSolution)
		}
		sn := &SolvedNetwork{Graph: g, Status: sol.Status, Objective: sol.Objective, problem: p, values: sol.Values}
		return sn, ErrSolverTimeout
	case StatusOptimal:
		if len(sol.Values) != len(p.Vars) {
			return nil, fmt.Errorf("%w: got %d values for %d columns", ErrNoSolution, len(sol.Values), len(p.Vars))
		}
		return &SolvedNetwork{Graph: g, Status: sol.Status, Objective: sol.Objective, problem: p, values: sol.Values}, nil
	default:
		return nil, ErrNoSolution
	}
}

func (sn *SolvedNetwork) value(name string) float64 {
	i, ok := sn.problem.Column(name)
	if !ok {
		return 0
	}
	return sn.values[i]
}

// Flow returns tons per day moved over an edge.
func (sn *SolvedNetwork) Flow(from, to string) float64 {
	return sn.value("flow[" + from + "->" + to + "]")
}

// Production returns a plant's output in tons per day.
func (sn *SolvedNetwork) Production(id string) float64 {
	return sn.value(prodVar(id))
}

// Capacity returns a plant's built capacity in tons per day.
func (sn *SolvedNetwork) Capacity(id string) float64 {
	return sn.value(capacityVar(id))
}

// Built reports whether a build or retrofit decision was taken.
func (sn *SolvedNetwork) Built(id string) bool {
	return sn.value(builtVar(id)) > 0.5
}

// EdgeUnits returns the integer capacity units built on a capacitated edge.
func (sn *SolvedNetwork) EdgeUnits(from, to string) float64 {
	return math.Round(sn.value("cap[" + from + "->" + to + "]"))
}

// ConverterCapacity returns a converter's built throughput in tons per day.
func (sn *SolvedNetwork) ConverterCapacity(id string) float64 {
	return sn.value(convCapVar(id))
}

// Subsidy returns the daily station subsidy booked against a dispenser.
func (sn *SolvedNetwork) Subsidy(id string) float64 {
	return sn.value(subsidyVar(id))
}

// Consumption returns total inbound flow to a sink node.
func (sn *SolvedNetwork) Consumption(id string) float64 {
	total := 0.0
	for _, e := range sn.Graph.InEdges(id) {
		total += sn.value(flowVar(e))
	}
	return total
}

// DeliveredPrice brackets the delivered hydrogen price at a hub for a sector,
// in USD/kg. A ladder consumer is served when it takes at least half its
// demand; the true price lies in [lo, hi) where lo is the highest unserved
// rung and hi the lowest served one. lo is zero when every rung is served and
// hi is +Inf when none is.
func (sn *SolvedNetwork) DeliveredPrice(hub, sector string) (lo, hi float64, err error) {
	hi = math.Inf(1)
	found := false
	for _, n := range sn.Graph.Nodes() {
		if n.Role != network.RolePrice || n.Hub != hub || n.Sector != sector {
			continue
		}
		found = true
		if n.SizeTonsPerDay <= 0 {
			continue
		}
		price := n.BreakevenUSDPerTon / kgPerTon
		served := sn.Consumption(n.ID) >= 0.5*n.SizeTonsPerDay
		if served && price < hi {
			hi = price
		}
		if !served && price > lo {
			lo = price
		}
	}
	if !found {
		return 0, 0, fmt.Errorf("hub %s sector %s: %w", hub, sector, ErrPriceTracking)
	}
	return lo, hi, nil
}

// kgPerTon mirrors the scale applied when ladder prices become breakeven
// coefficients.
const kgPerTon = 1000.0
