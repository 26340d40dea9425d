// Package model turns a built network into a mixed-integer linear program and
// reads solver output back onto the graph. Variable and constraint order is a
// pure function of graph iteration order, so encoding the same graph twice
// yields byte-identical problems.
package model

import (
	"math"

	"github.com/dwheatley/hygrid/pkg/network"
	"github.com/dwheatley/hygrid/pkg/registry"
)

// VarKind is the variable domain handed to the solver.
type VarKind uint8

const (
	Continuous VarKind = iota
	Integer
	Binary
)

// Variable is one column of the program.
type Variable struct {
	Name  string
	Kind  VarKind
	Lower float64
	Upper float64
	// Obj is the variable's objective coefficient (profit, so positive earns).
	Obj float64
}

// space is the ordered variable set plus its name index.
type space struct {
	vars  []Variable
	index map[string]int
}

func newSpace() *space {
	return &space{index: make(map[string]int)}
}

func (s *space) add(v Variable) int {
	i := len(s.vars)
	s.index[v.Name] = i
	s.vars = append(s.vars, v)
	return i
}

func (s *space) col(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Variable name constructors. These names are the public join keys between
// the problem, the solution and the solved network.
func flowVar(e *network.Edge) string { return "flow[" + e.Key() + "]" }
func capVar(e *network.Edge) string  { return "cap[" + e.Key() + "]" }
func prodVar(id string) string       { return "prod[" + id + "]" }
func capacityVar(id string) string   { return "rho[" + id + "]" }
func builtVar(id string) string      { return "built[" + id + "]" }
func convCapVar(id string) string    { return "convcap[" + id + "]" }
func subsidyVar(id string) string    { return "subsidy[" + id + "]" }

// amortize converts a capital cost to a per-day cost, folding fixed O&M in as
// a fraction of capital.
func amortize(s registry.Settings, capital float64) float64 {
	return capital * (1 + s.Economics.FixedCostFraction) /
		(s.Economics.AmortizationFactor * s.Economics.TimeSlices)
}

// buildSpace enumerates the variables: edge flows and capacities first in edge
// order, then node variables in node order. Objective coefficients are set
// here so a variable is fully described by its Variable record.
func buildSpace(g *network.Graph, s registry.Settings) *space {
	sp := newSpace()
	inf := math.Inf(1)

	for _, e := range g.Edges() {
		obj := -e.VariableUSDPerTon
		if to, ok := g.Node(e.To); ok {
			switch to.Role {
			case network.RoleDemandSector, network.RolePrice:
				obj += to.BreakevenUSDPerTon
				if to.CarbonSensitive {
					obj += s.Carbon.PriceUSDPerTon * to.AvoidedCO2PerTon
				}
			}
		}
		if from, ok := g.Node(e.From); ok && from.Role == network.RoleConversion {
			obj -= from.VariableUSDPerTon + from.ElectricityUSDPerTon
		}
		sp.add(Variable{Name: flowVar(e), Kind: Continuous, Lower: 0, Upper: inf, Obj: obj})

		if e.Capacitated() {
			sp.add(Variable{
				Name:  capVar(e),
				Kind:  Integer,
				Lower: e.PreBuiltUnits,
				Upper: inf,
				Obj:   -amortize(s, e.CapitalUSDPerUnit),
			})
		}
	}

	for _, n := range g.Nodes() {
		switch n.Role {
		case network.RoleProduction:
			prodObj := n.TaxCreditUSDPerTon +
				s.Carbon.CaptureCreditUSDPerTon*n.CapturedCO2PerTon -
				n.VariableUSDPerTon - n.ElectricityUSDPerTon - n.NaturalGasUSDPerTon -
				s.Carbon.PriceUSDPerTon*n.CO2PerTon
			sp.add(Variable{Name: prodVar(n.ID), Kind: Continuous, Lower: 0, Upper: inf, Obj: prodObj})

			switch {
			case n.RetrofitOf != "":
				// Retrofit variants share the base plant's capacity; they
				// only carry an activation decision.
				sp.add(Variable{Name: builtVar(n.ID), Kind: Binary, Lower: 0, Upper: 1})
			case n.Existing:
				sp.add(Variable{
					Name:  capacityVar(n.ID),
					Kind:  Continuous,
					Lower: n.CapacityFloorTonsPerDay,
					Upper: n.CapacityTonsPerDay,
				})
			default:
				sp.add(Variable{
					Name:  capacityVar(n.ID),
					Kind:  Continuous,
					Lower: 0,
					Upper: n.MaxTonsPerDay,
					Obj:   -amortize(s, n.CapitalUSDPerTonPerDay),
				})
				sp.add(Variable{Name: builtVar(n.ID), Kind: Binary, Lower: 0, Upper: 1})
			}

		case network.RoleConversion:
			sp.add(Variable{
				Name:  convCapVar(n.ID),
				Kind:  Continuous,
				Lower: 0,
				Upper: inf,
				Obj:   -amortize(s, n.CapitalUSDPerTonPerDay),
			})
			if n.SubsidyCapitalUSDPerTonPerDay > 0 {
				// Bookkeeping only: reported, never charged.
				sp.add(Variable{Name: subsidyVar(n.ID), Kind: Continuous, Lower: 0, Upper: inf})
			}
		}
	}

	return sp
}
