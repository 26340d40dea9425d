package model

import (
	"github.com/dwheatley/hygrid/pkg/network"
	"github.com/dwheatley/hygrid/pkg/registry"
)

// Problem is the assembled mixed-integer linear program. Column and row order
// is deterministic in the graph, so encoding the same graph twice produces
// identical problems.
type Problem struct {
	Maximize    bool
	Vars        []Variable
	Constraints []Constraint

	index map[string]int
}

// Encode assembles the program for a built network: daily profit objective,
// conservation and capacity rows, and the clean-credit balance. Encode does
// not mutate the graph and may be called repeatedly.
func Encode(g *network.Graph, s registry.Settings) *Problem {
	sp := buildSpace(g, s)
	return &Problem{
		Maximize:    true,
		Vars:        sp.vars,
		Constraints: buildConstraints(g, s, sp),
		index:       sp.index,
	}
}

// Column returns the column index of a named variable.
func (p *Problem) Column(name string) (int, bool) {
	i, ok := p.index[name]
	return i, ok
}

// NumVars returns the column count.
func (p *Problem) NumVars() int { return len(p.Vars) }

// NumConstraints returns the row count.
func (p *Problem) NumConstraints() int { return len(p.Constraints) }

// NumIntegers returns the count of integer and binary columns.
func (p *Problem) NumIntegers() int {
	n := 0
	for _, v := range p.Vars {
		if v.Kind != Continuous {
			n++
		}
	}
	return n
}
