package model

import (
	"fmt"
	"math"

	"github.com/dwheatley/hygrid/pkg/network"
	"github.com/dwheatley/hygrid/pkg/registry"
)

// Term is one nonzero of a constraint row.
type Term struct {
	Col  int
	Coef float64
}

// Constraint is one row: Lo <= sum(Terms) <= Hi.
type Constraint struct {
	Name  string
	Terms []Term
	Lo    float64
	Hi    float64
}

type rowBuilder struct {
	g     *network.Graph
	s     registry.Settings
	sp    *space
	rows  []Constraint
	retro map[string][]*network.Node
}

func (rb *rowBuilder) mustCol(name string) int {
	i, ok := rb.sp.col(name)
	if !ok {
		panic(fmt.Sprintf("model: column %s was never created", name))
	}
	return i
}

func (rb *rowBuilder) addRow(name string, lo float64, terms []Term, hi float64) {
	rb.rows = append(rb.rows, Constraint{Name: name, Terms: terms, Lo: lo, Hi: hi})
}

func (rb *rowBuilder) flowSum(edges []*network.Edge, sign float64) []Term {
	terms := make([]Term, 0, len(edges))
	for _, e := range edges {
		terms = append(terms, Term{Col: rb.mustCol(flowVar(e)), Coef: sign})
	}
	return terms
}

// buildConstraints assembles the rows in a fixed order: per-node structure in
// node order, per-edge capacity in edge order, then the system-wide clean
// credit balance.
func buildConstraints(g *network.Graph, s registry.Settings, sp *space) []Constraint {
	rb := &rowBuilder{g: g, s: s, sp: sp, retro: make(map[string][]*network.Node)}
	for _, n := range g.Nodes() {
		if n.RetrofitOf != "" {
			rb.retro[n.RetrofitOf] = append(rb.retro[n.RetrofitOf], n)
		}
	}

	for _, n := range g.Nodes() {
		rb.nodeRows(n)
	}
	for _, e := range g.Edges() {
		if !e.Capacitated() {
			continue
		}
		rb.addRow("edgecap["+e.Key()+"]", math.Inf(-1), []Term{
			{Col: rb.mustCol(flowVar(e)), Coef: 1},
			{Col: rb.mustCol(capVar(e)), Coef: -e.FlowLimitTonsPerDay},
		}, 0)
	}
	rb.checBalance()

	return rb.rows
}

func (rb *rowBuilder) nodeRows(n *network.Node) {
	switch n.Role {
	case network.RoleProduction:
		// Everything produced leaves the plant.
		terms := rb.flowSum(rb.g.OutEdges(n.ID), 1)
		terms = append(terms, Term{Col: rb.mustCol(prodVar(n.ID)), Coef: -1})
		rb.addRow("supply["+n.ID+"]", 0, terms, 0)

		if n.RetrofitOf != "" {
			return // capacity rows live on the base plant
		}
		rb.productionCapacity(n)

	case network.RoleCenter, network.RoleDistribution, network.RoleDemand:
		in := rb.flowSum(rb.g.InEdges(n.ID), 1)
		out := rb.flowSum(rb.g.OutEdges(n.ID), -1)
		rb.addRow("balance["+n.ID+"]", 0, append(in, out...), 0)

	case network.RoleConversion:
		in := rb.flowSum(rb.g.InEdges(n.ID), 1)
		out := rb.flowSum(rb.g.OutEdges(n.ID), -1)
		rb.addRow("balance["+n.ID+"]", 0, append(in, out...), 0)

		terms := rb.flowSum(rb.g.OutEdges(n.ID), 1)
		terms = append(terms, Term{Col: rb.mustCol(convCapVar(n.ID)), Coef: -n.Utilization})
		rb.addRow("convcap["+n.ID+"]", math.Inf(-1), terms, 0)

		if n.SubsidyCapitalUSDPerTonPerDay > 0 {
			rb.addRow("subsidy["+n.ID+"]", 0, []Term{
				{Col: rb.mustCol(subsidyVar(n.ID)), Coef: 1},
				{Col: rb.mustCol(convCapVar(n.ID)), Coef: -amortize(rb.s, n.SubsidyCapitalUSDPerTonPerDay)},
			}, 0)
		}

	case network.RoleDemandSector, network.RolePrice:
		rb.addRow("consume["+n.ID+"]", 0, rb.flowSum(rb.g.InEdges(n.ID), 1), n.SizeTonsPerDay)

	default:
		panic(fmt.Sprintf("model: unhandled node role %v for %s", n.Role, n.ID))
	}
}

// productionCapacity emits the capacity coupling for a base plant. New builds
// tie capacity to a build decision between the technology's min and max
// sizes. Existing plants share capacity with their retrofit variants: at most
// one variant may run, and while it runs the unretrofitted plant is off.
func (rb *rowBuilder) productionCapacity(n *network.Node) {
	inf := math.Inf(1)
	retros := rb.retro[n.ID]

	terms := []Term{{Col: rb.mustCol(prodVar(n.ID)), Coef: 1}}
	for _, r := range retros {
		terms = append(terms, Term{Col: rb.mustCol(prodVar(r.ID)), Coef: 1})
	}
	terms = append(terms, Term{Col: rb.mustCol(capacityVar(n.ID)), Coef: -n.Utilization})
	rb.addRow("prodcap["+n.ID+"]", math.Inf(-1), terms, 0)

	if !n.Existing {
		rb.addRow("buildub["+n.ID+"]", math.Inf(-1), []Term{
			{Col: rb.mustCol(capacityVar(n.ID)), Coef: 1},
			{Col: rb.mustCol(builtVar(n.ID)), Coef: -n.MaxTonsPerDay},
		}, 0)
		rb.addRow("buildlb["+n.ID+"]", 0, []Term{
			{Col: rb.mustCol(capacityVar(n.ID)), Coef: 1},
			{Col: rb.mustCol(builtVar(n.ID)), Coef: -n.MinTonsPerDay},
		}, inf)
		return
	}

	bigM := n.CapacityTonsPerDay * n.Utilization
	for _, r := range retros {
		rb.addRow("retroub["+r.ID+"]", math.Inf(-1), []Term{
			{Col: rb.mustCol(prodVar(r.ID)), Coef: 1},
			{Col: rb.mustCol(builtVar(r.ID)), Coef: -bigM},
		}, 0)
		// Activating a retrofit shuts the unretrofitted train down.
		rb.addRow("retrobase["+r.ID+"]", math.Inf(-1), []Term{
			{Col: rb.mustCol(prodVar(n.ID)), Coef: 1},
			{Col: rb.mustCol(builtVar(r.ID)), Coef: bigM},
		}, bigM)
	}
	if rb.s.Carbon.CCSExclusive && len(retros) > 1 {
		terms := make([]Term, 0, len(retros))
		for _, r := range retros {
			terms = append(terms, Term{Col: rb.mustCol(builtVar(r.ID)), Coef: 1})
		}
		rb.addRow("retroexcl["+n.ID+"]", math.Inf(-1), terms, 1)
	}
}

// checBalance requires carbon-sensitive consumption to be covered by clean
// production credits, system wide.
func (rb *rowBuilder) checBalance() {
	var terms []Term
	sensitive := false
	for _, n := range rb.g.Nodes() {
		switch {
		case n.Role == network.RoleDemandSector && n.CarbonSensitive:
			sensitive = true
			terms = append(terms, rb.flowSum(rb.g.InEdges(n.ID), 1)...)
		case n.Role == network.RoleProduction && n.ChecsPerTon > 0:
			terms = append(terms, Term{Col: rb.mustCol(prodVar(n.ID)), Coef: -n.ChecsPerTon})
		}
	}
	if !sensitive {
		return
	}
	rb.addRow("checs", math.Inf(-1), terms, 0)
}
