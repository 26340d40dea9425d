package network

// EdgeClass labels what an edge represents. Free intra-hub plumbing carries
// no cost and no capacity variable; capacitated classes are built in integer
// units (km of pipeline counts as one unit per arc, trucks one per truck).
type EdgeClass string

const (
	ClassFlow         EdgeClass = "flowWithinHub"
	ClassReverseFlow  EdgeClass = "reverseFlowWithinHub"
	ClassFromProducer EdgeClass = "flowFromProducer"
	ClassPurifier     EdgeClass = "flowThroughPurifier"
	ClassDowngrade    EdgeClass = "flowThroughDowngrade"
	ClassConversion   EdgeClass = "flowThroughConverter"
	ClassDepot        EdgeClass = "hubDepot"
	ClassToDemand     EdgeClass = "flowToDemandNode"
	ClassToSector     EdgeClass = "flowToDemandSector"
	ClassToPrice      EdgeClass = "flowToPriceNode"
	ClassArcPipeline  EdgeClass = "arcPipeline"
	ClassArcTruck     EdgeClass = "arcTruck"
)

// Edge is one directed arc between two node IDs. Cost coefficients are per
// unit of capacity (capital, fixed) and per ton moved (variable). A zero
// FlowLimit means the edge is uncapacitated and gets no capacity variable.
type Edge struct {
	From  string
	To    string
	Class EdgeClass

	LengthKm              float64
	CapitalUSDPerUnit     float64
	FixedUSDPerUnitPerDay float64
	VariableUSDPerTon     float64
	FlowLimitTonsPerDay   float64

	// Existing marks pre-built capacity: zero incremental capital cost and
	// PreBuiltUnits seeded into the capacity floor.
	Existing      bool
	PreBuiltUnits float64
}

// Capacitated reports whether the edge carries a discrete capacity variable.
func (e *Edge) Capacitated() bool {
	return e.FlowLimitTonsPerDay > 0
}

// Key returns the canonical edge identifier.
func (e *Edge) Key() string {
	return e.From + "->" + e.To
}
