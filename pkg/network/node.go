// Package network turns the registry catalogs into the directed flow graph
// the optimization model is assembled over. The graph is built once per run,
// is immutable afterwards, and iterates in insertion order so two builds from
// the same catalogs produce identical node and edge sequences.
package network

import "github.com/dwheatley/hygrid/pkg/registry"

// Role tags the closed set of node variants. The constraint assembler
// switches exhaustively over it.
type Role uint8

const (
	// RoleProduction creates hydrogen (new build, existing, or a CCS
	// retrofit variant of an existing plant).
	RoleProduction Role = iota + 1
	// RoleCenter is the non-physical per-purity aggregator of a hub.
	RoleCenter
	// RoleConversion changes hydrogen state (purify, liquefy, compress,
	// dispense) at a capacity cost.
	RoleConversion
	// RoleDistribution is a local terminal for one carrier (pipeline per
	// purity, or a truck fleet depot).
	RoleDistribution
	// RoleDemand aggregates a hub's demand of one demand type.
	RoleDemand
	// RoleDemandSector is a real consumer with a size and breakeven price.
	RoleDemandSector
	// RolePrice is a synthetic low-volume consumer used to recover the
	// delivered price.
	RolePrice
)

// String returns the role name used in node identifiers and logs.
func (r Role) String() string {
	switch r {
	case RoleProduction:
		return "production"
	case RoleCenter:
		return "center"
	case RoleConversion:
		return "converter"
	case RoleDistribution:
		return "dist"
	case RoleDemand:
		return "demand"
	case RoleDemandSector:
		return "demandSector"
	case RolePrice:
		return "price"
	default:
		return "unknown"
	}
}

// Node is one graph vertex. ID is the deterministic join key used by the
// constraint assembler, the decoder and all downstream reporting; it must be
// unique across the whole graph. Only the field group matching Role is
// populated.
type Node struct {
	ID   string
	Role Role
	Hub  string

	// Production
	Technology string
	TechType   string // electric | thermal
	Purity     registry.Purity
	Existing   bool
	// RetrofitOf links a CCS retrofit variant to its base plant's node ID.
	RetrofitOf string
	// CCS names the retrofit technology on a retrofit variant.
	CCS                     string
	CapacityTonsPerDay      float64 // existing plants: recorded capacity
	CapacityFloorTonsPerDay float64 // existing plants: capacity x utilization
	CanCCS1                 bool
	CanCCS2                 bool

	// Cost/physics coefficients, hub-localized at build time.
	CapitalUSDPerTonPerDay float64
	VariableUSDPerTon      float64
	ElectricityUSDPerTon   float64
	NaturalGasUSDPerTon    float64
	Utilization            float64
	MinTonsPerDay          float64
	MaxTonsPerDay          float64
	// CO2PerTon is the residual emissions intensity charged carbon tax.
	CO2PerTon float64
	// CapturedCO2PerTon earns the capture credit per ton of hydrogen.
	CapturedCO2PerTon  float64
	ChecsPerTon        float64
	TaxCreditUSDPerTon float64

	// SubsidyCapitalUSDPerTonPerDay is the capital share covered by the
	// station subsidy on fuel dispensers. The model tracks it in a
	// bookkeeping variable that stays out of the objective.
	SubsidyCapitalUSDPerTonPerDay float64

	// Distribution
	Distributor string

	// Demand / demand sector / price
	DemandType         string
	Sector             string
	SizeTonsPerDay     float64
	BreakevenUSDPerTon float64
	CarbonSensitive    bool
	AvoidedCO2PerTon   float64
}
