package network

import (
	"errors"
	"fmt"

	"github.com/dwheatley/hygrid/pkg/registry"
)

// kgPerTon converts ladder prices (USD/kg) to breakeven coefficients (USD/ton).
const kgPerTon = 1000.0

// Builder assembles the flow graph from the validated catalogs. One Builder
// serves one Build call.
type Builder struct {
	reg      *registry.Registry
	hubs     *registry.HubCatalog
	arcs     *registry.ArcCatalog
	settings registry.Settings

	g      *Graph
	ladder []float64
}

// NewBuilder wires a builder over the run inputs.
func NewBuilder(reg *registry.Registry, hubs *registry.HubCatalog, arcs *registry.ArcCatalog, settings registry.Settings) *Builder {
	return &Builder{reg: reg, hubs: hubs, arcs: arcs, settings: settings}
}

// Build constructs the full network: per-hub internals in hub load order,
// existing plants, then inter-hub arcs. The result is deterministic given
// identical catalogs.
func (b *Builder) Build() (*Graph, error) {
	b.g = NewGraph()

	if b.settings.PriceTracking.Enabled {
		ladder, err := PriceLadder(b.settings.PriceTracking)
		if err != nil {
			return nil, err
		}
		b.ladder = ladder
	}

	for _, hub := range b.hubs.Hubs() {
		if err := b.buildHub(hub); err != nil {
			return nil, err
		}
	}
	for _, ex := range b.hubs.Existing() {
		if err := b.buildExisting(ex); err != nil {
			return nil, err
		}
	}
	if err := b.buildArcs(); err != nil {
		return nil, err
	}
	return b.g, nil
}

func (b *Builder) buildHub(hub registry.Hub) error {
	if err := b.buildCenters(hub); err != nil {
		return err
	}
	if err := b.buildProducers(hub); err != nil {
		return err
	}
	if err := b.buildDistribution(hub); err != nil {
		return err
	}
	if err := b.buildDemand(hub); err != nil {
		return err
	}
	return b.buildPrices(hub)
}

func centerID(hub string, p registry.Purity) string {
	if p == registry.PurityHigh {
		return hub + "_center_highPurity"
	}
	return hub + "_center_lowPurity"
}

func converterID(hub, name string) string { return hub + "_converter_" + name }

func distPipelineID(hub, tech string, p registry.Purity) string {
	if p == registry.PurityHigh {
		return hub + "_dist_" + tech + "HighPurity"
	}
	return hub + "_dist_" + tech + "LowPurity"
}

func distTruckID(hub, tech string) string { return hub + "_dist_" + tech }

func demandID(hub, demandType string) string { return hub + "_demand_" + demandType }

// buildCenters creates the two purity aggregators, the purifier step between
// them, and the free high-to-low downgrade.
func (b *Builder) buildCenters(hub registry.Hub) error {
	low := &Node{ID: centerID(hub.Name, registry.PurityLow), Role: RoleCenter, Hub: hub.Name, Purity: registry.PurityLow}
	high := &Node{ID: centerID(hub.Name, registry.PurityHigh), Role: RoleCenter, Hub: hub.Name, Purity: registry.PurityHigh}
	for _, n := range []*Node{low, high} {
		if err := b.g.AddNode(n); err != nil {
			return configErr("centers", hub.Name, err)
		}
	}

	// High purity satisfies low-purity demand for free; the reverse needs
	// the purifier.
	if err := b.g.AddEdge(&Edge{From: high.ID, To: low.ID, Class: ClassDowngrade}); err != nil {
		return configErr("centers", hub.Name, err)
	}

	pur, err := b.reg.Conversion(registry.RolePurifier)
	if errors.Is(err, registry.ErrTechnologyNotFound) {
		return nil
	}
	if err != nil {
		return configErr("centers", hub.Name, err)
	}
	node, err := b.addConverter(hub, pur)
	if err != nil {
		return err
	}
	if err := b.g.AddEdge(&Edge{From: low.ID, To: node.ID, Class: ClassPurifier}); err != nil {
		return configErr("centers", hub.Name, err)
	}
	if err := b.g.AddEdge(&Edge{From: node.ID, To: high.ID, Class: ClassPurifier}); err != nil {
		return configErr("centers", hub.Name, err)
	}
	return nil
}

func (b *Builder) addConverter(hub registry.Hub, tech registry.ConversionTech) (*Node, error) {
	n := &Node{
		ID:         converterID(hub.Name, tech.Name),
		Role:       RoleConversion,
		Hub:        hub.Name,
		Technology: tech.Name,

		CapitalUSDPerTonPerDay: tech.CapitalUSDPerTonPerDay * hub.CapitalMultiplier,
		VariableUSDPerTon:      tech.VariableUSDPerTon,
		ElectricityUSDPerTon:   tech.KWhPerTon * hub.ElectricityUSDPerKWh,
		Utilization:            tech.Utilization,
	}
	if err := b.g.AddNode(n); err != nil {
		return nil, configErr("converters", hub.Name, err)
	}
	return n, nil
}

// buildProducers creates one candidate plant per buildable technology and
// connects it to the center matching its output purity.
func (b *Builder) buildProducers(hub registry.Hub) error {
	for _, tech := range b.reg.ProductionTechs() {
		if !hub.Buildable(tech.Name) {
			continue
		}
		n := &Node{
			ID:         hub.Name + "_production_" + tech.Name,
			Role:       RoleProduction,
			Hub:        hub.Name,
			Technology: tech.Name,
			TechType:   tech.Type,
			Purity:     tech.Purity,

			CapitalUSDPerTonPerDay: tech.CapitalUSDPerTonPerDay * hub.CapitalMultiplier,
			VariableUSDPerTon:      tech.VariableUSDPerTon,
			ElectricityUSDPerTon:   tech.KWhPerTon * hub.ElectricityUSDPerKWh,
			NaturalGasUSDPerTon:    tech.MMBtuPerTon * hub.NaturalGasUSDPerMMBtu,
			Utilization:            tech.Utilization,
			MinTonsPerDay:          tech.MinTonsPerDay,
			MaxTonsPerDay:          tech.MaxTonsPerDay,
			CO2PerTon:              tech.CO2PerTon,
			ChecsPerTon:            tech.ChecsPerTon,
			TaxCreditUSDPerTon:     tech.TaxCreditUSDPerTon,
		}
		if tech.Type == registry.ProdTypeThermal {
			n.CapturedCO2PerTon = b.settings.Carbon.BaselineSMRCO2PerTon * tech.CCSCaptureRate
		}
		if err := b.g.AddNode(n); err != nil {
			return configErr("producers", hub.Name, err)
		}
		edge := &Edge{From: n.ID, To: centerID(hub.Name, tech.Purity), Class: ClassFromProducer}
		if err := b.g.AddEdge(edge); err != nil {
			return configErr("producers", hub.Name, err)
		}
	}
	return nil
}

// buildDistribution creates the hub's carrier terminals. Pipelines get one
// terminal per purity tied to the matching center; trucks get a fleet depot
// behind their terminal conversion step, with the fleet capital on the depot
// edge.
func (b *Builder) buildDistribution(hub registry.Hub) error {
	for _, dist := range b.reg.Distributions() {
		switch dist.Kind {
		case registry.DistKindPipeline:
			for _, p := range []registry.Purity{registry.PurityLow, registry.PurityHigh} {
				n := &Node{
					ID:          distPipelineID(hub.Name, dist.Name, p),
					Role:        RoleDistribution,
					Hub:         hub.Name,
					Distributor: dist.Name,
					Purity:      p,
				}
				if err := b.g.AddNode(n); err != nil {
					return configErr("distribution", hub.Name, err)
				}
				center := centerID(hub.Name, p)
				if err := b.g.AddEdge(&Edge{From: center, To: n.ID, Class: ClassFlow}); err != nil {
					return configErr("distribution", hub.Name, err)
				}
				if err := b.g.AddEdge(&Edge{From: n.ID, To: center, Class: ClassReverseFlow}); err != nil {
					return configErr("distribution", hub.Name, err)
				}
			}

		case registry.DistKindTruck:
			term, err := b.reg.Conversion(dist.Terminal)
			if err != nil {
				return configErr("distribution", hub.Name, err)
			}
			conv, err := b.addConverter(hub, term)
			if err != nil {
				return err
			}
			n := &Node{
				ID:          distTruckID(hub.Name, dist.Name),
				Role:        RoleDistribution,
				Hub:         hub.Name,
				Distributor: dist.Name,
				Purity:      registry.PurityHigh,
			}
			if err := b.g.AddNode(n); err != nil {
				return configErr("distribution", hub.Name, err)
			}
			high := centerID(hub.Name, registry.PurityHigh)
			if err := b.g.AddEdge(&Edge{From: high, To: conv.ID, Class: ClassConversion}); err != nil {
				return configErr("distribution", hub.Name, err)
			}
			depot := &Edge{
				From:                  conv.ID,
				To:                    n.ID,
				Class:                 ClassDepot,
				CapitalUSDPerUnit:     dist.CapitalUSDPerUnit * hub.CapitalMultiplier,
				FixedUSDPerUnitPerDay: dist.FixedUSDPerUnitPerDay,
				FlowLimitTonsPerDay:   dist.FlowLimitTonsPerDay,
			}
			if err := b.g.AddEdge(depot); err != nil {
				return configErr("distribution", hub.Name, err)
			}
			// Return leg so inbound truck flow can reach local consumers.
			if err := b.g.AddEdge(&Edge{From: n.ID, To: high, Class: ClassReverseFlow}); err != nil {
				return configErr("distribution", hub.Name, err)
			}

		default:
			return configErr("distribution", hub.Name,
				fmt.Errorf("%w: unknown distribution kind %q", registry.ErrInvalidRecord, dist.Kind))
		}
	}
	return nil
}

// buildDemand creates the per-type demand aggregators, the sector sinks behind
// them, and the fuel-station dispenser when one is configured. High-capable
// supply (high-purity pipeline terminals, trucks, the high center) serves both
// purity grades; low-purity supply serves only the low grade.
func (b *Builder) buildDemand(hub registry.Hub) error {
	lowDemand := &Node{ID: demandID(hub.Name, registry.DemandTypeLow), Role: RoleDemand, Hub: hub.Name, DemandType: registry.DemandTypeLow}
	highDemand := &Node{ID: demandID(hub.Name, registry.DemandTypeHigh), Role: RoleDemand, Hub: hub.Name, DemandType: registry.DemandTypeHigh}
	for _, n := range []*Node{lowDemand, highDemand} {
		if err := b.g.AddNode(n); err != nil {
			return configErr("demand", hub.Name, err)
		}
	}

	lowCenter := centerID(hub.Name, registry.PurityLow)
	highCenter := centerID(hub.Name, registry.PurityHigh)
	if err := b.g.AddEdge(&Edge{From: lowCenter, To: lowDemand.ID, Class: ClassToDemand}); err != nil {
		return configErr("demand", hub.Name, err)
	}
	if err := b.g.AddEdge(&Edge{From: highCenter, To: highDemand.ID, Class: ClassToDemand}); err != nil {
		return configErr("demand", hub.Name, err)
	}

	var highCapable []string
	for _, dist := range b.reg.Distributions() {
		switch dist.Kind {
		case registry.DistKindPipeline:
			lowTerm := distPipelineID(hub.Name, dist.Name, registry.PurityLow)
			if err := b.g.AddEdge(&Edge{From: lowTerm, To: lowDemand.ID, Class: ClassToDemand}); err != nil {
				return configErr("demand", hub.Name, err)
			}
			highCapable = append(highCapable, distPipelineID(hub.Name, dist.Name, registry.PurityHigh))
		case registry.DistKindTruck:
			highCapable = append(highCapable, distTruckID(hub.Name, dist.Name))
		}
	}
	for _, from := range highCapable {
		if err := b.g.AddEdge(&Edge{From: from, To: highDemand.ID, Class: ClassToDemand}); err != nil {
			return configErr("demand", hub.Name, err)
		}
		if err := b.g.AddEdge(&Edge{From: from, To: lowDemand.ID, Class: ClassToDemand}); err != nil {
			return configErr("demand", hub.Name, err)
		}
	}

	// Fuel stations sit behind the dispenser step; its capital carries the
	// station subsidy share.
	disp, err := b.reg.Conversion(registry.RoleDispenser)
	switch {
	case err == nil:
		conv, cerr := b.addConverter(hub, disp)
		if cerr != nil {
			return cerr
		}
		full := conv.CapitalUSDPerTonPerDay
		conv.CapitalUSDPerTonPerDay = full * b.settings.Economics.SubsidyCostShare
		conv.SubsidyCapitalUSDPerTonPerDay = full * (1 - b.settings.Economics.SubsidyCostShare)
		station := &Node{ID: demandID(hub.Name, registry.DemandTypeFuelStation), Role: RoleDemand, Hub: hub.Name, DemandType: registry.DemandTypeFuelStation}
		if err := b.g.AddNode(station); err != nil {
			return configErr("demand", hub.Name, err)
		}
		feeds := append([]string{highCenter}, highCapable...)
		for _, from := range feeds {
			if err := b.g.AddEdge(&Edge{From: from, To: conv.ID, Class: ClassConversion}); err != nil {
				return configErr("demand", hub.Name, err)
			}
		}
		if err := b.g.AddEdge(&Edge{From: conv.ID, To: station.ID, Class: ClassConversion}); err != nil {
			return configErr("demand", hub.Name, err)
		}

	case errors.Is(err, registry.ErrTechnologyNotFound):
		for _, sector := range b.reg.Sectors() {
			if sector.DemandType == registry.DemandTypeFuelStation && hub.Demand(sector.Sector) > 0 {
				return configErr("demand", hub.Name,
					fmt.Errorf("%w: sector %s needs a fuel dispenser", registry.ErrTechnologyNotFound, sector.Sector))
			}
		}

	default:
		return configErr("demand", hub.Name, err)
	}

	return b.buildSectors(hub)
}

// buildSectors attaches one sink per sector with hub demand, split into a
// carbon-sensitive and a carbon-indifferent part when the sector's sensitive
// fraction is strictly between zero and one.
func (b *Builder) buildSectors(hub registry.Hub) error {
	for _, sector := range b.reg.Sectors() {
		total := hub.Demand(sector.Sector)
		if total <= 0 {
			continue
		}
		source := demandID(hub.Name, sector.DemandType)
		if _, ok := b.g.Node(source); !ok {
			return configErr("sectors", hub.Name,
				fmt.Errorf("%w: demand type %s for sector %s", ErrNodeNotFound, sector.DemandType, sector.Sector))
		}

		f := sector.CarbonSensitiveFraction
		add := func(suffix string, size float64, sensitive bool) error {
			n := &Node{
				ID:                 hub.Name + "_demandSector_" + sector.Sector + suffix,
				Role:               RoleDemandSector,
				Hub:                hub.Name,
				Sector:             sector.Sector,
				DemandType:         sector.DemandType,
				SizeTonsPerDay:     size,
				BreakevenUSDPerTon: sector.BreakevenUSDPerTon,
				CarbonSensitive:    sensitive,
			}
			if sensitive {
				n.AvoidedCO2PerTon = sector.AvoidedCO2PerTon
			}
			if err := b.g.AddNode(n); err != nil {
				return configErr("sectors", hub.Name, err)
			}
			if err := b.g.AddEdge(&Edge{From: source, To: n.ID, Class: ClassToSector}); err != nil {
				return configErr("sectors", hub.Name, err)
			}
			return nil
		}

		switch {
		case f <= 0:
			if err := add("", total, false); err != nil {
				return err
			}
		case f >= 1:
			if err := add("", total, true); err != nil {
				return err
			}
		default:
			if err := add("_carbonIndifferent", total*(1-f), false); err != nil {
				return err
			}
			if err := add("_carbonSensitive", total*f, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildPrices hangs the synthetic price ladder off each (hub, sector) pair
// with demand. Ladder prices are USD/kg; breakeven coefficients are USD/ton.
func (b *Builder) buildPrices(hub registry.Hub) error {
	if !b.settings.PriceTracking.Enabled {
		return nil
	}
	for _, sector := range b.reg.Sectors() {
		if hub.Demand(sector.Sector) <= 0 {
			continue
		}
		source := demandID(hub.Name, sector.DemandType)
		for _, p := range b.ladder {
			n := &Node{
				ID:                 hub.Name + "_price_" + sector.Sector + "_" + priceLabel(p),
				Role:               RolePrice,
				Hub:                hub.Name,
				Sector:             sector.Sector,
				DemandType:         sector.DemandType,
				SizeTonsPerDay:     b.settings.PriceTracking.DemandTonsPerDay,
				BreakevenUSDPerTon: p * kgPerTon,
			}
			if err := b.g.AddNode(n); err != nil {
				return configErr("prices", hub.Name, err)
			}
			if err := b.g.AddEdge(&Edge{From: source, To: n.ID, Class: ClassToPrice}); err != nil {
				return configErr("prices", hub.Name, err)
			}
		}
	}
	return nil
}

// buildExisting creates the node for one already-built plant plus its CCS
// retrofit variants. Existing capacity carries no capital cost and must run
// at no less than capacity times utilization.
func (b *Builder) buildExisting(ex registry.ExistingProduction) error {
	hub, err := b.hubs.Hub(ex.Hub)
	if err != nil {
		return configErr("existing", ex.Hub, err)
	}
	tech, err := b.reg.Production(ex.Technology)
	if err != nil {
		return configErr("existing", ex.Hub, err)
	}

	baseCO2 := tech.CO2PerTon
	if ex.CO2PerTon > 0 {
		baseCO2 = ex.CO2PerTon
	}

	base := &Node{
		ID:         ex.Hub + "_production_" + tech.Name + "Existing",
		Role:       RoleProduction,
		Hub:        ex.Hub,
		Technology: tech.Name,
		TechType:   tech.Type,
		Purity:     tech.Purity,
		Existing:   true,

		CapacityTonsPerDay:      ex.CapacityTonsPerDay,
		CapacityFloorTonsPerDay: ex.CapacityTonsPerDay * tech.Utilization,
		CanCCS1:                 ex.CanCCS1,
		CanCCS2:                 ex.CanCCS2,

		VariableUSDPerTon:    tech.VariableUSDPerTon,
		ElectricityUSDPerTon: tech.KWhPerTon * hub.ElectricityUSDPerKWh,
		NaturalGasUSDPerTon:  tech.MMBtuPerTon * hub.NaturalGasUSDPerMMBtu,
		Utilization:          tech.Utilization,
		CO2PerTon:            baseCO2,
	}
	if err := b.g.AddNode(base); err != nil {
		return configErr("existing", ex.Hub, err)
	}
	center := centerID(ex.Hub, tech.Purity)
	if err := b.g.AddEdge(&Edge{From: base.ID, To: center, Class: ClassFromProducer}); err != nil {
		return configErr("existing", ex.Hub, err)
	}

	for i, ccs := range b.reg.CCSTechs() {
		allowed := (i == 0 && ex.CanCCS1) || (i == 1 && ex.CanCCS2)
		if !allowed {
			continue
		}
		captured := ccs.CaptureFraction * baseCO2
		checs := 1.0
		if b.settings.Carbon.FractionalChecs {
			checs = ccs.CaptureFraction
		}
		retro := &Node{
			ID:         base.ID + "_" + ccs.Name,
			Role:       RoleProduction,
			Hub:        ex.Hub,
			Technology: tech.Name,
			TechType:   tech.Type,
			Purity:     tech.Purity,
			Existing:   true,
			RetrofitOf: base.ID,
			CCS:        ccs.Name,

			CapacityTonsPerDay: ex.CapacityTonsPerDay,

			VariableUSDPerTon:    tech.VariableUSDPerTon + ccs.VariableUSDPerTonCO2*captured,
			ElectricityUSDPerTon: base.ElectricityUSDPerTon,
			NaturalGasUSDPerTon:  base.NaturalGasUSDPerTon,
			Utilization:          tech.Utilization,
			CO2PerTon:            baseCO2 - captured,
			CapturedCO2PerTon:    captured,
			ChecsPerTon:          checs,
			TaxCreditUSDPerTon:   ccs.H2TaxCreditUSDPerTon,
		}
		if err := b.g.AddNode(retro); err != nil {
			return configErr("existing", ex.Hub, err)
		}
		if err := b.g.AddEdge(&Edge{From: retro.ID, To: center, Class: ClassFromProducer}); err != nil {
			return configErr("existing", ex.Hub, err)
		}
	}
	return nil
}

// buildArcs lays distribution corridors over the arc catalog. Pipelines run
// terminal to terminal per purity in both directions; an exist_pipeline arc
// seeds the low-purity pair with free pre-built capacity. Truck routes carry
// only the per-km-ton haul cost, the fleet being capitalized at the depot.
func (b *Builder) buildArcs() error {
	for _, arc := range b.arcs.Arcs() {
		from, err := b.hubs.Hub(arc.From)
		if err != nil {
			return configErr("arcs", arc.From, err)
		}
		to, err := b.hubs.Hub(arc.To)
		if err != nil {
			return configErr("arcs", arc.To, err)
		}
		avgMult := (from.CapitalMultiplier + to.CapitalMultiplier) / 2

		for _, dist := range b.reg.Distributions() {
			switch dist.Kind {
			case registry.DistKindPipeline:
				for _, p := range []registry.Purity{registry.PurityLow, registry.PurityHigh} {
					existing := arc.ExistPipeline && p == registry.PurityLow
					capital := dist.CapitalUSDPerUnit * arc.DistanceKm * avgMult
					prebuilt := 0.0
					if existing {
						capital = 0
						prebuilt = 1
					}
					pair := [2][2]string{
						{distPipelineID(arc.From, dist.Name, p), distPipelineID(arc.To, dist.Name, p)},
						{distPipelineID(arc.To, dist.Name, p), distPipelineID(arc.From, dist.Name, p)},
					}
					for _, fp := range pair {
						e := &Edge{
							From:                  fp[0],
							To:                    fp[1],
							Class:                 ClassArcPipeline,
							LengthKm:              arc.DistanceKm,
							CapitalUSDPerUnit:     capital,
							FixedUSDPerUnitPerDay: dist.FixedUSDPerUnitPerDay * arc.DistanceKm,
							VariableUSDPerTon:     dist.VariableUSDPerKmTon * arc.DistanceKm,
							FlowLimitTonsPerDay:   dist.FlowLimitTonsPerDay,
							Existing:              existing,
							PreBuiltUnits:         prebuilt,
						}
						if err := b.g.AddEdge(e); err != nil {
							return configErr("arcs", arc.From, err)
						}
					}
				}

			case registry.DistKindTruck:
				pair := [2][2]string{
					{distTruckID(arc.From, dist.Name), distTruckID(arc.To, dist.Name)},
					{distTruckID(arc.To, dist.Name), distTruckID(arc.From, dist.Name)},
				}
				for _, fp := range pair {
					e := &Edge{
						From:              fp[0],
						To:                fp[1],
						Class:             ClassArcTruck,
						LengthKm:          arc.DistanceKm,
						VariableUSDPerTon: dist.VariableUSDPerKmTon * arc.DistanceKm,
					}
					if err := b.g.AddEdge(e); err != nil {
						return configErr("arcs", arc.From, err)
					}
				}
			}
		}
	}
	return nil
}

// Retrofits returns the CCS retrofit variants of a base plant node, in
// insertion order.
func (g *Graph) Retrofits(baseID string) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.RetrofitOf == baseID {
			out = append(out, n)
		}
	}
	return out
}
