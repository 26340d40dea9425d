package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwheatley/hygrid/pkg/registry"
)

func TestBuildHubTopology(t *testing.T) {
	g := buildTexas(t)

	// Every hub carries both purity centers and the purifier between them.
	for _, hub := range []string{"Dallas", "Waco", "Austin", "Houston", "Freeport"} {
		low, ok := g.Node(hub + "_center_lowPurity")
		require.True(t, ok, "missing low center for %s", hub)
		assert.Equal(t, RoleCenter, low.Role)

		_, ok = g.Node(hub + "_center_highPurity")
		require.True(t, ok, "missing high center for %s", hub)

		_, ok = g.Node(hub + "_converter_psa")
		require.True(t, ok, "missing purifier for %s", hub)

		_, ok = g.Edge(hub+"_center_highPurity", hub+"_center_lowPurity")
		assert.True(t, ok, "missing downgrade edge for %s", hub)
	}
}

func TestBuildProducersRespectBuildable(t *testing.T) {
	g := buildTexas(t)

	// Austin excludes smr explicitly; technologies with no column build
	// everywhere.
	_, ok := g.Node("Austin_production_smr")
	assert.False(t, ok, "Austin smr should not exist")
	_, ok = g.Node("Austin_production_electrolyzer")
	assert.True(t, ok, "Austin electrolyzer should exist")
	_, ok = g.Node("Dallas_production_smr")
	assert.True(t, ok, "Dallas smr should exist")

	// Producers feed the center matching their output purity.
	_, ok = g.Edge("Dallas_production_smr", "Dallas_center_lowPurity")
	assert.True(t, ok, "smr should feed the low purity center")
	_, ok = g.Edge("Dallas_production_electrolyzer", "Dallas_center_highPurity")
	assert.True(t, ok, "electrolyzer should feed the high purity center")
}

func TestBuildProducerCoefficients(t *testing.T) {
	g := buildTexas(t)

	smr, ok := g.Node("Houston_production_smr")
	require.True(t, ok)
	// Capital is hub-localized, energy priced at hub rates.
	assert.InDelta(t, 200000*1.1, smr.CapitalUSDPerTonPerDay, 1e-9)
	assert.InDelta(t, 160*3.2, smr.NaturalGasUSDPerTon, 1e-9)
	assert.Zero(t, smr.ElectricityUSDPerTon)

	// New thermal capture credit is sized against the unabated baseline.
	ccs, ok := g.Node("Houston_production_smrCCS")
	require.True(t, ok)
	assert.InDelta(t, 9.2*0.9, ccs.CapturedCO2PerTon, 1e-9)

	ely, ok := g.Node("Houston_production_electrolyzer")
	require.True(t, ok)
	assert.InDelta(t, 54000*0.055, ely.ElectricityUSDPerTon, 1e-9)
	assert.Zero(t, ely.CapturedCO2PerTon)
}

func TestBuildExistingPlant(t *testing.T) {
	g := buildTexas(t)

	base, ok := g.Node("Freeport_production_smrExisting")
	require.True(t, ok, "missing existing plant node")
	assert.True(t, base.Existing)
	assert.Zero(t, base.CapitalUSDPerTonPerDay, "existing capacity is sunk cost")
	assert.InDelta(t, 150.0, base.CapacityTonsPerDay, 1e-9)
	assert.InDelta(t, 150*0.9, base.CapacityFloorTonsPerDay, 1e-9)

	_, ok = g.Edge("Freeport_production_smrExisting", "Freeport_center_lowPurity")
	assert.True(t, ok)

	// Both retrofit variants hang off the base plant.
	retros := g.Retrofits("Freeport_production_smrExisting")
	require.Len(t, retros, 2)

	r1 := retros[0]
	assert.Equal(t, "Freeport_production_smrExisting_ccs1", r1.ID)
	assert.InDelta(t, 9.2*0.53, r1.CapturedCO2PerTon, 1e-9)
	assert.InDelta(t, 9.2-9.2*0.53, r1.CO2PerTon, 1e-9)
	// FractionalChecs mints capture-rate credits.
	assert.InDelta(t, 0.53, r1.ChecsPerTon, 1e-9)
	// CCS variable cost is charged per captured ton on top of the base cost.
	assert.InDelta(t, 50+20*9.2*0.53, r1.VariableUSDPerTon, 1e-9)
	assert.InDelta(t, 500.0, r1.TaxCreditUSDPerTon, 1e-9)
}

func TestBuildExistingPipeline(t *testing.T) {
	g := buildTexas(t)

	for _, dir := range [][2]string{
		{"Houston_dist_pipelineLowPurity", "Freeport_dist_pipelineLowPurity"},
		{"Freeport_dist_pipelineLowPurity", "Houston_dist_pipelineLowPurity"},
	} {
		e, ok := g.Edge(dir[0], dir[1])
		require.True(t, ok, "missing %s -> %s", dir[0], dir[1])
		assert.True(t, e.Existing)
		assert.Zero(t, e.CapitalUSDPerUnit, "pre-built pipeline carries no capital")
		assert.Equal(t, 1.0, e.PreBuiltUnits)
		assert.InDelta(t, 0.05*90, e.VariableUSDPerTon, 1e-9)
	}

	// The high purity pair on the same arc is a fresh build.
	e, ok := g.Edge("Houston_dist_pipelineHighPurity", "Freeport_dist_pipelineHighPurity")
	require.True(t, ok)
	assert.False(t, e.Existing)
	assert.InEpsilon(t, 500000*90*1.1, e.CapitalUSDPerUnit, 1e-12)

	// A non-exist arc gets costed pipelines in both purities.
	e, ok = g.Edge("Dallas_dist_pipelineLowPurity", "Waco_dist_pipelineLowPurity")
	require.True(t, ok)
	assert.False(t, e.Existing)
	assert.InEpsilon(t, 500000*150*(1.0+0.95)/2, e.CapitalUSDPerUnit, 1e-12)
}

func TestBuildTruckRoutes(t *testing.T) {
	g := buildTexas(t)

	// The depot edge carries the fleet capital and the per-truck flow limit.
	depot, ok := g.Edge("Dallas_converter_liquefier", "Dallas_dist_truckLiquefied")
	require.True(t, ok)
	assert.InDelta(t, 500000*1.0, depot.CapitalUSDPerUnit, 1e-9)
	assert.Equal(t, 6.0, depot.FlowLimitTonsPerDay)
	assert.True(t, depot.Capacitated())

	// Routes cost only the haul; the fleet was capitalized at the depot.
	route, ok := g.Edge("Dallas_dist_truckLiquefied", "Houston_dist_truckLiquefied")
	require.True(t, ok)
	assert.Zero(t, route.CapitalUSDPerUnit)
	assert.False(t, route.Capacitated())
	assert.InDelta(t, 0.6*385, route.VariableUSDPerTon, 1e-9)
}

func TestBuildDemandWiring(t *testing.T) {
	g := buildTexas(t)

	// High-capable supply serves both grades; low serves only low.
	_, ok := g.Edge("Dallas_dist_pipelineHighPurity", "Dallas_demand_lowPurity")
	assert.True(t, ok)
	_, ok = g.Edge("Dallas_dist_pipelineHighPurity", "Dallas_demand_highPurity")
	assert.True(t, ok)
	_, ok = g.Edge("Dallas_dist_pipelineLowPurity", "Dallas_demand_highPurity")
	assert.False(t, ok, "low purity supply must not serve high purity demand")

	// Fuel stations sit behind the dispenser.
	_, ok = g.Edge("Dallas_converter_stationDispenser", "Dallas_demand_fuelStation")
	assert.True(t, ok)
	_, ok = g.Edge("Dallas_center_highPurity", "Dallas_converter_stationDispenser")
	assert.True(t, ok)

	// Sector sinks hang off their demand type with the hub's demand size.
	sector, ok := g.Node("Houston_demandSector_industrialFuel")
	require.True(t, ok)
	assert.Equal(t, 100.0, sector.SizeTonsPerDay)
	assert.Equal(t, 1500.0, sector.BreakevenUSDPerTon)
	assert.False(t, sector.CarbonSensitive)

	clean, ok := g.Node("Austin_demandSector_cleanIndustrialFuel")
	require.True(t, ok)
	assert.True(t, clean.CarbonSensitive)
	assert.Equal(t, 9.2, clean.AvoidedCO2PerTon)

	// Hubs without demand get no sector sinks.
	_, ok = g.Node("Waco_demandSector_industrialFuel")
	assert.False(t, ok)
}

func TestBuildCarbonSensitiveSplit(t *testing.T) {
	reg, hubs, arcs, settings := texasFixture(t)

	// Rebuild the registry with a partially sensitive sector.
	sectors := append([]registry.DemandSector{}, reg.Sectors()...)
	sectors[0].CarbonSensitiveFraction = 0.3
	reg2, err := registry.NewRegistry(reg.ProductionTechs(),
		[]registry.ConversionTech{
			{Name: "psa", Role: registry.RolePurifier, CapitalUSDPerTonPerDay: 30000, VariableUSDPerTon: 10, Utilization: 0.95},
			{Name: "liquefier", Role: registry.RoleLiquefier, CapitalUSDPerTonPerDay: 150000, VariableUSDPerTon: 40, KWhPerTon: 10000, Utilization: 0.9},
			{Name: "terminalCompressor", Role: registry.RoleCompressor, CapitalUSDPerTonPerDay: 50000, VariableUSDPerTon: 15, KWhPerTon: 2000, Utilization: 0.9},
			{Name: "stationDispenser", Role: registry.RoleDispenser, CapitalUSDPerTonPerDay: 90000, VariableUSDPerTon: 60, KWhPerTon: 3000, Utilization: 0.7},
		},
		reg.Distributions(), reg.CCSTechs(), sectors)
	require.NoError(t, err)

	g, err := NewBuilder(reg2, hubs, arcs, settings).Build()
	require.NoError(t, err)

	indiff, ok := g.Node("Houston_demandSector_industrialFuel_carbonIndifferent")
	require.True(t, ok)
	sens, ok := g.Node("Houston_demandSector_industrialFuel_carbonSensitive")
	require.True(t, ok)
	assert.InDelta(t, 70.0, indiff.SizeTonsPerDay, 1e-9)
	assert.InDelta(t, 30.0, sens.SizeTonsPerDay, 1e-9)
	assert.True(t, sens.CarbonSensitive)
	assert.False(t, indiff.CarbonSensitive)
}

func TestBuildPriceNodes(t *testing.T) {
	g := buildTexas(t)

	// 0..10 by 0.05 is 201 rungs per (hub, sector) pair with demand.
	var dallas, waco int
	for _, n := range g.Nodes() {
		if n.Role != RolePrice {
			continue
		}
		switch n.Hub {
		case "Dallas":
			dallas++
		case "Waco":
			waco++
		}
	}
	assert.Equal(t, 201*2, dallas, "Dallas has two demanded sectors")
	assert.Zero(t, waco, "Waco has no demand")

	n, ok := g.Node("Dallas_price_industrialFuel_3.95")
	require.True(t, ok, "missing ladder rung node")
	assert.InDelta(t, 3950.0, n.BreakevenUSDPerTon, 1e-9, "ladder prices scale from USD/kg to USD/ton")
	assert.Equal(t, 0.05, n.SizeTonsPerDay)

	_, ok = g.Edge("Dallas_demand_lowPurity", "Dallas_price_industrialFuel_3.95")
	assert.True(t, ok, "price node draws from its sector's demand type")
}

func TestBuildRejectsUnknownArcHub(t *testing.T) {
	reg, hubs, _, settings := texasFixture(t)
	arcs, err := registry.NewArcCatalog([]registry.Arc{{From: "Dallas", To: "ElPaso", DistanceKm: 900}})
	require.NoError(t, err)

	_, err = NewBuilder(reg, hubs, arcs, settings).Build()
	require.Error(t, err)
	assert.True(t, IsConfigError(err), "arc to unknown hub must be a config error")
}
