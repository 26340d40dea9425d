package model

import (
	"testing"

	"github.com/dwheatley/hygrid/pkg/network"
	"github.com/dwheatley/hygrid/pkg/registry"
)

// coastFixture is a two-hub scenario small enough to reason about by hand:
// Houston demands, Freeport hosts an existing plant with two retrofit
// options, and one arc with a pre-built pipeline links them. The price
// ladder runs 3.8 to 4.1 by 0.1.
func coastFixture(t *testing.T) (*network.Graph, registry.Settings) {
	t.Helper()

	reg, err := registry.NewRegistry(
		[]registry.ProductionTech{
			{
				Name: "smr", Type: registry.ProdTypeThermal, Purity: registry.PurityLow,
				CapitalUSDPerTonPerDay: 200000, VariableUSDPerTon: 50, MMBtuPerTon: 160,
				Utilization: 0.9, MinTonsPerDay: 10, MaxTonsPerDay: 200, CO2PerTon: 9.2,
			},
			{
				Name: "electrolyzer", Type: registry.ProdTypeElectric, Purity: registry.PurityHigh,
				CapitalUSDPerTonPerDay: 350000, VariableUSDPerTon: 20, KWhPerTon: 54000,
				Utilization: 0.95, MinTonsPerDay: 1, MaxTonsPerDay: 100,
				ChecsPerTon: 1, TaxCreditUSDPerTon: 3000,
			},
		},
		[]registry.ConversionTech{
			{Name: "psa", Role: registry.RolePurifier, CapitalUSDPerTonPerDay: 30000, VariableUSDPerTon: 10, Utilization: 0.95},
			{Name: "liquefier", Role: registry.RoleLiquefier, CapitalUSDPerTonPerDay: 150000, VariableUSDPerTon: 40, KWhPerTon: 10000, Utilization: 0.9},
			{Name: "stationDispenser", Role: registry.RoleDispenser, CapitalUSDPerTonPerDay: 90000, VariableUSDPerTon: 60, KWhPerTon: 3000, Utilization: 0.7},
		},
		[]registry.DistributionTech{
			{Name: "pipeline", Kind: registry.DistKindPipeline, CapitalUSDPerUnit: 500000, VariableUSDPerKmTon: 0.05, FlowLimitTonsPerDay: 200},
			{Name: "truckLiquefied", Kind: registry.DistKindTruck, Terminal: registry.RoleLiquefier, CapitalUSDPerUnit: 500000, VariableUSDPerKmTon: 0.6, FlowLimitTonsPerDay: 6},
		},
		[]registry.CCSTech{
			{Name: "ccs1", CaptureFraction: 0.53, VariableUSDPerTonCO2: 20, H2TaxCreditUSDPerTon: 500},
			{Name: "ccs2", CaptureFraction: 0.89, VariableUSDPerTonCO2: 35, H2TaxCreditUSDPerTon: 800},
		},
		[]registry.DemandSector{
			{Sector: "industrialFuel", DemandType: registry.DemandTypeLow, BreakevenUSDPerTon: 1500},
			{Sector: "cleanIndustrialFuel", DemandType: registry.DemandTypeLow, BreakevenUSDPerTon: 1800, CarbonSensitiveFraction: 1, AvoidedCO2PerTon: 9.2},
		},
	)
	if err != nil {
		t.Fatalf("fixture registry: %v", err)
	}

	hubs, err := registry.NewHubCatalog(
		[]registry.HubRecord{
			{
				Name: "Houston", CapitalMultiplier: 1.1, ElectricityUSDPerKWh: 0.055, NaturalGasUSDPerMMBtu: 3.2,
				DemandTonsPerDaybySector: map[string]float64{"industrialFuel": 100, "cleanIndustrialFuel": 20},
			},
			{Name: "Freeport", CapitalMultiplier: 1.1, ElectricityUSDPerKWh: 0.055, NaturalGasUSDPerMMBtu: 3.1},
		},
		[]registry.ExistingProduction{
			{Hub: "Freeport", Technology: "smr", CapacityTonsPerDay: 150, CanCCS1: true, CanCCS2: true},
		},
		reg,
	)
	if err != nil {
		t.Fatalf("fixture hubs: %v", err)
	}

	arcs, err := registry.NewArcCatalog([]registry.Arc{
		{From: "Houston", To: "Freeport", DistanceKm: 90, ExistPipeline: true},
	})
	if err != nil {
		t.Fatalf("fixture arcs: %v", err)
	}

	settings := registry.DefaultSettings()
	settings.PriceTracking = registry.PriceTracking{
		Enabled:          true,
		StartUSDPerKg:    3.8,
		StopUSDPerKg:     4.1,
		StepUSDPerKg:     0.1,
		DemandTonsPerDay: 0.05,
	}
	settings.Carbon.PriceUSDPerTon = 50
	settings.Carbon.CaptureCreditUSDPerTon = 50
	settings.Carbon.BaselineSMRCO2PerTon = 9.2
	settings.Economics.SubsidyCostShare = 0.7

	g, err := network.NewBuilder(reg, hubs, arcs, settings).Build()
	if err != nil {
		t.Fatalf("fixture build: %v", err)
	}
	return g, settings
}
