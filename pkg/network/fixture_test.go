package network

import (
	"testing"

	"github.com/dwheatley/hygrid/pkg/registry"
)

// texasFixture builds the five-hub gulf coast scenario used across the
// package tests: four candidate technologies, pipeline and truck carriers,
// two retrofit options, an existing plant at Freeport and a pre-built
// pipeline on the Freeport-Houston arc.
func texasFixture(t *testing.T) (*registry.Registry, *registry.HubCatalog, *registry.ArcCatalog, registry.Settings) {
	t.Helper()

	reg, err := registry.NewRegistry(
		[]registry.ProductionTech{
			{
				Name: "smr", Type: registry.ProdTypeThermal, Purity: registry.PurityLow,
				CapitalUSDPerTonPerDay: 200000, VariableUSDPerTon: 50, MMBtuPerTon: 160,
				Utilization: 0.9, MinTonsPerDay: 10, MaxTonsPerDay: 200, CO2PerTon: 9.2,
			},
			{
				Name: "smrCCS", Type: registry.ProdTypeThermal, Purity: registry.PurityLow,
				CapitalUSDPerTonPerDay: 300000, VariableUSDPerTon: 70, MMBtuPerTon: 170,
				Utilization: 0.9, MinTonsPerDay: 10, MaxTonsPerDay: 200, CO2PerTon: 1.0,
				CCSCaptureRate: 0.9, ChecsPerTon: 0.9, TaxCreditUSDPerTon: 1000,
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
			{Name: "terminalCompressor", Role: registry.RoleCompressor, CapitalUSDPerTonPerDay: 50000, VariableUSDPerTon: 15, KWhPerTon: 2000, Utilization: 0.9},
			{Name: "stationDispenser", Role: registry.RoleDispenser, CapitalUSDPerTonPerDay: 90000, VariableUSDPerTon: 60, KWhPerTon: 3000, Utilization: 0.7},
		},
		[]registry.DistributionTech{
			{Name: "pipeline", Kind: registry.DistKindPipeline, CapitalUSDPerUnit: 500000, FixedUSDPerUnitPerDay: 10, VariableUSDPerKmTon: 0.05, FlowLimitTonsPerDay: 200},
			{Name: "truckLiquefied", Kind: registry.DistKindTruck, Terminal: registry.RoleLiquefier, CapitalUSDPerUnit: 500000, VariableUSDPerKmTon: 0.6, FlowLimitTonsPerDay: 6},
		},
		[]registry.CCSTech{
			{Name: "ccs1", CaptureFraction: 0.53, VariableUSDPerTonCO2: 20, H2TaxCreditUSDPerTon: 500},
			{Name: "ccs2", CaptureFraction: 0.89, VariableUSDPerTonCO2: 35, H2TaxCreditUSDPerTon: 800},
		},
		[]registry.DemandSector{
			{Sector: "industrialFuel", DemandType: registry.DemandTypeLow, BreakevenUSDPerTon: 1500},
			{Sector: "cleanIndustrialFuel", DemandType: registry.DemandTypeLow, BreakevenUSDPerTon: 1800, CarbonSensitiveFraction: 1, AvoidedCO2PerTon: 9.2},
			{Sector: "transportFuel", DemandType: registry.DemandTypeFuelStation, BreakevenUSDPerTon: 4000},
		},
	)
	if err != nil {
		t.Fatalf("fixture registry: %v", err)
	}

	hubs, err := registry.NewHubCatalog(
		[]registry.HubRecord{
			{
				Name: "Dallas", CapitalMultiplier: 1.0, ElectricityUSDPerKWh: 0.05, NaturalGasUSDPerMMBtu: 3.5,
				DemandTonsPerDaybySector: map[string]float64{"industrialFuel": 50, "transportFuel": 10},
			},
			{Name: "Waco", CapitalMultiplier: 0.95, ElectricityUSDPerKWh: 0.05, NaturalGasUSDPerMMBtu: 3.4},
			{
				Name: "Austin", CapitalMultiplier: 1.05, ElectricityUSDPerKWh: 0.06, NaturalGasUSDPerMMBtu: 3.6,
				Buildable:                map[string]bool{"smr": false},
				DemandTonsPerDaybySector: map[string]float64{"cleanIndustrialFuel": 20},
			},
			{
				Name: "Houston", CapitalMultiplier: 1.1, ElectricityUSDPerKWh: 0.055, NaturalGasUSDPerMMBtu: 3.2,
				DemandTonsPerDaybySector: map[string]float64{"industrialFuel": 100},
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
		{From: "Dallas", To: "Waco", DistanceKm: 150},
		{From: "Waco", To: "Austin", DistanceKm: 160},
		{From: "Austin", To: "Houston", DistanceKm: 260},
		{From: "Houston", To: "Freeport", DistanceKm: 90, ExistPipeline: true},
		{From: "Dallas", To: "Houston", DistanceKm: 385},
	})
	if err != nil {
		t.Fatalf("fixture arcs: %v", err)
	}

	settings := registry.DefaultSettings()
	settings.PriceTracking = registry.PriceTracking{
		Enabled:          true,
		StartUSDPerKg:    0,
		StopUSDPerKg:     10,
		StepUSDPerKg:     0.05,
		DemandTonsPerDay: 0.05,
	}
	settings.Carbon.PriceUSDPerTon = 50
	settings.Carbon.BaselineSMRCO2PerTon = 9.2

	return reg, hubs, arcs, settings
}

func buildTexas(t *testing.T) *Graph {
	t.Helper()
	reg, hubs, arcs, settings := texasFixture(t)
	g, err := NewBuilder(reg, hubs, arcs, settings).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}
