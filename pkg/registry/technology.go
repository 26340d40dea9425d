// Package registry holds the immutable parameter tables the network builder
// consumes: technology records (production, conversion, distribution, CCS
// retrofits, demand sectors), the hub catalog and the arc catalog. Catalogs
// are loaded once, validated, and then only read. Iteration order always
// matches load order so downstream builds are reproducible.
package registry

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Purity classifies the hydrogen quality a technology produces or handles.
type Purity string

const (
	PurityLow  Purity = "low"
	PurityHigh Purity = "high"
	// PurityAgnostic marks technologies that handle either quality.
	PurityAgnostic Purity = "agnostic"
)

// Production technology types.
const (
	ProdTypeElectric = "electric"
	ProdTypeThermal  = "thermal"
)

// Demand types a sector can draw from. These match the demand node classes
// generated by the network builder.
const (
	DemandTypeLow         = "lowPurity"
	DemandTypeHigh        = "highPurity"
	DemandTypeFuelStation = "fuelStation"
)

// ConversionRole names the canonical slot a conversion technology occupies in
// the intra-hub topology.
type ConversionRole string

const (
	RolePurifier   ConversionRole = "purifier"
	RoleLiquefier  ConversionRole = "liquefier"
	RoleCompressor ConversionRole = "compressor"
	RoleDispenser  ConversionRole = "fuelDispenser"
)

// Distribution kinds.
const (
	DistKindPipeline = "pipeline"
	DistKindTruck    = "truck"
)

// ProductionTech is one row of the production technology table.
// Cost coefficients are per ton of hydrogen unless noted otherwise.
type ProductionTech struct {
	Name   string `validate:"required"`
	Type   string `validate:"required,oneof=electric thermal"`
	Purity Purity `validate:"required,oneof=low high"`

	CapitalUSDPerTonPerDay float64 `validate:"gte=0"`
	VariableUSDPerTon      float64 `validate:"gte=0"`
	KWhPerTon              float64 `validate:"gte=0"`
	MMBtuPerTon            float64 `validate:"gte=0"`

	Utilization   float64 `validate:"gt=0,lte=1"`
	MinTonsPerDay float64 `validate:"gte=0"`
	MaxTonsPerDay float64 `validate:"gtefield=MinTonsPerDay"`

	// CO2PerTon is the residual emissions intensity (tons CO2 per ton H2)
	// after any built-in capture. Electric technologies report their grid
	// intensity here.
	CO2PerTon float64 `validate:"gte=0"`
	// CCSCaptureRate is the built-in capture fraction of new thermal plants.
	CCSCaptureRate     float64 `validate:"gte=0,lte=1"`
	ChecsPerTon        float64 `validate:"gte=0"`
	TaxCreditUSDPerTon float64 `validate:"gte=0"`
}

// ConversionTech is one row of the conversion technology table. Exactly one
// record per canonical role is expected; the builder looks conversions up by
// role, not by name.
type ConversionTech struct {
	Name string         `validate:"required"`
	Role ConversionRole `validate:"required,oneof=purifier liquefier compressor fuelDispenser"`

	CapitalUSDPerTonPerDay float64 `validate:"gte=0"`
	VariableUSDPerTon      float64 `validate:"gte=0"`
	KWhPerTon              float64 `validate:"gte=0"`
	Utilization            float64 `validate:"gt=0,lte=1"`
}

// DistributionTech is one row of the distribution technology table. Pipeline
// capital is per km built; truck capital is per truck (the fleet is sized at
// the depot, not along the route). Variable cost is per km-ton moved.
type DistributionTech struct {
	Name string `validate:"required"`
	Kind string `validate:"required,oneof=pipeline truck"`
	// Terminal names the conversion step that loads this carrier at a hub
	// (liquefier or compressor). Empty for pipelines.
	Terminal ConversionRole `validate:"omitempty,oneof=liquefier compressor"`

	CapitalUSDPerUnit     float64 `validate:"gte=0"`
	FixedUSDPerUnitPerDay float64 `validate:"gte=0"`
	VariableUSDPerKmTon   float64 `validate:"gte=0"`
	FlowLimitTonsPerDay   float64 `validate:"gt=0"`
}

// CCSTech is one row of the CCS retrofit table.
type CCSTech struct {
	Name            string  `validate:"required"`
	CaptureFraction float64 `validate:"gt=0,lte=1"`
	// VariableUSDPerTonCO2 is charged per ton of CO2 captured.
	VariableUSDPerTonCO2 float64 `validate:"gte=0"`
	// H2TaxCreditUSDPerTon is earned per ton of hydrogen cleaned.
	H2TaxCreditUSDPerTon float64 `validate:"gte=0"`
}

// DemandSector is one row of the demand sector table.
type DemandSector struct {
	Sector     string `validate:"required"`
	DemandType string `validate:"required,oneof=lowPurity highPurity fuelStation"`

	BreakevenUSDPerTon      float64 `validate:"gte=0"`
	CarbonSensitiveFraction float64 `validate:"gte=0,lte=1"`
	AvoidedCO2PerTon        float64 `validate:"gte=0"`
}

// Registry is the read-only technology lookup used throughout a run.
type Registry struct {
	production   []ProductionTech
	conversion   []ConversionTech
	distribution []DistributionTech
	ccs          []CCSTech
	sectors      []DemandSector

	prodIndex   map[string]int
	convByRole  map[ConversionRole]int
	distIndex   map[string]int
	sectorIndex map[string]int
}

var validate = validator.New()

// NewRegistry validates the technology tables and builds the lookup indexes.
// Record order is preserved.
func NewRegistry(
	production []ProductionTech,
	conversion []ConversionTech,
	distribution []DistributionTech,
	ccs []CCSTech,
	sectors []DemandSector,
) (*Registry, error) {
	r := &Registry{
		production:   production,
		conversion:   conversion,
		distribution: distribution,
		ccs:          ccs,
		sectors:      sectors,
		prodIndex:    make(map[string]int, len(production)),
		convByRole:   make(map[ConversionRole]int, len(conversion)),
		distIndex:    make(map[string]int, len(distribution)),
		sectorIndex:  make(map[string]int, len(sectors)),
	}

	for i, p := range production {
		if err := validate.Struct(p); err != nil {
			return nil, loadErr("production", p.Name, fmt.Errorf("%w: %v", ErrInvalidRecord, err))
		}
		if _, dup := r.prodIndex[p.Name]; dup {
			return nil, loadErr("production", p.Name, ErrDuplicateName)
		}
		r.prodIndex[p.Name] = i
	}
	for i, c := range conversion {
		if err := validate.Struct(c); err != nil {
			return nil, loadErr("conversion", c.Name, fmt.Errorf("%w: %v", ErrInvalidRecord, err))
		}
		if _, dup := r.convByRole[c.Role]; dup {
			return nil, loadErr("conversion", c.Name, fmt.Errorf("%w: role %s", ErrDuplicateName, c.Role))
		}
		r.convByRole[c.Role] = i
	}
	for i, d := range distribution {
		if err := validate.Struct(d); err != nil {
			return nil, loadErr("distribution", d.Name, fmt.Errorf("%w: %v", ErrInvalidRecord, err))
		}
		if d.Kind == DistKindTruck && d.Terminal == "" {
			return nil, loadErr("distribution", d.Name, fmt.Errorf("%w: truck requires a terminal conversion", ErrInvalidRecord))
		}
		if _, dup := r.distIndex[d.Name]; dup {
			return nil, loadErr("distribution", d.Name, ErrDuplicateName)
		}
		r.distIndex[d.Name] = i
	}
	for _, c := range ccs {
		if err := validate.Struct(c); err != nil {
			return nil, loadErr("ccs", c.Name, fmt.Errorf("%w: %v", ErrInvalidRecord, err))
		}
	}
	for i, s := range sectors {
		if err := validate.Struct(s); err != nil {
			return nil, loadErr("demand", s.Sector, fmt.Errorf("%w: %v", ErrInvalidRecord, err))
		}
		if _, dup := r.sectorIndex[s.Sector]; dup {
			return nil, loadErr("demand", s.Sector, ErrDuplicateName)
		}
		r.sectorIndex[s.Sector] = i
	}

	return r, nil
}

// Production returns the production technology with the given name.
func (r *Registry) Production(name string) (ProductionTech, error) {
	i, ok := r.prodIndex[name]
	if !ok {
		return ProductionTech{}, fmt.Errorf("production %q: %w", name, ErrTechnologyNotFound)
	}
	return r.production[i], nil
}

// ProductionTechs returns all production technologies in load order.
func (r *Registry) ProductionTechs() []ProductionTech { return r.production }

// Conversion returns the conversion technology filling the given role.
func (r *Registry) Conversion(role ConversionRole) (ConversionTech, error) {
	i, ok := r.convByRole[role]
	if !ok {
		return ConversionTech{}, fmt.Errorf("conversion role %q: %w", role, ErrTechnologyNotFound)
	}
	return r.conversion[i], nil
}

// Distribution returns the distribution technology with the given name.
func (r *Registry) Distribution(name string) (DistributionTech, error) {
	i, ok := r.distIndex[name]
	if !ok {
		return DistributionTech{}, fmt.Errorf("distribution %q: %w", name, ErrTechnologyNotFound)
	}
	return r.distribution[i], nil
}

// Distributions returns all distribution technologies in load order.
func (r *Registry) Distributions() []DistributionTech { return r.distribution }

// CCSTechs returns the CCS retrofit options in load order.
func (r *Registry) CCSTechs() []CCSTech { return r.ccs }

// Sector returns the demand sector with the given name.
func (r *Registry) Sector(name string) (DemandSector, error) {
	i, ok := r.sectorIndex[name]
	if !ok {
		return DemandSector{}, fmt.Errorf("sector %q: %w", name, ErrSectorNotFound)
	}
	return r.sectors[i], nil
}

// Sectors returns all demand sectors in load order.
func (r *Registry) Sectors() []DemandSector { return r.sectors }
