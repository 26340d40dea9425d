package registry

import "fmt"

// HubRecord is the raw per-hub row handed to the catalog by the loader.
// Buildable holds only the technologies whose buildable column was present in
// the source table; a missing key means the column did not exist.
type HubRecord struct {
	Name string `validate:"required"`

	CapitalMultiplier        float64 `validate:"gt=0"`
	ElectricityUSDPerKWh     float64 `validate:"gte=0"`
	NaturalGasUSDPerMMBtu    float64 `validate:"gte=0"`
	Buildable                map[string]bool
	DemandTonsPerDaybySector map[string]float64
}

// Hub is the resolved, immutable hub record. Buildable is total over the
// production technology set: every technology has an entry after resolution.
type Hub struct {
	Name string

	CapitalMultiplier     float64
	ElectricityUSDPerKWh  float64
	NaturalGasUSDPerMMBtu float64

	buildable map[string]bool
	demand    map[string]float64
}

// Buildable reports whether the named production technology may be built at
// this hub.
func (h Hub) Buildable(tech string) bool { return h.buildable[tech] }

// Demand returns the hub's demand for a sector in tons per day. Unlisted
// sectors have zero demand.
func (h Hub) Demand(sector string) float64 { return h.demand[sector] }

// ExistingProduction records one already-built production plant at a hub.
type ExistingProduction struct {
	Hub                string  `validate:"required"`
	Technology         string  `validate:"required"`
	CapacityTonsPerDay float64 `validate:"gt=0"`
	// CO2PerTon overrides the technology's emissions intensity for this
	// plant; zero means use the technology record.
	CO2PerTon float64 `validate:"gte=0"`
	CanCCS1   bool
	CanCCS2   bool
}

// HubCatalog is the ordered, read-only set of hubs for a run.
type HubCatalog struct {
	hubs     []Hub
	existing []ExistingProduction
	index    map[string]int
}

// NewHubCatalog resolves raw hub records against the technology registry.
// The buildable default is applied here, once: a technology with no explicit
// column is buildable at every hub, while a present column decides per hub.
// Demand and existing-production references are checked against the registry
// so graph construction never sees an unknown name it did not cause itself.
func NewHubCatalog(records []HubRecord, existing []ExistingProduction, reg *Registry) (*HubCatalog, error) {
	c := &HubCatalog{
		hubs:     make([]Hub, 0, len(records)),
		existing: existing,
		index:    make(map[string]int, len(records)),
	}

	for _, rec := range records {
		if err := validate.Struct(rec); err != nil {
			return nil, loadErr("hubs", rec.Name, fmt.Errorf("%w: %v", ErrInvalidRecord, err))
		}
		if _, dup := c.index[rec.Name]; dup {
			return nil, loadErr("hubs", rec.Name, ErrDuplicateName)
		}

		buildable := make(map[string]bool, len(reg.ProductionTechs()))
		for _, tech := range reg.ProductionTechs() {
			if v, ok := rec.Buildable[tech.Name]; ok {
				buildable[tech.Name] = v
			} else {
				buildable[tech.Name] = true
			}
		}
		for name := range rec.Buildable {
			if _, err := reg.Production(name); err != nil {
				return nil, loadErr("hubs", rec.Name, err)
			}
		}

		demand := make(map[string]float64, len(rec.DemandTonsPerDaybySector))
		for sector, tons := range rec.DemandTonsPerDaybySector {
			if _, err := reg.Sector(sector); err != nil {
				return nil, loadErr("hubs", rec.Name, err)
			}
			if tons < 0 {
				return nil, loadErr("hubs", rec.Name, fmt.Errorf("%w: negative demand for %s", ErrInvalidRecord, sector))
			}
			demand[sector] = tons
		}

		c.index[rec.Name] = len(c.hubs)
		c.hubs = append(c.hubs, Hub{
			Name:                  rec.Name,
			CapitalMultiplier:     rec.CapitalMultiplier,
			ElectricityUSDPerKWh:  rec.ElectricityUSDPerKWh,
			NaturalGasUSDPerMMBtu: rec.NaturalGasUSDPerMMBtu,
			buildable:             buildable,
			demand:                demand,
		})
	}

	for _, ex := range existing {
		if err := validate.Struct(ex); err != nil {
			return nil, loadErr("production_existing", ex.Hub, fmt.Errorf("%w: %v", ErrInvalidRecord, err))
		}
		if _, ok := c.index[ex.Hub]; !ok {
			return nil, loadErr("production_existing", ex.Hub, ErrHubNotFound)
		}
		if _, err := reg.Production(ex.Technology); err != nil {
			return nil, loadErr("production_existing", ex.Hub, err)
		}
	}

	return c, nil
}

// Hub returns the hub with the given name.
func (c *HubCatalog) Hub(name string) (Hub, error) {
	i, ok := c.index[name]
	if !ok {
		return Hub{}, fmt.Errorf("hub %q: %w", name, ErrHubNotFound)
	}
	return c.hubs[i], nil
}

// Hubs returns all hubs in load order.
func (c *HubCatalog) Hubs() []Hub { return c.hubs }

// Existing returns the existing-production records in load order.
func (c *HubCatalog) Existing() []ExistingProduction { return c.existing }
