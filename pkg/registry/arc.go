package registry

import "fmt"

// Arc is one inter-hub connection. Distances come from the road-routing
// preprocessor; ExistPipeline marks arcs that already carry a (low purity)
// hydrogen pipeline.
type Arc struct {
	From          string  `validate:"required"`
	To            string  `validate:"required"`
	DistanceKm    float64 `validate:"gt=0"`
	ExistPipeline bool
}

// ArcCatalog is the ordered, read-only arc list for a run. Hub references are
// validated by the network builder, which owns the hub catalog at build time.
type ArcCatalog struct {
	arcs []Arc
}

// NewArcCatalog validates arc records and preserves their order.
func NewArcCatalog(arcs []Arc) (*ArcCatalog, error) {
	for _, a := range arcs {
		if err := validate.Struct(a); err != nil {
			return nil, loadErr("arcs", a.From+"-"+a.To, fmt.Errorf("%w: %v", ErrInvalidRecord, err))
		}
		if a.From == a.To {
			return nil, loadErr("arcs", a.From, fmt.Errorf("%w: arc endpoints are equal", ErrInvalidRecord))
		}
	}
	return &ArcCatalog{arcs: arcs}, nil
}

// Arcs returns all arcs in load order.
func (c *ArcCatalog) Arcs() []Arc { return c.arcs }
