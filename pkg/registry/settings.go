package registry

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// PriceTracking configures the synthetic price-node ladder. Prices are in
// USD/kg so a ladder like 0.00..10.00 step 0.05 reads naturally; the builder
// scales them to USD/ton when it sets breakeven coefficients. DemandTonsPerDay
// is the size of each synthetic consumer and should be small enough that no
// single price node materially changes system profit.
type PriceTracking struct {
	Enabled          bool    `yaml:"find_prices"`
	StartUSDPerKg    float64 `yaml:"start" validate:"gte=0"`
	StopUSDPerKg     float64 `yaml:"stop" validate:"gtefield=StartUSDPerKg"`
	StepUSDPerKg     float64 `yaml:"step" validate:"gt=0"`
	DemandTonsPerDay float64 `yaml:"price_demand" validate:"gte=0"`
}

// Economics carries the system-wide cost accounting factors.
type Economics struct {
	// AmortizationFactor converts capital cost to an investment-period cost.
	AmortizationFactor float64 `yaml:"amortization_factor" validate:"gt=0"`
	// TimeSlices converts an investment-period cost to a per-day cost.
	TimeSlices float64 `yaml:"time_slices" validate:"gt=0"`
	// FixedCostFraction folds fixed O&M into capital as a fraction of it.
	FixedCostFraction float64 `yaml:"fixedcost_percent" validate:"gte=0"`
	// SubsidyCostShare is the fraction of fuel-station capital the builder
	// pays; the remainder is covered by the subsidy relation.
	SubsidyCostShare float64 `yaml:"subsidy_cost_share_fraction" validate:"gte=0,lte=1"`
}

// Carbon carries carbon pricing and crediting.
type Carbon struct {
	PriceUSDPerTon         float64 `yaml:"carbon_price_dollars_per_ton" validate:"gte=0"`
	CaptureCreditUSDPerTon float64 `yaml:"carbon_capture_credit_dollars_per_ton" validate:"gte=0"`
	// BaselineSMRCO2PerTon is the unabated reference emissions rate used to
	// size new-build capture credits.
	BaselineSMRCO2PerTon float64 `yaml:"baseSMR_CO2_per_H2_tons" validate:"gte=0"`
	// FractionalChecs mints clean-credit fractions proportional to abatement
	// instead of whole credits per retrofitted ton.
	FractionalChecs bool `yaml:"fractional_chec"`
	// CCSExclusive restricts each existing plant to at most one retrofit.
	CCSExclusive bool `yaml:"ccs_exclusive"`
}

// Duration wraps time.Duration so YAML documents can say "15m" or a plain
// number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var secs float64
	if err := value.Decode(&secs); err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// SolverConfig selects and bounds the external solve.
type SolverConfig struct {
	Name      string   `yaml:"solver" validate:"required"`
	TimeLimit Duration `yaml:"time_limit"`
	MIPGap    float64  `yaml:"mipgap" validate:"gte=0"`
}

// Settings is the immutable run configuration. It is passed explicitly into
// the discretizer, builder and encoder; nothing reads it from process state.
type Settings struct {
	PriceTracking PriceTracking `yaml:"price_tracking"`
	Economics     Economics     `yaml:"economics"`
	Carbon        Carbon        `yaml:"carbon"`
	Solver        SolverConfig  `yaml:"solver_settings"`
}

// DefaultSettings returns a Settings with the accounting defaults used when a
// field is omitted from the document.
func DefaultSettings() Settings {
	return Settings{
		Economics: Economics{
			AmortizationFactor: 1,
			TimeSlices:         365,
			FixedCostFraction:  0.02,
			SubsidyCostShare:   1,
		},
		Carbon: Carbon{
			FractionalChecs: true,
			CCSExclusive:    true,
		},
		Solver: SolverConfig{Name: "highs", MIPGap: 0.01},
	}
}

// LoadSettings parses a YAML settings document over the defaults and
// validates the result.
func LoadSettings(doc []byte) (Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(doc, &s); err != nil {
		return Settings{}, loadErr("settings", "", fmt.Errorf("%w: %v", ErrInvalidRecord, err))
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the settings invariants, including the price ladder bounds.
func (s Settings) Validate() error {
	if err := validate.Struct(s.Economics); err != nil {
		return loadErr("settings", "economics", fmt.Errorf("%w: %v", ErrInvalidRecord, err))
	}
	if err := validate.Struct(s.Carbon); err != nil {
		return loadErr("settings", "carbon", fmt.Errorf("%w: %v", ErrInvalidRecord, err))
	}
	if err := validate.Struct(s.Solver); err != nil {
		return loadErr("settings", "solver", fmt.Errorf("%w: %v", ErrInvalidRecord, err))
	}
	if s.PriceTracking.Enabled {
		if err := validate.Struct(s.PriceTracking); err != nil {
			return loadErr("settings", "price_tracking", fmt.Errorf("%w: %v", ErrInvalidRecord, err))
		}
	}
	return nil
}
