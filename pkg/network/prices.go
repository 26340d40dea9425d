package network

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dwheatley/hygrid/pkg/registry"
)

// priceEps absorbs float drift when counting ladder rungs so a range that is
// an exact multiple of the step includes its endpoint.
const priceEps = 1e-9

// PriceLadder returns the ascending candidate delivered prices in USD/kg for
// the configured tracking range. The ladder has
// floor((stop-start)/step)+1 rungs; stop itself is included only when the
// range divides evenly.
func PriceLadder(pt registry.PriceTracking) ([]float64, error) {
	if pt.StepUSDPerKg <= 0 {
		return nil, configErr("prices", "", fmt.Errorf("step must be positive, got %v", pt.StepUSDPerKg))
	}
	if pt.StopUSDPerKg < pt.StartUSDPerKg {
		return nil, configErr("prices", "", fmt.Errorf("stop %v below start %v", pt.StopUSDPerKg, pt.StartUSDPerKg))
	}
	n := int(math.Floor((pt.StopUSDPerKg-pt.StartUSDPerKg)/pt.StepUSDPerKg+priceEps)) + 1
	ladder := make([]float64, n)
	for i := range ladder {
		v := pt.StartUSDPerKg + float64(i)*pt.StepUSDPerKg
		// Snap accumulated float drift so rung labels stay short and stable.
		ladder[i] = math.Round(v*1e9) / 1e9
	}
	return ladder, nil
}

// priceLabel formats a ladder price for use inside a node ID. The shortest
// round-trip representation keeps IDs stable across builds.
func priceLabel(usdPerKg float64) string {
	return strconv.FormatFloat(usdPerKg, 'f', -1, 64)
}
