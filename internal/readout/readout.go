// internal/readout/readout.go
package readout

import (
	"math"

	"github.com/tamzrod/wbb-modbus/internal/curve"
	"github.com/tamzrod/wbb-modbus/internal/item"
)

// Value returns the presentation value of an item: the decoded state for
// direct items, the computed value for derived items. nil means no data.
// m may be nil when no curve is loaded; derived power items then read nil.
func Value(it *item.Item, m *curve.Map) any {
	state, invalid := it.Snapshot()
	if state == nil || invalid {
		return nil
	}
	if !it.Kind.Derived() {
		return state
	}

	c, ok := state.(item.Components)
	if !ok || it.Scaling == nil {
		return nil
	}
	if it.Format != item.FormatPower {
		if !c.Primary.OK {
			return nil
		}
		return float64(c.Primary.Value) / it.Scaling.Divider
	}

	p, ok := Power(c, it.Scaling.Divider, axisDivider(it), m)
	if !ok {
		return nil
	}
	return p
}

// Power computes round((primary/divider/100) * m(x/axisDiv, y/axisDiv)).
// The primary value is a percentage of the curve's maximum power.
func Power(c item.Components, divider, axisDiv float64, m *curve.Map) (float64, bool) {
	if m == nil || !c.Complete() || divider <= 0 || axisDiv <= 0 {
		return 0, false
	}

	pct := float64(c.Primary.Value) / divider
	x := float64(c.X.Value) / axisDiv
	y := float64(c.Y.Value) / axisDiv

	return math.Round(pct / 100 * m.Interpolate(x, y)), true
}

func axisDivider(it *item.Item) float64 {
	if it.Aux == nil {
		return 10
	}
	return it.Aux.AxisDivider()
}
