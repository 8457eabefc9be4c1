package metrics

import (
	coinselect "github.com/rawblock/coinselect-engine"
	"github.com/rawblock/coinselect-engine/ordfloat"
)

// Weighted pairs a metric with the weight it contributes to a WeightedSum.
type Weighted struct {
	Metric coinselect.Metric
	Weight float32
}

// WeightedSum combines several metrics into one by summing their
// weighted scores/bounds. It's useful for expressing a preference between
// two goals that don't naturally share a scale.
//
// All component metrics must agree on whether the target is met before a
// WeightedSum score is meaningful: if any component metric reports no
// score, the combined score is also reported as unavailable. A component
// therefore vetoes selections it can't score whatever its weight: adding
// Changeless, even at weight 0, restricts the search to changeless
// selections.
type WeightedSum []Weighted

func (w WeightedSum) Score(s *coinselect.Selector, target coinselect.Target) (ordfloat.Float32, bool) {
	var total float32
	for _, wt := range w {
		sc, ok := wt.Metric.Score(s, target)
		if !ok {
			return ordfloat.Zero, false
		}
		total += wt.Weight * sc.Float32Val()
	}
	return ordfloat.New(total), true
}

func (w WeightedSum) Bound(s *coinselect.Selector, target coinselect.Target) (ordfloat.Float32, bool) {
	var total float32
	for _, wt := range w {
		b, ok := wt.Metric.Bound(s, target)
		if !ok {
			return ordfloat.Zero, false
		}
		total += wt.Weight * b.Float32Val()
	}
	return ordfloat.New(total), true
}

func (w WeightedSum) RequiresOrderingByDescendingValuePWU() bool {
	for _, wt := range w {
		if wt.Metric.RequiresOrderingByDescendingValuePWU() {
			return true
		}
	}
	return false
}
