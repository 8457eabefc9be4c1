package coinselect

import "math"

// ChangePolicy decides, for a given excess value, whether a selection
// should add a change output rather than pay the excess as extra fee.
type ChangePolicy struct {
	// MinValue is the change threshold: excess at or below it is paid as
	// fee instead of becoming change; only excess above it becomes a drain.
	MinValue int64
	// DrainWeights describes the weight cost of the change output this
	// policy would add.
	DrainWeights DrainWeights
}

// NewChangePolicy builds a ChangePolicy with a fixed minimum change value,
// ignoring the weight cost of the drain output when deciding the threshold.
func NewChangePolicy(minValue int64, drainWeights DrainWeights) ChangePolicy {
	return ChangePolicy{MinValue: minValue, DrainWeights: drainWeights}
}

// NewChangePolicyMinValueAndWaste builds a ChangePolicy whose effective
// threshold is the larger of minValue and the waste of adding the drain
// output at targetFeerate now and spending it at longTermFeerate later, so
// change is never added when it would cost more than it's worth.
func NewChangePolicyMinValueAndWaste(
	minValue int64,
	drainWeights DrainWeights,
	targetFeerate FeeRate,
	longTermFeerate FeeRate,
) ChangePolicy {
	waste := drainWeights.Waste(targetFeerate, longTermFeerate, 0)
	threshold := int64(math.Ceil(float64(waste)))
	if minValue > threshold {
		threshold = minValue
	}
	return ChangePolicy{MinValue: threshold, DrainWeights: drainWeights}
}

// Drain decides whether excess should become a change output at value
// excess, or be paid entirely as additional fee. Excess exactly equal to
// MinValue still pays as fee: a drain is only worth adding when it's
// strictly better than not having one.
func (p ChangePolicy) Drain(excess int64) Drain {
	if excess <= p.MinValue {
		return NoDrain
	}
	return Drain{Weights: p.DrainWeights, Value: excess}
}
