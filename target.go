package coinselect

// Target describes the value to fund and the fee constraints a selection
// must satisfy.
type Target struct {
	// Fee holds the feerate and (optional) RBF replacement constraints
	// the selection must satisfy.
	Fee TargetFee
	// Outputs describes the aggregate properties of the outputs being
	// funded.
	Outputs TargetOutputs
}

// Value is the total value being targeted.
func (t Target) Value() int64 { return t.Outputs.ValueSum }

// TargetOutputs describes the aggregate weight/value of the outputs a
// selection is funding. Coin selection only needs the aggregate: the
// individual weights and values of each output don't matter for choosing
// inputs.
type TargetOutputs struct {
	// ValueSum is the sum of the individual TxOut values.
	ValueSum int64
	// WeightSum is the sum of the individual TxOut weights (not
	// including the varint for output count).
	WeightSum uint32
	// NOutputs is the total number of outputs.
	NOutputs int
}

// OutputWeight returns the weight of the outputs being funded, including
// the varint for the output count.
func (t TargetOutputs) OutputWeight() uint32 {
	return t.WeightSum + varintSize(uint64(t.NOutputs))*4
}

// OutputWeightWithDrain returns the weight of the target's outputs combined
// with a drain output described by drain. This is not a simple addition of
// the two weights: adding the drain output can widen the output-count
// varint, which this accounts for by recomputing the varint over the
// combined count.
func (t TargetOutputs) OutputWeightWithDrain(drain DrainWeights) uint32 {
	nOutputs := uint64(drain.NOutputs) + uint64(t.NOutputs)
	return varintSize(nOutputs)*4 + drain.OutputWeight + t.WeightSum
}

// WeightValue is a (weight, value) pair describing a single output, used by
// FundOutputs to build a TargetOutputs from individual outputs.
type WeightValue struct {
	Weight uint32
	Value  int64
}

// FundOutputs builds a TargetOutputs from a list of individual outputs.
func FundOutputs(outputs ...WeightValue) TargetOutputs {
	var t TargetOutputs
	for _, o := range outputs {
		t.NOutputs++
		t.WeightSum += o.Weight
		t.ValueSum += o.Value
	}
	return t
}

// TargetFee describes the fee constraints of a coin selection. Rate is the
// minimum feerate the transaction must achieve; Replace, if set, additionally
// requires the selection satisfy RBF rule 4 against the transaction(s) being
// replaced.
type TargetFee struct {
	Rate    FeeRate
	Replace *Replace
}

// ZeroTargetFee is a target fee of zero with no replacement constraint.
var ZeroTargetFee = TargetFee{Rate: ZeroFeeRate}

// DefaultTargetFee uses DefaultMinRelayFeeRate and no replacement
// constraint.
func DefaultTargetFee() TargetFee {
	return TargetFee{Rate: DefaultMinRelayFeeRate}
}

// TargetFeeFromFeeRate builds a TargetFee from a feerate with no replacement
// constraint.
func TargetFeeFromFeeRate(feerate FeeRate) TargetFee {
	return TargetFee{Rate: feerate}
}

// Replace describes the transaction(s) being replaced via RBF, so the
// selection's fee can be checked against RBF rule 4.
type Replace struct {
	// Fee is the total fee paid by the transaction(s) being replaced.
	Fee int64
	// IncrementalRelayFeeRate is the minimum additional feerate the
	// replacement must pay, per RBF rule 4.
	IncrementalRelayFeeRate FeeRate
}

// NewReplace builds a Replace for a transaction that paid txFee, assuming
// the default incremental relay feerate.
func NewReplace(txFee int64) Replace {
	return Replace{
		Fee:                     txFee,
		IncrementalRelayFeeRate: DefaultRBFIncrementalRelayFeeRate,
	}
}

// MinFeeToDoReplacement returns the minimum fee a replacement transaction of
// the given weight must pay to satisfy RBF rule 4.
func (r Replace) MinFeeToDoReplacement(replacingTxWeight uint32) int64 {
	increment := r.IncrementalRelayFeeRate.ImpliedFeeWU(uint64(replacingTxWeight))
	return r.Fee + increment
}
