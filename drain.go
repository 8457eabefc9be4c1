package coinselect

import (
	"fmt"
	"math"
)

// DrainWeights describes the weight cost of adding a change ("drain")
// output and, later, spending it.
type DrainWeights struct {
	// OutputWeight is the weight the drain output adds to the funding
	// transaction.
	OutputWeight uint32
	// SpendWeight is the weight a future transaction will pay to spend
	// this drain output, i.e. TxInBaseWeight + satisfaction weight.
	SpendWeight uint32
	// NOutputs is the number of drain outputs this represents, almost
	// always 1.
	NOutputs int
}

// TRKeyspendDrainWeights describes a single taproot keyspend change output.
var TRKeyspendDrainWeights = DrainWeights{
	OutputWeight: TxOutBaseWeight + TRSpkWeight,
	SpendWeight:  TRKeyspendTxInWeight,
	NOutputs:     1,
}

// NoDrainWeights represents the absence of a drain output.
var NoDrainWeights = DrainWeights{}

// Waste returns the cost of adding this drain to a transaction: the output
// itself, valued at feerate, plus the future cost of spending it, valued at
// longTermFeerate. nTargetOutputs is the number of non-drain outputs
// already in the transaction, needed to tell whether adding the drain
// output(s) widens the output-count varint.
func (w DrainWeights) Waste(feerate, longTermFeerate FeeRate, nTargetOutputs int) float32 {
	extraVarintWeight := (varintSize(uint64(nTargetOutputs+w.NOutputs)) - varintSize(uint64(nTargetOutputs))) * 4
	extraOutputWeight := w.OutputWeight + extraVarintWeight
	return float32(extraOutputWeight)*feerate.SatPerWU() + float32(w.SpendWeight)*longTermFeerate.SatPerWU()
}

// SpendFee returns the fee a future transaction must pay to spend this
// drain output at the given feerate, rounded up to a whole satoshi.
func (w DrainWeights) SpendFee(feerate FeeRate) int64 {
	return int64(math.Ceil(float64(w.SpendWeight) * float64(feerate.SatPerWU())))
}

// Drain describes a concrete change output: its weight cost and the value
// it carries.
type Drain struct {
	Weights DrainWeights
	Value   int64
}

// NoDrain represents "no change output added to this transaction".
var NoDrain = Drain{}

func (d Drain) String() string {
	if d.IsNone() {
		return "no drain"
	}
	return fmt.Sprintf("%s (output %d wu, spend %d wu)", d.Amount(), d.Weights.OutputWeight, d.Weights.SpendWeight)
}

// IsNone reports whether d represents no drain output.
func (d Drain) IsNone() bool { return d == NoDrain }

// IsSome reports whether d represents an actual drain output.
func (d Drain) IsSome() bool { return !d.IsNone() }
