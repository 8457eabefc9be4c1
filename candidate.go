package coinselect

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Candidate is an immutable record describing one input, or a group of
// inputs that must be spent together, available to a Selector.
type Candidate struct {
	// Value is the total value of the UTXO(s) this Candidate represents,
	// in satoshis.
	Value int64
	// Weight is the total weight of including this/these input(s),
	// including the txin base fields and the witness.
	Weight uint32
	// InputCount is the number of individual inputs this Candidate
	// represents, so input-count varint weight can be computed correctly
	// when several Candidates are selected together.
	InputCount int
	// IsSegwit is true if this Candidate contains at least one segwit
	// spend.
	IsSegwit bool
	// Ref is an optional, purely informational pointer back to the UTXO
	// this Candidate came from. Selection never reads it; it exists so
	// verbose tracing can name a candidate instead of just its index.
	Ref *CandidateRef
}

// CandidateRef names the outpoint a Candidate was built from. It has no
// effect on selection; it's carried for logging/debugging only.
type CandidateRef struct {
	TxID chainhash.Hash
	Vout uint32
}

func (r *CandidateRef) String() string {
	return fmt.Sprintf("%s:%d", r.TxID, r.Vout)
}

// NewCandidate builds a Candidate representing a single input.
// satisfactionWeight is the weight of scriptSigLen + scriptSig +
// scriptWitnessLen + scriptWitness.
func NewCandidate(value int64, satisfactionWeight uint32, isSegwit bool) Candidate {
	return Candidate{
		Value:      value,
		Weight:     TxInBaseWeight + satisfactionWeight,
		InputCount: 1,
		IsSegwit:   isSegwit,
	}
}

// NewTrKeyspendCandidate builds a Candidate spending a single taproot
// keyspend output.
func NewTrKeyspendCandidate(value int64) Candidate {
	return NewCandidate(value, TRKeyspendSatisfactionWeight, true)
}

// ValuePWU returns the candidate's value per weight unit.
func (c Candidate) ValuePWU() float32 {
	return float32(c.Value) / float32(c.Weight)
}

// EffectiveValue returns the candidate's value minus the fee it would take
// to include it at the given feerate: value - weight*feerate.
func (c Candidate) EffectiveValue(feerate FeeRate) float32 {
	return float32(c.Value) - float32(c.Weight)*feerate.SatPerWU()
}

// EffectiveValuePWU returns the effective value per weight unit this
// candidate provides as an input at the given feerate.
func (c Candidate) EffectiveValuePWU(feerate FeeRate) float32 {
	return c.ValuePWU() - feerate.SatPerWU()
}

// ImpliedFee returns the (minimum) fee paid to add this candidate as an
// input at the given feerate.
func (c Candidate) ImpliedFee(feerate FeeRate) float32 {
	return float32(c.Weight) * feerate.SatPerWU()
}

// FeePerValue returns the fee paid per satoshi of value this candidate
// contributes at the given feerate. Never negative; values above 1.0 mean
// the candidate has negative effective value at this feerate.
func (c Candidate) FeePerValue(feerate FeeRate) float32 {
	return c.ImpliedFee(feerate) / float32(c.Value)
}
