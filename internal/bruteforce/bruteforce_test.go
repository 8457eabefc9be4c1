package bruteforce_test

import (
	"testing"

	coinselect "github.com/rawblock/coinselect-engine"
	"github.com/rawblock/coinselect-engine/internal/bruteforce"
	"github.com/rawblock/coinselect-engine/metrics"
)

func TestBestFindsCheapestSubset(t *testing.T) {
	candidates := []coinselect.Candidate{
		coinselect.NewCandidate(10_000, 108, true),
		coinselect.NewCandidate(20_000, 108, true),
		coinselect.NewCandidate(30_000, 108, true),
	}
	target := coinselect.Target{
		Fee:     coinselect.TargetFeeFromFeeRate(coinselect.FeeRateFromSatPerVB(1.0)),
		Outputs: coinselect.FundOutputs(coinselect.WeightValue{Weight: 100, Value: 25_000}),
	}
	changePolicy := coinselect.NewChangePolicy(1000, coinselect.TRKeyspendDrainWeights)
	m := metrics.LowestFee{LongTermFeerate: coinselect.FeeRateFromSatPerVB(1.0), ChangePolicy: changePolicy}

	best, ok := bruteforce.Best(candidates, coinselect.TxFixedFieldWeight, target, m)
	if !ok {
		t.Fatal("expected a solution")
	}
	if best.IsEmpty() {
		t.Fatal("expected at least one selected candidate")
	}
}

func TestBestGuardrail(t *testing.T) {
	candidates := make([]coinselect.Candidate, bruteforce.MaxCandidates+1)
	for i := range candidates {
		candidates[i] = coinselect.NewCandidate(1000, 108, true)
	}
	target := coinselect.Target{
		Fee:     coinselect.DefaultTargetFee(),
		Outputs: coinselect.FundOutputs(coinselect.WeightValue{Weight: 100, Value: 500}),
	}
	changePolicy := coinselect.NewChangePolicy(1000, coinselect.TRKeyspendDrainWeights)
	m := metrics.LowestFee{LongTermFeerate: coinselect.FeeRateFromSatPerVB(1.0), ChangePolicy: changePolicy}
	if _, ok := bruteforce.Best(candidates, 0, target, m); ok {
		t.Fatal("expected guardrail to reject too many candidates")
	}
}
