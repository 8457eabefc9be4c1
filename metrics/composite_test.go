package metrics_test

import (
	"testing"

	coinselect "github.com/rawblock/coinselect-engine"
	"github.com/rawblock/coinselect-engine/metrics"
)

func TestWeightedSumScoresAsWeightedTotal(t *testing.T) {
	candidates := []coinselect.Candidate{coinselect.NewCandidate(20_000, 108, true)}
	target := coinselect.Target{
		Fee:     coinselect.TargetFeeFromFeeRate(coinselect.FeeRateFromSatPerVB(1.0)),
		Outputs: coinselect.FundOutputs(coinselect.WeightValue{Weight: 100, Value: 10_000}),
	}
	changePolicy := coinselect.NewChangePolicy(1000, coinselect.TRKeyspendDrainWeights)
	lowestFee := metrics.LowestFee{LongTermFeerate: coinselect.FeeRateFromSatPerVB(1.0), ChangePolicy: changePolicy}

	s := coinselect.NewSelector(candidates, coinselect.TxFixedFieldWeight)
	s.Select(0)

	base, ok := lowestFee.Score(s, target)
	if !ok {
		t.Fatal("expected a base score")
	}

	sum := metrics.WeightedSum{{Metric: lowestFee, Weight: 2.0}}
	combined, ok := sum.Score(s, target)
	if !ok {
		t.Fatal("expected a combined score")
	}
	if combined.Float32Val() != base.Float32Val()*2.0 {
		t.Fatalf("combined = %v, want %v", combined.Float32Val(), base.Float32Val()*2.0)
	}
}

// A zero-weighted Changeless component still vetoes selections that
// produce change (its unavailable score propagates), so the combined
// optimum can never beat plain LowestFee on the same inputs.
func TestWeightedSumCombinedNoBetterThanComponent(t *testing.T) {
	target := coinselect.Target{
		Fee:     coinselect.TargetFeeFromFeeRate(coinselect.FeeRateFromSatPerVB(1.0)),
		Outputs: coinselect.TargetOutputs{ValueSum: 99_870, WeightSum: 0, NOutputs: 1},
	}
	candidates := []coinselect.Candidate{
		{Value: 100_000, Weight: 100, InputCount: 1, IsSegwit: true},
		{Value: 50_000, Weight: 100, InputCount: 1, IsSegwit: true},
		{Value: 10, Weight: 100, InputCount: 1, IsSegwit: true},
	}
	changePolicy := coinselect.NewChangePolicy(1_000, coinselect.DrainWeights{
		OutputWeight: 100, SpendWeight: 1_000, NOutputs: 1,
	})
	lowestFee := metrics.LowestFee{
		LongTermFeerate: coinselect.FeeRateFromSatPerVB(1.0),
		ChangePolicy:    changePolicy,
	}
	combined := metrics.WeightedSum{
		{Metric: lowestFee, Weight: 1.0},
		{Metric: metrics.Changeless{ChangePolicy: changePolicy}, Weight: 0.0},
	}

	alone, err := coinselect.RunBnB(coinselect.NewSelector(candidates, 200), target, lowestFee, coinselect.Options{})
	if err != nil {
		t.Fatalf("LowestFee search failed: %v", err)
	}
	aloneScore, _ := lowestFee.Score(alone, target)

	best, err := coinselect.RunBnB(coinselect.NewSelector(candidates, 200), target, combined, coinselect.Options{})
	if err != nil {
		t.Fatalf("combined search failed: %v", err)
	}
	combinedScore, ok := combined.Score(best, target)
	if !ok {
		t.Fatal("combined search returned a selection with no valid score")
	}
	if combinedScore.Float32Val() < aloneScore.Float32Val() {
		t.Fatalf("combined optimum %v beats LowestFee alone %v, which is impossible",
			combinedScore.Float32Val(), aloneScore.Float32Val())
	}
}

func TestWeightedSumRequiresOrderingIfAnyComponentDoes(t *testing.T) {
	changePolicy := coinselect.NewChangePolicy(1000, coinselect.TRKeyspendDrainWeights)
	sum := metrics.WeightedSum{
		{Metric: metrics.LowestFee{ChangePolicy: changePolicy}, Weight: 1.0},
		{Metric: metrics.Changeless{ChangePolicy: changePolicy}, Weight: 0.0},
	}
	if !sum.RequiresOrderingByDescendingValuePWU() {
		t.Fatal("expected WeightedSum to require ordering since Changeless does")
	}
}
