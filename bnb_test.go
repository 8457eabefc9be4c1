package coinselect_test

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	coinselect "github.com/rawblock/coinselect-engine"
	"github.com/rawblock/coinselect-engine/internal/bruteforce"
	"github.com/rawblock/coinselect-engine/metrics"
	"github.com/rawblock/coinselect-engine/ordfloat"
)

func makeCandidates(values ...int64) []coinselect.Candidate {
	out := make([]coinselect.Candidate, len(values))
	for i, v := range values {
		out[i] = coinselect.NewCandidate(v, 108, true)
	}
	return out
}

// minExcessThenWeight scores a selection by its excess first and its input
// weight second (lexicographically, via a large multiplier), effectively
// asking the driver for an exhaustive exact-match search. Assumes the tx
// weight stays under 1M wu so the two components never overlap.
type minExcessThenWeight struct{}

const excessRatio float32 = 1_000_000

func (minExcessThenWeight) Score(s *coinselect.Selector, target coinselect.Target) (ordfloat.Float32, bool) {
	excess := s.Excess(target, coinselect.NoDrain)
	if excess < 0 {
		return ordfloat.Zero, false
	}
	return ordfloat.New(float32(excess)*excessRatio + float32(s.InputWeight())), true
}

// Bound greedily selects until the target is met: with equal-weight
// candidates visited in descending value order that greedy prefix is the
// lightest way any descendant can meet the target, and the excess
// component of a real score only ever adds to it.
func (minExcessThenWeight) Bound(s *coinselect.Selector, target coinselect.Target) (ordfloat.Float32, bool) {
	clone := s.Clone()
	if err := clone.SelectUntilTargetMet(target); err != nil {
		return ordfloat.Zero, false
	}
	return ordfloat.New(float32(clone.InputWeight())), true
}

func (minExcessThenWeight) RequiresOrderingByDescendingValuePWU() bool { return false }

// A fixed pool of 18 equal-weight segwit candidates with pseudo-random
// values, so driver scenarios are reproducible run to run.
var deterministicValues = []int64{
	731, 27, 640, 283, 954, 409,
	512, 66, 877, 198, 345, 720,
	91, 463, 588, 12, 836, 257,
}

func deterministicCandidates() []coinselect.Candidate {
	out := make([]coinselect.Candidate, len(deterministicValues))
	for i, v := range deterministicValues {
		out[i] = coinselect.Candidate{Value: v, Weight: 100, InputCount: 1, IsSegwit: true}
	}
	return out
}

func TestBnBFindsExactSolution(t *testing.T) {
	candidates := deterministicCandidates()

	// The first 6 candidates sum to 3044, so a zero-excess selection
	// exists; with fees at zero the driver must find one no heavier than
	// those 6 inputs.
	reference := coinselect.NewSelector(candidates[:6], 0)
	reference.SelectAll()
	referenceWeight := reference.InputWeight()

	target := coinselect.Target{
		Fee:     coinselect.ZeroTargetFee,
		Outputs: coinselect.TargetOutputs{ValueSum: 3044, WeightSum: 0, NOutputs: 1},
	}

	root := coinselect.NewSelector(candidates, 0)
	root.SortCandidatesByKey(func(a, b int) bool {
		return candidates[a].Value > candidates[b].Value
	})

	best, err := coinselect.RunBnB(root, target, minExcessThenWeight{}, coinselect.Options{})
	if err != nil {
		t.Fatalf("RunBnB returned error: %v", err)
	}
	if got := best.InputValue(); got != 3044 {
		t.Fatalf("selected value = %d, want the exact target 3044", got)
	}
	if got := best.InputWeight(); got > referenceWeight {
		t.Fatalf("input weight = %d, want <= reference weight %d", got, referenceWeight)
	}
}

func TestBnBFindsSolutionIfPossible(t *testing.T) {
	candidates := deterministicCandidates()
	metric := minExcessThenWeight{}
	target := coinselect.Target{
		Fee:     coinselect.DefaultTargetFee(),
		Outputs: coinselect.TargetOutputs{ValueSum: 6_500, WeightSum: 0, NOutputs: 1},
	}

	root := coinselect.NewSelector(candidates, 0)
	root.SortCandidatesByKey(func(a, b int) bool {
		return candidates[a].Value > candidates[b].Value
	})

	best, err := coinselect.RunBnB(root, target, metric, coinselect.Options{})
	if err != nil {
		t.Fatalf("RunBnB returned error: %v", err)
	}
	if excess := best.Excess(target, coinselect.NoDrain); excess < 0 {
		t.Fatalf("excess = %d, want non-negative", excess)
	}

	gotScore, ok := metric.Score(best, target)
	if !ok {
		t.Fatal("RunBnB returned a selection with no valid score")
	}
	want, ok := bruteforce.Best(candidates, 0, target, metric)
	if !ok {
		t.Fatal("bruteforce oracle found no valid selection")
	}
	wantScore, _ := metric.Score(want, target)
	if gotScore.Float32Val() > wantScore.Float32Val() {
		t.Fatalf("RunBnB score %v is worse than the brute-force optimum %v", gotScore, wantScore)
	}
}

func TestBnBIdenticalCandidatesFewRounds(t *testing.T) {
	const n = 10
	candidates := make([]coinselect.Candidate, n)
	for i := range candidates {
		candidates[i] = coinselect.Candidate{Value: 1_000, Weight: 100, InputCount: 1, IsSegwit: true}
	}
	// 6 of the 10 identical inputs cover the target with 10 sats of fee.
	target := coinselect.Target{
		Fee:     coinselect.ZeroTargetFee,
		Outputs: coinselect.TargetOutputs{ValueSum: 5_990, WeightSum: 0, NOutputs: 1},
	}
	metric := metrics.LowestFee{
		LongTermFeerate: coinselect.FeeRateFromSatPerVB(10.0),
		ChangePolicy:    coinselect.NewChangePolicy(100_000, coinselect.TRKeyspendDrainWeights),
	}

	// Banning whole runs of (value, weight)-duplicates on exclusion
	// branches collapses the tree for identical candidates to a single
	// inclusion chain, so n+1 rounds must be enough.
	root := coinselect.NewSelector(candidates, 0)
	best, err := coinselect.RunBnB(root, target, metric, coinselect.Options{MaxRounds: n + 1})
	if err != nil {
		t.Fatalf("RunBnB returned error within %d rounds: %v", n+1, err)
	}
	if got := len(best.SelectedIndices()); got != 6 {
		t.Fatalf("selected %d candidates, want 6", got)
	}
}

func TestRunBnBFindsTrueOptimumLowestFee(t *testing.T) {
	candidates := makeCandidates(10_000, 15_000, 20_000, 25_000, 30_000, 8_000, 12_000)
	target := coinselect.Target{
		Fee:     coinselect.TargetFeeFromFeeRate(coinselect.FeeRateFromSatPerVB(5.0)),
		Outputs: coinselect.FundOutputs(coinselect.WeightValue{Weight: 200, Value: 40_000}),
	}
	changePolicy := coinselect.NewChangePolicy(1000, coinselect.TRKeyspendDrainWeights)
	metric := metrics.LowestFee{
		LongTermFeerate: coinselect.FeeRateFromSatPerVB(3.0),
		ChangePolicy:    changePolicy,
	}

	root := coinselect.NewSelector(candidates, coinselect.TxFixedFieldWeight)
	got, err := coinselect.RunBnB(root, target, metric, coinselect.Options{})
	if err != nil {
		t.Fatalf("RunBnB returned error: %v", err)
	}
	gotScore, ok := metric.Score(got, target)
	if !ok {
		t.Fatal("RunBnB returned a selection with no valid score")
	}

	want, ok := bruteforce.Best(candidates, coinselect.TxFixedFieldWeight, target, metric)
	if !ok {
		t.Fatal("bruteforce oracle found no valid selection")
	}
	wantScore, _ := metric.Score(want, target)

	if gotScore.Float32Val() > wantScore.Float32Val() {
		t.Fatalf("RunBnB found a worse score (%v) than brute force (%v)", gotScore, wantScore)
	}
}

func TestRunBnBNoBnbSolutionWhenImpossible(t *testing.T) {
	candidates := makeCandidates(1_000, 2_000)
	target := coinselect.Target{
		Fee:     coinselect.DefaultTargetFee(),
		Outputs: coinselect.FundOutputs(coinselect.WeightValue{Weight: 200, Value: 1_000_000}),
	}
	metric := metrics.LowestFee{
		LongTermFeerate: coinselect.FeeRateFromSatPerVB(3.0),
		ChangePolicy:    coinselect.NewChangePolicy(1000, coinselect.TRKeyspendDrainWeights),
	}
	root := coinselect.NewSelector(candidates, coinselect.TxFixedFieldWeight)
	_, err := coinselect.RunBnB(root, target, metric, coinselect.Options{})
	if err == nil {
		t.Fatal("expected a NoBnbSolution error")
	}
	if _, ok := err.(*coinselect.NoBnbSolution); !ok {
		t.Fatalf("expected *NoBnbSolution, got %T", err)
	}
}

func TestRunBnBTracerNamesCandidatesByOutpoint(t *testing.T) {
	txid, err := chainhash.NewHashFromStr(
		"1f2e3d4c5b6a79880102030405060708090a0b0c0d0e0f101112131415161718")
	if err != nil {
		t.Fatalf("bad txid: %v", err)
	}
	candidates := []coinselect.Candidate{
		{
			Value:      20_000,
			Weight:     100,
			InputCount: 1,
			IsSegwit:   true,
			Ref:        &coinselect.CandidateRef{TxID: *txid, Vout: 1},
		},
	}
	target := coinselect.Target{
		Fee:     coinselect.TargetFeeFromFeeRate(coinselect.FeeRateFromSatPerVB(1.0)),
		Outputs: coinselect.FundOutputs(coinselect.WeightValue{Weight: 100, Value: 10_000}),
	}
	metric := metrics.LowestFee{
		LongTermFeerate: coinselect.FeeRateFromSatPerVB(1.0),
		ChangePolicy:    coinselect.NewChangePolicy(1000, coinselect.TRKeyspendDrainWeights),
	}

	var trace bytes.Buffer
	root := coinselect.NewSelector(candidates, coinselect.TxFixedFieldWeight)
	_, err = coinselect.RunBnB(root, target, metric, coinselect.Options{
		Logger: log.New(&trace, "", 0),
	})
	if err != nil {
		t.Fatalf("RunBnB returned error: %v", err)
	}
	if !strings.Contains(trace.String(), txid.String()) {
		t.Fatalf("trace should name the winning input by its outpoint, got:\n%s", trace.String())
	}
}

func TestBnbSolutionsMonotonicallyImprove(t *testing.T) {
	candidates := makeCandidates(10_000, 15_000, 20_000, 25_000)
	target := coinselect.Target{
		Fee:     coinselect.TargetFeeFromFeeRate(coinselect.FeeRateFromSatPerVB(2.0)),
		Outputs: coinselect.FundOutputs(coinselect.WeightValue{Weight: 200, Value: 30_000}),
	}
	metric := metrics.Waste{
		LongTermFeerate: coinselect.FeeRateFromSatPerVB(5.0),
		ChangePolicy:    coinselect.NewChangePolicy(1000, coinselect.TRKeyspendDrainWeights),
	}
	root := coinselect.NewSelector(candidates, coinselect.TxFixedFieldWeight)

	var prev float32
	haveBest := false
	coinselect.BnbSolutions(root, target, metric, coinselect.Options{}, func(s *coinselect.Selector, score ordfloat.Float32) bool {
		if haveBest && score.Float32Val() > prev {
			t.Fatalf("score regressed: prev=%v got=%v", prev, score.Float32Val())
		}
		prev = score.Float32Val()
		haveBest = true
		return true
	})
	if !haveBest {
		t.Fatal("expected at least one improving solution")
	}
}
