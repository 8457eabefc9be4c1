// Package metrics provides branch-and-bound scoring metrics for the
// coinselect package: LowestFee, Changeless, and Waste, plus a WeightedSum
// combinator. Each type implements coinselect.Metric.
package metrics

import (
	coinselect "github.com/rawblock/coinselect-engine"
)

// changeLowerBound estimates whether a drain output is already unavoidable
// for any descendant of s, returning the drain a metric's bound should
// assume if so.
//
// The reasoning: a descendant only ever adds candidates to s. Adding a
// candidate with non-negative effective value at the target feerate raises
// the excess by roughly that effective value; only candidates with negative
// effective value can lower it. So s is re-checked with every remaining
// negative-effective-value candidate also selected: if changePolicy still
// produces a drain there, the bound can assume the drain's weight cost is
// certain, with its value floored at 0 since we don't know how much more
// value descendants will add. Otherwise a descendant might still avoid a
// drain entirely, so no drain can be assumed for the bound.
func changeLowerBound(s *coinselect.Selector, target coinselect.Target, changePolicy coinselect.ChangePolicy) (drain coinselect.Drain, forced bool) {
	d := s.DrainValue(target, changePolicy)
	if d.IsNone() {
		return coinselect.NoDrain, false
	}
	leastExcess := s.Clone()
	for _, ic := range s.Unselected() {
		if ic.Candidate.EffectiveValue(target.Fee.Rate) < 0 {
			leastExcess.Select(ic.Index)
		}
	}
	if leastExcess.DrainValue(target, changePolicy).IsNone() {
		return coinselect.NoDrain, false
	}
	return coinselect.Drain{Weights: changePolicy.DrainWeights, Value: 0}, true
}

// selectForwardUntil clones s and selects its currently-unselected
// candidates in iteration order, one at a time, until met reports true for
// the resulting clone. It returns that clone with the just-selected
// candidate deselected again (so the caller can treat it as "the state
// right before the candidate that tips the scale, plus which candidate
// that was"), or ok=false if every remaining candidate was selected
// without met ever becoming true.
func selectForwardUntil(s *coinselect.Selector, met func(*coinselect.Selector) bool) (result *coinselect.Selector, candidate coinselect.Candidate, ok bool) {
	clone := s.Clone()
	for _, ic := range s.Unselected() {
		clone.Select(ic.Index)
		if met(clone) {
			clone.Deselect(ic.Index)
			return clone, ic.Candidate, true
		}
	}
	return nil, coinselect.Candidate{}, false
}

// selectBackwardWhile clones s and selects its currently-unselected
// candidates in reverse iteration order, one at a time, for as long as
// pred holds for the just-selected candidate and the resulting clone. It
// returns the last clone for which pred held, or ok=false if pred never
// held (not even for the first candidate tried).
func selectBackwardWhile(s *coinselect.Selector, pred func(sel *coinselect.Selector, ic coinselect.IndexedCandidate) bool) (result *coinselect.Selector, ok bool) {
	clone := s.Clone()
	unselected := s.Unselected()
	for i := len(unselected) - 1; i >= 0; i-- {
		ic := unselected[i]
		clone.Select(ic.Index)
		if !pred(clone, ic) {
			break
		}
		result = clone.Clone()
		ok = true
	}
	return result, ok
}

// slurpWV returns the (always non-positive) weight a hypothetical
// candidate with candidate's exact value-per-weight ratio would need in
// order to supply valueToSlurp of value at feerate, pretending such a
// perfectly-sized candidate existed. Used to estimate how much less weight
// a bound could get away with if the final selected input were scaled down
// to exactly cancel the remaining excess.
func slurpWV(candidate coinselect.Candidate, valueToSlurp int64, feerate coinselect.FeeRate) float32 {
	valuePerWU := float32(candidate.Value)/float32(candidate.Weight) - feerate.SatPerWU()
	weightNeeded := float32(valueToSlurp) / valuePerWU
	if weightNeeded > 0 {
		return 0
	}
	return weightNeeded
}

func minI64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxF32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
