package metrics

import (
	coinselect "github.com/rawblock/coinselect-engine"
	"github.com/rawblock/coinselect-engine/ordfloat"
)

// Waste finds the selection minimizing the "waste" metric: the fee paid
// above the target's required rate, plus the cost of the selected inputs
// and any drain output valued at the long-term feerate rather than today's.
// It balances overpaying fee now against overpaying to consolidate UTXOs
// later.
type Waste struct {
	LongTermFeerate coinselect.FeeRate
	ChangePolicy    coinselect.ChangePolicy
}

func (m Waste) Score(s *coinselect.Selector, target coinselect.Target) (ordfloat.Float32, bool) {
	if s.Excess(target, coinselect.NoDrain) < 0 {
		return ordfloat.Zero, false
	}
	drain := s.DrainValue(target, m.ChangePolicy)
	return ordfloat.New(s.Waste(target, m.LongTermFeerate, drain, 1.0)), true
}

// Bound is a heuristic lower bound, not a tight one - it doesn't need to be,
// only admissible, and the three regimes below each admit a cheap estimate.
//
// rateDiff is today's feerate minus the long-term feerate.
//
//   - rateDiff >= 0 and the target is already met (accounting for a
//     forced drain, if any): the current selection's waste is a valid
//     bound, but adding enough of the lowest-value-per-weight-unit
//     remaining candidate (if it has negative effective value) might cancel
//     the excess and avoid a change output entirely, which can score lower -
//     both are computed and the smaller wins.
//   - rateDiff >= 0 and the target isn't yet met: no complete selection
//     exists yet to score, so the bound instead estimates the minimum
//     weight a selection meeting the target could have, by scaling the
//     final candidate needed down to exactly the size required.
//   - rateDiff < 0: every input's waste is individually negative, so
//     selecting every remaining candidate is one candidate lower bound (the
//     subtree is infeasible if the positive-effective-value ones alone
//     can't meet the target); avoiding
//     change entirely (by selecting the most negative-effective-value-first
//     run that never needs one) is checked as a second, and the smaller of
//     the two wins.
func (m Waste) Bound(s *coinselect.Selector, target coinselect.Target) (ordfloat.Float32, bool) {
	const ignoreExcess, includeExcess float32 = 0.0, 1.0

	rateDiff := target.Fee.Rate.SatPerWU() - m.LongTermFeerate.SatPerWU()
	drainLB, forced := changeLowerBound(s, target, m.ChangePolicy)
	changeLB := coinselect.NoDrain
	if forced {
		changeLB = drainLB
	}

	if rateDiff >= 0 {
		if s.IsTargetMetWithDrain(target, changeLB) {
			currentChange := s.DrainValue(target, m.ChangePolicy)
			lowerBound := s.Waste(target, m.LongTermFeerate, currentChange, includeExcess)

			if !forced {
				negEVRun, ok := selectBackwardWhile(s, func(sel *coinselect.Selector, ic coinselect.IndexedCandidate) bool {
					return ic.Candidate.EffectiveValue(target.Fee.Rate) < 0 && sel.IsTargetMet(target)
				})
				if ok {
					var withoutChange float32
					var finishing *coinselect.Candidate
					if rest := negEVRun.Unselected(); len(rest) > 0 {
						if cand := rest[len(rest)-1].Candidate; cand.EffectiveValue(target.Fee.Rate) < 0 {
							finishing = &cand
						}
					}
					if finishing != nil {
						valueToSlurp := -negEVRun.RateExcess(target, coinselect.NoDrain)
						weightToExtinguish := slurpWV(*finishing, valueToSlurp, target.Fee.Rate)
						withoutChange = negEVRun.Waste(target, m.LongTermFeerate, coinselect.NoDrain, ignoreExcess) + weightToExtinguish*rateDiff
					} else {
						withoutChange = negEVRun.Waste(target, m.LongTermFeerate, coinselect.NoDrain, includeExcess)
					}
					if withoutChange < lowerBound {
						lowerBound = withoutChange
					}
				}
			}
			return ordfloat.New(lowerBound), true
		}

		result, toSlurp, ok := selectForwardUntil(s, func(sel *coinselect.Selector) bool {
			return sel.IsTargetMetWithDrain(target, changeLB)
		})
		if !ok {
			return ordfloat.Zero, false
		}

		weightToSatisfyAbs := float32(minI64(result.ReplacementExcess(target, changeLB), 0)) / toSlurp.ValuePWU()
		weightToSatisfyRate := slurpWV(toSlurp, minI64(result.RateExcess(target, changeLB), 0), target.Fee.Rate)
		weightToSatisfy := maxF32(weightToSatisfyAbs, weightToSatisfyRate)

		weightLowerBound := float32(result.InputWeight()) + weightToSatisfy
		waste := weightLowerBound*rateDiff + changeLB.Weights.Waste(target.Fee.Rate, m.LongTermFeerate, target.Outputs.NOutputs)
		return ordfloat.New(waste), true
	}

	clone := s.Clone()
	clone.SelectAllEffective(target.Fee.Rate)
	if !clone.IsTargetMet(target) {
		return ordfloat.Zero, false
	}
	changeAtValueOptimum := clone.DrainValue(target, m.ChangePolicy)
	clone.SelectAll()
	lowerBound := clone.Waste(target, m.LongTermFeerate, changeAtValueOptimum, ignoreExcess)

	if !forced {
		noChangeRun, ok := selectBackwardWhile(s, func(sel *coinselect.Selector, ic coinselect.IndexedCandidate) bool {
			return ic.Candidate.EffectiveValue(target.Fee.Rate) < 0 || sel.DrainValue(target, m.ChangePolicy).IsNone()
		})
		if ok {
			if noChangeWaste := noChangeRun.Waste(target, m.LongTermFeerate, coinselect.NoDrain, ignoreExcess); noChangeWaste < lowerBound {
				lowerBound = noChangeWaste
			}
		}
	}
	return ordfloat.New(lowerBound), true
}

func (m Waste) RequiresOrderingByDescendingValuePWU() bool { return true }
