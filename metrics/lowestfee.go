package metrics

import (
	coinselect "github.com/rawblock/coinselect-engine"
	"github.com/rawblock/coinselect-engine/ordfloat"
)

// LowestFee finds the selection that minimizes the total fee paid: the
// transaction fee itself plus the long-term cost of eventually spending a
// drain output, if one is produced.
type LowestFee struct {
	LongTermFeerate coinselect.FeeRate
	ChangePolicy    coinselect.ChangePolicy
}

func (m LowestFee) Score(s *coinselect.Selector, target coinselect.Target) (ordfloat.Float32, bool) {
	if s.Excess(target, coinselect.NoDrain) < 0 {
		return ordfloat.Zero, false
	}
	drain := s.DrainValue(target, m.ChangePolicy)
	fee := s.Fee(target, drain)
	if fee <= 0 {
		return ordfloat.Zero, false
	}
	total := float32(fee + drain.Weights.SpendFee(m.LongTermFeerate))
	return ordfloat.New(total), true
}

// Bound computes a lower bound on the fee any descendant of s could
// achieve.
//
// If the target is already met, the current selection's score is itself a
// valid bound, but two cheaper possibilities are checked before settling
// for it: dropping the change output by adding enough of the
// lowest-value-per-weight-unit remaining candidate to cancel it out (only
// possible when that candidate has negative effective value), or, if there
// is no change output yet, adding one (which can be cheaper than paying the
// excess as fee). Whichever of the three is lowest is the bound.
//
// If the target is not yet met, the current selection can't be scored, so
// the bound instead estimates the cheapest fee a selection meeting the target
// could possibly pay: select candidates in order until the target would be
// met, then pretend the last one added was scaled down to exactly the size
// needed to hit the target feerate (and, if replacing, RBF rule 4) exactly.
// If even the full candidate can't supply enough effective value to reach
// feerate, the subtree is infeasible.
func (m LowestFee) Bound(s *coinselect.Selector, target coinselect.Target) (ordfloat.Float32, bool) {
	if s.IsTargetMet(target) {
		drain := s.DrainValue(target, m.ChangePolicy)
		currentScore := float32(s.Fee(target, drain) + drain.Weights.SpendFee(m.LongTermFeerate))
		best := currentScore

		if drain.IsSome() {
			unselected := s.Unselected()
			if len(unselected) > 0 {
				lowPWU := unselected[len(unselected)-1].Candidate
				ev := lowPWU.EffectiveValue(target.Fee.Rate)
				if ev < 0 {
					amountAboveThreshold := float32(drain.Value - m.ChangePolicy.MinValue)
					valuePerNegativeEV := float32(lowPWU.Value) / -ev
					extraValueNeeded := amountAboveThreshold * valuePerNegativeEV
					costOfGettingRidOfChange := extraValueNeeded + float32(drain.Value)
					costOfChange := m.ChangePolicy.DrainWeights.Waste(target.Fee.Rate, m.LongTermFeerate, target.Outputs.NOutputs)
					withoutChange := currentScore + costOfGettingRidOfChange - costOfChange
					if withoutChange < best {
						best = withoutChange
					}
				}
			}
		} else {
			costOfAddingChange := m.ChangePolicy.DrainWeights.Waste(target.Fee.Rate, m.LongTermFeerate, target.Outputs.NOutputs)
			costOfNoChange := float32(s.Excess(target, coinselect.NoDrain))
			withChange := currentScore - costOfNoChange + costOfAddingChange
			if withChange < best {
				best = withChange
			}
		}
		return ordfloat.New(best), true
	}

	result, toResize, ok := selectForwardUntil(s, func(c *coinselect.Selector) bool {
		return c.IsTargetMet(target)
	})
	if !ok {
		return ordfloat.Zero, false
	}

	var scale float32
	if rateExcess := float32(result.RateExcess(target, coinselect.NoDrain)); rateExcess < 0 {
		evOfResized := toResize.EffectiveValue(target.Fee.Rate)
		if evOfResized <= 0 {
			return ordfloat.Zero, false
		}
		scale = maxF32(scale, -rateExcess/evOfResized)
	}
	if replace := target.Fee.Replace; replace != nil {
		if replaceExcess := float32(result.ReplacementExcess(target, coinselect.NoDrain)); replaceExcess < 0 {
			evOfResized := toResize.EffectiveValue(replace.IncrementalRelayFeeRate)
			if evOfResized <= 0 {
				return ordfloat.Zero, false
			}
			scale = maxF32(scale, -replaceExcess/evOfResized)
		}
	}

	idealFee := scale*float32(toResize.Value) + float32(result.InputValue()) - float32(target.Value())
	return ordfloat.New(idealFee), true
}

func (m LowestFee) RequiresOrderingByDescendingValuePWU() bool { return true }
