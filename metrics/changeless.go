package metrics

import (
	coinselect "github.com/rawblock/coinselect-engine"
	"github.com/rawblock/coinselect-engine/ordfloat"
)

// Changeless finds a selection that meets target while producing no change
// output at all, preferring the first such selection branch-and-bound
// encounters (all changeless selections score equally, 0.0).
type Changeless struct {
	ChangePolicy coinselect.ChangePolicy
}

func (m Changeless) Score(s *coinselect.Selector, target coinselect.Target) (ordfloat.Float32, bool) {
	if s.Excess(target, coinselect.NoDrain) < 0 {
		return ordfloat.Zero, false
	}
	if s.DrainValue(target, m.ChangePolicy).IsSome() {
		return ordfloat.Zero, false
	}
	return ordfloat.Zero, true
}

func (m Changeless) Bound(s *coinselect.Selector, target coinselect.Target) (ordfloat.Float32, bool) {
	if _, forced := changeLowerBound(s, target, m.ChangePolicy); forced {
		return ordfloat.Zero, false
	}
	return ordfloat.Zero, true
}

func (m Changeless) RequiresOrderingByDescendingValuePWU() bool { return true }
