package coinselect

import (
	"fmt"
	"sort"
	"strings"
)

// Selector holds a pool of candidates and tracks which of them are
// currently selected or banned from selection. It's the core mutable state
// the branch-and-bound driver and its metrics operate on.
//
// A candidate may be selected despite also being banned: the two sets are
// not kept disjoint. Banning only ever affects the unselected-iteration
// filter (Unselected, SelectNext, SelectAllEffective); a caller that
// explicitly Selects a banned index has made a deliberate manual override.
//
// Selected/banned membership is tracked with plain maps, so Clone pays an
// O(k) copy on every branch rather than sharing structure until mutation.
// For the candidate counts this engine is built for (dozens to a few
// hundred UTXOs), this is a deliberate simplification, not an oversight.
type Selector struct {
	candidates     []Candidate
	candidateOrder []int
	selected       map[int]struct{}
	banned         map[int]struct{}
	baseWeight     uint32
}

// NewSelector builds a Selector over candidates, with every candidate
// initially unselected and unbanned, and the iteration order equal to the
// candidate slice's own order. baseWeight is the fixed transaction weight
// Weight adds on top of the selected inputs and funded outputs - normally
// TxFixedFieldWeight, but callers that only care about weight relative to
// the selection (e.g. tests exercising InputWeight/Excess in isolation) may
// pass 0.
func NewSelector(candidates []Candidate, baseWeight uint32) *Selector {
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	return &Selector{
		candidates:     candidates,
		candidateOrder: order,
		selected:       make(map[int]struct{}),
		banned:         make(map[int]struct{}),
		baseWeight:     baseWeight,
	}
}

// Clone returns an independent copy of s. Mutating the clone never affects
// s and vice versa. Cloning happens on every branch-and-bound branch, so
// it stays a flat O(selected+banned+N) copy rather than anything fancier.
func (s *Selector) Clone() *Selector {
	order := make([]int, len(s.candidateOrder))
	copy(order, s.candidateOrder)
	selected := make(map[int]struct{}, len(s.selected))
	for i := range s.selected {
		selected[i] = struct{}{}
	}
	banned := make(map[int]struct{}, len(s.banned))
	for i := range s.banned {
		banned[i] = struct{}{}
	}
	return &Selector{
		candidates:     s.candidates,
		candidateOrder: order,
		selected:       selected,
		banned:         banned,
		baseWeight:     s.baseWeight,
	}
}

// IndexedCandidate pairs a Candidate with its index into the original
// candidate pool, since iteration order is not always the pool order.
type IndexedCandidate struct {
	Index     int
	Candidate Candidate
}

// String names the candidate by its outpoint when one is attached,
// otherwise by its pool index.
func (ic IndexedCandidate) String() string {
	if ic.Candidate.Ref != nil {
		return fmt.Sprintf("%s=%s", ic.Candidate.Ref, ic.Candidate.Amount())
	}
	return fmt.Sprintf("%d=%s", ic.Index, ic.Candidate.Amount())
}

func (s *Selector) at(i int) Candidate {
	if i < 0 || i >= len(s.candidates) {
		panic(fmt.Sprintf("coinselect: candidate index %d out of range", i))
	}
	return s.candidates[i]
}

// Select adds candidate index i to the selection. It panics if i is out of
// range; selecting an already-selected or already-banned index is allowed
// and simply marks it selected.
func (s *Selector) Select(i int) {
	s.at(i)
	s.selected[i] = struct{}{}
}

// Deselect removes candidate index i from the selection, reporting whether
// it had been selected. Unlike Select, it does not panic on an
// out-of-range or not-currently-selected index - it just reports false.
// This asymmetry is intentional: Select's precondition (a valid candidate
// must exist) is worth enforcing eagerly since a bad index there is always
// a caller bug, whereas Deselect is routinely called speculatively by
// search code that doesn't want to track membership itself.
func (s *Selector) Deselect(i int) bool {
	if i < 0 || i >= len(s.candidates) {
		return false
	}
	if _, ok := s.selected[i]; !ok {
		return false
	}
	delete(s.selected, i)
	return true
}

// Ban excludes candidate index i from ever being selected by
// Unselected/SelectNext/SelectAllEffective. It panics if i is out of range.
func (s *Selector) Ban(i int) {
	s.at(i)
	s.banned[i] = struct{}{}
}

// Unban reverses Ban. Unbanning a candidate that isn't banned is a no-op.
func (s *Selector) Unban(i int) {
	s.at(i)
	delete(s.banned, i)
}

// IsSelected reports whether candidate index i is currently selected.
func (s *Selector) IsSelected(i int) bool {
	_, ok := s.selected[i]
	return ok
}

// IsBanned reports whether candidate index i is currently banned.
func (s *Selector) IsBanned(i int) bool {
	_, ok := s.banned[i]
	return ok
}

// IsEmpty reports whether no candidates are selected.
func (s *Selector) IsEmpty() bool { return len(s.selected) == 0 }

// IsExhausted reports whether every unbanned candidate has been selected,
// i.e. there is nothing left to try selecting.
func (s *Selector) IsExhausted() bool {
	for _, i := range s.candidateOrder {
		if _, sel := s.selected[i]; sel {
			continue
		}
		if _, ban := s.banned[i]; ban {
			continue
		}
		return false
	}
	return true
}

// SelectedIndices returns the indices of selected candidates in ascending
// order.
func (s *Selector) SelectedIndices() []int {
	out := make([]int, 0, len(s.selected))
	for i := range s.selected {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Selected returns the selected candidates in ascending index order.
func (s *Selector) Selected() []IndexedCandidate {
	indices := s.SelectedIndices()
	out := make([]IndexedCandidate, len(indices))
	for k, i := range indices {
		out[k] = IndexedCandidate{Index: i, Candidate: s.candidates[i]}
	}
	return out
}

// BannedIndices returns the indices of banned candidates in ascending order.
func (s *Selector) BannedIndices() []int {
	out := make([]int, 0, len(s.banned))
	for i := range s.banned {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Candidates returns every candidate in the pool, in the Selector's current
// iteration order (candidateOrder), regardless of selection/ban status. The
// iteration order matters for branch-and-bound: it determines which
// candidate is tried first at each branch.
func (s *Selector) Candidates() []IndexedCandidate {
	out := make([]IndexedCandidate, len(s.candidateOrder))
	for k, i := range s.candidateOrder {
		out[k] = IndexedCandidate{Index: i, Candidate: s.candidates[i]}
	}
	return out
}

// Unselected returns the candidates that are neither selected nor banned,
// in the Selector's iteration order.
func (s *Selector) Unselected() []IndexedCandidate {
	out := make([]IndexedCandidate, 0, len(s.candidateOrder)-len(s.selected))
	for _, i := range s.candidateOrder {
		if _, sel := s.selected[i]; sel {
			continue
		}
		if _, ban := s.banned[i]; ban {
			continue
		}
		out = append(out, IndexedCandidate{Index: i, Candidate: s.candidates[i]})
	}
	return out
}

// SortCandidatesByDescendingValuePWU reorders the iteration order so
// unselected candidates are visited highest-value-per-weight-unit first,
// tie-broken by value descending. Several metrics require this ordering to
// keep their bound admissible.
func (s *Selector) SortCandidatesByDescendingValuePWU() {
	sort.SliceStable(s.candidateOrder, func(a, b int) bool {
		ca := s.candidates[s.candidateOrder[a]]
		cb := s.candidates[s.candidateOrder[b]]
		if ca.ValuePWU() != cb.ValuePWU() {
			return ca.ValuePWU() > cb.ValuePWU()
		}
		return ca.Value > cb.Value
	})
}

// SortCandidatesByKey reorders the iteration order using an arbitrary less
// function over candidate indices.
func (s *Selector) SortCandidatesByKey(less func(a, b int) bool) {
	sort.SliceStable(s.candidateOrder, func(a, b int) bool {
		return less(s.candidateOrder[a], s.candidateOrder[b])
	})
}

// SelectAll selects every remaining unselected, unbanned candidate.
func (s *Selector) SelectAll() {
	for _, ic := range s.Unselected() {
		s.selected[ic.Index] = struct{}{}
	}
}

// SelectAllEffective selects every remaining candidate with positive
// effective value at feerate, which can only ever help (never hurt) a
// selection aiming to minimize fees.
func (s *Selector) SelectAllEffective(feerate FeeRate) {
	for _, ic := range s.Unselected() {
		if ic.Candidate.EffectiveValue(feerate) > 0 {
			s.selected[ic.Index] = struct{}{}
		}
	}
}

// SelectNext selects the first unselected, unbanned candidate in current
// order, reporting whether it made progress.
func (s *Selector) SelectNext() bool {
	for _, ic := range s.Unselected() {
		s.selected[ic.Index] = struct{}{}
		return true
	}
	return false
}

// SelectUntil repeatedly calls SelectNext until done returns true or there
// are no more candidates to select, returning whether done was satisfied.
func (s *Selector) SelectUntil(done func() bool) bool {
	if done() {
		return true
	}
	for s.SelectNext() {
		if done() {
			return true
		}
	}
	return false
}

// SelectUntilTargetMet selects candidates in iteration order until the
// selection's value is enough to cover target with no drain, or returns
// InsufficientFunds describing the shortfall at the fully-selected state.
func (s *Selector) SelectUntilTargetMet(target Target) error {
	ok := s.SelectUntil(func() bool {
		return s.IsTargetMet(target)
	})
	if !ok {
		return &InsufficientFunds{Missing: s.Missing(target)}
	}
	return nil
}

// InputValue returns the sum of the values of the selected candidates.
func (s *Selector) InputValue() int64 {
	var total int64
	for i := range s.selected {
		total += s.candidates[i].Value
	}
	return total
}

// InputWeight returns the total weight of the selected inputs, including
// the input-count varint and segwit marker/flag bookkeeping: if any
// selected candidate is segwit, the whole transaction is segwit, which
// adds a 2-weight-unit witness header/flag and charges every non-segwit
// selected candidate 1 extra weight unit for its (empty) witness-length
// field.
func (s *Selector) InputWeight() uint32 {
	var anySegwit bool
	var inputCountTotal uint64
	for i := range s.selected {
		c := s.candidates[i]
		if c.IsSegwit {
			anySegwit = true
		}
		inputCountTotal += uint64(c.InputCount)
	}

	var sumAdjusted uint32
	for i := range s.selected {
		c := s.candidates[i]
		w := c.Weight
		if anySegwit && !c.IsSegwit {
			w++
		}
		sumAdjusted += w
	}

	var witnessHeaderExtra uint32
	if anySegwit {
		witnessHeaderExtra = 2
	}
	return varintSize(inputCountTotal)*4 + sumAdjusted + witnessHeaderExtra
}

// Weight returns the total weight of the funding transaction given a target
// and a (possibly none) drain. Only drain.Weights is consulted; drain.Value
// doesn't affect weight.
func (s *Selector) Weight(target Target, drain Drain) uint32 {
	return s.baseWeight + s.InputWeight() + target.Outputs.OutputWeightWithDrain(drain.Weights)
}

// Fee returns the fee paid by the funding transaction: whatever's left of
// the input value after paying the target's outputs and the drain. May be
// negative if the selection doesn't cover the target.
func (s *Selector) Fee(target Target, drain Drain) int64 {
	return s.InputValue() - target.Value() - drain.Value
}

// ImpliedFeeFromFeerate returns the minimum fee target's feerate requires
// of a transaction with this weight (target, drain).
func (s *Selector) ImpliedFeeFromFeerate(target Target, drain Drain) int64 {
	weight := s.Weight(target, drain)
	return target.Fee.Rate.ImpliedFeeWU(uint64(weight))
}

// ImpliedFee returns the fee this selection must pay to satisfy target: the
// larger of the fee target's feerate requires and, if target carries a
// replacement constraint, the minimum fee RBF rule 4 requires.
func (s *Selector) ImpliedFee(target Target, drain Drain) int64 {
	fee := s.ImpliedFeeFromFeerate(target, drain)
	if target.Fee.Replace != nil {
		weight := s.Weight(target, drain)
		if replaceFee := target.Fee.Replace.MinFeeToDoReplacement(weight); replaceFee > fee {
			fee = replaceFee
		}
	}
	return fee
}

// RateExcess returns how much value is left over after paying the target,
// the drain, and the minimum fee the target's feerate requires, ignoring
// any replacement constraint.
func (s *Selector) RateExcess(target Target, drain Drain) int64 {
	return s.Fee(target, drain) - s.ImpliedFeeFromFeerate(target, drain)
}

// ReplacementExcess is like RateExcess but measured against the minimum fee
// RBF rule 4 requires. It equals RateExcess when target has no replacement
// constraint.
func (s *Selector) ReplacementExcess(target Target, drain Drain) int64 {
	if target.Fee.Replace == nil {
		return s.RateExcess(target, drain)
	}
	weight := s.Weight(target, drain)
	minFee := target.Fee.Replace.MinFeeToDoReplacement(weight)
	return s.Fee(target, drain) - minFee
}

// Excess returns the binding excess: the smaller of RateExcess and
// ReplacementExcess. The selection satisfies target iff Excess ≥ 0.
func (s *Selector) Excess(target Target, drain Drain) int64 {
	re := s.RateExcess(target, drain)
	rep := s.ReplacementExcess(target, drain)
	if rep < re {
		return rep
	}
	return re
}

// Missing returns the additional input value that would need to be found to
// meet target with no drain, or 0 if target is already met.
func (s *Selector) Missing(target Target) int64 {
	excess := s.Excess(target, NoDrain)
	if excess >= 0 {
		return 0
	}
	return -excess
}

// IsTargetMet reports whether the current selection meets target with no
// drain output.
func (s *Selector) IsTargetMet(target Target) bool {
	return s.Excess(target, NoDrain) >= 0
}

// IsTargetMetWithDrain reports whether the current selection meets target
// once drain is added.
func (s *Selector) IsTargetMetWithDrain(target Target, drain Drain) bool {
	return s.Excess(target, drain) >= 0
}

// IsSelectionPossible reports whether target could ever be met by some
// selection drawn from the full candidate pool, by greedily adding every
// remaining candidate with positive effective value at target's feerate
// and checking whether that's enough.
func (s *Selector) IsSelectionPossible(target Target) bool {
	clone := s.Clone()
	clone.SelectAllEffective(target.Fee.Rate)
	return clone.IsTargetMet(target)
}

// ImpliedFeerate returns the feerate the funding transaction pays given
// target and drain, or ok=false if the fee is negative or the weight is
// zero.
func (s *Selector) ImpliedFeerate(target Target, drain Drain) (feerate FeeRate, ok bool) {
	weight := s.Weight(target, drain)
	fee := s.Fee(target, drain)
	if fee < 0 || weight == 0 {
		return FeeRate{}, false
	}
	return FeeRateFromWU(fee, weight), true
}

// EffectiveValue returns the selected value minus the (rounded-up) fee the
// selected inputs alone would cost at feerate.
func (s *Selector) EffectiveValue(feerate FeeRate) int64 {
	fee := feerate.ImpliedFeeWU(uint64(s.InputWeight()))
	return s.InputValue() - fee
}

// InputWaste returns the cost of the currently selected inputs measured at
// longTermFeerate: the weight they'll cost to eventually spend onward,
// valued at a feerate that isn't necessarily today's.
func (s *Selector) InputWaste(longTermFeerate FeeRate) float32 {
	return float32(s.InputWeight()) * longTermFeerate.SatPerWU()
}

// Waste returns the overall waste metric of the current selection: the
// input cost relative to the long-term feerate, plus either the cost of
// producing and eventually spending drain (if present) or excessDiscount
// times the non-negative excess paid as fee instead.
func (s *Selector) Waste(target Target, longTermFeerate FeeRate, drain Drain, excessDiscount float32) float32 {
	rateDiff := target.Fee.Rate.SatPerWU() - longTermFeerate.SatPerWU()
	inputCost := float32(s.InputWeight()) * rateDiff
	if drain.IsSome() {
		return inputCost + drain.Weights.Waste(target.Fee.Rate, longTermFeerate, target.Outputs.NOutputs)
	}
	excess := s.Excess(target, NoDrain)
	if excess < 0 {
		excess = 0
	}
	return inputCost + excessDiscount*float32(excess)
}

// DrainValue decides whether changePolicy would produce a drain output
// given the current selection, and with what value, by computing the
// excess a selection would have if a drain output (with zero value, to
// start) were already added, and handing that excess to the policy.
func (s *Selector) DrainValue(target Target, changePolicy ChangePolicy) Drain {
	guess := Drain{Weights: changePolicy.DrainWeights, Value: 0}
	excess := s.Excess(target, guess)
	return changePolicy.Drain(excess)
}

func (s *Selector) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for k, i := range s.candidateOrder {
		if k > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d", i)
		switch {
		case s.IsSelected(i):
			b.WriteString("✔")
		case s.IsBanned(i):
			b.WriteString("✘")
		default:
			b.WriteString("☐")
		}
	}
	b.WriteByte(']')
	return b.String()
}
