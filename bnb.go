package coinselect

import (
	"container/heap"
	"log"

	"github.com/rawblock/coinselect-engine/ordfloat"
)

// Metric plugs a scoring function into the branch-and-bound driver. Score
// evaluates a complete (or complete-enough) selection; Bound computes an
// admissible lower bound on the best score reachable from a given selection
// and everything it could still select. An inadmissible bound (one that
// overestimates how good a descendant could score) makes the search unsound:
// it can prune away the true optimum.
type Metric interface {
	// Score returns the metric's value for the current selection against
	// target, or ok=false if the selection doesn't yet represent a valid,
	// complete candidate for this metric (e.g. the target isn't met).
	Score(s *Selector, target Target) (score ordfloat.Float32, ok bool)

	// Bound returns a lower bound on the best score any descendant of s
	// (reached only by selecting currently-unselected, currently-unbanned
	// candidates) could achieve, or ok=false if the subtree rooted at s is
	// provably infeasible for this metric. The driver never explores a
	// branch whose Bound reports ok=false: it is pruned outright, not
	// merely deprioritized.
	Bound(s *Selector, target Target) (bound ordfloat.Float32, ok bool)

	// RequiresOrderingByDescendingValuePWU reports whether this metric's
	// Bound is only admissible when candidates are visited in descending
	// value-per-weight-unit order.
	RequiresOrderingByDescendingValuePWU() bool
}

// branch is one node of the branch-and-bound search tree: a Selector state
// together with the lower bound computed for it when it was pushed, and
// whether it was reached by excluding (banning) rather than including a
// candidate.
type branch struct {
	selector    *Selector
	lowerBound  ordfloat.Float32
	isExclusion bool
}

// branchQueue is a min-heap over branches ordered by ascending lower bound,
// with inclusion branches preferred over exclusion branches on ties. This
// mirrors exploring the most promising (and, tie-broken, least restrictive)
// branch first, the way a best-first branch-and-bound search should.
type branchQueue []*branch

func (q branchQueue) Len() int { return len(q) }
func (q branchQueue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.lowerBound != b.lowerBound {
		return a.lowerBound.Less(b.lowerBound)
	}
	return !a.isExclusion && b.isExclusion
}
func (q branchQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *branchQueue) Push(x any)   { *q = append(*q, x.(*branch)) }
func (q *branchQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// Options configures a branch-and-bound run.
type Options struct {
	// MaxRounds caps the number of branches popped from the queue before
	// giving up. Zero means use DefaultMaxRounds.
	MaxRounds uint32
	// Logger, if non-nil, receives RunBnB's trace: the target when the
	// search starts, one line per round describing the branch being
	// explored, and one line per new best selection. BnbSolutions does not
	// log. Left nil by default: tracing every round is useful when
	// debugging a metric's bound, not in ordinary use.
	Logger *log.Logger
}

// DefaultMaxRounds bounds a RunBnB call that doesn't specify MaxRounds.
// It's generous enough for realistic wallets (a few hundred candidates)
// while still guaranteeing termination.
const DefaultMaxRounds uint32 = 100_000

// RunBnB runs a best-first branch-and-bound search starting from root,
// looking for the selection that minimizes metric's score while meeting
// target. It returns the best selector found, or a *NoBnbSolution error if
// the search space was exhausted (or MaxRounds reached) without finding any
// selection metric considers valid.
//
// root is not mutated; RunBnB always works on clones.
func RunBnB(root *Selector, target Target, metric Metric, opts Options) (*Selector, error) {
	maxRounds := opts.MaxRounds
	if maxRounds == 0 {
		maxRounds = DefaultMaxRounds
	}

	start := root.Clone()
	if metric.RequiresOrderingByDescendingValuePWU() {
		start.SortCandidatesByDescendingValuePWU()
	}

	if opts.Logger != nil {
		opts.Logger.Printf("bnb: funding %s at %s, max %d rounds",
			target.Outputs.Amount(), target.Fee.Rate, maxRounds)
		if r := target.Fee.Replace; r != nil {
			opts.Logger.Printf("bnb: replacing a transaction that paid %s", r.Amount())
		}
	}

	pq := &branchQueue{}
	heap.Init(pq)
	if rootBound, ok := metric.Bound(start, target); ok {
		heap.Push(pq, &branch{selector: start, lowerBound: rootBound})
	}

	var best *Selector
	var bestScore ordfloat.Float32
	haveBest := false
	var rounds uint32

	for pq.Len() > 0 && rounds < maxRounds {
		rounds++
		b := heap.Pop(pq).(*branch)

		if opts.Logger != nil {
			opts.Logger.Printf("bnb: round=%d queue=%d lower_bound=%s exclusion=%v selected=%v",
				rounds, pq.Len(), b.lowerBound, b.isExclusion, b.selector.SelectedIndices())
		}

		if haveBest && !b.lowerBound.Less(bestScore) {
			continue
		}

		// Exclusion nodes share their parent's selection, which was
		// already scored when the parent was popped.
		if !b.isExclusion {
			if score, ok := metric.Score(b.selector, target); ok {
				if !haveBest || score.Less(bestScore) {
					bestScore = score
					haveBest = true
					best = b.selector
					if opts.Logger != nil {
						opts.Logger.Printf("bnb: round=%d new best score=%s inputs=%v",
							rounds, score, b.selector.Selected())
					}
				}
			}
		}

		if b.selector.IsExhausted() {
			continue
		}
		unselected := b.selector.Unselected()
		if len(unselected) == 0 {
			continue
		}
		include, exclude := branchChildren(b.selector, unselected)
		pushBranch(pq, metric, target, include, false, haveBest, bestScore)
		pushBranch(pq, metric, target, exclude, true, haveBest, bestScore)
	}

	if best == nil {
		return nil, &NoBnbSolution{MaxRounds: maxRounds, Rounds: rounds}
	}
	return best, nil
}

// pushBranch pushes s onto pq as a new branch, unless metric.Bound reports
// the subtree rooted at s is infeasible (ok=false, pruned outright) or
// already can't beat the current best (haveBest && bound >= bestScore).
func pushBranch(pq *branchQueue, metric Metric, target Target, s *Selector, isExclusion, haveBest bool, bestScore ordfloat.Float32) {
	bound, ok := metric.Bound(s, target)
	if !ok {
		return
	}
	if haveBest && !bound.Less(bestScore) {
		return
	}
	heap.Push(pq, &branch{selector: s, lowerBound: bound, isExclusion: isExclusion})
}

// BnbSolutions runs the same search as RunBnB but calls yield every time a
// strictly better-scoring selection is found, in order of discovery, rather
// than only returning the final best. yield returning false stops the
// search early. It's primarily useful for tests and diagnostics that want
// to see the search converge.
func BnbSolutions(root *Selector, target Target, metric Metric, opts Options, yield func(s *Selector, score ordfloat.Float32) bool) {
	maxRounds := opts.MaxRounds
	if maxRounds == 0 {
		maxRounds = DefaultMaxRounds
	}

	start := root.Clone()
	if metric.RequiresOrderingByDescendingValuePWU() {
		start.SortCandidatesByDescendingValuePWU()
	}

	pq := &branchQueue{}
	heap.Init(pq)
	if rootBound, ok := metric.Bound(start, target); ok {
		heap.Push(pq, &branch{selector: start, lowerBound: rootBound})
	}

	var bestScore ordfloat.Float32
	haveBest := false
	var rounds uint32

	for pq.Len() > 0 && rounds < maxRounds {
		rounds++
		b := heap.Pop(pq).(*branch)

		if haveBest && !b.lowerBound.Less(bestScore) {
			continue
		}

		// Exclusion nodes share their parent's selection, which was
		// already scored when the parent was popped.
		if !b.isExclusion {
			if score, ok := metric.Score(b.selector, target); ok {
				if !haveBest || score.Less(bestScore) {
					bestScore = score
					haveBest = true
					if !yield(b.selector, score) {
						return
					}
				}
			}
		}

		if b.selector.IsExhausted() {
			continue
		}
		unselected := b.selector.Unselected()
		if len(unselected) == 0 {
			continue
		}
		include, exclude := branchChildren(b.selector, unselected)
		pushBranch(pq, metric, target, include, false, haveBest, bestScore)
		pushBranch(pq, metric, target, exclude, true, haveBest, bestScore)
	}
}

// branchChildren builds the two children of the node pivoting on the first
// candidate in unselected: one with the pivot selected, one with the pivot
// banned along with every immediately-following candidate in unselected
// sharing the pivot's (value, weight) pair. Banning the value-tied run
// alongside the pivot prunes symmetric permutations of duplicate candidates
// that would otherwise make the tree explode without changing which value
// is reachable.
func branchChildren(s *Selector, unselected []IndexedCandidate) (include, exclude *Selector) {
	pivot := unselected[0]

	include = s.Clone()
	include.Select(pivot.Index)

	exclude = s.Clone()
	exclude.Ban(pivot.Index)
	for _, ic := range unselected[1:] {
		if ic.Candidate.Value != pivot.Candidate.Value || ic.Candidate.Weight != pivot.Candidate.Weight {
			break
		}
		exclude.Ban(ic.Index)
	}
	return include, exclude
}
