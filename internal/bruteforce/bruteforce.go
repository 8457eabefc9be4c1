// Package bruteforce exhaustively enumerates candidate subsets to serve as
// a ground-truth oracle for tests: anything the branch-and-bound driver
// finds should never beat, and should usually match, what this package
// finds by brute force.
//
// A guardrail caps the input size, since the enumeration is exponential
// and only ever meant for test-sized candidate pools.
package bruteforce

import (
	"log"

	coinselect "github.com/rawblock/coinselect-engine"
	"github.com/rawblock/coinselect-engine/ordfloat"
)

// MaxCandidates guards against the 2^n blowup of exhaustive enumeration.
const MaxCandidates = 24

// Best enumerates every subset of candidates and returns the selector
// minimizing metric's score among subsets where Score reports ok, along
// with whether any such subset exists. It returns (nil, false) if n exceeds
// MaxCandidates.
func Best(candidates []coinselect.Candidate, baseWeight uint32, target coinselect.Target, metric coinselect.Metric) (*coinselect.Selector, bool) {
	n := len(candidates)
	if n > MaxCandidates {
		log.Printf("bruteforce: %d candidates exceeds guardrail of %d, skipping exhaustive search", n, MaxCandidates)
		return nil, false
	}

	var best *coinselect.Selector
	var bestScore ordfloat.Float32
	haveBest := false

	for mask := 0; mask < (1 << uint(n)); mask++ {
		s := coinselect.NewSelector(candidates, baseWeight)
		for i := 0; i < n; i++ {
			if mask&(1<<uint(i)) != 0 {
				s.Select(i)
			}
		}
		score, ok := metric.Score(s, target)
		if !ok {
			continue
		}
		if !haveBest || score.Less(bestScore) {
			bestScore = score
			haveBest = true
			best = s
		}
	}
	return best, haveBest
}
