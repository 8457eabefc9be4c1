package coinselect

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
)

// InsufficientFunds is returned when the selected (or selectable)
// candidates cannot meet a target, even before considering change.
type InsufficientFunds struct {
	// Missing is the additional value, in satoshis, that would be needed
	// to meet the target.
	Missing int64
}

// Amount returns e.Missing as a btcutil.Amount.
func (e *InsufficientFunds) Amount() btcutil.Amount { return btcutil.Amount(e.Missing) }

func (e *InsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds: missing %s to reach target", e.Amount())
}

// NoBnbSolution is returned by RunBnB when the branch-and-bound search
// exhausts its candidate space without finding a selection that satisfies
// the metric being optimized.
type NoBnbSolution struct {
	// MaxRounds is the round budget the search was given.
	MaxRounds uint32
	// Rounds is the number of rounds the search actually performed before
	// giving up (equal to MaxRounds unless the queue drained first).
	Rounds uint32
}

func (e *NoBnbSolution) Error() string {
	return fmt.Sprintf("no bnb solution found after %d/%d rounds", e.Rounds, e.MaxRounds)
}
