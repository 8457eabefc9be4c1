package coinselect

import "github.com/btcsuite/btcd/btcutil"

// These helpers convert the plain int64 satoshi fields used throughout the
// arithmetic paths (Candidate.Value, TargetOutputs.ValueSum, Drain.Value,
// Replace.Fee) into btcutil.Amount at the boundary, for display and
// interop with other btcsuite-based code. The fields themselves stay
// int64: Amount is a formatting/interop convenience, not the type used in
// the selector's hot arithmetic.

// Amount returns c.Value as a btcutil.Amount.
func (c Candidate) Amount() btcutil.Amount { return btcutil.Amount(c.Value) }

// Amount returns t.ValueSum as a btcutil.Amount.
func (t TargetOutputs) Amount() btcutil.Amount { return btcutil.Amount(t.ValueSum) }

// Amount returns d.Value as a btcutil.Amount.
func (d Drain) Amount() btcutil.Amount { return btcutil.Amount(d.Value) }

// Amount returns r.Fee as a btcutil.Amount.
func (r Replace) Amount() btcutil.Amount { return btcutil.Amount(r.Fee) }
