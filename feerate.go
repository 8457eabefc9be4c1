package coinselect

import (
	"fmt"
	"math"

	"github.com/rawblock/coinselect-engine/ordfloat"
)

// FeeRate is a non-negative feerate, stored internally as satoshis per
// weight unit (spwu).
type FeeRate struct {
	spwu ordfloat.Float32
}

// ZeroFeeRate is a feerate of zero.
var ZeroFeeRate = FeeRate{spwu: ordfloat.Zero}

// DefaultMinRelayFeeRate is the default minimum relay feerate Bitcoin Core
// uses: 1 sat/vB, expressed as 0.25 sat/wu.
var DefaultMinRelayFeeRate = FeeRateFromSatPerVB(1.0)

// DefaultRBFIncrementalRelayFeeRate is the default incremental relay
// feerate used to satisfy RBF rule 4: 1 sat/vB.
var DefaultRBFIncrementalRelayFeeRate = FeeRateFromSatPerVB(1.0)

func newFeeRateChecked(value float32) FeeRate {
	if value != value || math.IsInf(float64(value), 0) {
		panic("coinselect: feerate must be finite")
	}
	if value < 0 {
		panic("coinselect: feerate must not be negative")
	}
	return FeeRate{spwu: ordfloat.New(value)}
}

// FeeRateFromBTCPerKVB builds a FeeRate from a rate expressed in BTC per
// thousand vbytes.
func FeeRateFromBTCPerKVB(btcPerKVB float32) FeeRate {
	return newFeeRateChecked(btcPerKVB * 1e5 / 4.0)
}

// FeeRateFromSatPerVB builds a FeeRate from a rate expressed in
// satoshis per vbyte.
func FeeRateFromSatPerVB(satPerVB float32) FeeRate {
	return newFeeRateChecked(satPerVB / 4.0)
}

// FeeRateFromSatPerWU builds a FeeRate from a rate expressed directly in
// satoshis per weight unit.
func FeeRateFromSatPerWU(satPerWU float32) FeeRate {
	return newFeeRateChecked(satPerWU)
}

// FeeRateFromWU derives a FeeRate from a fee and a weight in weight units.
func FeeRateFromWU(fee int64, wu uint32) FeeRate {
	return FeeRateFromSatPerWU(float32(fee) / float32(wu))
}

// FeeRateFromVB derives a FeeRate from a fee and a size in vbytes.
func FeeRateFromVB(fee int64, vbytes uint32) FeeRate {
	return FeeRateFromSatPerVB(float32(fee) / float32(vbytes))
}

// SatPerVB returns the feerate expressed as satoshis per vbyte.
func (f FeeRate) SatPerVB() float32 { return f.spwu.Float32Val() * 4.0 }

// SatPerWU returns the feerate expressed as satoshis per weight unit.
func (f FeeRate) SatPerWU() float32 { return f.spwu.Float32Val() }

// ImpliedFee returns the fee a transaction of the given weight should pay
// to satisfy this feerate, where the rate is applied to the rounded-up
// vbyte count derived from the weight.
func (f FeeRate) ImpliedFee(txWeight uint64) int64 {
	vb := math.Ceil(float64(txWeight) / 4.0)
	return int64(math.Ceil(vb * float64(f.SatPerVB())))
}

// ImpliedFeeWU is like ImpliedFee, but applies the feerate directly to the
// weight rather than converting to vbytes first.
func (f FeeRate) ImpliedFeeWU(txWeight uint64) int64 {
	return int64(math.Ceil(float64(txWeight) * float64(f.SatPerWU())))
}

// Add returns f + o.
func (f FeeRate) Add(o FeeRate) FeeRate {
	return FeeRate{spwu: f.spwu.Add(o.spwu)}
}

// Sub returns f - o. The result must not be negative; this is the caller's
// responsibility to guarantee.
func (f FeeRate) Sub(o FeeRate) FeeRate {
	return newFeeRateChecked(f.spwu.Float32Val() - o.spwu.Float32Val())
}

// Compare orders feerates by their sat/wu value.
func (f FeeRate) Compare(o FeeRate) int { return f.spwu.Compare(o.spwu) }

// Less reports whether f is a strictly lower feerate than o.
func (f FeeRate) Less(o FeeRate) bool { return f.spwu.Less(o.spwu) }

func (f FeeRate) String() string {
	return fmt.Sprintf("%.4f sat/wu", f.SatPerWU())
}
