package coinselect

import "testing"

func TestFeeRateFromSatPerVB(t *testing.T) {
	fr := FeeRateFromSatPerVB(4.0)
	if got := fr.SatPerWU(); got != 1.0 {
		t.Fatalf("SatPerWU() = %v, want 1.0", got)
	}
	if got := fr.SatPerVB(); got != 4.0 {
		t.Fatalf("SatPerVB() = %v, want 4.0", got)
	}
}

func TestDefaultMinRelayFeeRate(t *testing.T) {
	if got := DefaultMinRelayFeeRate.SatPerVB(); got != 1.0 {
		t.Fatalf("DefaultMinRelayFeeRate.SatPerVB() = %v, want 1.0", got)
	}
}

func TestFeeRateImpliedFee(t *testing.T) {
	fr := FeeRateFromSatPerVB(1.0)
	// 400 wu = 100 vbytes, at 1 sat/vB that's 100 sats.
	if got := fr.ImpliedFee(400); got != 100 {
		t.Fatalf("ImpliedFee(400) = %d, want 100", got)
	}
}

func TestFeeRateImpliedFeeRoundsUp(t *testing.T) {
	fr := FeeRateFromSatPerVB(1.0)
	// 401 wu = 100.25 vbytes, rounds up to 101 vbytes.
	if got := fr.ImpliedFee(401); got != 101 {
		t.Fatalf("ImpliedFee(401) = %d, want 101", got)
	}
}

func TestImpliedFeeSingleWeightUnit(t *testing.T) {
	fr := FeeRateFromSatPerVB(1.0)
	// 1 wu at 0.25 sat/wu rounds up to a whole satoshi.
	if got := fr.ImpliedFeeWU(1); got != 1 {
		t.Fatalf("ImpliedFeeWU(1) = %d, want 1", got)
	}
	// Via vbytes: 1 wu rounds up to 1 vbyte first, then 1 vbyte at
	// 1 sat/vB is 1 sat.
	if got := fr.ImpliedFee(1); got != 1 {
		t.Fatalf("ImpliedFee(1) = %d, want 1", got)
	}
}

func TestFeeRateAddSub(t *testing.T) {
	a := FeeRateFromSatPerVB(2.0)
	b := FeeRateFromSatPerVB(1.0)
	sum := a.Add(b)
	if got := sum.SatPerVB(); got != 3.0 {
		t.Fatalf("Add: SatPerVB() = %v, want 3.0", got)
	}
	diff := a.Sub(b)
	if got := diff.SatPerVB(); got != 1.0 {
		t.Fatalf("Sub: SatPerVB() = %v, want 1.0", got)
	}
}

func TestFeeRateSubNegativePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Sub to panic on a negative result")
		}
	}()
	a := FeeRateFromSatPerVB(1.0)
	b := FeeRateFromSatPerVB(2.0)
	a.Sub(b)
}

func TestFeeRateCompare(t *testing.T) {
	a := FeeRateFromSatPerVB(1.0)
	b := FeeRateFromSatPerVB(2.0)
	if !a.Less(b) {
		t.Fatal("expected a < b")
	}
	if a.Compare(b) != -1 {
		t.Fatalf("Compare() = %d, want -1", a.Compare(b))
	}
}
