package core

import (
	"math/big"
	"testing"
)

// exact returns round(a*num/den) with big integers.
func exact(a uint64, num, den uint32) uint64 {
	n := new(big.Int).SetUint64(a)
	n.Mul(n, big.NewInt(int64(num)))
	n.Mul(n, big.NewInt(2))
	n.Add(n, big.NewInt(int64(den)))
	n.Div(n, big.NewInt(2*int64(den)))
	return n.Uint64()
}

func TestRatioComponents(t *testing.T) {
	f := Ratio(6750000, 1000)
	if f.Int != 6750 || f.Frac32 != 0 || f.Frac64 != 0 {
		t.Errorf("Ratio(6750000, 1000) = %+v, expected integral 6750", f)
	}

	f = Ratio(1, 2)
	if f.Int != 0 || f.Frac32 != 0x80000000 || f.Frac64 != 0 {
		t.Errorf("Ratio(1, 2) = %+v", f)
	}

	f = Ratio(1, 3)
	if f.Frac32 != 0x55555555 || f.Frac64 != 0x55555555 {
		t.Errorf("Ratio(1, 3) = %+v", f)
	}
}

func TestMulMatchesExactRounding(t *testing.T) {
	tests := []struct {
		num, den uint32
		inputs   []uint64
	}{
		{1000, GPTFreq, []uint64{0, 1, 16, 17, 32999, 33000, 33001, 0xFFFFFFFF}},
		{1000 * 1000, GPTFreq, []uint64{0, 1, 33, 33000, 123456789, 0xFFFFFFFF}},
		{6750000, 1000, []uint64{0, 1, 10, 1000, 636291}},
		{32768, 1000, []uint64{1, 3, 7, 1000, 131071}},
		{19200000, 1000, []uint64{1, 2, 100000}},
	}

	for _, tt := range tests {
		f := Ratio(tt.num, tt.den)
		for _, a := range tt.inputs {
			got := f.MulU64(a)
			want := exact(a, tt.num, tt.den)
			if got != want {
				t.Errorf("%d * %d/%d = %d, expected %d", a, tt.num, tt.den, got, want)
			}
		}
	}
}

func TestMulU32Truncates(t *testing.T) {
	f := Ratio(1<<16, 1)
	if got := f.MulU32(1 << 16); got != 0 {
		t.Errorf("MulU32 should wrap at 32 bits, got %#x", got)
	}
	if got := f.MulU64(1 << 16); got != 1<<32 {
		t.Errorf("MulU64(1<<16) = %#x", got)
	}
}

func TestRatioZeroDivisorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Ratio with zero divisor did not panic")
		}
	}()
	Ratio(1, 0)
}

func TestIsZero(t *testing.T) {
	var f FP3264
	if !f.IsZero() {
		t.Error("zero value should report IsZero")
	}
	if Ratio(1, 1000).IsZero() {
		t.Error("computed ratio should not report IsZero")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want int
	}{
		{0, 1, 4, 1},
		{2, 1, 4, 2},
		{7, 1, 4, 4},
		{7, 4, 1, 4}, // reversed bounds
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}
