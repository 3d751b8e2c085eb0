package core

import "math/bits"

// FP3264 is an unsigned 32.64 fixed-point ratio:
//
//	Int + Frac32/2^32 + Frac64/2^64
//
// Conversion factors are derived once with Ratio; every later conversion is a
// single multiply.
type FP3264 struct {
	Int    uint32
	Frac32 uint32
	Frac64 uint32
}

// Ratio returns dividend/divisor, truncated at 2^-64. It panics on a zero
// divisor, like integer division.
func Ratio(dividend, divisor uint32) FP3264 {
	if divisor == 0 {
		panic("core: fixed point ratio with zero divisor")
	}
	num := uint64(dividend) << 32
	q := num / uint64(divisor)
	rem := num % uint64(divisor)
	return FP3264{
		Int:    uint32(q >> 32),
		Frac32: uint32(q),
		Frac64: uint32((rem << 32) / uint64(divisor)),
	}
}

// MulU64 returns a*f rounded to the nearest integer (halves round up). The
// result wraps modulo 2^64.
func (f FP3264) MulU64(a uint64) uint64 {
	frac := uint64(f.Frac32)<<32 | uint64(f.Frac64)
	hi, lo := bits.Mul64(a, frac)
	return a*uint64(f.Int) + hi + lo>>63
}

// MulU32 is MulU64 truncated to 32 bits.
func (f FP3264) MulU32(a uint64) uint32 {
	return uint32(f.MulU64(a))
}

// IsZero reports whether the factor has not been computed yet.
func (f FP3264) IsZero() bool {
	return f == FP3264{}
}
