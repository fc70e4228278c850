// Package mathx holds the small generic integer helpers the drivers share
// for divisor and prescaler arithmetic.
package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to the register range [lo, hi]. lo must not exceed hi.
func Clamp[T constraints.Integer](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

// AbsDiff returns |a-b| without underflow for unsigned types.
func AbsDiff[T constraints.Integer](a, b T) T {
	if a > b {
		return a - b
	}
	return b - a
}
