// Package prorate splits an amount across weighted parts with integer
// truncation. Nothing is redistributed: the sum of the shares may fall short of
// the amount by at most len(parts)-1 units.
package prorate

import "math/bits"

// Part is one participant and its weight.
type Part struct {
	Key    string
	Weight uint64
}

// Share is what one participant receives.
type Share struct {
	Key    string
	Amount uint64
}

// Allocate returns floor(weight * amount / total) for every part, in the
// order given. A zero total yields zero shares. Weights above total are
// clamped to total so no share exceeds amount.
func Allocate(parts []Part, total, amount uint64) []Share {
	out := make([]Share, len(parts))
	for i, p := range parts {
		out[i] = Share{Key: p.Key, Amount: Portion(p.Weight, total, amount)}
	}
	return out
}

// Portion is floor(weight * amount / total) computed without overflow.
func Portion(weight, total, amount uint64) uint64 {
	if total == 0 || weight == 0 || amount == 0 {
		return 0
	}
	if weight > total {
		weight = total
	}
	hi, lo := bits.Mul64(weight, amount)
	// hi < total holds because weight <= total, so Div64 cannot panic.
	q, _ := bits.Div64(hi, lo, total)
	return q
}

// Sum adds up the shares.
func Sum(shares []Share) uint64 {
	var s uint64
	for _, sh := range shares {
		s += sh.Amount
	}
	return s
}
