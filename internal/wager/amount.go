package wager

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
)

// Amount is a quantity of currency in indivisible units.
type Amount uint64

// MaxAmount is the largest representable Amount.
const MaxAmount = Amount(math.MaxUint64)

// CheckedAdd returns a+b, or false if the sum does not fit in an Amount.
func CheckedAdd(a, b Amount) (Amount, bool) {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		return 0, false
	}
	return Amount(sum), true
}

// CheckedSub returns a-b, or false if b > a.
func CheckedSub(a, b Amount) (Amount, bool) {
	diff, borrow := bits.Sub64(uint64(a), uint64(b), 0)
	if borrow != 0 {
		return 0, false
	}
	return Amount(diff), true
}

// String formats the amount in base 10.
func (a Amount) String() string {
	return strconv.FormatUint(uint64(a), 10)
}

// ParseAmount parses a base-10 amount. Signs, fractions and values above
// MaxAmount are rejected.
func ParseAmount(s string) (Amount, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Amount(v), nil
}
