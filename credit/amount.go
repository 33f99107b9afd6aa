// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package credit

import (
	"math"
	"strconv"
)

// Amount represents the base monetary unit of a carbon credit batch.  A
// single Amount is one thousandth of a tonne of CO2 equivalent (1 kg),
// which keeps all ledger arithmetic in integers while still supporting
// the fractional credit quantities produced by verification.
type Amount int64

// KgPerTonne is the number of base amount units in one tonne of CO2e.
const KgPerTonne = 1000

// round converts a floating point number, which may or may not be
// representable as an integer, to the Amount integer type by rounding to
// the nearest integer.  This is performed by adding or subtracting 0.5
// depending on the sign, and relying on integer truncation to round the
// value to the nearest Amount.
func round(f float64) Amount {
	if f < 0 {
		return Amount(f - 0.5)
	}
	return Amount(f + 0.5)
}

// NewAmount creates an Amount from a floating point value representing
// an amount of credits in tonnes of CO2e.  NewAmount errors if the value
// is NaN or +-Infinity, but does not enforce any particular upper bound
// as the total mintable quantity is a policy decision made at
// verification time.
func NewAmount(tonnes float64) (Amount, error) {
	// The amount is only considered invalid if it cannot be represented
	// as an integer type.  This may happen if f is NaN or +-Infinity.
	switch {
	case math.IsNaN(tonnes):
		fallthrough
	case math.IsInf(tonnes, 1):
		fallthrough
	case math.IsInf(tonnes, -1):
		return 0, ruleError(ErrInvalidAmount, "invalid credit amount")
	}

	return round(tonnes * KgPerTonne), nil
}

// ToTonnes converts the amount to a floating point number of tonnes of
// CO2e.
func (a Amount) ToTonnes() float64 {
	return float64(a) / KgPerTonne
}

// String returns the amount formatted as a decimal number of tonnes of
// CO2e with the unit suffix.
func (a Amount) String() string {
	return strconv.FormatFloat(a.ToTonnes(), 'f', -1, 64) + " tCO2e"
}
