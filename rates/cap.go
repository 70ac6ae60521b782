// Package rates converts fiat funding targets into settlement-currency
// repayment caps at deployment time. The resulting cap is written once into
// a ledger and never revisited, regardless of later rate movement.
package rates

import (
	"fmt"
	"math/big"
)

// MultiplierDenominator is the cap multiplier scale: 12000 means 120%.
const MultiplierDenominator uint64 = 10000

// MaxSettlementDecimals bounds the settlement currency precision.
const MaxSettlementDecimals = 18

// Rate is an externally supplied fiat/settlement conversion quote.
type Rate struct {
	// FiatPerUnit is the price of one whole settlement unit expressed in
	// smallest fiat units (e.g. paise per coin).
	FiatPerUnit uint64

	// SettlementDecimals is the number of decimal places in the settlement
	// currency (smallest units per whole unit = 10^SettlementDecimals).
	SettlementDecimals uint32
}

// Valid reports whether the rate can be used for conversion.
func (r Rate) Valid() bool {
	return r.FiatPerUnit > 0 && r.SettlementDecimals <= MaxSettlementDecimals
}

// ComputeCap converts a fiat funding target into a repayment cap in smallest
// settlement units:
//
//	cap = targetFiat * multiplierBps / 10000 / rate, floored
//
// carried out in arbitrary precision so no intermediate can overflow. The
// multiplier is in basis points of the target (12000 = 120%).
func ComputeCap(targetFiat uint64, multiplierBps uint64, rate Rate) (uint64, error) {
	if !rate.Valid() {
		return 0, fmt.Errorf("%w: fiat-per-unit %d, decimals %d",
			ErrInvalidRate, rate.FiatPerUnit, rate.SettlementDecimals)
	}
	if multiplierBps == 0 {
		return 0, ErrInvalidMultiplier
	}

	// cap = target * multiplierBps * 10^decimals / (10000 * fiatPerUnit)
	num := new(big.Int).SetUint64(targetFiat)
	num.Mul(num, new(big.Int).SetUint64(multiplierBps))
	num.Mul(num, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(rate.SettlementDecimals)), nil))

	den := new(big.Int).SetUint64(MultiplierDenominator)
	den.Mul(den, new(big.Int).SetUint64(rate.FiatPerUnit))

	cap := num.Div(num, den)
	if !cap.IsUint64() {
		return 0, fmt.Errorf("%w: target %d at multiplier %d bps", ErrCapOverflow, targetFiat, multiplierBps)
	}
	return cap.Uint64(), nil
}

// FormatAmount renders a smallest-unit amount as a decimal string in whole
// settlement units, the form the provisioning process expects for the cap.
func FormatAmount(amount uint64, decimals uint32) string {
	if decimals == 0 {
		return fmt.Sprintf("%d", amount)
	}
	unit := uint64(1)
	for i := uint32(0); i < decimals; i++ {
		unit *= 10
	}
	whole := amount / unit
	frac := amount % unit
	if frac == 0 {
		return fmt.Sprintf("%d", whole)
	}
	s := fmt.Sprintf("%d.%0*d", whole, decimals, frac)
	// Trim trailing zeros from the fractional part.
	for s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	return s
}
