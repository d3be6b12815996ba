// Package amm holds the constant-product curve arithmetic for Raydium AMM v4
// pools. Curve math runs on integer base units; human amounts use decimals.
package amm

import (
	"errors"
	"fmt"

	"cosmossdk.io/math"
	"github.com/shopspring/decimal"

	"github.com/fartswap/fartswap-core/internal/constants"
)

var (
	ErrZeroLiquidity = errors.New("pool has no liquidity")
	ErrZeroAmount    = errors.New("amount in must be > 0")
	ErrBadFee        = errors.New("fee denominator must be > fee numerator")
)

// Swap is the curve result for one fixed-input trade.
type Swap struct {
	AmountIn       math.Int
	Fee            math.Int
	AmountInNetFee math.Int
	AmountOut      math.Int
}

// ConstantProductOut computes the output of x*y=k with the fee taken from the
// input, rounded up:
//
//	fee = ceil(in * feeNum / feeDen)
//	out = reserveOut * (in - fee) / (reserveIn + in - fee)
func ConstantProductOut(amountIn, reserveIn, reserveOut math.Int, feeNum, feeDen uint64) (Swap, error) {
	if amountIn.IsNil() || !amountIn.IsPositive() {
		return Swap{}, ErrZeroAmount
	}
	if reserveIn.IsNil() || reserveOut.IsNil() || !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return Swap{}, ErrZeroLiquidity
	}
	if feeDen == 0 || feeNum >= feeDen {
		return Swap{}, ErrBadFee
	}

	num := math.NewIntFromUint64(feeNum)
	den := math.NewIntFromUint64(feeDen)
	fee := ceilQuo(amountIn.Mul(num), den)
	net := amountIn.Sub(fee)

	out := math.ZeroInt()
	if net.IsPositive() {
		out = reserveOut.Mul(net).Quo(reserveIn.Add(net))
	}
	return Swap{AmountIn: amountIn, Fee: fee, AmountInNetFee: net, AmountOut: out}, nil
}

// RaydiumOut is ConstantProductOut with the AMM v4 trade fee.
func RaydiumOut(amountIn, reserveIn, reserveOut math.Int) (Swap, error) {
	return ConstantProductOut(amountIn, reserveIn, reserveOut, constants.RaydiumFeeNumerator, constants.RaydiumFeeDenominator)
}

func ceilQuo(a, b math.Int) math.Int {
	q := a.Quo(b)
	if !a.Mod(b).IsZero() {
		q = q.AddRaw(1)
	}
	return q
}

// ApplySlippage returns out * (10000 - bps) / 10000, floored.
func ApplySlippage(out math.Int, bps uint64) math.Int {
	if bps >= constants.BpsDenominator {
		return math.ZeroInt()
	}
	return out.MulRaw(int64(constants.BpsDenominator - bps)).QuoRaw(int64(constants.BpsDenominator))
}

// SlippageBps converts a percent (1 means 1%) into basis points. Fractions
// of a basis point round half up.
func SlippageBps(pct decimal.Decimal) (uint64, error) {
	if pct.IsNegative() {
		return 0, fmt.Errorf("slippage must be >= 0, got %s", pct)
	}
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		return 0, fmt.Errorf("slippage must be <= 100, got %s", pct)
	}
	return uint64(pct.Mul(decimal.NewFromInt(100)).Round(0).IntPart()), nil
}

// PriceImpact returns (marginal - execution) / marginal, where marginal is
// reserveOut/reserveIn and execution is out/netIn. Never negative.
func PriceImpact(netIn, out, reserveIn, reserveOut math.Int) decimal.Decimal {
	if !netIn.IsPositive() || !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return decimal.Zero
	}
	// execution/marginal = out*reserveIn / (netIn*reserveOut)
	ratio := decimal.NewFromBigInt(out.Mul(reserveIn).BigInt(), 0).
		DivRound(decimal.NewFromBigInt(netIn.Mul(reserveOut).BigInt(), 0), 18)
	impact := decimal.NewFromInt(1).Sub(ratio)
	if impact.IsNegative() {
		return decimal.Zero
	}
	return impact
}

// ToBaseUnits returns floor(amount * 10^decimals).
func ToBaseUnits(amount decimal.Decimal, decimals uint8) (math.Int, error) {
	if amount.IsNegative() {
		return math.Int{}, fmt.Errorf("amount must be >= 0, got %s", amount)
	}
	return math.NewIntFromBigInt(amount.Shift(int32(decimals)).Floor().BigInt()), nil
}

// FromBaseUnits returns x / 10^decimals.
func FromBaseUnits(x math.Int, decimals uint8) decimal.Decimal {
	if x.IsNil() {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(x.BigInt(), -int32(decimals))
}

// Significant rounds d to n significant digits, trailing zeros trimmed.
func Significant(d decimal.Decimal, n int) string {
	if d.IsZero() || n <= 0 {
		return "0"
	}
	intDigits := int(d.NumDigits()) + int(d.Exponent())
	return d.Round(int32(n - intDigits)).String()
}
