package dex

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// BpsDenominator is 100% in basis points.
const BpsDenominator = 10_000

var (
	bpsDenom = big.NewInt(BpsDenominator)
	bigOne   = big.NewInt(1)

	ErrZeroReserves       = errors.New("pool has zero reserves")
	ErrInsufficientLiquid = errors.New("insufficient liquidity for requested output")
	ErrNonPositiveAmount  = errors.New("amount must be positive")
)

// ConstantProductOut returns floor(reserveOut*amountIn/(reserveIn+amountIn)).
// It equals reserveOut - ceil(reserveIn*reserveOut/(reserveIn+amountIn)),
// so the result is always strictly below reserveOut.
func ConstantProductOut(reserveIn, reserveOut, amountIn *big.Int) (*big.Int, error) {
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, ErrZeroReserves
	}
	if amountIn.Sign() <= 0 {
		return nil, ErrNonPositiveAmount
	}
	num := new(big.Int).Mul(reserveOut, amountIn)
	den := new(big.Int).Add(reserveIn, amountIn)
	return num.Quo(num, den), nil
}

// ConstantProductIn solves the curve for the input needed to receive amountOut,
// rounding up: ceil(reserveIn*amountOut/(reserveOut-amountOut)).
func ConstantProductIn(reserveIn, reserveOut, amountOut *big.Int) (*big.Int, error) {
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, ErrZeroReserves
	}
	if amountOut.Sign() <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, ErrInsufficientLiquid
	}
	num := new(big.Int).Mul(reserveIn, amountOut)
	den := new(big.Int).Sub(reserveOut, amountOut)
	return ceilDiv(num, den), nil
}

// MinOut applies slippage to an expected output: floor(amount*(10000-bps)/10000).
func MinOut(amount *big.Int, slippageBps uint16) *big.Int {
	r := new(big.Int).Mul(amount, big.NewInt(int64(BpsDenominator)-int64(slippageBps)))
	return r.Quo(r, bpsDenom)
}

// MaxIn applies slippage to a required input: floor(amount*(10000+bps)/10000).
func MaxIn(amount *big.Int, slippageBps uint16) *big.Int {
	r := new(big.Int).Mul(amount, big.NewInt(int64(BpsDenominator)+int64(slippageBps)))
	return r.Quo(r, bpsDenom)
}

// DeductBps returns amount - floor(amount*bps/10000).
func DeductBps(amount *big.Int, bps uint64) *big.Int {
	cut := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
	cut.Quo(cut, bpsDenom)
	return new(big.Int).Sub(amount, cut)
}

// GrossUpBps returns the smallest x such that DeductBps(x, bps) >= amount.
func GrossUpBps(amount *big.Int, bps uint64) *big.Int {
	if bps >= BpsDenominator {
		return new(big.Int).Set(amount)
	}
	num := new(big.Int).Mul(amount, bpsDenom)
	return ceilDiv(num, big.NewInt(int64(BpsDenominator-bps)))
}

// ToRaw converts a decimal amount of whole units into base units, truncating
// any precision beyond the mint's decimals.
func ToRaw(amount decimal.Decimal, decimals uint8) (*big.Int, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	raw := amount.Shift(int32(decimals)).BigInt()
	if raw.Sign() <= 0 {
		return nil, fmt.Errorf("amount %s is below the smallest unit for %d decimals", amount, decimals)
	}
	return raw, nil
}

// ToUint64 narrows an on-chain amount, failing instead of wrapping.
func ToUint64(v *big.Int) (uint64, error) {
	if v.Sign() < 0 || !v.IsUint64() {
		return 0, fmt.Errorf("amount %s does not fit in u64", v)
	}
	return v.Uint64(), nil
}

// ToUint64Pair narrows two instruction arguments at once.
func ToUint64Pair(a, b *big.Int) (uint64, uint64, error) {
	x, err := ToUint64(a)
	if err != nil {
		return 0, 0, err
	}
	y, err := ToUint64(b)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func ceilDiv(num, den *big.Int) *big.Int {
	q, m := new(big.Int).QuoRem(num, den, new(big.Int))
	if m.Sign() > 0 {
		q.Add(q, bigOne)
	}
	return q
}
