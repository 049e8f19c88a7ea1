package launchlab

import (
	"errors"

	"github.com/holiman/uint256"
)

// FeeRateDenominator expresses fee rates in parts per million.
const FeeRateDenominator = 1_000_000

var (
	ErrZeroReserves = errors.New("launch curve has zero reserves")
	ErrOverflow     = errors.New("launch curve arithmetic overflow")
)

// CurveParams is the pool state the evaluators need. A is the launched
// token, B is the quote (WSOL).
type CurveParams struct {
	VirtualA   *uint256.Int
	VirtualB   *uint256.Int
	RealA      *uint256.Int
	RealB      *uint256.Int
	TotalSellA *uint256.Int // zero means uncapped

	// Per-million rates, summed on every trade.
	TradeFeeRate    uint64
	PlatformFeeRate uint64
	ShareFeeRate    uint64
}

func (p CurveParams) feeRate() uint64 {
	return p.TradeFeeRate + p.PlatformFeeRate + p.ShareFeeRate
}

// reserves returns (token side, quote side) of the virtual curve.
func (p CurveParams) reserves() (a, b *uint256.Int, err error) {
	if p.VirtualA.Cmp(p.RealA) <= 0 {
		return nil, nil, ErrZeroReserves
	}
	a = new(uint256.Int).Sub(p.VirtualA, p.RealA)
	b = new(uint256.Int).Add(p.VirtualB, p.RealB)
	if b.IsZero() {
		return nil, nil, ErrZeroReserves
	}
	return a, b, nil
}

// Trade is an evaluator result.
type Trade struct {
	AmountIn  *uint256.Int
	AmountOut *uint256.Int
	Fee       *uint256.Int // quote units
}

// BuyExactIn spends amountB of quote. The fee is taken from the input.
func BuyExactIn(p CurveParams, amountB *uint256.Int) (Trade, error) {
	fee, err := ceilFee(amountB, p.feeRate())
	if err != nil {
		return Trade{}, err
	}
	if fee.Cmp(amountB) >= 0 {
		return Trade{AmountIn: amountB, AmountOut: uint256.NewInt(0), Fee: fee}, nil
	}
	net := new(uint256.Int).Sub(amountB, fee)

	a, b, err := p.reserves()
	if err != nil {
		return Trade{}, err
	}
	out, err := amountOut(net, b, a)
	if err != nil {
		return Trade{}, err
	}
	if p.TotalSellA != nil && !p.TotalSellA.IsZero() {
		left := new(uint256.Int)
		if p.TotalSellA.Cmp(p.RealA) > 0 {
			left.Sub(p.TotalSellA, p.RealA)
		}
		if out.Cmp(left) > 0 {
			out = left
		}
	}
	return Trade{AmountIn: amountB, AmountOut: out, Fee: fee}, nil
}

// SellExactIn sells amountA of the token. The fee is taken from the quote output.
func SellExactIn(p CurveParams, amountA *uint256.Int) (Trade, error) {
	a, b, err := p.reserves()
	if err != nil {
		return Trade{}, err
	}
	gross, err := amountOut(amountA, a, b)
	if err != nil {
		return Trade{}, err
	}
	fee, err := ceilFee(gross, p.feeRate())
	if err != nil {
		return Trade{}, err
	}
	out := uint256.NewInt(0)
	if gross.Cmp(fee) > 0 {
		out.Sub(gross, fee)
	}
	return Trade{AmountIn: amountA, AmountOut: out, Fee: fee}, nil
}

// amountOut is floor(in*reserveOut/(reserveIn+in)).
func amountOut(in, reserveIn, reserveOut *uint256.Int) (*uint256.Int, error) {
	num, overflow := new(uint256.Int).MulOverflow(in, reserveOut)
	if overflow {
		return nil, ErrOverflow
	}
	den, overflow := new(uint256.Int).AddOverflow(reserveIn, in)
	if overflow {
		return nil, ErrOverflow
	}
	if den.IsZero() {
		return nil, ErrZeroReserves
	}
	return num.Div(num, den), nil
}

// ceilFee is ceil(amount*rate/1e6).
func ceilFee(amount *uint256.Int, rate uint64) (*uint256.Int, error) {
	num, overflow := new(uint256.Int).MulOverflow(amount, uint256.NewInt(rate))
	if overflow {
		return nil, ErrOverflow
	}
	denom := uint256.NewInt(FeeRateDenominator)
	q, r := new(uint256.Int), new(uint256.Int)
	q.DivMod(num, denom, r)
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	return q, nil
}
