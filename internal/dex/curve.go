package dex

import (
	"errors"
	"math/big"
)

// ErrCurveComplete is returned for a curve that has migrated away.
var ErrCurveComplete = errors.New("bonding curve is complete")

// ErrZeroOutput means the amount is too small to receive anything.
var ErrZeroOutput = errors.New("amount too small: quoted output is zero")

// FeeBps is the total fee the curve program takes from the SOL leg.
func (c *CurveState) FeeBps() uint64 {
	return c.ProtocolFeeBps + c.PlatformFeeBps
}

// QuoteCurveBuy sizes an exact-SOL-in buy on a virtual-reserve curve. The
// program fee is taken from the input, the result is capped by the real
// token reserve.
func QuoteCurveBuy(c *CurveState, solIn *big.Int, slippageBps uint16) (Quote, error) {
	if c.Complete {
		return Quote{}, ErrCurveComplete
	}
	net := DeductBps(solIn, c.FeeBps())
	out, err := ConstantProductOut(c.VirtualSolReserves, c.VirtualTokenReserves, net)
	if err != nil {
		return Quote{}, err
	}
	if c.RealTokenReserves != nil && c.RealTokenReserves.Sign() > 0 && out.Cmp(c.RealTokenReserves) > 0 {
		out = new(big.Int).Set(c.RealTokenReserves)
	}
	if out.Sign() == 0 {
		return Quote{}, ErrZeroOutput
	}
	return Quote{
		AmountIn:    new(big.Int).Set(solIn),
		ExpectedOut: out,
		MinOut:      MinOut(out, slippageBps),
	}, nil
}

// QuoteCurveSell sizes an exact-token-in sell. The program fee is taken from
// the SOL output.
func QuoteCurveSell(c *CurveState, tokenIn *big.Int, slippageBps uint16) (Quote, error) {
	if c.Complete {
		return Quote{}, ErrCurveComplete
	}
	gross, err := ConstantProductOut(c.VirtualTokenReserves, c.VirtualSolReserves, tokenIn)
	if err != nil {
		return Quote{}, err
	}
	out := DeductBps(gross, c.FeeBps())
	if out.Sign() == 0 {
		return Quote{}, ErrZeroOutput
	}
	return Quote{
		AmountIn:    new(big.Int).Set(tokenIn),
		ExpectedOut: out,
		MinOut:      MinOut(out, slippageBps),
	}, nil
}
