package pumpswap

import (
	"math/big"

	"github.com/rovshanmuradov/swap-builder/internal/dex"
)

// QuoteExactIn sizes a swap of amountIn against the pool after deducting
// the pool fee from the input.
func QuoteExactIn(reserveIn, reserveOut, amountIn *big.Int, feeBps uint64, slippageBps uint16) (dex.Quote, error) {
	net := dex.DeductBps(amountIn, feeBps)
	out, err := dex.ConstantProductOut(reserveIn, reserveOut, net)
	if err != nil {
		return dex.Quote{}, err
	}
	if out.Sign() == 0 {
		return dex.Quote{}, dex.ErrZeroOutput
	}
	return dex.Quote{
		AmountIn:    new(big.Int).Set(amountIn),
		ExpectedOut: out,
		MinOut:      dex.MinOut(out, slippageBps),
	}, nil
}

// QuoteExactOut solves for the input that buys amountOut, grosses it up for
// the pool fee and caps it with slippage.
func QuoteExactOut(reserveIn, reserveOut, amountOut *big.Int, feeBps uint64, slippageBps uint16) (dex.Quote, error) {
	in, err := dex.ConstantProductIn(reserveIn, reserveOut, amountOut)
	if err != nil {
		return dex.Quote{}, err
	}
	gross := dex.GrossUpBps(in, feeBps)
	return dex.Quote{
		AmountIn:    gross,
		ExpectedOut: new(big.Int).Set(amountOut),
		MinOut:      new(big.Int).Set(amountOut),
		MaxIn:       dex.MaxIn(gross, slippageBps),
	}, nil
}
