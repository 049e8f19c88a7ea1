// =============================
// File: internal/dex/pumpswap/strategy.go
// =============================
package pumpswap

import (
	"context"
	"errors"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/dex"
)

// Strategy is the constant-product pool venue.
type Strategy struct {
	pools   PoolSource
	support *dex.Support
	cfg     Config
	logger  *zap.Logger
}

var _ dex.Strategy = (*Strategy)(nil)

// NewStrategy создаёт стратегию PumpSwap.
func NewStrategy(pools PoolSource, support *dex.Support, cfg Config, logger *zap.Logger) *Strategy {
	if cfg.ProgramID.IsZero() {
		cfg.ProgramID = ProgramID
	}
	if cfg.FeeBasis == "" {
		cfg.FeeBasis = dex.FeeBasisSOL
	}
	return &Strategy{
		pools:   pools,
		support: support,
		cfg:     cfg,
		logger:  logger.Named("pumpswap"),
	}
}

func (s *Strategy) Venue() dex.Venue {
	return dex.VenuePumpSwap
}

// CanHandle reports whether a liquid (token, WSOL) pool exists.
func (s *Strategy) CanHandle(ctx context.Context, req *dex.SwapRequest) (bool, error) {
	_, err := s.pools.FindPool(ctx, req.TokenMint())
	if errors.Is(err, ErrPoolNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Generate builds the swap against the deepest pool for the token.
func (s *Strategy) Generate(ctx context.Context, req *dex.SwapRequest) (*dex.InstructionSet, error) {
	pool, err := s.pools.FindPool(ctx, req.TokenMint())
	if err != nil {
		return nil, quoteErr("find pool", err)
	}

	isBuy := req.Side == dex.SideBuy
	if isBuy && pool.Config.DisableFlags&DisableBuy != 0 {
		return nil, quoteErr("check pool", errors.New("buys are disabled"))
	}
	if !isBuy && pool.Config.DisableFlags&DisableSell != 0 {
		return nil, quoteErr("check pool", errors.New("sells are disabled"))
	}
	if !isBuy && req.Mode == dex.ModeExactOut {
		return nil, quoteErr("quote", errors.New("exact-out sells are not supported"))
	}

	amount, err := s.support.RawAmount(ctx, req)
	if err != nil {
		return nil, quoteErr("convert amount", err)
	}

	baseRes := new(big.Int).SetUint64(pool.BaseReserves)
	quoteRes := new(big.Int).SetUint64(pool.QuoteReserves)
	feeBps := pool.Config.TotalFeeBps()

	var (
		q                       dex.Quote
		baseAmount, quoteAmount *big.Int
	)
	switch {
	case isBuy && req.Mode == dex.ModeExactOut:
		q, err = QuoteExactOut(quoteRes, baseRes, amount, feeBps, req.SlippageBps)
		baseAmount, quoteAmount = q.ExpectedOut, q.MaxIn
	case isBuy:
		q, err = QuoteExactIn(quoteRes, baseRes, amount, feeBps, req.SlippageBps)
		baseAmount, quoteAmount = q.MinOut, q.AmountIn
	default:
		q, err = QuoteExactIn(baseRes, quoteRes, amount, feeBps, req.SlippageBps)
		baseAmount, quoteAmount = q.AmountIn, q.MinOut
	}
	if err != nil {
		return nil, quoteErr("quote", err)
	}

	ix, err := s.swapInstruction(req.User, pool, isBuy, baseAmount, quoteAmount)
	if err != nil {
		return nil, quoteErr("build swap instruction", err)
	}

	set := &dex.InstructionSet{
		Venue:       dex.VenuePumpSwap,
		PoolAddress: pool.Address,
		Swap:        []solana.Instruction{ix},
		Quote:       q,
	}
	if err := s.support.Complete(ctx, req, set, true, s.cfg.FeeBasis); err != nil {
		return nil, quoteErr("prepare accounts", err)
	}

	s.logger.Debug("PumpSwap swap prepared",
		zap.String("pool", pool.Address.String()),
		zap.String("side", string(req.Side)),
		zap.String("amount_in", q.AmountIn.String()),
		zap.String("expected_out", q.ExpectedOut.String()),
		zap.String("min_out", q.MinOut.String()),
		zap.Uint64("fee_lamports", set.FeeLamports))
	return set, nil
}

func (s *Strategy) swapInstruction(user solana.PublicKey, pool *PoolInfo, isBuy bool, baseAmount, quoteAmount *big.Int) (solana.Instruction, error) {
	base, quote, err := dex.ToUint64Pair(baseAmount, quoteAmount)
	if err != nil {
		return nil, err
	}
	accts, err := s.cfg.ResolveAccounts(user, pool)
	if err != nil {
		return nil, err
	}
	if isBuy {
		return BuildBuyInstruction(accts, base, quote)
	}
	return BuildSellInstruction(accts, base, quote)
}

func quoteErr(op string, err error) error {
	return dex.NewVenueQuoteError(dex.VenuePumpSwap, op, err)
}
