// =============================================
// File: internal/dex/launchlab/strategy.go
// =============================================
package launchlab

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/accounts"
	"github.com/rovshanmuradov/swap-builder/internal/dex"
)

// Strategy trades tokens on a launch curve. Pool state comes from the vendor
// API, the instruction is built locally.
type Strategy struct {
	api     API
	support *dex.Support
	cfg     Config
	logger  *zap.Logger
}

var _ dex.Strategy = (*Strategy)(nil)

func NewStrategy(api API, support *dex.Support, cfg Config, logger *zap.Logger) *Strategy {
	return &Strategy{api: api, support: support, cfg: cfg.withDefaults(), logger: logger.Named("launchlab")}
}

func (s *Strategy) Venue() dex.Venue { return dex.VenueLaunchLab }

// CanHandle is true when a WSOL-quoted pool is trading.
func (s *Strategy) CanHandle(ctx context.Context, req *dex.SwapRequest) (bool, error) {
	pool, err := s.api.Pool(ctx, req.TokenMint())
	if errors.Is(err, ErrPoolNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return tradable(pool), nil
}

func tradable(pool *PoolInfo) bool {
	return pool.Status == StatusTrading && (pool.QuoteMint == "" || pool.QuoteMint == solana.WrappedSol.String())
}

func (s *Strategy) Generate(ctx context.Context, req *dex.SwapRequest) (*dex.InstructionSet, error) {
	if req.Mode == dex.ModeExactOut {
		return nil, quoteErr("quote", errors.New("exact-out is not supported on launch curves"))
	}

	mint := req.TokenMint()
	pool, err := s.api.Pool(ctx, mint)
	if err != nil {
		return nil, quoteErr("fetch pool", err)
	}
	if !tradable(pool) {
		return nil, quoteErr("fetch pool", fmt.Errorf("pool status %q", pool.Status))
	}
	params, err := pool.CurveParams(s.cfg.ShareFeeRate)
	if err != nil {
		return nil, quoteErr("parse pool", err)
	}

	amount, err := s.support.RawAmount(ctx, req)
	if err != nil {
		return nil, quoteErr("convert amount", err)
	}
	in, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, quoteErr("convert amount", ErrOverflow)
	}

	var trade Trade
	if req.Side == dex.SideBuy {
		trade, err = BuyExactIn(params, in)
	} else {
		trade, err = SellExactIn(params, in)
	}
	if err != nil {
		return nil, quoteErr("quote", err)
	}
	if trade.AmountOut.IsZero() {
		return nil, quoteErr("quote", dex.ErrZeroOutput)
	}

	out := trade.AmountOut.ToBig()
	q := dex.Quote{
		AmountIn:    amount,
		ExpectedOut: out,
		MinOut:      dex.MinOut(out, req.SlippageBps),
	}

	acc, err := s.tradeAccounts(req.User, mint, pool)
	if err != nil {
		return nil, quoteErr("derive accounts", err)
	}
	amountIn, minOut, err := dex.ToUint64Pair(q.AmountIn, q.MinOut)
	if err != nil {
		return nil, quoteErr("encode", err)
	}
	args := TradeArgs{AmountIn: amountIn, MinimumAmountOut: minOut, ShareFeeRate: s.cfg.ShareFeeRate}

	build := BuildSellExactIn
	if req.Side == dex.SideBuy {
		build = BuildBuyExactIn
	}
	ix, err := build(acc, args)
	if err != nil {
		return nil, quoteErr("encode", err)
	}

	set := &dex.InstructionSet{
		Venue:       dex.VenueLaunchLab,
		PoolAddress: acc.PoolState,
		Swap:        []solana.Instruction{ix},
		Quote:       q,
	}
	if err := s.support.Complete(ctx, req, set, true, s.cfg.FeeBasis); err != nil {
		return nil, quoteErr("prepare accounts", err)
	}

	s.logger.Debug("LaunchLab swap prepared",
		zap.String("pool", pool.PoolID),
		zap.String("side", string(req.Side)),
		zap.String("curve_fee", trade.Fee.Dec()),
		zap.String("min_out", q.MinOut.String()),
		zap.Uint64("fee_lamports", set.FeeLamports))
	return set, nil
}

func (s *Strategy) tradeAccounts(user, mint solana.PublicKey, pool *PoolInfo) (TradeAccounts, error) {
	keys := map[string]string{
		"poolId":     pool.PoolID,
		"configId":   pool.ConfigID,
		"platformId": pool.PlatformID,
		"vaultA":     pool.VaultA,
		"vaultB":     pool.VaultB,
	}
	parsed := make(map[string]solana.PublicKey, len(keys))
	for name, raw := range keys {
		pk, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			return TradeAccounts{}, fmt.Errorf("invalid %s %q: %w", name, raw, err)
		}
		parsed[name] = pk
	}

	authority, err := s.cfg.AuthorityAddress()
	if err != nil {
		return TradeAccounts{}, err
	}
	eventAuthority, err := s.cfg.EventAuthority()
	if err != nil {
		return TradeAccounts{}, err
	}
	userBase, err := accounts.ATA(user, mint)
	if err != nil {
		return TradeAccounts{}, err
	}
	userQuote, err := accounts.ATA(user, solana.WrappedSol)
	if err != nil {
		return TradeAccounts{}, err
	}

	return TradeAccounts{
		Program:        s.cfg.ProgramID,
		Payer:          user,
		Authority:      authority,
		GlobalConfig:   parsed["configId"],
		PlatformConfig: parsed["platformId"],
		PoolState:      parsed["poolId"],
		UserBaseToken:  userBase,
		UserQuoteToken: userQuote,
		BaseVault:      parsed["vaultA"],
		QuoteVault:     parsed["vaultB"],
		BaseMint:       mint,
		QuoteMint:      solana.WrappedSol,
		EventAuthority: eventAuthority,
	}, nil
}

func quoteErr(op string, err error) error {
	return dex.NewVenueQuoteError(dex.VenueLaunchLab, op, err)
}
