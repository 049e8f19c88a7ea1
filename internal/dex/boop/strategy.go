package boop

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/accounts"
	"github.com/rovshanmuradov/swap-builder/internal/dex"
)

// Strategy trades boop tokens that are still on their curve.
type Strategy struct {
	source  CurveSource
	support *dex.Support
	cfg     Config
	logger  *zap.Logger
}

var _ dex.Strategy = (*Strategy)(nil)

func NewStrategy(source CurveSource, support *dex.Support, cfg Config, logger *zap.Logger) *Strategy {
	return &Strategy{source: source, support: support, cfg: cfg.withDefaults(), logger: logger.Named("boop")}
}

func (s *Strategy) Venue() dex.Venue { return dex.VenueBoop }

// CanHandle is true while the curve is in the trading status.
func (s *Strategy) CanHandle(ctx context.Context, req *dex.SwapRequest) (bool, error) {
	st, err := s.source.State(ctx, req.TokenMint())
	if errors.Is(err, ErrCurveNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return st.Curve.Status == StatusTrading, nil
}

func (s *Strategy) Generate(ctx context.Context, req *dex.SwapRequest) (*dex.InstructionSet, error) {
	if req.Mode == dex.ModeExactOut {
		return nil, quoteErr("quote", errors.New("exact-out is not supported on bonding curves"))
	}

	mint := req.TokenMint()
	st, err := s.source.State(ctx, mint)
	if err != nil {
		return nil, quoteErr("fetch curve", err)
	}
	if st.Curve.Status != StatusTrading {
		return nil, quoteErr("quote", dex.ErrCurveComplete)
	}

	amount, err := s.support.RawAmount(ctx, req)
	if err != nil {
		return nil, quoteErr("convert amount", err)
	}

	var q dex.Quote
	if req.Side == dex.SideBuy {
		q, err = dex.QuoteCurveBuy(st.CurveState(), amount, req.SlippageBps)
	} else {
		q, err = dex.QuoteCurveSell(st.CurveState(), amount, req.SlippageBps)
	}
	if err != nil {
		return nil, quoteErr("quote", err)
	}

	addrs, err := s.cfg.Derive(mint)
	if err != nil {
		return nil, quoteErr("derive accounts", err)
	}
	userATA, err := accounts.ATA(req.User, mint)
	if err != nil {
		return nil, quoteErr("derive accounts", err)
	}
	acc := SwapAccounts{Program: s.cfg.ProgramID, Mint: mint, User: req.User, UserTokenATA: userATA, Addresses: addrs}

	in, minOut, err := dex.ToUint64Pair(q.AmountIn, q.MinOut)
	if err != nil {
		return nil, quoteErr("encode", err)
	}
	build := BuildSellInstruction
	if req.Side == dex.SideBuy {
		build = BuildBuyInstruction
	}
	ix, err := build(acc, in, minOut)
	if err != nil {
		return nil, quoteErr("encode", err)
	}

	set := &dex.InstructionSet{
		Venue:       dex.VenueBoop,
		PoolAddress: st.Address,
		Swap:        []solana.Instruction{ix},
		Quote:       q,
	}
	if err := s.support.Complete(ctx, req, set, false, s.cfg.FeeBasis); err != nil {
		return nil, quoteErr("prepare accounts", err)
	}

	s.logger.Debug("boop swap prepared",
		zap.String("mint", mint.String()),
		zap.String("side", string(req.Side)),
		zap.Uint8("damping", st.Curve.DampingTerm),
		zap.String("min_out", q.MinOut.String()),
		zap.Uint64("fee_lamports", set.FeeLamports))
	return set, nil
}

func quoteErr(op string, err error) error {
	return dex.NewVenueQuoteError(dex.VenueBoop, op, err)
}
