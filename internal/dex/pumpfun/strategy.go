// ==============================================
// File: internal/dex/pumpfun/strategy.go
// ==============================================
package pumpfun

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/accounts"
	"github.com/rovshanmuradov/swap-builder/internal/dex"
)

// Strategy trades tokens that are still on their Pump.fun bonding curve.
type Strategy struct {
	source  CurveSource
	support *dex.Support
	cfg     Config
	logger  *zap.Logger
}

var _ dex.Strategy = (*Strategy)(nil)

func NewStrategy(source CurveSource, support *dex.Support, cfg Config, logger *zap.Logger) *Strategy {
	return &Strategy{
		source:  source,
		support: support,
		cfg:     cfg.withDefaults(),
		logger:  logger.Named("pumpfun"),
	}
}

func (s *Strategy) Venue() dex.Venue {
	return dex.VenuePumpFun
}

// CanHandle is true while the curve exists and has not completed.
func (s *Strategy) CanHandle(ctx context.Context, req *dex.SwapRequest) (bool, error) {
	st, err := s.source.State(ctx, req.TokenMint())
	if errors.Is(err, ErrCurveNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !st.Curve.Complete, nil
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

	amount, err := s.support.RawAmount(ctx, req)
	if err != nil {
		return nil, quoteErr("convert amount", err)
	}

	curve := st.CurveState()
	var q dex.Quote
	if req.Side == dex.SideBuy {
		q, err = dex.QuoteCurveBuy(curve, amount, req.SlippageBps)
	} else {
		q, err = dex.QuoteCurveSell(curve, amount, req.SlippageBps)
	}
	if err != nil {
		return nil, quoteErr("quote", err)
	}

	acc, err := s.instructionAccounts(req.User, mint, st)
	if err != nil {
		return nil, quoteErr("derive accounts", err)
	}

	var ix solana.Instruction
	if req.Side == dex.SideBuy {
		tokens, maxCost, err := dex.ToUint64Pair(q.MinOut, q.AmountIn)
		if err != nil {
			return nil, quoteErr("encode", err)
		}
		ix = BuildBuyInstruction(acc, tokens, maxCost)
	} else {
		tokens, minSol, err := dex.ToUint64Pair(q.AmountIn, q.MinOut)
		if err != nil {
			return nil, quoteErr("encode", err)
		}
		ix = BuildSellInstruction(acc, tokens, minSol)
	}

	set := &dex.InstructionSet{
		Venue:       dex.VenuePumpFun,
		PoolAddress: st.Address,
		Swap:        []solana.Instruction{ix},
		Quote:       q,
	}
	if err := s.support.Complete(ctx, req, set, false, s.cfg.FeeBasis); err != nil {
		return nil, quoteErr("prepare accounts", err)
	}

	s.logger.Debug("Pump.fun swap prepared",
		zap.String("mint", mint.String()),
		zap.String("side", string(req.Side)),
		zap.String("expected_out", q.ExpectedOut.String()),
		zap.String("min_out", q.MinOut.String()),
		zap.Uint64("fee_lamports", set.FeeLamports))
	return set, nil
}

func (s *Strategy) instructionAccounts(user, mint solana.PublicKey, st *State) (InstructionAccounts, error) {
	global, err := s.cfg.GlobalAddress()
	if err != nil {
		return InstructionAccounts{}, err
	}
	associatedCurve, err := accounts.ATA(st.Address, mint)
	if err != nil {
		return InstructionAccounts{}, err
	}
	associatedUser, err := accounts.ATA(user, mint)
	if err != nil {
		return InstructionAccounts{}, err
	}
	creatorVault, err := s.cfg.CreatorVaultAddress(st.Curve.Creator)
	if err != nil {
		return InstructionAccounts{}, err
	}
	return InstructionAccounts{
		Program:                s.cfg.ProgramID,
		Global:                 global,
		FeeRecipient:           st.Global.FeeRecipient,
		Mint:                   mint,
		BondingCurve:           st.Address,
		AssociatedBondingCurve: associatedCurve,
		AssociatedUser:         associatedUser,
		User:                   user,
		CreatorVault:           creatorVault,
		EventAuthority:         s.cfg.EventAuthority,
	}, nil
}

func quoteErr(op string, err error) error {
	return dex.NewVenueQuoteError(dex.VenuePumpFun, op, err)
}
