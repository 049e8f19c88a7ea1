// =============================================
// File: internal/dex/moonshot/strategy.go
// =============================================
package moonshot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/dex"
	"github.com/rovshanmuradov/swap-builder/internal/egress"
	"github.com/rovshanmuradov/swap-builder/internal/fee"
)

// Strategy delegates curve math and transaction building to the hosted API.
type Strategy struct {
	api    API
	fees   *fee.Calculator
	cfg    Config
	logger *zap.Logger
}

var _ dex.Strategy = (*Strategy)(nil)

func NewStrategy(api API, fees *fee.Calculator, cfg Config, logger *zap.Logger) *Strategy {
	return &Strategy{api: api, fees: fees, cfg: cfg.withDefaults(), logger: logger.Named("moonshot")}
}

func (s *Strategy) Venue() dex.Venue { return dex.VenueMoonshot }

// CanHandle is true for tokens the API reports as still on the curve and
// created after the migration cutoff.
func (s *Strategy) CanHandle(ctx context.Context, req *dex.SwapRequest) (bool, error) {
	info, err := s.api.Token(ctx, req.TokenMint())
	if err != nil {
		var se *egress.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return s.eligible(info), nil
}

func (s *Strategy) eligible(info *TokenInfo) bool {
	if info.Migrated {
		return false
	}
	if s.cfg.MigrationCutoff.IsZero() {
		return true
	}
	return !time.Unix(info.CreatedAt, 0).Before(s.cfg.MigrationCutoff)
}

func (s *Strategy) Generate(ctx context.Context, req *dex.SwapRequest) (*dex.InstructionSet, error) {
	if req.Mode == dex.ModeExactOut {
		return nil, quoteErr("quote", errors.New("exact-out is not supported by the hosted API"))
	}

	mint := req.TokenMint()
	info, err := s.api.Token(ctx, mint)
	if err != nil {
		return nil, quoteErr("token info", err)
	}
	if !s.eligible(info) {
		return nil, quoteErr("token info", fmt.Errorf("token %s is not tradable on the curve", mint))
	}

	decimals := dex.NativeDecimals
	direction := DirectionBuy
	if req.Side == dex.SideSell {
		decimals = info.Decimals
		direction = DirectionSell
	}
	amount, err := dex.ToRaw(req.Amount, decimals)
	if err != nil {
		return nil, quoteErr("convert amount", err)
	}

	res, err := s.api.Quote(ctx, QuoteRequest{
		Mint:           mint.String(),
		TradeDirection: direction,
		Amount:         amount.String(),
		FixedSide:      "in",
	})
	if err != nil {
		return nil, quoteErr("quote", err)
	}
	tokens, err := res.Tokens()
	if err != nil {
		return nil, quoteErr("quote", err)
	}
	collateral, err := res.Collateral()
	if err != nil {
		return nil, quoteErr("quote", err)
	}

	expected := tokens
	if req.Side == dex.SideSell {
		expected = collateral
	}
	if expected.Sign() == 0 {
		return nil, quoteErr("quote", dex.ErrZeroOutput)
	}
	q := dex.Quote{
		AmountIn:    amount,
		ExpectedOut: expected,
		MinOut:      dex.MinOut(expected, req.SlippageBps),
	}

	tx, err := s.api.Build(ctx, BuildRequest{
		Mint:             mint.String(),
		Wallet:           req.User.String(),
		TradeDirection:   direction,
		TokenAmount:      tokens.String(),
		CollateralAmount: collateral.String(),
		MinimumAmountOut: q.MinOut.String(),
		SlippageBps:      req.SlippageBps,
		FixedSide:        "in",
		ComputeUnitPrice: req.UnitPrice(),
	})
	if err != nil {
		return nil, quoteErr("build", err)
	}
	if len(tx.Message.AccountKeys) == 0 || !tx.Message.AccountKeys[0].Equals(req.User) {
		return nil, quoteErr("build", errors.New("vendor transaction is not paid by the user"))
	}

	set := &dex.InstructionSet{
		Venue:    dex.VenueMoonshot,
		Quote:    q,
		Prebuilt: tx,
	}
	if curve, err := solana.PublicKeyFromBase58(info.CurveAddress); err == nil {
		set.PoolAddress = curve
	}
	set.Fee, set.FeeLamports, err = s.fees.Instruction(req.User, q.FeeLeg(req.Side, s.cfg.FeeBasis))
	if err != nil {
		return nil, quoteErr("platform fee", err)
	}

	s.logger.Debug("Moonshot transaction received",
		zap.String("mint", mint.String()),
		zap.String("side", string(req.Side)),
		zap.String("tokens", tokens.String()),
		zap.String("collateral", collateral.String()),
		zap.Uint64("fee_lamports", set.FeeLamports))
	return set, nil
}

func quoteErr(op string, err error) error {
	return dex.NewVenueQuoteError(dex.VenueMoonshot, op, err)
}
