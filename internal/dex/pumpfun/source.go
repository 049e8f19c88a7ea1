package pumpfun

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/blockchain/solbc"
)

// ErrCurveNotFound means the mint has no Pump.fun bonding curve.
var ErrCurveNotFound = errors.New("pumpfun bonding curve not found")

// CurveSource is the venue-quote port of the Pump.fun venue.
type CurveSource interface {
	State(ctx context.Context, mint solana.PublicKey) (*State, error)
}

// ChainSource reads curve state straight from the chain.
type ChainSource struct {
	reader solbc.Reader
	cfg    Config
	logger *zap.Logger
}

var _ CurveSource = (*ChainSource)(nil)

func NewChainSource(reader solbc.Reader, cfg Config, logger *zap.Logger) *ChainSource {
	return &ChainSource{
		reader: reader,
		cfg:    cfg.withDefaults(),
		logger: logger.Named("pumpfun-source"),
	}
}

// State fetches the bonding curve and the global account in one request.
func (s *ChainSource) State(ctx context.Context, mint solana.PublicKey) (*State, error) {
	curveAddr, err := s.cfg.BondingCurveAddress(mint)
	if err != nil {
		return nil, err
	}
	globalAddr, err := s.cfg.GlobalAddress()
	if err != nil {
		return nil, err
	}

	res, err := s.reader.GetMultipleAccounts(ctx, []solana.PublicKey{curveAddr, globalAddr})
	if err != nil {
		return nil, fmt.Errorf("failed to get bonding curve accounts: %w", err)
	}
	if len(res.Value) != 2 {
		return nil, fmt.Errorf("expected 2 accounts, got %d", len(res.Value))
	}

	curveAcc, globalAcc := res.Value[0], res.Value[1]
	if curveAcc == nil {
		return nil, fmt.Errorf("%w: %s", ErrCurveNotFound, mint)
	}
	if !curveAcc.Owner.Equals(s.cfg.ProgramID) {
		s.logger.Debug("Bonding curve has incorrect ownership",
			zap.String("bonding_curve", curveAddr.String()),
			zap.String("owner", curveAcc.Owner.String()))
		return nil, fmt.Errorf("%w: %s is owned by %s", ErrCurveNotFound, curveAddr, curveAcc.Owner)
	}
	if globalAcc == nil {
		return nil, fmt.Errorf("global account not found: %s", globalAddr)
	}

	curve, err := ParseBondingCurve(curveAcc.Data.GetBinary())
	if err != nil {
		return nil, err
	}
	global, err := ParseGlobalAccount(globalAcc.Data.GetBinary())
	if err != nil {
		return nil, err
	}

	return &State{Address: curveAddr, Curve: *curve, Global: *global}, nil
}
