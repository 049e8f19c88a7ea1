package boop

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/blockchain/solbc"
)

// ErrCurveNotFound means the mint was not launched on boop.
var ErrCurveNotFound = errors.New("boop bonding curve not found")

// CurveSource is the venue-quote port of the boop venue.
type CurveSource interface {
	State(ctx context.Context, mint solana.PublicKey) (*State, error)
}

type ChainSource struct {
	reader solbc.Reader
	cfg    Config
	logger *zap.Logger
}

var _ CurveSource = (*ChainSource)(nil)

func NewChainSource(reader solbc.Reader, cfg Config, logger *zap.Logger) *ChainSource {
	return &ChainSource{reader: reader, cfg: cfg.withDefaults(), logger: logger.Named("boop-source")}
}

func (s *ChainSource) State(ctx context.Context, mint solana.PublicKey) (*State, error) {
	addr, err := s.cfg.BondingCurveAddress(mint)
	if err != nil {
		return nil, err
	}

	info, err := s.reader.GetAccountInfo(ctx, addr)
	if err != nil {
		if solbc.IsAccountNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrCurveNotFound, mint)
		}
		return nil, fmt.Errorf("failed to get boop curve: %w", err)
	}
	if !info.Value.Owner.Equals(s.cfg.ProgramID) {
		s.logger.Debug("Curve account has unexpected owner",
			zap.String("curve", addr.String()),
			zap.String("owner", info.Value.Owner.String()))
		return nil, fmt.Errorf("%w: %s", ErrCurveNotFound, mint)
	}

	curve, err := ParseBondingCurve(info.Value.Data.GetBinary())
	if err != nil {
		return nil, err
	}
	if !curve.Mint.Equals(mint) {
		return nil, fmt.Errorf("curve %s belongs to mint %s", addr, curve.Mint)
	}
	return &State{Address: addr, Curve: *curve}, nil
}
