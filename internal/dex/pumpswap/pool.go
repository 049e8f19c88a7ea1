// =============================
// File: internal/dex/pumpswap/pool.go
// =============================
package pumpswap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/swap-builder/internal/blockchain/solbc"
)

// ErrPoolNotFound means no canonical pool with liquidity exists for the token.
var ErrPoolNotFound = errors.New("pumpswap pool not found")

// PoolSource is the venue-quote port of the constant-product venue.
type PoolSource interface {
	FindPool(ctx context.Context, tokenMint solana.PublicKey) (*PoolInfo, error)
}

// PoolManager отвечает за поиск пулов PumpSwap и чтение их резервов.
type PoolManager struct {
	reader solbc.Reader
	cfg    Config
	logger *zap.Logger
}

var _ PoolSource = (*PoolManager)(nil)

// NewPoolManager создаёт новый PoolManager.
func NewPoolManager(reader solbc.Reader, cfg Config, logger *zap.Logger) *PoolManager {
	if cfg.ProgramID.IsZero() {
		cfg.ProgramID = ProgramID
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	return &PoolManager{
		reader: reader,
		cfg:    cfg,
		logger: logger.Named("pool_manager"),
	}
}

// FindPool returns the deepest (token, WSOL) pool. RPC failures are retried
// with a constant backoff; a missing pool is not.
func (pm *PoolManager) FindPool(ctx context.Context, tokenMint solana.PublicKey) (*PoolInfo, error) {
	notify := func(err error, d time.Duration) {
		pm.logger.Debug("Retrying pool lookup",
			zap.String("token", tokenMint.String()),
			zap.Duration("backoff", d),
			zap.Error(err))
	}

	operation := func() (*PoolInfo, error) {
		pool, err := pm.findPool(ctx, tokenMint)
		if errors.Is(err, ErrPoolNotFound) {
			return nil, backoff.Permanent(err)
		}
		return pool, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(pm.cfg.RetryDelay)),
		backoff.WithMaxTries(uint(pm.cfg.MaxRetries)),
		backoff.WithNotify(notify))
}

// findPool загружает глобальную конфигурацию и кандидатов параллельно.
func (pm *PoolManager) findPool(ctx context.Context, tokenMint solana.PublicKey) (*PoolInfo, error) {
	var (
		cfg        *GlobalConfig
		candidates rpc.GetProgramAccountsResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cfg, err = pm.fetchGlobalConfig(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		candidates, err = pm.reader.GetProgramAccountsWithOpts(gctx, pm.cfg.ProgramID, &rpc.GetProgramAccountsOpts{
			Commitment: rpc.CommitmentConfirmed,
			Encoding:   solana.EncodingBase64,
			Filters: []rpc.RPCFilter{
				{Memcmp: &rpc.RPCFilterMemcmp{Offset: 0, Bytes: PoolDiscriminator}},
				{Memcmp: &rpc.RPCFilterMemcmp{Offset: offsetBaseMint, Bytes: tokenMint.Bytes()}},
				{Memcmp: &rpc.RPCFilterMemcmp{Offset: offsetQuoteMint, Bytes: solana.WrappedSol.Bytes()}},
			},
		})
		if err != nil {
			return fmt.Errorf("get program accounts: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	type candidate struct {
		address solana.PublicKey
		pool    *Pool
	}
	pools := make([]candidate, 0, len(candidates))
	vaults := make([]solana.PublicKey, 0, 2*len(candidates))
	for _, acc := range candidates {
		if acc == nil || acc.Account == nil {
			continue
		}
		p, err := ParsePool(acc.Account.Data.GetBinary())
		if err != nil {
			pm.logger.Debug("Skipping unparsable pool", zap.String("pool", acc.Pubkey.String()), zap.Error(err))
			continue
		}
		pools = append(pools, candidate{address: acc.Pubkey, pool: p})
		vaults = append(vaults, p.PoolBaseTokenAccount, p.PoolQuoteTokenAccount)
	}
	if len(pools) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, tokenMint)
	}

	// резервы всех кандидатов одним запросом
	res, err := pm.reader.GetMultipleAccounts(ctx, vaults)
	if err != nil {
		return nil, fmt.Errorf("get pool vaults: %w", err)
	}
	if len(res.Value) != len(vaults) {
		return nil, fmt.Errorf("get pool vaults: expected %d accounts, got %d", len(vaults), len(res.Value))
	}

	var best *PoolInfo
	for i, c := range pools {
		baseAcc, quoteAcc := res.Value[2*i], res.Value[2*i+1]
		if baseAcc == nil || quoteAcc == nil {
			continue
		}
		baseRes := tokenAmount(baseAcc.Data.GetBinary())
		quoteRes := tokenAmount(quoteAcc.Data.GetBinary())
		if baseRes == 0 || quoteRes == 0 {
			continue
		}
		if best != nil && quoteRes <= best.QuoteReserves {
			continue
		}
		best = &PoolInfo{
			Address:               c.address,
			BaseMint:              c.pool.BaseMint,
			QuoteMint:             c.pool.QuoteMint,
			BaseReserves:          baseRes,
			QuoteReserves:         quoteRes,
			LPMint:                c.pool.LPMint,
			PoolBaseTokenAccount:  c.pool.PoolBaseTokenAccount,
			PoolQuoteTokenAccount: c.pool.PoolQuoteTokenAccount,
			CoinCreator:           c.pool.CoinCreator,
			Config:                *cfg,
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: all candidate pools have zero liquidity for %s", ErrPoolNotFound, tokenMint)
	}

	pm.logger.Debug("Pool found",
		zap.String("pool", best.Address.String()),
		zap.Uint64("base_reserves", best.BaseReserves),
		zap.Uint64("quote_reserves", best.QuoteReserves))
	return best, nil
}

// fetchGlobalConfig получает глобальную конфигурацию программы PumpSwap.
func (pm *PoolManager) fetchGlobalConfig(ctx context.Context) (*GlobalConfig, error) {
	addr, err := pm.cfg.GlobalConfigAddress()
	if err != nil {
		return nil, err
	}
	info, err := pm.reader.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("get global config %s: %w", addr, err)
	}
	cfg, err := ParseGlobalConfig(info.Value.Data.GetBinary())
	if err != nil {
		pm.logger.Error("Не удалось разобрать глобальную конфигурацию", zap.String("global_config", addr.String()), zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
