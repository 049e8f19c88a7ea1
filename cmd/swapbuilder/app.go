package main

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/accounts"
	"github.com/rovshanmuradov/swap-builder/internal/blockchain/solbc"
	"github.com/rovshanmuradov/swap-builder/internal/cache"
	"github.com/rovshanmuradov/swap-builder/internal/config"
	"github.com/rovshanmuradov/swap-builder/internal/dex"
	"github.com/rovshanmuradov/swap-builder/internal/dex/boop"
	"github.com/rovshanmuradov/swap-builder/internal/dex/launchlab"
	"github.com/rovshanmuradov/swap-builder/internal/dex/moonshot"
	"github.com/rovshanmuradov/swap-builder/internal/dex/pumpfun"
	"github.com/rovshanmuradov/swap-builder/internal/dex/pumpswap"
	"github.com/rovshanmuradov/swap-builder/internal/egress"
	"github.com/rovshanmuradov/swap-builder/internal/fee"
	"github.com/rovshanmuradov/swap-builder/internal/swap"
	"github.com/rovshanmuradov/swap-builder/internal/transaction"
	"github.com/rovshanmuradov/swap-builder/internal/utils/logger"
)

// app holds the wired build pipeline.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	service *swap.Service
	closers []func() error
}

func loadApp(ctx context.Context, stderrLogs bool) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	logCfg.Stderr = stderrLogs
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, log: log}
	if err := a.wire(ctx); err != nil {
		_ = log.Sync()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg, log := a.cfg, a.log.Logger
	chainLog := a.log.WithComponent("chain")

	client := solbc.NewClient(cfg.RPCList, chainLog)

	tableAddrs, err := cfg.LookupTableAddresses()
	if err != nil {
		return err
	}
	tables := solbc.NewLookupTables(client, tableAddrs, cfg.LookupTables.RefreshInterval, chainLog)
	tables.Start(ctx)

	httpClient, err := egress.NewClient(egress.Config{
		MaxRetries:          cfg.Egress.MaxRetries,
		AttemptTimeout:      cfg.Egress.AttemptTimeout,
		RetryDelay:          cfg.Egress.RetryDelay,
		Proxies:             cfg.Egress.Proxies,
		ProxiedRoutes:       cfg.Egress.ProxiedRoutes,
		ProxyBlacklistReset: cfg.Egress.ProxyBlacklistReset,
		RateLimit:           cfg.Egress.RateLimit,
		RateBurst:           cfg.Egress.RateBurst,
		BreakerFailures:     cfg.Egress.BreakerFailures,
		BreakerTimeout:      cfg.Egress.BreakerTimeout,
		UserAgent:           egress.DefaultConfig().UserAgent,
	}, a.log.WithComponent("egress"))
	if err != nil {
		return fmt.Errorf("init egress: %w", err)
	}

	var recipient solana.PublicKey
	if cfg.Fee.Bps > 0 {
		if recipient, err = cfg.FeeRecipient(); err != nil {
			return err
		}
	}
	fees := fee.NewCalculator(cfg.Fee.Bps, recipient)
	support := &dex.Support{
		Accounts: accounts.NewPreparer(client, chainLog),
		Fees:     fees,
	}

	strategies, err := a.strategies(client, httpClient, support, fees)
	if err != nil {
		return err
	}

	store, err := a.selectionStore(ctx)
	if err != nil {
		return err
	}

	priority, err := cfg.Priority()
	if err != nil {
		return err
	}
	router, err := dex.NewRouter(strategies, priority, store, cfg.TTLs(), a.log.WithComponent("router"))
	if err != nil {
		return fmt.Errorf("init router: %w", err)
	}

	assembler := transaction.NewAssembler(client, tables, a.log.WithComponent("assembler"))
	a.service = swap.NewService(router, assembler, client, swap.Options{
		RequestTimeout:   cfg.RequestTimeout,
		Simulate:         cfg.Simulate,
		ComputeUnitLimit: cfg.ComputeUnitLimit,
	}, a.log.WithComponent("swap"))

	log.Info("Swap builder wired",
		zap.Strings("rpc", cfg.RPCList),
		zap.Int("lookup_tables", len(tableAddrs)),
		zap.Uint64("fee_bps", cfg.Fee.Bps),
		zap.Any("priority", priority))
	return nil
}

func (a *app) strategies(reader solbc.Reader, httpClient egress.JSONClient, support *dex.Support, fees *fee.Calculator) ([]dex.Strategy, error) {
	cfg, log := a.cfg, a.log.WithComponent("venue")

	psCfg := pumpswap.DefaultConfig()
	psCfg.ProgramID = cfg.ProgramID(dex.VenuePumpSwap, psCfg.ProgramID)
	psCfg.FeeBasis = cfg.FeeBasis(dex.VenuePumpSwap)

	pfCfg := pumpfun.DefaultConfig()
	pfCfg.ProgramID = cfg.ProgramID(dex.VenuePumpFun, pfCfg.ProgramID)
	pfCfg.FeeBasis = cfg.FeeBasis(dex.VenuePumpFun)

	boopCfg := boop.DefaultConfig()
	boopCfg.ProgramID = cfg.ProgramID(dex.VenueBoop, boopCfg.ProgramID)
	boopCfg.FeeBasis = cfg.FeeBasis(dex.VenueBoop)

	msCfg := moonshot.DefaultConfig()
	if u := cfg.Venues.Moonshot.APIURL; u != "" {
		msCfg.BaseURL = u
	}
	cutoff, err := cfg.MigrationCutoff()
	if err != nil {
		return nil, err
	}
	msCfg.MigrationCutoff = cutoff
	msCfg.FeeBasis = cfg.FeeBasis(dex.VenueMoonshot)

	llCfg := launchlab.DefaultConfig()
	llCfg.ProgramID = cfg.ProgramID(dex.VenueLaunchLab, llCfg.ProgramID)
	if u := cfg.Venues.LaunchLab.APIURL; u != "" {
		llCfg.BaseURL = u
	}
	llCfg.ShareFeeRate = cfg.Venues.LaunchLab.ShareFeeRate
	llCfg.FeeBasis = cfg.FeeBasis(dex.VenueLaunchLab)

	return []dex.Strategy{
		pumpfun.NewStrategy(pumpfun.NewChainSource(reader, pfCfg, log), support, pfCfg, log),
		boop.NewStrategy(boop.NewChainSource(reader, boopCfg, log), support, boopCfg, log),
		launchlab.NewStrategy(launchlab.NewHTTPAPI(httpClient, llCfg.BaseURL), support, llCfg, log),
		moonshot.NewStrategy(moonshot.NewHTTPAPI(httpClient, msCfg.BaseURL), fees, msCfg, log),
		pumpswap.NewStrategy(pumpswap.NewPoolManager(reader, psCfg, log), support, psCfg, log),
	}, nil
}

// selectionStore returns redis when configured, otherwise an in-process map.
func (a *app) selectionStore(ctx context.Context) (cache.Store, error) {
	if a.cfg.Router.RedisURL == "" {
		return cache.NewMemoryStore(), nil
	}
	opts, err := cache.RedisOptionsFromURL(a.cfg.Router.RedisURL)
	if err != nil {
		return nil, err
	}
	store, err := cache.NewRedisStore(ctx, opts, a.log.WithComponent("cache"))
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn("Close failed", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}
