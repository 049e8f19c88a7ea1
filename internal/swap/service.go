// =============================================
// File: internal/swap/service.go
// =============================================
package swap

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/blockchain/solbc"
	"github.com/rovshanmuradov/swap-builder/internal/dex"
	"github.com/rovshanmuradov/swap-builder/internal/transaction"
	"github.com/rovshanmuradov/swap-builder/internal/utils/logger"
	"github.com/rovshanmuradov/swap-builder/internal/utils/metrics"
)

const DefaultRequestTimeout = 10 * time.Second

// Selector picks the venue strategy.
type Selector interface {
	Select(ctx context.Context, req *dex.SwapRequest) (dex.Strategy, error)
}

// Assembler compiles an instruction set.
type Assembler interface {
	Assemble(ctx context.Context, p transaction.AssembleParams) (*transaction.Assembled, error)
}

// Simulator runs an informational simulation.
type Simulator interface {
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*rpc.SimulateTransactionResponse, error)
}

type Options struct {
	RequestTimeout   time.Duration
	Simulate         bool   // default when the request does not say
	ComputeUnitLimit uint32 // 0 omits the instruction
}

// Service is the build pipeline: validate, route, generate, assemble, encode.
type Service struct {
	router    Selector
	assembler Assembler
	simulator Simulator
	opts      Options
	logger    *zap.Logger
}

func NewService(router Selector, assembler Assembler, simulator Simulator, opts Options, logger *zap.Logger) *Service {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	return &Service{
		router:    router,
		assembler: assembler,
		simulator: simulator,
		opts:      opts,
		logger:    logger.Named("swap"),
	}
}

// Build returns either every transaction of the swap or an error.
func (s *Service) Build(ctx context.Context, br BuildRequest) (*BuildResult, error) {
	start := time.Now()
	log, requestID := logger.Operation(s.logger, "build")

	req, err := Validate(br)
	var level transaction.PriorityLevel
	if err == nil {
		if level, err = transaction.ParsePriority(br.Priority); err != nil {
			err = dex.NewValidationError("%v", err)
		}
	}
	if err != nil {
		log.Info("Rejected build request", zap.Error(err))
		metrics.RecordBuild("", "invalid", time.Since(start), err)
		return nil, err
	}

	simulate := s.opts.Simulate
	if br.Simulate != nil {
		simulate = *br.Simulate
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	res, err := s.build(ctx, log, req, level, simulate)
	if err != nil && ctx.Err() != nil && dex.KindOf(err) != dex.KindTransientNetwork {
		err = dex.NewTransientNetworkError("build", errors.Join(ctx.Err(), err))
	}

	venue := ""
	if res != nil {
		venue = string(res.Venue)
		res.RequestID = requestID
	}
	metrics.RecordBuild(venue, string(req.Side), time.Since(start), err)

	if err != nil {
		log.Warn("Build failed",
			zap.String("token", req.TokenMint().String()),
			zap.String("side", string(req.Side)),
			zap.String("kind", string(dex.KindOf(err))),
			zap.Error(err))
		return nil, err
	}
	log.Info("Build completed",
		zap.String("venue", venue),
		zap.String("token", req.TokenMint().String()),
		zap.Int("transactions", len(res.Transactions)),
		zap.Uint64("fee_lamports", res.FeeLamports),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

func (s *Service) build(ctx context.Context, log *zap.Logger, req *dex.SwapRequest, level transaction.PriorityLevel, simulate bool) (*BuildResult, error) {
	strategy, err := s.router.Select(ctx, req)
	if err != nil {
		return nil, err
	}

	done := logger.TrackPerformance(log, "generate:"+string(strategy.Venue()))
	set, err := strategy.Generate(ctx, req)
	done()
	if err != nil {
		return nil, err
	}

	budget := transaction.ResolveBudget(level, transaction.Budget{
		UnitPrice: req.UnitPrice(),
		UnitLimit: s.opts.ComputeUnitLimit,
	})
	assembled, err := s.assembler.Assemble(ctx, transaction.AssembleParams{
		Set:       set,
		Payer:     req.User,
		UnitPrice: budget.UnitPrice,
		UnitLimit: budget.UnitLimit,
	})
	if err != nil {
		return nil, err
	}

	res := &BuildResult{
		Transactions: make([]string, 0, len(assembled.Transactions)),
		FeeLamports:  set.FeeLamports,
		Venue:        set.Venue,
		Quote:        quoteView(set.Quote),
	}
	if !set.PoolAddress.IsZero() {
		res.PoolAddress = set.PoolAddress.String()
	}
	if simulate {
		res.Simulation = s.simulate(ctx, log, assembled.Transactions[0])
	}

	for _, tx := range assembled.Transactions {
		encoded, err := transaction.Encode(tx)
		if err != nil {
			return nil, dex.NewCompileError("encode", err)
		}
		res.Transactions = append(res.Transactions, encoded)
	}
	return res, nil
}

// simulate never fails the build.
func (s *Service) simulate(ctx context.Context, log *zap.Logger, tx *solana.Transaction) *solbc.SimulationResult {
	if s.simulator == nil {
		return nil
	}
	resp, err := s.simulator.SimulateTransaction(ctx, tx)
	if err != nil {
		log.Debug("Simulation unavailable", zap.Error(err))
		return &solbc.SimulationResult{Error: err.Error()}
	}
	return solbc.AnalyzeSimulation(resp, log)
}
