package pumpswap

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/accounts"
	"github.com/rovshanmuradov/swap-builder/internal/blockchain/solbc"
	"github.com/rovshanmuradov/swap-builder/internal/blockchain/solbc/solbctest"
	"github.com/rovshanmuradov/swap-builder/internal/dex"
	"github.com/rovshanmuradov/swap-builder/internal/fee"
)

type stubPools struct {
	pool *PoolInfo
	err  error
}

func (s stubPools) FindPool(context.Context, solana.PublicKey) (*PoolInfo, error) {
	return s.pool, s.err
}

func testPool(token solana.PublicKey) *PoolInfo {
	p := &PoolInfo{
		Address:               newKey(),
		BaseMint:              token,
		QuoteMint:             solana.WrappedSol,
		BaseReserves:          1_000_000,
		QuoteReserves:         100_000_000_000,
		PoolBaseTokenAccount:  newKey(),
		PoolQuoteTokenAccount: newKey(),
		CoinCreator:           newKey(),
	}
	p.Config.ProtocolFeeRecipients[0] = newKey()
	return p
}

func newTestStrategy(pools PoolSource, reader solbc.Reader) *Strategy {
	support := &dex.Support{
		Accounts: accounts.NewPreparer(reader, zap.NewNop()),
		Fees:     fee.NewCalculator(fee.DefaultBps, newKey()),
	}
	return NewStrategy(pools, support, DefaultConfig(), zap.NewNop())
}

func swapArgs(t *testing.T, ix solana.Instruction) ([]byte, uint64, uint64) {
	t.Helper()
	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 24)
	return data[:8], binary.LittleEndian.Uint64(data[8:16]), binary.LittleEndian.Uint64(data[16:24])
}

func TestStrategy_BuyExactIn(t *testing.T) {
	token := newKey()
	user := newKey()
	reader := new(solbctest.MockReader)
	reader.On("GetAccountInfo", mock.Anything, mock.Anything).Return(nil, solbc.ErrAccountNotFound)
	reader.On("GetMinimumBalanceForRentExemption", mock.Anything, accounts.TokenAccountSize).Return(uint64(2_039_280), nil)

	pool := testPool(token)
	s := newTestStrategy(stubPools{pool: pool}, reader)

	req := &dex.SwapRequest{
		InputMint:   solana.SolMint,
		OutputMint:  token,
		Amount:      decimal.RequireFromString("0.01"),
		SlippageBps: 500,
		User:        user,
		Side:        dex.SideBuy,
		Mode:        dex.ModeExactIn,
	}
	set, err := s.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, dex.VenuePumpSwap, set.Venue)
	assert.Equal(t, pool.Address, set.PoolAddress)
	assert.Equal(t, "10000000", set.Quote.AmountIn.String())
	assert.Equal(t, "99", set.Quote.ExpectedOut.String())
	assert.Equal(t, "94", set.Quote.MinOut.String())
	assert.Equal(t, uint64(100_000), set.FeeLamports)
	require.NotNil(t, set.Fee)

	require.Len(t, set.Swap, 1)
	disc, base, quote := swapArgs(t, set.Swap[0])
	assert.Equal(t, buyDiscriminator, disc)
	assert.Equal(t, uint64(94), base)
	assert.Equal(t, uint64(10_000_000), quote)
	assert.Len(t, set.Swap[0].Accounts(), 19)
	assert.Equal(t, user, set.Swap[0].Accounts()[1].PublicKey)

	// two ATA creates, then transfer + sync native
	require.Len(t, set.Setup, 4)
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, set.Setup[0].ProgramID())
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, set.Setup[1].ProgramID())
	assert.Equal(t, solana.SystemProgramID, set.Setup[2].ProgramID())
	assert.Equal(t, solana.TokenProgramID, set.Setup[3].ProgramID())

	// WSOL close only
	require.Len(t, set.Cleanup, 1)
	assert.Equal(t, solana.TokenProgramID, set.Cleanup[0].ProgramID())
}

func TestStrategy_SellAllClosesTokenAccount(t *testing.T) {
	token := newKey()
	user := newKey()
	tokenATA, _ := accounts.ATA(user, token)

	reader := new(solbctest.MockReader)
	reader.On("GetMintDecimals", mock.Anything, token).Return(uint8(6), nil)
	reader.On("GetAccountInfo", mock.Anything, mock.Anything).Return(solbctest.Account(solana.TokenProgramID, 1, nil), nil)
	reader.On("GetTokenAccountBalance", mock.Anything, tokenATA).Return(solbctest.Balance(1_000_000, 6), nil)

	pool := testPool(token)
	pool.BaseReserves = 1_000_000_000
	s := newTestStrategy(stubPools{pool: pool}, reader)

	set, err := s.Generate(context.Background(), &dex.SwapRequest{
		InputMint:   token,
		OutputMint:  solana.SolMint,
		Amount:      decimal.RequireFromString("0.9995"),
		SlippageBps: 100,
		User:        user,
		Side:        dex.SideSell,
		Mode:        dex.ModeExactIn,
	})
	require.NoError(t, err)

	disc, base, quote := swapArgs(t, set.Swap[0])
	assert.Equal(t, sellDiscriminator, disc)
	assert.Equal(t, uint64(999_500), base)
	assert.Equal(t, set.Quote.MinOut.Uint64(), quote)

	// fee on the expected SOL output
	assert.Equal(t, set.Quote.ExpectedOut.Uint64()/100, set.FeeLamports)

	assert.Empty(t, set.Setup, "accounts exist, nothing to wrap on a sell")
	require.Len(t, set.Cleanup, 2)
	assert.Equal(t, tokenATA, set.Cleanup[1].Accounts()[0].PublicKey)
}

func TestStrategy_BuyExactOut(t *testing.T) {
	token := newKey()
	reader := new(solbctest.MockReader)
	reader.On("GetMintDecimals", mock.Anything, token).Return(uint8(0), nil)
	reader.On("GetAccountInfo", mock.Anything, mock.Anything).Return(nil, solbc.ErrAccountNotFound)
	reader.On("GetMinimumBalanceForRentExemption", mock.Anything, mock.Anything).Return(uint64(2_039_280), nil)

	s := newTestStrategy(stubPools{pool: testPool(token)}, reader)
	set, err := s.Generate(context.Background(), &dex.SwapRequest{
		InputMint:   solana.SolMint,
		OutputMint:  token,
		Amount:      decimal.NewFromInt(500),
		SlippageBps: 100,
		User:        newKey(),
		Side:        dex.SideBuy,
		Mode:        dex.ModeExactOut,
	})
	require.NoError(t, err)
	require.NotNil(t, set.Quote.MaxIn)

	_, base, quote := swapArgs(t, set.Swap[0])
	assert.Equal(t, uint64(500), base)
	assert.Equal(t, set.Quote.MaxIn.Uint64(), quote)
}

func TestStrategy_Errors(t *testing.T) {
	token := newKey()
	req := &dex.SwapRequest{
		InputMint: token, OutputMint: solana.SolMint, Amount: decimal.NewFromInt(1),
		User: newKey(), Side: dex.SideSell, Mode: dex.ModeExactOut,
	}

	s := newTestStrategy(stubPools{pool: testPool(token)}, new(solbctest.MockReader))
	_, err := s.Generate(context.Background(), req)
	assert.ErrorIs(t, err, dex.ErrVenueQuote)

	s = newTestStrategy(stubPools{err: errors.New("rpc down")}, new(solbctest.MockReader))
	_, err = s.Generate(context.Background(), req)
	assert.ErrorIs(t, err, dex.ErrVenueQuote)
	assert.Equal(t, dex.KindVenueQuote, dex.KindOf(err))
}

func TestStrategy_CanHandle(t *testing.T) {
	req := &dex.SwapRequest{OutputMint: newKey(), Side: dex.SideBuy}

	ok, err := newTestStrategy(stubPools{pool: testPool(req.OutputMint)}, nil).CanHandle(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = newTestStrategy(stubPools{err: ErrPoolNotFound}, nil).CanHandle(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = newTestStrategy(stubPools{err: errors.New("boom")}, nil).CanHandle(context.Background(), req)
	assert.Error(t, err)
}
