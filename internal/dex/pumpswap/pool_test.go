package pumpswap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/blockchain/solbc/solbctest"
)

func TestParseGlobalConfig(t *testing.T) {
	recipient := newKey()
	in := GlobalConfig{Admin: newKey(), LPFeeBasisPoints: 20, ProtocolFeeBasisPoints: 5, DisableFlags: DisableSell}
	in.ProtocolFeeRecipients[2] = recipient

	cfg, err := ParseGlobalConfig(encodeGlobalConfig(in))
	require.NoError(t, err)
	assert.Equal(t, in.Admin, cfg.Admin)
	assert.Equal(t, uint64(25), cfg.TotalFeeBps())
	assert.Equal(t, recipient, cfg.FeeRecipient())
	assert.NotZero(t, cfg.DisableFlags&DisableSell)

	_, err = ParseGlobalConfig(encodeGlobalConfig(in)[:40])
	assert.Error(t, err)
}

func TestParsePool(t *testing.T) {
	in := Pool{
		PoolBump: 254, Index: 3,
		Creator: newKey(), BaseMint: newKey(), QuoteMint: solana.WrappedSol, LPMint: newKey(),
		PoolBaseTokenAccount: newKey(), PoolQuoteTokenAccount: newKey(),
		LPSupply: 42, CoinCreator: newKey(),
	}
	p, err := ParsePool(encodePool(in))
	require.NoError(t, err)
	assert.Equal(t, in, *p)

	bad := encodePool(in)
	bad[0] ^= 0xff
	_, err = ParsePool(bad)
	assert.Error(t, err)
}

type poolFixture struct {
	reader  *solbctest.MockReader
	manager *PoolManager
	token   solana.PublicKey
	cfg     GlobalConfig
}

func newPoolFixture(t *testing.T) *poolFixture {
	t.Helper()
	f := &poolFixture{
		reader: new(solbctest.MockReader),
		token:  newKey(),
		cfg:    GlobalConfig{LPFeeBasisPoints: 20, ProtocolFeeBasisPoints: 5},
	}
	f.cfg.ProtocolFeeRecipients[0] = newKey()

	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	f.manager = NewPoolManager(f.reader, cfg, zap.NewNop())

	addr, err := cfg.GlobalConfigAddress()
	require.NoError(t, err)
	f.reader.On("GetAccountInfo", mock.Anything, addr).
		Return(solbctest.Account(ProgramID, 1, encodeGlobalConfig(f.cfg)), nil)
	return f
}

func (f *poolFixture) pool() (solana.PublicKey, Pool) {
	return newKey(), Pool{
		BaseMint: f.token, QuoteMint: solana.WrappedSol, LPMint: newKey(),
		PoolBaseTokenAccount: newKey(), PoolQuoteTokenAccount: newKey(), CoinCreator: newKey(),
	}
}

func TestPoolManager_FindPoolPicksDeepest(t *testing.T) {
	f := newPoolFixture(t)
	shallowAddr, shallow := f.pool()
	deepAddr, deep := f.pool()
	emptyAddr, empty := f.pool()

	f.reader.On("GetProgramAccountsWithOpts", mock.Anything, ProgramID, mock.Anything).Return(rpc.GetProgramAccountsResult{
		{Pubkey: shallowAddr, Account: solbctest.AccountValue(ProgramID, 1, encodePool(shallow))},
		{Pubkey: deepAddr, Account: solbctest.AccountValue(ProgramID, 1, encodePool(deep))},
		{Pubkey: emptyAddr, Account: solbctest.AccountValue(ProgramID, 1, encodePool(empty))},
	}, nil)

	vault := func(amount uint64) *rpc.Account {
		return solbctest.AccountValue(solana.TokenProgramID, 1, solbctest.TokenAccountData(f.token, newKey(), amount))
	}
	f.reader.On("GetMultipleAccounts", mock.Anything, []solana.PublicKey{
		shallow.PoolBaseTokenAccount, shallow.PoolQuoteTokenAccount,
		deep.PoolBaseTokenAccount, deep.PoolQuoteTokenAccount,
		empty.PoolBaseTokenAccount, empty.PoolQuoteTokenAccount,
	}).Return(&rpc.GetMultipleAccountsResult{Value: []*rpc.Account{
		vault(1_000), vault(5_000),
		vault(1_000_000), vault(100_000_000_000),
		vault(0), vault(900_000_000_000),
	}}, nil)

	pool, err := f.manager.FindPool(context.Background(), f.token)
	require.NoError(t, err)
	assert.Equal(t, deepAddr, pool.Address)
	assert.Equal(t, uint64(1_000_000), pool.BaseReserves)
	assert.Equal(t, uint64(100_000_000_000), pool.QuoteReserves)
	assert.Equal(t, uint64(25), pool.Config.TotalFeeBps())
	assert.Equal(t, deep.CoinCreator, pool.CoinCreator)
}

func TestPoolManager_NotFoundIsNotRetried(t *testing.T) {
	f := newPoolFixture(t)
	f.reader.On("GetProgramAccountsWithOpts", mock.Anything, ProgramID, mock.Anything).
		Return(rpc.GetProgramAccountsResult{}, nil)

	_, err := f.manager.FindPool(context.Background(), f.token)
	assert.ErrorIs(t, err, ErrPoolNotFound)
	f.reader.AssertNumberOfCalls(t, "GetProgramAccountsWithOpts", 1)
}

func TestPoolManager_RetriesRPCErrors(t *testing.T) {
	f := newPoolFixture(t)
	f.reader.On("GetProgramAccountsWithOpts", mock.Anything, ProgramID, mock.Anything).
		Return(nil, errors.New("429 too many requests"))

	_, err := f.manager.FindPool(context.Background(), f.token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPoolNotFound)
	f.reader.AssertNumberOfCalls(t, "GetProgramAccountsWithOpts", 3)
}
