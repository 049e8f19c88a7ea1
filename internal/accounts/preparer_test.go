package accounts

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/blockchain/solbc"
	"github.com/rovshanmuradov/swap-builder/internal/blockchain/solbc/solbctest"
)

const rent uint64 = 2_039_280

func TestIsSellAll(t *testing.T) {
	balance := big.NewInt(1_000_000)
	tests := []struct {
		name   string
		amount int64
		want   bool
	}{
		{"exact balance", 1_000_000, true},
		{"within 0.1%", 999_500, true},
		{"tolerance edge", 999_000, true},
		{"just outside", 998_999, false},
		{"partial sell", 900_000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSellAll(big.NewInt(tt.amount), balance))
		})
	}
	assert.False(t, IsSellAll(big.NewInt(1), big.NewInt(0)))
}

func TestPreparer_SellAll(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	ata, err := ATA(owner, mint)
	require.NoError(t, err)

	reader := new(solbctest.MockReader)
	reader.On("GetTokenAccountBalance", mock.Anything, ata).Return(solbctest.Balance(1_000_000, 6), nil)
	p := NewPreparer(reader, zap.NewNop())

	ixs := p.SellAll(context.Background(), owner, mint, big.NewInt(999_500))
	require.Len(t, ixs, 1)
	assert.Equal(t, solana.TokenProgramID, ixs[0].ProgramID())
	assert.Equal(t, ata, ixs[0].Accounts()[0].PublicKey)

	assert.Empty(t, p.SellAll(context.Background(), owner, mint, big.NewInt(900_000)))
}

func TestPreparer_SellAllBalanceErrorIsNonFatal(t *testing.T) {
	reader := new(solbctest.MockReader)
	reader.On("GetTokenAccountBalance", mock.Anything, mock.Anything).Return(nil, errors.New("rpc down"))
	p := NewPreparer(reader, zap.NewNop())

	ixs := p.SellAll(context.Background(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), big.NewInt(1))
	assert.Nil(t, ixs)
}

func TestPreparer_Ensure(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	existing := solana.NewWallet().PublicKey()
	missing := solana.NewWallet().PublicKey()
	existingATA, _ := ATA(owner, existing)
	missingATA, _ := ATA(owner, missing)

	reader := new(solbctest.MockReader)
	reader.On("GetAccountInfo", mock.Anything, existingATA).
		Return(solbctest.Account(solana.TokenProgramID, rent, solbctest.TokenAccountData(existing, owner, 5)), nil)
	reader.On("GetAccountInfo", mock.Anything, missingATA).Return(nil, solbc.ErrAccountNotFound)
	p := NewPreparer(reader, zap.NewNop())

	ixs, err := p.Ensure(context.Background(), owner, existing, missing, missing)
	require.NoError(t, err)
	require.Len(t, ixs, 1)

	ix := ixs[0]
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, ix.ProgramID())
	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, data)
	assert.Equal(t, missingATA, ix.Accounts()[1].PublicKey)
	assert.Equal(t, missing, ix.Accounts()[3].PublicKey)
	reader.AssertNumberOfCalls(t, "GetAccountInfo", 2)
}

func TestPreparer_EnsureLookupErrorFallsBackToCreate(t *testing.T) {
	reader := new(solbctest.MockReader)
	reader.On("GetAccountInfo", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
	p := NewPreparer(reader, zap.NewNop())

	ixs, err := p.Ensure(context.Background(), solana.NewWallet().PublicKey(), solana.WrappedSol)
	require.NoError(t, err)
	assert.Len(t, ixs, 1)
}

func TestWrapAmount(t *testing.T) {
	assert.Equal(t, big.NewInt(10_000_000+int64(rent)).String(), WrapAmount(big.NewInt(10_000_000), rent, 0).String())
	assert.Equal(t, "4000000", WrapAmount(big.NewInt(10_000_000), rent, 6_000_000+rent).String())
	assert.Equal(t, "0", WrapAmount(big.NewInt(10_000_000), rent, 20_000_000).String())
}

func TestPreparer_Wrap(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	wsolATA, _ := ATA(owner, solana.WrappedSol)

	reader := new(solbctest.MockReader)
	reader.On("GetMinimumBalanceForRentExemption", mock.Anything, TokenAccountSize).Return(rent, nil)
	reader.On("GetAccountInfo", mock.Anything, wsolATA).Return(nil, solbc.ErrAccountNotFound)
	p := NewPreparer(reader, zap.NewNop())

	ixs, err := p.Wrap(context.Background(), owner, big.NewInt(10_000_000))
	require.NoError(t, err)
	require.Len(t, ixs, 2)

	data, err := ixs[0].Data()
	require.NoError(t, err)
	decoded, err := system.DecodeInstruction(ixs[0].Accounts(), data)
	require.NoError(t, err)
	transfer := decoded.Impl.(*system.Transfer)
	assert.Equal(t, 10_000_000+rent, *transfer.Lamports)
	assert.Equal(t, wsolATA, ixs[0].Accounts()[1].PublicKey)

	assert.Equal(t, solana.TokenProgramID, ixs[1].ProgramID())
}

func TestPreparer_WrapAlreadyFunded(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	wsolATA, _ := ATA(owner, solana.WrappedSol)

	reader := new(solbctest.MockReader)
	reader.On("GetMinimumBalanceForRentExemption", mock.Anything, TokenAccountSize).Return(rent, nil)
	reader.On("GetAccountInfo", mock.Anything, wsolATA).
		Return(solbctest.Account(solana.TokenProgramID, 50_000_000, nil), nil)
	p := NewPreparer(reader, zap.NewNop())

	ixs, err := p.Wrap(context.Background(), owner, big.NewInt(10_000_000))
	require.NoError(t, err)
	assert.Empty(t, ixs)
}

func TestPreparer_Unwrap(t *testing.T) {
	p := NewPreparer(new(solbctest.MockReader), zap.NewNop())
	owner := solana.NewWallet().PublicKey()

	ixs, err := p.Unwrap(owner, big.NewInt(0))
	require.NoError(t, err)
	assert.Empty(t, ixs)

	ixs, err = p.Unwrap(owner, big.NewInt(1))
	require.NoError(t, err)
	require.Len(t, ixs, 1)
	wsolATA, _ := ATA(owner, solana.WrappedSol)
	assert.Equal(t, wsolATA, ixs[0].Accounts()[0].PublicKey)
}
