// internal/blockchain/solbc/solbctest/reader.go
package solbctest

import (
	"context"
	"encoding/binary"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/mock"

	"github.com/rovshanmuradov/swap-builder/internal/blockchain/solbc"
)

// MockReader реализует solbc.Reader для тестов.
type MockReader struct {
	mock.Mock
}

var _ solbc.Reader = (*MockReader)(nil)

func (m *MockReader) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	args := m.Called(ctx, pubkey)
	res, _ := args.Get(0).(*rpc.GetAccountInfoResult)
	return res, args.Error(1)
}

func (m *MockReader) GetMultipleAccounts(ctx context.Context, pubkeys []solana.PublicKey) (*rpc.GetMultipleAccountsResult, error) {
	args := m.Called(ctx, pubkeys)
	res, _ := args.Get(0).(*rpc.GetMultipleAccountsResult)
	return res, args.Error(1)
}

func (m *MockReader) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (*rpc.GetTokenAccountBalanceResult, error) {
	args := m.Called(ctx, account)
	res, _ := args.Get(0).(*rpc.GetTokenAccountBalanceResult)
	return res, args.Error(1)
}

func (m *MockReader) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	args := m.Called(ctx)
	return args.Get(0).(solana.Hash), args.Error(1)
}

func (m *MockReader) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error) {
	args := m.Called(ctx, dataSize)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockReader) GetMintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	args := m.Called(ctx, mint)
	return args.Get(0).(uint8), args.Error(1)
}

func (m *MockReader) GetProgramAccountsWithOpts(ctx context.Context, programID solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error) {
	args := m.Called(ctx, programID, opts)
	res, _ := args.Get(0).(rpc.GetProgramAccountsResult)
	return res, args.Error(1)
}

func (m *MockReader) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*rpc.SimulateTransactionResponse, error) {
	args := m.Called(ctx, tx)
	res, _ := args.Get(0).(*rpc.SimulateTransactionResponse)
	return res, args.Error(1)
}

// Account wraps raw data as an account lookup result.
func Account(owner solana.PublicKey, lamports uint64, data []byte) *rpc.GetAccountInfoResult {
	return &rpc.GetAccountInfoResult{
		Value: AccountValue(owner, lamports, data),
	}
}

// AccountValue builds a single rpc.Account with base64 data.
func AccountValue(owner solana.PublicKey, lamports uint64, data []byte) *rpc.Account {
	return &rpc.Account{
		Lamports: lamports,
		Owner:    owner,
		Data:     rpc.DataBytesOrJSONFromBytes(data),
	}
}

// Balance builds a token balance result.
func Balance(amount uint64, decimals uint8) *rpc.GetTokenAccountBalanceResult {
	return &rpc.GetTokenAccountBalanceResult{
		Value: &rpc.UiTokenAmount{
			Amount:   strconv.FormatUint(amount, 10),
			Decimals: decimals,
		},
	}
}

// TokenAccountData returns a 165-byte SPL token account with amount set.
func TokenAccountData(mint, owner solana.PublicKey, amount uint64) []byte {
	data := make([]byte, 165)
	copy(data[0:32], mint[:])
	copy(data[32:64], owner[:])
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = 1 // initialized
	return data
}
