// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"math"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	addresslookuptable "github.com/gagliardetto/solana-go/programs/address-lookup-table"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Reader is the read-only chain port consumed by the builder.
type Reader interface {
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	GetMultipleAccounts(ctx context.Context, pubkeys []solana.PublicKey) (*rpc.GetMultipleAccountsResult, error)
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (*rpc.GetTokenAccountBalanceResult, error)
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error)
	GetMintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error)
	GetProgramAccountsWithOpts(ctx context.Context, programID solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error)
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*rpc.SimulateTransactionResponse, error)
}

// Client – тонкий адаптер для чтения состояния Solana через solana-go.
// Calls fail over across every configured RPC node.
type Client struct {
	pool       *nodePool
	logger     *zap.Logger
	commitment rpc.CommitmentType
}

var _ Reader = (*Client)(nil)

// Определение ошибок
var (
	ErrAccountNotFound = errors.New("account not found")
)

// IsAccountNotFoundError проверяет, является ли ошибка "not found"
func IsAccountNotFoundError(err error) bool {
	return errors.Is(err, ErrAccountNotFound) || errors.Is(err, rpc.ErrNotFound)
}

// NewClient создаёт новый клиент поверх списка RPC URL.
func NewClient(rpcURLs []string, logger *zap.Logger) *Client {
	nodes := make([]*node, 0, len(rpcURLs))
	for _, u := range rpcURLs {
		nodes = append(nodes, &node{url: u, rpc: rpc.New(u)})
	}
	logger = logger.Named("solbc-client")
	return &Client{
		pool:       newNodePool(nodes, DefaultNodeCooldown, logger),
		logger:     logger,
		commitment: rpc.CommitmentConfirmed,
	}
}

// GetLatestBlockhash получает последний blockhash.
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var result *rpc.GetLatestBlockhashResult
	err := c.pool.do(ctx, "getLatestBlockhash", func(r *rpc.Client) (err error) {
		result, err = r.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
		return err
	})
	if err != nil {
		c.logger.Error("GetLatestBlockhash error", zap.Error(err))
		return solana.Hash{}, err
	}
	return result.Value.Blockhash, nil
}

// GetAccountInfo получает информацию об аккаунте. Отсутствующий аккаунт
// возвращается как ErrAccountNotFound.
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	var result *rpc.GetAccountInfoResult
	err := c.pool.do(ctx, "getAccountInfo", func(r *rpc.Client) (err error) {
		result, err = r.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
			Commitment: c.commitment,
			Encoding:   solana.EncodingBase64,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, pubkey)
		}
		c.logger.Debug("GetAccountInfo error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return nil, err
	}
	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, pubkey)
	}
	return result, nil
}

// GetMultipleAccounts получает информацию о нескольких аккаунтах за один запрос
func (c *Client) GetMultipleAccounts(ctx context.Context, pubkeys []solana.PublicKey) (*rpc.GetMultipleAccountsResult, error) {
	if len(pubkeys) == 0 {
		return &rpc.GetMultipleAccountsResult{}, nil
	}

	var res *rpc.GetMultipleAccountsResult
	err := c.pool.do(ctx, "getMultipleAccounts", func(r *rpc.Client) (err error) {
		res, err = r.GetMultipleAccountsWithOpts(ctx, pubkeys, &rpc.GetMultipleAccountsOpts{
			Commitment: c.commitment,
			Encoding:   solana.EncodingBase64,
		})
		return err
	})
	if err != nil {
		c.logger.Debug("GetMultipleAccounts error", zap.Error(err))
		return nil, err
	}
	return res, nil
}

// GetProgramAccountsWithOpts получает все аккаунты программы с опциями фильтрации
func (c *Client) GetProgramAccountsWithOpts(ctx context.Context, programID solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error) {
	var accounts rpc.GetProgramAccountsResult
	err := c.pool.do(ctx, "getProgramAccounts", func(r *rpc.Client) (err error) {
		accounts, err = r.GetProgramAccountsWithOpts(ctx, programID, opts)
		return err
	})
	if err != nil {
		c.logger.Debug("GetProgramAccountsWithOpts error",
			zap.String("program_id", programID.String()),
			zap.Error(err))
		return nil, err
	}
	return accounts, nil
}

// GetTokenAccountBalance получает баланс токен-аккаунта.
func (c *Client) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (*rpc.GetTokenAccountBalanceResult, error) {
	var result *rpc.GetTokenAccountBalanceResult
	err := c.pool.do(ctx, "getTokenAccountBalance", func(r *rpc.Client) (err error) {
		result, err = r.GetTokenAccountBalance(ctx, account, c.commitment)
		return err
	})
	if err != nil {
		c.logger.Debug("GetTokenAccountBalance error",
			zap.String("account", account.String()),
			zap.Error(err))
		return nil, err
	}
	return result, nil
}

// GetMinimumBalanceForRentExemption returns the rent-exempt minimum for an account of dataSize bytes.
func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error) {
	var lamports uint64
	err := c.pool.do(ctx, "getMinimumBalanceForRentExemption", func(r *rpc.Client) (err error) {
		lamports, err = r.GetMinimumBalanceForRentExemption(ctx, dataSize, c.commitment)
		return err
	})
	if err != nil {
		c.logger.Debug("GetMinimumBalanceForRentExemption error", zap.Uint64("size", dataSize), zap.Error(err))
		return 0, err
	}
	return lamports, nil
}

// GetMintDecimals получает количество десятичных знаков для токена.
func (c *Client) GetMintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	if mint.Equals(solana.SolMint) {
		return 9, nil
	}
	info, err := c.GetAccountInfo(ctx, mint)
	if err != nil {
		return 0, fmt.Errorf("failed to get mint info: %w", err)
	}
	return DecodeMintDecimals(info.Value.Data.GetBinary())
}

// DecodeMintDecimals decodes an SPL mint account and returns its decimals.
func DecodeMintDecimals(data []byte) (uint8, error) {
	var mintInfo token.Mint
	if err := bin.NewBinDecoder(data).Decode(&mintInfo); err != nil {
		return 0, fmt.Errorf("failed to decode mint: %w", err)
	}
	return mintInfo.Decimals, nil
}

// SimulateTransaction simulates an unsigned transaction. Signature checks are
// disabled and the blockhash is replaced by the node.
func (c *Client) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*rpc.SimulateTransactionResponse, error) {
	var res *rpc.SimulateTransactionResponse
	err := c.pool.do(ctx, "simulateTransaction", func(r *rpc.Client) (err error) {
		res, err = r.SimulateTransactionWithOpts(ctx, tx, &rpc.SimulateTransactionOpts{
			SigVerify:              false,
			Commitment:             rpc.CommitmentProcessed,
			ReplaceRecentBlockhash: true,
		})
		return err
	})
	if err != nil {
		c.logger.Debug("SimulateTransaction error", zap.Error(err))
		return nil, err
	}
	return res, nil
}

// AddressLookupTable reads a lookup table and reports whether it is still active.
func (c *Client) AddressLookupTable(ctx context.Context, table solana.PublicKey) (solana.PublicKeySlice, bool, error) {
	var state *addresslookuptable.AddressLookupTableState
	err := c.pool.do(ctx, "getAddressLookupTable", func(r *rpc.Client) (err error) {
		state, err = addresslookuptable.GetAddressLookupTable(ctx, r, table)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return state.Addresses, state.DeactivationSlot == math.MaxUint64, nil
}
