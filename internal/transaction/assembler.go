// =============================================
// File: internal/transaction/assembler.go
// =============================================
package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/dex"
)

// Network limits checked before a transaction is returned.
const (
	MaxPacketSize   = 1232
	MaxAccountLocks = 64
)

var (
	ErrEmptyTransaction = errors.New("transaction has no instructions")
	ErrTooLarge         = errors.New("transaction exceeds packet size")
	ErrTooManyAccounts  = errors.New("transaction exceeds account lock limit")
)

// BlockhashSource supplies the recent blockhash.
type BlockhashSource interface {
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
}

// AddressTableSource supplies lookup tables for v0 messages.
type AddressTableSource interface {
	AddressTables() map[solana.PublicKey]solana.PublicKeySlice
}

type noTables struct{}

func (noTables) AddressTables() map[solana.PublicKey]solana.PublicKeySlice { return nil }

// Assembler compiles instruction sets into unsigned transactions.
type Assembler struct {
	blockhash BlockhashSource
	tables    AddressTableSource
	logger    *zap.Logger
}

func NewAssembler(blockhash BlockhashSource, tables AddressTableSource, logger *zap.Logger) *Assembler {
	if tables == nil {
		tables = noTables{}
	}
	return &Assembler{blockhash: blockhash, tables: tables, logger: logger.Named("assembler")}
}

type AssembleParams struct {
	Set       *dex.InstructionSet
	Payer     solana.PublicKey
	UnitPrice uint64 // micro-lamports per CU
	UnitLimit uint32 // 0 leaves the runtime default
}

// Assembled holds the transactions to sign, in submission order.
type Assembled struct {
	Transactions []*solana.Transaction
	Blockhash    solana.Hash
}

// Assemble builds the unsigned transactions for p.Set. A vendor pre-built
// transaction is returned unchanged, followed by a separate fee transfer
// when the fee is non-zero.
func (a *Assembler) Assemble(ctx context.Context, p AssembleParams) (*Assembled, error) {
	if p.Set == nil {
		return nil, dex.NewCompileError("assemble", errors.New("nil instruction set"))
	}

	blockhash, err := a.blockhash.GetLatestBlockhash(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, dex.NewTransientNetworkError("blockhash", ctxErr)
		}
		return nil, dex.NewCompileError("blockhash", err)
	}

	out := &Assembled{Blockhash: blockhash}

	if p.Set.Prebuilt != nil {
		out.Transactions = append(out.Transactions, p.Set.Prebuilt)
		if p.Set.Fee != nil {
			feeIxs := append(BudgetInstructions(p.UnitPrice, 0), p.Set.Fee)
			feeTx, err := a.compile(feeIxs, p.Payer, blockhash)
			if err != nil {
				return nil, err
			}
			out.Transactions = append(out.Transactions, feeTx)
		}
		a.logger.Debug("Pre-built transaction passed through",
			zap.String("venue", string(p.Set.Venue)),
			zap.Int("transactions", len(out.Transactions)))
		return out, nil
	}

	tx, err := a.compile(Order(p.Set, p.UnitPrice, p.UnitLimit), p.Payer, blockhash)
	if err != nil {
		return nil, err
	}
	out.Transactions = append(out.Transactions, tx)
	return out, nil
}

func (a *Assembler) compile(instructions []solana.Instruction, payer solana.PublicKey, blockhash solana.Hash) (*solana.Transaction, error) {
	if len(instructions) == 0 {
		return nil, dex.NewCompileError("compile", ErrEmptyTransaction)
	}

	opts := []solana.TransactionOption{solana.TransactionPayer(payer)}
	if tables := a.tables.AddressTables(); len(tables) > 0 {
		opts = append(opts, solana.TransactionAddressTables(tables))
	}

	tx, err := solana.NewTransaction(instructions, blockhash, opts...)
	if err != nil {
		return nil, dex.NewCompileError("compile", err)
	}
	if err := Validate(tx); err != nil {
		return nil, dex.NewCompileError("validate", err)
	}
	return tx, nil
}

// Validate checks the packet size and the account lock limit of tx.
func Validate(tx *solana.Transaction) error {
	if len(tx.Message.Instructions) == 0 {
		return ErrEmptyTransaction
	}
	if n := AccountCount(tx); n > MaxAccountLocks {
		return fmt.Errorf("%w: %d accounts", ErrTooManyAccounts, n)
	}

	size, err := WireSize(tx)
	if err != nil {
		return err
	}
	if size > MaxPacketSize {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	return nil
}

// WireSize is the serialized size of tx once every signer slot is filled.
func WireSize(tx *solana.Transaction) (int, error) {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("marshal message: %w", err)
	}
	// compact-u16 signature count fits one byte below 128 signers
	return 1 + 64*int(tx.Message.Header.NumRequiredSignatures) + len(msg), nil
}

// AccountCount is the number of accounts the transaction locks, including
// those loaded through lookup tables.
func AccountCount(tx *solana.Transaction) int {
	n := len(tx.Message.AccountKeys)
	for _, l := range tx.Message.AddressTableLookups {
		n += len(l.WritableIndexes) + len(l.ReadonlyIndexes)
	}
	return n
}
