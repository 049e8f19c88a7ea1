// =============================================
// File: internal/accounts/preparer.go
// =============================================
package accounts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/blockchain/solbc"
)

// TokenAccountSize is the data length of an SPL token account.
const TokenAccountSize uint64 = 165

// Sell-all tolerance: amount within 0.1% of the balance counts as draining it.
const (
	sellAllNumerator   = 999
	sellAllDenominator = 1000
)

// Preparer builds the account setup and cleanup instructions around a swap.
type Preparer struct {
	reader solbc.Reader
	logger *zap.Logger
}

// NewPreparer создаёт Preparer поверх порта чтения блокчейна.
func NewPreparer(reader solbc.Reader, logger *zap.Logger) *Preparer {
	return &Preparer{
		reader: reader,
		logger: logger.Named("accounts"),
	}
}

// ATA returns the owner's associated token account for mint.
func ATA(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive ATA for %s: %w", mint, err)
	}
	return ata, nil
}

// CreateIdempotentInstruction creates an associated token account if it does
// not exist yet and succeeds silently otherwise.
func CreateIdempotentInstruction(payer, owner, mint solana.PublicKey) (solana.Instruction, error) {
	ata, err := ATA(owner, mint)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(
		solana.SPLAssociatedTokenAccountProgramID,
		[]*solana.AccountMeta{
			{PublicKey: payer, IsWritable: true, IsSigner: true},
			{PublicKey: ata, IsWritable: true, IsSigner: false},
			{PublicKey: owner, IsWritable: false, IsSigner: false},
			{PublicKey: mint, IsWritable: false, IsSigner: false},
			{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false},
			{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
		},
		[]byte{1}, // CreateIdempotent
	), nil
}

// Ensure returns create instructions for every mint whose ATA is missing.
// A failed lookup also yields a create: the idempotent form is always safe.
func (p *Preparer) Ensure(ctx context.Context, owner solana.PublicKey, mints ...solana.PublicKey) ([]solana.Instruction, error) {
	var out []solana.Instruction
	seen := make(map[solana.PublicKey]struct{}, len(mints))

	for _, mint := range mints {
		if _, dup := seen[mint]; dup {
			continue
		}
		seen[mint] = struct{}{}

		ata, err := ATA(owner, mint)
		if err != nil {
			return nil, err
		}

		_, err = p.reader.GetAccountInfo(ctx, ata)
		switch {
		case err == nil:
			continue
		case solbc.IsAccountNotFoundError(err):
			p.logger.Debug("ATA missing, adding create", zap.String("mint", mint.String()), zap.String("ata", ata.String()))
		default:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Warn("ATA lookup failed, adding idempotent create",
				zap.String("ata", ata.String()),
				zap.Error(err))
		}

		ix, err := CreateIdempotentInstruction(owner, owner, mint)
		if err != nil {
			return nil, err
		}
		out = append(out, ix)
	}
	return out, nil
}

// Wrap funds the owner's WSOL account so that it holds at least amount
// lamports on top of rent, then syncs the native balance.
func (p *Preparer) Wrap(ctx context.Context, owner solana.PublicKey, amount *big.Int) ([]solana.Instruction, error) {
	ata, err := ATA(owner, solana.WrappedSol)
	if err != nil {
		return nil, err
	}

	rent, err := p.reader.GetMinimumBalanceForRentExemption(ctx, TokenAccountSize)
	if err != nil {
		return nil, fmt.Errorf("rent exemption for token account: %w", err)
	}

	var current uint64
	info, err := p.reader.GetAccountInfo(ctx, ata)
	switch {
	case err == nil:
		current = info.Value.Lamports
	case solbc.IsAccountNotFoundError(err):
	default:
		return nil, fmt.Errorf("read WSOL account %s: %w", ata, err)
	}

	need := WrapAmount(amount, rent, current)
	if need.Sign() == 0 {
		p.logger.Debug("WSOL account already funded", zap.String("ata", ata.String()), zap.Uint64("lamports", current))
		return nil, nil
	}
	if !need.IsUint64() {
		return nil, fmt.Errorf("wrap amount %s overflows u64", need)
	}

	return []solana.Instruction{
		system.NewTransferInstruction(need.Uint64(), owner, ata).Build(),
		token.NewSyncNativeInstruction(ata).Build(),
	}, nil
}

// WrapAmount returns max(0, amount + rent - current).
func WrapAmount(amount *big.Int, rent, current uint64) *big.Int {
	need := new(big.Int).Add(amount, new(big.Int).SetUint64(rent))
	need.Sub(need, new(big.Int).SetUint64(current))
	if need.Sign() < 0 {
		return new(big.Int)
	}
	return need
}

// Unwrap closes the WSOL account after the swap. Nothing is emitted unless the
// account is predicted to hold lamports.
func (p *Preparer) Unwrap(owner solana.PublicKey, predictedLamports *big.Int) ([]solana.Instruction, error) {
	if predictedLamports == nil || predictedLamports.Sign() <= 0 {
		return nil, nil
	}
	ix, err := CloseInstruction(owner, solana.WrappedSol)
	if err != nil {
		return nil, err
	}
	return []solana.Instruction{ix}, nil
}

// SellAll appends a close of the token account when amountRaw drains it.
// Balance errors only skip the optimisation.
func (p *Preparer) SellAll(ctx context.Context, owner, mint solana.PublicKey, amountRaw *big.Int) []solana.Instruction {
	ata, err := ATA(owner, mint)
	if err != nil {
		p.logger.Warn("Sell-all check skipped", zap.Error(err))
		return nil
	}

	res, err := p.reader.GetTokenAccountBalance(ctx, ata)
	if err != nil || res == nil || res.Value == nil {
		p.logger.Debug("Sell-all check skipped, balance unavailable",
			zap.String("ata", ata.String()),
			zap.Error(err))
		return nil
	}

	balance, ok := new(big.Int).SetString(res.Value.Amount, 10)
	if !ok {
		p.logger.Debug("Sell-all check skipped, bad balance", zap.String("amount", res.Value.Amount))
		return nil
	}

	if !IsSellAll(amountRaw, balance) {
		return nil
	}

	ix, err := CloseInstruction(owner, mint)
	if err != nil {
		p.logger.Warn("Sell-all close skipped", zap.Error(err))
		return nil
	}
	p.logger.Debug("Selling entire balance, closing token account",
		zap.String("ata", ata.String()),
		zap.String("balance", balance.String()))
	return []solana.Instruction{ix}
}

// IsSellAll reports whether amount is within 0.1% of a non-zero balance.
func IsSellAll(amount, balance *big.Int) bool {
	if balance.Sign() <= 0 || amount.Sign() <= 0 {
		return false
	}
	lhs := new(big.Int).Mul(amount, big.NewInt(sellAllDenominator))
	rhs := new(big.Int).Mul(balance, big.NewInt(sellAllNumerator))
	return lhs.Cmp(rhs) >= 0
}

// CloseInstruction closes the owner's ATA for mint, returning rent to the owner.
func CloseInstruction(owner, mint solana.PublicKey) (solana.Instruction, error) {
	ata, err := ATA(owner, mint)
	if err != nil {
		return nil, err
	}
	return token.NewCloseAccountInstruction(ata, owner, owner, nil).Build(), nil
}

// Decimals returns the mint's decimals.
func (p *Preparer) Decimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	return p.reader.GetMintDecimals(ctx, mint)
}
