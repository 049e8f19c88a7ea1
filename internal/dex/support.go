package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/swap-builder/internal/accounts"
	"github.com/rovshanmuradov/swap-builder/internal/fee"
)

// NativeDecimals is the precision of SOL and WSOL.
const NativeDecimals uint8 = 9

// Support bundles the account and fee helpers shared by on-chain venue strategies.
type Support struct {
	Accounts *accounts.Preparer
	Fees     *fee.Calculator
}

// RawAmount converts the request amount into base units of the exact leg.
func (s *Support) RawAmount(ctx context.Context, req *SwapRequest) (*big.Int, error) {
	mint := req.InputMint
	if req.Mode == ModeExactOut {
		mint = req.OutputMint
	}

	decimals := NativeDecimals
	if !mint.Equals(solana.SolMint) {
		d, err := s.Accounts.Decimals(ctx, mint)
		if err != nil {
			return nil, fmt.Errorf("mint decimals for %s: %w", mint, err)
		}
		decimals = d
	}
	return ToRaw(req.Amount, decimals)
}

// Complete fills the account setup, cleanup and fee parts of set from its
// quote. wrapped selects venues that trade WSOL rather than native lamports.
func (s *Support) Complete(ctx context.Context, req *SwapRequest, set *InstructionSet, wrapped bool, basis FeeBasis) error {
	mints := []solana.PublicKey{req.TokenMint()}
	if wrapped {
		mints = append(mints, solana.WrappedSol)
	}
	setup, err := s.Accounts.Ensure(ctx, req.User, mints...)
	if err != nil {
		return fmt.Errorf("ensure token accounts: %w", err)
	}

	var cleanup []solana.Instruction
	q := set.Quote

	if wrapped {
		staged := q.MinOut
		if req.Side == SideBuy {
			staged = q.AmountIn
			if q.MaxIn != nil {
				staged = q.MaxIn
			}
			wrap, err := s.Accounts.Wrap(ctx, req.User, staged)
			if err != nil {
				return fmt.Errorf("wrap SOL: %w", err)
			}
			setup = append(setup, wrap...)
		}
		unwrap, err := s.Accounts.Unwrap(req.User, staged)
		if err != nil {
			return fmt.Errorf("unwrap SOL: %w", err)
		}
		cleanup = append(cleanup, unwrap...)
	}

	if req.Side == SideSell {
		cleanup = append(cleanup, s.Accounts.SellAll(ctx, req.User, req.TokenMint(), q.AmountIn)...)
	}

	set.Setup = append(set.Setup, setup...)
	set.Cleanup = append(set.Cleanup, cleanup...)
	ix, lamports, err := s.Fees.Instruction(req.User, q.FeeLeg(req.Side, basis))
	if err != nil {
		return fmt.Errorf("platform fee: %w", err)
	}
	set.Fee, set.FeeLamports = ix, lamports
	return nil
}
