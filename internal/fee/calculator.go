// internal/fee/calculator.go
package fee

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// DefaultBps is the platform fee when none is configured (1%).
const DefaultBps uint64 = 100

var (
	bpsDenominator = big.NewInt(10_000)

	ErrNoRecipient = errors.New("platform fee recipient is not configured")
	ErrFeeOverflow = errors.New("platform fee does not fit in u64")
)

// Calculator computes the platform fee and its transfer instruction.
type Calculator struct {
	bps       uint64
	recipient solana.PublicKey
}

// NewCalculator creates a calculator paying fees to recipient.
func NewCalculator(bps uint64, recipient solana.PublicKey) *Calculator {
	return &Calculator{bps: bps, recipient: recipient}
}

// Fee returns floor(amount*bps/10000).
func Fee(amount *big.Int, bps uint64) *big.Int {
	if amount == nil || amount.Sign() <= 0 || bps == 0 {
		return new(big.Int)
	}
	f := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
	return f.Quo(f, bpsDenominator)
}

// Instruction returns the fee transfer from payer for the given leg amount.
// The instruction is nil when the fee rounds down to zero. A non-zero fee
// that cannot be paid is an error rather than a fee-less build.
func (c *Calculator) Instruction(payer solana.PublicKey, legAmount *big.Int) (solana.Instruction, uint64, error) {
	f := Fee(legAmount, c.bps)
	if f.Sign() <= 0 {
		return nil, 0, nil
	}
	if c.recipient.IsZero() {
		return nil, 0, ErrNoRecipient
	}
	if !f.IsUint64() {
		return nil, 0, fmt.Errorf("%w: %s", ErrFeeOverflow, f)
	}
	lamports := f.Uint64()
	ix := system.NewTransferInstruction(lamports, payer, c.recipient).Build()
	return ix, lamports, nil
}
