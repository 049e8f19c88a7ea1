// ==========================================
// File: internal/dex/types.go
// ==========================================
package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// Side defines the direction of a swap relative to the native asset.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Mode selects which leg of the swap is exact.
type Mode string

const (
	ModeExactIn  Mode = "ExactIn"
	ModeExactOut Mode = "ExactOut"
)

// Venue identifies one of the supported liquidity venues.
type Venue string

const (
	VenuePumpFun   Venue = "pumpfun"
	VenueBoop      Venue = "boop"
	VenueLaunchLab Venue = "launchlab"
	VenueMoonshot  Venue = "moonshot"
	VenuePumpSwap  Venue = "pumpswap"
)

// DefaultPriority is the hand-ordered selection priority used by the router.
var DefaultPriority = []Venue{VenuePumpFun, VenueBoop, VenueLaunchLab, VenueMoonshot, VenuePumpSwap}

// ParseVenue validates a venue name.
func ParseVenue(s string) (Venue, error) {
	switch v := Venue(s); v {
	case VenuePumpFun, VenueBoop, VenueLaunchLab, VenueMoonshot, VenuePumpSwap:
		return v, nil
	}
	return "", fmt.Errorf("unknown venue %q", s)
}

// FeeBasis selects which SOL amount the platform fee is computed against.
type FeeBasis string

const (
	// FeeBasisSOL uses the quoted SOL leg: input for buys, expected output for sells.
	FeeBasisSOL FeeBasis = "sol_leg"
	// FeeBasisMinOut uses the slippage-protected output on sells. Buys still use the input.
	FeeBasisMinOut FeeBasis = "min_out"
)

// ParseFeeBasis validates a configured fee basis. Empty means FeeBasisSOL.
func ParseFeeBasis(s string) (FeeBasis, error) {
	switch b := FeeBasis(s); b {
	case "":
		return FeeBasisSOL, nil
	case FeeBasisSOL, FeeBasisMinOut:
		return b, nil
	}
	return "", fmt.Errorf("unknown fee basis %q", s)
}

// SwapRequest is a validated swap request.
type SwapRequest struct {
	InputMint        solana.PublicKey
	OutputMint       solana.PublicKey
	Amount           decimal.Decimal
	SlippageBps      uint16
	User             solana.PublicKey
	Side             Side
	Mode             Mode
	PriorityFee      uint64 // micro-lamports per compute unit
	ComputeUnitPrice uint64 // overrides PriorityFee when non-zero
}

// TokenMint returns the non-native mint of the request.
func (r *SwapRequest) TokenMint() solana.PublicKey {
	if r.Side == SideBuy {
		return r.OutputMint
	}
	return r.InputMint
}

// UnitPrice returns the effective compute-unit price.
func (r *SwapRequest) UnitPrice() uint64 {
	if r.ComputeUnitPrice > 0 {
		return r.ComputeUnitPrice
	}
	return r.PriorityFee
}

// CurveType tags the bonding-curve formula used by a venue.
type CurveType string

const (
	CurveConstantProduct CurveType = "constant_product"
	CurveDamped          CurveType = "damped"
)

// CurveState is the bonding-curve form of venue pool state.
type CurveState struct {
	Address              solana.PublicKey
	VirtualTokenReserves *big.Int
	VirtualSolReserves   *big.Int
	RealTokenReserves    *big.Int
	ProtocolFeeBps       uint64
	PlatformFeeBps       uint64
	Type                 CurveType
	Complete             bool
}

// Quote summarizes the trade sizing computed by a strategy.
type Quote struct {
	AmountIn    *big.Int
	ExpectedOut *big.Int
	MinOut      *big.Int
	MaxIn       *big.Int // ExactOut only
}

// FeeLeg returns the lamport amount the platform fee is taken from.
func (q Quote) FeeLeg(side Side, basis FeeBasis) *big.Int {
	if side == SideBuy {
		return q.AmountIn
	}
	if basis == FeeBasisMinOut {
		return q.MinOut
	}
	return q.ExpectedOut
}

// InstructionSet is the complete output of a strategy. It is either fully
// populated or not returned at all.
type InstructionSet struct {
	Venue       Venue
	PoolAddress solana.PublicKey

	Setup   []solana.Instruction
	Swap    []solana.Instruction
	Cleanup []solana.Instruction

	Fee         solana.Instruction // nil when the fee rounds to zero
	FeeLamports uint64

	Quote Quote

	// Prebuilt is set when the venue API hands back a finished transaction.
	Prebuilt *solana.Transaction
}

// Strategy is implemented by every venue.
type Strategy interface {
	Venue() Venue
	// CanHandle reports whether the venue can trade the request's token. It must not mutate state.
	CanHandle(ctx context.Context, req *SwapRequest) (bool, error)
	Generate(ctx context.Context, req *SwapRequest) (*InstructionSet, error)
}
