package boop

import (
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/swap-builder/internal/dex"
)

// Status is the lifecycle stage of a boop curve.
type Status uint8

const (
	StatusTrading Status = iota
	StatusGraduated
	StatusPoolPriceCorrected
	StatusLiquidityProvisioned
	StatusLiquidityLocked
)

func (s Status) String() string {
	switch s {
	case StatusTrading:
		return "trading"
	case StatusGraduated:
		return "graduated"
	case StatusPoolPriceCorrected:
		return "pool_price_corrected"
	case StatusLiquidityProvisioned:
		return "liquidity_provisioned"
	case StatusLiquidityLocked:
		return "liquidity_locked"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// BondingCurve mirrors the Borsh layout of the curve account.
type BondingCurve struct {
	Discriminator        [8]byte
	Creator              solana.PublicKey
	Mint                 solana.PublicKey
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
	GraduationTarget     uint64
	GraduationFee        uint64
	SolReserves          uint64
	TokenReserves        uint64
	DampingTerm          uint8
	SwapFeeBasisPoints   uint16
	TokenForStakersBps   uint16
	Status               Status
}

// ParseBondingCurve decodes a curve account.
func ParseBondingCurve(data []byte) (*BondingCurve, error) {
	var bc BondingCurve
	if err := bin.NewBorshDecoder(data).Decode(&bc); err != nil {
		return nil, fmt.Errorf("failed to decode boop bonding curve: %w", err)
	}
	return &bc, nil
}

// State is the curve and its address.
type State struct {
	Address solana.PublicKey
	Curve   BondingCurve
}

// CurveState converts to the shared curve form. The price curve runs on the
// virtual SOL reserve plus the SOL already raised.
func (s *State) CurveState() *dex.CurveState {
	vSol := new(big.Int).SetUint64(s.Curve.VirtualSolReserves)
	vSol.Add(vSol, new(big.Int).SetUint64(s.Curve.SolReserves))
	return &dex.CurveState{
		Address:              s.Address,
		VirtualTokenReserves: new(big.Int).SetUint64(s.Curve.VirtualTokenReserves),
		VirtualSolReserves:   vSol,
		RealTokenReserves:    new(big.Int).SetUint64(s.Curve.TokenReserves),
		ProtocolFeeBps:       uint64(s.Curve.SwapFeeBasisPoints),
		Type:                 dex.CurveDamped,
		Complete:             s.Curve.Status != StatusTrading,
	}
}
