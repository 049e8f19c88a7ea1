// ==============================================
// File: internal/dex/pumpfun/state.go
// ==============================================
package pumpfun

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/swap-builder/internal/dex"
)

const (
	bondingCurveMinSize = 8 + 5*8 + 1
	globalMinSize       = 8 + 1 + 32 + 32 + 5*8
)

// BondingCurve is the decoded bonding curve account.
type BondingCurve struct {
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
	Creator              solana.PublicKey // zero on curves created before creator fees
}

// GlobalAccount represents the structure of the PumpFun global account data
type GlobalAccount struct {
	Initialized                 bool
	Authority                   solana.PublicKey
	FeeRecipient                solana.PublicKey
	InitialVirtualTokenReserves uint64
	InitialVirtualSolReserves   uint64
	InitialRealTokenReserves    uint64
	TokenTotalSupply            uint64
	FeeBasisPoints              uint64
}

// State is everything needed to quote and build one swap.
type State struct {
	Address solana.PublicKey
	Curve   BondingCurve
	Global  GlobalAccount
}

// CurveState converts the on-chain state into the shared curve form.
func (s *State) CurveState() *dex.CurveState {
	return &dex.CurveState{
		Address:              s.Address,
		VirtualTokenReserves: new(big.Int).SetUint64(s.Curve.VirtualTokenReserves),
		VirtualSolReserves:   new(big.Int).SetUint64(s.Curve.VirtualSolReserves),
		RealTokenReserves:    new(big.Int).SetUint64(s.Curve.RealTokenReserves),
		ProtocolFeeBps:       s.Global.FeeBasisPoints,
		Type:                 dex.CurveConstantProduct,
		Complete:             s.Curve.Complete,
	}
}

// ParseBondingCurve decodes a bonding curve account.
func ParseBondingCurve(data []byte) (*BondingCurve, error) {
	if len(data) < bondingCurveMinSize {
		return nil, fmt.Errorf("invalid bonding curve data: insufficient length %d", len(data))
	}
	u64 := func(off int) uint64 { return binary.LittleEndian.Uint64(data[off : off+8]) }

	bc := &BondingCurve{
		VirtualTokenReserves: u64(8),
		VirtualSolReserves:   u64(16),
		RealTokenReserves:    u64(24),
		RealSolReserves:      u64(32),
		TokenTotalSupply:     u64(40),
		Complete:             data[48] != 0,
	}
	if len(data) >= 49+32 {
		bc.Creator = solana.PublicKeyFromBytes(data[49 : 49+32])
	}
	return bc, nil
}

// ParseGlobalAccount decodes the global account.
func ParseGlobalAccount(data []byte) (*GlobalAccount, error) {
	if len(data) < globalMinSize {
		return nil, fmt.Errorf("global account data too short: %d bytes", len(data))
	}
	offset := 73
	next := func() uint64 {
		v := binary.LittleEndian.Uint64(data[offset : offset+8])
		offset += 8
		return v
	}

	g := &GlobalAccount{
		Initialized:  data[8] != 0,
		Authority:    solana.PublicKeyFromBytes(data[9:41]),
		FeeRecipient: solana.PublicKeyFromBytes(data[41:73]),
	}
	g.InitialVirtualTokenReserves = next()
	g.InitialVirtualSolReserves = next()
	g.InitialRealTokenReserves = next()
	g.TokenTotalSupply = next()
	g.FeeBasisPoints = next()
	return g, nil
}
