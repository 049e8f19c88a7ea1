// =============================
// File: internal/dex/pumpfun/config.go
// =============================
package pumpfun

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/swap-builder/internal/dex"
)

// Known PumpFun protocol addresses
var (
	// Program ID for Pump.fun protocol
	ProgramID = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")

	// Event authority for the Pump.fun protocol
	EventAuthority = solana.MustPublicKeyFromBase58("Ce6TQqeHC9p8KetsN6JsjHK7UTZk7nasjjnr7XxXp9F1")
)

// Config holds the configuration for the Pump.fun venue
type Config struct {
	ProgramID      solana.PublicKey
	EventAuthority solana.PublicKey
	FeeBasis       dex.FeeBasis
}

// DefaultConfig creates a default configuration for the Pump.fun venue
func DefaultConfig() Config {
	return Config{
		ProgramID:      ProgramID,
		EventAuthority: EventAuthority,
		FeeBasis:       dex.FeeBasisSOL,
	}
}

func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	if cfg.ProgramID.IsZero() {
		cfg.ProgramID = def.ProgramID
	}
	if cfg.EventAuthority.IsZero() {
		cfg.EventAuthority = def.EventAuthority
	}
	if cfg.FeeBasis == "" {
		cfg.FeeBasis = def.FeeBasis
	}
	return cfg
}

// GlobalAddress derives the Global Account PDA.
func (cfg Config) GlobalAddress() (solana.PublicKey, error) {
	return cfg.pda("global account", []byte("global"))
}

// BondingCurveAddress derives the bonding curve PDA of a mint.
func (cfg Config) BondingCurveAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	return cfg.pda("bonding curve", []byte("bonding-curve"), mint.Bytes())
}

// CreatorVaultAddress derives the creator fee vault PDA.
func (cfg Config) CreatorVaultAddress(creator solana.PublicKey) (solana.PublicKey, error) {
	return cfg.pda("creator vault", []byte("creator-vault"), creator.Bytes())
}

func (cfg Config) pda(name string, seeds ...[]byte) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(seeds, cfg.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive %s: %w", name, err)
	}
	return addr, nil
}
