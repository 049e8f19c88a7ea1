// =============================
// File: internal/dex/boop/config.go
// =============================
package boop

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/swap-builder/internal/dex"
)

// ProgramID of the boop.fun launch program.
var ProgramID = solana.MustPublicKeyFromBase58("boop8hVGQGqehUK2iVEMEnMrL5RbjywRzHKBmBE7ry4")

// Anchor instruction discriminators.
var (
	buyTokenDiscriminator  = bin.SighashTypeID(bin.SIGHASH_GLOBAL_NAMESPACE, "buy_token")
	sellTokenDiscriminator = bin.SighashTypeID(bin.SIGHASH_GLOBAL_NAMESPACE, "sell_token")
)

type Config struct {
	ProgramID solana.PublicKey
	FeeBasis  dex.FeeBasis
}

func DefaultConfig() Config {
	return Config{
		ProgramID: ProgramID,
		FeeBasis:  dex.FeeBasisSOL,
	}
}

func (cfg Config) withDefaults() Config {
	if cfg.ProgramID.IsZero() {
		cfg.ProgramID = ProgramID
	}
	if cfg.FeeBasis == "" {
		cfg.FeeBasis = dex.FeeBasisSOL
	}
	return cfg
}

// BondingCurveAddress derives the curve PDA of a mint.
func (cfg Config) BondingCurveAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	return cfg.pda("bonding curve", []byte("bonding_curve"), mint.Bytes())
}

// Addresses holds every PDA the swap instructions touch.
type Addresses struct {
	Config               solana.PublicKey
	VaultAuthority       solana.PublicKey
	BondingCurve         solana.PublicKey
	BondingCurveVault    solana.PublicKey
	BondingCurveSolVault solana.PublicKey
	TradingFeesVault     solana.PublicKey
}

// Derive computes the program addresses of a mint.
func (cfg Config) Derive(mint solana.PublicKey) (Addresses, error) {
	var (
		a   Addresses
		err error
	)
	if a.Config, err = cfg.pda("config", []byte("config")); err != nil {
		return a, err
	}
	if a.VaultAuthority, err = cfg.pda("vault authority", []byte("vault_authority")); err != nil {
		return a, err
	}
	if a.BondingCurve, err = cfg.BondingCurveAddress(mint); err != nil {
		return a, err
	}
	if a.BondingCurveVault, err = cfg.pda("curve vault", []byte("bonding_curve_vault"), mint.Bytes()); err != nil {
		return a, err
	}
	if a.BondingCurveSolVault, err = cfg.pda("curve sol vault", []byte("bonding_curve_sol_vault"), mint.Bytes()); err != nil {
		return a, err
	}
	if a.TradingFeesVault, err = cfg.pda("trading fees vault", []byte("trading_fees_vault"), mint.Bytes()); err != nil {
		return a, err
	}
	return a, nil
}

func (cfg Config) pda(name string, seeds ...[]byte) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(seeds, cfg.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive %s: %w", name, err)
	}
	return addr, nil
}
