// =============================
// File: internal/dex/launchlab/config.go
// =============================
package launchlab

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/swap-builder/internal/dex"
)

var (
	ProgramID      = solana.MustPublicKeyFromBase58("LanMV9sAd7wArD4vJFi2qDdfnVhFxYSUg6eADduJ3uj")
	DefaultBaseURL = "https://launch-mint-v1.raydium.io"
)

type Config struct {
	ProgramID solana.PublicKey
	BaseURL   string
	// ShareFeeRate is the referral share passed to the program, per million.
	ShareFeeRate uint64
	FeeBasis     dex.FeeBasis
}

func DefaultConfig() Config {
	return Config{ProgramID: ProgramID, BaseURL: DefaultBaseURL, FeeBasis: dex.FeeBasisSOL}
}

func (cfg Config) withDefaults() Config {
	if cfg.ProgramID.IsZero() {
		cfg.ProgramID = ProgramID
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.FeeBasis == "" {
		cfg.FeeBasis = dex.FeeBasisSOL
	}
	return cfg
}

// AuthorityAddress is the vault authority PDA.
func (cfg Config) AuthorityAddress() (solana.PublicKey, error) {
	return cfg.pda("authority", []byte("vault_auth_seed"))
}

// EventAuthority is the Anchor event CPI authority.
func (cfg Config) EventAuthority() (solana.PublicKey, error) {
	return cfg.pda("event authority", []byte("__event_authority"))
}

func (cfg Config) pda(name string, seeds ...[]byte) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(seeds, cfg.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive %s: %w", name, err)
	}
	return addr, nil
}
