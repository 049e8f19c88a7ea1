// =============================
// File: internal/dex/pumpswap/config.go
// =============================
package pumpswap

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/swap-builder/internal/dex"
)

// Config хранит конфигурацию для взаимодействия с PumpSwap.
type Config struct {
	ProgramID  solana.PublicKey
	FeeBasis   dex.FeeBasis
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию для PumpSwap.
func DefaultConfig() Config {
	return Config{
		ProgramID:  ProgramID,
		FeeBasis:   dex.FeeBasisSOL,
		MaxRetries: 3,
		RetryDelay: 250 * time.Millisecond,
	}
}

// GlobalConfigAddress вычисляет PDA для глобального аккаунта конфигурации.
func (cfg Config) GlobalConfigAddress() (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte("global_config")}, cfg.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive global config: %w", err)
	}
	return addr, nil
}

// EventAuthority derives the Anchor event authority PDA.
func (cfg Config) EventAuthority() (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte("__event_authority")}, cfg.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive event authority: %w", err)
	}
	return addr, nil
}

// CoinCreatorVaultAuthority derives the creator fee vault authority of a pool.
func (cfg Config) CoinCreatorVaultAuthority(coinCreator solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte("creator_vault"), coinCreator.Bytes()}, cfg.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive creator vault authority: %w", err)
	}
	return addr, nil
}
