package pumpswap

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ProgramID is the PumpSwap AMM program.
var ProgramID = solana.MustPublicKeyFromBase58("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA")

// Account discriminators extracted from the IDL
var (
	GlobalConfigDiscriminator = []byte{149, 8, 156, 202, 160, 252, 176, 217}
	PoolDiscriminator         = []byte{241, 154, 109, 4, 17, 177, 109, 188}
)

// DisableFlags bits in GlobalConfig
const (
	DisableCreatePool = 1 << iota
	DisableDeposit
	DisableWithdraw
	DisableBuy
	DisableSell
)

const (
	globalConfigSize = 8 + 32 + 8 + 8 + 1 + 32*8
	poolSize         = 8 + 1 + 2 + 32*6 + 8

	// offsets of base_mint and quote_mint inside a Pool account
	offsetBaseMint  = 8 + 1 + 2 + 32
	offsetQuoteMint = offsetBaseMint + 32

	tokenAccountAmountOffset = 64
)

// GlobalConfig represents the global configuration for PumpSwap
type GlobalConfig struct {
	Admin                  solana.PublicKey
	LPFeeBasisPoints       uint64
	ProtocolFeeBasisPoints uint64
	DisableFlags           uint8
	ProtocolFeeRecipients  [8]solana.PublicKey
}

// TotalFeeBps is the fee deducted from the swap input.
func (g *GlobalConfig) TotalFeeBps() uint64 {
	return g.LPFeeBasisPoints + g.ProtocolFeeBasisPoints
}

// FeeRecipient returns the first configured protocol fee recipient.
func (g *GlobalConfig) FeeRecipient() solana.PublicKey {
	for _, r := range g.ProtocolFeeRecipients {
		if !r.IsZero() {
			return r
		}
	}
	return solana.PublicKey{}
}

// Pool represents a liquidity pool in PumpSwap
type Pool struct {
	PoolBump              uint8
	Index                 uint16
	Creator               solana.PublicKey
	BaseMint              solana.PublicKey
	QuoteMint             solana.PublicKey
	LPMint                solana.PublicKey
	PoolBaseTokenAccount  solana.PublicKey
	PoolQuoteTokenAccount solana.PublicKey
	LPSupply              uint64
	CoinCreator           solana.PublicKey // zero for pools created before creator fees
}

// PoolInfo is the constant-product state consulted for one swap.
type PoolInfo struct {
	Address               solana.PublicKey
	BaseMint              solana.PublicKey // token
	QuoteMint             solana.PublicKey // WSOL
	BaseReserves          uint64
	QuoteReserves         uint64
	LPMint                solana.PublicKey
	PoolBaseTokenAccount  solana.PublicKey
	PoolQuoteTokenAccount solana.PublicKey
	CoinCreator           solana.PublicKey
	Config                GlobalConfig
}

// ParseGlobalConfig parses account data into GlobalConfig structure
func ParseGlobalConfig(data []byte) (*GlobalConfig, error) {
	if err := checkDiscriminator(data, GlobalConfigDiscriminator, globalConfigSize); err != nil {
		return nil, fmt.Errorf("global config: %w", err)
	}

	pos := 8
	cfg := &GlobalConfig{}
	cfg.Admin = solana.PublicKeyFromBytes(data[pos : pos+32])
	pos += 32
	cfg.LPFeeBasisPoints = binary.LittleEndian.Uint64(data[pos : pos+8])
	pos += 8
	cfg.ProtocolFeeBasisPoints = binary.LittleEndian.Uint64(data[pos : pos+8])
	pos += 8
	cfg.DisableFlags = data[pos]
	pos++
	for i := range cfg.ProtocolFeeRecipients {
		cfg.ProtocolFeeRecipients[i] = solana.PublicKeyFromBytes(data[pos : pos+32])
		pos += 32
	}
	return cfg, nil
}

// ParsePool парсит бинарные данные аккаунта пула.
func ParsePool(data []byte) (*Pool, error) {
	if err := checkDiscriminator(data, PoolDiscriminator, poolSize); err != nil {
		return nil, fmt.Errorf("pool: %w", err)
	}

	pos := 8
	pool := &Pool{}
	pool.PoolBump = data[pos]
	pos++
	pool.Index = binary.LittleEndian.Uint16(data[pos : pos+2])
	pos += 2

	keys := []*solana.PublicKey{
		&pool.Creator, &pool.BaseMint, &pool.QuoteMint, &pool.LPMint,
		&pool.PoolBaseTokenAccount, &pool.PoolQuoteTokenAccount,
	}
	for _, k := range keys {
		*k = solana.PublicKeyFromBytes(data[pos : pos+32])
		pos += 32
	}

	pool.LPSupply = binary.LittleEndian.Uint64(data[pos : pos+8])
	pos += 8

	if len(data) >= pos+32 {
		pool.CoinCreator = solana.PublicKeyFromBytes(data[pos : pos+32])
	}
	return pool, nil
}

// tokenAmount reads the amount field of an SPL token account.
func tokenAmount(data []byte) uint64 {
	if len(data) < tokenAccountAmountOffset+8 {
		return 0
	}
	return binary.LittleEndian.Uint64(data[tokenAccountAmountOffset : tokenAccountAmountOffset+8])
}

func checkDiscriminator(data, disc []byte, size int) error {
	if len(data) < 8 {
		return fmt.Errorf("data too short")
	}
	for i := 0; i < 8; i++ {
		if data[i] != disc[i] {
			return fmt.Errorf("invalid discriminator")
		}
	}
	if len(data) < size {
		return fmt.Errorf("data too short: %d < %d", len(data), size)
	}
	return nil
}
