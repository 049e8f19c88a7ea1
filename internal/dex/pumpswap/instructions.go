// =============================
// File: internal/dex/pumpswap/instructions.go
// =============================
package pumpswap

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/swap-builder/internal/accounts"
)

// Anchor discriminators of the pool program's buy and sell.
var (
	buyDiscriminator  = []byte{102, 6, 61, 18, 1, 218, 235, 234}
	sellDiscriminator = []byte{51, 230, 133, 164, 1, 127, 131, 173}
)

// tradeArgs is the Borsh body shared by buy and sell.
//
//	buy:  base_amount_out, max_quote_amount_in
//	sell: base_amount_in,  min_quote_amount_out
type tradeArgs struct {
	BaseAmount  uint64
	QuoteAmount uint64
}

// SwapAccounts are the resolved accounts of one trade against a pool.
type SwapAccounts struct {
	Program        solana.PublicKey
	Pool           *PoolInfo
	User           solana.PublicKey
	GlobalConfig   solana.PublicKey
	UserBase       solana.PublicKey
	UserQuote      solana.PublicKey
	FeeRecipient   solana.PublicKey
	FeeRecipientTA solana.PublicKey
	EventAuthority solana.PublicKey
	VaultAuthority solana.PublicKey
	VaultTA        solana.PublicKey
}

// ResolveAccounts derives every PDA and ATA a trade by user needs.
func (cfg Config) ResolveAccounts(user solana.PublicKey, pool *PoolInfo) (*SwapAccounts, error) {
	a := &SwapAccounts{Program: cfg.ProgramID, Pool: pool, User: user}

	var err error
	if a.GlobalConfig, err = cfg.GlobalConfigAddress(); err != nil {
		return nil, err
	}
	if a.EventAuthority, err = cfg.EventAuthority(); err != nil {
		return nil, err
	}
	if a.UserBase, err = accounts.ATA(user, pool.BaseMint); err != nil {
		return nil, err
	}
	if a.UserQuote, err = accounts.ATA(user, pool.QuoteMint); err != nil {
		return nil, err
	}

	a.FeeRecipient = pool.Config.FeeRecipient()
	if a.FeeRecipient.IsZero() {
		return nil, fmt.Errorf("global config has no protocol fee recipient")
	}
	if a.FeeRecipientTA, err = accounts.ATA(a.FeeRecipient, pool.QuoteMint); err != nil {
		return nil, err
	}
	if a.VaultAuthority, err = cfg.CoinCreatorVaultAuthority(pool.CoinCreator); err != nil {
		return nil, err
	}
	if a.VaultTA, err = accounts.ATA(a.VaultAuthority, pool.QuoteMint); err != nil {
		return nil, err
	}
	return a, nil
}

// BuildBuyInstruction buys exactly baseOut paying at most maxQuoteIn.
func BuildBuyInstruction(a *SwapAccounts, baseOut, maxQuoteIn uint64) (solana.Instruction, error) {
	return a.build(buyDiscriminator, tradeArgs{BaseAmount: baseOut, QuoteAmount: maxQuoteIn})
}

// BuildSellInstruction sells baseIn for at least minQuoteOut.
func BuildSellInstruction(a *SwapAccounts, baseIn, minQuoteOut uint64) (solana.Instruction, error) {
	return a.build(sellDiscriminator, tradeArgs{BaseAmount: baseIn, QuoteAmount: minQuoteOut})
}

func (a *SwapAccounts) build(discriminator []byte, args tradeArgs) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	buf.Write(discriminator)
	if err := bin.NewBorshEncoder(buf).Encode(args); err != nil {
		return nil, fmt.Errorf("encode trade args: %w", err)
	}

	p := a.Pool
	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(p.Address, false, false),
		solana.NewAccountMeta(a.User, true, true),
		solana.NewAccountMeta(a.GlobalConfig, false, false),
		solana.NewAccountMeta(p.BaseMint, false, false),
		solana.NewAccountMeta(p.QuoteMint, false, false),
		solana.NewAccountMeta(a.UserBase, true, false),
		solana.NewAccountMeta(a.UserQuote, true, false),
		solana.NewAccountMeta(p.PoolBaseTokenAccount, true, false),
		solana.NewAccountMeta(p.PoolQuoteTokenAccount, true, false),
		solana.NewAccountMeta(a.FeeRecipient, false, false),
		solana.NewAccountMeta(a.FeeRecipientTA, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false), // base token program
		solana.NewAccountMeta(solana.TokenProgramID, false, false), // quote token program
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.SPLAssociatedTokenAccountProgramID, false, false),
		solana.NewAccountMeta(a.EventAuthority, false, false),
		solana.NewAccountMeta(a.Program, false, false),
		solana.NewAccountMeta(a.VaultTA, true, false),
		solana.NewAccountMeta(a.VaultAuthority, false, false),
	}
	return solana.NewInstruction(a.Program, metas, buf.Bytes()), nil
}
