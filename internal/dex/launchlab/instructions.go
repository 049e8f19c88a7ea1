package launchlab

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var (
	buyExactInDiscriminator  = [8]byte{250, 234, 13, 123, 213, 156, 19, 236}
	sellExactInDiscriminator = [8]byte{149, 39, 222, 155, 211, 124, 152, 26}
)

// TradeArgs are the Borsh arguments of buy_exact_in and sell_exact_in.
type TradeArgs struct {
	AmountIn         uint64
	MinimumAmountOut uint64
	ShareFeeRate     uint64
}

// TradeAccounts are the 15 accounts of a launch-curve trade.
type TradeAccounts struct {
	Program        solana.PublicKey
	Payer          solana.PublicKey
	Authority      solana.PublicKey
	GlobalConfig   solana.PublicKey
	PlatformConfig solana.PublicKey
	PoolState      solana.PublicKey
	UserBaseToken  solana.PublicKey
	UserQuoteToken solana.PublicKey
	BaseVault      solana.PublicKey
	QuoteVault     solana.PublicKey
	BaseMint       solana.PublicKey
	QuoteMint      solana.PublicKey
	EventAuthority solana.PublicKey
}

func (a TradeAccounts) metas() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		{PublicKey: a.Payer, IsSigner: true, IsWritable: true},
		{PublicKey: a.Authority},
		{PublicKey: a.GlobalConfig},
		{PublicKey: a.PlatformConfig},
		{PublicKey: a.PoolState, IsWritable: true},
		{PublicKey: a.UserBaseToken, IsWritable: true},
		{PublicKey: a.UserQuoteToken, IsWritable: true},
		{PublicKey: a.BaseVault, IsWritable: true},
		{PublicKey: a.QuoteVault, IsWritable: true},
		{PublicKey: a.BaseMint},
		{PublicKey: a.QuoteMint},
		{PublicKey: solana.TokenProgramID},
		{PublicKey: solana.TokenProgramID},
		{PublicKey: a.EventAuthority},
		{PublicKey: a.Program},
	}
}

// BuildBuyExactIn spends AmountIn of WSOL for at least MinimumAmountOut tokens.
func BuildBuyExactIn(acc TradeAccounts, args TradeArgs) (solana.Instruction, error) {
	return build(acc, buyExactInDiscriminator, args)
}

// BuildSellExactIn sells AmountIn tokens for at least MinimumAmountOut WSOL.
func BuildSellExactIn(acc TradeAccounts, args TradeArgs) (solana.Instruction, error) {
	return build(acc, sellExactInDiscriminator, args)
}

func build(acc TradeAccounts, disc [8]byte, args TradeArgs) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	buf.Write(disc[:])
	if err := bin.NewBorshEncoder(buf).Encode(args); err != nil {
		return nil, fmt.Errorf("failed to encode trade args: %w", err)
	}
	return solana.NewInstruction(acc.Program, acc.metas(), buf.Bytes()), nil
}
