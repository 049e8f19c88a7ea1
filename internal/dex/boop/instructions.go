package boop

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

type swapArgs struct {
	Amount       uint64
	AmountOutMin uint64
}

// SwapAccounts are the accounts shared by buy_token and sell_token.
type SwapAccounts struct {
	Program      solana.PublicKey
	Mint         solana.PublicKey
	User         solana.PublicKey
	UserTokenATA solana.PublicKey
	Addresses
}

func encode(disc bin.TypeID, args swapArgs) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(disc[:])
	if err := bin.NewBorshEncoder(buf).Encode(args); err != nil {
		return nil, fmt.Errorf("failed to encode swap args: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildBuyInstruction builds buy_token(buy_amount, amount_out_min).
func BuildBuyInstruction(acc SwapAccounts, buyAmount, amountOutMin uint64) (solana.Instruction, error) {
	return build(acc, buyTokenDiscriminator, swapArgs{Amount: buyAmount, AmountOutMin: amountOutMin})
}

// BuildSellInstruction builds sell_token(sell_amount, amount_out_min).
func BuildSellInstruction(acc SwapAccounts, sellAmount, amountOutMin uint64) (solana.Instruction, error) {
	return build(acc, sellTokenDiscriminator, swapArgs{Amount: sellAmount, AmountOutMin: amountOutMin})
}

// Both instructions take the same account list.
func build(acc SwapAccounts, disc bin.TypeID, args swapArgs) (solana.Instruction, error) {
	data, err := encode(disc, args)
	if err != nil {
		return nil, err
	}
	metas := []*solana.AccountMeta{
		{PublicKey: acc.Mint},
		{PublicKey: acc.BondingCurve, IsWritable: true},
		{PublicKey: acc.TradingFeesVault, IsWritable: true},
		{PublicKey: acc.BondingCurveVault, IsWritable: true},
		{PublicKey: acc.BondingCurveSolVault, IsWritable: true},
		{PublicKey: acc.UserTokenATA, IsWritable: true},
		{PublicKey: acc.User, IsSigner: true, IsWritable: true},
		{PublicKey: acc.Config},
		{PublicKey: acc.VaultAuthority},
		{PublicKey: solana.WrappedSol},
		{PublicKey: solana.SystemProgramID},
		{PublicKey: solana.TokenProgramID},
		{PublicKey: solana.SPLAssociatedTokenAccountProgramID},
	}
	return solana.NewInstruction(acc.Program, metas, data), nil
}
