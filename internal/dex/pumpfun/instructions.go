// ==============================================
// File: internal/dex/pumpfun/instructions.go
// ==============================================
package pumpfun

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Anchor discriminators of the buy and sell instructions.
var (
	buyDiscriminator  = []byte{102, 6, 61, 18, 1, 218, 235, 234}
	sellDiscriminator = []byte{51, 230, 133, 164, 1, 127, 131, 173}
)

// InstructionAccounts holds the accounts shared by buy and sell.
type InstructionAccounts struct {
	Program                solana.PublicKey
	Global                 solana.PublicKey
	FeeRecipient           solana.PublicKey
	Mint                   solana.PublicKey
	BondingCurve           solana.PublicKey
	AssociatedBondingCurve solana.PublicKey
	AssociatedUser         solana.PublicKey
	User                   solana.PublicKey
	CreatorVault           solana.PublicKey
	EventAuthority         solana.PublicKey
}

func encodeArgs(disc []byte, a, b uint64) []byte {
	data := make([]byte, 24)
	copy(data, disc)
	binary.LittleEndian.PutUint64(data[8:16], a)
	binary.LittleEndian.PutUint64(data[16:24], b)
	return data
}

// BuildBuyInstruction builds buy(amount, max_sol_cost).
func BuildBuyInstruction(acc InstructionAccounts, amount, maxSolCost uint64) solana.Instruction {
	// Account list must be in the exact order expected by the program
	metas := []*solana.AccountMeta{
		{PublicKey: acc.Global},
		{PublicKey: acc.FeeRecipient, IsWritable: true},
		{PublicKey: acc.Mint},
		{PublicKey: acc.BondingCurve, IsWritable: true},
		{PublicKey: acc.AssociatedBondingCurve, IsWritable: true},
		{PublicKey: acc.AssociatedUser, IsWritable: true},
		{PublicKey: acc.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID},
		{PublicKey: solana.TokenProgramID},
		{PublicKey: acc.CreatorVault, IsWritable: true},
		{PublicKey: acc.EventAuthority},
		{PublicKey: acc.Program},
	}
	return solana.NewInstruction(acc.Program, metas, encodeArgs(buyDiscriminator, amount, maxSolCost))
}

// BuildSellInstruction builds sell(amount, min_sol_output). The creator
// vault precedes the token program here, unlike buy.
func BuildSellInstruction(acc InstructionAccounts, amount, minSolOutput uint64) solana.Instruction {
	metas := []*solana.AccountMeta{
		{PublicKey: acc.Global},
		{PublicKey: acc.FeeRecipient, IsWritable: true},
		{PublicKey: acc.Mint},
		{PublicKey: acc.BondingCurve, IsWritable: true},
		{PublicKey: acc.AssociatedBondingCurve, IsWritable: true},
		{PublicKey: acc.AssociatedUser, IsWritable: true},
		{PublicKey: acc.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID},
		{PublicKey: acc.CreatorVault, IsWritable: true},
		{PublicKey: solana.TokenProgramID},
		{PublicKey: acc.EventAuthority},
		{PublicKey: acc.Program},
	}
	return solana.NewInstruction(acc.Program, metas, encodeArgs(sellDiscriminator, amount, minSolOutput))
}
