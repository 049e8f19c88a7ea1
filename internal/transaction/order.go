// internal/transaction/order.go
package transaction

import (
	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"

	"github.com/rovshanmuradov/swap-builder/internal/dex"
)

// BudgetInstructions returns the compute-budget prefix. Zero values are omitted.
func BudgetInstructions(unitPrice uint64, unitLimit uint32) []solana.Instruction {
	var instructions []solana.Instruction

	// Set compute unit limit
	if unitLimit > 0 {
		instructions = append(instructions, computebudget.NewSetComputeUnitLimitInstruction(unitLimit).Build())
	}
	// Set compute unit price
	if unitPrice > 0 {
		instructions = append(instructions, computebudget.NewSetComputeUnitPriceInstruction(unitPrice).Build())
	}
	return instructions
}

// Order lays out a swap as
//
//	[cu-limit] [cu-price] setup... [fee] swap... cleanup...
//
// The fee transfer always precedes the swap so it is charged even when the
// swap consumes the rest of the payer's balance.
func Order(set *dex.InstructionSet, unitPrice uint64, unitLimit uint32) []solana.Instruction {
	budget := BudgetInstructions(unitPrice, unitLimit)
	out := make([]solana.Instruction, 0, len(budget)+len(set.Setup)+1+len(set.Swap)+len(set.Cleanup))
	out = append(out, budget...)
	out = append(out, set.Setup...)
	if set.Fee != nil {
		out = append(out, set.Fee)
	}
	out = append(out, set.Swap...)
	out = append(out, set.Cleanup...)
	return out
}
