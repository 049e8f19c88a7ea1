package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/swap-builder/internal/swap"
)

var (
	buildReq      swap.BuildRequest
	buildSimulate bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build one swap and print the result as JSON",
	Long: `Build the unsigned transactions for a single swap and print the
result to stdout. Logs go to stderr.

Example usage:
  swapbuilder build --type buy --input So11111111111111111111111111111111111111112 \
    --output <mint> --amount 0.01 --slippage-bps 500 --user <wallet>`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	f := buildCmd.Flags()
	f.StringVar(&buildReq.InputMint, "input", "", "Input mint")
	f.StringVar(&buildReq.OutputMint, "output", "", "Output mint")
	f.StringVar(&buildReq.Amount, "amount", "", "Amount in whole units of the exact leg")
	f.IntVar(&buildReq.SlippageBps, "slippage-bps", 100, "Slippage tolerance in basis points")
	f.StringVar(&buildReq.UserWalletAddress, "user", "", "Wallet that signs and pays")
	f.StringVar(&buildReq.Type, "type", "", "buy or sell")
	f.StringVar(&buildReq.Side, "side", "", "buy or sell")
	_ = f.MarkDeprecated("side", "use --type")
	f.StringVar(&buildReq.Mode, "mode", "ExactIn", "ExactIn or ExactOut")
	f.Uint64Var(&buildReq.PriorityFee, "priority-fee", 0, "Priority fee hint in micro-lamports per compute unit")
	f.Uint64Var(&buildReq.ComputeUnitPrice, "compute-unit-price", 0, "Compute unit price in micro-lamports, overrides --priority-fee")
	f.StringVar(&buildReq.Priority, "priority", "", "Compute budget preset: low, medium, high or extreme")
	f.BoolVar(&buildSimulate, "simulate", false, "Simulate the first transaction and include the result")

	for _, name := range []string{"input", "output", "amount", "user"} {
		_ = buildCmd.MarkFlagRequired(name)
	}
	buildCmd.MarkFlagsOneRequired("type", "side")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if cmd.Flags().Changed("simulate") {
		buildReq.Simulate = &buildSimulate
	}

	res, err := a.service.Build(ctx, buildReq)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
