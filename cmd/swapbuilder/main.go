// ====================================
// File: cmd/swapbuilder/main.go
// ====================================
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "swapbuilder",
	Short: "Unsigned Solana swap transaction builder",
	Long: `swapbuilder routes a token swap to the venue that can trade it
(pump.fun, boop, LaunchLab, Moonshot or PumpSwap) and returns the unsigned
transactions for the user's wallet to sign.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (yaml/json/toml); SWAP_BUILDER_* env vars override it")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
