package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/swap-builder/internal/dex"
)

const recipient = "CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
rpc_list:
  - https://api.mainnet-beta.solana.com
fee:
  bps: 50
  recipient: `+recipient+`
venues:
  moonshot:
    migration_cutoff: "2025-01-01T00:00:00Z"
  pumpswap:
    fee_basis: min_out
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, uint64(50), cfg.Fee.Bps)
	assert.Equal(t, 3, cfg.Egress.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Egress.AttemptTimeout)

	ttls := cfg.TTLs()
	assert.Equal(t, DefaultPoolTTL, ttls[dex.VenuePumpSwap])
	assert.Equal(t, DefaultCurveTTL, ttls[dex.VenuePumpFun])

	assert.Equal(t, dex.FeeBasisMinOut, cfg.FeeBasis(dex.VenuePumpSwap))
	assert.Equal(t, dex.FeeBasisSOL, cfg.FeeBasis(dex.VenueBoop))

	cutoff, err := cfg.MigrationCutoff()
	require.NoError(t, err)
	assert.Equal(t, 2025, cutoff.Year())

	prio, err := cfg.Priority()
	require.NoError(t, err)
	assert.Equal(t, dex.DefaultPriority, prio)

	def := solana.NewWallet().PublicKey()
	assert.Equal(t, def, cfg.ProgramID(dex.VenueBoop, def))
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SWAP_BUILDER_RPC_LIST", "https://a.example, https://b.example ,")
	t.Setenv("SWAP_BUILDER_FEE_RECIPIENT", recipient)
	t.Setenv("SWAP_BUILDER_REQUEST_TIMEOUT", "3s")
	t.Setenv("SWAP_BUILDER_ROUTER_PRIORITY", "pumpswap,pumpfun,boop,launchlab,moonshot")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.RPCList)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)

	prio, err := cfg.Priority()
	require.NoError(t, err)
	assert.Equal(t, dex.VenuePumpSwap, prio[0])
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			RPCList:        []string{"https://rpc.example"},
			RequestTimeout: time.Second,
			Fee:            FeeConfig{Bps: 100, Recipient: recipient},
		}
	}
	require.NoError(t, validateConfig(valid()))

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no rpc", func(c *Config) { c.RPCList = nil }},
		{"ws rpc", func(c *Config) { c.RPCList = []string{"wss://rpc.example"} }},
		{"missing recipient", func(c *Config) { c.Fee.Recipient = "" }},
		{"bad recipient", func(c *Config) { c.Fee.Recipient = "nope" }},
		{"fee too high", func(c *Config) { c.Fee.Bps = 10_001 }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"partial priority", func(c *Config) { c.Router.Priority = []string{"pumpfun"} }},
		{"duplicate priority", func(c *Config) {
			c.Router.Priority = []string{"pumpfun", "pumpfun", "boop", "launchlab", "moonshot"}
		}},
		{"unknown fee basis", func(c *Config) { c.Venues.Boop.FeeBasis = "output" }},
		{"bad cutoff", func(c *Config) { c.Venues.Moonshot.MigrationCutoff = "yesterday" }},
		{"bad lookup table", func(c *Config) { c.LookupTables.Addresses = []string{"x"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}

	cfg := valid()
	cfg.Fee = FeeConfig{}
	assert.NoError(t, validateConfig(cfg), "a zero fee needs no recipient")
}
