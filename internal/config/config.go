// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/swap-builder/internal/dex"
)

// EnvPrefix prefixes every environment override, e.g. SWAP_BUILDER_RPC_LIST.
const EnvPrefix = "SWAP_BUILDER"

type Config struct {
	RPCList          []string      `mapstructure:"rpc_list"`
	Listen           string        `mapstructure:"listen"`
	DebugLogging     bool          `mapstructure:"debug_logging"`
	LogFile          string        `mapstructure:"log_file"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	Simulate         bool          `mapstructure:"simulate"`
	ComputeUnitLimit uint32        `mapstructure:"compute_unit_limit"`

	Fee          FeeConfig          `mapstructure:"fee"`
	Router       RouterConfig       `mapstructure:"router"`
	LookupTables LookupTablesConfig `mapstructure:"lookup_tables"`
	Egress       EgressConfig       `mapstructure:"egress"`
	Venues       VenuesConfig       `mapstructure:"venues"`
}

type FeeConfig struct {
	Bps       uint64 `mapstructure:"bps"`
	Recipient string `mapstructure:"recipient"`
}

type RouterConfig struct {
	Priority []string `mapstructure:"priority"`
	// RedisURL selects the shared selection cache. Empty keeps it in process.
	RedisURL string `mapstructure:"redis_url"`
}

type LookupTablesConfig struct {
	Addresses       []string      `mapstructure:"addresses"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

type EgressConfig struct {
	MaxRetries          int           `mapstructure:"max_retries"`
	AttemptTimeout      time.Duration `mapstructure:"attempt_timeout"`
	RetryDelay          time.Duration `mapstructure:"retry_delay"`
	Proxies             []string      `mapstructure:"proxies"`
	ProxiedRoutes       []string      `mapstructure:"proxied_routes"`
	ProxyBlacklistReset time.Duration `mapstructure:"proxy_blacklist_reset"`
	RateLimit           float64       `mapstructure:"rate_limit"`
	RateBurst           int           `mapstructure:"rate_burst"`
	BreakerFailures     uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout      time.Duration `mapstructure:"breaker_timeout"`
}

// VenueConfig is shared by all venues; fields a venue does not use are ignored.
type VenueConfig struct {
	ProgramID       string        `mapstructure:"program_id"`
	APIURL          string        `mapstructure:"api_url"`
	FeeBasis        string        `mapstructure:"fee_basis"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	MigrationCutoff string        `mapstructure:"migration_cutoff"` // RFC3339
	ShareFeeRate    uint64        `mapstructure:"share_fee_rate"`
}

type VenuesConfig struct {
	PumpSwap  VenueConfig `mapstructure:"pumpswap"`
	PumpFun   VenueConfig `mapstructure:"pumpfun"`
	Boop      VenueConfig `mapstructure:"boop"`
	Moonshot  VenueConfig `mapstructure:"moonshot"`
	LaunchLab VenueConfig `mapstructure:"launchlab"`
}

// ByVenue returns the section of a venue.
func (v VenuesConfig) ByVenue(venue dex.Venue) VenueConfig {
	switch venue {
	case dex.VenuePumpSwap:
		return v.PumpSwap
	case dex.VenuePumpFun:
		return v.PumpFun
	case dex.VenueBoop:
		return v.Boop
	case dex.VenueMoonshot:
		return v.Moonshot
	case dex.VenueLaunchLab:
		return v.LaunchLab
	}
	return VenueConfig{}
}

const (
	DefaultListen         = ":8080"
	DefaultRequestTimeout = 10 * time.Second
	DefaultFeeBps         = 100
	DefaultCurveTTL       = 15 * time.Second
	DefaultPoolTTL        = 300 * time.Second
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"listen":                           DefaultListen,
		"log_file":                         "swap-builder.log",
		"debug_logging":                    false,
		"request_timeout":                  DefaultRequestTimeout,
		"simulate":                         false,
		"compute_unit_limit":               0,
		"fee.bps":                          DefaultFeeBps,
		"fee.recipient":                    "",
		"router.redis_url":                 "",
		"lookup_tables.refresh_interval":   5 * time.Minute,
		"egress.max_retries":               3,
		"egress.attempt_timeout":           5 * time.Second,
		"egress.retry_delay":               200 * time.Millisecond,
		"egress.proxy_blacklist_reset":     5 * time.Minute,
		"egress.rate_limit":                10.0,
		"egress.rate_burst":                5,
		"egress.breaker_failures":          5,
		"egress.breaker_timeout":           30 * time.Second,
		"venues.pumpswap.fee_basis":        string(dex.FeeBasisSOL),
		"venues.pumpswap.cache_ttl":        DefaultPoolTTL,
		"venues.pumpfun.fee_basis":         string(dex.FeeBasisSOL),
		"venues.pumpfun.cache_ttl":         DefaultCurveTTL,
		"venues.boop.fee_basis":            string(dex.FeeBasisSOL),
		"venues.boop.cache_ttl":            DefaultCurveTTL,
		"venues.moonshot.fee_basis":        string(dex.FeeBasisSOL),
		"venues.moonshot.cache_ttl":        DefaultCurveTTL,
		"venues.moonshot.migration_cutoff": "",
		"venues.launchlab.fee_basis":       string(dex.FeeBasisSOL),
		"venues.launchlab.cache_ttl":       DefaultCurveTTL,
	}
}

// LoadConfig reads path (optional) and applies SWAP_BUILDER_* overrides.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	loadListOverrides(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

// Lists are comma separated in the environment.
func loadListOverrides(v *viper.Viper, cfg *Config) {
	for _, o := range []struct {
		key string
		dst *[]string
	}{
		{"RPC_LIST", &cfg.RPCList},
		{"EGRESS_PROXIES", &cfg.Egress.Proxies},
		{"EGRESS_PROXIED_ROUTES", &cfg.Egress.ProxiedRoutes},
		{"ROUTER_PRIORITY", &cfg.Router.Priority},
		{"LOOKUP_TABLES_ADDRESSES", &cfg.LookupTables.Addresses},
	} {
		if list := splitList(v.GetString(o.key)); len(list) > 0 {
			*o.dst = list
		}
	}
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if clean := strings.TrimSpace(item); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return fmt.Errorf("invalid RPC URL %q: %w", rpcURL, err)
		}
	}
	if cfg.RequestTimeout <= 0 {
		return errors.New("invalid request_timeout")
	}
	if cfg.Fee.Bps > dex.BpsDenominator {
		return errors.New("fee.bps must be at most 10000")
	}
	if cfg.Fee.Bps > 0 {
		if _, err := cfg.FeeRecipient(); err != nil {
			return err
		}
	}
	if _, err := cfg.Priority(); err != nil {
		return err
	}
	if _, err := cfg.LookupTableAddresses(); err != nil {
		return err
	}
	if cfg.Egress.MaxRetries < 0 {
		return errors.New("invalid egress.max_retries")
	}
	for _, p := range cfg.Egress.Proxies {
		if err := validateURLWithCache(p, "http"); err != nil {
			return fmt.Errorf("invalid proxy URL %q: %w", p, err)
		}
	}

	for _, venue := range dex.DefaultPriority {
		vc := cfg.Venues.ByVenue(venue)
		if _, err := dex.ParseFeeBasis(vc.FeeBasis); err != nil {
			return fmt.Errorf("venues.%s: %w", venue, err)
		}
		if vc.ProgramID != "" {
			if _, err := solana.PublicKeyFromBase58(vc.ProgramID); err != nil {
				return fmt.Errorf("venues.%s.program_id: %w", venue, err)
			}
		}
		if vc.APIURL != "" {
			if err := validateURLWithCache(vc.APIURL, "http"); err != nil {
				return fmt.Errorf("venues.%s.api_url: %w", venue, err)
			}
		}
	}
	if _, err := cfg.MigrationCutoff(); err != nil {
		return err
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

// FeeRecipient parses the platform fee account.
func (c *Config) FeeRecipient() (solana.PublicKey, error) {
	if c.Fee.Recipient == "" {
		return solana.PublicKey{}, errors.New("fee.recipient is required when fee.bps > 0")
	}
	pk, err := solana.PublicKeyFromBase58(c.Fee.Recipient)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid fee.recipient: %w", err)
	}
	return pk, nil
}

// Priority returns the router order. It must be a permutation of every venue.
func (c *Config) Priority() ([]dex.Venue, error) {
	if len(c.Router.Priority) == 0 {
		return dex.DefaultPriority, nil
	}
	seen := make(map[dex.Venue]bool, len(c.Router.Priority))
	out := make([]dex.Venue, 0, len(c.Router.Priority))
	for _, name := range c.Router.Priority {
		v, err := dex.ParseVenue(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("router.priority: %w", err)
		}
		if seen[v] {
			return nil, fmt.Errorf("router.priority: duplicate venue %s", v)
		}
		seen[v] = true
		out = append(out, v)
	}
	if len(out) != len(dex.DefaultPriority) {
		return nil, fmt.Errorf("router.priority must list all %d venues", len(dex.DefaultPriority))
	}
	return out, nil
}

// TTLs returns the selection cache TTL of every venue.
func (c *Config) TTLs() map[dex.Venue]time.Duration {
	out := make(map[dex.Venue]time.Duration, len(dex.DefaultPriority))
	for _, v := range dex.DefaultPriority {
		out[v] = c.Venues.ByVenue(v).CacheTTL
	}
	return out
}

// FeeBasis returns the parsed fee basis of a venue.
func (c *Config) FeeBasis(venue dex.Venue) dex.FeeBasis {
	b, err := dex.ParseFeeBasis(c.Venues.ByVenue(venue).FeeBasis)
	if err != nil {
		return dex.FeeBasisSOL
	}
	return b
}

// ProgramID returns the configured program of a venue, or def.
func (c *Config) ProgramID(venue dex.Venue, def solana.PublicKey) solana.PublicKey {
	if pk, err := solana.PublicKeyFromBase58(c.Venues.ByVenue(venue).ProgramID); err == nil {
		return pk
	}
	return def
}

// MigrationCutoff parses venues.moonshot.migration_cutoff. Empty disables it.
func (c *Config) MigrationCutoff() (time.Time, error) {
	raw := c.Venues.Moonshot.MigrationCutoff
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("venues.moonshot.migration_cutoff: %w", err)
	}
	return t, nil
}

func (c *Config) LookupTableAddresses() ([]solana.PublicKey, error) {
	out := make([]solana.PublicKey, 0, len(c.LookupTables.Addresses))
	for _, a := range c.LookupTables.Addresses {
		pk, err := solana.PublicKeyFromBase58(a)
		if err != nil {
			return nil, fmt.Errorf("lookup_tables.addresses: %q: %w", a, err)
		}
		out = append(out, pk)
	}
	return out, nil
}
