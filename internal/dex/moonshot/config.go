package moonshot

import (
	"time"

	"github.com/rovshanmuradov/swap-builder/internal/dex"
)

const DefaultBaseURL = "https://api.moonshot.cc"

// Config for the Moonshot venue.
type Config struct {
	BaseURL string
	// Tokens created before the cutoff trade on the old curve program that
	// the hosted API no longer builds for. Zero disables the check.
	MigrationCutoff time.Time
	FeeBasis        dex.FeeBasis
}

func DefaultConfig() Config {
	return Config{BaseURL: DefaultBaseURL, FeeBasis: dex.FeeBasisSOL}
}

func (cfg Config) withDefaults() Config {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.FeeBasis == "" {
		cfg.FeeBasis = dex.FeeBasisSOL
	}
	return cfg
}
