package launchlab

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/rovshanmuradov/swap-builder/internal/egress"
)

const RoutePool = "launchlab.pool"

// StatusTrading is the only pool status the venue trades.
const StatusTrading = "trading"

// ErrPoolNotFound means the vendor has no launch pool for the mint.
var ErrPoolNotFound = errors.New("launchlab pool not found")

// PoolInfo is the vendor view of a launch pool. Amounts are decimal strings
// in base units.
type PoolInfo struct {
	PoolID          string `json:"poolId"`
	Mint            string `json:"mint"`
	QuoteMint       string `json:"mintB"`
	Status          string `json:"status"`
	Decimals        uint8  `json:"decimals"`
	ConfigID        string `json:"configId"`
	PlatformID      string `json:"platformId"`
	VaultA          string `json:"vaultA"`
	VaultB          string `json:"vaultB"`
	VirtualA        string `json:"virtualA"`
	VirtualB        string `json:"virtualB"`
	RealA           string `json:"realA"`
	RealB           string `json:"realB"`
	TotalSellA      string `json:"totalSellA"`
	TradeFeeRate    uint64 `json:"tradeFeeRate"`
	PlatformFeeRate uint64 `json:"platformFeeRate"`
}

type poolsResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Rows []PoolInfo `json:"rows"`
	} `json:"data"`
}

// CurveParams parses the curve fields. shareFeeRate is added to the vendor rates.
func (p *PoolInfo) CurveParams(shareFeeRate uint64) (CurveParams, error) {
	var cp CurveParams
	var err error
	if cp.VirtualA, err = parseUint(p.VirtualA, "virtualA"); err != nil {
		return cp, err
	}
	if cp.VirtualB, err = parseUint(p.VirtualB, "virtualB"); err != nil {
		return cp, err
	}
	if cp.RealA, err = parseUint(p.RealA, "realA"); err != nil {
		return cp, err
	}
	if cp.RealB, err = parseUint(p.RealB, "realB"); err != nil {
		return cp, err
	}
	if p.TotalSellA != "" {
		if cp.TotalSellA, err = parseUint(p.TotalSellA, "totalSellA"); err != nil {
			return cp, err
		}
	}
	cp.TradeFeeRate = p.TradeFeeRate
	cp.PlatformFeeRate = p.PlatformFeeRate
	cp.ShareFeeRate = shareFeeRate
	return cp, nil
}

func parseUint(s, field string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return v, nil
}

// API is the venue-quote port of the launch venue.
type API interface {
	Pool(ctx context.Context, mint solana.PublicKey) (*PoolInfo, error)
}

type HTTPAPI struct {
	client  egress.JSONClient
	baseURL string
}

var _ API = (*HTTPAPI)(nil)

func NewHTTPAPI(client egress.JSONClient, baseURL string) *HTTPAPI {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPAPI{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (a *HTTPAPI) Pool(ctx context.Context, mint solana.PublicKey) (*PoolInfo, error) {
	var res poolsResponse
	endpoint := a.baseURL + "/get/by/mints?ids=" + url.QueryEscape(mint.String())
	if err := a.client.GetJSON(ctx, RoutePool, endpoint, &res); err != nil {
		return nil, fmt.Errorf("launchlab pool %s: %w", mint, err)
	}
	for i := range res.Data.Rows {
		if res.Data.Rows[i].Mint == mint.String() {
			return &res.Data.Rows[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, mint)
}
