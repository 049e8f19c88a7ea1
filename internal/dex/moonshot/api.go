// =============================================
// File: internal/dex/moonshot/api.go
// =============================================
package moonshot

import (
	"context"
	"fmt"
	"math/big"
	"net/url"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/rovshanmuradov/swap-builder/internal/egress"
)

// Egress routes, also used as breaker and metric labels.
const (
	RouteToken = "moonshot.token"
	RouteQuote = "moonshot.quote"
	RouteBuild = "moonshot.build"
)

// Trade directions understood by the API.
const (
	DirectionBuy  = "BUY"
	DirectionSell = "SELL"
)

// TokenInfo is the vendor view of a token.
type TokenInfo struct {
	Mint         string `json:"mintAddress"`
	CurveAddress string `json:"curveAddress"`
	Decimals     uint8  `json:"decimals"`
	Migrated     bool   `json:"migrated"`
	CreatedAt    int64  `json:"createdAt"` // unix seconds
}

type QuoteRequest struct {
	Mint           string `json:"mintAddress"`
	TradeDirection string `json:"tradeDirection"`
	Amount         string `json:"amount"`
	FixedSide      string `json:"fixedSide"`
}

// QuoteResponse is the curve result, both legs in base units.
type QuoteResponse struct {
	TokenAmount      string `json:"tokenAmount"`
	CollateralAmount string `json:"collateralAmount"`
}

// Tokens parses the token leg.
func (r *QuoteResponse) Tokens() (*big.Int, error) {
	return parseAmount("tokenAmount", r.TokenAmount)
}

// Collateral parses the SOL leg.
func (r *QuoteResponse) Collateral() (*big.Int, error) {
	return parseAmount("collateralAmount", r.CollateralAmount)
}

// BuildRequest asks for a pre-built trade. MinimumAmountOut is the floor the
// program enforces on the received leg: tokens on buys, collateral on sells.
type BuildRequest struct {
	Mint             string `json:"mintAddress"`
	Wallet           string `json:"walletAddress"`
	TradeDirection   string `json:"tradeDirection"`
	TokenAmount      string `json:"tokenAmount"`
	CollateralAmount string `json:"collateralAmount"`
	MinimumAmountOut string `json:"minimumAmountOut"`
	SlippageBps      uint16 `json:"slippageBps"`
	FixedSide        string `json:"fixedSide"`
	ComputeUnitPrice uint64 `json:"computeUnitPrice,omitempty"`
}

type buildResponse struct {
	Transaction string `json:"transaction"`
}

// API is the venue-quote port of the Moonshot venue.
type API interface {
	Token(ctx context.Context, mint solana.PublicKey) (*TokenInfo, error)
	Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error)
	Build(ctx context.Context, req BuildRequest) (*solana.Transaction, error)
}

// HTTPAPI talks to the hosted Moonshot API through the egress client.
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

func (a *HTTPAPI) Token(ctx context.Context, mint solana.PublicKey) (*TokenInfo, error) {
	var info TokenInfo
	endpoint := a.baseURL + "/token/v1/solana/" + url.PathEscape(mint.String())
	if err := a.client.GetJSON(ctx, RouteToken, endpoint, &info); err != nil {
		return nil, fmt.Errorf("moonshot token %s: %w", mint, err)
	}
	return &info, nil
}

func (a *HTTPAPI) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	var res QuoteResponse
	if err := a.client.PostJSON(ctx, RouteQuote, a.baseURL+"/trade/v1/quote", req, &res); err != nil {
		return nil, fmt.Errorf("moonshot quote: %w", err)
	}
	return &res, nil
}

// Build asks the API for a finished, unsigned transaction.
func (a *HTTPAPI) Build(ctx context.Context, req BuildRequest) (*solana.Transaction, error) {
	var res buildResponse
	if err := a.client.PostJSON(ctx, RouteBuild, a.baseURL+"/trade/v1/build", req, &res); err != nil {
		return nil, fmt.Errorf("moonshot build: %w", err)
	}
	return DecodeTransaction(res.Transaction)
}

// DecodeTransaction decodes a base58 wire transaction.
func DecodeTransaction(encoded string) (*solana.Transaction, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 transaction: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	return tx, nil
}

func parseAmount(field, s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid %s %q", field, s)
	}
	return v, nil
}
