package swap

import (
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/swap-builder/internal/blockchain/solbc"
	"github.com/rovshanmuradov/swap-builder/internal/dex"
)

// BuildRequest is the wire form of a swap request.
type BuildRequest struct {
	InputMint         string `json:"inputMint"`
	OutputMint        string `json:"outputMint"`
	Amount            string `json:"amount"`
	SlippageBps       int    `json:"slippageBps"`
	UserWalletAddress string `json:"userWalletAddress"`
	Type              string `json:"type"` // buy or sell
	Mode              string `json:"mode,omitempty"`
	PriorityFee       uint64 `json:"priorityFee,omitempty"`
	ComputeUnitPrice  uint64 `json:"computeUnitPrice,omitempty"`
	Priority          string `json:"priority,omitempty"` // low, medium, high, extreme
	Simulate          *bool  `json:"simulate,omitempty"`

	// Deprecated aliases of UserWalletAddress and Type.
	User string `json:"user,omitempty"`
	Side string `json:"side,omitempty"`
}

func (br BuildRequest) wallet() string {
	if br.UserWalletAddress != "" {
		return br.UserWalletAddress
	}
	return br.User
}

func (br BuildRequest) tradeType() string {
	if br.Type != "" {
		return br.Type
	}
	return br.Side
}

type QuoteView struct {
	AmountIn    string `json:"amountIn"`
	ExpectedOut string `json:"expectedOut"`
	MinOut      string `json:"minOut"`
	MaxIn       string `json:"maxIn,omitempty"`
}

// BuildResult holds base64 unsigned transactions in signing order.
type BuildResult struct {
	Transactions []string                `json:"transactions"`
	FeeLamports  uint64                  `json:"feeLamports"`
	PoolAddress  string                  `json:"poolAddress,omitempty"`
	Venue        dex.Venue               `json:"venue"`
	Quote        QuoteView               `json:"quote"`
	RequestID    string                  `json:"requestId"`
	Simulation   *solbc.SimulationResult `json:"simulation,omitempty"`
}

func quoteView(q dex.Quote) QuoteView {
	v := QuoteView{}
	if q.AmountIn != nil {
		v.AmountIn = q.AmountIn.String()
	}
	if q.ExpectedOut != nil {
		v.ExpectedOut = q.ExpectedOut.String()
	}
	if q.MinOut != nil {
		v.MinOut = q.MinOut.String()
	}
	if q.MaxIn != nil {
		v.MaxIn = q.MaxIn.String()
	}
	return v
}

// Validate converts a wire request into a domain request.
func Validate(br BuildRequest) (*dex.SwapRequest, error) {
	input, err := solana.PublicKeyFromBase58(strings.TrimSpace(br.InputMint))
	if err != nil {
		return nil, dex.NewValidationError("invalid inputMint: %v", err)
	}
	output, err := solana.PublicKeyFromBase58(strings.TrimSpace(br.OutputMint))
	if err != nil {
		return nil, dex.NewValidationError("invalid outputMint: %v", err)
	}
	user, err := solana.PublicKeyFromBase58(strings.TrimSpace(br.wallet()))
	if err != nil {
		return nil, dex.NewValidationError("invalid userWalletAddress: %v", err)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(br.Amount))
	if err != nil {
		return nil, dex.NewValidationError("invalid amount %q", br.Amount)
	}
	if !amount.IsPositive() {
		return nil, dex.NewValidationError("amount must be positive")
	}
	if br.SlippageBps < 0 || br.SlippageBps > dex.BpsDenominator {
		return nil, dex.NewValidationError("slippageBps must be within 0..10000")
	}

	side := dex.Side(strings.ToLower(br.tradeType()))
	switch side {
	case dex.SideBuy:
		if !input.Equals(solana.SolMint) {
			return nil, dex.NewValidationError("buy must spend SOL")
		}
	case dex.SideSell:
		if !output.Equals(solana.SolMint) {
			return nil, dex.NewValidationError("sell must receive SOL")
		}
	default:
		return nil, dex.NewValidationError("type must be buy or sell, got %q", br.tradeType())
	}
	if input.Equals(output) {
		return nil, dex.NewValidationError("input and output mints are the same")
	}

	mode := dex.ModeExactIn
	switch dex.Mode(br.Mode) {
	case "", dex.ModeExactIn:
	case dex.ModeExactOut:
		mode = dex.ModeExactOut
	default:
		return nil, dex.NewValidationError("unknown mode %q", br.Mode)
	}

	return &dex.SwapRequest{
		InputMint:        input,
		OutputMint:       output,
		Amount:           amount,
		SlippageBps:      uint16(br.SlippageBps),
		User:             user,
		Side:             side,
		Mode:             mode,
		PriorityFee:      br.PriorityFee,
		ComputeUnitPrice: br.ComputeUnitPrice,
	}, nil
}
