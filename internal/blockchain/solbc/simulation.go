package solbc

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// AnchorError represents an error from Anchor framework
type AnchorError struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg"`
}

// SimulationResult is the informational outcome of simulating a built transaction.
type SimulationResult struct {
	Success          bool         `json:"success"`
	Error            string       `json:"error,omitempty"`
	Logs             []string     `json:"logs,omitempty"`
	UnitsConsumed    uint64       `json:"unitsConsumed,omitempty"`
	Anchor           *AnchorError `json:"anchorError,omitempty"`
	SlippageExceeded bool         `json:"slippageExceeded,omitempty"`
}

// AnalyzeSimulation maps an RPC simulation response to a SimulationResult and
// extracts the Anchor error from program logs when present.
func AnalyzeSimulation(res *rpc.SimulateTransactionResponse, logger *zap.Logger) *SimulationResult {
	if res == nil || res.Value == nil {
		return &SimulationResult{Error: "empty simulation response"}
	}

	out := &SimulationResult{
		Success: res.Value.Err == nil,
		Logs:    res.Value.Logs,
	}
	if res.Value.UnitsConsumed != nil {
		out.UnitsConsumed = *res.Value.UnitsConsumed
	}
	if res.Value.Err == nil {
		return out
	}

	out.Error = fmt.Sprintf("%v", res.Value.Err)
	for _, line := range res.Value.Logs {
		if strings.Contains(line, "AnchorError") {
			ae := parseAnchorErrorLog(line)
			out.Anchor = &ae
			logger.Warn("Anchor error detected in simulation",
				zap.Int("code", ae.Code),
				zap.String("name", ae.Name),
				zap.String("message", ae.Msg))
			break
		}
	}
	out.SlippageExceeded = isSlippageFailure(out)
	return out
}

// Known slippage guards of the supported programs.
var slippageErrorNames = []string{"ExceededSlippage", "TooMuchSolRequired", "TooLittleSolReceived", "SlippageExceeded", "AmountOutBelowMinimum"}

func isSlippageFailure(r *SimulationResult) bool {
	if r.Anchor != nil {
		for _, name := range slippageErrorNames {
			if r.Anchor.Name == name {
				return true
			}
		}
	}
	return strings.Contains(strings.ToLower(r.Error), "slippage")
}

// parseAnchorErrorLog parses an Anchor error log string
// Example: "Program log: AnchorError occurred. Error Code: InstructionFallbackNotFound. Error Number: 101. Error Message: Fallback functions are not supported."
func parseAnchorErrorLog(logStr string) AnchorError {
	result := AnchorError{}

	if parts := strings.SplitN(logStr, "Error Number:", 2); len(parts) == 2 {
		numPart := strings.SplitN(parts[1], ".", 2)[0]
		_, _ = fmt.Sscanf(strings.TrimSpace(numPart), "%d", &result.Code)
	}
	if parts := strings.SplitN(logStr, "Error Code:", 2); len(parts) == 2 {
		result.Name = strings.TrimSpace(strings.SplitN(parts[1], ".", 2)[0])
	}
	if parts := strings.SplitN(logStr, "Error Message:", 2); len(parts) == 2 {
		result.Msg = strings.TrimSuffix(strings.TrimSpace(parts[1]), ".")
	}
	return result
}
