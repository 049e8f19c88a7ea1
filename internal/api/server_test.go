package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/dex"
	"github.com/rovshanmuradov/swap-builder/internal/swap"
)

type mockBuilder struct {
	mock.Mock
}

func (m *mockBuilder) Build(ctx context.Context, req swap.BuildRequest) (*swap.BuildResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*swap.BuildResult)
	return res, args.Error(1)
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/swap/build", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBuildSwap_OK(t *testing.T) {
	b := new(mockBuilder)
	b.On("Build", mock.Anything, mock.MatchedBy(func(r swap.BuildRequest) bool {
		return r.Amount == "0.01" && r.SlippageBps == 500 && r.Type == "buy" && r.UserWalletAddress == "u"
	})).Return(&swap.BuildResult{
		Transactions: []string{"AQID"},
		FeeLamports:  100_000,
		Venue:        dex.VenuePumpSwap,
		Quote:        swap.QuoteView{AmountIn: "10000000", ExpectedOut: "99", MinOut: "94"},
		RequestID:    "req-1",
	}, nil)

	h := NewServer(":0", b, zap.NewNop()).Router()
	rec := post(t, h, `{"inputMint":"So11111111111111111111111111111111111111112","outputMint":"x","amount":"0.01","slippageBps":500,"userWalletAddress":"u","type":"buy"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var res swap.BuildResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, []string{"AQID"}, res.Transactions)
	assert.Equal(t, "94", res.Quote.MinOut)
	assert.Equal(t, uint64(100_000), res.FeeLamports)
	b.AssertExpectations(t)
}

func TestBuildSwap_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", dex.NewValidationError("bad amount"), http.StatusBadRequest},
		{"unsupported", dex.NewUnsupportedVenueError("mint", dex.SideBuy), http.StatusNotFound},
		{"venue quote", dex.NewVenueQuoteError(dex.VenueMoonshot, "quote", errors.New("503")), http.StatusBadGateway},
		{"compile", dex.NewCompileError("size", errors.New("too large")), http.StatusUnprocessableEntity},
		{"transient", dex.NewTransientNetworkError("route", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := new(mockBuilder)
			b.On("Build", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := post(t, NewServer(":0", b, zap.NewNop()).Router(), `{"amount":"1"}`)
			assert.Equal(t, tt.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body.Error)
			assert.Equal(t, dex.KindOf(tt.err), body.Kind)
		})
	}
}

// validatingBuilder runs request validation and echoes the parsed side.
type validatingBuilder struct{}

func (validatingBuilder) Build(_ context.Context, br swap.BuildRequest) (*swap.BuildResult, error) {
	req, err := swap.Validate(br)
	if err != nil {
		return nil, err
	}
	return &swap.BuildResult{Transactions: []string{}, RequestID: string(req.Side)}, nil
}

func TestBuildSwap_RequestFieldNames(t *testing.T) {
	const (
		sol    = "So11111111111111111111111111111111111111112"
		token  = "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R"
		wallet = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	)
	tests := []struct {
		name   string
		body   string
		status int
		side   string
	}{
		{
			name:   "documented names",
			body:   `{"inputMint":"` + sol + `","outputMint":"` + token + `","amount":"0.01","slippageBps":500,"userWalletAddress":"` + wallet + `","type":"buy"}`,
			status: http.StatusOK,
			side:   "buy",
		},
		{
			name:   "legacy aliases",
			body:   `{"inputMint":"` + token + `","outputMint":"` + sol + `","amount":"5","slippageBps":100,"user":"` + wallet + `","side":"sell"}`,
			status: http.StatusOK,
			side:   "sell",
		},
		{
			name:   "missing wallet",
			body:   `{"inputMint":"` + sol + `","outputMint":"` + token + `","amount":"0.01","slippageBps":500,"type":"buy"}`,
			status: http.StatusBadRequest,
		},
	}
	h := NewServer(":0", validatingBuilder{}, zap.NewNop()).Router()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				return
			}
			var res swap.BuildResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.Equal(t, tt.side, res.RequestID)
		})
	}
}

func TestBuildSwap_MalformedBody(t *testing.T) {
	b := new(mockBuilder)
	rec := post(t, NewServer(":0", b, zap.NewNop()).Router(), `{"amount":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	b.AssertNotCalled(t, "Build", mock.Anything, mock.Anything)
}

func TestHealthAndMetrics(t *testing.T) {
	h := NewServer(":0", new(mockBuilder), zap.NewNop()).Router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "swap_builder_http_requests_total")
}
