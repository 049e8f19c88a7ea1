package dex

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCurve() *CurveState {
	return &CurveState{
		VirtualTokenReserves: big.NewInt(1_073_000_000_000_000),
		VirtualSolReserves:   big.NewInt(30_000_000_000),
		RealTokenReserves:    big.NewInt(793_100_000_000_000),
		ProtocolFeeBps:       100,
	}
}

func TestQuoteCurveBuy_Monotonic(t *testing.T) {
	c := testCurve()
	prev := big.NewInt(0)
	for _, sol := range []int64{1_000_000, 10_000_000, 100_000_000, 1_000_000_000, 5_000_000_000, 20_000_000_000} {
		q, err := QuoteCurveBuy(c, big.NewInt(sol), 0)
		require.NoError(t, err)
		assert.Equal(t, 1, q.ExpectedOut.Cmp(prev), "output must grow with input")
		assert.Equal(t, -1, q.ExpectedOut.Cmp(c.VirtualTokenReserves))
		prev = q.ExpectedOut
	}
}

func TestQuoteCurveBuy_CappedByRealReserves(t *testing.T) {
	c := testCurve()
	c.RealTokenReserves = big.NewInt(1_000)
	q, err := QuoteCurveBuy(c, big.NewInt(1_000_000_000), 100)
	require.NoError(t, err)
	assert.Equal(t, "1000", q.ExpectedOut.String())
	assert.Equal(t, "990", q.MinOut.String())
}

func TestQuoteCurveSell(t *testing.T) {
	c := testCurve()
	c.ProtocolFeeBps = 0
	q, err := QuoteCurveSell(c, big.NewInt(1_073_000_000_000), 500)
	require.NoError(t, err)
	// 30e9 * 1.073e12 / (1.073e15 + 1.073e12) = 29_970_029.97
	assert.Equal(t, "29970029", q.ExpectedOut.String())
	assert.Equal(t, MinOut(q.ExpectedOut, 500).String(), q.MinOut.String())

	c.ProtocolFeeBps = 100
	withFee, err := QuoteCurveSell(c, big.NewInt(1_073_000_000_000), 500)
	require.NoError(t, err)
	assert.Equal(t, DeductBps(q.ExpectedOut, 100).String(), withFee.ExpectedOut.String())
}

func TestQuoteCurve_Errors(t *testing.T) {
	c := testCurve()
	c.Complete = true
	_, err := QuoteCurveBuy(c, big.NewInt(1), 0)
	assert.ErrorIs(t, err, ErrCurveComplete)

	c = testCurve()
	c.VirtualTokenReserves = big.NewInt(10)
	_, err = QuoteCurveBuy(c, big.NewInt(1), 0)
	assert.ErrorIs(t, err, ErrZeroOutput)

	c = testCurve()
	c.VirtualSolReserves = big.NewInt(0)
	_, err = QuoteCurveSell(c, big.NewInt(1_000), 0)
	assert.ErrorIs(t, err, ErrZeroReserves)
}
