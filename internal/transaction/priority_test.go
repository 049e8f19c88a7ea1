package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	level, err := ParsePriority("high")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, level)

	level, err = ParsePriority("")
	require.NoError(t, err)
	assert.Empty(t, level)

	_, err = ParsePriority("ludicrous")
	assert.Error(t, err)
}

func TestResolveBudget(t *testing.T) {
	assert.Equal(t, Budget{UnitPrice: 5_000, UnitLimit: 400_000}, ResolveBudget(PriorityMedium, Budget{}))
	assert.Equal(t, Budget{UnitPrice: 7, UnitLimit: 400_000}, ResolveBudget(PriorityMedium, Budget{UnitPrice: 7}))
	assert.Equal(t, Budget{UnitPrice: 7, UnitLimit: 9}, ResolveBudget(PriorityExtreme, Budget{UnitPrice: 7, UnitLimit: 9}))
	assert.Equal(t, Budget{UnitPrice: 3}, ResolveBudget("", Budget{UnitPrice: 3}))
}
