package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "10", FormatUnits(amount("10000000000000000000"), 18))
	assert.Equal(t, "0.5", FormatUnits(amount("500000000000000000"), 18))
	assert.Equal(t, "123", FormatUnits(amount("123"), 0))
	assert.Equal(t, "0", FormatUnits(nil, 18))
}

func TestParseUnits(t *testing.T) {
	v, err := ParseUnits("0.3", 18)
	require.NoError(t, err)
	assert.Equal(t, "300000000000000000", v.Dec())

	v, err = ParseUnits("10", 18)
	require.NoError(t, err)
	assert.Equal(t, "10000000000000000000", v.Dec())

	_, err = ParseUnits("0.0000000000000000001", 18)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseUnits("-1", 18)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseUnits("abc", 18)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseUnits("1"+strings.Repeat("0", 78), 0)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("42")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v.Uint64())

	_, err = ParseAmount("-1")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseAmount("1.5")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseAmount("")
	require.ErrorIs(t, err, ErrInvalidAmount)
}
