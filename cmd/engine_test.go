package cmd

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOriginFees(t *testing.T) {
	parts, err := parseOriginFees([]string{
		"0x4444444444444444444444444444444444444444:100",
		"0x5555555555555555555555555555555555555555:50",
	})
	require.NoError(t, err)

	require.Len(t, parts, 2)
	assert.Equal(t, common.HexToAddress("0x4444444444444444444444444444444444444444"), parts[0].Account)
	assert.Equal(t, int64(100), parts[0].Value)
	assert.Equal(t, int64(50), parts[1].Value)
}

func TestParseOriginFees_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{name: "missing-bps", entry: "0x4444444444444444444444444444444444444444"},
		{name: "bad-address", entry: "not-an-address:100"},
		{name: "bad-bps", entry: "0x4444444444444444444444444444444444444444:many"},
		{name: "zero-bps", entry: "0x4444444444444444444444444444444444444444:0"},
		{name: "negative-bps", entry: "0x4444444444444444444444444444444444444444:-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseOriginFees([]string{tt.entry})
			require.Error(t, err)
		})
	}
}

func TestParseOriginFees_Empty(t *testing.T) {
	parts, err := parseOriginFees(nil)
	require.NoError(t, err)
	assert.Empty(t, parts)
}
