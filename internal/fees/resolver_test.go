package fees

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/pkg/types"
)

const scheduleJSON = `{
	"mainnet": {
		"RARIBLE_V2": 250,
		"SEAPORT_V1": 250,
		"LOOKSRARE": 200
	},
	"polygon": {
		"RARIBLE_V2": 100
	}
}`

func newTestResolver(t *testing.T, handler http.HandlerFunc) *HTTPResolver {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewHTTPResolver(server.URL, zap.NewNop())
}

func TestBaseFee(t *testing.T) {
	resolver := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(scheduleJSON))
	})

	tests := []struct {
		name      string
		network   string
		orderType types.Protocol
		expected  int64
		expectErr error
	}{
		{
			name:      "mainnet-rarible",
			network:   "mainnet",
			orderType: types.ProtocolRaribleV2,
			expected:  250,
		},
		{
			name:      "mainnet-looksrare",
			network:   "mainnet",
			orderType: types.ProtocolLooksRare,
			expected:  200,
		},
		{
			name:      "polygon-rarible",
			network:   "polygon",
			orderType: types.ProtocolRaribleV2,
			expected:  100,
		},
		{
			name:      "unknown-network",
			network:   "moonbase",
			orderType: types.ProtocolRaribleV2,
			expectErr: types.ErrFeeNotFound,
		},
		{
			name:      "unknown-order-type-within-network",
			network:   "polygon",
			orderType: types.ProtocolSeaport,
			expectErr: types.ErrUnsupportedFeeType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, err := resolver.BaseFee(context.Background(), tt.network, tt.orderType)
			if tt.expectErr != nil {
				require.ErrorIs(t, err, tt.expectErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, fee)
		})
	}
}

func TestBaseFee_MissingEntriesAreFeeConfigMissing(t *testing.T) {
	resolver := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(scheduleJSON))
	})

	_, err := resolver.BaseFee(context.Background(), "moonbase", types.ProtocolRaribleV2)
	require.ErrorIs(t, err, types.ErrFeeConfigMissing)
	require.ErrorIs(t, err, types.ErrFeeNotFound)

	_, err = resolver.BaseFee(context.Background(), "polygon", types.ProtocolSeaport)
	require.ErrorIs(t, err, types.ErrFeeConfigMissing)
	require.ErrorIs(t, err, types.ErrUnsupportedFeeType)
}

func TestBaseFee_Idempotent(t *testing.T) {
	resolver := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(scheduleJSON))
	})

	first, err := resolver.BaseFee(context.Background(), "mainnet", types.ProtocolSeaport)
	require.NoError(t, err)

	second, err := resolver.BaseFee(context.Background(), "mainnet", types.ProtocolSeaport)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBaseFee_TransportError(t *testing.T) {
	resolver := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := resolver.BaseFee(context.Background(), "mainnet", types.ProtocolRaribleV2)
	require.ErrorIs(t, err, types.ErrNetworkError)
}

func TestBaseFee_MalformedBody(t *testing.T) {
	resolver := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not-json"))
	})

	_, err := resolver.BaseFee(context.Background(), "mainnet", types.ProtocolRaribleV2)
	require.ErrorIs(t, err, types.ErrNetworkError)
}
