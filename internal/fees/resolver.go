// Package fees resolves protocol base fees from the fee config endpoint.
package fees

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/pkg/types"
)

// Resolver provides the base protocol fee in basis points for a
// (network, order type) pair.
type Resolver interface {
	BaseFee(ctx context.Context, network string, orderType types.Protocol) (int64, error)
}

// HTTPResolver fetches the fee schedule from the fee config endpoint on
// every call. The result is a point-in-time snapshot; callers that want
// memoization wrap this in a CachedResolver.
type HTTPResolver struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPResolver creates a resolver against the given fee config URL.
func NewHTTPResolver(url string, logger *zap.Logger) *HTTPResolver {
	return &HTTPResolver{
		url: url,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// feeSchedule is the wire format: network -> order type -> basis points.
type feeSchedule map[string]map[string]int64

// BaseFee fetches the schedule and resolves the entry for the pair.
// Transport failures are logged and re-thrown wrapped in ErrNetworkError;
// retry policy belongs to the caller. Missing entries surface as
// ErrFeeConfigMissing, with ErrFeeNotFound or ErrUnsupportedFeeType
// pinpointing the gap.
func (r *HTTPResolver) BaseFee(ctx context.Context, network string, orderType types.Protocol) (int64, error) {
	start := time.Now()

	schedule, err := r.fetch(ctx)

	FeeFetchDurationSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		FeeFetchErrorsTotal.Inc()
		r.logger.Error("fee-fetch-failed",
			zap.String("error-code", "NETWORK_ERROR"),
			zap.String("network", network),
			zap.String("order-type", string(orderType)),
			zap.Error(err))

		return 0, fmt.Errorf("%w: %v", types.ErrNetworkError, err)
	}

	byType, ok := schedule[network]
	if !ok {
		return 0, fmt.Errorf("%w: %w: %q", types.ErrFeeConfigMissing, types.ErrFeeNotFound, network)
	}

	fee, ok := byType[string(orderType)]
	if !ok {
		return 0, fmt.Errorf("%w: %w: %q on %q",
			types.ErrFeeConfigMissing, types.ErrUnsupportedFeeType, orderType, network)
	}

	return fee, nil
}

func (r *HTTPResolver) fetch(ctx context.Context) (feeSchedule, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var schedule feeSchedule
	err = json.Unmarshal(body, &schedule)
	if err != nil {
		return nil, fmt.Errorf("decode fee schedule: %w", err)
	}

	return schedule, nil
}
