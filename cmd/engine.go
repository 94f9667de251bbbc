package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/internal/app"
	"github.com/yiinote/ethereum-sdk/pkg/config"
	"github.com/yiinote/ethereum-sdk/pkg/types"
)

// buildEngine loads config and assembles the application for one-shot
// commands. The caller owns the logger sync.
func buildEngine() (*app.App, *zap.Logger, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	application, err := app.New(cfg, logger, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create app: %w", err)
	}

	return application, logger, nil
}

// parseOriginFees parses repeated "address:bps" flags into fee parts.
func parseOriginFees(raw []string) ([]types.Part, error) {
	parts := make([]types.Part, 0, len(raw))

	for _, entry := range raw {
		fields := strings.Split(entry, ":")
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid origin fee %q, expected address:bps", entry)
		}

		if !common.IsHexAddress(fields[0]) {
			return nil, fmt.Errorf("invalid origin fee address %q", fields[0])
		}

		bps, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || bps <= 0 {
			return nil, fmt.Errorf("invalid origin fee bps %q", fields[1])
		}

		parts = append(parts, types.Part{
			Account: common.HexToAddress(fields[0]),
			Value:   bps,
		})
	}

	return parts, nil
}
