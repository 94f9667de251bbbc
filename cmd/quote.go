package cmd

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/internal/fulfill"
)

//nolint:gochecknoglobals // Cobra boilerplate
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a fill without submitting it",
	Long: `Fetches an order and encodes the fill exactly as fulfill would,
but prints the call instead of submitting it. Useful for inspecting
calldata and the total attached value (price plus fees).`,
	RunE: runQuote,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.Flags().String("hash", "", "Order hash to quote")
	quoteCmd.Flags().String("amount", "", "Fill amount in the order's fill unit")
	quoteCmd.Flags().StringSlice("origin-fee", nil, "Additional fee as address:bps (repeatable)")
	_ = quoteCmd.MarkFlagRequired("hash")
	_ = quoteCmd.MarkFlagRequired("amount")
}

func runQuote(cmd *cobra.Command, args []string) error {
	application, logger, err := buildEngine()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	hash, _ := cmd.Flags().GetString("hash")
	amountStr, _ := cmd.Flags().GetString("amount")
	rawFees, _ := cmd.Flags().GetStringSlice("origin-fee")

	amount, ok := new(big.Int).SetString(amountStr, 10)
	if !ok || amount.Sign() <= 0 {
		return fmt.Errorf("invalid amount %q", amountStr)
	}

	originFees, err := parseOriginFees(rawFees)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	order, err := application.OrderBook().GetOrderByHash(ctx, hash)
	if err != nil {
		return fmt.Errorf("fetch order: %w", err)
	}

	tx, err := application.Fulfiller().Quote(ctx, &fulfill.Request{
		Order:      order,
		Amount:     amount,
		OriginFees: originFees,
	})
	if err != nil {
		return fmt.Errorf("quote order: %w", err)
	}

	value := "0"
	if tx.Value != nil {
		value = tx.Value.String()
	}

	logger.Info("quote",
		zap.String("to", tx.To.Hex()),
		zap.String("method", tx.Method),
		zap.String("value", value),
		zap.String("data", hexutil.Encode(tx.Data)))

	return nil
}
