package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var feeCmd = &cobra.Command{
	Use:   "fee",
	Short: "Show the protocol base fee for an order",
	RunE:  runFee,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(feeCmd)
	feeCmd.Flags().String("hash", "", "Order hash to look up")
	_ = feeCmd.MarkFlagRequired("hash")
}

func runFee(cmd *cobra.Command, args []string) error {
	application, logger, err := buildEngine()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	hash, _ := cmd.Flags().GetString("hash")
	ctx := cmd.Context()

	order, err := application.OrderBook().GetOrderByHash(ctx, hash)
	if err != nil {
		return fmt.Errorf("fetch order: %w", err)
	}

	fee, err := application.Fulfiller().GetOrderFee(ctx, order)
	if err != nil {
		return fmt.Errorf("get order fee: %w", err)
	}

	logger.Info("order-fee",
		zap.String("order-hash", hash),
		zap.String("protocol", string(order.Protocol)),
		zap.String("network", order.Network),
		zap.Int64("fee-bps", fee))

	return nil
}
