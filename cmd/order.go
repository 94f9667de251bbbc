package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Fetch an order from the order book",
	RunE:  runOrder,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(orderCmd)
	orderCmd.Flags().String("hash", "", "Order hash to fetch")
	_ = orderCmd.MarkFlagRequired("hash")
}

func runOrder(cmd *cobra.Command, args []string) error {
	application, logger, err := buildEngine()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	hash, _ := cmd.Flags().GetString("hash")

	order, err := application.OrderBook().GetOrderByHash(cmd.Context(), hash)
	if err != nil {
		return fmt.Errorf("fetch order: %w", err)
	}

	logger.Info("order",
		zap.String("order-hash", hash),
		zap.String("protocol", string(order.Protocol)),
		zap.String("maker", order.Maker.Hex()),
		zap.String("make-class", string(order.Make.Type.Class)),
		zap.String("make-value", order.Make.Value.String()),
		zap.String("take-class", string(order.Take.Type.Class)),
		zap.String("take-value", order.Take.Value.String()),
		zap.String("remaining", order.Remaining().String()),
		zap.Bool("allow-partial-fill", order.AllowPartialFill))

	return nil
}
