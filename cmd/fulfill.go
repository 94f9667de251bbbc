package cmd

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/internal/fulfill"
)

//nolint:gochecknoglobals // Cobra boilerplate
var fulfillCmd = &cobra.Command{
	Use:   "fulfill",
	Short: "Submit a fulfillment for an order",
	Long: `Fetches an order from the order book, encodes the fill for its
protocol and submits the transaction with the configured wallet.

Origin fees are paid by the fulfilling wallet on top of the price, as
repeated --origin-fee address:bps flags.`,
	RunE: runFulfill,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(fulfillCmd)
	fulfillCmd.Flags().String("hash", "", "Order hash to fulfill")
	fulfillCmd.Flags().String("amount", "", "Fill amount in the order's fill unit")
	fulfillCmd.Flags().StringSlice("origin-fee", nil, "Additional fee as address:bps (repeatable)")
	fulfillCmd.Flags().Bool("wait", false, "Wait for the transaction receipt")
	_ = fulfillCmd.MarkFlagRequired("hash")
	_ = fulfillCmd.MarkFlagRequired("amount")
}

func runFulfill(cmd *cobra.Command, args []string) error {
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
	wait, _ := cmd.Flags().GetBool("wait")

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

	tx, err := application.Fulfiller().Fulfill(ctx, &fulfill.Request{
		Order:      order,
		Amount:     amount,
		OriginFees: originFees,
	})
	if err != nil {
		return fmt.Errorf("fulfill order: %w", err)
	}

	logger.Info("fulfillment-transaction-sent",
		zap.String("tx-hash", tx.Hash.Hex()),
		zap.String("method", tx.Method))

	if !wait {
		return nil
	}

	receipt, err := tx.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for receipt: %w", err)
	}

	logger.Info("fulfillment-mined",
		zap.String("tx-hash", tx.Hash.Hex()),
		zap.Uint64("block", receipt.BlockNumber.Uint64()),
		zap.Uint64("gas-used", receipt.GasUsed))

	return nil
}
