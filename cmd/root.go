package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "ethereum-sdk",
	Short: "NFT exchange order fulfillment engine",
	Long: `Fulfillment engine for signed NFT exchange orders. It resolves
protocol fees and royalties, scales amounts for partial fills, and encodes
the exchange-specific transaction for Rarible V2, Seaport and LooksRare
orders.

Commands either run the long-lived quote service or perform one-shot
operations: fetch an order, quote a fill, or submit a fulfillment.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
