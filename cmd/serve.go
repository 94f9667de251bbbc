package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yiinote/ethereum-sdk/internal/app"
	"github.com/yiinote/ethereum-sdk/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the quote service",
	Long: `Starts the long-lived service: the quote HTTP API with health
probes and metrics, and optionally a live order-event stream for the
given collections.`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringSliceP("collections", "c", nil,
		"Collection addresses to watch on the order stream")
}

func runServe(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	collections, _ := cmd.Flags().GetStringSlice("collections")

	application, err := app.New(cfg, logger, &app.Options{Collections: collections})
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run(collections)
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
