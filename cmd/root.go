package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/contact-scout/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "contact-scout",
	Short: "Social-profile contact enrichment pipeline",
	Long:  "Follows a profile's bio link through link-in-bio pages to destination websites and mines them for emails, phones, addresses, and a best-guess decision maker.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
