package main

import (
	"log"
	"os"

	"legalassist-backend/config"
	"legalassist-backend/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	rootCmd = &cobra.Command{
		Use:   "legal",
		Short: "Ask legal questions answered from Légifrance articles",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			logger = logging.New(logging.Config{File: cfg.LogFile, Production: cfg.LogProduction})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.AddCommand(askCmd, codesCmd, exportCSVCmd, articleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
