// Package cli implements walletctl, the operator tool for the ledger database.
package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/walletfc/backend/internal/config"
	"github.com/walletfc/backend/internal/database"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "walletctl",
	Short: "Operate the wallet ledger database",
	Long: `walletctl applies schema migrations, creates admin accounts and
verifies that every stored wallet balance matches a replay of its ledger.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Init(configFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", ".env", "path to the config file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// openDB is replaced in tests.
var openDB = func(ctx context.Context) (*sql.DB, error) {
	db, err := database.InitDB(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}
