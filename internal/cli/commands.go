package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/walletfc/backend/internal/database"
	"github.com/walletfc/backend/internal/ledger"
	"github.com/walletfc/backend/internal/services"
	"github.com/walletfc/backend/internal/store"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(verifyCmd)

	createAdminCmd.Flags().String("email", "", "Admin email address")
	createAdminCmd.Flags().String("password", "", "Admin password (at least 6 characters)")
	createAdminCmd.Flags().String("first-name", "Wallet", "Admin first name")
	createAdminCmd.Flags().String("last-name", "Admin", "Admin last name")
	createAdminCmd.MarkFlagRequired("email")
	createAdminCmd.MarkFlagRequired("password")
}

// ─── migrate ────────────────────────────────────────────────────────────────

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := database.Migrate(ctx, db)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", applied)
		return nil
	},
}

// ─── create-admin ───────────────────────────────────────────────────────────

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin user with an empty wallet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		firstName, _ := cmd.Flags().GetString("first-name")
		lastName, _ := cmd.Flags().GetString("last-name")

		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		return createAdmin(ctx, cmd.OutOrStdout(), store.NewPostgres(db), email, password, firstName, lastName)
	},
}

func createAdmin(ctx context.Context, out io.Writer, users services.UserStore, email, password, firstName, lastName string) error {
	admin, err := services.CreateAdmin(ctx, users, email, password, firstName, lastName)
	if err != nil {
		return fmt.Errorf("create admin %s: %w", email, err)
	}
	fmt.Fprintf(out, "Created admin %s (%s)\n", admin.Email, admin.ID)
	return nil
}

// ─── verify ─────────────────────────────────────────────────────────────────

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Replay the ledger and compare it with stored balances",
	Long: `Replay every wallet's transactions in commit order and compare the
result with the stored FC and USD balances. Exits non-zero on any mismatch.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		return verify(ctx, cmd.OutOrStdout(), store.NewPostgres(db))
	},
}

func verify(ctx context.Context, out io.Writer, src ledger.ReplaySource) error {
	report, err := ledger.NewVerifier(src).VerifyAll(ctx)
	if err != nil {
		return err
	}

	for _, m := range report.Mismatches {
		fmt.Fprintf(out, "MISMATCH %s\n", m)
	}
	fmt.Fprintf(out, "Checked %d wallet(s), %d mismatch(es)\n", report.WalletsChecked, len(report.Mismatches))

	if !report.OK() {
		return fmt.Errorf("ledger verification failed: %d mismatch(es)", len(report.Mismatches))
	}
	return nil
}
