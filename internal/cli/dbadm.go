package cli

import (
	"fmt"

	"github.com/ravensync/vaultkeep/internal/cli/appctx"
	"github.com/spf13/cobra"
)

var dbAdmCmd = &cobra.Command{
	Use:   "db",
	Short: "Database lifecycle commands",
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending schema migrations",
	RunE:  appctx.WithApp(appctx.ConfigOnly(), runDBStatusAdm),
}

func init() {
	rootAdmCmd.AddCommand(dbAdmCmd)
	dbAdmCmd.AddCommand(dbStatusCmd)
}

func runDBStatusAdm(app *appctx.App, cmd *cobra.Command, args []string) error {
	conn, err := openDBForStatus(app)
	if err != nil {
		return err
	}
	defer conn.Close()

	applied, pending, err := conn.MigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "database: %s\n", conn.Path())
	fmt.Fprintf(cmd.OutOrStdout(), "applied migrations (%d):\n", len(applied))
	for _, m := range applied {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", m)
	}
	if len(pending) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no pending migrations")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "pending migrations (%d):\n", len(pending))
		for _, m := range pending {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", m)
		}
	}
	return nil
}
