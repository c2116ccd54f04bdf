package cli

import (
	"fmt"

	"github.com/ravensync/vaultkeep/internal/cli/appctx"
	"github.com/ravensync/vaultkeep/internal/codec/vkdb"
	"github.com/spf13/cobra"
)

var migrateAdmCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long:  `Apply every embedded schema migration that has not yet run against the configured database.`,
	RunE:  appctx.WithApp(appctx.ConfigOnly(), runMigrateAdm),
}

func init() {
	rootAdmCmd.AddCommand(migrateAdmCmd)
}

func runMigrateAdm(app *appctx.App, cmd *cobra.Command, args []string) error {
	conn, err := vkdb.Open(app.Config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer conn.Close()

	applied, err := conn.Migrate()
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	if len(applied) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s):\n", len(applied))
	for _, m := range applied {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", m)
	}
	return nil
}
