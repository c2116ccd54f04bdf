package cli

import (
	"fmt"

	"github.com/ravensync/vaultkeep/internal/cli/appctx"
	"github.com/ravensync/vaultkeep/internal/codec/vkdb"
	"github.com/spf13/cobra"
)

var initAdmCmd = &cobra.Command{
	Use:   "init",
	Short: "Create and migrate a new vault database",
	Long: `Create the vault database file at the configured (or --db)
path if it does not already exist, and apply every embedded schema
migration, leaving an empty root group in place.

Examples:
  vkeepadm init
  vkeepadm --db ./team.db init
`,
	RunE: appctx.WithApp(appctx.ConfigOnly(), runInitAdm),
}

func init() {
	rootAdmCmd.AddCommand(initAdmCmd)
}

func runInitAdm(app *appctx.App, cmd *cobra.Command, args []string) error {
	conn, err := vkdb.Open(app.Config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer conn.Close()

	applied, err := conn.Migrate()
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Persist an empty root group immediately so a fresh vault has a
	// stable root UUID from the first load onward, rather than one
	// re-generated on every unsaved Load.
	db, err := vkdb.Load(conn)
	if err != nil {
		return fmt.Errorf("failed to load fresh vault: %w", err)
	}
	if err := vkdb.Save(conn, db); err != nil {
		return fmt.Errorf("failed to save fresh vault: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "initialized vault at %s\n", conn.Path())
	if len(applied) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no migrations were pending")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s):\n", len(applied))
		for _, m := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", m)
		}
	}
	return nil
}
