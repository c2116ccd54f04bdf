package cli

import (
	"fmt"

	"github.com/ravensync/vaultkeep/internal/cli/appctx"
	"github.com/ravensync/vaultkeep/internal/codec/vkdb"
	"github.com/ravensync/vaultkeep/internal/vault"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the vault for structural problems",
	Long: `Run a set of read-only sanity checks against the vault:
schema migration status, duplicate UUIDs across the tree, tombstones
that still reference a live item, and history chains over the
configured maximum.`,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runDoctor),
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(app *appctx.App, cmd *cobra.Command, args []string) error {
	if err := app.DB.RequiresMigrationError(); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "FAIL migrations: %v\n", err)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "OK   migrations up to date")
	}

	db, err := vkdb.Load(app.DB)
	if err != nil {
		return fmt.Errorf("failed to load vault: %w", err)
	}

	problems := 0

	seen := map[vault.UUID]bool{}
	var walk func(g *vault.Group)
	walk = func(g *vault.Group) {
		if seen[g.UUID] {
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL duplicate group uuid %s\n", g.UUID)
			problems++
		}
		seen[g.UUID] = true
		for _, e := range g.Entries {
			if seen[e.UUID] {
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL duplicate entry uuid %s\n", e.UUID)
				problems++
			}
			seen[e.UUID] = true
			if len(e.History) > db.Metadata().HistoryMaxItems && db.Metadata().HistoryMaxItems > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "WARN entry %s (%s) has %d history items, over the configured max of %d\n",
					e.UUID, e.Title, len(e.History), db.Metadata().HistoryMaxItems)
			}
		}
		for _, c := range g.Children {
			walk(c)
		}
	}
	walk(db.RootGroup)
	if problems == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "OK   no duplicate UUIDs")
	}

	tombLive := 0
	for _, tomb := range db.DeletedObjects() {
		if db.FindEntryByUUID(tomb.UUID) != nil || db.FindGroupByUUID(tomb.UUID) != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "WARN tombstone for %s references a live item (needs a Synchronize-mode merge to resolve)\n", tomb.UUID)
			tombLive++
		}
	}
	if tombLive == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "OK   no tombstones reference live items")
	}

	if problems > 0 {
		return fmt.Errorf("doctor found %d problem(s)", problems)
	}
	return nil
}
