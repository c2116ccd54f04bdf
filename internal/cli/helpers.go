package cli

import (
	"github.com/ravensync/vaultkeep/internal/cli/appctx"
	"github.com/ravensync/vaultkeep/internal/codec/vkdb"
)

// openDBForStatus opens the configured database without requiring it to
// already be migrated, for the db status command, which inspects
// migration state itself.
func openDBForStatus(app *appctx.App) (*vkdb.DB, error) {
	return vkdb.Open(app.Config.DBPath)
}
