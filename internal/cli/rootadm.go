package cli

import (
	"github.com/spf13/cobra"
)

var rootAdmCmd = &cobra.Command{
	Use:   "vkeepadm",
	Short: "Administrative CLI for vault database lifecycle and merges",
	Long: `vkeepadm is the administrative companion to vkeep. It handles
database lifecycle (migrate), snapshot export/import, and running real
merges that write back to the target database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteAdmin runs the admin root command
func ExecuteAdmin() error {
	return rootAdmCmd.Execute()
}

func init() {
	rootAdmCmd.PersistentFlags().String("db", "", "Path to vault database file (overrides VKEEP_DB_PATH)")
}
