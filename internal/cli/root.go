package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vkeep",
	Short: "CLI for browsing a hierarchical secret vault",
	Long: `vkeep is a read-only CLI for a SQLite-backed hierarchical secret
store. It shows the group/entry tree, diffs two exports, and checks the
vault's structure; merges are run with 'vkeepadm merge'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to vault database file (overrides VKEEP_DB_PATH)")
}
