package cli

import (
	"fmt"

	"github.com/ravensync/vaultkeep/internal/cli/appctx"
	"github.com/spf13/cobra"
)

var configAdmCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long: `Print the configuration vkeepadm resolved from defaults,
~/.config/vkeep/config.yaml, .env.local and environment variables.`,
	RunE: appctx.WithApp(appctx.ConfigOnly(), runConfigAdm),
}

func init() {
	rootAdmCmd.AddCommand(configAdmCmd)
}

func runConfigAdm(app *appctx.App, cmd *cobra.Command, args []string) error {
	cfg := app.Config
	fmt.Fprintf(cmd.OutOrStdout(), "db_path:                  %s\n", cfg.DBPath)
	fmt.Fprintf(cmd.OutOrStdout(), "history_max_items:        %d\n", cfg.HistoryMaxItems)
	fmt.Fprintf(cmd.OutOrStdout(), "clock_resolution_seconds: %d\n", cfg.ClockResolution)
	fmt.Fprintf(cmd.OutOrStdout(), "log_level:                %s\n", cfg.LogLevel)
	fmt.Fprintf(cmd.OutOrStdout(), "output:                   %s\n", cfg.Output)
	return nil
}
